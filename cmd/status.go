package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfgops/swctl/internal/core/ports"
	"github.com/mfgops/swctl/pkg/ui"
)

var (
	statusAction  string
	statusModelID string
	statusAssetID string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest training or inference execution",
	Long: `Report the newest execution of the given action type, including its
result message. For inference executions that did not fail, the latest
anomaly result value is included.

Examples:
  swctl status --action TRAINING --computation-model-id abc123
  swctl status --action INFERENCE --asset-id def456`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusAction, "action", "TRAINING", "TRAINING or INFERENCE")
	statusCmd.Flags().StringVar(&statusModelID, "computation-model-id", "", "computation model to inspect")
	statusCmd.Flags().StringVar(&statusAssetID, "asset-id", "", "asset whose computation models are inspected")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	actionType, err := resolveActionType(statusAction)
	if err != nil {
		return err
	}

	modelIDs, err := resolveModelIDs(ctx, statusModelID, statusAssetID)
	if err != nil {
		return err
	}

	for _, modelID := range modelIDs {
		fmt.Println(ui.FormatTitle("Model " + modelID))

		detail, err := executionService.LatestStatus(ctx, modelID, actionType)
		if errors.Is(err, ports.ErrNotFound) {
			fmt.Println(ui.FormatWarning("No executions found"))
			continue
		}
		if err != nil {
			return err
		}

		fmt.Println(ui.RenderKeyValue("Execution", detail.ID))
		fmt.Println(ui.RenderKeyValue("State", detail.State))
		fmt.Println(ui.RenderKeyValue("Started", formatTime(detail.StartTime)))
		fmt.Println(ui.RenderKeyValue("Ended", formatTime(detail.EndTime)))
		if detail.ResultMessage != "" {
			fmt.Println(ui.RenderKeyValue("Message", detail.ResultMessage))
		}
		if detail.AnomalyResult != "" {
			fmt.Println(ui.RenderKeyValue("Anomaly Result", detail.AnomalyResult))
		}
	}
	return nil
}
