package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfgops/swctl/internal/core/services"
	"github.com/mfgops/swctl/pkg/config"
	"github.com/mfgops/swctl/pkg/ui"
)

var (
	inferenceModelID string
	inferenceMode    string
)

var inferenceCmd = &cobra.Command{
	Use:   "inference",
	Short: "Start or stop periodic inference on a trained model",
	Long: `Execute the inference action of a computation model and wait for the
model's inference timer to reflect the requested mode.

Examples:
  swctl inference --computation-model-id abc123 --mode START
  swctl inference --computation-model-id abc123 --mode STOP`,
	RunE: runInference,
}

func init() {
	inferenceCmd.Flags().StringVar(&inferenceModelID, "computation-model-id", "", "id of the computation model")
	inferenceCmd.Flags().StringVar(&inferenceMode, "mode", "", "START or STOP")
	inferenceCmd.MarkFlagRequired("computation-model-id")
	inferenceCmd.MarkFlagRequired("mode")
}

func runInference(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	mode := strings.ToUpper(inferenceMode)

	settings := services.InferenceSettings{
		DataDelayOffsetMinutes: cfg.DataDelayOffsetMinutes,
		DataUploadFrequency:    cfg.DataUploadFrequency,
		WeeklyOperatingWindow:  cfg.WeeklyOperatingWindow,
		PropagationDelay:       config.Seconds(cfg.InferencePropagationSeconds),
		PollInterval:           config.Seconds(cfg.InferencePollSeconds),
	}

	fmt.Println(ui.FormatPhase("inference " + mode))

	actionID, err := inferenceService.SetMode(ctx, inferenceModelID, mode, settings)
	if err != nil {
		fmt.Println(ui.FormatError("Inference " + mode + " failed"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Inference " + mode + " confirmed"))
	fmt.Println(ui.RenderKeyValue("Action", actionID))
	return nil
}
