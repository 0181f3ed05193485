package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfgops/swctl/pkg/chart"
	"github.com/mfgops/swctl/pkg/ui"
)

var (
	historyAction    string
	historyModelID   string
	historyAssetID   string
	historyChartPath string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past training or inference executions",
	Long: `List every execution of the given action type against a computation
model, newest first. With --chart, an HTML chart of execution durations
is written alongside the table.

Examples:
  swctl history --action TRAINING --computation-model-id abc123
  swctl history --action INFERENCE --asset-id def456 --chart history.html`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyAction, "action", "TRAINING", "TRAINING or INFERENCE")
	historyCmd.Flags().StringVar(&historyModelID, "computation-model-id", "", "computation model to inspect")
	historyCmd.Flags().StringVar(&historyAssetID, "asset-id", "", "asset whose computation models are inspected")
	historyCmd.Flags().StringVar(&historyChartPath, "chart", "", "write an HTML duration chart to this file")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	actionType, err := resolveActionType(historyAction)
	if err != nil {
		return err
	}

	modelIDs, err := resolveModelIDs(ctx, historyModelID, historyAssetID)
	if err != nil {
		return err
	}

	for _, modelID := range modelIDs {
		executions, err := executionService.History(ctx, modelID, actionType)
		if err != nil {
			return err
		}

		fmt.Println(ui.FormatTitle("Model " + modelID))
		if len(executions) == 0 {
			fmt.Println(ui.FormatWarning("No executions found"))
			continue
		}

		table := ui.NewTable([]ui.TableColumn{
			{Header: "EXECUTION", Width: 36},
			{Header: "STATE", Width: 10},
			{Header: "STARTED", Width: 19},
			{Header: "ENDED", Width: 19},
		})
		for _, e := range executions {
			table.AddRow([]string{e.ID, e.State, formatTime(e.StartTime), formatTime(e.EndTime)})
		}
		fmt.Print(table.Render())

		if historyChartPath != "" {
			title := fmt.Sprintf("%s executions for %s", historyAction, modelID)
			if err := chart.WriteExecutionChart(historyChartPath, title, executions); err != nil {
				return err
			}
			fmt.Println(ui.FormatSuccess("Chart written to " + historyChartPath))
		}
	}
	return nil
}
