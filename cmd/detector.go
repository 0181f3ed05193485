package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfgops/swctl/internal/core/services"
	"github.com/mfgops/swctl/pkg/config"
	"github.com/mfgops/swctl/pkg/ui"
)

var (
	detectorCreateAssetExternalID  string
	detectorResultsAssetExternalID string
)

var detectorCmd = &cobra.Command{
	Use:   "detector",
	Short: "Manage equipment-anomaly prediction definitions",
}

var detectorCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a prediction definition and start its workflow",
	Long: `Attach a prediction definition to the asset's model over the configured
training properties, then start the training-with-inference workflow and
wait for training to complete and inference to become active.

Examples:
  swctl detector create --asset-external-id Workshop_Robot_1-1`,
	RunE: runDetectorCreate,
}

var detectorResultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show the latest anomaly results of an asset",
	Long: `Read the anomaly result property of every prediction definition on the
asset, with per-sensor diagnostic contributions resolved to property
names.

Examples:
  swctl detector results --asset-external-id Workshop_Robot_1-1`,
	RunE: runDetectorResults,
}

func init() {
	detectorCreateCmd.Flags().StringVar(&detectorCreateAssetExternalID, "asset-external-id", "", "external id of the asset")
	detectorCreateCmd.MarkFlagRequired("asset-external-id")
	detectorResultsCmd.Flags().StringVar(&detectorResultsAssetExternalID, "asset-external-id", "", "external id of the asset")
	detectorResultsCmd.MarkFlagRequired("asset-external-id")

	detectorCmd.AddCommand(detectorCreateCmd)
	detectorCmd.AddCommand(detectorResultsCmd)
}

func detectorSettings() services.DetectorSettings {
	return services.DetectorSettings{
		NamePrefix:                  cfg.DetectorNamePrefix,
		RoleARN:                     cfg.DetectorRoleARN,
		ActionName:                  cfg.DetectorActionName,
		TrainingPropertyExternalIDs: cfg.TrainingPropertyExternalIDs,
		LabelsBucket:                cfg.LabelsBucket,
		LabelsPrefix:                cfg.LabelsPrefix,
		TrainingWindow:              time.Duration(cfg.TrainingDataDays) * 24 * time.Hour,
		DataDelayOffsetMinutes:      cfg.DataDelayOffsetMinutes,
		DataUploadFrequency:         cfg.DataUploadFrequency,
		UpdatePollInterval:          config.Seconds(cfg.DetectorUpdatePollSeconds),
		StatusPollInterval:          config.Seconds(cfg.DetectorStatusPollSeconds),
	}
}

func runDetectorCreate(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	fmt.Println(ui.FormatPhase("detector create " + detectorCreateAssetExternalID))

	if err := detectorService.CreateAndStart(ctx, detectorCreateAssetExternalID, detectorSettings()); err != nil {
		fmt.Println(ui.FormatError("Detector creation failed"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Detector trained, inference active"))
	return nil
}

func runDetectorResults(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	results, err := detectorService.Results(ctx, detectorResultsAssetExternalID)
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Println(ui.FormatTitle(r.DefinitionName))
		if r.Result == nil {
			fmt.Println(ui.FormatWarning("No anomaly result yet"))
			continue
		}

		fmt.Println(ui.RenderKeyValue("Prediction", r.Result.PredictionReason))
		fmt.Println(ui.RenderKeyValue("Anomaly Score", fmt.Sprintf("%.4f", r.Result.AnomalyScore)))

		if len(r.Result.Diagnostics) > 0 {
			table := ui.NewTable([]ui.TableColumn{
				{Header: "SENSOR", Width: 24},
				{Header: "CONTRIBUTION", Width: 12, Align: "right"},
			})
			for _, d := range r.Result.Diagnostics {
				table.AddRow([]string{d.Name, fmt.Sprintf("%.4f", d.Value)})
			}
			fmt.Print(table.Render())
		}
	}
	return nil
}
