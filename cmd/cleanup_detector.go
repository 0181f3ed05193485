package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfgops/swctl/pkg/ui"
)

var cleanupDetectorAssetExternalID string

var cleanupDetectorCmd = &cobra.Command{
	Use:   "cleanup-detector",
	Short: "Tear down the equipment-anomaly-detection resources of an asset",
	Long: `Delete the detector datasets, models and inference schedulers that were
created for an asset. Running schedulers are stopped and polled to
STOPPED before anything is deleted; deletion then runs schedulers first,
models second, datasets last.

Examples:
  swctl cleanup-detector --asset-external-id Workshop_Robot_1-1`,
	RunE: runCleanupDetector,
}

func init() {
	cleanupDetectorCmd.Flags().StringVar(&cleanupDetectorAssetExternalID, "asset-external-id", "", "external id of the asset whose detector resources are removed")
	cleanupDetectorCmd.MarkFlagRequired("asset-external-id")
}

func runCleanupDetector(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	fmt.Println(ui.FormatPhase("detector cleanup " + cleanupDetectorAssetExternalID))

	if err := detectorCleanupService.Cleanup(ctx, cleanupDetectorAssetExternalID); err != nil {
		fmt.Println(ui.FormatError("Detector cleanup failed"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Detector cleanup complete"))
	return nil
}
