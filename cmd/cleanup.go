package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfgops/swctl/pkg/ui"
)

var cleanupAssetExternalID string

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Tear down an asset tree and everything attached to it",
	Long: `Remove an asset hierarchy and its supporting resources in a fixed order:
stop the local telemetry simulator, disassociate the whole tree, delete
the anomaly-detection computation models, strip and delete the asset
models, delete the assets and finally the orphaned data streams.

Phases are best-effort: a failing phase is logged and the run continues,
so re-running cleanup over partially deleted resources is safe.

Examples:
  swctl cleanup --asset-external-id Workshop_Robot_1-1`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().StringVar(&cleanupAssetExternalID, "asset-external-id", "", "external id of the root asset to tear down")
	cleanupCmd.MarkFlagRequired("asset-external-id")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	fmt.Println(ui.FormatPhase("cleanup " + cleanupAssetExternalID))

	if err := teardownService.Cleanup(ctx, cleanupAssetExternalID); err != nil {
		fmt.Println(ui.FormatError("Cleanup failed"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Cleanup complete"))
	return nil
}
