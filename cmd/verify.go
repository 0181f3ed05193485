package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfgops/swctl/pkg/ui"
)

var verifyAssetExternalID string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Count imported data points per measurement",
	Long: `Count the data points recorded in the training window for every
aliased measurement property of an asset, to confirm a bulk import
landed.

Examples:
  swctl verify --asset-external-id Workshop_Robot_1-1`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyAssetExternalID, "asset-external-id", "", "external id of the asset to verify")
	verifyCmd.MarkFlagRequired("asset-external-id")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	window := time.Duration(cfg.TrainingDataDays) * 24 * time.Hour
	counts, err := verifyService.CountHistory(ctx, verifyAssetExternalID, window)
	if err != nil {
		return err
	}

	fmt.Println(ui.FormatTitle("Measurements for " + verifyAssetExternalID))

	table := ui.NewTable([]ui.TableColumn{
		{Header: "MEASUREMENT", Width: 20},
		{Header: "ALIAS", Width: 40},
		{Header: "DATA POINTS", Width: 11, Align: "right"},
	})
	for _, c := range counts {
		table.AddRow([]string{c.Name, c.Alias, strconv.Itoa(c.DataPoints)})
	}
	fmt.Print(table.Render())
	return nil
}
