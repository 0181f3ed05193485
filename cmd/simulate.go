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
	simulateAssets         []string
	simulateDataFile       string
	simulateInterval       int
	anomalyAssetExternalID string
	anomalyDurationMinutes int
	anomalyIntervalSeconds int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate historical data or replay live telemetry",
}

var simulateHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Generate 30 days of historical measurement data",
	Long: `Write one bulk-import CSV per asset covering the configured window,
plus a labels CSV marking two injected anomaly windows. Aliases and
value ranges come from the properties section of the config file.

Examples:
  swctl simulate history --asset-external-ids Workshop_Robot_1-1 Workshop_Robot_1-2`,
	RunE: runSimulateHistory,
}

var simulateLiveCmd = &cobra.Command{
	Use:   "live",
	Short: "Replay a sample file as live telemetry",
	Long: `Publish the rows of a wide-format sample CSV as property values in
batches, looping over the file until interrupted.

Examples:
  swctl simulate live --data-file sample_data.csv --interval 5`,
	RunE: runSimulateLive,
}

var simulateAnomalyCmd = &cobra.Command{
	Use:   "anomaly",
	Short: "Publish live anomalous telemetry for one asset",
	Long: `Publish one batch of simulated values per interval, with the joint1
sensors forced into their anomaly range and every other sensor kept in
its normal range, for a bounded duration. Aliases and value ranges come
from the properties section of the config file.

Examples:
  swctl simulate anomaly --asset-external-id Workshop_Robot_1-1`,
	RunE: runSimulateAnomaly,
}

func init() {
	simulateHistoryCmd.Flags().StringSliceVar(&simulateAssets, "asset-external-ids", nil, "external ids of the assets to generate data for")
	simulateLiveCmd.Flags().StringVar(&simulateDataFile, "data-file", "", "wide-format CSV sample file to replay")
	simulateLiveCmd.Flags().IntVar(&simulateInterval, "interval", 0, "seconds between batches (defaults to config)")
	simulateLiveCmd.MarkFlagRequired("data-file")
	simulateAnomalyCmd.Flags().StringVar(&anomalyAssetExternalID, "asset-external-id", "", "external id of the asset")
	simulateAnomalyCmd.Flags().IntVar(&anomalyDurationMinutes, "duration", 0, "minutes to keep publishing (defaults to config)")
	simulateAnomalyCmd.Flags().IntVar(&anomalyIntervalSeconds, "interval", 0, "seconds between batches (defaults to config)")
	simulateAnomalyCmd.MarkFlagRequired("asset-external-id")

	simulateCmd.AddCommand(simulateHistoryCmd)
	simulateCmd.AddCommand(simulateLiveCmd)
	simulateCmd.AddCommand(simulateAnomalyCmd)
}

// propertySpecs maps the configured property section to service specs.
func propertySpecs() []services.PropertySpec {
	specs := make([]services.PropertySpec, 0, len(cfg.Properties))
	for _, p := range cfg.Properties {
		specs = append(specs, services.PropertySpec{
			Alias:      p.Alias,
			MinNormal:  p.MinNormal,
			MaxNormal:  p.MaxNormal,
			MinAnomaly: p.MinAnomaly,
			MaxAnomaly: p.MaxAnomaly,
		})
	}
	return specs
}

func runSimulateHistory(cmd *cobra.Command, args []string) error {
	assets := simulateAssets
	if len(assets) == 0 {
		assets = cfg.SimulatedAssets
	}
	if len(assets) == 0 {
		return fmt.Errorf("no assets given, use --asset-external-ids or the simulated_assets config key")
	}

	specs := propertySpecs()
	if len(specs) == 0 {
		return fmt.Errorf("no properties configured, add a properties section to the config file")
	}

	settings := services.DefaultSimulationSettings(cfg.DataDir, cfg.LabelsDir)

	fmt.Println(ui.FormatPhase("simulate history"))

	if err := simulationService.GenerateHistory(assets, specs, settings); err != nil {
		fmt.Println(ui.FormatError("Generation failed"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Historical data written"))
	fmt.Println(ui.RenderKeyValue("Data", cfg.DataDir))
	fmt.Println(ui.RenderKeyValue("Labels", cfg.LabelsDir))
	return nil
}

func runSimulateLive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	interval := simulateInterval
	if interval <= 0 {
		interval = cfg.LiveIntervalSeconds
	}

	fmt.Println(ui.FormatPhase("simulate live"))
	fmt.Println(ui.FormatInfo("Replaying " + simulateDataFile + ", interrupt to stop"))

	return simulationService.ReplayLive(ctx, simulateDataFile, config.Seconds(interval))
}

func runSimulateAnomaly(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	specs := propertySpecs()
	if len(specs) == 0 {
		return fmt.Errorf("no properties configured, add a properties section to the config file")
	}

	duration := anomalyDurationMinutes
	if duration <= 0 {
		duration = cfg.AnomalyDurationMinutes
	}
	interval := anomalyIntervalSeconds
	if interval <= 0 {
		interval = cfg.AnomalyIntervalSeconds
	}

	fmt.Println(ui.FormatPhase("simulate anomaly"))
	fmt.Println(ui.FormatInfo(fmt.Sprintf("Publishing anomalous data for the next %d minutes", duration)))

	settings := services.AnomalySettings{
		Duration: time.Duration(duration) * time.Minute,
		Interval: config.Seconds(interval),
	}
	if err := simulationService.SimulateAnomaly(ctx, anomalyAssetExternalID, specs, settings); err != nil {
		return err
	}

	fmt.Println(ui.FormatSuccess("Anomaly simulation finished"))
	return nil
}
