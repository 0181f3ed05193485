package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"

	"github.com/mfgops/swctl/internal/adapters/clock"
	"github.com/mfgops/swctl/internal/adapters/lookout"
	"github.com/mfgops/swctl/internal/adapters/process"
	"github.com/mfgops/swctl/internal/adapters/sitewise"
	"github.com/mfgops/swctl/internal/adapters/storage"
	"github.com/mfgops/swctl/internal/adapters/twinmaker"
	"github.com/mfgops/swctl/internal/core/services"
	"github.com/mfgops/swctl/pkg/config"
	"github.com/mfgops/swctl/pkg/ui"
)

var (
	cfgPath string
	cfg     *config.Config
	logger  *slog.Logger

	// Adapters
	siteWise    *sitewise.Client
	objectStore *storage.Client
	sleeper     clock.StdSleeper

	// Services
	teardownService        *services.TeardownService
	trainingService        *services.TrainingService
	inferenceService       *services.InferenceService
	executionService       *services.ExecutionService
	bulkImportService      *services.BulkImportService
	metadataImportService  *services.MetadataImportService
	simulationService      *services.SimulationService
	verifyService          *services.VerifyService
	detectorService        *services.DetectorService
	detectorCleanupService *services.DetectorCleanupService
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "swctl",
	Short: "swctl - industrial IoT asset workflow CLI",
	Long: ui.StyleTitle.Render("swctl") + " - Industrial IoT Asset Workflows\n\n" +
		"Orchestrates asset-model teardown, anomaly-detection training and\n" +
		"inference, bulk data import, telemetry simulation and detector\n" +
		"resource cleanup against the cloud asset-management service.",
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "swctl.yaml", "path to the project config file")

	// Add subcommands
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(cleanupDetectorCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(inferenceCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(detectorCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp loads config, logging and the cloud clients the
// services run against.
func initializeApp(cmd *cobra.Command, args []string) error {
	// Version and help need no cloud wiring
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = c

	ui.SetTheme(cfg.ColorTheme)

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	// Adapters
	siteWise = sitewise.New(awsCfg)
	objectStore = storage.New(awsCfg)
	detectorAPI := lookout.New(awsCfg)
	metadataAPI := twinmaker.New(awsCfg)
	procs := process.NewManager()

	// Services
	teardownService = services.NewTeardownService(
		siteWise, siteWise, siteWise, procs, sleeper,
		services.TeardownConfig{
			ComputationAssetID:    cfg.ComputationAssetID,
			StreamPrefix:          cfg.StreamPrefix,
			SimulatorPattern:      cfg.SimulatorPattern,
			PollInterval:          config.Seconds(cfg.CleanupPollSeconds),
			ModelUpdateDelay:      config.Seconds(cfg.ModelUpdateDelay),
			DependentAssetRetries: cfg.DependentAssetRetries,
		},
		logger,
	)
	trainingService = services.NewTrainingService(siteWise, sleeper, logger)
	inferenceService = services.NewInferenceService(siteWise, sleeper, logger)
	executionService = services.NewExecutionService(siteWise, siteWise, logger)
	bulkImportService = services.NewBulkImportService(objectStore, siteWise, sleeper, logger)
	metadataImportService = services.NewMetadataImportService(objectStore, metadataAPI, sleeper, logger)
	simulationService = services.NewSimulationService(siteWise, sleeper, logger)
	verifyService = services.NewVerifyService(siteWise, siteWise, logger)
	detectorService = services.NewDetectorService(siteWise, siteWise, siteWise, sleeper, logger)
	detectorCleanupService = services.NewDetectorCleanupService(
		siteWise, detectorAPI, sleeper, config.Seconds(cfg.DetectorStopPollSeconds), logger)

	return nil
}

// getContext returns a context for operations
func getContext() context.Context {
	return context.Background()
}
