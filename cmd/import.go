package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfgops/swctl/internal/core/services"
	"github.com/mfgops/swctl/pkg/config"
	"github.com/mfgops/swctl/pkg/ui"
)

var importDefinitionsFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-import measurement data or metadata definitions",
}

var importDataCmd = &cobra.Command{
	Use:   "data",
	Short: "Upload historical data and run bulk import jobs",
	Long: `Upload the generated data and label CSVs to object storage, submit one
bulk import job per data file and wait for every job to finish. The
local data and label directories are removed afterwards.`,
	RunE: runImportData,
}

var importMetadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Import model and asset definitions",
	Long: `Upload a definitions document and run a metadata transfer job over it,
reporting progress until the job completes.

Examples:
  swctl import metadata --definitions-file workshop_models.json`,
	RunE: runImportMetadata,
}

func init() {
	importMetadataCmd.Flags().StringVar(&importDefinitionsFile, "definitions-file", "", "model/asset definitions document to import")
	importMetadataCmd.MarkFlagRequired("definitions-file")

	importCmd.AddCommand(importDataCmd)
	importCmd.AddCommand(importMetadataCmd)
}

func runImportData(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	settings := services.BulkImportSettings{
		DataDir:      cfg.DataDir,
		LabelsDir:    cfg.LabelsDir,
		DataBucket:   cfg.DataBucket,
		DataPrefix:   cfg.DataPrefix,
		ErrorPrefix:  cfg.ErrorPrefix,
		RoleARN:      cfg.ImportRoleARN,
		LabelsBucket: cfg.LabelsBucket,
		LabelsPrefix: cfg.LabelsPrefix,
		JobSpacing:   config.Seconds(cfg.JobSpacingSeconds),
		PollInterval: config.Seconds(cfg.ImportPollSeconds),
	}

	fmt.Println(ui.FormatPhase("import data"))

	if err := bulkImportService.Run(ctx, settings); err != nil {
		fmt.Println(ui.FormatError("Data import failed"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Data import complete"))
	return nil
}

func runImportMetadata(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	settings := services.MetadataImportSettings{
		Bucket:       cfg.MetadataBucket,
		KeyPrefix:    cfg.MetadataKeyPrefix,
		JobIDPrefix:  cfg.MetadataJobIDPrefix,
		PollInterval: config.Seconds(cfg.MetadataPollSeconds),
	}

	fmt.Println(ui.FormatPhase("import metadata"))

	jobID, err := metadataImportService.Import(ctx, importDefinitionsFile, settings)
	if err != nil {
		fmt.Println(ui.FormatError("Metadata import failed"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Metadata import complete"))
	fmt.Println(ui.RenderKeyValue("Job", jobID))
	return nil
}
