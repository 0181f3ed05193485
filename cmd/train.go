package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfgops/swctl/internal/core/services"
	"github.com/mfgops/swctl/pkg/config"
	"github.com/mfgops/swctl/pkg/ui"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Create an anomaly-detection model and start training",
	Long: `Create a computation model over the configured asset properties, wait
for it to become ACTIVE and execute its training action over the
configured historical data window.

The asset id, property ids and training window come from the config
file.`,
	RunE: runTrain,
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	end := time.Now().Unix()
	start := time.Now().AddDate(0, 0, -cfg.TrainingDataDays).Unix()

	settings := services.TrainingSettings{
		ModelName:          cfg.ModelName,
		AssetID:            cfg.AssetID,
		InputPropertyIDs:   cfg.InputPropertyIDs,
		ResultPropertyID:   cfg.ResultPropertyID,
		DataStartTime:      start,
		DataEndTime:        end,
		TargetSamplingRate: cfg.TargetSamplingRate,
		PollInterval:       config.Seconds(cfg.TrainingPollSeconds),
	}
	if cfg.EvaluationBucket != "" {
		settings.Evaluation = services.EvaluationSettings{
			DataStartTime: start,
			DataEndTime:   end,
			Bucket:        cfg.EvaluationBucket,
			Prefix:        cfg.EvaluationPrefix,
		}
	}
	if cfg.LabelsBucket != "" {
		settings.Labels = services.LabelSettings{
			Bucket: cfg.LabelsBucket,
			Prefix: cfg.LabelsPrefix,
		}
	}

	fmt.Println(ui.FormatPhase("train " + cfg.ModelName))

	modelID, actionID, err := trainingService.Run(ctx, settings)
	if err != nil {
		fmt.Println(ui.FormatError("Training failed to start"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Training started"))
	fmt.Println(ui.RenderKeyValue("Computation Model", modelID))
	fmt.Println(ui.RenderKeyValue("Action", actionID))
	return nil
}
