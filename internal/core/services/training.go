package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports"
)

// TrainingSettings drives one model-creation-plus-training run.
type TrainingSettings struct {
	ModelName        string
	AssetID          string
	InputPropertyIDs []string
	ResultPropertyID string

	// Export window of historical data the training reads, epoch
	// seconds.
	DataStartTime int64
	DataEndTime   int64

	// TargetSamplingRate is an ISO-8601 duration, e.g. "PT5M".
	TargetSamplingRate string

	// Evaluation, when its bucket is set, asks the service to score the
	// trained model against a holdout window.
	Evaluation EvaluationSettings

	// Labels, when its bucket is set, points at labeled anomaly windows
	// in object storage.
	Labels LabelSettings

	PollInterval time.Duration
}

// EvaluationSettings configures model evaluation over a data window.
type EvaluationSettings struct {
	DataStartTime int64
	DataEndTime   int64
	Bucket        string
	Prefix        string
}

// LabelSettings points at labeled anomaly windows in object storage.
type LabelSettings struct {
	Bucket string
	Prefix string
}

type trainingPayload struct {
	ExportDataStartTime int64               `json:"exportDataStartTime"`
	ExportDataEndTime   int64               `json:"exportDataEndTime"`
	TargetSamplingRate  string              `json:"targetSamplingRate"`
	Evaluation          *evaluationPayload  `json:"modelEvaluationConfiguration,omitempty"`
	Labels              *bucketPrefixConfig `json:"labelInputConfiguration,omitempty"`
}

type evaluationPayload struct {
	DataStartTime int64              `json:"dataStartTime"`
	DataEndTime   int64              `json:"dataEndTime"`
	Destination   bucketPrefixConfig `json:"resultDestination"`
}

type bucketPrefixConfig struct {
	BucketName string `json:"bucketName"`
	Prefix     string `json:"prefix"`
}

// TrainingService creates an anomaly-detection computation model over a
// set of asset properties and launches its training action.
type TrainingService struct {
	comps   ports.ComputationAPI
	sleeper ports.Sleeper
	log     *slog.Logger
}

// NewTrainingService creates a training service.
func NewTrainingService(comps ports.ComputationAPI, sleeper ports.Sleeper, log *slog.Logger) *TrainingService {
	if log == nil {
		log = slog.Default()
	}
	return &TrainingService{comps: comps, sleeper: sleeper, log: log}
}

// Run creates the computation model, waits for it to become ACTIVE and
// submits the training action. Returns the model id and the action id.
func (s *TrainingService) Run(ctx context.Context, settings TrainingSettings) (string, string, error) {
	modelID, err := s.comps.CreateAnomalyModel(ctx, domain.AnomalyModelSpec{
		Name:             settings.ModelName,
		AssetID:          settings.AssetID,
		InputPropertyIDs: settings.InputPropertyIDs,
		ResultPropertyID: settings.ResultPropertyID,
	})
	if err != nil {
		return "", "", fmt.Errorf("creating computation model: %w", err)
	}
	s.log.Info("created computation model", "computationModelId", modelID)

	if err := s.waitForModelActive(ctx, modelID, settings.PollInterval); err != nil {
		return modelID, "", err
	}

	actionID, err := s.Train(ctx, modelID, settings)
	if err != nil {
		return modelID, "", err
	}
	return modelID, actionID, nil
}

// Train submits the training action against an existing computation
// model and returns the action id.
func (s *TrainingService) Train(ctx context.Context, modelID string, settings TrainingSettings) (string, error) {
	model, err := s.comps.DescribeComputationModel(ctx, modelID)
	if err != nil {
		return "", fmt.Errorf("describing computation model %s: %w", modelID, err)
	}
	defID := model.ActionDefinitionID(domain.ActionTypeTraining)
	if defID == "" {
		return "", fmt.Errorf("computation model %s declares no training action", modelID)
	}

	payload := trainingPayload{
		ExportDataStartTime: settings.DataStartTime,
		ExportDataEndTime:   settings.DataEndTime,
		TargetSamplingRate:  settings.TargetSamplingRate,
	}
	if settings.Evaluation.Bucket != "" {
		payload.Evaluation = &evaluationPayload{
			DataStartTime: settings.Evaluation.DataStartTime,
			DataEndTime:   settings.Evaluation.DataEndTime,
			Destination: bucketPrefixConfig{
				BucketName: settings.Evaluation.Bucket,
				Prefix:     settings.Evaluation.Prefix,
			},
		}
		s.log.Info("training with evaluation")
	} else {
		s.log.Info("training without evaluation")
	}
	if settings.Labels.Bucket != "" {
		payload.Labels = &bucketPrefixConfig{
			BucketName: settings.Labels.Bucket,
			Prefix:     settings.Labels.Prefix,
		}
		s.log.Info("training with labels")
	} else {
		s.log.Info("training without labels")
	}

	doc, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding training payload: %w", err)
	}

	actionID, err := s.comps.ExecuteModelAction(ctx, defID, string(doc), modelID)
	if err != nil {
		return "", fmt.Errorf("executing training action: %w", err)
	}
	s.log.Info("submitted training action", "actionId", actionID)
	return actionID, nil
}

// waitForModelActive polls the model state until it settles. FAILED is
// fatal.
func (s *TrainingService) waitForModelActive(ctx context.Context, modelID string, interval time.Duration) error {
	s.log.Info("waiting for computation model to become active", "interval", interval)
	for {
		model, err := s.comps.DescribeComputationModel(ctx, modelID)
		if err != nil {
			return fmt.Errorf("polling computation model %s: %w", modelID, err)
		}
		switch model.State {
		case domain.ComputationStateActive:
			s.log.Info("computation model is active")
			return nil
		case domain.ComputationStateFailed:
			return errors.New("computation model creation failed")
		}
		s.log.Info("still creating the computation model")
		if err := s.sleeper.Sleep(ctx, interval); err != nil {
			return err
		}
	}
}
