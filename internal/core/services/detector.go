package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports"
)

// DetectorSettings drives the equipment-detector workflow: prediction
// definition creation followed by training-with-inference.
type DetectorSettings struct {
	NamePrefix string
	RoleARN    string
	// ActionName selects the composite model action that runs training
	// with inference.
	ActionName string

	// TrainingPropertyExternalIDs selects which model properties feed
	// the detector.
	TrainingPropertyExternalIDs []string

	LabelsBucket string
	LabelsPrefix string

	// TrainingWindow is how far back the exported training data
	// reaches from the start of the current UTC day.
	TrainingWindow time.Duration

	DataDelayOffsetMinutes int
	DataUploadFrequency    string

	// UpdatePollInterval paces the wait for the model update that
	// attaches the definition; StatusPollInterval paces the workflow
	// status wait.
	UpdatePollInterval time.Duration
	StatusPollInterval time.Duration
}

type workflowPayload struct {
	TrainingWithInference trainingWithInference `json:"l4ETrainingWithInference"`
}

type trainingWithInference struct {
	Mode      string                   `json:"trainingWithInferenceMode"`
	Training  workflowTrainingPayload  `json:"trainingPayload"`
	Inference workflowInferencePayload `json:"inferencePayload"`
}

type workflowTrainingPayload struct {
	ExportDataStartTime int64              `json:"exportDataStartTime"`
	ExportDataEndTime   int64              `json:"exportDataEndTime"`
	Labels              bucketPrefixConfig `json:"labelInputConfiguration"`
}

type workflowInferencePayload struct {
	DataDelayOffsetMinutes int    `json:"dataDelayOffsetInMinutes"`
	DataUploadFrequency    string `json:"dataUploadFrequency"`
}

// PredictionResult pairs a prediction definition with its latest
// anomaly result, nil when none has been produced yet.
type PredictionResult struct {
	DefinitionName string
	Result         *domain.AnomalyResult
}

// DetectorService attaches equipment-anomaly prediction definitions to
// asset models, runs the training-with-inference workflow and reads
// back anomaly results.
type DetectorService struct {
	assets      ports.AssetAPI
	predictions ports.PredictionAPI
	telemetry   ports.TelemetryAPI
	sleeper     ports.Sleeper
	log         *slog.Logger

	now func() time.Time
}

// NewDetectorService creates a detector service.
func NewDetectorService(assets ports.AssetAPI, predictions ports.PredictionAPI, telemetry ports.TelemetryAPI, sleeper ports.Sleeper, log *slog.Logger) *DetectorService {
	if log == nil {
		log = slog.Default()
	}
	return &DetectorService{
		assets:      assets,
		predictions: predictions,
		telemetry:   telemetry,
		sleeper:     sleeper,
		log:         log,
		now:         time.Now,
	}
}

// CreateAndStart attaches a prediction definition to the asset's model,
// starts the training-with-inference workflow and waits until training
// has completed and inference is active.
func (s *DetectorService) CreateAndStart(ctx context.Context, assetExternalID string, settings DetectorSettings) error {
	assetID, err := s.assets.ResolveAssetByExternalID(ctx, assetExternalID)
	if err != nil {
		return fmt.Errorf("resolving asset %q: %w", assetExternalID, err)
	}
	asset, err := s.assets.DescribeAsset(ctx, assetID)
	if err != nil {
		return fmt.Errorf("describing asset %s: %w", assetID, err)
	}
	modelID := asset.ModelID

	propertyIDs, err := s.trainingPropertyIDs(ctx, modelID, settings.TrainingPropertyExternalIDs)
	if err != nil {
		return err
	}
	if len(propertyIDs) == 0 {
		return fmt.Errorf("no relevant properties found in asset model %s", modelID)
	}
	s.log.Info("resolved training properties", "count", len(propertyIDs))

	name := fmt.Sprintf("%s%d", settings.NamePrefix, s.now().Unix())
	definitionID, err := s.predictions.CreatePredictionDefinition(ctx, modelID, name, settings.RoleARN, propertyIDs)
	if err != nil {
		return fmt.Errorf("creating prediction definition: %w", err)
	}
	s.log.Info("prediction definition submitted", "definitionId", definitionID)

	if err := s.waitForModelSettled(ctx, modelID, settings.UpdatePollInterval); err != nil {
		return err
	}

	if err := s.startWorkflow(ctx, assetID, assetExternalID, modelID, definitionID, settings); err != nil {
		return err
	}
	return s.waitForWorkflow(ctx, assetID, modelID, definitionID, settings.StatusPollInterval)
}

// trainingPropertyIDs maps property external ids to ids on the model.
func (s *DetectorService) trainingPropertyIDs(ctx context.Context, modelID string, externalIDs []string) ([]string, error) {
	model, err := s.assets.DescribeAssetModel(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("describing asset model %s: %w", modelID, err)
	}
	wanted := make(map[string]struct{}, len(externalIDs))
	for _, id := range externalIDs {
		wanted[id] = struct{}{}
	}
	var ids []string
	for _, p := range model.Properties {
		if _, ok := wanted[p.ExternalID]; ok {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

// waitForModelSettled polls until the asset model leaves UPDATING.
func (s *DetectorService) waitForModelSettled(ctx context.Context, modelID string, interval time.Duration) error {
	s.log.Info("waiting for asset model update", "interval", interval)
	for {
		if err := s.sleeper.Sleep(ctx, interval); err != nil {
			return err
		}
		model, err := s.assets.DescribeAssetModel(ctx, modelID)
		if err != nil {
			return fmt.Errorf("polling asset model %s: %w", modelID, err)
		}
		if model.State != domain.ModelStateUpdating {
			s.log.Info("prediction definition created")
			return nil
		}
		s.log.Info("still creating the prediction definition")
	}
}

// startWorkflow executes the training-with-inference action against the
// asset.
func (s *DetectorService) startWorkflow(ctx context.Context, assetID, assetExternalID, modelID, definitionID string, settings DetectorSettings) error {
	definition, err := s.predictions.DescribePredictionDefinition(ctx, modelID, definitionID)
	if err != nil {
		return fmt.Errorf("describing prediction definition %s: %w", definitionID, err)
	}
	defID := definition.ActionDefinitionID(settings.ActionName)
	if defID == "" {
		return fmt.Errorf("prediction definition %s declares no %q action", definitionID, settings.ActionName)
	}

	now := s.now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Unix()
	start := end - int64(settings.TrainingWindow.Seconds())

	payload := workflowPayload{
		TrainingWithInference: trainingWithInference{
			Mode: "START",
			Training: workflowTrainingPayload{
				ExportDataStartTime: start,
				ExportDataEndTime:   end,
				Labels: bucketPrefixConfig{
					BucketName: settings.LabelsBucket,
					Prefix:     settings.LabelsPrefix + strings.ToLower(assetExternalID) + "/",
				},
			},
			Inference: workflowInferencePayload{
				DataDelayOffsetMinutes: settings.DataDelayOffsetMinutes,
				DataUploadFrequency:    settings.DataUploadFrequency,
			},
		},
	}
	doc, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding workflow payload: %w", err)
	}

	if _, err := s.predictions.ExecuteAssetAction(ctx, defID, string(doc), assetID); err != nil {
		return fmt.Errorf("starting workflow: %w", err)
	}
	s.log.Info("workflow request submitted")
	return nil
}

// waitForWorkflow polls the definition's tracking properties until
// training has completed and inference is active.
func (s *DetectorService) waitForWorkflow(ctx context.Context, assetID, modelID, definitionID string, interval time.Duration) error {
	definition, err := s.predictions.DescribePredictionDefinition(ctx, modelID, definitionID)
	if err != nil {
		return fmt.Errorf("describing prediction definition %s: %w", definitionID, err)
	}
	trainingPropID := definition.PropertyID(domain.PredictionTrainingStatusProperty)
	inferencePropID := definition.PropertyID(domain.PredictionInferenceStatusProperty)
	if trainingPropID == "" || inferencePropID == "" {
		return fmt.Errorf("prediction definition %s is missing tracking properties", definitionID)
	}

	s.log.Info("checking workflow status", "interval", interval)
	for {
		training := s.workflowStatus(ctx, assetID, trainingPropID)
		inference := s.workflowStatus(ctx, assetID, inferencePropID)
		s.log.Info("workflow status", "training", training, "inference", inference)

		if training == domain.TrainingCompleted && inference == domain.InferenceActive {
			s.log.Info("ready for inference")
			return nil
		}
		if err := s.sleeper.Sleep(ctx, interval); err != nil {
			return err
		}
	}
}

// workflowStatus reads one tracking property. Empty or undecodable
// values read as "", the workflow simply has not reported yet.
func (s *DetectorService) workflowStatus(ctx context.Context, assetID, propertyID string) string {
	raw, err := s.telemetry.PropertyValueString(ctx, assetID, propertyID)
	if err != nil || raw == "" {
		return ""
	}
	var status domain.WorkflowStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return ""
	}
	return status.Status
}

// Results returns the latest anomaly result of every prediction
// definition attached to the asset's model, with diagnostics resolved
// to property display names.
func (s *DetectorService) Results(ctx context.Context, assetExternalID string) ([]PredictionResult, error) {
	assetID, err := s.assets.ResolveAssetByExternalID(ctx, assetExternalID)
	if err != nil {
		return nil, fmt.Errorf("resolving asset %q: %w", assetExternalID, err)
	}
	asset, err := s.assets.DescribeAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("describing asset %s: %w", assetID, err)
	}
	model, err := s.assets.DescribeAssetModel(ctx, asset.ModelID)
	if err != nil {
		return nil, fmt.Errorf("describing asset model %s: %w", asset.ModelID, err)
	}

	var results []PredictionResult
	for _, composite := range model.CompositeModels {
		if composite.Type != domain.PredictionDefinitionType {
			continue
		}
		result, err := s.definitionResult(ctx, assetID, asset.ModelID, composite)
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}
	return results, nil
}

func (s *DetectorService) definitionResult(ctx context.Context, assetID, modelID string, composite domain.CompositeModelSummary) (*PredictionResult, error) {
	definition, err := s.predictions.DescribePredictionDefinition(ctx, modelID, composite.ID)
	if err != nil {
		return nil, fmt.Errorf("describing prediction definition %s: %w", composite.ID, err)
	}
	resultPropID := definition.PropertyID(domain.PredictionResultProperty)
	if resultPropID == "" {
		return &PredictionResult{DefinitionName: composite.Name}, nil
	}

	raw, err := s.telemetry.PropertyValueString(ctx, assetID, resultPropID)
	if err != nil {
		return nil, fmt.Errorf("reading anomaly result: %w", err)
	}
	if raw == "" {
		return &PredictionResult{DefinitionName: composite.Name}, nil
	}

	var result domain.AnomalyResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("decoding anomaly result: %w", err)
	}
	if err := s.resolveDiagnostics(ctx, assetID, result.Diagnostics); err != nil {
		return nil, err
	}
	return &PredictionResult{DefinitionName: composite.Name, Result: &result}, nil
}

// resolveDiagnostics rewrites each diagnostic's raw property-id
// reference (the id followed by a backslash-separated suffix) to the
// property's display name.
func (s *DetectorService) resolveDiagnostics(ctx context.Context, assetID string, diagnostics []domain.Diagnostic) error {
	for i, d := range diagnostics {
		propertyID := strings.SplitN(d.Name, `\`, 2)[0]
		name, err := s.predictions.AssetPropertyName(ctx, assetID, propertyID)
		if err != nil {
			return fmt.Errorf("resolving diagnostic property %s: %w", propertyID, err)
		}
		diagnostics[i].Name = name
	}
	return nil
}
