package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports"
)

// ExecutionService reports on past and current runs of computation
// model actions.
type ExecutionService struct {
	comps     ports.ComputationAPI
	telemetry ports.TelemetryAPI
	log       *slog.Logger
}

// NewExecutionService creates an execution service.
func NewExecutionService(comps ports.ComputationAPI, telemetry ports.TelemetryAPI, log *slog.Logger) *ExecutionService {
	if log == nil {
		log = slog.Default()
	}
	return &ExecutionService{comps: comps, telemetry: telemetry, log: log}
}

// ModelsForAsset returns the ids of every anomaly-detection computation
// model whose result property is bound to assetID. A model that cannot
// be described is skipped.
func (s *ExecutionService) ModelsForAsset(ctx context.Context, assetID string) ([]string, error) {
	ids, err := s.comps.ListAnomalyModelIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing computation models: %w", err)
	}
	var matched []string
	for _, id := range ids {
		model, err := s.comps.DescribeComputationModel(ctx, id)
		if err != nil {
			continue
		}
		if model.BoundAssetID == assetID {
			matched = append(matched, id)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("asset %s has no computation models: %w", assetID, ports.ErrNotFound)
	}
	return matched, nil
}

// History returns every execution of one action type against a
// computation model, newest first.
func (s *ExecutionService) History(ctx context.Context, modelID, actionType string) ([]domain.Execution, error) {
	executions, err := s.comps.ListExecutions(ctx, modelID, actionType)
	if err != nil {
		return nil, fmt.Errorf("listing executions for %s: %w", modelID, err)
	}
	return executions, nil
}

// LatestStatus returns the most recent execution of one action type,
// enriched with its result message and, for a non-failed inference
// execution, the latest anomaly result value.
func (s *ExecutionService) LatestStatus(ctx context.Context, modelID, actionType string) (*domain.ExecutionDetail, error) {
	executions, err := s.History(ctx, modelID, actionType)
	if err != nil {
		return nil, err
	}
	if len(executions) == 0 {
		return nil, fmt.Errorf("model %s has no executions: %w", modelID, ports.ErrNotFound)
	}
	s.log.Info("found executions", "count", len(executions))

	detail := &domain.ExecutionDetail{Execution: executions[0]}

	message, err := s.comps.ExecutionResultMessage(ctx, detail.ID)
	if err != nil {
		s.log.Error("error getting execution result", "executionId", detail.ID, "error", err)
		message = "error retrieving result message"
	}
	detail.ResultMessage = message

	if actionType == domain.ActionTypeInference && detail.State != "FAILED" {
		detail.AnomalyResult = s.latestInferenceResult(ctx, modelID)
	}
	return detail, nil
}

// latestInferenceResult reads the current value of the model's result
// property. Failures degrade to a placeholder, the status display still
// renders.
func (s *ExecutionService) latestInferenceResult(ctx context.Context, modelID string) string {
	model, err := s.comps.DescribeComputationModel(ctx, modelID)
	if err != nil {
		s.log.Error("error resolving result property", "computationModelId", modelID, "error", err)
		return "error retrieving result"
	}
	value, err := s.telemetry.PropertyValueString(ctx, model.BoundAssetID, model.ResultPropertyID)
	if err != nil {
		s.log.Error("error getting inference result", "computationModelId", modelID, "error", err)
		return "error retrieving result"
	}
	return value
}
