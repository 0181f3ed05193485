package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports"
)

// Inference modes accepted by SetMode.
const (
	InferenceStart = "START"
	InferenceStop  = "STOP"
)

// InferenceSettings carries the inference-schedule parameters applied
// on START.
type InferenceSettings struct {
	DataDelayOffsetMinutes int
	// DataUploadFrequency is an ISO-8601 duration, e.g. "PT5M".
	DataUploadFrequency   string
	WeeklyOperatingWindow string

	// PropagationDelay is waited after the action is accepted, before
	// the first timer poll; the flip is not immediately visible.
	PropagationDelay time.Duration
	PollInterval     time.Duration
}

type inferencePayload struct {
	InferenceMode          string `json:"inferenceMode"`
	DataDelayOffsetMinutes int    `json:"dataDelayOffsetInMinutes,omitempty"`
	DataUploadFrequency    string `json:"dataUploadFrequency,omitempty"`
	WeeklyOperatingWindow  string `json:"weeklyOperatingWindow,omitempty"`
}

// InferenceService starts and stops the periodic inference timer of an
// anomaly-detection computation model.
type InferenceService struct {
	comps   ports.ComputationAPI
	sleeper ports.Sleeper
	log     *slog.Logger
}

// NewInferenceService creates an inference service.
func NewInferenceService(comps ports.ComputationAPI, sleeper ports.Sleeper, log *slog.Logger) *InferenceService {
	if log == nil {
		log = slog.Default()
	}
	return &InferenceService{comps: comps, sleeper: sleeper, log: log}
}

// SetMode executes the inference action in the given mode and waits for
// the model's inference timer to reflect it.
func (s *InferenceService) SetMode(ctx context.Context, modelID, mode string, settings InferenceSettings) (string, error) {
	if mode != InferenceStart && mode != InferenceStop {
		return "", fmt.Errorf("invalid inference mode %q", mode)
	}

	model, err := s.comps.DescribeComputationModel(ctx, modelID)
	if err != nil {
		return "", fmt.Errorf("describing computation model %s: %w", modelID, err)
	}
	defID := model.ActionDefinitionID(domain.ActionTypeInference)
	if defID == "" {
		return "", fmt.Errorf("computation model %s declares no inference action", modelID)
	}

	payload := inferencePayload{InferenceMode: mode}
	if mode == InferenceStart {
		payload.DataDelayOffsetMinutes = settings.DataDelayOffsetMinutes
		payload.DataUploadFrequency = settings.DataUploadFrequency
		payload.WeeklyOperatingWindow = settings.WeeklyOperatingWindow
	}
	doc, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding inference payload: %w", err)
	}

	actionID, err := s.comps.ExecuteModelAction(ctx, defID, string(doc), modelID)
	if err != nil {
		return "", fmt.Errorf("executing inference action: %w", err)
	}
	s.log.Info("inference action executed", "mode", mode, "actionId", actionID)

	if err := s.sleeper.Sleep(ctx, settings.PropagationDelay); err != nil {
		return actionID, err
	}
	if err := s.waitForTimer(ctx, modelID, mode == InferenceStart, settings.PollInterval); err != nil {
		return actionID, err
	}
	return actionID, nil
}

// waitForTimer polls the inference timer until it matches the desired
// state.
func (s *InferenceService) waitForTimer(ctx context.Context, modelID string, want bool, interval time.Duration) error {
	s.log.Info("waiting for inference timer", "active", want, "interval", interval)
	for {
		active, err := s.comps.InferenceTimerActive(ctx, modelID)
		if err != nil {
			return fmt.Errorf("polling inference timer: %w", err)
		}
		if active == want {
			if want {
				s.log.Info("inference started", "computationModelId", modelID)
			} else {
				s.log.Info("inference stopped", "computationModelId", modelID)
			}
			return nil
		}
		if err := s.sleeper.Sleep(ctx, interval); err != nil {
			return err
		}
	}
}
