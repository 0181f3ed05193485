package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports/mocks"
)

func trainingSettings() TrainingSettings {
	return TrainingSettings{
		ModelName:          "robot-anomaly",
		AssetID:            "asset-1",
		InputPropertyIDs:   []string{"p1", "p2"},
		ResultPropertyID:   "p3",
		DataStartTime:      1_700_000_000,
		DataEndTime:        1_702_592_000,
		TargetSamplingRate: "PT5M",
		PollInterval:       5 * time.Second,
	}
}

func TestTrainingRunWaitsForActiveModel(t *testing.T) {
	comps := mocks.NewMockComputationAPI()
	comps.CreateStates = []string{
		domain.ComputationStateCreating,
		domain.ComputationStateCreating,
		domain.ComputationStateActive,
	}
	sleeper := &mocks.MockSleeper{}
	svc := NewTrainingService(comps, sleeper, discardLogger())

	modelID, actionID, err := svc.Run(context.Background(), trainingSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if modelID == "" || actionID == "" {
		t.Fatalf("expected model and action ids, got %q / %q", modelID, actionID)
	}
	if len(sleeper.Slept) != 2 {
		t.Errorf("expected 2 polls while CREATING, slept %d times", len(sleeper.Slept))
	}
	if len(comps.ActionPayloads) != 1 {
		t.Fatalf("expected 1 action execution, got %d", len(comps.ActionPayloads))
	}
}

func TestTrainingRunFailedModelCreation(t *testing.T) {
	comps := mocks.NewMockComputationAPI()
	comps.CreateStates = []string{domain.ComputationStateFailed}
	svc := NewTrainingService(comps, &mocks.MockSleeper{}, discardLogger())

	_, _, err := svc.Run(context.Background(), trainingSettings())
	if err == nil {
		t.Fatal("expected error for FAILED model state")
	}
	if len(comps.ActionPayloads) != 0 {
		t.Errorf("no action must run after a failed creation, got %d", len(comps.ActionPayloads))
	}
}

func TestTrainingPayloadOptionalSections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*TrainingSettings)
		contains []string
		excludes []string
	}{
		{
			name:     "bare payload",
			mutate:   func(s *TrainingSettings) {},
			contains: []string{`"exportDataStartTime":1700000000`, `"targetSamplingRate":"PT5M"`},
			excludes: []string{"modelEvaluationConfiguration", "labelInputConfiguration"},
		},
		{
			name: "with evaluation",
			mutate: func(s *TrainingSettings) {
				s.Evaluation = EvaluationSettings{Bucket: "eval-bucket", Prefix: "eval/", DataStartTime: 1, DataEndTime: 2}
			},
			contains: []string{`"modelEvaluationConfiguration"`, `"bucketName":"eval-bucket"`},
			excludes: []string{"labelInputConfiguration"},
		},
		{
			name: "with labels",
			mutate: func(s *TrainingSettings) {
				s.Labels = LabelSettings{Bucket: "labels-bucket", Prefix: "l4e/labels/"}
			},
			contains: []string{`"labelInputConfiguration"`, `"prefix":"l4e/labels/"`},
			excludes: []string{"modelEvaluationConfiguration"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comps := mocks.NewMockComputationAPI()
			comps.AddModel(&domain.ComputationModel{
				ID: "cm-x", State: domain.ComputationStateActive,
				ActionDefinitions: []domain.ActionDefinition{{ID: "ad-1", Name: domain.ActionTypeTraining}},
			})
			svc := NewTrainingService(comps, &mocks.MockSleeper{}, discardLogger())

			settings := trainingSettings()
			tt.mutate(&settings)

			if _, err := svc.Train(context.Background(), "cm-x", settings); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			payload := comps.ActionPayloads[0]
			for _, want := range tt.contains {
				if !strings.Contains(payload, want) {
					t.Errorf("payload %s missing %s", payload, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(payload, unwanted) {
					t.Errorf("payload %s must not contain %s", payload, unwanted)
				}
			}
		})
	}
}

func TestTrainMissingActionDefinition(t *testing.T) {
	comps := mocks.NewMockComputationAPI()
	comps.AddModel(&domain.ComputationModel{ID: "cm-x", State: domain.ComputationStateActive})
	svc := NewTrainingService(comps, &mocks.MockSleeper{}, discardLogger())

	if _, err := svc.Train(context.Background(), "cm-x", trainingSettings()); err == nil {
		t.Fatal("expected error when the model declares no training action")
	}
}
