package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports"
	"github.com/mfgops/swctl/internal/core/ports/mocks"
)

func TestModelsForAsset(t *testing.T) {
	comps := mocks.NewMockComputationAPI()
	comps.AddModel(&domain.ComputationModel{ID: "cm-1", BoundAssetID: "asset-1"})
	comps.AddModel(&domain.ComputationModel{ID: "cm-2", BoundAssetID: "asset-2"})
	svc := NewExecutionService(comps, mocks.NewMockTelemetryAPI(), discardLogger())

	ids, err := svc.ModelsForAsset(context.Background(), "asset-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "cm-1" {
		t.Fatalf("ids = %v, want [cm-1]", ids)
	}

	_, err = svc.ModelsForAsset(context.Background(), "asset-without-models")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestStatusTraining(t *testing.T) {
	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	comps := mocks.NewMockComputationAPI()
	comps.AddModel(&domain.ComputationModel{ID: "cm-1", BoundAssetID: "asset-1", ResultPropertyID: "p3"})
	comps.Executions["cm-1"] = []domain.Execution{
		{ID: "ex-2", State: "COMPLETED", StartTime: &start, EndTime: &end},
		{ID: "ex-1", State: "COMPLETED"},
	}
	comps.ResultMessages["ex-2"] = "training succeeded"

	svc := NewExecutionService(comps, mocks.NewMockTelemetryAPI(), discardLogger())

	detail, err := svc.LatestStatus(context.Background(), "cm-1", domain.ActionTypeTraining)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.ID != "ex-2" {
		t.Errorf("latest execution = %s, want ex-2 (newest first)", detail.ID)
	}
	if detail.ResultMessage != "training succeeded" {
		t.Errorf("result message = %q", detail.ResultMessage)
	}
	if detail.AnomalyResult != "" {
		t.Errorf("training status must not carry an anomaly result, got %q", detail.AnomalyResult)
	}
}

func TestLatestStatusInferenceCarriesAnomalyResult(t *testing.T) {
	comps := mocks.NewMockComputationAPI()
	comps.AddModel(&domain.ComputationModel{ID: "cm-1", BoundAssetID: "asset-1", ResultPropertyID: "p3"})
	comps.Executions["cm-1"] = []domain.Execution{{ID: "ex-1", State: "COMPLETED"}}
	comps.ResultMessages["ex-1"] = "ok"

	telemetry := mocks.NewMockTelemetryAPI()
	telemetry.PropertyValues["asset-1/p3"] = `{"anomaly_score":0.91}`

	svc := NewExecutionService(comps, telemetry, discardLogger())

	detail, err := svc.LatestStatus(context.Background(), "cm-1", domain.ActionTypeInference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.AnomalyResult != `{"anomaly_score":0.91}` {
		t.Errorf("anomaly result = %q", detail.AnomalyResult)
	}
}

func TestLatestStatusFailedInferenceSkipsAnomalyResult(t *testing.T) {
	comps := mocks.NewMockComputationAPI()
	comps.AddModel(&domain.ComputationModel{ID: "cm-1", BoundAssetID: "asset-1", ResultPropertyID: "p3"})
	comps.Executions["cm-1"] = []domain.Execution{{ID: "ex-1", State: "FAILED"}}

	telemetry := mocks.NewMockTelemetryAPI()
	telemetry.PropertyValues["asset-1/p3"] = "stale"

	svc := NewExecutionService(comps, telemetry, discardLogger())

	detail, err := svc.LatestStatus(context.Background(), "cm-1", domain.ActionTypeInference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.AnomalyResult != "" {
		t.Errorf("failed execution must not read the result property, got %q", detail.AnomalyResult)
	}
}

func TestLatestStatusNoExecutions(t *testing.T) {
	comps := mocks.NewMockComputationAPI()
	comps.AddModel(&domain.ComputationModel{ID: "cm-1"})
	svc := NewExecutionService(comps, mocks.NewMockTelemetryAPI(), discardLogger())

	_, err := svc.LatestStatus(context.Background(), "cm-1", domain.ActionTypeTraining)
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
