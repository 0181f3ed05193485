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

func TestCountHistorySkipsUnaliasedProperties(t *testing.T) {
	assets := mocks.NewMockAssetAPI()
	assets.AddAsset(&domain.Asset{
		ID: "asset-1", ExternalID: "Workshop_Robot_1-1", Name: "Robot",
		Properties: []domain.Property{
			{ID: "p1", Name: "Joint 1 Current", Alias: "/a/joint1_current"},
			{ID: "p2", Name: "Joint 1 Temperature", Alias: "/a/joint1_temperature"},
			{ID: "p3", Name: "Anomaly Result"},
		},
	})
	telemetry := mocks.NewMockTelemetryAPI()
	telemetry.HistoryCounts["/a/joint1_current"] = 8640
	telemetry.HistoryCounts["/a/joint1_temperature"] = 8639

	svc := NewVerifyService(assets, telemetry, discardLogger())

	counts, err := svc.CountHistory(context.Background(), "Workshop_Robot_1-1", 30*24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 measurements, got %d", len(counts))
	}
	if counts[0].Name != "Joint 1 Current" || counts[0].DataPoints != 8640 {
		t.Errorf("first count = %+v", counts[0])
	}
}

func TestCountHistoryMissingAsset(t *testing.T) {
	svc := NewVerifyService(mocks.NewMockAssetAPI(), mocks.NewMockTelemetryAPI(), discardLogger())

	_, err := svc.CountHistory(context.Background(), "Workshop_Robot_9-9", time.Hour)
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
