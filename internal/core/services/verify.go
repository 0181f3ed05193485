package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfgops/swctl/internal/core/ports"
)

// MeasurementCount pairs a measurement with the number of samples found
// in the verification window.
type MeasurementCount struct {
	Name       string
	Alias      string
	DataPoints int
}

// VerifyService counts the historical samples stored behind each
// measurement of an asset.
type VerifyService struct {
	assets    ports.AssetAPI
	telemetry ports.TelemetryAPI
	log       *slog.Logger

	now func() time.Time
}

// NewVerifyService creates a verify service.
func NewVerifyService(assets ports.AssetAPI, telemetry ports.TelemetryAPI, log *slog.Logger) *VerifyService {
	if log == nil {
		log = slog.Default()
	}
	return &VerifyService{assets: assets, telemetry: telemetry, log: log, now: time.Now}
}

// CountHistory returns the sample count per aliased measurement of the
// asset over the trailing window. Properties without an alias are not
// measurements and are skipped.
func (s *VerifyService) CountHistory(ctx context.Context, assetExternalID string, window time.Duration) ([]MeasurementCount, error) {
	assetID, err := s.assets.ResolveAssetByExternalID(ctx, assetExternalID)
	if err != nil {
		return nil, fmt.Errorf("resolving asset %q: %w", assetExternalID, err)
	}
	asset, err := s.assets.DescribeAssetWithProperties(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("describing asset %s: %w", assetID, err)
	}

	end := s.now()
	start := end.Add(-window)

	var counts []MeasurementCount
	for _, p := range asset.Properties {
		if p.Alias == "" {
			continue
		}
		n, err := s.telemetry.HistoryCount(ctx, p.Alias, start, end)
		if err != nil {
			return counts, fmt.Errorf("counting history for %s: %w", p.Alias, err)
		}
		s.log.Info("measurement", "name", p.Name, "dataPoints", n)
		counts = append(counts, MeasurementCount{Name: p.Name, Alias: p.Alias, DataPoints: n})
	}
	if len(counts) == 0 {
		s.log.Warn("no measurements found", "assetId", assetID)
	}
	return counts, nil
}
