package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports"
)

// DetectorCleanupService tears down the equipment-detector resources
// behind an asset: inference schedulers, then models, then datasets.
// The asset id links them; dataset names embed it.
type DetectorCleanupService struct {
	assets   ports.AssetAPI
	detector ports.DetectorAPI
	sleeper  ports.Sleeper
	log      *slog.Logger

	// stopPollInterval paces the wait for a scheduler to stop.
	stopPollInterval time.Duration
}

// NewDetectorCleanupService creates a detector cleanup service.
func NewDetectorCleanupService(assets ports.AssetAPI, detector ports.DetectorAPI, sleeper ports.Sleeper, stopPollInterval time.Duration, log *slog.Logger) *DetectorCleanupService {
	if log == nil {
		log = slog.Default()
	}
	return &DetectorCleanupService{
		assets:           assets,
		detector:         detector,
		sleeper:          sleeper,
		stopPollInterval: stopPollInterval,
		log:              log,
	}
}

// Cleanup discovers and removes the detector resources of the asset
// identified by an external id. A missing asset means there is nothing
// to remove.
func (s *DetectorCleanupService) Cleanup(ctx context.Context, assetExternalID string) error {
	assetID, err := s.assets.ResolveAssetByExternalID(ctx, assetExternalID)
	if errors.Is(err, ports.ErrNotFound) {
		s.log.Warn("asset does not exist, no detector resources to remove", "externalId", assetExternalID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolving asset %q: %w", assetExternalID, err)
	}

	datasets, err := s.DatasetsForAsset(ctx, assetID)
	if err != nil {
		return err
	}
	var models []string
	for _, dataset := range datasets {
		names, err := s.detector.ListModelNames(ctx, dataset)
		if err != nil {
			return fmt.Errorf("listing models for dataset %s: %w", dataset, err)
		}
		models = append(models, names...)
	}
	var schedulers []string
	for _, model := range models {
		names, err := s.detector.ListSchedulerNames(ctx, model)
		if err != nil {
			return fmt.Errorf("listing schedulers for model %s: %w", model, err)
		}
		schedulers = append(schedulers, names...)
	}

	s.log.Info("stopping inference schedulers")
	if err := s.StopSchedulers(ctx, schedulers); err != nil {
		return err
	}

	s.log.Info("removing inference schedulers")
	for _, name := range schedulers {
		if err := s.detector.DeleteScheduler(ctx, name); err != nil {
			return fmt.Errorf("deleting scheduler %s: %w", name, err)
		}
		s.log.Info("deleted inference scheduler", "scheduler", name)
	}

	s.log.Info("removing models")
	for _, name := range models {
		if err := s.detector.DeleteModel(ctx, name); err != nil {
			return fmt.Errorf("deleting model %s: %w", name, err)
		}
		s.log.Info("deleted model", "model", name)
	}

	s.log.Info("removing datasets")
	for _, name := range datasets {
		if err := s.detector.DeleteDataset(ctx, name); err != nil {
			return fmt.Errorf("deleting dataset %s: %w", name, err)
		}
		s.log.Info("deleted dataset", "dataset", name)
	}
	return nil
}

// DatasetsForAsset returns the datasets whose name embeds the asset id.
func (s *DetectorCleanupService) DatasetsForAsset(ctx context.Context, assetID string) ([]string, error) {
	names, err := s.detector.ListDatasetNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	var matched []string
	for _, name := range names {
		if strings.Contains(name, assetID) {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

// StopSchedulers stops each RUNNING scheduler and waits for it to
// report STOPPED before moving on. Deleting a stopping scheduler is
// rejected by the service.
func (s *DetectorCleanupService) StopSchedulers(ctx context.Context, schedulers []string) error {
	stopped := 0
	for _, name := range schedulers {
		status, err := s.detector.SchedulerStatus(ctx, name)
		if err != nil {
			return fmt.Errorf("checking scheduler %s: %w", name, err)
		}
		if status != domain.SchedulerRunning {
			continue
		}
		if err := s.detector.StopScheduler(ctx, name); err != nil {
			return fmt.Errorf("stopping scheduler %s: %w", name, err)
		}
		for {
			if err := s.sleeper.Sleep(ctx, s.stopPollInterval); err != nil {
				return err
			}
			status, err := s.detector.SchedulerStatus(ctx, name)
			if err != nil {
				return fmt.Errorf("checking scheduler %s: %w", name, err)
			}
			if status == domain.SchedulerStopped {
				s.log.Info("stopped inference scheduler", "scheduler", name)
				break
			}
		}
		stopped++
	}
	if stopped == 0 {
		s.log.Info("nothing to stop")
	}
	return nil
}
