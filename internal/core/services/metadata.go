package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports"
)

// MetadataImportSettings drives one definitions import.
type MetadataImportSettings struct {
	Bucket       string
	KeyPrefix    string
	JobIDPrefix  string
	PollInterval time.Duration
}

// MetadataImportService uploads a model/asset definitions document and
// runs a metadata transfer job over it.
type MetadataImportService struct {
	store    ports.ObjectStore
	metadata ports.MetadataAPI
	sleeper  ports.Sleeper
	log      *slog.Logger

	// now is swapped in tests for deterministic job ids.
	now func() time.Time
}

// NewMetadataImportService creates a metadata import service.
func NewMetadataImportService(store ports.ObjectStore, metadata ports.MetadataAPI, sleeper ports.Sleeper, log *slog.Logger) *MetadataImportService {
	if log == nil {
		log = slog.Default()
	}
	return &MetadataImportService{
		store:    store,
		metadata: metadata,
		sleeper:  sleeper,
		log:      log,
		now:      time.Now,
	}
}

// Import uploads the definitions file, starts the transfer job and
// waits for it to finish. An ERROR terminal state is returned as an
// error carrying the failure report URL.
func (s *MetadataImportService) Import(ctx context.Context, definitionsPath string, settings MetadataImportSettings) (string, error) {
	fileName := filepath.Base(definitionsPath)
	key := settings.KeyPrefix + fileName
	jobID := fmt.Sprintf("%s_%d", settings.JobIDPrefix, s.now().Unix())

	if err := s.store.Upload(ctx, settings.Bucket, key, definitionsPath); err != nil {
		return "", fmt.Errorf("uploading definitions file: %w", err)
	}
	s.log.Info("uploaded definitions file", "bucket", settings.Bucket, "key", key)

	if err := s.metadata.CreateTransferJob(ctx, jobID, settings.Bucket, key); err != nil {
		return "", fmt.Errorf("creating metadata transfer job: %w", err)
	}
	s.log.Info("created metadata transfer job", "jobId", jobID)

	if err := s.waitForJob(ctx, jobID, settings.PollInterval); err != nil {
		return jobID, err
	}
	return jobID, nil
}

// waitForJob polls the transfer job until COMPLETED or ERROR, logging
// the per-row progress counters on the way.
func (s *MetadataImportService) waitForJob(ctx context.Context, jobID string, interval time.Duration) error {
	s.log.Info("checking transfer job status", "jobId", jobID, "interval", interval)
	for {
		status, err := s.metadata.TransferJobStatus(ctx, jobID)
		if err != nil {
			return fmt.Errorf("checking transfer job %s: %w", jobID, err)
		}
		switch status.State {
		case domain.TransferJobRunning, domain.TransferJobCompleted:
			s.log.Info("transfer job progress",
				"state", status.State,
				"total", status.Progress.Total,
				"succeeded", status.Progress.Succeeded,
				"skipped", status.Progress.Skipped,
				"failed", status.Progress.Failed,
			)
		case domain.TransferJobError:
			return fmt.Errorf("transfer job %s failed, report: %s", jobID, status.ReportURL)
		default:
			s.log.Info("transfer job status", "state", status.State)
		}
		if status.State == domain.TransferJobCompleted {
			s.log.Info("transfer job completed", "jobId", jobID)
			return nil
		}
		if err := s.sleeper.Sleep(ctx, interval); err != nil {
			return err
		}
	}
}
