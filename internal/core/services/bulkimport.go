package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports"
)

// BulkImportSettings drives one historical-data import run.
type BulkImportSettings struct {
	DataDir   string
	LabelsDir string

	DataBucket  string
	DataPrefix  string
	ErrorPrefix string
	RoleARN     string

	LabelsBucket string
	LabelsPrefix string

	// JobSpacing is waited between job submissions to stay under the
	// create-job rate limit.
	JobSpacing   time.Duration
	PollInterval time.Duration
}

// BulkImportService uploads generated historical data files to object
// storage, submits one bulk import job per file and waits for every job
// to reach a terminal submission status.
type BulkImportService struct {
	store   ports.ObjectStore
	imports ports.ImportAPI
	sleeper ports.Sleeper
	log     *slog.Logger
}

// NewBulkImportService creates a bulk import service.
func NewBulkImportService(store ports.ObjectStore, imports ports.ImportAPI, sleeper ports.Sleeper, log *slog.Logger) *BulkImportService {
	if log == nil {
		log = slog.Default()
	}
	return &BulkImportService{store: store, imports: imports, sleeper: sleeper, log: log}
}

// Run executes the full import: upload data and labels, create jobs,
// wait for them, then remove the local data and label directories.
func (s *BulkImportService) Run(ctx context.Context, settings BulkImportSettings) error {
	if err := s.UploadData(ctx, settings); err != nil {
		return err
	}
	if err := s.UploadLabels(ctx, settings); err != nil {
		return err
	}
	jobIDs, err := s.CreateJobs(ctx, settings)
	if err != nil {
		return err
	}
	if err := s.WaitForJobs(ctx, jobIDs, settings.PollInterval); err != nil {
		return err
	}
	return s.CleanupLocal(settings)
}

// UploadData replaces the objects under the data prefix with the files
// currently in the local data directory.
func (s *BulkImportService) UploadData(ctx context.Context, settings BulkImportSettings) error {
	s.log.Info("deleting existing data files in object storage", "prefix", settings.DataPrefix)
	if err := s.store.DeletePrefix(ctx, settings.DataBucket, settings.DataPrefix); err != nil {
		return fmt.Errorf("clearing data prefix: %w", err)
	}

	files, err := localFiles(settings.DataDir)
	if err != nil {
		return fmt.Errorf("reading data directory: %w", err)
	}
	s.log.Info("uploading historical data files", "count", len(files))
	for _, path := range files {
		key := settings.DataPrefix + filepath.Base(path)
		if err := s.store.Upload(ctx, settings.DataBucket, key, path); err != nil {
			return fmt.Errorf("uploading %s: %w", path, err)
		}
	}
	return nil
}

// UploadLabels replaces the objects under the labels prefix with the
// local label files, nested per asset external id.
func (s *BulkImportService) UploadLabels(ctx context.Context, settings BulkImportSettings) error {
	s.log.Info("deleting existing labels in object storage", "prefix", settings.LabelsPrefix)
	if err := s.store.DeletePrefix(ctx, settings.LabelsBucket, settings.LabelsPrefix); err != nil {
		return fmt.Errorf("clearing labels prefix: %w", err)
	}

	files, err := localFiles(settings.LabelsDir)
	if err != nil {
		return fmt.Errorf("reading labels directory: %w", err)
	}
	s.log.Info("uploading label files", "count", len(files))
	for _, path := range files {
		name := filepath.Base(path)
		externalID := strings.TrimSuffix(name, "_labels.csv")
		key := settings.LabelsPrefix + externalID + "/" + name
		if err := s.store.Upload(ctx, settings.LabelsBucket, key, path); err != nil {
			return fmt.Errorf("uploading %s: %w", path, err)
		}
	}
	return nil
}

// CreateJobs submits one bulk import job per object under the data
// prefix and returns the job ids.
func (s *BulkImportService) CreateJobs(ctx context.Context, settings BulkImportSettings) ([]string, error) {
	keys, err := s.store.ListKeys(ctx, settings.DataBucket, settings.DataPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing data objects: %w", err)
	}
	if len(keys) == 0 {
		s.log.Warn("no data found in object storage")
		return nil, nil
	}
	s.log.Info("creating bulk import jobs", "count", len(keys))

	var jobIDs []string
	for i, key := range keys {
		jobID, err := s.imports.CreateImportJob(ctx, domain.ImportJobSpec{
			Name:        fmt.Sprintf("job_%d_%d", time.Now().Unix(), i),
			RoleARN:     settings.RoleARN,
			Bucket:      settings.DataBucket,
			Key:         key,
			ErrorPrefix: settings.ErrorPrefix,
			Columns:     domain.ImportDataColumns,
		})
		if err != nil {
			return jobIDs, fmt.Errorf("creating import job for %s: %w", key, err)
		}
		s.log.Info("created job", "jobId", jobID, "key", key)
		jobIDs = append(jobIDs, jobID)
		if err := s.sleeper.Sleep(ctx, settings.JobSpacing); err != nil {
			return jobIDs, err
		}
	}
	return jobIDs, nil
}

// WaitForJobs polls until every job leaves PENDING/RUNNING.
func (s *BulkImportService) WaitForJobs(ctx context.Context, jobIDs []string, interval time.Duration) error {
	if len(jobIDs) == 0 {
		return nil
	}
	s.log.Info("checking job submission status", "interval", interval)

	active := make(map[string]struct{}, len(jobIDs))
	for _, id := range jobIDs {
		active[id] = struct{}{}
	}
	for len(active) > 0 {
		for id := range active {
			status, err := s.imports.ImportJobStatus(ctx, id)
			if err != nil {
				return fmt.Errorf("checking job %s: %w", id, err)
			}
			if status == domain.ImportJobPending || status == domain.ImportJobRunning {
				continue
			}
			s.log.Info("job finished submission", "jobId", id, "status", status)
			delete(active, id)
		}
		if len(active) == 0 {
			break
		}
		if err := s.sleeper.Sleep(ctx, interval); err != nil {
			return err
		}
	}
	s.log.Info("completed submitting jobs")
	return nil
}

// CleanupLocal removes the local data and label directories.
func (s *BulkImportService) CleanupLocal(settings BulkImportSettings) error {
	for _, dir := range []string{settings.DataDir, settings.LabelsDir} {
		if dir == "" {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
		s.log.Info("removed local directory", "dir", dir)
	}
	return nil
}

// localFiles returns the regular files directly inside dir.
func localFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
