package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports/mocks"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func bulkSettings(dataDir, labelsDir string) BulkImportSettings {
	return BulkImportSettings{
		DataDir:      dataDir,
		LabelsDir:    labelsDir,
		DataBucket:   "data-bucket",
		DataPrefix:   "data/",
		ErrorPrefix:  "errors/",
		RoleARN:      "arn:aws:iam::123456789012:role/import",
		LabelsBucket: "l4e-bucket",
		LabelsPrefix: "l4e/labels/",
		JobSpacing:   time.Second,
		PollInterval: 10 * time.Second,
	}
}

func TestBulkImportRun(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	labelsDir := filepath.Join(t.TempDir(), "labels")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(labelsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dataDir, "workshop_robot_1-1_historical_data.csv")
	writeFile(t, dataDir, "workshop_robot_3-1_historical_data.csv")
	writeFile(t, labelsDir, "workshop_robot_1-1_labels.csv")

	store := mocks.NewMockObjectStore()
	// Stale object under the data prefix must be cleared first.
	store.Uploaded["data-bucket/data/old.csv"] = "old"

	imports := mocks.NewMockImportAPI()
	imports.StatusQueue["job-1"] = []string{domain.ImportJobRunning, domain.ImportJobCompleted}
	imports.StatusQueue["job-2"] = []string{domain.ImportJobCompleted}

	svc := NewBulkImportService(store, imports, &mocks.MockSleeper{}, discardLogger())

	if err := svc.Run(context.Background(), bulkSettings(dataDir, labelsDir)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := store.Uploaded["data-bucket/data/old.csv"]; ok {
		t.Error("stale data object must be deleted before upload")
	}
	if _, ok := store.Uploaded["data-bucket/data/workshop_robot_1-1_historical_data.csv"]; !ok {
		t.Errorf("data file not uploaded, store has %v", store.Uploaded)
	}
	// Label keys nest under the asset external id.
	if _, ok := store.Uploaded["l4e-bucket/l4e/labels/workshop_robot_1-1/workshop_robot_1-1_labels.csv"]; !ok {
		t.Errorf("label file not uploaded under asset prefix, store has %v", store.Uploaded)
	}

	if len(imports.Jobs) != 2 {
		t.Errorf("expected one job per data file, got %d", len(imports.Jobs))
	}
	for _, spec := range imports.Jobs {
		if spec.ErrorPrefix != "errors/" || spec.RoleARN == "" {
			t.Errorf("job spec incomplete: %+v", spec)
		}
		if len(spec.Columns) != len(domain.ImportDataColumns) {
			t.Errorf("job columns = %v", spec.Columns)
		}
	}

	if _, err := os.Stat(dataDir); !os.IsNotExist(err) {
		t.Error("local data directory must be removed after the run")
	}
	if _, err := os.Stat(labelsDir); !os.IsNotExist(err) {
		t.Error("local labels directory must be removed after the run")
	}
}

func TestCreateJobsEmptyStore(t *testing.T) {
	store := mocks.NewMockObjectStore()
	imports := mocks.NewMockImportAPI()
	svc := NewBulkImportService(store, imports, &mocks.MockSleeper{}, discardLogger())

	jobIDs, err := svc.CreateJobs(context.Background(), bulkSettings("", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobIDs) != 0 {
		t.Errorf("expected no jobs for an empty store, got %v", jobIDs)
	}
}

func TestWaitForJobsPollsUntilTerminal(t *testing.T) {
	imports := mocks.NewMockImportAPI()
	imports.StatusQueue["job-1"] = []string{
		domain.ImportJobPending,
		domain.ImportJobRunning,
		domain.ImportJobFailed,
	}
	sleeper := &mocks.MockSleeper{}
	svc := NewBulkImportService(mocks.NewMockObjectStore(), imports, sleeper, discardLogger())

	if err := svc.WaitForJobs(context.Background(), []string{"job-1"}, 10*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Two non-terminal polls before FAILED ends the wait. FAILED is a
	// terminal submission status, not an error of the wait itself.
	if len(sleeper.Slept) != 2 {
		t.Errorf("expected 2 sleeps, got %d", len(sleeper.Slept))
	}
}
