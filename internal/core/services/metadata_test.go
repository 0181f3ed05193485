package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports/mocks"
)

func metadataSettings() MetadataImportSettings {
	return MetadataImportSettings{
		Bucket:       "meta-bucket",
		KeyPrefix:    "metadata-bulk-import/",
		JobIDPrefix:  "Workshop_AD_Import",
		PollInterval: 30 * time.Second,
	}
}

func newMetadataService(store *mocks.MockObjectStore, metadata *mocks.MockMetadataAPI) *MetadataImportService {
	svc := NewMetadataImportService(store, metadata, &mocks.MockSleeper{}, discardLogger())
	svc.now = func() time.Time { return time.Unix(1_750_000_000, 0) }
	return svc
}

func TestMetadataImportCompletes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "definitions.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := mocks.NewMockObjectStore()
	metadata := mocks.NewMockMetadataAPI()
	jobID := "Workshop_AD_Import_1750000000"
	metadata.StatusQueue[jobID] = []domain.TransferJobStatus{
		{State: domain.TransferJobRunning, Progress: domain.TransferProgress{Total: 10, Succeeded: 4}},
		{State: domain.TransferJobCompleted, Progress: domain.TransferProgress{Total: 10, Succeeded: 10}},
	}

	svc := newMetadataService(store, metadata)

	got, err := svc.Import(context.Background(), path, metadataSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != jobID {
		t.Errorf("job id = %s, want %s", got, jobID)
	}
	if _, ok := store.Uploaded["meta-bucket/metadata-bulk-import/definitions.json"]; !ok {
		t.Errorf("definitions file not uploaded, store has %v", store.Uploaded)
	}
	if len(metadata.Calls) == 0 || !strings.HasPrefix(metadata.Calls[0], "CreateTransferJob "+jobID) {
		t.Errorf("expected transfer job created first, calls %v", metadata.Calls)
	}
}

func TestMetadataImportErrorState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "definitions.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	metadata := mocks.NewMockMetadataAPI()
	jobID := "Workshop_AD_Import_1750000000"
	metadata.StatusQueue[jobID] = []domain.TransferJobStatus{
		{State: domain.TransferJobError, ReportURL: "s3://meta-bucket/report.json"},
	}

	svc := newMetadataService(mocks.NewMockObjectStore(), metadata)

	_, err := svc.Import(context.Background(), path, metadataSettings())
	if err == nil {
		t.Fatal("expected error for ERROR terminal state")
	}
	if !strings.Contains(err.Error(), "report.json") {
		t.Errorf("error %q does not carry the report URL", err)
	}
}
