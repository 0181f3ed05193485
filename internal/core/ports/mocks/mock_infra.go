package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports"
)

// MockMetadataAPI is an in-memory implementation of ports.MetadataAPI.
type MockMetadataAPI struct {
	mu sync.Mutex

	// StatusQueue feeds successive TransferJobStatus snapshots per job
	// id; when exhausted the last snapshot repeats.
	StatusQueue map[string][]domain.TransferJobStatus
	Errors      map[string]error

	Calls []string
}

// NewMockMetadataAPI creates an empty mock metadata API.
func NewMockMetadataAPI() *MockMetadataAPI {
	return &MockMetadataAPI{
		StatusQueue: make(map[string][]domain.TransferJobStatus),
		Errors:      make(map[string]error),
	}
}

func (m *MockMetadataAPI) CreateTransferJob(ctx context.Context, jobID, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "CreateTransferJob "+jobID+" "+bucket+"/"+key)
	return m.Errors["CreateTransferJob"]
}

func (m *MockMetadataAPI) TransferJobStatus(ctx context.Context, jobID string) (*domain.TransferJobStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "TransferJobStatus "+jobID)
	if err := m.Errors["TransferJobStatus"]; err != nil {
		return nil, err
	}
	queue := m.StatusQueue[jobID]
	if len(queue) == 0 {
		return &domain.TransferJobStatus{State: domain.TransferJobCompleted}, nil
	}
	head := queue[0]
	if len(queue) > 1 {
		m.StatusQueue[jobID] = queue[1:]
	}
	return &head, nil
}

// MockDetectorAPI is an in-memory implementation of ports.DetectorAPI.
// Datasets own models, models own schedulers; deletes enforce that
// ordering the way the real service does.
type MockDetectorAPI struct {
	mu sync.Mutex

	Datasets   []string
	Models     map[string][]string // dataset -> models
	Schedulers map[string][]string // model -> schedulers
	// SchedulerStates feeds successive SchedulerStatus answers per
	// scheduler; when exhausted the last value repeats.
	SchedulerStates map[string][]string
	Errors          map[string]error

	Calls []string
}

// NewMockDetectorAPI creates an empty mock detector API.
func NewMockDetectorAPI() *MockDetectorAPI {
	return &MockDetectorAPI{
		Models:          make(map[string][]string),
		Schedulers:      make(map[string][]string),
		SchedulerStates: make(map[string][]string),
		Errors:          make(map[string]error),
	}
}

func (m *MockDetectorAPI) record(call string) {
	m.Calls = append(m.Calls, call)
}

func (m *MockDetectorAPI) ListDatasetNames(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListDatasetNames")
	if err := m.Errors["ListDatasetNames"]; err != nil {
		return nil, err
	}
	out := make([]string, len(m.Datasets))
	copy(out, m.Datasets)
	return out, nil
}

func (m *MockDetectorAPI) ListModelNames(ctx context.Context, datasetPrefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListModelNames " + datasetPrefix)
	if err := m.Errors["ListModelNames"]; err != nil {
		return nil, err
	}
	var out []string
	for ds, models := range m.Models {
		if strings.HasPrefix(ds, datasetPrefix) {
			out = append(out, models...)
		}
	}
	return out, nil
}

func (m *MockDetectorAPI) ListSchedulerNames(ctx context.Context, modelName string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListSchedulerNames " + modelName)
	if err := m.Errors["ListSchedulerNames"]; err != nil {
		return nil, err
	}
	out := make([]string, len(m.Schedulers[modelName]))
	copy(out, m.Schedulers[modelName])
	return out, nil
}

func (m *MockDetectorAPI) SchedulerStatus(ctx context.Context, schedulerName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SchedulerStatus " + schedulerName)
	if err := m.Errors["SchedulerStatus"]; err != nil {
		return "", err
	}
	states := m.SchedulerStates[schedulerName]
	if len(states) == 0 {
		return domain.SchedulerStopped, nil
	}
	head := states[0]
	if len(states) > 1 {
		m.SchedulerStates[schedulerName] = states[1:]
	}
	return head, nil
}

func (m *MockDetectorAPI) StopScheduler(ctx context.Context, schedulerName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("StopScheduler " + schedulerName)
	return m.Errors["StopScheduler "+schedulerName]
}

func (m *MockDetectorAPI) DeleteScheduler(ctx context.Context, schedulerName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteScheduler " + schedulerName)
	if err := m.Errors["DeleteScheduler "+schedulerName]; err != nil {
		return err
	}
	for model, scheds := range m.Schedulers {
		kept := scheds[:0]
		for _, s := range scheds {
			if s != schedulerName {
				kept = append(kept, s)
			}
		}
		m.Schedulers[model] = kept
	}
	return nil
}

func (m *MockDetectorAPI) DeleteModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteModel " + modelName)
	if err := m.Errors["DeleteModel "+modelName]; err != nil {
		return err
	}
	if len(m.Schedulers[modelName]) > 0 {
		return fmt.Errorf("model %s still has schedulers", modelName)
	}
	for ds, models := range m.Models {
		kept := models[:0]
		for _, name := range models {
			if name != modelName {
				kept = append(kept, name)
			}
		}
		m.Models[ds] = kept
	}
	return nil
}

func (m *MockDetectorAPI) DeleteDataset(ctx context.Context, datasetName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteDataset " + datasetName)
	if err := m.Errors["DeleteDataset "+datasetName]; err != nil {
		return err
	}
	if len(m.Models[datasetName]) > 0 {
		return fmt.Errorf("dataset %s still has models", datasetName)
	}
	kept := m.Datasets[:0]
	for _, ds := range m.Datasets {
		if ds != datasetName {
			kept = append(kept, ds)
		}
	}
	m.Datasets = kept
	return nil
}

// MockObjectStore is an in-memory implementation of ports.ObjectStore.
type MockObjectStore struct {
	mu sync.Mutex

	// Uploaded maps "bucket/key" to the local path it was uploaded from.
	Uploaded map[string]string
	Errors   map[string]error

	Calls []string
}

// NewMockObjectStore creates an empty mock object store.
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		Uploaded: make(map[string]string),
		Errors:   make(map[string]error),
	}
}

func (m *MockObjectStore) Upload(ctx context.Context, bucket, key, localPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "Upload "+bucket+"/"+key)
	if err := m.Errors["Upload"]; err != nil {
		return err
	}
	m.Uploaded[bucket+"/"+key] = localPath
	return nil
}

func (m *MockObjectStore) ListKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "ListKeys "+bucket+"/"+prefix)
	if err := m.Errors["ListKeys"]; err != nil {
		return nil, err
	}
	var out []string
	for full := range m.Uploaded {
		if strings.HasPrefix(full, bucket+"/"+prefix) {
			out = append(out, strings.TrimPrefix(full, bucket+"/"))
		}
	}
	return out, nil
}

func (m *MockObjectStore) DeletePrefix(ctx context.Context, bucket, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "DeletePrefix "+bucket+"/"+prefix)
	if err := m.Errors["DeletePrefix"]; err != nil {
		return err
	}
	for full := range m.Uploaded {
		if strings.HasPrefix(full, bucket+"/"+prefix) {
			delete(m.Uploaded, full)
		}
	}
	return nil
}

// MockProcessManager is an in-memory implementation of
// ports.ProcessManager.
type MockProcessManager struct {
	mu sync.Mutex

	// Running maps command-line substrings to pids.
	Running map[string]int32
	Err     error

	Killed []string
}

// NewMockProcessManager creates an empty mock process manager.
func NewMockProcessManager() *MockProcessManager {
	return &MockProcessManager{Running: make(map[string]int32)}
}

func (m *MockProcessManager) KillByCommand(ctx context.Context, substring string) (int32, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, false, m.Err
	}
	pid, ok := m.Running[substring]
	if !ok {
		return 0, false, nil
	}
	delete(m.Running, substring)
	m.Killed = append(m.Killed, substring)
	return pid, true, nil
}

// MockSleeper records requested delays and returns immediately, so
// polling loops run at full speed under test.
type MockSleeper struct {
	mu     sync.Mutex
	Slept  []time.Duration
	Err    error
	// ErrAfter, when positive, makes Sleep fail once that many calls
	// have succeeded.
	ErrAfter int
}

func (m *MockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil && (m.ErrAfter == 0 || len(m.Slept) >= m.ErrAfter) {
		return m.Err
	}
	m.Slept = append(m.Slept, d)
	return nil
}

var _ ports.MetadataAPI = (*MockMetadataAPI)(nil)
var _ ports.DetectorAPI = (*MockDetectorAPI)(nil)
var _ ports.ObjectStore = (*MockObjectStore)(nil)
var _ ports.ProcessManager = (*MockProcessManager)(nil)
var _ ports.Sleeper = (*MockSleeper)(nil)
