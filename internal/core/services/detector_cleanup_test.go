package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports/mocks"
)

func newDetectorCleanup(assets *mocks.MockAssetAPI, detector *mocks.MockDetectorAPI) (*DetectorCleanupService, *mocks.MockSleeper) {
	sleeper := &mocks.MockSleeper{}
	return NewDetectorCleanupService(assets, detector, sleeper, 2*time.Second, discardLogger()), sleeper
}

func TestDetectorCleanupFullTeardown(t *testing.T) {
	assets := mocks.NewMockAssetAPI()
	assets.AddAsset(&domain.Asset{ID: "asset-1", ExternalID: "Workshop_Robot_1-1", Name: "Robot"})

	detector := mocks.NewMockDetectorAPI()
	detector.Datasets = []string{"dataset_asset-1_x", "dataset_other"}
	detector.Models["dataset_asset-1_x"] = []string{"model-1"}
	detector.Models["dataset_other"] = []string{"model-foreign"}
	detector.Schedulers["model-1"] = []string{"sched-1"}
	// RUNNING, still stopping on the first post-stop poll, then STOPPED.
	detector.SchedulerStates["sched-1"] = []string{
		domain.SchedulerRunning, "STOPPING", domain.SchedulerStopped,
	}

	svc, sleeper := newDetectorCleanup(assets, detector)

	if err := svc.Cleanup(context.Background(), "Workshop_Robot_1-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sleeper.Slept) != 2 {
		t.Errorf("expected 2 stop polls, got %d", len(sleeper.Slept))
	}
	if len(detector.Schedulers["model-1"]) != 0 {
		t.Error("scheduler not deleted")
	}
	if len(detector.Models["dataset_asset-1_x"]) != 0 {
		t.Error("model not deleted")
	}
	for _, ds := range detector.Datasets {
		if ds == "dataset_asset-1_x" {
			t.Error("dataset not deleted")
		}
	}
	// Foreign resources stay untouched.
	if len(detector.Models["dataset_other"]) != 1 {
		t.Error("foreign model must survive")
	}

	// Stop precedes delete, delete order is schedulers, models, datasets.
	idx := func(call string) int {
		for i, c := range detector.Calls {
			if strings.HasPrefix(c, call) {
				return i
			}
		}
		return -1
	}
	stop := idx("StopScheduler sched-1")
	delSched := idx("DeleteScheduler sched-1")
	delModel := idx("DeleteModel model-1")
	delDataset := idx("DeleteDataset dataset_asset-1_x")
	if !(stop < delSched && delSched < delModel && delModel < delDataset) {
		t.Errorf("teardown order wrong: stop=%d scheduler=%d model=%d dataset=%d", stop, delSched, delModel, delDataset)
	}
}

func TestDetectorCleanupStoppedSchedulerNotStopped(t *testing.T) {
	assets := mocks.NewMockAssetAPI()
	assets.AddAsset(&domain.Asset{ID: "asset-1", ExternalID: "Workshop_Robot_1-1", Name: "Robot"})

	detector := mocks.NewMockDetectorAPI()
	detector.Datasets = []string{"dataset_asset-1_x"}
	detector.Models["dataset_asset-1_x"] = []string{"model-1"}
	detector.Schedulers["model-1"] = []string{"sched-1"}
	// Already stopped, no stop call expected.

	svc, _ := newDetectorCleanup(assets, detector)

	if err := svc.Cleanup(context.Background(), "Workshop_Robot_1-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range detector.Calls {
		if strings.HasPrefix(c, "StopScheduler") {
			t.Errorf("stopped scheduler must not be stopped again: %v", detector.Calls)
		}
	}
}

func TestDetectorCleanupMissingAssetIsNoop(t *testing.T) {
	detector := mocks.NewMockDetectorAPI()
	detector.Datasets = []string{"dataset_asset-1_x"}

	svc, _ := newDetectorCleanup(mocks.NewMockAssetAPI(), detector)

	if err := svc.Cleanup(context.Background(), "Workshop_Robot_9-9"); err != nil {
		t.Fatalf("missing asset must not be an error: %v", err)
	}
	if len(detector.Calls) != 0 {
		t.Errorf("no detector calls expected, got %v", detector.Calls)
	}
}
