package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTeardown(assets *mocks.MockAssetAPI, comps *mocks.MockComputationAPI, telemetry *mocks.MockTelemetryAPI, procs *mocks.MockProcessManager) (*TeardownService, *mocks.MockSleeper) {
	sleeper := &mocks.MockSleeper{}
	cfg := TeardownConfig{
		ComputationAssetID:    "comp-asset",
		StreamPrefix:          "/Tag Providers/AD/default/UR",
		SimulatorPattern:      "simulate_live_data",
		PollInterval:          5 * time.Second,
		ModelUpdateDelay:      2 * time.Second,
		DependentAssetRetries: 3,
	}
	return NewTeardownService(assets, comps, telemetry, procs, sleeper, cfg, discardLogger()), sleeper
}

// diamondAssets builds a -> {b, c}, b -> d, c -> d, all on model m1.
func diamondAssets() *mocks.MockAssetAPI {
	assets := mocks.NewMockAssetAPI()
	assets.AddAsset(&domain.Asset{ID: "a", ExternalID: "ext-a", Name: "A", ModelID: "m1", Hierarchies: []domain.Hierarchy{{ID: "h1", Name: "children"}}})
	assets.AddAsset(&domain.Asset{ID: "b", Name: "B", ModelID: "m1", Hierarchies: []domain.Hierarchy{{ID: "h1", Name: "children"}}})
	assets.AddAsset(&domain.Asset{ID: "c", Name: "C", ModelID: "m1", Hierarchies: []domain.Hierarchy{{ID: "h1", Name: "children"}}})
	assets.AddAsset(&domain.Asset{ID: "d", Name: "D", ModelID: "m1"})
	assets.Associate("a", "h1", domain.AssetSummary{ID: "b", Name: "B"})
	assets.Associate("a", "h1", domain.AssetSummary{ID: "c", Name: "C"})
	assets.Associate("b", "h1", domain.AssetSummary{ID: "d", Name: "D"})
	assets.Associate("c", "h1", domain.AssetSummary{ID: "d", Name: "D"})
	return assets
}

func callIndex(calls []string, call string) int {
	for i, c := range calls {
		if c == call {
			return i
		}
	}
	return -1
}

func TestDisassociateAllDiamond(t *testing.T) {
	assets := diamondAssets()
	svc, _ := newTestTeardown(assets, mocks.NewMockComputationAPI(), mocks.NewMockTelemetryAPI(), mocks.NewMockProcessManager())

	pending := NewPending()
	svc.DisassociateAll(context.Background(), "a", pending)

	// Every edge is cut exactly once, including both edges into d.
	disassoc := assets.CallsNamed("DisassociateAssets")
	if len(disassoc) != 4 {
		t.Fatalf("expected 4 disassociations, got %d: %v", len(disassoc), disassoc)
	}

	got := pending.Assets()
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("pending assets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pending assets = %v, want %v", got, want)
		}
	}

	// d is a shared child: it must be described only once.
	if n := len(assets.CallsNamed("DescribeAsset d")); n != 1 {
		t.Errorf("expected d described once, got %d", n)
	}

	// A parent's edges are cut before any child is visited.
	cut := callIndex(assets.Calls, "DisassociateAssets a h1 b")
	visit := callIndex(assets.Calls, "DescribeAsset b")
	if cut == -1 || visit == -1 || cut > visit {
		t.Errorf("expected a->b cut (index %d) before b visited (index %d)", cut, visit)
	}
}

func TestDisassociateAllCycleTerminates(t *testing.T) {
	assets := mocks.NewMockAssetAPI()
	assets.AddAsset(&domain.Asset{ID: "a", Name: "A", Hierarchies: []domain.Hierarchy{{ID: "h1"}}})
	assets.AddAsset(&domain.Asset{ID: "b", Name: "B", Hierarchies: []domain.Hierarchy{{ID: "h1"}}})
	assets.Associate("a", "h1", domain.AssetSummary{ID: "b", Name: "B"})
	assets.Associate("b", "h1", domain.AssetSummary{ID: "a", Name: "A"})

	svc, _ := newTestTeardown(assets, mocks.NewMockComputationAPI(), mocks.NewMockTelemetryAPI(), mocks.NewMockProcessManager())

	pending := NewPending()
	svc.DisassociateAll(context.Background(), "a", pending)

	if len(pending.Assets()) != 2 {
		t.Fatalf("pending assets = %v, want [a b]", pending.Assets())
	}
	for _, id := range []string{"a", "b"} {
		if n := len(assets.CallsNamed("DescribeAsset " + id)); n != 1 {
			t.Errorf("expected %s described once, got %d", id, n)
		}
	}
}

func TestDisassociateAllDescribeErrorStopsBranchOnly(t *testing.T) {
	assets := diamondAssets()
	assets.Errors["DescribeAsset b"] = context.DeadlineExceeded

	svc, _ := newTestTeardown(assets, mocks.NewMockComputationAPI(), mocks.NewMockTelemetryAPI(), mocks.NewMockProcessManager())

	pending := NewPending()
	svc.DisassociateAll(context.Background(), "a", pending)

	// b's subtree is unreachable through b, but d is still reached via c.
	if !pending.HasAsset("d") {
		t.Errorf("expected d reached through c, pending = %v", pending.Assets())
	}
	if n := len(assets.CallsNamed("DescribeAsset c")); n != 1 {
		t.Errorf("expected sibling c still visited, got %d describes", n)
	}
}

func TestRemoveModelPropertiesCapturesChildrenBeforeStrip(t *testing.T) {
	assets := mocks.NewMockAssetAPI()
	assets.AddModel(&domain.AssetModel{
		ID: "m1", Name: "Line", State: domain.ModelStateActive,
		Properties:  []domain.Property{{ID: "p1", Name: "Temperature"}},
		Hierarchies: []domain.ModelHierarchy{{ID: "mh1", Name: "children", ChildModelID: "m2"}},
	})
	assets.AddModel(&domain.AssetModel{
		ID: "m2", Name: "Station", State: domain.ModelStateActive,
		Properties: []domain.Property{{ID: "p2", Name: "Current"}},
	})

	svc, _ := newTestTeardown(assets, mocks.NewMockComputationAPI(), mocks.NewMockTelemetryAPI(), mocks.NewMockProcessManager())

	pending := NewPending()
	if err := svc.RemoveModelProperties(context.Background(), "m1", pending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Stripping m1 erases the hierarchy that references m2; m2 must
	// still be reached because the child id was captured first.
	if n := len(assets.CallsNamed("StripAssetModel m2")); n != 1 {
		t.Fatalf("expected child model stripped once, got %d", n)
	}
	models := pending.Models()
	if len(models) != 2 || models[0] != "m1" || models[1] != "m2" {
		t.Fatalf("pending models = %v, want [m1 m2]", models)
	}
}

func TestRemoveModelPropertiesFailedUpdateAborts(t *testing.T) {
	assets := mocks.NewMockAssetAPI()
	assets.AddModel(&domain.AssetModel{
		ID: "m1", Name: "Line", State: domain.ModelStateActive,
		Hierarchies: []domain.ModelHierarchy{{ID: "mh1", ChildModelID: "m2"}},
	})
	assets.AddModel(&domain.AssetModel{ID: "m2", Name: "Station", State: domain.ModelStateActive})
	assets.StripEndState["m1"] = domain.ModelStateFailed

	svc, _ := newTestTeardown(assets, mocks.NewMockComputationAPI(), mocks.NewMockTelemetryAPI(), mocks.NewMockProcessManager())

	pending := NewPending()
	err := svc.RemoveModelProperties(context.Background(), "m1", pending)
	if err == nil {
		t.Fatal("expected error for failed model update")
	}
	if !strings.Contains(err.Error(), "m1") {
		t.Errorf("error %q does not name the failed model", err)
	}
	if n := len(assets.CallsNamed("StripAssetModel m2")); n != 0 {
		t.Errorf("expected walk aborted before m2, got %d strips", n)
	}
}

func TestRemoveModelPropertiesTransientPollErrorContinues(t *testing.T) {
	assets := mocks.NewMockAssetAPI()
	assets.AddModel(&domain.AssetModel{
		ID: "m1", Name: "Line", State: domain.ModelStateActive,
		Hierarchies: []domain.ModelHierarchy{{ID: "mh1", ChildModelID: "m2"}},
	})
	assets.AddModel(&domain.AssetModel{ID: "m2", Name: "Station", State: domain.ModelStateActive})
	// The describe before the strip succeeds; the poll describe after
	// it fails once.
	assets.ErrorQueue["DescribeAssetModel m1"] = []error{nil, errors.New("throttled")}

	svc, _ := newTestTeardown(assets, mocks.NewMockComputationAPI(), mocks.NewMockTelemetryAPI(), mocks.NewMockProcessManager())

	pending := NewPending()
	if err := svc.RemoveModelProperties(context.Background(), "m1", pending); err != nil {
		t.Fatalf("transient poll error must not abort the walk: %v", err)
	}
	if n := len(assets.CallsNamed("StripAssetModel m2")); n != 1 {
		t.Fatalf("expected child model still stripped, got %d", n)
	}
	models := pending.Models()
	if len(models) != 2 || models[0] != "m1" || models[1] != "m2" {
		t.Fatalf("pending models = %v, want [m1 m2]", models)
	}
}

func TestRemoveModelPropertiesMissingModelSkipped(t *testing.T) {
	assets := mocks.NewMockAssetAPI()
	assets.AddModel(&domain.AssetModel{
		ID: "m1", Name: "Line", State: domain.ModelStateActive,
		Hierarchies: []domain.ModelHierarchy{{ID: "mh1", ChildModelID: "gone"}},
	})

	svc, _ := newTestTeardown(assets, mocks.NewMockComputationAPI(), mocks.NewMockTelemetryAPI(), mocks.NewMockProcessManager())

	pending := NewPending()
	if err := svc.RemoveModelProperties(context.Background(), "m1", pending); err != nil {
		t.Fatalf("missing child model must not fail the walk: %v", err)
	}
	if n := len(assets.CallsNamed("StripAssetModel gone")); n != 0 {
		t.Errorf("expected no strip of missing model, got %d", n)
	}
}

func TestWaitForDependentAssetsGoneImmediate(t *testing.T) {
	assets := mocks.NewMockAssetAPI()
	assets.AddModel(&domain.AssetModel{ID: "m1", Name: "Line", State: domain.ModelStateActive})

	svc, sleeper := newTestTeardown(assets, mocks.NewMockComputationAPI(), mocks.NewMockTelemetryAPI(), mocks.NewMockProcessManager())

	pending := NewPending()
	pending.AddAsset("a")

	if !svc.WaitForDependentAssetsGone(context.Background(), "m1", pending) {
		t.Fatal("expected immediate success for empty listing")
	}
	if n := len(assets.CallsNamed("ListAssetsByModel m1")); n != 1 {
		t.Errorf("expected exactly one listing, got %d", n)
	}
	if len(sleeper.Slept) != 0 {
		t.Errorf("expected no sleeps, got %v", sleeper.Slept)
	}
}

func TestWaitForDependentAssetsGoneExhaustsRetries(t *testing.T) {
	assets := mocks.NewMockAssetAPI()
	assets.AddModel(&domain.AssetModel{ID: "m1", Name: "Line", State: domain.ModelStateActive})
	// The asset never leaves the listing.
	assets.AddAsset(&domain.Asset{ID: "a", Name: "A", ModelID: "m1"})

	svc, sleeper := newTestTeardown(assets, mocks.NewMockComputationAPI(), mocks.NewMockTelemetryAPI(), mocks.NewMockProcessManager())

	pending := NewPending()
	pending.AddAsset("a")
	pending.AddModel("m1")

	if svc.WaitForDependentAssetsGone(context.Background(), "m1", pending) {
		t.Fatal("expected wait to give up")
	}
	if n := len(assets.CallsNamed("ListAssetsByModel m1")); n != 3 {
		t.Errorf("expected 3 listings for a budget of 3, got %d", n)
	}
	if len(sleeper.Slept) != 3 {
		t.Errorf("expected 3 sleeps, got %d", len(sleeper.Slept))
	}

	// The skip must not escalate into a failed run or a delete attempt.
	svc.DeleteAssetModels(context.Background(), pending)
	if n := len(assets.CallsNamed("DeleteAssetModel m1")); n != 0 {
		t.Errorf("expected model delete skipped, got %d attempts", n)
	}
	if _, ok := assets.Models["m1"]; !ok {
		t.Error("model must survive a skipped delete")
	}
}

func TestWaitForDependentAssetsGoneIgnoresForeignAssets(t *testing.T) {
	assets := mocks.NewMockAssetAPI()
	assets.AddModel(&domain.AssetModel{ID: "m1", Name: "Line", State: domain.ModelStateActive})
	// Present in the listing but never recorded for deletion.
	assets.AddAsset(&domain.Asset{ID: "other", Name: "Other", ModelID: "m1"})

	svc, _ := newTestTeardown(assets, mocks.NewMockComputationAPI(), mocks.NewMockTelemetryAPI(), mocks.NewMockProcessManager())

	pending := NewPending()
	pending.AddAsset("a")

	if !svc.WaitForDependentAssetsGone(context.Background(), "m1", pending) {
		t.Fatal("assets outside the pending set must not block the wait")
	}
}

func TestDeleteAssetsSkipsMissing(t *testing.T) {
	assets := mocks.NewMockAssetAPI()
	assets.AddAsset(&domain.Asset{ID: "a", Name: "A"})

	svc, _ := newTestTeardown(assets, mocks.NewMockComputationAPI(), mocks.NewMockTelemetryAPI(), mocks.NewMockProcessManager())

	pending := NewPending()
	pending.AddAsset("a")
	pending.AddAsset("gone")

	svc.DeleteAssets(context.Background(), pending)

	if _, ok := assets.Assets["a"]; ok {
		t.Error("expected a deleted")
	}
	if n := len(assets.CallsNamed("DeleteAsset gone")); n != 0 {
		t.Errorf("expected no delete attempt for missing asset, got %d", n)
	}
}

func TestDeleteComputationModelsMatchesBoundAsset(t *testing.T) {
	comps := mocks.NewMockComputationAPI()
	comps.AddModel(&domain.ComputationModel{ID: "cm-1", Name: "anomaly-1", BoundAssetID: "comp-asset"})
	comps.AddModel(&domain.ComputationModel{ID: "cm-2", Name: "anomaly-2", BoundAssetID: "unrelated"})

	svc, _ := newTestTeardown(mocks.NewMockAssetAPI(), comps, mocks.NewMockTelemetryAPI(), mocks.NewMockProcessManager())

	if err := svc.DeleteComputationModels(context.Background(), "comp-asset"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := comps.Models["cm-1"]; ok {
		t.Error("expected cm-1 deleted")
	}
	if _, ok := comps.Models["cm-2"]; !ok {
		t.Error("expected cm-2 kept, it is bound to a different asset")
	}
}

func TestDeleteDataStreamsFiltersByPrefix(t *testing.T) {
	telemetry := mocks.NewMockTelemetryAPI()
	telemetry.Streams = []string{
		"/Tag Providers/AD/default/UR/joint1/current",
		"/Tag Providers/AD/default/UR/joint1/temperature",
		"/Tag Providers/other/line2/pressure",
	}

	svc, _ := newTestTeardown(mocks.NewMockAssetAPI(), mocks.NewMockComputationAPI(), telemetry, mocks.NewMockProcessManager())

	if err := svc.DeleteDataStreams(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(telemetry.Streams) != 1 || telemetry.Streams[0] != "/Tag Providers/other/line2/pressure" {
		t.Errorf("remaining streams = %v, want only the foreign alias", telemetry.Streams)
	}
}

func TestCleanupMissingRootIsNoop(t *testing.T) {
	assets := mocks.NewMockAssetAPI()
	svc, _ := newTestTeardown(assets, mocks.NewMockComputationAPI(), mocks.NewMockTelemetryAPI(), mocks.NewMockProcessManager())

	if err := svc.Cleanup(context.Background(), "ext-missing"); err != nil {
		t.Fatalf("missing root must not be an error: %v", err)
	}
	if n := len(assets.CallsNamed("DescribeAsset")); n != 0 {
		t.Errorf("expected no traversal for missing root, got %d describes", n)
	}
}

func TestCleanupFullRun(t *testing.T) {
	assets := diamondAssets()
	assets.AddModel(&domain.AssetModel{ID: "m1", Name: "Line", State: domain.ModelStateActive})

	comps := mocks.NewMockComputationAPI()
	comps.AddModel(&domain.ComputationModel{ID: "cm-1", Name: "anomaly-1", BoundAssetID: "comp-asset"})

	telemetry := mocks.NewMockTelemetryAPI()
	telemetry.Streams = []string{"/Tag Providers/AD/default/UR/joint1/current"}

	procs := mocks.NewMockProcessManager()
	procs.Running["simulate_live_data"] = 4242

	svc, _ := newTestTeardown(assets, comps, telemetry, procs)

	if err := svc.Cleanup(context.Background(), "ext-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(procs.Killed) != 1 {
		t.Errorf("expected simulator killed, got %v", procs.Killed)
	}
	if len(assets.Assets) != 0 {
		t.Errorf("expected all assets removed, remaining %v", assets.Assets)
	}
	if len(assets.Models) != 0 {
		t.Errorf("expected all models removed, remaining %v", assets.Models)
	}
	if _, ok := comps.Models["cm-1"]; ok {
		t.Error("expected computation model removed")
	}
	if len(telemetry.Streams) != 0 {
		t.Errorf("expected streams removed, remaining %v", telemetry.Streams)
	}

	// A second run finds nothing and still succeeds.
	if err := svc.Cleanup(context.Background(), "ext-a"); err != nil {
		t.Fatalf("rerun must be idempotent: %v", err)
	}
}
