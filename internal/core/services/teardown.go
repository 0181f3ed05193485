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

// TeardownConfig carries the tunables of the teardown run. Poll
// intervals and retry budgets are injectable so tests can drive the
// waiting loops with a zero-delay sleeper.
type TeardownConfig struct {
	// ComputationAssetID is the asset whose computation models are
	// removed. It is configured independently of the root asset being
	// torn down; the two are not assumed to be the same resource.
	ComputationAssetID string

	// StreamPrefix selects which disassociated data streams to delete.
	StreamPrefix string

	// SimulatorPattern identifies the local telemetry simulator
	// process by command-line substring.
	SimulatorPattern string

	// PollInterval is the delay between status polls.
	PollInterval time.Duration

	// ModelUpdateDelay is the initial delay before the first poll of a
	// model update, giving the service time to leave ACTIVE.
	ModelUpdateDelay time.Duration

	// DependentAssetRetries bounds the wait for deleted assets to
	// disappear from a model's asset listing.
	DependentAssetRetries int
}

// Pending tracks the identifiers discovered during traversal that the
// deletion phases will drain. Membership is what matters; each set is
// deduplicated and doubles as the traversal's visited set, which keeps
// diamond shapes from being visited twice and a cyclic hierarchy from
// looping.
type Pending struct {
	assetSeen map[string]struct{}
	assets    []string
	modelSeen map[string]struct{}
	models    []string
}

// NewPending returns an empty accumulator.
func NewPending() *Pending {
	return &Pending{
		assetSeen: make(map[string]struct{}),
		modelSeen: make(map[string]struct{}),
	}
}

// AddAsset records an asset id for deletion. Returns false if the id
// was already recorded.
func (p *Pending) AddAsset(id string) bool {
	if _, ok := p.assetSeen[id]; ok {
		return false
	}
	p.assetSeen[id] = struct{}{}
	p.assets = append(p.assets, id)
	return true
}

// AddModel records a model id for deletion. Returns false if the id
// was already recorded.
func (p *Pending) AddModel(id string) bool {
	if _, ok := p.modelSeen[id]; ok {
		return false
	}
	p.modelSeen[id] = struct{}{}
	p.models = append(p.models, id)
	return true
}

// Assets returns the recorded asset ids in discovery order.
func (p *Pending) Assets() []string { return p.assets }

// Models returns the recorded model ids in discovery order.
func (p *Pending) Models() []string { return p.models }

// HasAsset reports whether an asset id was recorded.
func (p *Pending) HasAsset(id string) bool {
	_, ok := p.assetSeen[id]
	return ok
}

// TeardownService removes a root asset and everything structurally
// beneath and around it: child assets, the asset-model chain, related
// computation models and orphaned data streams. The run is best-effort
// and idempotent against already-deleted resources.
type TeardownService struct {
	assets    ports.AssetAPI
	comps     ports.ComputationAPI
	telemetry ports.TelemetryAPI
	procs     ports.ProcessManager
	sleeper   ports.Sleeper
	cfg       TeardownConfig
	log       *slog.Logger
}

// NewTeardownService creates a teardown service.
func NewTeardownService(
	assets ports.AssetAPI,
	comps ports.ComputationAPI,
	telemetry ports.TelemetryAPI,
	procs ports.ProcessManager,
	sleeper ports.Sleeper,
	cfg TeardownConfig,
	log *slog.Logger,
) *TeardownService {
	if log == nil {
		log = slog.Default()
	}
	return &TeardownService{
		assets:    assets,
		comps:     comps,
		telemetry: telemetry,
		procs:     procs,
		sleeper:   sleeper,
		cfg:       cfg,
		log:       log,
	}
}

// Cleanup runs the full teardown for the asset identified by an
// external id. A missing root short-circuits the run; any other phase
// failure is logged and later phases still execute.
func (s *TeardownService) Cleanup(ctx context.Context, assetExternalID string) error {
	s.StopSimulator(ctx)

	rootID, err := s.assets.ResolveAssetByExternalID(ctx, assetExternalID)
	if errors.Is(err, ports.ErrNotFound) {
		s.log.Warn("asset does not exist, nothing to remove", "externalId", assetExternalID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolving asset %q: %w", assetExternalID, err)
	}

	pending := NewPending()

	s.log.Info("disassociating assets")
	s.DisassociateAll(ctx, rootID, pending)

	s.log.Info("removing computation models")
	if err := s.DeleteComputationModels(ctx, s.cfg.ComputationAssetID); err != nil {
		s.log.Error("computation model cleanup failed", "error", err)
	}

	s.log.Info("removing properties and hierarchies from models")
	root, err := s.assets.DescribeAsset(ctx, rootID)
	if err != nil {
		s.log.Error("cannot resolve root asset model", "assetId", rootID, "error", err)
	} else if err := s.RemoveModelProperties(ctx, root.ModelID, pending); err != nil {
		s.log.Error("model property removal aborted", "error", err)
	}

	s.log.Info("removing assets")
	s.DeleteAssets(ctx, pending)

	s.log.Info("removing asset models")
	s.DeleteAssetModels(ctx, pending)

	s.log.Info("removing data streams")
	if err := s.DeleteDataStreams(ctx); err != nil {
		s.log.Error("data stream cleanup failed", "error", err)
	}

	s.log.Info("cleanup completed")
	return nil
}

// StopSimulator kills any local telemetry-simulation process. Failure
// to find one is the common case and not an error.
func (s *TeardownService) StopSimulator(ctx context.Context) {
	pid, found, err := s.procs.KillByCommand(ctx, s.cfg.SimulatorPattern)
	switch {
	case err != nil:
		s.log.Error("error stopping simulation process", "error", err)
	case found:
		s.log.Info("killed simulation process", "pid", pid)
	default:
		s.log.Info("no simulation process found, skipping")
	}
}

// DisassociateAll walks the hierarchy tree under rootID depth-first,
// recording every reachable asset into pending and cutting each
// parent-child association before the child itself is processed. A
// describe failure stops that branch only; siblings and other phases
// continue.
func (s *TeardownService) DisassociateAll(ctx context.Context, rootID string, pending *Pending) {
	stack := []string{rootID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !pending.AddAsset(id) {
			continue
		}

		asset, err := s.assets.DescribeAsset(ctx, id)
		if errors.Is(err, ports.ErrNotFound) {
			s.log.Warn("asset not found", "assetId", id)
			continue
		}
		if err != nil {
			s.log.Error("error describing asset", "assetId", id, "error", err)
			continue
		}
		s.log.Info("asset", "name", asset.Name)

		var children []domain.AssetSummary
		for _, h := range asset.Hierarchies {
			assoc, err := s.assets.ListAssociatedAssets(ctx, id, h.ID)
			if err != nil {
				s.log.Error("error processing hierarchy", "hierarchyId", h.ID, "error", err)
				continue
			}
			for _, child := range assoc {
				if err := s.assets.DisassociateAssets(ctx, id, h.ID, child.ID); err != nil {
					s.log.Error("error disassociating child", "childId", child.ID, "error", err)
					continue
				}
				s.log.Info("disassociated child", "name", child.Name)
				children = append(children, child)
			}
		}

		// Push in reverse so children pop in listing order.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i].ID)
		}
	}
}

// RemoveModelProperties strips the property, hierarchy and composite
// model definitions from modelID and every child model reachable
// through its hierarchy definitions, recording each into pending.
// Child ids are captured before the update because the update erases
// the hierarchy definitions they come from. A model whose update ends
// FAILED aborts the remaining walk; an absent model is skipped, and a
// transient poll failure is logged so sibling models still get
// stripped.
func (s *TeardownService) RemoveModelProperties(ctx context.Context, modelID string, pending *Pending) error {
	stack := []string{modelID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !pending.AddModel(id) {
			continue
		}

		model, err := s.assets.DescribeAssetModel(ctx, id)
		if errors.Is(err, ports.ErrNotFound) {
			s.log.Warn("asset model not found", "assetModelId", id)
			continue
		}
		if err != nil {
			s.log.Error("error describing asset model", "assetModelId", id, "error", err)
			continue
		}

		childIDs := model.ChildModelIDs()

		if err := s.assets.StripAssetModel(ctx, id, model.Name); err != nil {
			s.log.Error("error updating asset model", "assetModelId", id, "error", err)
			continue
		}
		if err := s.waitForModelUpdate(ctx, id); err != nil {
			if errors.Is(err, errModelUpdateFailed) || ctx.Err() != nil {
				return fmt.Errorf("model %s: %w", id, err)
			}
			s.log.Error("error polling model update", "assetModelId", id, "error", err)
		} else {
			s.log.Info("updated model", "name", model.Name)
		}

		for i := len(childIDs) - 1; i >= 0; i-- {
			stack = append(stack, childIDs[i])
		}
	}
	return nil
}

// errModelUpdateFailed marks the FAILED terminal state. It is the only
// poll outcome that aborts the remaining model walk.
var errModelUpdateFailed = errors.New("asset model update failed")

// waitForModelUpdate polls the model until its state is terminal.
// FAILED is fatal: continuing would mutate a model in an unknown
// state.
func (s *TeardownService) waitForModelUpdate(ctx context.Context, modelID string) error {
	if err := s.sleeper.Sleep(ctx, s.cfg.ModelUpdateDelay); err != nil {
		return err
	}
	for {
		model, err := s.assets.DescribeAssetModel(ctx, modelID)
		if err != nil {
			return fmt.Errorf("polling model update: %w", err)
		}
		switch model.State {
		case domain.ModelStateActive:
			return nil
		case domain.ModelStateFailed:
			return errModelUpdateFailed
		}
		if err := s.sleeper.Sleep(ctx, s.cfg.PollInterval); err != nil {
			return err
		}
	}
}

// DeleteAssets drains the pending asset set. Each asset is described
// first, both for a display name and to skip already-deleted assets.
func (s *TeardownService) DeleteAssets(ctx context.Context, pending *Pending) {
	for _, id := range pending.Assets() {
		asset, err := s.assets.DescribeAsset(ctx, id)
		if errors.Is(err, ports.ErrNotFound) {
			s.log.Warn("asset not found", "assetId", id)
			continue
		}
		if err != nil {
			s.log.Error("failed to describe asset", "assetId", id, "error", err)
			continue
		}
		if err := s.assets.DeleteAsset(ctx, id); err != nil {
			s.log.Error("failed to delete asset", "assetId", id, "error", err)
			continue
		}
		s.log.Info("removed asset", "name", asset.Name)
	}
}

// DeleteAssetModels drains the pending model set. A model is deleted
// only once none of the recorded assets still appear in its asset
// listing; if they never disappear within the retry budget the model
// is skipped rather than risking a rejected delete.
func (s *TeardownService) DeleteAssetModels(ctx context.Context, pending *Pending) {
	for _, id := range pending.Models() {
		model, err := s.assets.DescribeAssetModel(ctx, id)
		if errors.Is(err, ports.ErrNotFound) {
			s.log.Warn("asset model not found", "assetModelId", id)
			continue
		}
		if err != nil {
			s.log.Error("failed to describe asset model", "assetModelId", id, "error", err)
			continue
		}
		if !s.WaitForDependentAssetsGone(ctx, id, pending) {
			s.log.Warn("dependent assets still present, skipping model", "assetModelId", id)
			continue
		}
		if err := s.assets.DeleteAssetModel(ctx, id); err != nil {
			s.log.Error("failed to delete asset model", "assetModelId", id, "error", err)
			continue
		}
		s.log.Info("removed asset model", "name", model.Name)
	}
}

// WaitForDependentAssetsGone polls the model's asset listing until no
// recorded asset remains in it, up to the configured retry budget.
// Asset deletion is asynchronous on the service side, so a successful
// delete call does not imply immediate disappearance from listings.
func (s *TeardownService) WaitForDependentAssetsGone(ctx context.Context, modelID string, pending *Pending) bool {
	for i := 0; i < s.cfg.DependentAssetRetries; i++ {
		summaries, err := s.assets.ListAssetsByModel(ctx, modelID)
		if err != nil {
			s.log.Error("failed to list assets for model", "assetModelId", modelID, "error", err)
			return false
		}
		remaining := 0
		for _, a := range summaries {
			if pending.HasAsset(a.ID) {
				remaining++
			}
		}
		if remaining == 0 {
			return true
		}
		if err := s.sleeper.Sleep(ctx, s.cfg.PollInterval); err != nil {
			return false
		}
	}
	return false
}

// DeleteComputationModels removes every anomaly-detection computation
// model whose resolved backing asset matches assetID.
func (s *TeardownService) DeleteComputationModels(ctx context.Context, assetID string) error {
	ids, err := s.ComputationModelsForAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		s.log.Info("no computation models found for asset, skip", "assetId", assetID)
		return nil
	}
	for _, id := range ids {
		if err := s.comps.DeleteComputationModel(ctx, id); err != nil {
			s.log.Error("failed to delete computation model", "computationModelId", id, "error", err)
			continue
		}
		s.log.Info("removed computation model", "computationModelId", id)
	}
	return nil
}

// ComputationModelsForAsset scans all anomaly-detection computation
// models and keeps those whose result property resolves back to
// assetID. A model that cannot be described is skipped.
func (s *TeardownService) ComputationModelsForAsset(ctx context.Context, assetID string) ([]string, error) {
	ids, err := s.comps.ListAnomalyModelIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing computation models: %w", err)
	}
	var matched []string
	for _, id := range ids {
		model, err := s.comps.DescribeComputationModel(ctx, id)
		if err != nil {
			continue
		}
		if model.BoundAssetID == assetID {
			matched = append(matched, id)
		}
	}
	return matched, nil
}

// DeleteDataStreams removes every disassociated data stream whose
// alias contains the configured prefix.
func (s *TeardownService) DeleteDataStreams(ctx context.Context) error {
	aliases, err := s.telemetry.ListDisassociatedStreams(ctx)
	if err != nil {
		return fmt.Errorf("listing data streams: %w", err)
	}
	count := 0
	for _, alias := range aliases {
		if !strings.Contains(alias, s.cfg.StreamPrefix) {
			continue
		}
		if err := s.telemetry.DeleteTimeSeries(ctx, alias); err != nil {
			s.log.Error("failed to delete data stream", "alias", alias, "error", err)
			continue
		}
		count++
	}
	if count > 0 {
		s.log.Info("removed data streams", "count", count, "prefix", s.cfg.StreamPrefix)
	} else {
		s.log.Info("no data streams to remove")
	}
	return nil
}
