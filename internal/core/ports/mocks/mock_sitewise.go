package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports"
)

// MockAssetAPI is an in-memory implementation of ports.AssetAPI. Every
// mutating or listing call is appended to Calls so tests can assert
// ordering.
type MockAssetAPI struct {
	mu sync.Mutex

	Assets      map[string]*domain.Asset
	Models      map[string]*domain.AssetModel
	ExternalIDs map[string]string
	// Children holds the associated assets per "assetId/hierarchyId".
	Children map[string][]domain.AssetSummary

	// StripEndState overrides the model state reached after a strip;
	// default is ACTIVE.
	StripEndState map[string]string
	// ListAssetsQueue, when set for a model, feeds successive
	// ListAssetsByModel responses before falling back to live state.
	ListAssetsQueue map[string][][]domain.AssetSummary
	// Errors injects a failure for a call key like "DescribeAsset a-1".
	Errors map[string]error
	// ErrorQueue feeds per-call errors consumed in order before Errors
	// applies; nil entries succeed.
	ErrorQueue map[string][]error

	Calls []string
}

// NewMockAssetAPI creates an empty mock asset API.
func NewMockAssetAPI() *MockAssetAPI {
	return &MockAssetAPI{
		Assets:          make(map[string]*domain.Asset),
		Models:          make(map[string]*domain.AssetModel),
		ExternalIDs:     make(map[string]string),
		Children:        make(map[string][]domain.AssetSummary),
		StripEndState:   make(map[string]string),
		ListAssetsQueue: make(map[string][][]domain.AssetSummary),
		Errors:          make(map[string]error),
		ErrorQueue:      make(map[string][]error),
	}
}

// AddAsset registers an asset and its external id mapping.
func (m *MockAssetAPI) AddAsset(a *domain.Asset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Assets[a.ID] = a
	if a.ExternalID != "" {
		m.ExternalIDs[a.ExternalID] = a.ID
	}
}

// AddModel registers an asset model.
func (m *MockAssetAPI) AddModel(model *domain.AssetModel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Models[model.ID] = model
}

// Associate links child under parent's hierarchy slot.
func (m *MockAssetAPI) Associate(parentID, hierarchyID string, child domain.AssetSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := parentID + "/" + hierarchyID
	m.Children[key] = append(m.Children[key], child)
}

func (m *MockAssetAPI) record(call string) {
	m.Calls = append(m.Calls, call)
}

func (m *MockAssetAPI) injected(call string) error {
	if queue := m.ErrorQueue[call]; len(queue) > 0 {
		m.ErrorQueue[call] = queue[1:]
		return queue[0]
	}
	if err, ok := m.Errors[call]; ok {
		return err
	}
	return nil
}

// CallsNamed returns the recorded calls whose name matches.
func (m *MockAssetAPI) CallsNamed(name string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.Calls {
		if len(c) >= len(name) && c[:len(name)] == name {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockAssetAPI) ResolveAssetByExternalID(ctx context.Context, externalID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ResolveAssetByExternalID " + externalID)
	id, ok := m.ExternalIDs[externalID]
	if !ok {
		return "", fmt.Errorf("asset %s: %w", externalID, ports.ErrNotFound)
	}
	return id, nil
}

func (m *MockAssetAPI) DescribeAsset(ctx context.Context, assetID string) (*domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := "DescribeAsset " + assetID
	m.record(call)
	if err := m.injected(call); err != nil {
		return nil, err
	}
	a, ok := m.Assets[assetID]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", assetID, ports.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (m *MockAssetAPI) DescribeAssetWithProperties(ctx context.Context, assetID string) (*domain.Asset, error) {
	return m.DescribeAsset(ctx, assetID)
}

func (m *MockAssetAPI) ListAssociatedAssets(ctx context.Context, assetID, hierarchyID string) ([]domain.AssetSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := "ListAssociatedAssets " + assetID + " " + hierarchyID
	m.record(call)
	if err := m.injected(call); err != nil {
		return nil, err
	}
	children := m.Children[assetID+"/"+hierarchyID]
	out := make([]domain.AssetSummary, len(children))
	copy(out, children)
	return out, nil
}

func (m *MockAssetAPI) DisassociateAssets(ctx context.Context, assetID, hierarchyID, childAssetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := "DisassociateAssets " + assetID + " " + hierarchyID + " " + childAssetID
	m.record(call)
	if err := m.injected(call); err != nil {
		return err
	}
	key := assetID + "/" + hierarchyID
	kept := m.Children[key][:0]
	for _, c := range m.Children[key] {
		if c.ID != childAssetID {
			kept = append(kept, c)
		}
	}
	m.Children[key] = kept
	return nil
}

func (m *MockAssetAPI) DeleteAsset(ctx context.Context, assetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := "DeleteAsset " + assetID
	m.record(call)
	if err := m.injected(call); err != nil {
		return err
	}
	if _, ok := m.Assets[assetID]; !ok {
		return fmt.Errorf("asset %s: %w", assetID, ports.ErrNotFound)
	}
	delete(m.Assets, assetID)
	return nil
}

func (m *MockAssetAPI) DescribeAssetModel(ctx context.Context, modelID string) (*domain.AssetModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := "DescribeAssetModel " + modelID
	m.record(call)
	if err := m.injected(call); err != nil {
		return nil, err
	}
	model, ok := m.Models[modelID]
	if !ok {
		return nil, fmt.Errorf("asset model %s: %w", modelID, ports.ErrNotFound)
	}
	cp := *model
	return &cp, nil
}

func (m *MockAssetAPI) StripAssetModel(ctx context.Context, modelID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := "StripAssetModel " + modelID
	m.record(call)
	if err := m.injected(call); err != nil {
		return err
	}
	model, ok := m.Models[modelID]
	if !ok {
		return fmt.Errorf("asset model %s: %w", modelID, ports.ErrNotFound)
	}
	model.Properties = nil
	model.Hierarchies = nil
	model.CompositeModels = nil
	model.State = domain.ModelStateActive
	if state, ok := m.StripEndState[modelID]; ok {
		model.State = state
	}
	return nil
}

func (m *MockAssetAPI) DeleteAssetModel(ctx context.Context, modelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := "DeleteAssetModel " + modelID
	m.record(call)
	if err := m.injected(call); err != nil {
		return err
	}
	if _, ok := m.Models[modelID]; !ok {
		return fmt.Errorf("asset model %s: %w", modelID, ports.ErrNotFound)
	}
	delete(m.Models, modelID)
	return nil
}

func (m *MockAssetAPI) ListAssetsByModel(ctx context.Context, modelID string) ([]domain.AssetSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := "ListAssetsByModel " + modelID
	m.record(call)
	if err := m.injected(call); err != nil {
		return nil, err
	}
	if queue := m.ListAssetsQueue[modelID]; len(queue) > 0 {
		head := queue[0]
		m.ListAssetsQueue[modelID] = queue[1:]
		return head, nil
	}
	var out []domain.AssetSummary
	for _, a := range m.Assets {
		if a.ModelID == modelID {
			out = append(out, domain.AssetSummary{ID: a.ID, Name: a.Name})
		}
	}
	return out, nil
}

// MockComputationAPI is an in-memory implementation of
// ports.ComputationAPI.
type MockComputationAPI struct {
	mu sync.Mutex

	Models     map[string]*domain.ComputationModel
	Executions map[string][]domain.Execution
	// ResultMessages maps execution id to its result message.
	ResultMessages map[string]string
	// TimerStates feeds successive InferenceTimerActive answers per
	// model id; when exhausted the last value repeats.
	TimerStates map[string][]bool
	// CreateStates feeds the state sequence a newly created model walks
	// through on successive describes; default is immediate ACTIVE.
	CreateStates []string
	Errors       map[string]error

	Calls          []string
	nextID         int
	ActionIDs      []string
	ActionPayloads []string
}

// NewMockComputationAPI creates an empty mock computation API.
func NewMockComputationAPI() *MockComputationAPI {
	return &MockComputationAPI{
		Models:         make(map[string]*domain.ComputationModel),
		Executions:     make(map[string][]domain.Execution),
		ResultMessages: make(map[string]string),
		TimerStates:    make(map[string][]bool),
		Errors:         make(map[string]error),
	}
}

// AddModel registers a computation model.
func (m *MockComputationAPI) AddModel(model *domain.ComputationModel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Models[model.ID] = model
}

func (m *MockComputationAPI) record(call string) {
	m.Calls = append(m.Calls, call)
}

func (m *MockComputationAPI) CreateAnomalyModel(ctx context.Context, spec domain.AnomalyModelSpec) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateAnomalyModel " + spec.Name)
	if err := m.Errors["CreateAnomalyModel"]; err != nil {
		return "", err
	}
	m.nextID++
	id := fmt.Sprintf("cm-%d", m.nextID)
	m.Models[id] = &domain.ComputationModel{
		ID:               id,
		Name:             spec.Name,
		State:            domain.ComputationStateActive,
		BoundAssetID:     spec.AssetID,
		ResultPropertyID: spec.ResultPropertyID,
		ActionDefinitions: []domain.ActionDefinition{
			{ID: "ad-train", Name: domain.ActionTypeTraining},
			{ID: "ad-infer", Name: domain.ActionTypeInference},
		},
	}
	return id, nil
}

func (m *MockComputationAPI) DescribeComputationModel(ctx context.Context, modelID string) (*domain.ComputationModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := "DescribeComputationModel " + modelID
	m.record(call)
	if err := m.Errors[call]; err != nil {
		return nil, err
	}
	model, ok := m.Models[modelID]
	if !ok {
		return nil, fmt.Errorf("computation model %s: %w", modelID, ports.ErrNotFound)
	}
	cp := *model
	if len(m.CreateStates) > 0 {
		cp.State = m.CreateStates[0]
		m.CreateStates = m.CreateStates[1:]
	}
	return &cp, nil
}

func (m *MockComputationAPI) ListAnomalyModelIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListAnomalyModelIDs")
	if err := m.Errors["ListAnomalyModelIDs"]; err != nil {
		return nil, err
	}
	var ids []string
	for id := range m.Models {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockComputationAPI) DeleteComputationModel(ctx context.Context, modelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := "DeleteComputationModel " + modelID
	m.record(call)
	if err := m.Errors[call]; err != nil {
		return err
	}
	delete(m.Models, modelID)
	return nil
}

func (m *MockComputationAPI) ExecuteModelAction(ctx context.Context, actionDefinitionID, payload, modelID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ExecuteModelAction " + actionDefinitionID + " " + modelID)
	if err := m.Errors["ExecuteModelAction"]; err != nil {
		return "", err
	}
	m.ActionPayloads = append(m.ActionPayloads, payload)
	id := fmt.Sprintf("action-%d", len(m.ActionIDs)+1)
	m.ActionIDs = append(m.ActionIDs, id)
	return id, nil
}

func (m *MockComputationAPI) ListExecutions(ctx context.Context, modelID, actionType string) ([]domain.Execution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListExecutions " + modelID + " " + actionType)
	if err := m.Errors["ListExecutions"]; err != nil {
		return nil, err
	}
	out := make([]domain.Execution, len(m.Executions[modelID]))
	copy(out, m.Executions[modelID])
	return out, nil
}

func (m *MockComputationAPI) ExecutionResultMessage(ctx context.Context, executionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ExecutionResultMessage " + executionID)
	if err := m.Errors["ExecutionResultMessage"]; err != nil {
		return "", err
	}
	return m.ResultMessages[executionID], nil
}

func (m *MockComputationAPI) InferenceTimerActive(ctx context.Context, modelID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("InferenceTimerActive " + modelID)
	states := m.TimerStates[modelID]
	if len(states) == 0 {
		return false, nil
	}
	head := states[0]
	if len(states) > 1 {
		m.TimerStates[modelID] = states[1:]
	}
	return head, nil
}

// MockTelemetryAPI is an in-memory implementation of
// ports.TelemetryAPI.
type MockTelemetryAPI struct {
	mu sync.Mutex

	Streams        []string
	Published      [][]domain.PropertyValue
	PropertyValues map[string]string // "assetId/propertyId" -> value
	HistoryCounts  map[string]int    // alias -> count
	Errors         map[string]error

	Calls []string
}

// NewMockTelemetryAPI creates an empty mock telemetry API.
func NewMockTelemetryAPI() *MockTelemetryAPI {
	return &MockTelemetryAPI{
		PropertyValues: make(map[string]string),
		HistoryCounts:  make(map[string]int),
		Errors:         make(map[string]error),
	}
}

func (m *MockTelemetryAPI) ListDisassociatedStreams(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "ListDisassociatedStreams")
	if err := m.Errors["ListDisassociatedStreams"]; err != nil {
		return nil, err
	}
	out := make([]string, len(m.Streams))
	copy(out, m.Streams)
	return out, nil
}

func (m *MockTelemetryAPI) DeleteTimeSeries(ctx context.Context, alias string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "DeleteTimeSeries "+alias)
	if err := m.Errors["DeleteTimeSeries "+alias]; err != nil {
		return err
	}
	kept := m.Streams[:0]
	for _, s := range m.Streams {
		if s != alias {
			kept = append(kept, s)
		}
	}
	m.Streams = kept
	return nil
}

func (m *MockTelemetryAPI) PublishValues(ctx context.Context, values []domain.PropertyValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "PublishValues")
	if err := m.Errors["PublishValues"]; err != nil {
		return err
	}
	batch := make([]domain.PropertyValue, len(values))
	copy(batch, values)
	m.Published = append(m.Published, batch)
	return nil
}

func (m *MockTelemetryAPI) PropertyValueString(ctx context.Context, assetID, propertyID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "PropertyValueString "+assetID+" "+propertyID)
	if err := m.Errors["PropertyValueString"]; err != nil {
		return "", err
	}
	return m.PropertyValues[assetID+"/"+propertyID], nil
}

func (m *MockTelemetryAPI) HistoryCount(ctx context.Context, alias string, start, end time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "HistoryCount "+alias)
	if err := m.Errors["HistoryCount"]; err != nil {
		return 0, err
	}
	return m.HistoryCounts[alias], nil
}

// MockImportAPI is an in-memory implementation of ports.ImportAPI.
type MockImportAPI struct {
	mu sync.Mutex

	Jobs map[string]domain.ImportJobSpec
	// StatusQueue feeds successive ImportJobStatus answers per job id;
	// when exhausted the last value repeats.
	StatusQueue map[string][]string
	Errors      map[string]error

	Calls []string
}

// NewMockImportAPI creates an empty mock import API.
func NewMockImportAPI() *MockImportAPI {
	return &MockImportAPI{
		Jobs:        make(map[string]domain.ImportJobSpec),
		StatusQueue: make(map[string][]string),
		Errors:      make(map[string]error),
	}
}

func (m *MockImportAPI) CreateImportJob(ctx context.Context, spec domain.ImportJobSpec) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "CreateImportJob "+spec.Key)
	if err := m.Errors["CreateImportJob"]; err != nil {
		return "", err
	}
	id := fmt.Sprintf("job-%d", len(m.Jobs)+1)
	m.Jobs[id] = spec
	return id, nil
}

func (m *MockImportAPI) ImportJobStatus(ctx context.Context, jobID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "ImportJobStatus "+jobID)
	if err := m.Errors["ImportJobStatus"]; err != nil {
		return "", err
	}
	queue := m.StatusQueue[jobID]
	if len(queue) == 0 {
		return domain.ImportJobCompleted, nil
	}
	head := queue[0]
	if len(queue) > 1 {
		m.StatusQueue[jobID] = queue[1:]
	}
	return head, nil
}

// MockPredictionAPI is an in-memory implementation of
// ports.PredictionAPI.
type MockPredictionAPI struct {
	mu sync.Mutex

	Definitions   map[string]*domain.PredictionDefinition // composite model id
	PropertyNames map[string]string                       // "assetId/propertyId" -> name
	Errors        map[string]error

	Calls          []string
	ActionPayloads []string
	nextID         int
}

// NewMockPredictionAPI creates an empty mock prediction API.
func NewMockPredictionAPI() *MockPredictionAPI {
	return &MockPredictionAPI{
		Definitions:   make(map[string]*domain.PredictionDefinition),
		PropertyNames: make(map[string]string),
		Errors:        make(map[string]error),
	}
}

func (m *MockPredictionAPI) CreatePredictionDefinition(ctx context.Context, modelID, name, roleARN string, inputPropertyIDs []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "CreatePredictionDefinition "+modelID)
	if err := m.Errors["CreatePredictionDefinition"]; err != nil {
		return "", err
	}
	m.nextID++
	id := fmt.Sprintf("pd-%d", m.nextID)
	if _, ok := m.Definitions[id]; !ok {
		m.Definitions[id] = &domain.PredictionDefinition{ID: id, Name: name}
	}
	return id, nil
}

func (m *MockPredictionAPI) DescribePredictionDefinition(ctx context.Context, modelID, compositeModelID string) (*domain.PredictionDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "DescribePredictionDefinition "+compositeModelID)
	if err := m.Errors["DescribePredictionDefinition"]; err != nil {
		return nil, err
	}
	def, ok := m.Definitions[compositeModelID]
	if !ok {
		return nil, fmt.Errorf("prediction definition %s: %w", compositeModelID, ports.ErrNotFound)
	}
	cp := *def
	return &cp, nil
}

func (m *MockPredictionAPI) ExecuteAssetAction(ctx context.Context, actionDefinitionID, payload, assetID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "ExecuteAssetAction "+actionDefinitionID+" "+assetID)
	if err := m.Errors["ExecuteAssetAction"]; err != nil {
		return "", err
	}
	m.ActionPayloads = append(m.ActionPayloads, payload)
	return fmt.Sprintf("action-%d", len(m.ActionPayloads)), nil
}

func (m *MockPredictionAPI) AssetPropertyName(ctx context.Context, assetID, propertyID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "AssetPropertyName "+assetID+" "+propertyID)
	name, ok := m.PropertyNames[assetID+"/"+propertyID]
	if !ok {
		return "", fmt.Errorf("property %s: %w", propertyID, ports.ErrNotFound)
	}
	return name, nil
}

var _ ports.AssetAPI = (*MockAssetAPI)(nil)
var _ ports.ComputationAPI = (*MockComputationAPI)(nil)
var _ ports.TelemetryAPI = (*MockTelemetryAPI)(nil)
var _ ports.ImportAPI = (*MockImportAPI)(nil)
var _ ports.PredictionAPI = (*MockPredictionAPI)(nil)
