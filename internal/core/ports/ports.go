package ports

import (
	"context"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
)

// AssetAPI is the port for the asset-management service's asset and
// asset-model operations. Implementations flatten pagination and map
// the service's not-found condition to ErrNotFound.
type AssetAPI interface {
	// ResolveAssetByExternalID returns the internal asset id for an
	// external/business identifier.
	ResolveAssetByExternalID(ctx context.Context, externalID string) (string, error)

	// DescribeAsset returns an asset without property detail.
	DescribeAsset(ctx context.Context, assetID string) (*domain.Asset, error)

	// DescribeAssetWithProperties returns an asset including its
	// property list (used for alias discovery).
	DescribeAssetWithProperties(ctx context.Context, assetID string) (*domain.Asset, error)

	// ListAssociatedAssets returns the children currently associated
	// under one hierarchy slot of an asset.
	ListAssociatedAssets(ctx context.Context, assetID, hierarchyID string) ([]domain.AssetSummary, error)

	// DisassociateAssets removes one parent-child association.
	DisassociateAssets(ctx context.Context, assetID, hierarchyID, childAssetID string) error

	// DeleteAsset deletes an asset with no remaining associations.
	DeleteAsset(ctx context.Context, assetID string) error

	// DescribeAssetModel returns an asset model with its property,
	// hierarchy and composite-model definitions.
	DescribeAssetModel(ctx context.Context, modelID string) (*domain.AssetModel, error)

	// StripAssetModel issues an update that replaces the model's
	// property, hierarchy and composite-model lists with empty
	// collections. Completion is observed via DescribeAssetModel.
	StripAssetModel(ctx context.Context, modelID, name string) error

	// DeleteAssetModel deletes an asset model with no dependents.
	DeleteAssetModel(ctx context.Context, modelID string) error

	// ListAssetsByModel returns the assets currently instantiated from
	// a model.
	ListAssetsByModel(ctx context.Context, modelID string) ([]domain.AssetSummary, error)
}

// ComputationAPI is the port for anomaly-detection computation models
// and their actions.
type ComputationAPI interface {
	// CreateAnomalyModel creates a computation model and returns its id.
	CreateAnomalyModel(ctx context.Context, spec domain.AnomalyModelSpec) (string, error)

	// DescribeComputationModel returns the model including its resolved
	// backing asset id and action definitions.
	DescribeComputationModel(ctx context.Context, modelID string) (*domain.ComputationModel, error)

	// ListAnomalyModelIDs returns the ids of all anomaly-detection
	// computation models.
	ListAnomalyModelIDs(ctx context.Context) ([]string, error)

	// DeleteComputationModel deletes a computation model.
	DeleteComputationModel(ctx context.Context, modelID string) error

	// ExecuteModelAction runs an action against a computation model and
	// returns the action id. The payload is an opaque JSON document.
	ExecuteModelAction(ctx context.Context, actionDefinitionID, payload, modelID string) (string, error)

	// ListExecutions returns the execution history of one action type
	// against a computation model, newest first.
	ListExecutions(ctx context.Context, modelID, actionType string) ([]domain.Execution, error)

	// ExecutionResultMessage returns the result message of an execution.
	ExecutionResultMessage(ctx context.Context, executionID string) (string, error)

	// InferenceTimerActive reports whether the model's inference timer
	// is currently active.
	InferenceTimerActive(ctx context.Context, modelID string) (bool, error)
}

// PredictionAPI is the port for prediction definitions (equipment
// anomaly composite models) on asset models.
type PredictionAPI interface {
	// CreatePredictionDefinition attaches a prediction definition to an
	// asset model and returns the composite model id.
	CreatePredictionDefinition(ctx context.Context, modelID, name, roleARN string, inputPropertyIDs []string) (string, error)

	// DescribePredictionDefinition returns the composite model's
	// properties and action definitions.
	DescribePredictionDefinition(ctx context.Context, modelID, compositeModelID string) (*domain.PredictionDefinition, error)

	// ExecuteAssetAction runs a composite-model action against an asset
	// and returns the action id.
	ExecuteAssetAction(ctx context.Context, actionDefinitionID, payload, assetID string) (string, error)

	// AssetPropertyName resolves a property id on an asset to its
	// display name.
	AssetPropertyName(ctx context.Context, assetID, propertyID string) (string, error)
}

// TelemetryAPI is the port for data streams and property values.
type TelemetryAPI interface {
	// ListDisassociatedStreams returns the aliases of all time series
	// not bound to any asset property.
	ListDisassociatedStreams(ctx context.Context) ([]string, error)

	// DeleteTimeSeries deletes the stream behind an alias.
	DeleteTimeSeries(ctx context.Context, alias string) error

	// PublishValues writes a batch of timestamped samples.
	PublishValues(ctx context.Context, values []domain.PropertyValue) error

	// PropertyValueString returns the latest string value of an asset
	// property, or "" when no value has been written.
	PropertyValueString(ctx context.Context, assetID, propertyID string) (string, error)

	// HistoryCount counts the samples recorded for an alias in a time
	// window.
	HistoryCount(ctx context.Context, alias string, start, end time.Time) (int, error)
}

// ImportAPI is the port for bulk time-series import jobs.
type ImportAPI interface {
	// CreateImportJob submits a bulk import job and returns its id.
	CreateImportJob(ctx context.Context, spec domain.ImportJobSpec) (string, error)

	// ImportJobStatus returns the current status of a job.
	ImportJobStatus(ctx context.Context, jobID string) (string, error)
}

// MetadataAPI is the port for metadata transfer jobs (bulk model/asset
// definition import).
type MetadataAPI interface {
	// CreateTransferJob starts a transfer of a definitions document
	// from object storage into the asset-management service.
	CreateTransferJob(ctx context.Context, jobID, bucket, key string) error

	// TransferJobStatus returns a snapshot of the job.
	TransferJobStatus(ctx context.Context, jobID string) (*domain.TransferJobStatus, error)
}

// DetectorAPI is the port for the equipment-anomaly-detection service's
// dataset, model and inference-scheduler lifecycle.
type DetectorAPI interface {
	// ListDatasetNames returns the names of all datasets.
	ListDatasetNames(ctx context.Context) ([]string, error)

	// ListModelNames returns the models trained from datasets whose
	// name begins with the given prefix.
	ListModelNames(ctx context.Context, datasetPrefix string) ([]string, error)

	// ListSchedulerNames returns the inference schedulers attached to a
	// model.
	ListSchedulerNames(ctx context.Context, modelName string) ([]string, error)

	// SchedulerStatus returns a scheduler's lifecycle state.
	SchedulerStatus(ctx context.Context, schedulerName string) (string, error)

	// StopScheduler requests a running scheduler to stop.
	StopScheduler(ctx context.Context, schedulerName string) error

	// DeleteScheduler deletes a stopped scheduler.
	DeleteScheduler(ctx context.Context, schedulerName string) error

	// DeleteModel deletes a model with no schedulers.
	DeleteModel(ctx context.Context, modelName string) error

	// DeleteDataset deletes a dataset with no models.
	DeleteDataset(ctx context.Context, datasetName string) error
}

// ObjectStore is the port for bulk file storage.
type ObjectStore interface {
	// Upload stores a local file under bucket/key.
	Upload(ctx context.Context, bucket, key, localPath string) error

	// ListKeys returns all keys under a prefix.
	ListKeys(ctx context.Context, bucket, prefix string) ([]string, error)

	// DeletePrefix removes every object under a prefix.
	DeletePrefix(ctx context.Context, bucket, prefix string) error
}

// ProcessManager is the port for local process control, used to stop
// the telemetry simulator before teardown.
type ProcessManager interface {
	// KillByCommand kills the first process whose command line contains
	// the given substring. Returns the pid and whether one was found.
	KillByCommand(ctx context.Context, substring string) (int32, bool, error)
}

// Sleeper abstracts the delays between polls so tests can run the
// waiting state machines without real sleeps.
type Sleeper interface {
	// Sleep blocks for d or until the context is cancelled, returning
	// the context's error in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}
