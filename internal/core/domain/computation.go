package domain

import "time"

// Computation model states. ACTIVE and FAILED are terminal.
const (
	ComputationStateActive   = "ACTIVE"
	ComputationStateCreating = "CREATING"
	ComputationStateFailed   = "FAILED"
)

// Action types exposed by anomaly-detection computation models.
const (
	ActionTypeTraining  = "AWS/ANOMALY_DETECTION_TRAINING"
	ActionTypeInference = "AWS/ANOMALY_DETECTION_INFERENCE"
)

// ActionDefinition is an executable action declared on a computation
// model or prediction definition.
type ActionDefinition struct {
	ID   string
	Name string
}

// ComputationModel binds an asset's properties to an anomaly-detection
// configuration. BoundAssetID is the asset backing the declared result
// property, resolved by the adapter from the model's data binding.
type ComputationModel struct {
	ID                string
	Name              string
	State             string
	BoundAssetID      string
	ResultPropertyID  string
	ActionDefinitions []ActionDefinition
}

// ActionDefinitionID returns the id of the action definition with the
// given name, or "" when the model declares no such action.
func (m *ComputationModel) ActionDefinitionID(name string) string {
	for _, d := range m.ActionDefinitions {
		if d.Name == name {
			return d.ID
		}
	}
	return ""
}

// AnomalyModelSpec is the request to create an anomaly-detection
// computation model over a set of input properties of one asset.
type AnomalyModelSpec struct {
	Name             string
	AssetID          string
	InputPropertyIDs []string
	ResultPropertyID string
}

// Execution is one run of a computation-model action.
type Execution struct {
	ID        string
	State     string
	StartTime *time.Time
	EndTime   *time.Time
}

// ExecutionDetail is an execution enriched with its result message and,
// for inference, the latest anomaly result payload.
type ExecutionDetail struct {
	Execution
	ResultMessage string
	AnomalyResult string
}
