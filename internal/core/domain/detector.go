package domain

// Equipment-detector (dataset/model/scheduler) lifecycle states.
const (
	SchedulerRunning = "RUNNING"
	SchedulerStopped = "STOPPED"
)

// Composite model type and well-known property names of an equipment
// anomaly prediction definition.
const (
	PredictionDefinitionType = "AWS/L4E_ANOMALY"

	PredictionPermissionsProperty     = "AWS/L4E_ANOMALY_PERMISSIONS"
	PredictionInputProperty           = "AWS/L4E_ANOMALY_INPUT"
	PredictionResultProperty          = "AWS/L4E_ANOMALY_RESULT"
	PredictionTrainingStatusProperty  = "AWS/L4E_ANOMALY_TRAINING_STATUS"
	PredictionInferenceStatusProperty = "AWS/L4E_ANOMALY_INFERENCE_STATUS"
)

// Workflow status values published to the tracking properties.
const (
	TrainingCompleted = "L4E_TRAINING_COMPLETED"
	InferenceActive   = "L4E_INFERENCE_ACTIVE"
)

// PredictionDefinition is a composite model configured for equipment
// anomaly detection, with its tracking properties and actions.
type PredictionDefinition struct {
	ID                string
	Name              string
	Properties        []Property
	ActionDefinitions []ActionDefinition
}

// PropertyID returns the id of the named composite-model property, or
// "" when absent.
func (d *PredictionDefinition) PropertyID(name string) string {
	for _, p := range d.Properties {
		if p.Name == name {
			return p.ID
		}
	}
	return ""
}

// ActionDefinitionID returns the id of the named action, or "".
func (d *PredictionDefinition) ActionDefinitionID(name string) string {
	for _, a := range d.ActionDefinitions {
		if a.Name == name {
			return a.ID
		}
	}
	return ""
}

// Diagnostic is one sensor's contribution to an anomaly score. The raw
// payload carries a property-id reference in Name; callers resolve it
// to a display name.
type Diagnostic struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// AnomalyResult is the decoded payload of the anomaly result property.
type AnomalyResult struct {
	PredictionReason string       `json:"prediction_reason"`
	AnomalyScore     float64      `json:"anomaly_score"`
	Diagnostics      []Diagnostic `json:"diagnostics"`
}
