package domain

import "time"

// PropertyValue is one timestamped double sample published to a
// data-stream alias.
type PropertyValue struct {
	Alias     string
	Timestamp time.Time
	Value     float64
}

// LabelWindow is a labeled anomaly interval written alongside
// generated historical data.
type LabelWindow struct {
	Start time.Time
	End   time.Time
}

// TrainingStatus and InferenceStatus payloads published by the
// detector workflow are JSON objects with a single status field.
type WorkflowStatus struct {
	Status string `json:"status"`
}
