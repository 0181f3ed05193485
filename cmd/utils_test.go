package cmd

import (
	"testing"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
)

func TestResolveActionType(t *testing.T) {
	tests := []struct {
		name    string
		action  string
		want    string
		wantErr bool
	}{
		{"training", "TRAINING", domain.ActionTypeTraining, false},
		{"inference", "INFERENCE", domain.ActionTypeInference, false},
		{"lowercase", "training", domain.ActionTypeTraining, false},
		{"mixed case", "Inference", domain.ActionTypeInference, false},
		{"unknown", "EVALUATION", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveActionType(tt.action)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("resolveActionType(%q) expected error, got %q", tt.action, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveActionType(%q) unexpected error: %v", tt.action, err)
			}
			if got != tt.want {
				t.Errorf("resolveActionType(%q) = %q, want %q", tt.action, got, tt.want)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime(nil); got != "-" {
		t.Errorf("formatTime(nil) = %q, want '-'", got)
	}

	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	if got := formatTime(&ts); got != "2026-03-01 09:30:00" {
		t.Errorf("formatTime() = %q", got)
	}
}
