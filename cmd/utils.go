package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mfgops/swctl/internal/core/domain"
)

// resolveActionType maps the user-facing action flag onto the service's
// action type identifier.
func resolveActionType(action string) (string, error) {
	switch strings.ToUpper(action) {
	case "TRAINING":
		return domain.ActionTypeTraining, nil
	case "INFERENCE":
		return domain.ActionTypeInference, nil
	default:
		return "", fmt.Errorf("invalid action %q, expected TRAINING or INFERENCE", action)
	}
}

// resolveModelIDs returns the computation models to inspect: the
// explicit model id when given, otherwise every model bound to the
// asset.
func resolveModelIDs(ctx context.Context, modelID, assetID string) ([]string, error) {
	if modelID != "" {
		return []string{modelID}, nil
	}
	if assetID == "" {
		return nil, fmt.Errorf("either --computation-model-id or --asset-id is required")
	}
	return executionService.ModelsForAsset(ctx, assetID)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
