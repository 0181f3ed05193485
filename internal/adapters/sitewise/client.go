// Package sitewise adapts the AWS IoT SiteWise API to the asset,
// computation, prediction, telemetry and import ports.
package sitewise

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotsitewise"
	"github.com/aws/aws-sdk-go-v2/service/iotsitewise/types"

	"github.com/mfgops/swctl/internal/core/ports"
)

// Client implements the SiteWise-backed ports on top of one SDK
// client.
type Client struct {
	api *iotsitewise.Client
}

// New creates a client from an AWS configuration.
func New(cfg aws.Config) *Client {
	return &Client{api: iotsitewise.NewFromConfig(cfg)}
}

var _ ports.AssetAPI = (*Client)(nil)
var _ ports.ComputationAPI = (*Client)(nil)
var _ ports.PredictionAPI = (*Client)(nil)
var _ ports.TelemetryAPI = (*Client)(nil)
var _ ports.ImportAPI = (*Client)(nil)

// externalIDRef addresses an asset by its external id in APIs that
// take an asset id.
func externalIDRef(externalID string) string {
	return "externalId:" + externalID
}

// mapErr translates the service's not-found fault into the port
// sentinel so callers can branch with errors.Is.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var nf *types.ResourceNotFoundException
	if errors.As(err, &nf) {
		return fmt.Errorf("%s: %w", aws.ToString(nf.Message), ports.ErrNotFound)
	}
	return err
}
