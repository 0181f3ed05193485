// Package twinmaker adapts the AWS IoT TwinMaker metadata transfer API
// to the metadata port. Transfer jobs move model and asset definitions
// from object storage into IoT SiteWise.
package twinmaker

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iottwinmaker"
	"github.com/aws/aws-sdk-go-v2/service/iottwinmaker/types"

	"github.com/mfgops/swctl/internal/core/domain"
	"github.com/mfgops/swctl/internal/core/ports"
)

// Client implements the metadata port on top of the IoT TwinMaker SDK
// client.
type Client struct {
	api *iottwinmaker.Client
}

// New creates a client from an AWS configuration.
func New(cfg aws.Config) *Client {
	return &Client{api: iottwinmaker.NewFromConfig(cfg)}
}

var _ ports.MetadataAPI = (*Client)(nil)

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

func (c *Client) CreateTransferJob(ctx context.Context, jobID, bucket, key string) error {
	location := fmt.Sprintf("arn:aws:s3:::%s/%s", bucket, key)
	_, err := c.api.CreateMetadataTransferJob(ctx, &iottwinmaker.CreateMetadataTransferJobInput{
		MetadataTransferJobId: aws.String(jobID),
		Sources: []types.SourceConfiguration{
			{
				Type: types.SourceTypeS3,
				S3Configuration: &types.S3SourceConfiguration{
					Location: aws.String(location),
				},
			},
		},
		Destination: &types.DestinationConfiguration{
			Type: types.DestinationTypeIotsitewise,
		},
	})
	return mapErr(err)
}

func (c *Client) TransferJobStatus(ctx context.Context, jobID string) (*domain.TransferJobStatus, error) {
	out, err := c.api.GetMetadataTransferJob(ctx, &iottwinmaker.GetMetadataTransferJobInput{
		MetadataTransferJobId: aws.String(jobID),
	})
	if err != nil {
		return nil, mapErr(err)
	}

	status := &domain.TransferJobStatus{
		ReportURL: aws.ToString(out.ReportUrl),
	}
	if out.Status != nil {
		status.State = string(out.Status.State)
	}
	if out.Progress != nil {
		status.Progress = domain.TransferProgress{
			Total:     int(aws.ToInt32(out.Progress.TotalCount)),
			Succeeded: int(aws.ToInt32(out.Progress.SucceededCount)),
			Skipped:   int(aws.ToInt32(out.Progress.SkippedCount)),
			Failed:    int(aws.ToInt32(out.Progress.FailedCount)),
		}
	}
	return status, nil
}
