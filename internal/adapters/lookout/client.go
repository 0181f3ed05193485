// Package lookout adapts the Amazon Lookout for Equipment API to the
// detector port.
package lookout

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lookoutequipment"
	"github.com/aws/aws-sdk-go-v2/service/lookoutequipment/types"

	"github.com/mfgops/swctl/internal/core/ports"
)

const pageSize = 500

// Client implements the detector port on top of the Lookout for
// Equipment SDK client.
type Client struct {
	api *lookoutequipment.Client
}

// New creates a client from an AWS configuration.
func New(cfg aws.Config) *Client {
	return &Client{api: lookoutequipment.NewFromConfig(cfg)}
}

var _ ports.DetectorAPI = (*Client)(nil)

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

func (c *Client) ListDatasetNames(ctx context.Context) ([]string, error) {
	var names []string
	var nextToken *string
	for {
		out, err := c.api.ListDatasets(ctx, &lookoutequipment.ListDatasetsInput{
			MaxResults: aws.Int32(pageSize),
			NextToken:  nextToken,
		})
		if err != nil {
			return nil, mapErr(err)
		}
		for _, s := range out.DatasetSummaries {
			names = append(names, aws.ToString(s.DatasetName))
		}
		if out.NextToken == nil {
			return names, nil
		}
		nextToken = out.NextToken
	}
}

func (c *Client) ListModelNames(ctx context.Context, datasetPrefix string) ([]string, error) {
	out, err := c.api.ListModels(ctx, &lookoutequipment.ListModelsInput{
		MaxResults:            aws.Int32(pageSize),
		DatasetNameBeginsWith: aws.String(datasetPrefix),
	})
	if err != nil {
		return nil, mapErr(err)
	}
	var names []string
	for _, s := range out.ModelSummaries {
		names = append(names, aws.ToString(s.ModelName))
	}
	return names, nil
}

func (c *Client) ListSchedulerNames(ctx context.Context, modelName string) ([]string, error) {
	out, err := c.api.ListInferenceSchedulers(ctx, &lookoutequipment.ListInferenceSchedulersInput{
		MaxResults: aws.Int32(pageSize),
		ModelName:  aws.String(modelName),
	})
	if err != nil {
		return nil, mapErr(err)
	}
	var names []string
	for _, s := range out.InferenceSchedulerSummaries {
		names = append(names, aws.ToString(s.InferenceSchedulerName))
	}
	return names, nil
}

func (c *Client) SchedulerStatus(ctx context.Context, schedulerName string) (string, error) {
	out, err := c.api.DescribeInferenceScheduler(ctx, &lookoutequipment.DescribeInferenceSchedulerInput{
		InferenceSchedulerName: aws.String(schedulerName),
	})
	if err != nil {
		return "", mapErr(err)
	}
	return string(out.Status), nil
}

func (c *Client) StopScheduler(ctx context.Context, schedulerName string) error {
	_, err := c.api.StopInferenceScheduler(ctx, &lookoutequipment.StopInferenceSchedulerInput{
		InferenceSchedulerName: aws.String(schedulerName),
	})
	return mapErr(err)
}

func (c *Client) DeleteScheduler(ctx context.Context, schedulerName string) error {
	_, err := c.api.DeleteInferenceScheduler(ctx, &lookoutequipment.DeleteInferenceSchedulerInput{
		InferenceSchedulerName: aws.String(schedulerName),
	})
	return mapErr(err)
}

func (c *Client) DeleteModel(ctx context.Context, modelName string) error {
	_, err := c.api.DeleteModel(ctx, &lookoutequipment.DeleteModelInput{
		ModelName: aws.String(modelName),
	})
	return mapErr(err)
}

func (c *Client) DeleteDataset(ctx context.Context, datasetName string) error {
	_, err := c.api.DeleteDataset(ctx, &lookoutequipment.DeleteDatasetInput{
		DatasetName: aws.String(datasetName),
	})
	return mapErr(err)
}
