package sitewise

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotsitewise"
	"github.com/aws/aws-sdk-go-v2/service/iotsitewise/types"
	"github.com/google/uuid"

	"github.com/mfgops/swctl/internal/core/domain"
)

func (c *Client) ListDisassociatedStreams(ctx context.Context) ([]string, error) {
	paginator := iotsitewise.NewListTimeSeriesPaginator(c.api, &iotsitewise.ListTimeSeriesInput{
		TimeSeriesType: types.ListTimeSeriesTypeDisassociated,
	})
	var aliases []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapErr(err)
		}
		for _, s := range page.TimeSeriesSummaries {
			aliases = append(aliases, aws.ToString(s.Alias))
		}
	}
	return aliases, nil
}

func (c *Client) DeleteTimeSeries(ctx context.Context, alias string) error {
	_, err := c.api.DeleteTimeSeries(ctx, &iotsitewise.DeleteTimeSeriesInput{
		Alias: aws.String(alias),
	})
	return mapErr(err)
}

// PublishValues writes one sample per alias in a single batch call.
// Entry ids only need to be unique within the request.
func (c *Client) PublishValues(ctx context.Context, values []domain.PropertyValue) error {
	entries := make([]types.PutAssetPropertyValueEntry, 0, len(values))
	for _, v := range values {
		entries = append(entries, types.PutAssetPropertyValueEntry{
			EntryId:       aws.String(uuid.NewString()),
			PropertyAlias: aws.String(v.Alias),
			PropertyValues: []types.AssetPropertyValue{
				{
					Value: &types.Variant{DoubleValue: aws.Float64(v.Value)},
					Timestamp: &types.TimeInNanos{
						TimeInSeconds: aws.Int64(v.Timestamp.Unix()),
						OffsetInNanos: aws.Int32(0),
					},
					Quality: types.QualityGood,
				},
			},
		})
	}
	_, err := c.api.BatchPutAssetPropertyValue(ctx, &iotsitewise.BatchPutAssetPropertyValueInput{
		Entries: entries,
	})
	return mapErr(err)
}

// PropertyValueString reads the latest value of a string property. A
// property with no value yet reads as "".
func (c *Client) PropertyValueString(ctx context.Context, assetID, propertyID string) (string, error) {
	out, err := c.api.GetAssetPropertyValue(ctx, &iotsitewise.GetAssetPropertyValueInput{
		AssetId:    aws.String(assetID),
		PropertyId: aws.String(propertyID),
	})
	if err != nil {
		return "", mapErr(err)
	}
	if out.PropertyValue == nil || out.PropertyValue.Value == nil {
		return "", nil
	}
	return aws.ToString(out.PropertyValue.Value.StringValue), nil
}

func (c *Client) HistoryCount(ctx context.Context, alias string, start, end time.Time) (int, error) {
	paginator := iotsitewise.NewGetAssetPropertyValueHistoryPaginator(c.api, &iotsitewise.GetAssetPropertyValueHistoryInput{
		PropertyAlias: aws.String(alias),
		StartDate:     aws.Time(start),
		EndDate:       aws.Time(end),
		MaxResults:    aws.Int32(20000),
	})
	count := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, mapErr(err)
		}
		count += len(page.AssetPropertyValueHistory)
	}
	return count, nil
}
