package sitewise

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotsitewise"
	"github.com/aws/aws-sdk-go-v2/service/iotsitewise/types"

	"github.com/mfgops/swctl/internal/core/domain"
)

func (c *Client) CreateImportJob(ctx context.Context, spec domain.ImportJobSpec) (string, error) {
	columns := make([]types.ColumnName, 0, len(spec.Columns))
	for _, name := range spec.Columns {
		columns = append(columns, types.ColumnName(name))
	}

	out, err := c.api.CreateBulkImportJob(ctx, &iotsitewise.CreateBulkImportJobInput{
		JobName:    aws.String(spec.Name),
		JobRoleArn: aws.String(spec.RoleARN),
		Files: []types.File{
			{Bucket: aws.String(spec.Bucket), Key: aws.String(spec.Key)},
		},
		ErrorReportLocation: &types.ErrorReportLocation{
			Bucket: aws.String(spec.Bucket),
			Prefix: aws.String(spec.ErrorPrefix),
		},
		JobConfiguration: &types.JobConfiguration{
			FileFormat: &types.FileFormat{
				Csv: &types.Csv{ColumnNames: columns},
			},
		},
	})
	if err != nil {
		return "", mapErr(err)
	}
	return aws.ToString(out.JobId), nil
}

func (c *Client) ImportJobStatus(ctx context.Context, jobID string) (string, error) {
	out, err := c.api.DescribeBulkImportJob(ctx, &iotsitewise.DescribeBulkImportJobInput{
		JobId: aws.String(jobID),
	})
	if err != nil {
		return "", mapErr(err)
	}
	return string(out.JobStatus), nil
}
