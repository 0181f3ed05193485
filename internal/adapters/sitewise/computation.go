package sitewise

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotsitewise"
	"github.com/aws/aws-sdk-go-v2/service/iotsitewise/types"

	"github.com/mfgops/swctl/internal/core/domain"
)

// Data binding keys referenced by the anomaly-detection configuration
// template.
const (
	inputPropertiesBinding = "input_properties"
	resultPropertyBinding  = "result_property"
)

func (c *Client) CreateAnomalyModel(ctx context.Context, spec domain.AnomalyModelSpec) (string, error) {
	inputs := make([]types.ComputationModelDataBindingValue, 0, len(spec.InputPropertyIDs))
	for _, propertyID := range spec.InputPropertyIDs {
		inputs = append(inputs, types.ComputationModelDataBindingValue{
			AssetProperty: &types.AssetPropertyBindingValue{
				AssetId:    aws.String(spec.AssetID),
				PropertyId: aws.String(propertyID),
			},
		})
	}

	out, err := c.api.CreateComputationModel(ctx, &iotsitewise.CreateComputationModelInput{
		ComputationModelName: aws.String(spec.Name),
		ComputationModelConfiguration: &types.ComputationModelConfiguration{
			AnomalyDetection: &types.ComputationModelAnomalyDetectionConfiguration{
				InputProperties: aws.String("${" + inputPropertiesBinding + "}"),
				ResultProperty:  aws.String("${" + resultPropertyBinding + "}"),
			},
		},
		ComputationModelDataBinding: map[string]types.ComputationModelDataBindingValue{
			inputPropertiesBinding: {List: inputs},
			resultPropertyBinding: {
				AssetProperty: &types.AssetPropertyBindingValue{
					AssetId:    aws.String(spec.AssetID),
					PropertyId: aws.String(spec.ResultPropertyID),
				},
			},
		},
	})
	if err != nil {
		return "", mapErr(err)
	}
	return aws.ToString(out.ComputationModelId), nil
}

// DescribeComputationModel resolves the model's result-property data
// binding back to its asset and property ids.
func (c *Client) DescribeComputationModel(ctx context.Context, modelID string) (*domain.ComputationModel, error) {
	out, err := c.api.DescribeComputationModel(ctx, &iotsitewise.DescribeComputationModelInput{
		ComputationModelId: aws.String(modelID),
	})
	if err != nil {
		return nil, mapErr(err)
	}

	model := &domain.ComputationModel{
		ID:   aws.ToString(out.ComputationModelId),
		Name: aws.ToString(out.ComputationModelName),
	}
	if out.ComputationModelStatus != nil {
		model.State = string(out.ComputationModelStatus.State)
	}
	for _, d := range out.ActionDefinitions {
		model.ActionDefinitions = append(model.ActionDefinitions, domain.ActionDefinition{
			ID:   aws.ToString(d.ActionDefinitionId),
			Name: aws.ToString(d.ActionName),
		})
	}

	// The configuration names its result property as a "${key}"
	// placeholder into the data binding.
	if cfg := out.ComputationModelConfiguration; cfg != nil && cfg.AnomalyDetection != nil {
		key := strings.Trim(aws.ToString(cfg.AnomalyDetection.ResultProperty), "${}")
		if binding, ok := out.ComputationModelDataBinding[key]; ok && binding.AssetProperty != nil {
			model.BoundAssetID = aws.ToString(binding.AssetProperty.AssetId)
			model.ResultPropertyID = aws.ToString(binding.AssetProperty.PropertyId)
		}
	}
	return model, nil
}

func (c *Client) ListAnomalyModelIDs(ctx context.Context) ([]string, error) {
	paginator := iotsitewise.NewListComputationModelsPaginator(c.api, &iotsitewise.ListComputationModelsInput{
		ComputationModelType: types.ComputationModelTypeAnomalyDetection,
	})
	var ids []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapErr(err)
		}
		for _, s := range page.ComputationModelSummaries {
			ids = append(ids, aws.ToString(s.Id))
		}
	}
	return ids, nil
}

func (c *Client) DeleteComputationModel(ctx context.Context, modelID string) error {
	_, err := c.api.DeleteComputationModel(ctx, &iotsitewise.DeleteComputationModelInput{
		ComputationModelId: aws.String(modelID),
	})
	return mapErr(err)
}

func (c *Client) ExecuteModelAction(ctx context.Context, actionDefinitionID, payload, modelID string) (string, error) {
	out, err := c.api.ExecuteAction(ctx, &iotsitewise.ExecuteActionInput{
		ActionDefinitionId: aws.String(actionDefinitionID),
		ActionPayload:      &types.ActionPayload{StringValue: aws.String(payload)},
		TargetResource:     &types.TargetResource{ComputationModelId: aws.String(modelID)},
	})
	if err != nil {
		return "", mapErr(err)
	}
	return aws.ToString(out.ActionId), nil
}

func (c *Client) ListExecutions(ctx context.Context, modelID, actionType string) ([]domain.Execution, error) {
	paginator := iotsitewise.NewListExecutionsPaginator(c.api, &iotsitewise.ListExecutionsInput{
		TargetResourceType: types.TargetResourceTypeComputationModel,
		TargetResourceId:   aws.String(modelID),
		ActionType:         aws.String(actionType),
	})
	var executions []domain.Execution
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapErr(err)
		}
		for _, s := range page.ExecutionSummaries {
			exec := domain.Execution{
				ID:        aws.ToString(s.ExecutionId),
				StartTime: s.ExecutionStartTime,
				EndTime:   s.ExecutionEndTime,
			}
			if s.ExecutionStatus != nil {
				exec.State = string(s.ExecutionStatus.State)
			}
			executions = append(executions, exec)
		}
	}
	return executions, nil
}

func (c *Client) ExecutionResultMessage(ctx context.Context, executionID string) (string, error) {
	out, err := c.api.DescribeExecution(ctx, &iotsitewise.DescribeExecutionInput{
		ExecutionId: aws.String(executionID),
	})
	if err != nil {
		return "", mapErr(err)
	}
	return out.ExecutionResult["message"], nil
}

func (c *Client) InferenceTimerActive(ctx context.Context, modelID string) (bool, error) {
	out, err := c.api.DescribeComputationModelExecutionSummary(ctx, &iotsitewise.DescribeComputationModelExecutionSummaryInput{
		ComputationModelId: aws.String(modelID),
	})
	if err != nil {
		return false, mapErr(err)
	}
	return out.ComputationModelExecutionSummary["inferenceTimerActive"] == "true", nil
}
