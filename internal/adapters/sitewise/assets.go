package sitewise

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotsitewise"
	"github.com/aws/aws-sdk-go-v2/service/iotsitewise/types"

	"github.com/mfgops/swctl/internal/core/domain"
)

func (c *Client) ResolveAssetByExternalID(ctx context.Context, externalID string) (string, error) {
	out, err := c.api.DescribeAsset(ctx, &iotsitewise.DescribeAssetInput{
		AssetId:           aws.String(externalIDRef(externalID)),
		ExcludeProperties: true,
	})
	if err != nil {
		return "", mapErr(err)
	}
	return aws.ToString(out.AssetId), nil
}

func (c *Client) DescribeAsset(ctx context.Context, assetID string) (*domain.Asset, error) {
	return c.describeAsset(ctx, assetID, true)
}

func (c *Client) DescribeAssetWithProperties(ctx context.Context, assetID string) (*domain.Asset, error) {
	return c.describeAsset(ctx, assetID, false)
}

func (c *Client) describeAsset(ctx context.Context, assetID string, excludeProperties bool) (*domain.Asset, error) {
	out, err := c.api.DescribeAsset(ctx, &iotsitewise.DescribeAssetInput{
		AssetId:           aws.String(assetID),
		ExcludeProperties: excludeProperties,
	})
	if err != nil {
		return nil, mapErr(err)
	}

	asset := &domain.Asset{
		ID:         aws.ToString(out.AssetId),
		ExternalID: aws.ToString(out.AssetExternalId),
		Name:       aws.ToString(out.AssetName),
		ModelID:    aws.ToString(out.AssetModelId),
	}
	for _, h := range out.AssetHierarchies {
		asset.Hierarchies = append(asset.Hierarchies, domain.Hierarchy{
			ID:   aws.ToString(h.Id),
			Name: aws.ToString(h.Name),
		})
	}
	for _, p := range out.AssetProperties {
		asset.Properties = append(asset.Properties, domain.Property{
			ID:         aws.ToString(p.Id),
			ExternalID: aws.ToString(p.ExternalId),
			Name:       aws.ToString(p.Name),
			Alias:      aws.ToString(p.Alias),
		})
	}
	return asset, nil
}

func (c *Client) ListAssociatedAssets(ctx context.Context, assetID, hierarchyID string) ([]domain.AssetSummary, error) {
	paginator := iotsitewise.NewListAssociatedAssetsPaginator(c.api, &iotsitewise.ListAssociatedAssetsInput{
		AssetId:            aws.String(assetID),
		HierarchyId:        aws.String(hierarchyID),
		TraversalDirection: types.TraversalDirectionChild,
	})
	var summaries []domain.AssetSummary
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapErr(err)
		}
		for _, s := range page.AssetSummaries {
			summaries = append(summaries, domain.AssetSummary{
				ID:   aws.ToString(s.Id),
				Name: aws.ToString(s.Name),
			})
		}
	}
	return summaries, nil
}

func (c *Client) DisassociateAssets(ctx context.Context, assetID, hierarchyID, childAssetID string) error {
	_, err := c.api.DisassociateAssets(ctx, &iotsitewise.DisassociateAssetsInput{
		AssetId:      aws.String(assetID),
		HierarchyId:  aws.String(hierarchyID),
		ChildAssetId: aws.String(childAssetID),
	})
	return mapErr(err)
}

func (c *Client) DeleteAsset(ctx context.Context, assetID string) error {
	_, err := c.api.DeleteAsset(ctx, &iotsitewise.DeleteAssetInput{
		AssetId: aws.String(assetID),
	})
	return mapErr(err)
}

func (c *Client) DescribeAssetModel(ctx context.Context, modelID string) (*domain.AssetModel, error) {
	out, err := c.api.DescribeAssetModel(ctx, &iotsitewise.DescribeAssetModelInput{
		AssetModelId:      aws.String(modelID),
		ExcludeProperties: false,
	})
	if err != nil {
		return nil, mapErr(err)
	}

	model := &domain.AssetModel{
		ID:   aws.ToString(out.AssetModelId),
		Name: aws.ToString(out.AssetModelName),
	}
	if out.AssetModelStatus != nil {
		model.State = string(out.AssetModelStatus.State)
	}
	for _, p := range out.AssetModelProperties {
		model.Properties = append(model.Properties, domain.Property{
			ID:         aws.ToString(p.Id),
			ExternalID: aws.ToString(p.ExternalId),
			Name:       aws.ToString(p.Name),
		})
	}
	for _, h := range out.AssetModelHierarchies {
		model.Hierarchies = append(model.Hierarchies, domain.ModelHierarchy{
			ID:           aws.ToString(h.Id),
			Name:         aws.ToString(h.Name),
			ChildModelID: aws.ToString(h.ChildAssetModelId),
		})
	}
	for _, cm := range out.AssetModelCompositeModelSummaries {
		model.CompositeModels = append(model.CompositeModels, domain.CompositeModelSummary{
			ID:   aws.ToString(cm.Id),
			Name: aws.ToString(cm.Name),
			Type: aws.ToString(cm.Type),
		})
	}
	return model, nil
}

// StripAssetModel updates the model with empty property, hierarchy and
// composite-model lists. The name is required by the update call.
func (c *Client) StripAssetModel(ctx context.Context, modelID, name string) error {
	_, err := c.api.UpdateAssetModel(ctx, &iotsitewise.UpdateAssetModelInput{
		AssetModelId:              aws.String(modelID),
		AssetModelName:            aws.String(name),
		AssetModelProperties:      []types.AssetModelProperty{},
		AssetModelHierarchies:     []types.AssetModelHierarchy{},
		AssetModelCompositeModels: []types.AssetModelCompositeModel{},
	})
	return mapErr(err)
}

func (c *Client) DeleteAssetModel(ctx context.Context, modelID string) error {
	_, err := c.api.DeleteAssetModel(ctx, &iotsitewise.DeleteAssetModelInput{
		AssetModelId: aws.String(modelID),
	})
	return mapErr(err)
}

func (c *Client) ListAssetsByModel(ctx context.Context, modelID string) ([]domain.AssetSummary, error) {
	paginator := iotsitewise.NewListAssetsPaginator(c.api, &iotsitewise.ListAssetsInput{
		AssetModelId: aws.String(modelID),
	})
	var summaries []domain.AssetSummary
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapErr(err)
		}
		for _, s := range page.AssetSummaries {
			summaries = append(summaries, domain.AssetSummary{
				ID:   aws.ToString(s.Id),
				Name: aws.ToString(s.Name),
			})
		}
	}
	return summaries, nil
}

// AssetPropertyName resolves a property id to its display name.
func (c *Client) AssetPropertyName(ctx context.Context, assetID, propertyID string) (string, error) {
	out, err := c.api.DescribeAssetProperty(ctx, &iotsitewise.DescribeAssetPropertyInput{
		AssetId:    aws.String(assetID),
		PropertyId: aws.String(propertyID),
	})
	if err != nil {
		return "", mapErr(err)
	}
	if out.AssetProperty == nil {
		return "", fmt.Errorf("property %s has no definition", propertyID)
	}
	return aws.ToString(out.AssetProperty.Name), nil
}
