package domain

// AssetSummary is the lightweight (id, name) pair returned by listing
// operations. Used during traversal to avoid re-describing children.
type AssetSummary struct {
	ID   string
	Name string
}

// Hierarchy is a hierarchy slot on a live asset. Child assets are
// associated under a slot, not directly under the asset.
type Hierarchy struct {
	ID   string
	Name string
}

// Asset is a node instance in the resource hierarchy, instantiated
// from an asset model.
type Asset struct {
	ID          string
	ExternalID  string
	Name        string
	ModelID     string
	Hierarchies []Hierarchy
	Properties  []Property
}

// Property is a property on an asset or asset model. Alias is set only
// for measurements bound to a data stream.
type Property struct {
	ID         string
	ExternalID string
	Name       string
	Alias      string
}

// ModelHierarchy is a hierarchy definition on an asset model. It
// references the child model that assets under this slot must be
// instantiated from.
type ModelHierarchy struct {
	ID           string
	Name         string
	ChildModelID string
}

// CompositeModelSummary describes a composite model attached to an
// asset model, e.g. an equipment-anomaly prediction definition.
type CompositeModelSummary struct {
	ID   string
	Name string
	Type string
}

// AssetModel is the template assets are instantiated from.
type AssetModel struct {
	ID              string
	Name            string
	State           string
	Properties      []Property
	Hierarchies     []ModelHierarchy
	CompositeModels []CompositeModelSummary
}

// Asset model states observed while polling an update. ACTIVE and
// FAILED are terminal.
const (
	ModelStateActive   = "ACTIVE"
	ModelStateUpdating = "UPDATING"
	ModelStateFailed   = "FAILED"
)

// ChildModelIDs returns the child model referenced by each hierarchy
// definition, in definition order.
func (m *AssetModel) ChildModelIDs() []string {
	ids := make([]string, 0, len(m.Hierarchies))
	for _, h := range m.Hierarchies {
		ids = append(ids, h.ChildModelID)
	}
	return ids
}
