package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Tree item discriminators. The tree is a two-shape tagged union; all
// traversal and mutation code switches on Type.
const (
	ItemTypeAnalysis = "analysis"
	ItemTypeFolder   = "folder"
)

// TreeItem is one node of a team's folder hierarchy: either an analysis
// reference (leaf, id points at an AnalysisRecord) or a folder owning an
// ordered sequence of children. A node belongs to exactly one container.
type TreeItem struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Name     string      `json:"name,omitempty"`
	Expanded bool        `json:"expanded,omitempty"`
	Items    []*TreeItem `json:"items,omitempty"`
}

// NewAnalysisRef builds a leaf referencing an analysis record.
func NewAnalysisRef(analysisID string) *TreeItem {
	return &TreeItem{ID: analysisID, Type: ItemTypeAnalysis}
}

// NewFolder builds an empty collapsed folder with a fresh identifier.
func NewFolder(name string) *TreeItem {
	return &TreeItem{
		ID:    uuid.NewString(),
		Type:  ItemTypeFolder,
		Name:  name,
		Items: []*TreeItem{},
	}
}

// IsFolder reports whether the node is the folder variant.
func (t *TreeItem) IsFolder() bool {
	return t != nil && t.Type == ItemTypeFolder
}

// MarshalJSON keeps the two variants distinct on the wire: analysis refs
// carry only {id, type}, folders always carry name/expanded/items even when
// the folder is empty.
func (t *TreeItem) MarshalJSON() ([]byte, error) {
	if t.Type == ItemTypeFolder {
		items := t.Items
		if items == nil {
			items = []*TreeItem{}
		}
		return json.Marshal(struct {
			ID       string      `json:"id"`
			Type     string      `json:"type"`
			Name     string      `json:"name"`
			Expanded bool        `json:"expanded"`
			Items    []*TreeItem `json:"items"`
		}{t.ID, t.Type, t.Name, t.Expanded, items})
	}

	return json.Marshal(struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}{t.ID, t.Type})
}
