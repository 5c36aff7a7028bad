package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTreeItemJSONShape(t *testing.T) {
	folder := NewFolder("reports")
	folder.Items = append(folder.Items, NewAnalysisRef("a1"))

	data, err := json.Marshal(folder)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, "folder", raw["type"])
	require.Equal(t, "reports", raw["name"])
	require.Contains(t, raw, "expanded")
	require.Contains(t, raw, "items")

	leaf, err := json.Marshal(NewAnalysisRef("a1"))
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"a1","type":"analysis"}`, string(leaf))
}

func TestEmptyFolderSerializesItemsArray(t *testing.T) {
	folder := &TreeItem{ID: "f1", Type: ItemTypeFolder, Name: "empty"}

	data, err := json.Marshal(folder)
	require.NoError(t, err)
	require.Contains(t, string(data), `"items":[]`)
}

func TestTreeItemRoundTrip(t *testing.T) {
	folder := NewFolder("nested")
	folder.Expanded = true
	folder.Items = []*TreeItem{NewAnalysisRef("a1"), NewFolder("inner")}

	data, err := json.Marshal(folder)
	require.NoError(t, err)

	var decoded TreeItem
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.True(t, decoded.IsFolder())
	require.True(t, decoded.Expanded)
	require.Len(t, decoded.Items, 2)
	require.Equal(t, ItemTypeAnalysis, decoded.Items[0].Type)
	require.True(t, decoded.Items[1].IsFolder())
}

func TestSortedAnalysesOrdersByCreation(t *testing.T) {
	doc := NewConfigDocument()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	doc.Analyses["b"] = &AnalysisRecord{ID: "b", CreatedAt: base.Add(time.Hour)}
	doc.Analyses["a"] = &AnalysisRecord{ID: "a", CreatedAt: base}
	doc.Analyses["c"] = &AnalysisRecord{ID: "c", CreatedAt: base}

	sorted := doc.SortedAnalyses()
	require.Len(t, sorted, 3)
	require.Equal(t, "a", sorted[0].ID)
	require.Equal(t, "c", sorted[1].ID)
	require.Equal(t, "b", sorted[2].ID)
}

func TestEnsureStructureIsLazy(t *testing.T) {
	doc := NewConfigDocument()
	require.Empty(t, doc.TeamStructure)

	structure := doc.EnsureStructure("team-1")
	require.NotNil(t, structure)
	require.Empty(t, structure.Items)
	require.Same(t, structure, doc.EnsureStructure("team-1"))
}
