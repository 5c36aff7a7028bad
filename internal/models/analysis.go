package models

import (
	"sort"
	"time"
)

// ConfigDocumentVersion is the schema marker written into analyses-config.json.
const ConfigDocumentVersion = "5.0"

// Analysis run states stored in the config document. Process supervision is
// an external collaborator; the worker only records the reported state.
const (
	StatusStopped = "stopped"
	StatusRunning = "running"
	StatusError   = "error"
)

// AnalysisRecord is the config-document entry for one managed script.
// The ID is immutable once assigned; Name is a display label.
type AnalysisRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TeamID    string    `json:"teamId"`
	Enabled   bool      `json:"enabled"`
	Status    string    `json:"status"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TeamStructure holds the ordered root items of one team's folder tree.
type TeamStructure struct {
	Items []*TreeItem `json:"items"`
}

// ConfigDocument is the single JSON source of truth for analysis metadata
// and per-team folder trees.
type ConfigDocument struct {
	Version       string                     `json:"version"`
	Analyses      map[string]*AnalysisRecord `json:"analyses"`
	TeamStructure map[string]*TeamStructure  `json:"teamStructure"`
}

// NewConfigDocument returns an empty document at the current schema version.
func NewConfigDocument() *ConfigDocument {
	return &ConfigDocument{
		Version:       ConfigDocumentVersion,
		Analyses:      map[string]*AnalysisRecord{},
		TeamStructure: map[string]*TeamStructure{},
	}
}

// EnsureStructure returns the team's structure, creating an empty one when the
// team has none yet.
func (d *ConfigDocument) EnsureStructure(teamID string) *TeamStructure {
	if d.TeamStructure == nil {
		d.TeamStructure = map[string]*TeamStructure{}
	}
	structure, ok := d.TeamStructure[teamID]
	if !ok || structure == nil {
		structure = &TeamStructure{Items: []*TreeItem{}}
		d.TeamStructure[teamID] = structure
	}
	return structure
}

// SortedAnalyses returns analysis records ordered by creation time, then id.
// Go maps carry no insertion order, so creation time stands in for the JSON
// object order the document was built in.
func (d *ConfigDocument) SortedAnalyses() []*AnalysisRecord {
	out := make([]*AnalysisRecord, 0, len(d.Analyses))
	for _, record := range d.Analyses {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
