package models

import "time"

// VersionDescriptor records one immutable historical snapshot of an
// analysis's content. Snapshots are append-only; descriptors are never
// mutated after being written.
type VersionDescriptor struct {
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Size      int       `json:"size"`
}

// VersionMetadata is the per-analysis versions/metadata.json document.
// CurrentVersion always names the version whose content is copied into the
// live index.js; NextVersionNumber is a strictly increasing allocator that
// is never rewound, not even by rollback.
type VersionMetadata struct {
	Versions          []VersionDescriptor `json:"versions"`
	NextVersionNumber int                 `json:"nextVersionNumber"`
	CurrentVersion    int                 `json:"currentVersion"`
}

// NewVersionMetadata returns the initial metadata for an analysis with no
// versions yet.
func NewVersionMetadata() *VersionMetadata {
	return &VersionMetadata{
		Versions:          []VersionDescriptor{},
		NextVersionNumber: 1,
		CurrentVersion:    0,
	}
}

// Current returns the descriptor for CurrentVersion, if any.
func (m *VersionMetadata) Current() (VersionDescriptor, bool) {
	return m.Find(m.CurrentVersion)
}

// Find returns the descriptor for the given version number.
func (m *VersionMetadata) Find(version int) (VersionDescriptor, bool) {
	for _, desc := range m.Versions {
		if desc.Version == version {
			return desc, true
		}
	}
	return VersionDescriptor{}, false
}
