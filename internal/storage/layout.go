package storage

import (
	"fmt"
	"path/filepath"
)

// Layout maps the storage root to the on-disk shape shared by all stores:
//
//	config/analyses-config.json
//	analyses/<id>/index.js
//	analyses/<id>/logs/*.log
//	analyses/<id>/env/.env
//	analyses/<id>/versions/metadata.json
//	analyses/<id>/versions/v<N>.js
type Layout struct {
	Root string
}

func (l Layout) ConfigDir() string {
	return filepath.Join(l.Root, "config")
}

func (l Layout) ConfigFile() string {
	return filepath.Join(l.ConfigDir(), "analyses-config.json")
}

func (l Layout) AnalysesDir() string {
	return filepath.Join(l.Root, "analyses")
}

func (l Layout) AnalysisDir(analysisID string) string {
	return filepath.Join(l.AnalysesDir(), analysisID)
}

func (l Layout) LiveFile(analysisID string) string {
	return filepath.Join(l.AnalysisDir(analysisID), "index.js")
}

func (l Layout) LogsDir(analysisID string) string {
	return filepath.Join(l.AnalysisDir(analysisID), "logs")
}

func (l Layout) EnvDir(analysisID string) string {
	return filepath.Join(l.AnalysisDir(analysisID), "env")
}

func (l Layout) EnvFile(analysisID string) string {
	return filepath.Join(l.EnvDir(analysisID), ".env")
}

func (l Layout) VersionsDir(analysisID string) string {
	return filepath.Join(l.AnalysisDir(analysisID), "versions")
}

func (l Layout) MetadataFile(analysisID string) string {
	return filepath.Join(l.VersionsDir(analysisID), "metadata.json")
}

func (l Layout) SnapshotFile(analysisID string, version int) string {
	return filepath.Join(l.VersionsDir(analysisID), fmt.Sprintf("v%d.js", version))
}
