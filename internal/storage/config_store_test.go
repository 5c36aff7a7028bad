package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/models"
	apperrors "github.com/scstanton20/tago-analysis-worker-sub009/pkg/errors"
)

func TestGetConfigBeforeInitializeFails(t *testing.T) {
	store := NewConfigStore(t.TempDir())

	_, err := store.GetConfig()
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestInitializeWritesEmptyDocument(t *testing.T) {
	root := t.TempDir()
	store := NewConfigStore(root)

	require.NoError(t, store.Initialize())
	require.FileExists(t, filepath.Join(root, "config", "analyses-config.json"))
	require.DirExists(t, filepath.Join(root, "analyses"))

	doc, err := store.GetConfig()
	require.NoError(t, err)
	require.Equal(t, models.ConfigDocumentVersion, doc.Version)
	require.Empty(t, doc.Analyses)
	require.Empty(t, doc.TeamStructure)

	// Second initialize must not wipe existing state.
	_, err = store.UpdateConfig(func(doc *models.ConfigDocument) error {
		doc.Analyses["a1"] = &models.AnalysisRecord{ID: "a1", Name: "first", CreatedAt: time.Now()}
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, store.Initialize())
	doc, err = store.GetConfig()
	require.NoError(t, err)
	require.Len(t, doc.Analyses, 1)
}

func TestUpdateConfigIsReadModifyWrite(t *testing.T) {
	store := NewConfigStore(t.TempDir())
	require.NoError(t, store.Initialize())

	_, err := store.UpdateConfig(func(doc *models.ConfigDocument) error {
		doc.Analyses["a1"] = &models.AnalysisRecord{ID: "a1", TeamID: "t1"}
		return nil
	})
	require.NoError(t, err)

	_, err = store.UpdateConfig(func(doc *models.ConfigDocument) error {
		require.Contains(t, doc.Analyses, "a1") // previous write must be visible
		doc.Analyses["a2"] = &models.AnalysisRecord{ID: "a2", TeamID: "t1"}
		return nil
	})
	require.NoError(t, err)

	doc, err := store.GetConfig()
	require.NoError(t, err)
	require.Len(t, doc.Analyses, 2)
}

func TestUpdateConfigMutatorErrorLeavesDocumentUntouched(t *testing.T) {
	store := NewConfigStore(t.TempDir())
	require.NoError(t, store.Initialize())

	boom := errors.New("mutation rejected")
	_, err := store.UpdateConfig(func(doc *models.ConfigDocument) error {
		doc.Analyses["ghost"] = &models.AnalysisRecord{ID: "ghost"}
		return boom
	})
	require.ErrorIs(t, err, boom)

	doc, err := store.GetConfig()
	require.NoError(t, err)
	require.NotContains(t, doc.Analyses, "ghost")
}

func TestConfigSurvivesTreeStructureRoundTrip(t *testing.T) {
	store := NewConfigStore(t.TempDir())
	require.NoError(t, store.Initialize())

	folder := models.NewFolder("reports")
	folder.Items = append(folder.Items, models.NewAnalysisRef("a1"))

	_, err := store.UpdateConfig(func(doc *models.ConfigDocument) error {
		structure := doc.EnsureStructure("team-1")
		structure.Items = append(structure.Items, folder, models.NewAnalysisRef("a2"))
		return nil
	})
	require.NoError(t, err)

	doc, err := store.GetConfig()
	require.NoError(t, err)

	structure := doc.TeamStructure["team-1"]
	require.NotNil(t, structure)
	require.Len(t, structure.Items, 2)
	require.True(t, structure.Items[0].IsFolder())
	require.Len(t, structure.Items[0].Items, 1)
	require.Equal(t, models.ItemTypeAnalysis, structure.Items[1].Type)
}

func TestWriteIsAtomicNoTempLeftovers(t *testing.T) {
	root := t.TempDir()
	store := NewConfigStore(root)
	require.NoError(t, store.Initialize())

	for i := 0; i < 5; i++ {
		_, err := store.UpdateConfig(func(doc *models.ConfigDocument) error { return nil })
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Join(root, "config"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "analyses-config.json", entries[0].Name())
}
