package maintenance

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/models"
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/storage"
)

func TestCleanerRunOnce(t *testing.T) {
	root := t.TempDir()
	store := storage.NewConfigStore(root)
	require.NoError(t, store.Initialize())
	logs := storage.NewLogStore(root)

	_, err := store.UpdateConfig(func(doc *models.ConfigDocument) error {
		doc.Analyses["a1"] = &models.AnalysisRecord{ID: "a1", Name: "a1", TeamID: models.UncategorizedTeamID}
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, logs.Append("a1", "fresh entry"))

	// Plant a stale log file well past the retention window.
	logsDir := filepath.Dir(mustLogPath(t, root, logs))
	stale := filepath.Join(logsDir, "2020-01-01.log")
	require.NoError(t, os.WriteFile(stale, []byte("old\n"), 0o644))
	old := time.Now().AddDate(0, 0, -90)
	require.NoError(t, os.Chtimes(stale, old, old))

	cleaner := NewCleaner(store, logs, WithRetentionDays(30))
	removed, err := cleaner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	names, err := logs.List("a1")
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.NotEqual(t, "2020-01-01.log", names[0])
}

func mustLogPath(t *testing.T, root string, logs *storage.LogStore) string {
	t.Helper()
	names, err := logs.List("a1")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	return filepath.Join(root, "analyses", "a1", "logs", names[0])
}

func TestCleanerStartStop(t *testing.T) {
	root := t.TempDir()
	store := storage.NewConfigStore(root)
	require.NoError(t, store.Initialize())

	cleaner := NewCleaner(store, storage.NewLogStore(root), WithSchedule("@every 1h"))
	require.NoError(t, cleaner.Start())
	<-cleaner.Stop().Done()
}
