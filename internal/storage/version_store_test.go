package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/scstanton20/tago-analysis-worker-sub009/pkg/errors"
)

func newTestVersionStore(t *testing.T) (*VersionStore, string) {
	t.Helper()
	root := t.TempDir()
	return NewVersionStore(root), root
}

func TestSaveAllocatesSequentialVersions(t *testing.T) {
	store, root := newTestVersionStore(t)

	v1, err := store.Save("a1", "console.log('one')")
	require.NoError(t, err)
	require.Equal(t, 1, v1.Version)
	require.Equal(t, len("console.log('one')"), v1.Size)

	v2, err := store.Save("a1", "console.log('two')")
	require.NoError(t, err)
	require.Equal(t, 2, v2.Version)

	require.FileExists(t, filepath.Join(root, "analyses", "a1", "versions", "v1.js"))
	require.FileExists(t, filepath.Join(root, "analyses", "a1", "versions", "v2.js"))

	live, err := os.ReadFile(filepath.Join(root, "analyses", "a1", "index.js"))
	require.NoError(t, err)
	require.Equal(t, "console.log('two')", string(live))

	meta, err := store.Metadata("a1")
	require.NoError(t, err)
	require.Equal(t, 2, meta.CurrentVersion)
	require.Equal(t, 3, meta.NextVersionNumber)
}

func TestSaveDedupIsIdempotent(t *testing.T) {
	store, _ := newTestVersionStore(t)

	first, err := store.Save("a1", "same content")
	require.NoError(t, err)

	second, err := store.Save("a1", "same content")
	require.NoError(t, err)
	require.Equal(t, first, second)

	meta, err := store.Metadata("a1")
	require.NoError(t, err)
	require.Len(t, meta.Versions, 1)
	require.Equal(t, 2, meta.NextVersionNumber)
}

func TestListOrdersAscending(t *testing.T) {
	store, _ := newTestVersionStore(t)

	for _, content := range []string{"a", "bb", "ccc"} {
		_, err := store.Save("a1", content)
		require.NoError(t, err)
	}

	versions, err := store.List("a1")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, desc := range versions {
		require.Equal(t, i+1, desc.Version)
		require.Equal(t, i+1, desc.Size)
	}
}

func TestContentLiveAndSnapshot(t *testing.T) {
	store, _ := newTestVersionStore(t)

	_, err := store.Save("a1", "v1 body")
	require.NoError(t, err)
	_, err = store.Save("a1", "v2 body")
	require.NoError(t, err)

	live, err := store.Content("a1", 0)
	require.NoError(t, err)
	require.Equal(t, "v2 body", live)

	old, err := store.Content("a1", 1)
	require.NoError(t, err)
	require.Equal(t, "v1 body", old)

	_, err = store.Content("a1", 9)
	require.True(t, apperrors.IsCode(err, apperrors.CodeVersionNotFound))
}

func TestRollbackRoundTrip(t *testing.T) {
	store, root := newTestVersionStore(t)

	_, err := store.Save("a1", "A")
	require.NoError(t, err)
	_, err = store.Save("a1", "B")
	require.NoError(t, err)

	// Seed a log file; rollback must clear it.
	logs := NewLogStore(root)
	require.NoError(t, logs.Append("a1", "run output"))

	target, err := store.Rollback("a1", 1)
	require.NoError(t, err)
	require.Equal(t, 1, target.Version)

	live, err := store.Content("a1", 0)
	require.NoError(t, err)
	require.Equal(t, "A", live)

	meta, err := store.Metadata("a1")
	require.NoError(t, err)
	require.Equal(t, 1, meta.CurrentVersion)
	require.Equal(t, 4, meta.NextVersionNumber)
	require.Len(t, meta.Versions, 3)

	// The pre-rollback live content is preserved as the new forward version.
	preserved, err := store.Content("a1", 3)
	require.NoError(t, err)
	require.Equal(t, "B", preserved)

	names, err := logs.List("a1")
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestRollbackToCurrentContentSkipsSnapshot(t *testing.T) {
	store, _ := newTestVersionStore(t)

	_, err := store.Save("a1", "A")
	require.NoError(t, err)
	_, err = store.Save("a1", "B")
	require.NoError(t, err)

	// Roll back to v2 while live content still equals v2: no forward version.
	_, err = store.Rollback("a1", 2)
	require.NoError(t, err)

	meta, err := store.Metadata("a1")
	require.NoError(t, err)
	require.Len(t, meta.Versions, 2)
	require.Equal(t, 2, meta.CurrentVersion)
	require.Equal(t, 3, meta.NextVersionNumber)
}

func TestRollbackUnknownVersionFails(t *testing.T) {
	store, _ := newTestVersionStore(t)

	_, err := store.Save("a1", "A")
	require.NoError(t, err)

	_, err = store.Rollback("a1", 7)
	require.True(t, apperrors.IsCode(err, apperrors.CodeVersionNotFound))
}

func TestVersionNumbersNeverReused(t *testing.T) {
	store, _ := newTestVersionStore(t)

	_, err := store.Save("a1", "A")
	require.NoError(t, err)
	_, err = store.Save("a1", "B")
	require.NoError(t, err)

	_, err = store.Rollback("a1", 1) // appends v3 = "B"
	require.NoError(t, err)

	v4, err := store.Save("a1", "C")
	require.NoError(t, err)
	require.Equal(t, 4, v4.Version)

	seen := map[int]bool{}
	versions, err := store.List("a1")
	require.NoError(t, err)
	prev := 0
	for _, desc := range versions {
		require.False(t, seen[desc.Version])
		require.Greater(t, desc.Version, prev)
		seen[desc.Version] = true
		prev = desc.Version
	}
}

func TestConcurrentAnalysesAreIndependent(t *testing.T) {
	store, _ := newTestVersionStore(t)

	_, err := store.Save("a1", "one")
	require.NoError(t, err)
	_, err = store.Save("a2", "two")
	require.NoError(t, err)

	m1, err := store.Metadata("a1")
	require.NoError(t, err)
	m2, err := store.Metadata("a2")
	require.NoError(t, err)
	require.Equal(t, 1, m1.CurrentVersion)
	require.Equal(t, 1, m2.CurrentVersion)
}

func TestSaveTimestampsUseInjectedClock(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	store, _ := newTestVersionStore(t)
	store.WithNow(func() time.Time { return fixed })

	desc, err := store.Save("a1", "clocked")
	require.NoError(t, err)
	require.Equal(t, fixed, desc.Timestamp)
}
