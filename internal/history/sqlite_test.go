package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/slscljs/internal/foundation/errors"
)

func TestSQLiteStore_AppendAndRecent(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	started := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, store.Append(ctx, Entry{
		InvocationID:   "first",
		Event:          "after:deploy:createDeploymentArtifacts",
		Service:        "svc",
		Artifact:       "/svc/.serverless/svc.zip",
		Revision:       "4b825dc642cb6eb9a060e54bf8d69288fbee4904",
		Status:         StatusSuccess,
		FunctionsBuilt: 2,
		StartedAt:      started,
		Duration:       1500 * time.Millisecond,
	}))
	require.NoError(t, store.Append(ctx, Entry{
		InvocationID: "second",
		Event:        "after:deploy:function:packageFunction",
		Service:      "svc",
		Function:     "foo",
		Artifact:     "/svc/.serverless/foo.zip",
		Status:       StatusFailed,
		Error:        "lein execution failed",
	}))

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "second", entries[0].InvocationID)
	assert.Equal(t, "foo", entries[0].Function)
	assert.Equal(t, StatusFailed, entries[0].Status)
	assert.Equal(t, "lein execution failed", entries[0].Error)
	assert.False(t, entries[0].StartedAt.IsZero())

	first := entries[1]
	assert.Equal(t, 2, first.FunctionsBuilt)
	assert.Equal(t, 1500*time.Millisecond, first.Duration)
	assert.True(t, started.Equal(first.StartedAt))
	assert.Equal(t, "/svc/.serverless/svc.zip", first.Artifact)
	assert.Equal(t, "4b825dc642cb6eb9a060e54bf8d69288fbee4904", first.Revision)
	assert.Empty(t, entries[0].Revision)
}

func TestSQLiteStore_RecentLimit(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	for range 5 {
		require.NoError(t, store.Append(t.Context(), Entry{Event: "e", Service: "s", Artifact: "a", Status: StatusSuccess}))
	}
	entries, err := store.Recent(t.Context(), 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Greater(t, entries[0].ID, entries[2].ID)
}

func TestSQLiteStore_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(t.Context(), Entry{InvocationID: "x", Event: "e", Service: "s", Artifact: "a", Status: StatusSuccess}))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	entries, err := reopened.Recent(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x", entries[0].InvocationID)
}

func TestOpenSQLite_DirectoryIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := OpenSQLite(filepath.Join(blocker, "history.db"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryHistory))
	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.SeverityWarning, classified.Severity())
}

func TestNoopStore(t *testing.T) {
	var s Store = NoopStore{}
	require.NoError(t, s.Append(t.Context(), Entry{}))
	entries, err := s.Recent(t.Context(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
	require.NoError(t, s.Close())
}
