package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")

	store, err := Open(path)
	require.NoError(t, err)
	_, ok := store.Load("Mode")
	require.False(t, ok, "expected no prior state for Mode")

	store.Save("Mode", 2)

	reopened, err := Open(path)
	require.NoError(t, err)
	v, ok := reopened.Load("Mode")
	require.True(t, ok)
	require.Equal(t, int32(2), v)
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	_, ok := store.Load("Mode")
	require.False(t, ok, "expected empty store")
}

func TestWithErrorHandlerReceivesWriteFailures(t *testing.T) {
	var reported error
	store, err := Open(filepath.Join(t.TempDir(), "nested", "does-not-exist", "state.yaml"),
		WithErrorHandler(func(e error) { reported = e }))
	require.NoError(t, err)

	store.Save("Mode", 1)
	require.Error(t, reported, "expected a write error to be reported for an unwritable path")
}
