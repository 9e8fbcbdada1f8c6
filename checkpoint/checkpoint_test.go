package checkpoint

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemStoreLoadIsOneShot(t *testing.T) {
	s := NewMemStore()

	_, ok, err := s.Load("node-a")
	require.NoError(t, err)
	require.False(t, ok, "a fresh store has no prior checkpoint")

	require.NoError(t, s.Store("node-a", "cp-1"))

	marker, ok, err := s.Load("node-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "cp-1", marker)

	// Second load sees nothing: the first load consumed the entry.
	_, ok, err = s.Load("node-a")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	require.NoError(t, s.Store("node-b", "cp-3"))

	marker, ok, err := s.Load("node-b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "cp-3", marker)

	// On-disk file is gone after the one-shot load.
	_, statErr := os.Stat(s.path("node-b"))
	require.Error(t, statErr)
}

func TestFileStoreMissingIsBenign(t *testing.T) {
	s := NewFileStore(t.TempDir())

	_, ok, err := s.Load("never-written")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileStoreTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	require.NoError(t, s.Store("node-c", "cp-7"))

	// Overwrite with trailing whitespace the way a hand-edited file might have.
	require.NoError(t, os.WriteFile(s.path("node-c"), []byte("cp-7\n\n"), 0o644))

	marker, ok, err := s.Load("node-c")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "cp-7", marker)
}
