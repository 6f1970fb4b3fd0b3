package os

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	created, err := EnsureDir(dir, true)
	require.NoError(t, err)
	require.True(t, created)

	created, err = EnsureDir(dir, true)
	require.NoError(t, err)
	require.False(t, created)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), nil, 0o644))

	_, err = EnsureDir(dir, true)
	require.Error(t, err)

	_, err = EnsureDir(dir, false)
	require.NoError(t, err)

	_, err = EnsureDir(filepath.Join(dir, "f"), false)
	require.Error(t, err)
}
