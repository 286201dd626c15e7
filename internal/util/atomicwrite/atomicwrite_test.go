package atomicwrite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "key.pem")
	require.NoError(t, WriteFile(path, []byte("one"), 0o600, false))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one", string(b))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	err = WriteFile(path, []byte("two"), 0o600, false)
	require.ErrorIs(t, err, ErrExists)

	require.NoError(t, WriteFile(path, []byte("two"), 0o600, true))
	b, _ = os.ReadFile(path)
	assert.Equal(t, "two", string(b))

	// no quedan temporales
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
