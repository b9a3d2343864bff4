package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestHashFile(t *testing.T) {
	t.Run("deterministic for identical content", func(t *testing.T) {
		content := []byte("annual report fiscal year 2024")
		pathA := writeTempFile(t, "a.pdf", content)
		pathB := writeTempFile(t, "b.pdf", content)

		hashA, err := HashFile(pathA)
		require.NoError(t, err)
		hashB, err := HashFile(pathB)
		require.NoError(t, err)

		assert.Equal(t, hashA, hashB)
		assert.Len(t, hashA, 32) // hex-encoded MD5
	})

	t.Run("single flipped byte changes hash", func(t *testing.T) {
		content := make([]byte, 200*1024) // spans multiple read blocks
		for i := range content {
			content[i] = byte(i % 251)
		}
		pathA := writeTempFile(t, "a.pdf", content)

		content[150*1024] ^= 0x01
		pathB := writeTempFile(t, "b.pdf", content)

		hashA, err := HashFile(pathA)
		require.NoError(t, err)
		hashB, err := HashFile(pathB)
		require.NoError(t, err)

		assert.NotEqual(t, hashA, hashB)
	})

	t.Run("missing file returns error", func(t *testing.T) {
		_, err := HashFile(filepath.Join(t.TempDir(), "missing.pdf"))
		assert.Error(t, err)
	})
}
