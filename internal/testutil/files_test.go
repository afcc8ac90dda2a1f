package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteFiles_CreatesNestedLayout(t *testing.T) {
	t.Parallel()

	// --- Act ---
	root := WriteFiles(t, map[string]string{
		"a.hcl":          "a",
		"nested/b.yaml":  "b",
		"nested/x/c.yml": "c",
	})

	// --- Assert ---
	data, err := os.ReadFile(filepath.Join(root, "nested", "x", "c.yml"))
	require.NoError(t, err)
	require.Equal(t, "c", string(data))
	require.FileExists(t, filepath.Join(root, "a.hcl"))
}

func TestReadLines(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := WriteFiles(t, map[string]string{
		"list.txt":  "one\ntwo\n",
		"empty.txt": "",
	})

	// --- Act & Assert ---
	require.Equal(t, []string{"one", "two"}, ReadLines(t, filepath.Join(root, "list.txt")))
	require.Empty(t, ReadLines(t, filepath.Join(root, "empty.txt")))
}
