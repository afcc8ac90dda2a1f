// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFiles creates a temporary directory holding files, keyed by their
// slash-separated path relative to the directory, and returns its path.
// Intermediate directories are created as needed.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return root
}

// ReadLines reads a newline-terminated experiment list back into lines.
func ReadLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	if len(data) == 0 {
		return []string{}
	}
	require.True(t, strings.HasSuffix(string(data), "\n"), "every line must be newline terminated")
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}
