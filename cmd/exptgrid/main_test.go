package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_WritesExperimentList(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tempDir := t.TempDir()
	config := `
experiment "simple" {
  base_call = "python3 train.py -i ${scratch_home}/simple/data/input"
  output    = "${var.out_dir}/experiment.txt"

  axis "lr" {
    values = [1e-6, 1e-5]
  }
  axis "weight_decay" {
    values = [1e-6, 1]
  }
}
`
	filePath := filepath.Join(tempDir, "simple.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(config), 0o600), "failed to set up test file")

	args := []string{"-user", "alice", "-var", "out_dir=" + tempDir, filePath}
	out, logs := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(out, logs, args)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "Total experiments = 4\n", out.String())

	data, err := os.ReadFile(filepath.Join(tempDir, "experiment.txt"))
	require.NoError(t, err)
	require.Equal(t, strings.Join([]string{
		"python3 train.py -i /disk/scratch/alice/simple/data/input --lr 1e-06 --weight_decay 1e-06",
		"python3 train.py -i /disk/scratch/alice/simple/data/input --lr 1e-06 --weight_decay 1",
		"python3 train.py -i /disk/scratch/alice/simple/data/input --lr 1e-05 --weight_decay 1e-06",
		"python3 train.py -i /disk/scratch/alice/simple/data/input --lr 1e-05 --weight_decay 1",
	}, "\n")+"\n", string(data))
	require.Contains(t, logs.String(), "Experiment list written.")
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A syntax error (a missing closing brace) must surface as a load error.
	invalidHCL := `
		experiment "broken" {
			axis "lr" {
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600), "failed to set up test file")

	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, &bytes.Buffer{}, []string{filePath})

	// --- Assert ---
	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "failed to parse")
	require.Empty(t, out.String())
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should see `shouldExit=true` and return a nil error.
	err := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should propagate the error from cli.Parse.
	err := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
