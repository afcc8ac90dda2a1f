package fsutil

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// StagedFile is a fully written temporary file waiting to be renamed over
// its destination. Exactly one of Commit or Discard should be called.
type StagedFile struct {
	path    string
	tmpPath string
}

// Path is the destination the file is committed to.
func (s *StagedFile) Path() string {
	return s.path
}

// Commit renames the staged file over its destination.
func (s *StagedFile) Commit() error {
	if err := os.Rename(s.tmpPath, s.path); err != nil {
		os.Remove(s.tmpPath)
		return fmt.Errorf("failed to rename temp file to %s: %w", s.path, err)
	}
	return nil
}

// Discard removes the staged file and leaves the destination untouched.
func (s *StagedFile) Discard() {
	os.Remove(s.tmpPath)
}

// StageLines writes lines, each terminated by a newline, to a synced
// temporary file next to path. Nothing at path changes until Commit. The
// directory must already exist.
func StageLines(path string, lines []string) (staged *StagedFile, err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err = w.WriteString(line); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", tmpPath, err)
		}
		if err = w.WriteByte('\n'); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", tmpPath, err)
		}
	}
	if err = w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush %s: %w", tmpPath, err)
	}
	if err = tmp.Sync(); err != nil {
		return nil, fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	// CreateTemp uses 0600.
	if err = tmp.Chmod(0o644); err != nil {
		return nil, fmt.Errorf("failed to chmod %s: %w", tmpPath, err)
	}
	if err = tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	return &StagedFile{path: path, tmpPath: tmpPath}, nil
}

// WriteLines replaces the file at path with lines, each terminated by a
// newline. The content is staged next to path and renamed over it, so
// readers never observe a partial list. The directory must already exist.
func WriteLines(path string, lines []string) error {
	staged, err := StageLines(path, lines)
	if err != nil {
		return err
	}
	return staged.Commit()
}
