package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/exptgrid/internal/config"
	"github.com/specialistvlad/exptgrid/internal/ctxlog"
	"github.com/specialistvlad/exptgrid/internal/fsutil"
)

// Extension is the file extension handled by this loader.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and merges their blocks into a
// single model. Files are processed in lexical order, and blocks keep their
// source order within a file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{}
	parser := hclparse.NewParser()

	for _, path := range paths {
		files, err := fsutil.FindFiles(path, Extension)
		if err != nil {
			return nil, fmt.Errorf("failed to find HCL files in %s: %w", path, err)
		}
		logger.Debug("Discovered HCL files.", "path", path, "count", len(files))

		for _, file := range files {
			fileModel, err := l.loadFile(ctx, parser, file)
			if err != nil {
				return nil, err
			}
			model.Merge(fileModel)
		}
	}

	logger.Debug("HCL loading complete.", "locals", len(model.Locals), "experiments", len(model.Experiments))
	return model, nil
}

func (l *Loader) loadFile(ctx context.Context, parser *hclparse.Parser, file string) (*config.Model, error) {
	hclFile, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
	}

	model := &config.Model{}
	for _, block := range root.Locals {
		locals, err := translateLocals(block, file)
		if err != nil {
			return nil, err
		}
		model.Locals = append(model.Locals, locals...)
	}
	for _, block := range root.Experiments {
		e, err := translateExperiment(ctx, block, file)
		if err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
		model.Experiments = append(model.Experiments, e)
	}
	return model, nil
}
