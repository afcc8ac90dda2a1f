package yamlcfg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/exptgrid/internal/config"
	"github.com/specialistvlad/exptgrid/internal/ctxlog"
	"github.com/specialistvlad/exptgrid/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// Extensions are the file extensions handled by this loader.
var Extensions = []string{".yaml", ".yml"}

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every YAML file under paths and merges them into a single
// model, in lexical file order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	model := &config.Model{}
	for _, path := range paths {
		files, err := fsutil.FindFiles(path, Extensions...)
		if err != nil {
			return nil, fmt.Errorf("failed to find YAML files in %s: %w", path, err)
		}
		logger.Debug("Discovered YAML files.", "path", path, "count", len(files))

		for _, file := range files {
			fileModel, err := loadFile(file)
			if err != nil {
				return nil, err
			}
			model.Merge(fileModel)
		}
	}

	logger.Debug("YAML loading complete.", "locals", len(model.Locals), "experiments", len(model.Experiments))
	return model, nil
}

// loadFile decodes every `---` separated document in file, in order.
func loadFile(file string) (*config.Model, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file %s: %w", file, err)
	}

	model := &config.Model{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	for {
		var doc document
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return model, nil
			}
			return nil, fmt.Errorf("failed to decode YAML file %s: %w", file, err)
		}

		docModel, err := translateDocument(file, &doc)
		if err != nil {
			return nil, err
		}
		model.Merge(docModel)
	}
}

func translateDocument(file string, doc *document) (*config.Model, error) {
	model := &config.Model{}
	locals, err := translateLocals(file, &doc.Locals)
	if err != nil {
		return nil, err
	}
	model.Locals = locals

	for i := range doc.Experiments {
		e, err := translateExperiment(file, &doc.Experiments[i])
		if err != nil {
			return nil, err
		}
		model.Experiments = append(model.Experiments, e)
	}
	return model, nil
}

func translateLocals(file string, node *yaml.Node) ([]*config.Local, error) {
	if !isSet(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s:%d:%d: locals must be a mapping", file, node.Line, node.Column)
	}

	locals := make([]*config.Local, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		var (
			expr hcl.Expression
			err  error
		)
		if value.Kind == yaml.SequenceNode {
			expr, err = listExpression(file, value)
		} else {
			expr, err = expression(file, value)
		}
		if err != nil {
			return nil, fmt.Errorf("local %q: %w", key.Value, err)
		}
		locals = append(locals, &config.Local{Name: key.Value, Expr: expr, Source: file})
	}
	return locals, nil
}

func translateExperiment(file string, d *experimentDoc) (*config.Experiment, error) {
	e := &config.Experiment{Name: d.Name, Source: file}
	wrap := func(err error) error {
		return fmt.Errorf("experiment %q: %w", d.Name, err)
	}

	var err error
	if e.BaseCall, err = required(file, "base_call", &d.BaseCall); err != nil {
		return nil, wrap(err)
	}
	if e.Output, err = required(file, "output", &d.Output); err != nil {
		return nil, wrap(err)
	}
	if e.Repeats, err = optional(file, &d.Repeats); err != nil {
		return nil, wrap(err)
	}
	if e.RunName, err = optional(file, &d.RunName); err != nil {
		return nil, wrap(err)
	}

	for _, a := range d.Axes {
		if !isSet(&a.Values) {
			return nil, wrap(fmt.Errorf("axis %q: values is required", a.Name))
		}
		values, err := listExpression(file, &a.Values)
		if err != nil {
			return nil, wrap(fmt.Errorf("axis %q: %w", a.Name, err))
		}
		e.Axes = append(e.Axes, &config.Axis{Name: a.Name, Values: values})
	}

	if e.StaticFlags, err = translateFlags(file, d.StaticFlags); err != nil {
		return nil, wrap(err)
	}
	if e.DerivedFlags, err = translateFlags(file, d.DerivedFlags); err != nil {
		return nil, wrap(err)
	}

	if d.Estimate != nil {
		servers, err := required(file, "estimate.servers", &d.Estimate.Servers)
		if err != nil {
			return nil, wrap(err)
		}
		avg, err := required(file, "estimate.avg_minutes", &d.Estimate.AvgMinutes)
		if err != nil {
			return nil, wrap(err)
		}
		e.Estimate = &config.Estimate{Servers: servers, AvgMinutes: avg}
	}
	return e, nil
}

func translateFlags(file string, docs []flagDoc) ([]*config.Flag, error) {
	flags := make([]*config.Flag, 0, len(docs))
	for _, f := range docs {
		value, err := optional(file, &f.Value)
		if err != nil {
			return nil, fmt.Errorf("flag %q: %w", f.Name, err)
		}
		flags = append(flags, &config.Flag{Name: f.Name, Value: value})
	}
	return flags, nil
}

func required(file, key string, node *yaml.Node) (hcl.Expression, error) {
	if !isSet(node) {
		return nil, fmt.Errorf("%s is required", key)
	}
	return expression(file, node)
}

func optional(file string, node *yaml.Node) (hcl.Expression, error) {
	if !isSet(node) || node.ShortTag() == "!!null" {
		return nil, nil
	}
	return expression(file, node)
}
