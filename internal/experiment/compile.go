package experiment

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/exptgrid/internal/config"
	"github.com/specialistvlad/exptgrid/internal/ctxlog"
	"github.com/specialistvlad/exptgrid/internal/grid"
)

// MaxCombinations caps the size of a single grid. Realistic grids are in the
// tens to low thousands; anything near this limit is almost certainly a
// mistake in the axis definitions.
const MaxCombinations = 1 << 24

// Compile validates every experiment in model and evaluates its static
// parts. It returns one plan per experiment, in declaration order, or the
// first *ConfigError encountered.
func Compile(ctx context.Context, model *config.Model, vars config.Vars) ([]*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Compiling experiments.", "locals", len(model.Locals), "experiments", len(model.Experiments))

	global, err := globalScope(model, vars)
	if err != nil {
		return nil, err
	}

	plans := make([]*Plan, 0, len(model.Experiments))
	seen := make(map[string]string, len(model.Experiments))
	outputs := make(map[string]string, len(model.Experiments))
	for _, e := range model.Experiments {
		if e.Name == "" {
			return nil, &ConfigError{Field: "experiment " + e.Source, Err: errors.New("experiment name must not be empty")}
		}
		if prev, dup := seen[e.Name]; dup {
			return nil, &ConfigError{Experiment: e.Name, Field: "name", Err: fmt.Errorf("already declared in %s", prev)}
		}
		seen[e.Name] = e.Source

		p, err := compileExperiment(ctxlog.With(ctx, "experiment", e.Name), global, e)
		if err != nil {
			return nil, err
		}

		key := filepath.Clean(p.Output)
		if prev, dup := outputs[key]; dup {
			return nil, &ConfigError{Experiment: e.Name, Field: "output", Err: fmt.Errorf("%s is already the output of experiment %q", p.Output, prev)}
		}
		outputs[key] = e.Name

		plans = append(plans, p)
	}

	logger.Debug("Experiments compiled.", "count", len(plans))
	return plans, nil
}

func compileExperiment(ctx context.Context, global *hcl.EvalContext, e *config.Experiment) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	evalCtx := experimentScope(global, e.Name)
	fail := func(field string, err error) error {
		return &ConfigError{Experiment: e.Name, Field: field, Err: err}
	}

	baseCall, err := evalString(evalCtx, e.BaseCall)
	if err != nil {
		return nil, fail("base_call", err)
	}
	output, err := evalString(evalCtx, e.Output)
	if err != nil {
		return nil, fail("output", err)
	}
	if output == "" {
		return nil, fail("output", errors.New("must not be empty"))
	}

	repeats := 0
	if e.Repeats != nil {
		n, ok, err := evalWhole(evalCtx, e.Repeats)
		if err != nil {
			return nil, fail("repeats", err)
		}
		if ok && n < 1 {
			return nil, fail("repeats", fmt.Errorf("must be at least 1, got %d", n))
		}
		repeats = n
	}

	// Every rendered flag name must be unique, whichever kind declares it.
	declared := make(map[string]string)
	claim := func(kind, name string) error {
		if err := grid.ValidateName(name); err != nil {
			return fail(kind, err)
		}
		if prev, dup := declared[name]; dup {
			return fail(kind+"."+name, fmt.Errorf("flag is already declared as %s", prev))
		}
		declared[name] = kind
		return nil
	}

	static := make([]grid.Flag, 0, len(e.StaticFlags))
	for _, f := range e.StaticFlags {
		if err := claim("static_flag", f.Name); err != nil {
			return nil, err
		}
		value, err := evalFlagValue(evalCtx, f.Value)
		if err != nil {
			return nil, fail("static_flag."+f.Name, err)
		}
		static = append(static, grid.Flag{Name: f.Name, Value: value})
	}

	axes := make([]grid.Axis, 0, len(e.Axes))
	for _, a := range e.Axes {
		if err := claim("axis", a.Name); err != nil {
			return nil, err
		}
		values, err := evalValues(evalCtx, a.Values)
		if err != nil {
			return nil, fail("axis."+a.Name, err)
		}
		axis, err := grid.NewAxis(a.Name, values)
		if err != nil {
			return nil, fail("axis."+a.Name, err)
		}
		warnAxis(ctx, axis)
		axes = append(axes, axis)
	}

	for _, f := range e.DerivedFlags {
		if err := claim("derived_flag", f.Name); err != nil {
			return nil, err
		}
	}

	size, ok := boundedSize(axes, repeats)
	if !ok {
		return nil, fail("axis", fmt.Errorf("grid has more than %d combinations", MaxCombinations))
	}
	logger.Debug("Grid compiled.", "axes", len(axes), "repeats", repeats, "combinations", size)

	var estimate *Estimate
	if e.Estimate != nil {
		servers, _, err := evalWhole(evalCtx, e.Estimate.Servers)
		if err != nil {
			return nil, fail("estimate.servers", err)
		}
		if servers < 1 {
			return nil, fail("estimate.servers", fmt.Errorf("must be at least 1, got %d", servers))
		}
		avg, err := evalNumber(evalCtx, e.Estimate.AvgMinutes)
		if err != nil {
			return nil, fail("estimate.avg_minutes", err)
		}
		if avg < 0 {
			return nil, fail("estimate.avg_minutes", fmt.Errorf("must not be negative, got %s", grid.FormatFloat(avg)))
		}
		estimate = &Estimate{Servers: servers, AvgMinutes: avg}
	}

	return &Plan{
		Name:     e.Name,
		Source:   e.Source,
		Output:   output,
		Grid:     grid.Grid{Axes: axes, Repeats: repeats},
		Template: grid.Template{BaseCall: baseCall, Static: static},
		Estimate: estimate,
		runName:  e.RunName,
		derived:  e.DerivedFlags,
		evalCtx:  evalCtx,
	}, nil
}

// boundedSize computes the grid size, reporting false once it would exceed
// MaxCombinations.
func boundedSize(axes []grid.Axis, repeats int) (int, bool) {
	n := max(repeats, 1)
	for _, a := range axes {
		if len(a.Values) == 0 {
			return 0, true
		}
		if n > MaxCombinations/len(a.Values) {
			return 0, false
		}
		n *= len(a.Values)
	}
	return n, n <= MaxCombinations
}

func warnAxis(ctx context.Context, axis grid.Axis) {
	logger := ctxlog.FromContext(ctx)
	if len(axis.Values) == 0 {
		logger.Warn("Axis has no values, the experiment list will be empty.", "axis", axis.Name)
		return
	}
	seen := make(map[string]struct{}, len(axis.Values))
	for _, v := range axis.Values {
		s := grid.FormatValue(v)
		if _, dup := seen[s]; dup {
			logger.Warn("Axis contains a duplicate value, lines will repeat.", "axis", axis.Name, "value", s)
		}
		seen[s] = struct{}{}
	}
}
