package experiment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/exptgrid/internal/config"
	"github.com/specialistvlad/exptgrid/internal/grid"
	"github.com/zclconf/go-cty/cty"
)

// Plan is a compiled, immutable experiment: its grid, its invocation
// template and the destination of its experiment list.
type Plan struct {
	Name     string
	Source   string
	Output   string
	Grid     grid.Grid
	Template grid.Template
	Estimate *Estimate

	runName hcl.Expression
	derived []*config.Flag
	evalCtx *hcl.EvalContext
}

// Size is the number of invocations the plan renders.
func (p *Plan) Size() int {
	return p.Grid.Size()
}

// Invocations renders one invocation string per grid combination, in
// enumeration order.
func (p *Plan) Invocations() ([]string, error) {
	combos := p.Grid.Expand()
	lines := make([]string, len(combos))
	for i, c := range combos {
		extra, err := p.derivedFlags(c)
		if err != nil {
			return nil, err
		}
		lines[i] = p.Template.Render(c, extra...)
	}
	return lines, nil
}

func (p *Plan) derivedFlags(c grid.Combination) ([]grid.Flag, error) {
	if len(p.derived) == 0 && p.runName == nil {
		return nil, nil
	}

	scope, err := p.runScope(c)
	if err != nil {
		return nil, err
	}

	flags := make([]grid.Flag, 0, len(p.derived))
	for _, f := range p.derived {
		value, err := evalFlagValue(scope, f.Value)
		if err != nil {
			return nil, &ConfigError{
				Experiment: p.Name,
				Field:      "derived_flag." + f.Name,
				Err:        fmt.Errorf("combination %d: %w", c.Index, err),
			}
		}
		flags = append(flags, grid.Flag{Name: f.Name, Value: value})
	}
	return flags, nil
}

// runScope exposes a combination to expressions as axis.<name> and
// run.{index,repeat,name}.
func (p *Plan) runScope(c grid.Combination) (*hcl.EvalContext, error) {
	axis := make(map[string]cty.Value, len(c.Assignments))
	for _, a := range c.Assignments {
		axis[a.Axis] = cty.StringVal(grid.FormatValue(a.Value))
	}
	run := map[string]cty.Value{
		"index":  cty.NumberIntVal(int64(c.Index)),
		"repeat": cty.NumberIntVal(int64(c.Repeat)),
	}

	scope := p.evalCtx.NewChild()
	scope.Variables = map[string]cty.Value{
		"axis": cty.ObjectVal(axis),
		"run":  cty.ObjectVal(run),
	}

	name := p.defaultRunName(c)
	if p.runName != nil {
		val, err := evaluate(scope, p.runName)
		if err == nil && !val.IsNull() {
			name, err = evalString(scope, p.runName)
		}
		if err != nil {
			return nil, &ConfigError{
				Experiment: p.Name,
				Field:      "run_name",
				Err:        fmt.Errorf("combination %d: %w", c.Index, err),
			}
		}
	}
	run["name"] = cty.StringVal(name)
	scope.Variables["run"] = cty.ObjectVal(run)
	return scope, nil
}

// defaultRunName joins the experiment name and the combination's values,
// e.g. "task1__1e-06_1e-05_100_2".
func (p *Plan) defaultRunName(c grid.Combination) string {
	parts := make([]string, 0, len(c.Assignments)+1)
	for _, a := range c.Assignments {
		parts = append(parts, grid.FormatValue(a.Value))
	}
	if p.Grid.Repeats > 0 {
		parts = append(parts, strconv.Itoa(c.Repeat))
	}
	if len(parts) == 0 {
		return p.Name
	}
	return p.Name + "__" + strings.Join(parts, "_")
}
