package experiment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/exptgrid/internal/config"
	"github.com/specialistvlad/exptgrid/internal/grid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

func functions() map[string]function.Function {
	return map[string]function.Function{
		"abs":       stdlib.AbsoluteFunc,
		"concat":    stdlib.ConcatFunc,
		"format":    stdlib.FormatFunc,
		"join":      stdlib.JoinFunc,
		"lower":     stdlib.LowerFunc,
		"max":       stdlib.MaxFunc,
		"min":       stdlib.MinFunc,
		"pow":       stdlib.PowFunc,
		"range":     stdlib.RangeFunc,
		"replace":   stdlib.ReplaceFunc,
		"trimspace": stdlib.TrimSpaceFunc,
		"upper":     stdlib.UpperFunc,
	}
}

// globalScope builds the root evaluation context from the injected vars and
// evaluates the locals.
func globalScope(model *config.Model, vars config.Vars) (*hcl.EvalContext, error) {
	userVars := make(map[string]cty.Value, len(vars.Values))
	for k, v := range vars.Values {
		userVars[k] = cty.StringVal(v)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"user":         cty.StringVal(vars.User),
			"scratch_disk": cty.StringVal(vars.ScratchDisk),
			"scratch_home": cty.StringVal(vars.ScratchHome()),
			"var":          cty.ObjectVal(userVars),
			"local":        cty.EmptyObjectVal,
		},
		Functions: functions(),
	}

	declared := make(map[string]bool, len(model.Locals))
	for _, l := range model.Locals {
		if declared[l.Name] {
			return nil, &ConfigError{Field: "local." + l.Name, Err: errors.New("declared more than once")}
		}
		declared[l.Name] = true
	}

	// Locals may come from several files, so they are evaluated in
	// dependency order rather than declaration order.
	locals := make(map[string]cty.Value, len(model.Locals))
	pending := model.Locals
	for len(pending) > 0 {
		var blocked []*config.Local
		for _, l := range pending {
			if !localReady(l, declared, locals) {
				blocked = append(blocked, l)
				continue
			}
			val, diags := l.Expr.Value(evalCtx)
			if diags.HasErrors() {
				return nil, &ConfigError{Field: "local." + l.Name, Err: diags}
			}
			locals[l.Name] = val
			evalCtx.Variables["local"] = cty.ObjectVal(locals)
		}
		if len(blocked) == len(pending) {
			names := make([]string, len(blocked))
			for i, l := range blocked {
				names[i] = l.Name
			}
			return nil, &ConfigError{
				Field: "local." + blocked[0].Name,
				Err:   fmt.Errorf("cyclic reference among locals %s", strings.Join(names, ", ")),
			}
		}
		pending = blocked
	}
	return evalCtx, nil
}

// localReady reports whether every declared local that l refers to has
// already been evaluated. References to undeclared locals do not block;
// evaluation reports them.
func localReady(l *config.Local, declared map[string]bool, evaluated map[string]cty.Value) bool {
	for _, traversal := range l.Expr.Variables() {
		if traversal.RootName() != "local" || len(traversal) < 2 {
			continue
		}
		attr, ok := traversal[1].(hcl.TraverseAttr)
		if !ok || !declared[attr.Name] {
			continue
		}
		if _, done := evaluated[attr.Name]; !done {
			return false
		}
	}
	return true
}

func experimentScope(parent *hcl.EvalContext, name string) *hcl.EvalContext {
	child := parent.NewChild()
	child.Variables = map[string]cty.Value{
		"experiment": cty.ObjectVal(map[string]cty.Value{
			"name": cty.StringVal(name),
		}),
	}
	return child
}

func evaluate(evalCtx *hcl.EvalContext, expr hcl.Expression) (cty.Value, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if !val.IsWhollyKnown() {
		return cty.NilVal, errors.New("value is not known")
	}
	return val, nil
}

// evalString evaluates expr and converts the result to a string.
func evalString(evalCtx *hcl.EvalContext, expr hcl.Expression) (string, error) {
	val, err := evaluate(evalCtx, expr)
	if err != nil {
		return "", err
	}
	if val.IsNull() {
		return "", errors.New("must not be null")
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("must be a string: %w", err)
	}
	return str.AsString(), nil
}

// evalFlagValue renders a flag value. A missing or null value yields the
// empty string, which renders as a bare switch.
func evalFlagValue(evalCtx *hcl.EvalContext, expr hcl.Expression) (string, error) {
	if expr == nil {
		return "", nil
	}
	val, err := evaluate(evalCtx, expr)
	if err != nil {
		return "", err
	}
	if val.IsNull() {
		return "", nil
	}
	if !val.Type().IsPrimitiveType() {
		return "", fmt.Errorf("must be a string, number or bool, got %s", val.Type().FriendlyName())
	}
	return grid.FormatValue(val), nil
}

// evalValues evaluates an axis definition into its ordered values. Only
// lists and tuples are enumerable; sets have no declared order.
func evalValues(evalCtx *hcl.EvalContext, expr hcl.Expression) ([]cty.Value, error) {
	val, err := evaluate(evalCtx, expr)
	if err != nil {
		return nil, err
	}
	if val.IsNull() {
		return nil, errors.New("must not be null")
	}
	ty := val.Type()
	if !ty.IsListType() && !ty.IsTupleType() {
		return nil, fmt.Errorf("must be an ordered list of values, got %s", ty.FriendlyName())
	}
	return val.AsValueSlice(), nil
}

// evalWhole evaluates expr into a whole number. ok is false when the value is
// null.
func evalWhole(evalCtx *hcl.EvalContext, expr hcl.Expression) (n int, ok bool, err error) {
	val, err := evaluate(evalCtx, expr)
	if err != nil || val.IsNull() {
		return 0, false, err
	}
	if val.Type() != cty.Number {
		return 0, false, fmt.Errorf("must be a number, got %s", val.Type().FriendlyName())
	}
	if err := gocty.FromCtyValue(val, &n); err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func evalNumber(evalCtx *hcl.EvalContext, expr hcl.Expression) (float64, error) {
	val, err := evaluate(evalCtx, expr)
	if err != nil {
		return 0, err
	}
	if val.IsNull() {
		return 0, errors.New("must not be null")
	}
	var f float64
	if err := gocty.FromCtyValue(val, &f); err != nil {
		return 0, err
	}
	return f, nil
}
