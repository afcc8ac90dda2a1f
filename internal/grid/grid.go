// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package grid

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/zclconf/go-cty/cty"
)

// Axis is a single named hyperparameter dimension.
type Axis struct {
	Name   string
	Values []cty.Value
}

// NewAxis validates a name and its candidate values and returns the Axis.
// Every value must render as a non-empty token. An empty value list is valid
// and produces an empty grid on expansion.
func NewAxis(name string, values []cty.Value) (Axis, error) {
	if err := ValidateName(name); err != nil {
		return Axis{}, err
	}
	for i, v := range values {
		if err := validateValue(v); err != nil {
			return Axis{}, fmt.Errorf("axis %q value #%d: %w", name, i, err)
		}
	}
	return Axis{Name: name, Values: values}, nil
}

// ValidateName checks that name can be rendered as a `--name` command-line
// flag.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("name must not be empty")
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("name %q must not start with '-'", name)
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return fmt.Errorf("name %q must not contain whitespace", name)
	}
	return nil
}

func validateValue(v cty.Value) error {
	switch {
	case v.IsNull():
		return errors.New("value must not be null")
	case !v.IsKnown():
		return errors.New("value is not known")
	case !v.Type().IsPrimitiveType():
		return fmt.Errorf("value must be a string, number or bool, got %s", v.Type().FriendlyName())
	case v.Type() == cty.String && v.AsString() == "":
		// It would render as a bare `--name` switch and swallow the next flag.
		return errors.New("value must not be an empty string")
	}
	return nil
}

// Grid is the full search space: an ordered list of axes and an optional
// repeat count. Repeats of zero means the grid has no repeat axis.
type Grid struct {
	Axes    []Axis
	Repeats int
}

// Size returns the number of combinations the grid expands to without
// materializing them.
func (g Grid) Size() int {
	n := max(g.Repeats, 1)
	for _, a := range g.Axes {
		n *= len(a.Values)
	}
	return n
}

// Expand materializes every combination of the grid. See Expand.
func (g Grid) Expand() []Combination {
	return Expand(g.Axes, g.Repeats)
}

// Assignment binds one axis to one of its values.
type Assignment struct {
	Axis  string
	Value cty.Value
}

// Combination is one point of the grid.
type Combination struct {
	// Index is the zero-based position in enumeration order.
	Index int
	// Assignments holds one value per axis, in axis declaration order.
	Assignments []Assignment
	// Repeat is the run index in [0, repeats). Always 0 for grids without
	// repeats.
	Repeat int
}

// Expand returns the Cartesian product of all axes, crossed with the repeat
// indices 0..repeats-1 when repeats is positive. The last axis varies fastest
// except for the repeat index, which varies fastest of all. If any axis is
// empty the result is empty.
func Expand(axes []Axis, repeats int) []Combination {
	reps := max(repeats, 1)
	total := Grid{Axes: axes, Repeats: reps}.Size()
	if total == 0 {
		return []Combination{}
	}

	combos := make([]Combination, total)
	for i := range combos {
		rest := i / reps
		assignments := make([]Assignment, len(axes))
		for dim := len(axes) - 1; dim >= 0; dim-- {
			vals := axes[dim].Values
			assignments[dim] = Assignment{Axis: axes[dim].Name, Value: vals[rest%len(vals)]}
			rest /= len(vals)
		}
		combos[i] = Combination{
			Index:       i,
			Assignments: assignments,
			Repeat:      i % reps,
		}
	}
	return combos
}
