package config

import (
	"path"

	"github.com/hashicorp/hcl/v2"
)

// Model is the unified, format-agnostic representation of every experiment
// declared across the loaded configuration files.
type Model struct {
	Locals      []*Local
	Experiments []*Experiment
}

// Merge appends the contents of other to m, preserving order.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	m.Locals = append(m.Locals, other.Locals...)
	m.Experiments = append(m.Experiments, other.Experiments...)
}

// Local is a named value shared by all experiments, available as
// `local.<name>`.
type Local struct {
	Name   string
	Expr   hcl.Expression
	Source string
}

// Experiment is the format-agnostic representation of one `experiment`
// block: a grid, the call every grid point is appended to and where the
// resulting experiment list goes.
type Experiment struct {
	Name   string
	Source string

	BaseCall hcl.Expression
	Output   hcl.Expression
	// Repeats and RunName are optional. They are either nil or evaluate to
	// null when omitted.
	Repeats hcl.Expression
	RunName hcl.Expression

	StaticFlags  []*Flag
	Axes         []*Axis
	DerivedFlags []*Flag

	Estimate *Estimate
}

// Axis is one declared hyperparameter dimension. Values must evaluate to an
// ordered list of primitives.
type Axis struct {
	Name   string
	Values hcl.Expression
}

// Flag is a `--name value` pair outside the grid. Static flags are evaluated
// once per experiment; derived flags once per combination.
type Flag struct {
	Name  string
	Value hcl.Expression
}

// Estimate holds the inputs of the informational wall-clock projection.
type Estimate struct {
	Servers    hcl.Expression
	AvgMinutes hcl.Expression
}

// Vars are the values injected by the caller instead of being looked up from
// the process environment.
type Vars struct {
	User        string
	ScratchDisk string
	Values      map[string]string
}

// ScratchHome is the per-user directory on the node's scratch disk.
func (v Vars) ScratchHome() string {
	return path.Join(v.ScratchDisk, v.User)
}
