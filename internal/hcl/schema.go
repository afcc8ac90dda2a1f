package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is the top-level structure of an experiment file.
type fileRoot struct {
	Locals      []*localsBlock     `hcl:"locals,block"`
	Experiments []*experimentBlock `hcl:"experiment,block"`
}

// localsBlock holds arbitrary attributes, decoded with JustAttributes.
type localsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// experimentBlock is the HCL shape of an `experiment "<name>"` block.
type experimentBlock struct {
	Name string `hcl:"name,label"`

	BaseCall hcl.Expression `hcl:"base_call"`
	Output   hcl.Expression `hcl:"output"`
	Repeats  hcl.Expression `hcl:"repeats,optional"`
	RunName  hcl.Expression `hcl:"run_name,optional"`

	StaticFlags  []*flagBlock   `hcl:"static_flag,block"`
	Axes         []*axisBlock   `hcl:"axis,block"`
	DerivedFlags []*flagBlock   `hcl:"derived_flag,block"`
	Estimate     *estimateBlock `hcl:"estimate,block"`
}

type axisBlock struct {
	Name   string         `hcl:"name,label"`
	Values hcl.Expression `hcl:"values"`
}

// flagBlock is shared by `static_flag` and `derived_flag`. Omitting value
// renders a bare switch.
type flagBlock struct {
	Name  string         `hcl:"name,label"`
	Value hcl.Expression `hcl:"value,optional"`
}

type estimateBlock struct {
	Servers    hcl.Expression `hcl:"servers"`
	AvgMinutes hcl.Expression `hcl:"avg_minutes"`
}
