package yamlcfg

import "gopkg.in/yaml.v3"

// document is the top-level structure of a YAML experiment file.
type document struct {
	// Locals is kept as a node so key order survives decoding.
	Locals      yaml.Node       `yaml:"locals"`
	Experiments []experimentDoc `yaml:"experiments"`
}

type experimentDoc struct {
	Name     string    `yaml:"name"`
	BaseCall yaml.Node `yaml:"base_call"`
	Output   yaml.Node `yaml:"output"`
	Repeats  yaml.Node `yaml:"repeats"`
	RunName  yaml.Node `yaml:"run_name"`

	StaticFlags  []flagDoc    `yaml:"static_flags"`
	Axes         []axisDoc    `yaml:"axes"`
	DerivedFlags []flagDoc    `yaml:"derived_flags"`
	Estimate     *estimateDoc `yaml:"estimate"`
}

type axisDoc struct {
	Name   string    `yaml:"name"`
	Values yaml.Node `yaml:"values"`
}

type flagDoc struct {
	Name  string    `yaml:"name"`
	Value yaml.Node `yaml:"value"`
}

type estimateDoc struct {
	Servers    yaml.Node `yaml:"servers"`
	AvgMinutes yaml.Node `yaml:"avg_minutes"`
}
