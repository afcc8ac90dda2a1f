// Package yamlcfg provides a YAML implementation of the configuration Loader
// interface. Documents translate into the same format-agnostic model as HCL
// files: string fields are parsed as HCL templates so `${...}` references
// behave identically, and literal values become static expressions.
package yamlcfg
