// Package config defines the format-agnostic configuration model for the
// application, along with the Loader interface for reading experiment
// definitions from various sources.
//
// The `config.Model` is the single input of the `experiment` package.
// Values are kept as unevaluated hcl.Expression so that every format shares
// one evaluation pipeline. Concrete loaders, such as for HCL and YAML, are
// provided in separate packages.
package config
