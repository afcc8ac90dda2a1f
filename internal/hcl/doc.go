// Package hcl provides the concrete HCL implementation of the configuration
// Loader interface defined in the `config` package. It is responsible for
// file discovery, parsing and the translation of `locals` and `experiment`
// blocks into the format-agnostic model.
package hcl
