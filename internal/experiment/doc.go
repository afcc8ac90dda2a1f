// Package experiment compiles the format-agnostic configuration model into
// immutable plans and renders each plan into its experiment list.
//
// Compilation evaluates every static expression up front, so a malformed
// axis, flag or path fails the whole run before anything is written.
// Expressions are evaluated in nested scopes:
//
//   - global: user, scratch_disk, scratch_home, var.<name>, local.<name>
//     and a small set of string and number functions;
//   - experiment: experiment.name;
//   - run (derived flags and run_name only): axis.<name> holding the
//     rendered value, run.index, run.repeat and run.name.
//
// Locals are shared across every loaded file and may refer to each other
// regardless of declaration order or file; they are evaluated in dependency
// order and a reference cycle is a configuration error.
//
// The package never generates a seed. Repeats that need different random
// state are expected to pick it inside the invoked process.
package experiment
