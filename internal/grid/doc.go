// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package grid is the experiment grid expander. It takes a set of named
// hyperparameter axes, each an ordered list of discrete values, and turns
// them into the full list of invocations a job array will run.
//
// # Core Concepts
//
//   - Axis: one hyperparameter dimension, e.g. "lr" with values [10, 1, 0.1].
//
//   - Grid: the declared search space. An ordered list of axes plus an
//     optional repeat count. Repeats behave like an extra, innermost axis of
//     run indices that is never rendered as a flag: each repeat is expected
//     to pick its own random state inside the invoked process.
//
//   - Combination: one point of the grid, one value per axis and a repeat
//     index.
//
//   - Template: the base call (command and static flags) that every
//     combination is appended to as `--<axis> <value>` pairs.
//
// # Ordering
//
// Expansion is a plain nested-loop Cartesian product. The first declared
// axis varies slowest, the last declared axis varies faster, and the repeat
// index varies fastest of all. Running the expander twice over the same grid
// always yields the same sequence, so the N-th line of an experiment list is
// a stable address for a job array task.
//
// Everything in this package is pure: no I/O, no randomness and no global
// state. Values are go-cty values so they can come straight out of an HCL or
// YAML configuration without an intermediate representation.
package grid
