package experiment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/specialistvlad/exptgrid/internal/config"
	"github.com/specialistvlad/exptgrid/internal/ctxlog"
	"github.com/stretchr/testify/require"
)

func TestCompile_EvaluatesLocalsAndVars(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	e := newExperiment(t, "mnist")
	e.BaseCall = expr(t, `"python main.py -i ${local.data_home}/input --tag ${var.tag}"`)
	e.Output = expr(t, `"${experiment.name}_experiment.txt"`)
	model := &config.Model{
		Locals: []*config.Local{
			{Name: "root", Expr: expr(t, `"${scratch_home}/mnist"`)},
			{Name: "data_home", Expr: expr(t, `"${local.root}/data"`)},
		},
		Experiments: []*config.Experiment{e},
	}
	vars := config.Vars{User: "alice", ScratchDisk: "/disk/scratch", Values: map[string]string{"tag": "v1"}}

	// --- Act ---
	plans, err := Compile(ctxlog.Discard(context.Background()), model, vars)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, "python main.py -i /disk/scratch/alice/mnist/data/input --tag v1", plans[0].Template.BaseCall)
	require.Equal(t, "mnist_experiment.txt", plans[0].Output)
}

func TestCompile_LocalsResolveInDependencyOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Locals merged from several files may refer to ones declared later.
	e := newExperiment(t, "exp")
	e.BaseCall = expr(t, `"python main.py --log ${local.log_dir}"`)
	model := &config.Model{
		Locals: []*config.Local{
			{Name: "log_dir", Expr: expr(t, `"${local.out_dir}/logs"`), Source: "a.hcl"},
			{Name: "out_dir", Expr: expr(t, `"${local.root}/output"`), Source: "b.hcl"},
			{Name: "root", Expr: expr(t, `"/code"`), Source: "c.yaml"},
		},
		Experiments: []*config.Experiment{e},
	}

	// --- Act ---
	plans, err := Compile(ctxlog.Discard(context.Background()), model, config.Vars{})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "python main.py --log /code/output/logs", plans[0].Template.BaseCall)
}

func TestCompile_PreservesDeclarationOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	model := &config.Model{Experiments: []*config.Experiment{
		newExperiment(t, "b"),
		newExperiment(t, "a"),
		newExperiment(t, "c"),
	}}

	// --- Act ---
	plans, err := Compile(ctxlog.Discard(context.Background()), model, config.Vars{})

	// --- Assert ---
	require.NoError(t, err)
	names := make([]string, len(plans))
	for i, p := range plans {
		names[i] = p.Name
	}
	require.Equal(t, []string{"b", "a", "c"}, names)
}

func TestCompile_StaticFlags(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	e := newExperiment(t, "task1")
	e.StaticFlags = []*config.Flag{
		flag(t, "epochs", `10000`),
		flag(t, "no-cuda", ""),
		flag(t, "optimizer", `"adam"`),
	}
	e.Axes = []*config.Axis{axis(t, "lr", `[1e-6]`)}

	// --- Act ---
	p, err := compileOne(t, e)
	require.NoError(t, err)
	lines, err := p.Invocations()

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, []string{"python train.py --epochs 10000 --no-cuda --optimizer adam --lr 1e-06"}, lines)
}

func TestCompile_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(t *testing.T, e *config.Experiment)
		field  string
	}{
		{
			name:   "base call is not a string",
			mutate: func(t *testing.T, e *config.Experiment) { e.BaseCall = expr(t, `["python"]`) },
			field:  "base_call",
		},
		{
			name:   "empty output",
			mutate: func(t *testing.T, e *config.Experiment) { e.Output = expr(t, `""`) },
			field:  "output",
		},
		{
			name:   "zero repeats",
			mutate: func(t *testing.T, e *config.Experiment) { e.Repeats = expr(t, `0`) },
			field:  "repeats",
		},
		{
			name:   "fractional repeats",
			mutate: func(t *testing.T, e *config.Experiment) { e.Repeats = expr(t, `1.5`) },
			field:  "repeats",
		},
		{
			name:   "scalar values",
			mutate: func(t *testing.T, e *config.Experiment) { e.Axes = []*config.Axis{axis(t, "lr", `5`)} },
			field:  "axis.lr",
		},
		{
			name:   "object values",
			mutate: func(t *testing.T, e *config.Experiment) { e.Axes = []*config.Axis{axis(t, "lr", `{a = 1}`)} },
			field:  "axis.lr",
		},
		{
			name:   "nested list value",
			mutate: func(t *testing.T, e *config.Experiment) { e.Axes = []*config.Axis{axis(t, "lr", `[[1]]`)} },
			field:  "axis.lr",
		},
		{
			name:   "empty string value",
			mutate: func(t *testing.T, e *config.Experiment) { e.Axes = []*config.Axis{axis(t, "tag", `["", "x"]`)} },
			field:  "axis.tag",
		},
		{
			name:   "unknown reference",
			mutate: func(t *testing.T, e *config.Experiment) { e.Axes = []*config.Axis{axis(t, "lr", `local.missing`)} },
			field:  "axis.lr",
		},
		{
			name:   "invalid axis name",
			mutate: func(t *testing.T, e *config.Experiment) { e.Axes = []*config.Axis{axis(t, "-lr", `[1]`)} },
			field:  "axis",
		},
		{
			name: "axis shadows static flag",
			mutate: func(t *testing.T, e *config.Experiment) {
				e.StaticFlags = []*config.Flag{flag(t, "lr", `1`)}
				e.Axes = []*config.Axis{axis(t, "lr", `[1]`)}
			},
			field: "axis.lr",
		},
		{
			name: "duplicate derived flag",
			mutate: func(t *testing.T, e *config.Experiment) {
				e.DerivedFlags = []*config.Flag{flag(t, "log", `"a"`), flag(t, "log", `"b"`)}
			},
			field: "derived_flag.log",
		},
		{
			name: "grid too large",
			mutate: func(t *testing.T, e *config.Experiment) {
				// 4100 x 4100 values, just over 1<<24.
				values := `concat(range(1000), range(1000), range(1000), range(1000), range(100))`
				e.Axes = []*config.Axis{axis(t, "a", values), axis(t, "b", values)}
			},
			field: "axis",
		},
		{
			name: "no servers",
			mutate: func(t *testing.T, e *config.Experiment) {
				e.Estimate = &config.Estimate{Servers: expr(t, `0`), AvgMinutes: expr(t, `20`)}
			},
			field: "estimate.servers",
		},
		{
			name: "negative average",
			mutate: func(t *testing.T, e *config.Experiment) {
				e.Estimate = &config.Estimate{Servers: expr(t, `10`), AvgMinutes: expr(t, `-1`)}
			},
			field: "estimate.avg_minutes",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			e := newExperiment(t, "exp")
			tc.mutate(t, e)

			// --- Act ---
			_, err := compileOne(t, e)

			// --- Assert ---
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			require.Equal(t, "exp", cfgErr.Experiment)
			require.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestCompile_ModelErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		model func(t *testing.T) *config.Model
		field string
	}{
		{
			name: "duplicate experiment",
			model: func(t *testing.T) *config.Model {
				second := newExperiment(t, "exp")
				second.Output = expr(t, `"other.txt"`)
				return &config.Model{Experiments: []*config.Experiment{newExperiment(t, "exp"), second}}
			},
			field: "name",
		},
		{
			name: "shared output",
			model: func(t *testing.T) *config.Model {
				second := newExperiment(t, "other")
				second.Output = expr(t, `"./exp.txt"`)
				return &config.Model{Experiments: []*config.Experiment{newExperiment(t, "exp"), second}}
			},
			field: "output",
		},
		{
			name: "duplicate local",
			model: func(t *testing.T) *config.Model {
				return &config.Model{Locals: []*config.Local{
					{Name: "x", Expr: expr(t, `1`)},
					{Name: "x", Expr: expr(t, `2`)},
				}}
			},
			field: "local.x",
		},
		{
			name: "locals refer to each other",
			model: func(t *testing.T) *config.Model {
				return &config.Model{Locals: []*config.Local{
					{Name: "a", Expr: expr(t, `"${local.b}/a"`)},
					{Name: "b", Expr: expr(t, `"${local.a}/b"`)},
					{Name: "c", Expr: expr(t, `1`)},
				}}
			},
			field: "local.a",
		},
		{
			name: "local refers to itself",
			model: func(t *testing.T) *config.Model {
				return &config.Model{Locals: []*config.Local{
					{Name: "a", Expr: expr(t, `local.a`)},
				}}
			},
			field: "local.a",
		},
		{
			name: "local refers to an undeclared local",
			model: func(t *testing.T) *config.Model {
				return &config.Model{Locals: []*config.Local{
					{Name: "a", Expr: expr(t, `local.missing`)},
				}}
			},
			field: "local.a",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Act ---
			_, err := Compile(ctxlog.Discard(context.Background()), tc.model(t), config.Vars{})

			// --- Assert ---
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected *ConfigError, got %v", err)
			require.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestCompile_WarnsOnDegenerateAxes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var logs bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))
	e := newExperiment(t, "exp")
	e.Axes = []*config.Axis{
		axis(t, "lr", `[0.1, 0.1]`),
		axis(t, "gamma", `[]`),
	}

	// --- Act ---
	plans, err := Compile(ctx, &config.Model{Experiments: []*config.Experiment{e}}, config.Vars{})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, 0, plans[0].Size())
	require.Contains(t, logs.String(), "duplicate value")
	require.Contains(t, logs.String(), "axis=gamma")
}

func TestCompile_CombinationCap(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		tail      int
		expectErr bool
	}{
		{name: "exactly at the cap", tail: 96},
		{name: "just over the cap", tail: 100, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			// range is limited to 1024 elements, so build 4000+tail values.
			values := fmt.Sprintf("concat(range(1000), range(1000), range(1000), range(1000), range(%d))", tc.tail)
			e := newExperiment(t, "exp")
			e.Axes = []*config.Axis{axis(t, "a", values), axis(t, "b", values)}

			// --- Act ---
			p, err := compileOne(t, e)

			// --- Assert ---
			if tc.expectErr {
				require.ErrorContains(t, err, fmt.Sprintf("grid has more than %d combinations", MaxCombinations))
				return
			}
			require.NoError(t, err)
			require.Equal(t, MaxCombinations, p.Size())
		})
	}
}
