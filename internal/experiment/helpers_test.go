package experiment

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/exptgrid/internal/config"
	"github.com/specialistvlad/exptgrid/internal/ctxlog"
	"github.com/stretchr/testify/require"
)

func expr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return e
}

// newExperiment returns a minimal valid experiment writing to <name>.txt.
func newExperiment(t *testing.T, name string) *config.Experiment {
	t.Helper()
	return &config.Experiment{
		Name:     name,
		Source:   "test.hcl",
		BaseCall: expr(t, `"python train.py"`),
		Output:   expr(t, `"`+name+`.txt"`),
	}
}

func axis(t *testing.T, name, values string) *config.Axis {
	t.Helper()
	return &config.Axis{Name: name, Values: expr(t, values)}
}

func flag(t *testing.T, name, value string) *config.Flag {
	t.Helper()
	if value == "" {
		return &config.Flag{Name: name}
	}
	return &config.Flag{Name: name, Value: expr(t, value)}
}

func compileOne(t *testing.T, e *config.Experiment) (*Plan, error) {
	t.Helper()
	plans, err := Compile(ctxlog.Discard(context.Background()), &config.Model{Experiments: []*config.Experiment{e}}, config.Vars{})
	if err != nil {
		return nil, err
	}
	require.Len(t, plans, 1)
	return plans[0], nil
}
