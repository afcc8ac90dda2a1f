package hcl

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/exptgrid/internal/config"
	"github.com/specialistvlad/exptgrid/internal/ctxlog"
)

// translateLocals converts a `locals` block into model locals ordered by
// their position in the file, so later locals may refer to earlier ones.
func translateLocals(block *localsBlock, file string) ([]*config.Local, error) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid locals block in %s: %w", file, diags)
	}

	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		ordered = append(ordered, attr)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Range.Start.Byte < ordered[j].Range.Start.Byte
	})

	locals := make([]*config.Local, len(ordered))
	for i, attr := range ordered {
		locals[i] = &config.Local{Name: attr.Name, Expr: attr.Expr, Source: file}
	}
	return locals, nil
}

// translateExperiment converts the HCL-specific experiment schema into the
// agnostic model. gohcl cannot mark expression fields as required, so
// required attributes are checked here.
func translateExperiment(ctx context.Context, b *experimentBlock, file string) (*config.Experiment, error) {
	type attribute struct {
		name string
		expr hcl.Expression
	}
	required := []attribute{{"base_call", b.BaseCall}, {"output", b.Output}}
	if b.Estimate != nil {
		required = append(required,
			attribute{"estimate.servers", b.Estimate.Servers},
			attribute{"estimate.avg_minutes", b.Estimate.AvgMinutes},
		)
	}
	for _, r := range required {
		if !isExprDefined(ctx, r.expr, r.name) {
			return nil, fmt.Errorf("experiment %q: %s is required", b.Name, r.name)
		}
	}

	e := &config.Experiment{
		Name:     b.Name,
		Source:   file,
		BaseCall: b.BaseCall,
		Output:   b.Output,
	}

	if isExprDefined(ctx, b.Repeats, "repeats") {
		e.Repeats = b.Repeats
	}
	if isExprDefined(ctx, b.RunName, "run_name") {
		e.RunName = b.RunName
	}
	for _, a := range b.Axes {
		e.Axes = append(e.Axes, &config.Axis{Name: a.Name, Values: a.Values})
	}
	e.StaticFlags = translateFlags(ctx, b.StaticFlags)
	e.DerivedFlags = translateFlags(ctx, b.DerivedFlags)
	if b.Estimate != nil {
		e.Estimate = &config.Estimate{Servers: b.Estimate.Servers, AvgMinutes: b.Estimate.AvgMinutes}
	}
	return e, nil
}

func translateFlags(ctx context.Context, blocks []*flagBlock) []*config.Flag {
	flags := make([]*config.Flag, 0, len(blocks))
	for _, f := range blocks {
		flag := &config.Flag{Name: f.Name}
		if isExprDefined(ctx, f.Value, "value") {
			flag.Value = f.Value
		}
		flags = append(flags, flag)
	}
	return flags
}

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with non-nil,
// zero-width expression objects, so a simple nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		return false
	}

	// A real attribute occupies bytes in the file, while a placeholder for an
	// omitted optional attribute has a zero-width range.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)

	return isDefined
}
