package yamlcfg

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// isSet reports whether the key backing node was present in the document.
func isSet(node *yaml.Node) bool {
	return node.Kind != 0
}

func nodeRange(file string, node *yaml.Node) hcl.Range {
	pos := hcl.Pos{Line: node.Line, Column: node.Column}
	return hcl.Range{Filename: file, Start: pos, End: pos}
}

// expression converts a scalar node into an hcl.Expression. Strings are
// parsed as templates; every other scalar becomes a static value.
func expression(file string, node *yaml.Node) (hcl.Expression, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("%s:%d:%d: expected a scalar value", file, node.Line, node.Column)
	}
	if node.ShortTag() == "!!str" {
		return template(file, node)
	}
	val, err := scalarValue(file, node)
	if err != nil {
		return nil, err
	}
	return hcl.StaticExpr(val, nodeRange(file, node)), nil
}

// template parses a string scalar as an HCL template.
func template(file string, node *yaml.Node) (hcl.Expression, error) {
	expr, diags := hclsyntax.ParseTemplate([]byte(node.Value), file, hcl.Pos{Line: node.Line, Column: node.Column})
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s:%d:%d: invalid template: %w", file, node.Line, node.Column, diags)
	}
	return expr, nil
}

// scalarValue converts a YAML scalar into a primitive cty value.
func scalarValue(file string, node *yaml.Node) (cty.Value, error) {
	at := fmt.Sprintf("%s:%d:%d", file, node.Line, node.Column)
	if node.Kind != yaml.ScalarNode {
		return cty.NilVal, fmt.Errorf("%s: expected a string, number or bool", at)
	}

	switch node.ShortTag() {
	case "!!str":
		return cty.StringVal(node.Value), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return cty.NilVal, fmt.Errorf("%s: %w", at, err)
		}
		return cty.BoolVal(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return cty.NilVal, fmt.Errorf("%s: %w", at, err)
		}
		return cty.NumberIntVal(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return cty.NilVal, fmt.Errorf("%s: %w", at, err)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return cty.NilVal, fmt.Errorf("%s: number must be finite, got %q", at, node.Value)
		}
		return cty.NumberFloatVal(f), nil
	case "!!null":
		return cty.NilVal, fmt.Errorf("%s: value must not be null", at)
	default:
		return cty.NilVal, fmt.Errorf("%s: unsupported value type %s", at, node.ShortTag())
	}
}

// listExpression converts a sequence node into a static tuple expression.
// A lone scalar is treated like any other expression: a template such as
// "${local.learning_rates}" yields the referenced list, anything else is
// rejected later by the same validation as a non-list HCL value.
func listExpression(file string, node *yaml.Node) (hcl.Expression, error) {
	switch node.Kind {
	case yaml.SequenceNode:
	case yaml.ScalarNode:
		return expression(file, node)
	default:
		return nil, fmt.Errorf("%s:%d:%d: values must be a list", file, node.Line, node.Column)
	}
	vals := make([]cty.Value, len(node.Content))
	for i, item := range node.Content {
		v, err := scalarValue(file, item)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return hcl.StaticExpr(cty.TupleVal(vals), nodeRange(file, node)), nil
}
