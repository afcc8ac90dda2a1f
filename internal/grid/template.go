package grid

import "strings"

// Flag is a rendered command-line flag. An empty Value renders the bare
// switch `--Name`.
type Flag struct {
	Name  string
	Value string
}

func (f Flag) String() string {
	if f.Value == "" {
		return "--" + f.Name
	}
	return "--" + f.Name + " " + f.Value
}

// Template is the fixed part of every invocation: the base call followed by
// static flags that do not vary across the grid.
type Template struct {
	BaseCall string
	Static   []Flag
}

// Render builds the invocation string for one combination: the base call,
// the static flags, one `--<axis> <value>` pair per axis in declaration
// order and finally any extra flags, separated by single spaces. The repeat
// index is not rendered.
func (t Template) Render(c Combination, extra ...Flag) string {
	parts := make([]string, 0, 1+len(t.Static)+len(c.Assignments)+len(extra))
	if base := strings.TrimSpace(t.BaseCall); base != "" {
		parts = append(parts, base)
	}
	for _, f := range t.Static {
		parts = append(parts, f.String())
	}
	for _, a := range c.Assignments {
		parts = append(parts, "--"+a.Axis+" "+FormatValue(a.Value))
	}
	for _, f := range extra {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, " ")
}

// RenderAll renders every combination of g in enumeration order.
func (t Template) RenderAll(g Grid) []string {
	combos := g.Expand()
	lines := make([]string, len(combos))
	for i, c := range combos {
		lines[i] = t.Render(c)
	}
	return lines
}
