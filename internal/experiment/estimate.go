package experiment

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/exptgrid/internal/grid"
)

// Estimate projects the aggregate wall-clock time of an experiment list run
// on a fixed pool of servers. It is informational only.
type Estimate struct {
	Servers    int
	AvgMinutes float64
}

// Hours returns n / servers * avg_minutes / 60.
func (e Estimate) Hours(n int) float64 {
	return float64(n) / float64(e.Servers) * e.AvgMinutes / 60
}

// Summary describes an experiment list before it is written.
type Summary struct {
	Experiment string
	Output     string
	Total      int
	// Hours is nil when the experiment declares no estimate.
	Hours *float64
}

// Summary reports the number of invocations and, when an estimate is
// declared, the projected time in hours.
func (p *Plan) Summary() Summary {
	s := Summary{Experiment: p.Name, Output: p.Output, Total: p.Size()}
	if p.Estimate != nil {
		h := p.Estimate.Hours(s.Total)
		s.Hours = &h
	}
	return s
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total experiments = %d\n", s.Total)
	if s.Hours != nil {
		fmt.Fprintf(&b, "Estimated time = %s hrs\n", grid.FormatFloat(*s.Hours))
	}
	return b.String()
}
