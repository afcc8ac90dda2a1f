package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/specialistvlad/exptgrid/internal/config"
	"github.com/specialistvlad/exptgrid/internal/ctxlog"
	"github.com/specialistvlad/exptgrid/internal/experiment"
	"github.com/specialistvlad/exptgrid/internal/fsutil"
)

// list is a fully rendered experiment list waiting to be written.
type list struct {
	plan   *experiment.Plan
	output string
	lines  []string
}

// Run loads, compiles and renders every selected experiment, then writes
// the experiment lists. Nothing is written unless every list rendered.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	model, err := a.load(ctx)
	if err != nil {
		return err
	}

	plans, err := experiment.Compile(ctx, model, a.vars())
	if err != nil {
		return err
	}

	plans, err = a.selectPlans(plans)
	if err != nil {
		return err
	}

	lists := make([]list, 0, len(plans))
	for _, p := range plans {
		lines, err := p.Invocations()
		if err != nil {
			return err
		}
		output := p.Output
		if a.config.Output != "" {
			output = a.config.Output
		}
		lists = append(lists, list{plan: p, output: output, lines: lines})
		a.logger.Info("Experiment list rendered.", "experiment", p.Name, "output", output, "lines", len(lines))
	}

	if err := a.emit(ctx, lists); err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) load(ctx context.Context) (*config.Model, error) {
	path := a.config.ConfigPath
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	model := &config.Model{}
	for _, loader := range a.loaders {
		m, err := loader.Load(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		model.Merge(m)
	}
	a.logger.Debug("Configuration loaded and translated into unified model.", "experiments", len(model.Experiments))

	if len(model.Experiments) == 0 {
		return nil, fmt.Errorf("no experiments declared in %s", path)
	}
	return model, nil
}

// selectPlans narrows plans to the experiments named on the command line,
// keeping declaration order.
func (a *App) selectPlans(plans []*experiment.Plan) ([]*experiment.Plan, error) {
	selected := plans
	if names := a.config.Experiments; len(names) > 0 {
		for _, name := range names {
			if !slices.ContainsFunc(plans, func(p *experiment.Plan) bool { return p.Name == name }) {
				return nil, fmt.Errorf("unknown experiment %q", name)
			}
		}
		selected = slices.DeleteFunc(slices.Clone(plans), func(p *experiment.Plan) bool {
			return !slices.Contains(names, p.Name)
		})
	}

	if a.config.Output != "" && len(selected) != 1 {
		return nil, errors.New("an output override requires exactly one selected experiment")
	}
	return selected, nil
}

// emit prints the summary of every list and then its lines, to stdout in
// dry-run mode or to the output files otherwise. Every list is staged next
// to its output before the first one replaces its destination, so a list
// that cannot be written leaves all outputs untouched.
func (a *App) emit(ctx context.Context, lists []list) error {
	logger := ctxlog.FromContext(ctx)

	for _, l := range lists {
		summary := l.plan.Summary()
		fmt.Fprint(a.outW, summary.String())
		if a.config.DryRun {
			for _, line := range l.lines {
				fmt.Fprintln(a.outW, line)
			}
		}
	}
	if a.config.DryRun {
		logger.Debug("Dry run, experiment lists not written.")
		return nil
	}

	staged := make([]*fsutil.StagedFile, 0, len(lists))
	discard := func() {
		for _, s := range staged {
			s.Discard()
		}
	}
	for _, l := range lists {
		s, err := fsutil.StageLines(l.output, l.lines)
		if err != nil {
			discard()
			return fmt.Errorf("failed to write experiment list for %q: %w", l.plan.Name, err)
		}
		staged = append(staged, s)
	}

	for i, s := range staged {
		if err := s.Commit(); err != nil {
			for _, rest := range staged[i+1:] {
				rest.Discard()
			}
			return fmt.Errorf("failed to write experiment list for %q: %w", lists[i].plan.Name, err)
		}
		logger.Info("Experiment list written.", "experiment", lists[i].plan.Name, "output", s.Path(), "lines", len(lists[i].lines))
	}
	return nil
}
