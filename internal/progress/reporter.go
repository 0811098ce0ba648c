// Package progress logs whole-percent milestones of a running simulation.
package progress

import (
	"github.com/chrissnell/hydrosphere/pkg/hydrosphere"
	"go.uber.org/zap"
)

// Reporter logs a line each time a run passes the next whole percent of its
// step budget. At most one milestone is logged per step, so a run with fewer
// steps than percents reports the lagging milestones on later steps.
type Reporter struct {
	logger *zap.SugaredLogger
	label  string
	next   int
}

// NewReporter returns a Reporter that tags its lines with label.
func NewReporter(logger *zap.SugaredLogger, label string) *Reporter {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Reporter{logger: logger, label: label}
}

// ObserveStep implements hydrosphere.ProgressObserver.
func (r *Reporter) ObserveStep(rep hydrosphere.StepReport) error {
	if rep.Fraction()*100 >= float64(r.next) {
		r.logger.Infow("simulation progress",
			"run", r.label,
			"percent", r.next,
			"step", rep.Step,
			"change", rep.Change,
			"highest_ice_extent", rep.HighestIceExtent)
		r.next++
	}
	return nil
}

// Milestones returns how many milestones have been logged.
func (r *Reporter) Milestones() int {
	return r.next
}
