package hydrosphere

import (
	"context"

	"go.uber.org/zap"
)

// DefaultFrameInterval is the recording interval used when none is set.
const DefaultFrameInterval = 50

// Options tune how a run is driven. The zero value runs headless.
type Options struct {
	// Record keeps a copy of the profile every FrameInterval steps plus the
	// final one.
	Record        bool
	FrameInterval int
	// StepLimit caps the number of iterations below the step budget when > 0.
	StepLimit int
	Progress  ProgressObserver
	Snapshots SnapshotObserver
}

// State is the mutable record threaded through the stages. Each stage reads
// the profile as the previous stage left it.
type State struct {
	Temperature      Profile
	Previous         Profile
	Step             int
	HighestIceExtent float64
	Frames           []Profile
}

func newState(initial Profile) *State {
	return &State{
		Temperature: initial.Clone(),
		Previous:    initial.Clone(),
	}
}

// Simulation drives one column from its initial profile to a terminal state.
type Simulation struct {
	params Parameters
	grid   *Grid
	opts   Options
	logger *zap.SugaredLogger
}

// New validates p and prepares a run. A nil logger disables logging.
func New(p Parameters, opts Options, logger *zap.SugaredLogger) (*Simulation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	grid, err := NewGrid(p.Depth, p.SpatialResolution)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if p.IceDepth <= 0 {
		logger.Warnf("ice_depth %g is not positive; the column starts fully liquid at %g°C", p.IceDepth, OceanTemperature)
	}

	return &Simulation{
		params: p,
		grid:   grid,
		opts:   opts,
		logger: logger,
	}, nil
}

// Simulate is New followed by Run.
func Simulate(ctx context.Context, p Parameters, opts Options, logger *zap.SugaredLogger) (*Result, error) {
	s, err := New(p, opts, logger)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx), nil
}

// Grid returns the discretization the run uses.
func (s *Simulation) Grid() *Grid {
	return s.grid
}

// Parameters returns the run's configuration.
func (s *Simulation) Parameters() Parameters {
	return s.params
}

// Run marches the profile forward until it converges, exhausts the step
// budget, diverges, or is stopped by ctx or the progress observer. Stop
// requests are honoured between steps only.
func (s *Simulation) Run(ctx context.Context) *Result {
	var (
		p     = s.params
		dt    = p.TimeStep()
		dx    = s.grid.Spacing
		total = p.TotalTimeSteps()
		st    = newState(InitialProfile(s.grid, p.IceDepth))
		res   = &Result{Status: StatusRunning, TotalSteps: total, Depths: s.grid.Depths}
	)

	last := total - 1
	if s.opts.StepLimit > 0 && s.opts.StepLimit < last {
		last = s.opts.StepLimit
	}

	s.logger.Debugw("starting simulation",
		"nodes", s.grid.Len(), "dx", dx, "dt", dt, "total_steps", total, "step_limit", s.opts.StepLimit)

	res.Status = StatusStepBudgetExhausted
	for t := 1; t <= last; t++ {
		if err := ctx.Err(); err != nil {
			res.Status, res.Cause = StatusStopped, err
			break
		}

		extent := st.HighestIceExtent
		s.step(st, t, dx, dt)

		if !isFinite(st.Temperature) {
			s.logger.Errorf("profile became non-finite at step %d; keeping the state from step %d", t, t-1)
			copy(st.Temperature, st.Previous)
			st.Step = t - 1
			st.HighestIceExtent = extent
			res.Status = StatusDiverged
			break
		}

		change, converged := checkConvergence(st, p.ConvergenceThreshold)
		res.Change = change
		if converged {
			s.logger.Infof("equilibrium reached at step %d (change %.3g < %.3g)", t, change, p.ConvergenceThreshold)
			res.Status = StatusConverged
			break
		}

		if s.opts.Progress != nil {
			err := s.opts.Progress.ObserveStep(StepReport{
				Profile:          st.Temperature,
				Depths:           s.grid.Depths,
				HighestIceExtent: st.HighestIceExtent,
				Step:             t,
				TotalSteps:       total,
				Change:           change,
			})
			if err != nil {
				res.Status, res.Cause = StatusStopped, err
				break
			}
		}

		if s.opts.Record && t%s.opts.FrameInterval == 0 {
			s.snapshot(st, t)
		}
	}

	if s.opts.Record {
		s.snapshot(st, st.Step)
	}

	res.Temperature = st.Temperature
	res.HighestIceExtent = st.HighestIceExtent
	res.Steps = st.Step
	res.Frames = st.Frames

	s.logger.Debugw("simulation finished",
		"status", res.Status, "steps", res.Steps, "highest_ice_extent", res.HighestIceExtent)

	return res
}

// step applies forcing, diffusion, convective adjustment and the phase
// boundary to st in that fixed order.
func (s *Simulation) step(st *State, t int, dx, dt float64) {
	dTdz := applyForcing(st, &s.params, dx, dt)
	ice := applyDiffusion(st.Temperature, dTdz, &s.params, dx, dt)
	if t > 1 && anyNegative(dTdz) {
		applyConvection(st.Temperature, dTdz)
	}
	applyPhaseBoundary(st, s.grid, ice, dt)
	st.Step = t
}

func (s *Simulation) snapshot(st *State, step int) {
	frame := st.Temperature.Clone()
	st.Frames = append(st.Frames, frame)
	if s.opts.Snapshots != nil {
		s.opts.Snapshots.ObserveSnapshot(step, frame)
	}
}
