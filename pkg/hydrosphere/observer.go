package hydrosphere

// StepReport describes a completed step. Profile aliases the live
// temperature array: observers must copy it if they keep it and must not
// modify it.
type StepReport struct {
	Profile          Profile
	Depths           []float64
	HighestIceExtent float64
	Step             int
	TotalSteps       int
	Change           float64
}

// Fraction returns the completed share of the step budget.
func (r StepReport) Fraction() float64 {
	if r.TotalSteps == 0 {
		return 1
	}
	return float64(r.Step) / float64(r.TotalSteps)
}

// ProgressObserver is told about every step that did not end the run.
// Returning a non-nil error stops the run after the current step; the error
// is recorded as the result's Cause.
type ProgressObserver interface {
	ObserveStep(StepReport) error
}

// SnapshotObserver receives each recorded frame. The profile is a copy the
// observer may keep.
type SnapshotObserver interface {
	ObserveSnapshot(step int, p Profile)
}

// ProgressFunc adapts a function to ProgressObserver.
type ProgressFunc func(StepReport) error

// ObserveStep calls f.
func (f ProgressFunc) ObserveStep(r StepReport) error {
	return f(r)
}

// SnapshotFunc adapts a function to SnapshotObserver.
type SnapshotFunc func(step int, p Profile)

// ObserveSnapshot calls f.
func (f SnapshotFunc) ObserveSnapshot(step int, p Profile) {
	f(step, p)
}
