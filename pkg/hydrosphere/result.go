package hydrosphere

import "fmt"

// Status is the lifecycle state of a run.
type Status int

const (
	StatusInitialized Status = iota
	StatusRunning
	StatusConverged
	StatusStepBudgetExhausted
	StatusDiverged
	StatusStopped
)

var statusNames = map[Status]string{
	StatusInitialized:         "initialized",
	StatusRunning:             "running",
	StatusConverged:           "converged",
	StatusStepBudgetExhausted: "step_budget_exhausted",
	StatusDiverged:            "diverged",
	StatusStopped:             "stopped",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, error) {
	for st, n := range statusNames {
		if n == name {
			return st, nil
		}
	}
	return StatusInitialized, fmt.Errorf("unknown run status %q", name)
}

// Terminal reports whether the status ends a run.
func (s Status) Terminal() bool {
	return s >= StatusConverged
}

// Result is what a run hands back to its caller.
type Result struct {
	Status           Status
	Temperature      Profile
	Depths           []float64
	HighestIceExtent float64
	// Steps is the number of loop iterations that ran to completion.
	Steps      int
	TotalSteps int
	// Change is the last step-to-step change measured, zero if none ran.
	Change float64
	// Frames is only populated when recording was requested.
	Frames []Profile
	// Cause explains a stopped run.
	Cause error
}

// Err returns the error that ended the run abnormally, if any.
func (r *Result) Err() error {
	switch r.Status {
	case StatusDiverged:
		return ErrNumericDivergence
	case StatusStopped:
		if r.Cause != nil {
			return r.Cause
		}
		return ErrStopped
	}
	return nil
}
