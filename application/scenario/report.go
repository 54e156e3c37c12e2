package scenario

import (
	"fmt"
	"time"

	"purchase_flow/domain/entities"
)

// Report describes one scenario run
type Report struct {
	RunID    string
	Status   entities.RunStatus
	State    entities.State
	Visited  []entities.State
	Started  time.Time
	Duration time.Duration
	// Screenshot is the diagnostic capture path, set only when one was written
	Screenshot string
	Vars       entities.StateBag
}

func (r *Report) advance(to entities.State) {
	r.State = to
	r.Visited = append(r.Visited, to)
}

// StepError is returned when a transition fails. The diagnostic screenshot has
// already been captured when the caller sees it.
type StepError struct {
	Step  string
	State entities.State
	// Screenshot is empty when the capture itself failed
	Screenshot    string
	ScreenshotErr error
	Err           error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed in state %s: %v", e.Step, e.State, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
