package entities

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrElementNotFound is returned by drivers when a locator matches nothing
	ErrElementNotFound = errors.New("element not found")
	// ErrStaleElement is returned when a handle outlived the page it came from
	ErrStaleElement = errors.New("stale element reference")
)

// TimeoutError - a wait condition did not hold within the allotted time
type TimeoutError struct {
	Locator   Locator
	Condition Condition
	Timeout   time.Duration
	// Err is the last driver error seen while polling, if any
	Err error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for %s to be %s", e.Timeout, e.Locator, e.Condition)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// ElementInteractionError - the element was located but the action could not complete
type ElementInteractionError struct {
	Locator Locator
	Action  string
	Err     error
}

func (e *ElementInteractionError) Error() string {
	return fmt.Sprintf("%s on %s failed: %v", e.Action, e.Locator, e.Err)
}

func (e *ElementInteractionError) Unwrap() error { return e.Err }

// NavigationError - the browser failed to load the target location
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// NotFoundError - a label lookup matched zero or more than one element
type NotFoundError struct {
	Locator Locator
	Label   string
	Matches int
}

func (e *NotFoundError) Error() string {
	if e.Matches == 0 {
		return fmt.Sprintf("no element matching %s has text %q", e.Locator, e.Label)
	}
	return fmt.Sprintf("%d elements matching %s have text %q, expected exactly one", e.Matches, e.Locator, e.Label)
}

// VerificationError - the page did not show what the scenario expected
type VerificationError struct {
	What     string
	Expected string
	Got      []string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s: expected %q, got %q", e.What, e.Expected, e.Got)
}

// IsTimeout reports whether err is or wraps a TimeoutError
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
