// Package wait polls a browser session until an element reaches a condition.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"

	"purchase_flow/domain/entities"
	"purchase_flow/domain/interfaces"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultInterval = 250 * time.Millisecond
)

// Waiter blocks the calling goroutine until a locator satisfies a condition
type Waiter struct {
	session  interfaces.Session
	timeout  time.Duration
	interval time.Duration
}

// New - creates a waiter over session. Zero durations fall back to the defaults.
func New(session interfaces.Session, timeout, interval time.Duration) *Waiter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Waiter{
		session:  session,
		timeout:  timeout,
		interval: interval,
	}
}

// Timeout returns the default timeout used by For
func (w *Waiter) Timeout() time.Duration {
	return w.timeout
}

// For waits up to the default timeout
func (w *Waiter) For(ctx context.Context, loc entities.Locator, cond entities.Condition) (interfaces.Element, error) {
	return w.ForTimeout(ctx, loc, cond, w.timeout)
}

// ForTimeout polls until loc satisfies cond or timeout elapses. On timeout it
// returns a *entities.TimeoutError, never a nil element with a nil error.
func (w *Waiter) ForTimeout(ctx context.Context, loc entities.Locator, cond entities.Condition, timeout time.Duration) (interfaces.Element, error) {
	if cond != entities.ConditionPresence && cond != entities.ConditionClickable {
		return nil, fmt.Errorf("unknown wait condition %q", cond)
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var lastErr error
	for {
		el, err := w.check(ctx, loc, cond)
		if err == nil && el != nil {
			return el, nil
		}
		if err != nil && !retryable(err) {
			return nil, err
		}
		lastErr = err

		if !time.Now().Before(deadline) {
			return nil, &entities.TimeoutError{
				Locator:   loc,
				Condition: cond,
				Timeout:   timeout,
				Err:       lastErr,
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// check runs one probe. A nil element with a nil error means "not yet".
func (w *Waiter) check(ctx context.Context, loc entities.Locator, cond entities.Condition) (interfaces.Element, error) {
	el, err := w.session.FindElement(ctx, loc)
	if err != nil {
		return nil, err
	}
	if cond == entities.ConditionPresence {
		return el, nil
	}

	displayed, err := el.IsDisplayed(ctx)
	if err != nil {
		return nil, err
	}
	if !displayed {
		return nil, nil
	}
	enabled, err := el.IsEnabled(ctx)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, nil
	}
	return el, nil
}

// retryable separates "keep polling" from errors the wait cannot outlast
func retryable(err error) bool {
	return errors.Is(err, entities.ErrElementNotFound) || errors.Is(err, entities.ErrStaleElement)
}
