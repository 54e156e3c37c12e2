// Package pages holds the page objects of the purchase flow. Page objects
// expose a page's affordances as named operations and keep raw locators away
// from scenario logic.
package pages

import (
	"context"

	"purchase_flow/application/wait"
	"purchase_flow/domain/entities"
	"purchase_flow/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Base gives every page object the same find, click and type primitives.
// It never caches element handles; each call locates the element again.
type Base struct {
	session interfaces.Session
	waiter  *wait.Waiter
	logger  logrus.FieldLogger
}

// NewBase - creates the shared page primitives over one session
func NewBase(session interfaces.Session, waiter *wait.Waiter, logger logrus.FieldLogger) *Base {
	return &Base{
		session: session,
		waiter:  waiter,
		logger:  logger,
	}
}

// Session returns the browser session the page drives
func (b *Base) Session() interfaces.Session {
	return b.session
}

// Find waits for loc to be present and returns its handle
func (b *Base) Find(ctx context.Context, loc entities.Locator) (interfaces.Element, error) {
	return b.waiter.For(ctx, loc, entities.ConditionPresence)
}

// FindAll waits for at least one match of loc and returns every match
func (b *Base) FindAll(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	if _, err := b.Find(ctx, loc); err != nil {
		return nil, err
	}
	els, err := b.session.FindElements(ctx, loc)
	if err != nil {
		return nil, &entities.ElementInteractionError{Locator: loc, Action: "find all", Err: err}
	}
	return els, nil
}

// Click waits for loc to become clickable, then clicks it
func (b *Base) Click(ctx context.Context, loc entities.Locator) error {
	el, err := b.waiter.For(ctx, loc, entities.ConditionClickable)
	if err != nil {
		return err
	}
	if err := el.Click(ctx); err != nil {
		return &entities.ElementInteractionError{Locator: loc, Action: "click", Err: err}
	}
	b.logger.Debugf("Clicked %s", loc)
	return nil
}

// Type finds loc, clears it and sends text as keystrokes
func (b *Base) Type(ctx context.Context, loc entities.Locator, text string) error {
	el, err := b.Find(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.Clear(ctx); err != nil {
		return &entities.ElementInteractionError{Locator: loc, Action: "clear", Err: err}
	}
	if err := el.SendKeys(ctx, text); err != nil {
		return &entities.ElementInteractionError{Locator: loc, Action: "type", Err: err}
	}
	return nil
}

// Press finds loc and sends a single key to it
func (b *Base) Press(ctx context.Context, loc entities.Locator, key entities.Key) error {
	el, err := b.Find(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.PressKey(ctx, key); err != nil {
		return &entities.ElementInteractionError{Locator: loc, Action: "press " + string(key), Err: err}
	}
	return nil
}
