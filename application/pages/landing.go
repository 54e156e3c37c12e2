package pages

import (
	"context"
	"fmt"

	"purchase_flow/domain/entities"
)

// LandingPage - the storefront root with its search affordance
type LandingPage struct {
	*Base
	url      string
	viewport entities.Viewport
	loc      entities.LandingLocators
}

func NewLandingPage(base *Base, url string, viewport entities.Viewport, loc entities.LandingLocators) *LandingPage {
	return &LandingPage{
		Base:     base,
		url:      url,
		viewport: viewport,
		loc:      loc,
	}
}

// Visit navigates to the site root and sets the viewport. Calling it again
// starts over from the landing page.
func (p *LandingPage) Visit(ctx context.Context) error {
	if err := p.session.Navigate(ctx, p.url); err != nil {
		return &entities.NavigationError{URL: p.url, Err: err}
	}
	if err := p.session.SetViewport(ctx, p.viewport.Width, p.viewport.Height); err != nil {
		return fmt.Errorf("failed to set viewport %s: %w", p.viewport, err)
	}
	p.logger.Infof("Visited landing page %s", p.url)
	return nil
}

// SearchProduct opens the search container, types name and submits with Enter.
// The container has to be open before the input is addressable.
func (p *LandingPage) SearchProduct(ctx context.Context, name string) error {
	if err := p.Click(ctx, p.loc.SearchContainer); err != nil {
		return err
	}
	if err := p.Type(ctx, p.loc.SearchInput, name); err != nil {
		return err
	}

	input, err := p.Find(ctx, p.loc.SearchInput)
	if err != nil {
		return err
	}
	got, err := input.Value(ctx)
	if err != nil {
		return &entities.ElementInteractionError{Locator: p.loc.SearchInput, Action: "read value", Err: err}
	}
	if got != name {
		return &entities.ElementInteractionError{
			Locator: p.loc.SearchInput,
			Action:  "type",
			Err:     fmt.Errorf("search field holds %q, want %q", got, name),
		}
	}

	if err := input.PressKey(ctx, entities.KeyEnter); err != nil {
		return &entities.ElementInteractionError{Locator: p.loc.SearchInput, Action: "submit", Err: err}
	}
	p.logger.Infof("Searched for: %s", name)
	return nil
}
