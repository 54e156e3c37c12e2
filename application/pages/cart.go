package pages

import (
	"context"
	"strings"

	"purchase_flow/domain/entities"
)

// CartPage reads the cart view
type CartPage struct {
	*Base
	loc entities.CartLocators
}

func NewCartPage(base *Base, loc entities.CartLocators) *CartPage {
	return &CartPage{Base: base, loc: loc}
}

// ItemTitles returns the visible title of every cart line
func (p *CartPage) ItemTitles(ctx context.Context) ([]string, error) {
	items, err := p.FindAll(ctx, p.loc.ItemTitle)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(items))
	for _, item := range items {
		text, err := item.Text(ctx)
		if err != nil {
			return nil, &entities.ElementInteractionError{Locator: p.loc.ItemTitle, Action: "read text", Err: err}
		}
		titles = append(titles, strings.TrimSpace(text))
	}
	return titles, nil
}

// RequireItem checks that some cart line title contains term, ignoring case
func (p *CartPage) RequireItem(ctx context.Context, term string) ([]string, error) {
	titles, err := p.ItemTitles(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	for _, title := range titles {
		if strings.Contains(strings.ToLower(title), needle) {
			p.logger.Infof("Cart holds %q", title)
			return titles, nil
		}
	}
	return titles, &entities.VerificationError{What: "cart item title", Expected: term, Got: titles}
}
