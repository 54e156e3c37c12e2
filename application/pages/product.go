package pages

import (
	"context"
	"strings"

	"purchase_flow/domain/entities"
)

// SizeChoice selects a size option. Label is preferred; Index (1-based) is
// the positional fallback used only when Label is empty.
type SizeChoice struct {
	Label string
	Index int
}

// ProductPage - result listing plus product detail affordances
type ProductPage struct {
	*Base
	loc  entities.ProductLocators
	size SizeChoice
}

func NewProductPage(base *Base, loc entities.ProductLocators, size SizeChoice) *ProductPage {
	return &ProductPage{
		Base: base,
		loc:  loc,
		size: size,
	}
}

// SelectProduct clicks the first product card of the current results
func (p *ProductPage) SelectProduct(ctx context.Context) error {
	if err := p.Click(ctx, p.loc.ProductCard); err != nil {
		return err
	}
	p.logger.Info("Selected first product")
	return nil
}

// SelectSize picks the configured size
func (p *ProductPage) SelectSize(ctx context.Context) error {
	if p.size.Label != "" {
		return p.SelectSizeByLabel(ctx, p.size.Label)
	}
	return p.SelectSizeAt(ctx, p.size.Index)
}

// SelectSizeByLabel clicks the one size option whose visible text equals label.
// Zero or several matches fail with *entities.NotFoundError.
func (p *ProductPage) SelectSizeByLabel(ctx context.Context, label string) error {
	options, err := p.FindAll(ctx, p.loc.SizeOptions)
	if err != nil {
		return err
	}

	var matches []int
	for i, opt := range options {
		text, err := opt.Text(ctx)
		if err != nil {
			return &entities.ElementInteractionError{Locator: p.loc.SizeOptions, Action: "read text", Err: err}
		}
		if strings.TrimSpace(text) == label {
			matches = append(matches, i)
		}
	}
	if len(matches) != 1 {
		return &entities.NotFoundError{Locator: p.loc.SizeOptions, Label: label, Matches: len(matches)}
	}

	if err := options[matches[0]].Click(ctx); err != nil {
		return &entities.ElementInteractionError{Locator: p.loc.SizeOptions, Action: "click", Err: err}
	}
	p.logger.Infof("Selected size %q", label)
	return nil
}

// SelectSizeAt clicks the size option at a fixed position. A reordered size
// list silently selects a different size.
func (p *ProductPage) SelectSizeAt(ctx context.Context, index int) error {
	p.logger.Warnf("Selecting size by position %d; set a size label to select by text", index)
	if err := p.Click(ctx, p.loc.SizeAt(index)); err != nil {
		return err
	}
	p.logger.Infof("Selected size at position %d", index)
	return nil
}

// AddToCart clicks the add-to-cart control
func (p *ProductPage) AddToCart(ctx context.Context) error {
	if err := p.Click(ctx, p.loc.AddToCart); err != nil {
		return err
	}
	p.logger.Info("Added to cart")
	return nil
}

// GoToCart clicks the cart icon, navigating to the cart view
func (p *ProductPage) GoToCart(ctx context.Context) error {
	if err := p.Click(ctx, p.loc.CartButton); err != nil {
		return err
	}
	p.logger.Info("Navigated to cart")
	return nil
}
