package pages

import "context"

// CheckoutPage is the extension point for checkout steps
type CheckoutPage struct {
	*Base
}

func NewCheckoutPage(base *Base) *CheckoutPage {
	return &CheckoutPage{Base: base}
}

// StartCheckout only records intent; no checkout step is driven yet
func (p *CheckoutPage) StartCheckout(ctx context.Context) error {
	p.logger.Info("Checkout process started")
	return nil
}
