package entities

import (
	"fmt"
	"strings"
)

// LandingLocators - elements used by the landing page
type LandingLocators struct {
	SearchContainer Locator `yaml:"search_container"`
	SearchInput     Locator `yaml:"search_input"`
}

// ProductLocators - elements used on the result listing and product detail pages
type ProductLocators struct {
	ProductCard Locator `yaml:"product_card"`
	// SizeOptions matches every size option; used for label lookup
	SizeOptions Locator `yaml:"size_options"`
	// SizeOptionAt is a template whose value holds one %d, the 1-based position
	SizeOptionAt Locator `yaml:"size_option_at"`
	AddToCart    Locator `yaml:"add_to_cart"`
	CartButton   Locator `yaml:"cart_button"`
}

// SizeAt returns the positional size locator for the i-th option (1-based)
func (l ProductLocators) SizeAt(i int) Locator {
	return Locator{By: l.SizeOptionAt.By, Value: fmt.Sprintf(l.SizeOptionAt.Value, i)}
}

// CartLocators - elements used on the cart view
type CartLocators struct {
	ItemTitle Locator `yaml:"item_title"`
}

// Locators groups every page object's locators so they can be overridden from config
type Locators struct {
	Landing LandingLocators `yaml:"landing"`
	Product ProductLocators `yaml:"product"`
	Cart    CartLocators    `yaml:"cart"`
}

// DefaultLocators returns the selectors for the live storefront
func DefaultLocators() Locators {
	return Locators{
		Landing: LandingLocators{
			SearchContainer: CSS(".search-input-container"),
			SearchInput:     ID("gn-search-input"),
		},
		Product: ProductLocators{
			ProductCard:  CSS(".product-card:nth-child(1) .product-card__hero-image"),
			SizeOptions:  CSS(".css-vmnznv > .u-full-width"),
			SizeOptionAt: CSS(".css-vmnznv:nth-child(%d) > .u-full-width"),
			AddToCart:    CSS(".mb3-sm"),
			CartButton:   CSS(".css-7jsinp"),
		},
		Cart: CartLocators{
			ItemTitle: CSS("[data-automation='cart-item-product-name']"),
		},
	}
}

// Validate returns one message per unusable locator
func (l Locators) Validate() []string {
	var problems []string
	check := func(name string, loc Locator) {
		if err := loc.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("locators.%s: %v", name, err))
		}
	}

	check("landing.search_container", l.Landing.SearchContainer)
	check("landing.search_input", l.Landing.SearchInput)
	check("product.product_card", l.Product.ProductCard)
	check("product.size_options", l.Product.SizeOptions)
	check("product.size_option_at", l.Product.SizeOptionAt)
	check("product.add_to_cart", l.Product.AddToCart)
	check("product.cart_button", l.Product.CartButton)
	check("cart.item_title", l.Cart.ItemTitle)

	// SizeAt formats the value, so %d must be its only verb
	if v := l.Product.SizeOptionAt.Value; strings.Count(v, "%d") != 1 || strings.Count(v, "%") != 1 {
		problems = append(problems, "locators.product.size_option_at: value must contain exactly one %d and no other %")
	}
	return problems
}
