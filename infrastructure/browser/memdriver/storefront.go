package memdriver

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"purchase_flow/domain/entities"
)

// Product is one catalog entry of the scripted storefront
type Product struct {
	Title string
	Sizes []string
}

// CartLine is one item added to the storefront's cart
type CartLine struct {
	Title string
	Size  string
}

// DefaultCatalog returns a small catalog with mixed search hits
func DefaultCatalog() []Product {
	sizes := []string{"M 4 / W 5.5", "M 5 / W 6.5", "M 6 / W 7.5", "M 7 / W 8.5", "M 8 / W 9.5",
		"M 9 / W 10.5", "M 10 / W 11.5", "M 11 / W 12.5", "M 12 / W 13.5", "M 13 / W 14.5"}
	return []Product{
		{Title: "Air Jordan 1 Low", Sizes: sizes},
		{Title: "Jordan Stay Loyal 3", Sizes: sizes},
		{Title: "Nike Air Max 90", Sizes: sizes},
	}
}

// Storefront scripts a retail site onto a Session using the configured locators:
// landing page with a collapsible search, a result listing, product pages with
// size options and a cart view.
type Storefront struct {
	baseURL  string
	loc      entities.Locators
	products []Product
	session  *Session

	mu   sync.Mutex
	cart []CartLine
}

// NewStorefront - creates a storefront served at baseURL
func NewStorefront(baseURL string, loc entities.Locators, products []Product) *Storefront {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	f := &Storefront{
		baseURL:  baseURL,
		loc:      loc,
		products: products,
		session:  New(),
	}
	f.session.OnNavigate = f.route
	return f
}

// Session returns the browser session bound to this storefront
func (f *Storefront) Session() *Session {
	return f.session
}

// Cart returns a copy of the cart contents
func (f *Storefront) Cart() []CartLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CartLine(nil), f.cart...)
}

// SearchURL returns the listing URL for query
func (f *Storefront) SearchURL(query string) string {
	return f.baseURL + "w?q=" + url.QueryEscape(query)
}

func (f *Storefront) route(ctx context.Context, s *Session, rawURL string) error {
	if !strings.HasPrefix(rawURL, f.baseURL) && rawURL+"/" != f.baseURL {
		return fmt.Errorf("host unreachable: %s", rawURL)
	}
	rel := strings.TrimPrefix(rawURL, f.baseURL)

	switch {
	case rel == "" || rawURL+"/" == f.baseURL:
		f.landing(s)
	case strings.HasPrefix(rel, "w?q="):
		q, err := url.QueryUnescape(strings.TrimPrefix(rel, "w?q="))
		if err != nil {
			return fmt.Errorf("bad search query: %w", err)
		}
		f.results(s, q)
	case strings.HasPrefix(rel, "t/"):
		idx, err := strconv.Atoi(strings.TrimPrefix(rel, "t/"))
		if err != nil || idx < 0 || idx >= len(f.products) {
			return fmt.Errorf("404 not found: %s", rawURL)
		}
		f.product(s, f.products[idx])
	case rel == "cart":
		f.cartView(s)
	default:
		return fmt.Errorf("404 not found: %s", rawURL)
	}
	f.header(s)
	return nil
}

func (f *Storefront) header(s *Session) {
	s.Put(f.loc.Product.CartButton, &Element{
		Text: "Bag",
		OnClick: func(ctx context.Context) error {
			return s.Navigate(ctx, f.baseURL+"cart")
		},
	})
}

func (f *Storefront) landing(s *Session) {
	input := &Element{Hidden: true}
	input.OnKey = func(ctx context.Context, key entities.Key) error {
		if key != entities.KeyEnter {
			return nil
		}
		var query string
		s.Update(func() { query = input.Value })
		return s.Navigate(ctx, f.SearchURL(query))
	}
	container := &Element{
		OnClick: func(ctx context.Context) error {
			s.Update(func() { input.Hidden = false })
			return nil
		},
	}
	s.Put(f.loc.Landing.SearchContainer, container)
	s.Put(f.loc.Landing.SearchInput, input)
}

func (f *Storefront) results(s *Session, query string) {
	needle := strings.ToLower(query)
	for i, p := range f.products {
		if !strings.Contains(strings.ToLower(p.Title), needle) {
			continue
		}
		target := f.baseURL + "t/" + strconv.Itoa(i)
		s.Put(f.loc.Product.ProductCard, &Element{
			Text: p.Title,
			OnClick: func(ctx context.Context) error {
				return s.Navigate(ctx, target)
			},
		})
		// The card locator addresses the first result only.
		return
	}
}

func (f *Storefront) product(s *Session, p Product) {
	var selected string
	add := &Element{Text: "Add to Bag", Disabled: true}
	add.OnClick = func(ctx context.Context) error {
		var size string
		s.Update(func() { size = selected })
		f.mu.Lock()
		f.cart = append(f.cart, CartLine{Title: p.Title, Size: size})
		f.mu.Unlock()
		return nil
	}

	for i, size := range p.Sizes {
		size := size
		opt := &Element{
			Text: size,
			OnClick: func(ctx context.Context) error {
				s.Update(func() {
					selected = size
					add.Disabled = false
				})
				return nil
			},
		}
		s.Put(f.loc.Product.SizeOptions, opt)
		s.Put(f.loc.Product.SizeAt(i+1), opt)
	}
	s.Put(f.loc.Product.AddToCart, add)
}

func (f *Storefront) cartView(s *Session) {
	for _, line := range f.Cart() {
		s.Put(f.loc.Cart.ItemTitle, &Element{Text: line.Title})
	}
}
