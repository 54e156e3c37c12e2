package interfaces

import (
	"context"

	"purchase_flow/domain/entities"
)

// Session is one running browser instance under automation control.
// A Session is owned by a single scenario run and is not shared.
type Session interface {
	// Navigate loads url in the current tab
	Navigate(ctx context.Context, url string) error

	// SetViewport resizes the browser viewport
	SetViewport(ctx context.Context, width, height int) error

	// FindElement returns the first element matching loc, or an error
	// wrapping entities.ErrElementNotFound
	FindElement(ctx context.Context, loc entities.Locator) (Element, error)

	// FindElements returns all elements matching loc; no match is not an error
	FindElements(ctx context.Context, loc entities.Locator) ([]Element, error)

	// CurrentURL returns the current page URL
	CurrentURL(ctx context.Context) (string, error)

	// Screenshot captures the current viewport as PNG
	Screenshot(ctx context.Context) ([]byte, error)

	// Close tears the browser down
	Close() error
}

// Element is a transient handle to a DOM element. It is valid only until the
// next navigation; afterwards calls fail with entities.ErrStaleElement.
type Element interface {
	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	PressKey(ctx context.Context, key entities.Key) error
	Text(ctx context.Context) (string, error)
	Value(ctx context.Context) (string, error)
	IsDisplayed(ctx context.Context) (bool, error)
	IsEnabled(ctx context.Context) (bool, error)
}

// SessionFactory opens a new browser session
type SessionFactory func(ctx context.Context) (Session, error)

// Screenshots persists diagnostic screenshots
type Screenshots interface {
	// Save writes png to path, replacing any existing file
	Save(path string, png []byte) error
}
