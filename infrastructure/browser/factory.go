package browser

import (
	"context"
	"fmt"

	"purchase_flow/domain/entities"
	"purchase_flow/domain/interfaces"
	"purchase_flow/infrastructure/browser/memdriver"

	"github.com/sirupsen/logrus"
)

// Backend names accepted by NewFactory
const (
	BackendSelenium   = "selenium"
	BackendPlaywright = "playwright"
	BackendMemory     = "memory"
)

// Options configures how sessions are opened
type Options struct {
	Driver           string
	Headless         bool
	SeleniumURL      string
	ChromeDriverPath string
	ChromeBinary     string

	// BaseURL and Locators shape the scripted storefront of the memory backend
	BaseURL  string
	Locators entities.Locators
}

// NewFactory returns a factory opening one independent session per call
func NewFactory(opts Options, logger logrus.FieldLogger) (interfaces.SessionFactory, error) {
	switch opts.Driver {
	case BackendSelenium, "":
		return func(ctx context.Context) (interfaces.Session, error) {
			return NewSeleniumController(opts, logger)
		}, nil
	case BackendPlaywright:
		return func(ctx context.Context) (interfaces.Session, error) {
			return NewPlaywrightController(opts, logger)
		}, nil
	case BackendMemory:
		return func(ctx context.Context) (interfaces.Session, error) {
			logger.Info("Using in-memory storefront")
			return memdriver.NewStorefront(opts.BaseURL, opts.Locators, memdriver.DefaultCatalog()).Session(), nil
		}, nil
	}
	return nil, fmt.Errorf("unknown browser driver %q", opts.Driver)
}
