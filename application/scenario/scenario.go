// Package scenario runs the fixed purchase journey over the page objects.
package scenario

import (
	"context"
	"fmt"
	"time"

	"purchase_flow/application/pages"
	"purchase_flow/application/wait"
	"purchase_flow/domain/entities"
	"purchase_flow/domain/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Vars keys written by the scenario
const (
	VarSearchTerm = "search_term"
	VarCartTitles = "cart_titles"
)

// Options parameterizes one purchase scenario
type Options struct {
	BaseURL        string
	Viewport       entities.Viewport
	Timeout        time.Duration
	PollInterval   time.Duration
	SearchTerm     string
	Size           pages.SizeChoice
	ScreenshotPath string
	// VerifyCart requires a cart line whose title contains SearchTerm
	VerifyCart bool
	Locators   entities.Locators
}

// Scenario drives Init → Landed → Searched → ProductSelected → SizeSelected →
// InCart → AtCart → CheckoutStarted → Done with no branching or retries.
type Scenario struct {
	opts        Options
	open        interfaces.SessionFactory
	screenshots interfaces.Screenshots
	logger      logrus.FieldLogger
}

// New - creates a scenario that opens one session per Run
func New(opts Options, open interfaces.SessionFactory, screenshots interfaces.Screenshots, logger logrus.FieldLogger) *Scenario {
	return &Scenario{
		opts:        opts,
		open:        open,
		screenshots: screenshots,
		logger:      logger,
	}
}

type step struct {
	name string
	from entities.State
	to   entities.State
	run  func(ctx context.Context) error
}

type flow struct {
	landing  *pages.LandingPage
	product  *pages.ProductPage
	cart     *pages.CartPage
	checkout *pages.CheckoutPage
}

func (s *Scenario) newFlow(session interfaces.Session, logger logrus.FieldLogger) flow {
	base := pages.NewBase(session, wait.New(session, s.opts.Timeout, s.opts.PollInterval), logger)
	return flow{
		landing:  pages.NewLandingPage(base, s.opts.BaseURL, s.opts.Viewport, s.opts.Locators.Landing),
		product:  pages.NewProductPage(base, s.opts.Locators.Product, s.opts.Size),
		cart:     pages.NewCartPage(base, s.opts.Locators.Cart),
		checkout: pages.NewCheckoutPage(base),
	}
}

func (s *Scenario) steps(f flow, vars entities.StateBag) []step {
	return []step{
		{"visit", entities.StateInit, entities.StateLanded, f.landing.Visit},
		{"search_product", entities.StateLanded, entities.StateSearched, func(ctx context.Context) error {
			vars.Set(VarSearchTerm, s.opts.SearchTerm)
			return f.landing.SearchProduct(ctx, s.opts.SearchTerm)
		}},
		{"select_product", entities.StateSearched, entities.StateProductSelected, f.product.SelectProduct},
		{"select_size", entities.StateProductSelected, entities.StateSizeSelected, f.product.SelectSize},
		{"add_to_cart", entities.StateSizeSelected, entities.StateInCart, f.product.AddToCart},
		{"go_to_cart", entities.StateInCart, entities.StateAtCart, func(ctx context.Context) error {
			if err := f.product.GoToCart(ctx); err != nil {
				return err
			}
			if !s.opts.VerifyCart {
				return nil
			}
			titles, err := f.cart.RequireItem(ctx, s.opts.SearchTerm)
			vars.Set(VarCartTitles, titles)
			return err
		}},
		{"start_checkout", entities.StateAtCart, entities.StateCheckoutStarted, f.checkout.StartCheckout},
		{"finish", entities.StateCheckoutStarted, entities.StateDone, func(context.Context) error { return nil }},
	}
}

// Run executes the scenario once. The session is closed on every path. A
// failing step is captured to the screenshot path and returned as *StepError;
// the report is always non-nil.
func (s *Scenario) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Status:  entities.RunStatusFailed,
		State:   entities.StateInit,
		Visited: []entities.State{entities.StateInit},
		Started: time.Now(),
		Vars:    entities.StateBag{},
	}
	logger := s.logger.WithField("run_id", report.RunID)
	defer func() { report.Duration = time.Since(report.Started) }()

	session, err := s.open(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to open browser session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warnf("Failed to close browser: %v", err)
			return
		}
		logger.Info("Browser closed")
	}()

	for _, st := range s.steps(s.newFlow(session, logger), report.Vars) {
		if st.from != report.State {
			return report, fmt.Errorf("step %s requires state %s, scenario is in %s", st.name, st.from, report.State)
		}
		stepLogger := logger.WithField("state", report.State.String())
		if err := st.run(ctx); err != nil {
			return report, s.fail(ctx, session, report, st, err, stepLogger)
		}
		report.advance(st.to)
		stepLogger.Debugf("Reached %s", st.to)
	}

	report.Status = entities.RunStatusPassed
	logger.Infof("Scenario passed in %s", time.Since(report.Started).Round(time.Millisecond))
	return report, nil
}

// fail captures the diagnostic screenshot and builds the error returned to the caller
func (s *Scenario) fail(ctx context.Context, session interfaces.Session, report *Report, st step, cause error, logger logrus.FieldLogger) error {
	stepErr := &StepError{Step: st.name, State: report.State, Err: cause}

	// The run context may be what failed; the capture still has to happen.
	captureCtx := context.WithoutCancel(ctx)
	png, err := session.Screenshot(captureCtx)
	if err == nil {
		err = s.screenshots.Save(s.opts.ScreenshotPath, png)
	}
	if err != nil {
		stepErr.ScreenshotErr = err
		logger.Warnf("Failed to capture screenshot: %v", err)
	} else {
		stepErr.Screenshot = s.opts.ScreenshotPath
		report.Screenshot = s.opts.ScreenshotPath
	}

	logger.WithError(cause).WithField("screenshot", stepErr.Screenshot).Errorf("Test failed at %s", st.name)
	return stepErr
}
