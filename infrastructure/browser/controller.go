package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"purchase_flow/domain/entities"
	"purchase_flow/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

const (
	navigationTimeoutMS = 30000
	actionTimeoutMS     = 5000
)

// PlaywrightController drives Chromium through playwright
type PlaywrightController struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	logger  logrus.FieldLogger

	// generation counts main-frame navigations; handles from an older generation are stale
	generation atomic.Int64
}

// NewPlaywrightController - launches Chromium with a fresh context and page
func NewPlaywrightController(opts Options, logger logrus.FieldLogger) (*PlaywrightController, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	}
	if opts.ChromeBinary != "" {
		launch.ExecutablePath = playwright.String(opts.ChromeBinary)
	}

	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	controller := &PlaywrightController{
		pw:      pw,
		browser: browser,
		context: context,
		page:    page,
		logger:  logger,
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		dialog.Accept()
	})
	page.OnFrameNavigated(func(frame playwright.Frame) {
		if frame == page.MainFrame() {
			controller.generation.Add(1)
		}
	})

	return controller, nil
}

// Navigate - navigates to the specified URL
func (b *PlaywrightController) Navigate(ctx context.Context, url string) error {
	b.logger.Debugf("Navigating to: %s", url)
	_, err := b.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navigationTimeoutMS),
	})
	return err
}

// SetViewport - resizes the page viewport
func (b *PlaywrightController) SetViewport(ctx context.Context, width, height int) error {
	return b.page.SetViewportSize(width, height)
}

// FindElement - resolves the first match of loc
func (b *PlaywrightController) FindElement(ctx context.Context, loc entities.Locator) (interfaces.Element, error) {
	selector, err := playwrightSelector(loc)
	if err != nil {
		return nil, err
	}
	locator := b.page.Locator(selector)
	n, err := locator.Count()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", entities.ErrElementNotFound, loc)
	}
	return b.element(loc, locator.First()), nil
}

// FindElements - resolves every match of loc
func (b *PlaywrightController) FindElements(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	selector, err := playwrightSelector(loc)
	if err != nil {
		return nil, err
	}
	locator := b.page.Locator(selector)
	n, err := locator.Count()
	if err != nil {
		return nil, err
	}
	out := make([]interfaces.Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, b.element(loc, locator.Nth(i)))
	}
	return out, nil
}

func (b *PlaywrightController) element(loc entities.Locator, locator playwright.Locator) *playwrightElement {
	return &playwrightElement{
		ctrl:    b,
		loc:     loc,
		locator: locator,
		gen:     b.generation.Load(),
	}
}

// CurrentURL - returns the current page URL
func (b *PlaywrightController) CurrentURL(ctx context.Context) (string, error) {
	return b.page.URL(), nil
}

// Screenshot - captures the viewport as PNG
func (b *PlaywrightController) Screenshot(ctx context.Context) ([]byte, error) {
	return b.page.Screenshot()
}

// Close - closes the browser and stops the playwright driver
func (b *PlaywrightController) Close() error {
	var errs []error
	if err := b.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	if err := b.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop playwright: %w", err))
	}
	return errors.Join(errs...)
}

// playwrightSelector maps a locator onto a playwright selector engine
func playwrightSelector(loc entities.Locator) (string, error) {
	switch loc.By {
	case entities.ByCSS, entities.ByTag:
		return "css=" + loc.Value, nil
	case entities.ByXPath:
		return "xpath=" + loc.Value, nil
	case entities.ByID:
		return "id=" + loc.Value, nil
	case entities.ByName:
		return "css=[name=" + strconv.Quote(loc.Value) + "]", nil
	case entities.ByLinkText:
		return "css=a >> text=" + strconv.Quote(loc.Value), nil
	}
	return "", fmt.Errorf("unsupported locator strategy %q", loc.By)
}

type playwrightElement struct {
	ctrl    *PlaywrightController
	loc     entities.Locator
	locator playwright.Locator
	gen     int64
}

func (e *playwrightElement) live() error {
	if e.gen != e.ctrl.generation.Load() {
		return fmt.Errorf("%w: %s", entities.ErrStaleElement, e.loc)
	}
	return nil
}

func (e *playwrightElement) Click(ctx context.Context) error {
	if err := e.live(); err != nil {
		return err
	}
	return e.locator.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(actionTimeoutMS)})
}

func (e *playwrightElement) Clear(ctx context.Context) error {
	if err := e.live(); err != nil {
		return err
	}
	return e.locator.Clear(playwright.LocatorClearOptions{Timeout: playwright.Float(actionTimeoutMS)})
}

func (e *playwrightElement) SendKeys(ctx context.Context, text string) error {
	if err := e.live(); err != nil {
		return err
	}
	return e.locator.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{Timeout: playwright.Float(actionTimeoutMS)})
}

// PressKey relies on entities.Key values matching playwright key names
func (e *playwrightElement) PressKey(ctx context.Context, key entities.Key) error {
	if err := e.live(); err != nil {
		return err
	}
	return e.locator.Press(string(key), playwright.LocatorPressOptions{Timeout: playwright.Float(actionTimeoutMS)})
}

func (e *playwrightElement) Text(ctx context.Context) (string, error) {
	if err := e.live(); err != nil {
		return "", err
	}
	return e.locator.InnerText()
}

func (e *playwrightElement) Value(ctx context.Context) (string, error) {
	if err := e.live(); err != nil {
		return "", err
	}
	return e.locator.InputValue()
}

func (e *playwrightElement) IsDisplayed(ctx context.Context) (bool, error) {
	if err := e.live(); err != nil {
		return false, err
	}
	return e.locator.IsVisible()
}

func (e *playwrightElement) IsEnabled(ctx context.Context) (bool, error) {
	if err := e.live(); err != nil {
		return false, err
	}
	return e.locator.IsEnabled()
}

var _ interfaces.Session = (*PlaywrightController)(nil)
