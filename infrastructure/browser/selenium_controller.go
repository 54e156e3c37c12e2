package browser

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"purchase_flow/domain/entities"
	"purchase_flow/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

// SeleniumController drives Chrome over the WebDriver protocol
type SeleniumController struct {
	wd      selenium.WebDriver
	service *selenium.Service
	logger  logrus.FieldLogger
}

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
		return "", fmt.Errorf("chromedriver not found at %s", configured)
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("chromedriver not found. Please install it or set BROWSER_DRIVER_PATH environment variable")
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}

// freePort asks the kernel for an unused TCP port so concurrent runs get their own chromedriver
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func chromeArgs(headless bool) []string {
	args := []string{
		"--start-maximized",
		"--disable-blink-features=AutomationControlled",
		"--disable-dev-shm-usage",
		"--no-sandbox",
	}
	if headless {
		args = append(args, "--headless=new")
	}
	return args
}

// NewSeleniumController - starts a browser through chromedriver, or attaches to
// the remote WebDriver at opts.SeleniumURL
func NewSeleniumController(opts Options, logger logrus.FieldLogger) (*SeleniumController, error) {
	caps := selenium.Capabilities{
		"browserName": "chrome",
	}
	chromeCaps := chrome.Capabilities{
		Args: chromeArgs(opts.Headless),
	}

	remoteURL := opts.SeleniumURL
	var service *selenium.Service
	if remoteURL == "" {
		driverPath, err := findChromeDriver(opts.ChromeDriverPath)
		if err != nil {
			return nil, fmt.Errorf("failed to find chromedriver: %w", err)
		}
		logger.Infof("Using ChromeDriver at: %s", driverPath)

		if chromeBinary := findChromeBinary(opts.ChromeBinary); chromeBinary != "" {
			logger.Infof("Using Chrome binary at: %s", chromeBinary)
			chromeCaps.Path = chromeBinary
		}

		port, err := freePort()
		if err != nil {
			return nil, fmt.Errorf("failed to pick chromedriver port: %w", err)
		}
		service, err = selenium.NewChromeDriverService(driverPath, port)
		if err != nil {
			return nil, fmt.Errorf("failed to start chromedriver: %w", err)
		}
		remoteURL = fmt.Sprintf("http://localhost:%d/wd/hub", port)
	} else {
		logger.Infof("Using remote WebDriver at: %s", remoteURL)
	}

	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, remoteURL)
	if err != nil {
		if service != nil {
			service.Stop()
		}
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found. Please install Google Chrome or set CHROME_BINARY_PATH environment variable. Error: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	return &SeleniumController{
		wd:      wd,
		service: service,
		logger:  logger,
	}, nil
}

// Navigate - navigates browser to specified URL
func (s *SeleniumController) Navigate(ctx context.Context, url string) error {
	s.logger.Debugf("Navigating to: %s", url)
	return s.wd.Get(url)
}

// SetViewport - resizes the current window
func (s *SeleniumController) SetViewport(ctx context.Context, width, height int) error {
	return s.wd.ResizeWindow("", width, height)
}

// FindElement - finds the first element matching loc
func (s *SeleniumController) FindElement(ctx context.Context, loc entities.Locator) (interfaces.Element, error) {
	by, err := seleniumBy(loc.By)
	if err != nil {
		return nil, err
	}
	el, err := s.wd.FindElement(by, loc.Value)
	if err != nil {
		return nil, mapSeleniumError(err)
	}
	return &seleniumElement{el: el}, nil
}

// FindElements - finds every element matching loc
func (s *SeleniumController) FindElements(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	by, err := seleniumBy(loc.By)
	if err != nil {
		return nil, err
	}
	els, err := s.wd.FindElements(by, loc.Value)
	if err != nil {
		if errors.Is(mapSeleniumError(err), entities.ErrElementNotFound) {
			return nil, nil
		}
		return nil, mapSeleniumError(err)
	}
	out := make([]interfaces.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &seleniumElement{el: el})
	}
	return out, nil
}

// CurrentURL - returns current page URL
func (s *SeleniumController) CurrentURL(ctx context.Context) (string, error) {
	return s.wd.CurrentURL()
}

// Screenshot - takes screenshot of current page
func (s *SeleniumController) Screenshot(ctx context.Context) ([]byte, error) {
	return s.wd.Screenshot()
}

// Close - closes browser and stops ChromeDriver service
func (s *SeleniumController) Close() error {
	var errs []error
	if s.wd != nil {
		if err := s.wd.Quit(); err != nil {
			errs = append(errs, fmt.Errorf("quit webdriver: %w", err))
		}
	}
	if s.service != nil {
		if err := s.service.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop chromedriver: %w", err))
		}
	}
	return errors.Join(errs...)
}

func seleniumBy(s entities.Strategy) (string, error) {
	switch s {
	case entities.ByID:
		return selenium.ByID, nil
	case entities.ByCSS:
		return selenium.ByCSSSelector, nil
	case entities.ByXPath:
		return selenium.ByXPATH, nil
	case entities.ByName:
		return selenium.ByName, nil
	case entities.ByLinkText:
		return selenium.ByLinkText, nil
	case entities.ByTag:
		return selenium.ByTagName, nil
	}
	return "", fmt.Errorf("unsupported locator strategy %q", s)
}

// mapSeleniumError translates WebDriver error codes into the entity sentinels
func mapSeleniumError(err error) error {
	var wdErr *selenium.Error
	if !errors.As(err, &wdErr) {
		return err
	}
	switch wdErr.Err {
	case "no such element":
		return fmt.Errorf("%w: %s", entities.ErrElementNotFound, wdErr.Message)
	case "stale element reference":
		return fmt.Errorf("%w: %s", entities.ErrStaleElement, wdErr.Message)
	}
	return err
}

func seleniumKey(k entities.Key) (string, error) {
	switch k {
	case entities.KeyEnter:
		return selenium.EnterKey, nil
	case entities.KeyTab:
		return selenium.TabKey, nil
	}
	return "", fmt.Errorf("unsupported key %q", k)
}

type seleniumElement struct {
	el selenium.WebElement
}

func (e *seleniumElement) Click(ctx context.Context) error {
	return mapSeleniumError(e.el.Click())
}

func (e *seleniumElement) Clear(ctx context.Context) error {
	return mapSeleniumError(e.el.Clear())
}

func (e *seleniumElement) SendKeys(ctx context.Context, text string) error {
	return mapSeleniumError(e.el.SendKeys(text))
}

func (e *seleniumElement) PressKey(ctx context.Context, key entities.Key) error {
	k, err := seleniumKey(key)
	if err != nil {
		return err
	}
	return mapSeleniumError(e.el.SendKeys(k))
}

func (e *seleniumElement) Text(ctx context.Context) (string, error) {
	text, err := e.el.Text()
	return text, mapSeleniumError(err)
}

func (e *seleniumElement) Value(ctx context.Context) (string, error) {
	v, err := e.el.GetAttribute("value")
	return v, mapSeleniumError(err)
}

func (e *seleniumElement) IsDisplayed(ctx context.Context) (bool, error) {
	ok, err := e.el.IsDisplayed()
	return ok, mapSeleniumError(err)
}

func (e *seleniumElement) IsEnabled(ctx context.Context) (bool, error) {
	ok, err := e.el.IsEnabled()
	return ok, mapSeleniumError(err)
}

// Ensure SeleniumController implements Session interface
var _ interfaces.Session = (*SeleniumController)(nil)
