// Package config loads run settings from defaults, an optional YAML file,
// an optional .env file and PURCHASEFLOW_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"purchase_flow/domain/entities"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const envPrefix = "PURCHASEFLOW_"

// Driver backends
const (
	DriverSelenium   = "selenium"
	DriverPlaywright = "playwright"
	DriverMemory     = "memory"
)

// Config holds every environment-specific value of a run
type Config struct {
	BaseURL        string            `yaml:"base_url"`
	Viewport       entities.Viewport `yaml:"viewport"`
	TimeoutMS      int               `yaml:"timeout_ms"`
	PollIntervalMS int               `yaml:"poll_interval_ms"`
	SearchTerm     string            `yaml:"search_term"`
	// SizeLabel selects the size option by its visible text. When empty the
	// positional SizeIndex is used instead.
	SizeLabel      string `yaml:"size_label"`
	SizeIndex      int    `yaml:"size_index"`
	ScreenshotPath string `yaml:"screenshot_path"`
	VerifyCart     bool   `yaml:"verify_cart"`

	// Browser backend
	Driver           string `yaml:"driver"`
	Headless         bool   `yaml:"headless"`
	SeleniumURL      string `yaml:"selenium_url"`      // remote WebDriver; empty starts a local chromedriver
	ChromeDriverPath string `yaml:"chromedriver_path"` // BROWSER_DRIVER_PATH
	ChromeBinary     string `yaml:"chrome_binary"`     // CHROME_BINARY_PATH

	LogLevel string         `yaml:"log_level"`
	Locators entities.Locators `yaml:"locators"`
}

// Default returns the settings for the Nike Canada run
func Default() Config {
	return Config{
		BaseURL:        "https://www.nike.com/ca/",
		Viewport:       entities.Viewport{Width: 1918, Height: 1032},
		TimeoutMS:      10000,
		PollIntervalMS: 250,
		SearchTerm:     "jordan",
		SizeIndex:      8,
		ScreenshotPath: "error.png",
		VerifyCart:     true,
		Driver:         DriverSelenium,
		LogLevel:       "info",
		Locators:       entities.DefaultLocators(),
	}
}

// Timeout returns the default wait timeout
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// PollInterval returns the wait polling interval
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// Load builds a config from defaults, the YAML file at path (optional when
// empty) and the environment. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment. A missing file is
// reported as os.ErrNotExist so callers can treat it as optional.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return fmt.Errorf("%w: %s", os.ErrNotExist, pathErr.Path)
		}
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFile overlays the YAML document at path onto c. Keys absent from the
// document keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto c
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var problems []string

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s: not an integer: %q", key, v))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s: not a boolean: %q", key, v))
				return
			}
			*dst = b
		}
	}

	str(envPrefix+"BASE_URL", &c.BaseURL)
	if v, ok := lookup(envPrefix + "VIEWPORT"); ok && v != "" {
		vp, err := ParseViewport(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%sVIEWPORT: %v", envPrefix, err))
		} else {
			c.Viewport = vp
		}
	}
	num(envPrefix+"TIMEOUT_MS", &c.TimeoutMS)
	num(envPrefix+"POLL_INTERVAL_MS", &c.PollIntervalMS)
	str(envPrefix+"SEARCH_TERM", &c.SearchTerm)
	str(envPrefix+"SIZE_LABEL", &c.SizeLabel)
	num(envPrefix+"SIZE_INDEX", &c.SizeIndex)
	str(envPrefix+"SCREENSHOT_PATH", &c.ScreenshotPath)
	flag(envPrefix+"VERIFY_CART", &c.VerifyCart)
	str(envPrefix+"DRIVER", &c.Driver)
	flag(envPrefix+"HEADLESS", &c.Headless)
	str(envPrefix+"SELENIUM_URL", &c.SeleniumURL)
	str("BROWSER_DRIVER_PATH", &c.ChromeDriverPath)
	str("CHROME_BINARY_PATH", &c.ChromeBinary)
	str(envPrefix+"LOG_LEVEL", &c.LogLevel)

	if len(problems) > 0 {
		return &ValidationError{Errors: problems}
	}
	return nil
}

// ParseViewport parses "WIDTHxHEIGHT"
func ParseViewport(s string) (entities.Viewport, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return entities.Viewport{}, fmt.Errorf("viewport %q is not WIDTHxHEIGHT", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return entities.Viewport{}, fmt.Errorf("viewport width %q: %w", w, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return entities.Viewport{}, fmt.Errorf("viewport height %q: %w", h, err)
	}
	return entities.Viewport{Width: width, Height: height}, nil
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks every option and reports all problems at once
func (c Config) Validate() error {
	var problems []string

	if u, err := url.Parse(c.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("base_url must be an absolute http(s) URL, got %q", c.BaseURL))
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		problems = append(problems, fmt.Sprintf("viewport must be positive, got %s", c.Viewport))
	}
	if c.TimeoutMS <= 0 {
		problems = append(problems, "timeout_ms must be positive")
	}
	if c.PollIntervalMS <= 0 {
		problems = append(problems, "poll_interval_ms must be positive")
	} else if c.TimeoutMS > 0 && c.PollIntervalMS > c.TimeoutMS {
		problems = append(problems, "poll_interval_ms must not exceed timeout_ms")
	}
	if strings.TrimSpace(c.SearchTerm) == "" {
		problems = append(problems, "search_term is required")
	}
	if c.SizeLabel == "" && c.SizeIndex < 1 {
		problems = append(problems, "size_label or a size_index of at least 1 is required")
	}
	if c.ScreenshotPath == "" {
		problems = append(problems, "screenshot_path is required")
	}
	switch c.Driver {
	case DriverSelenium, DriverPlaywright, DriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("driver must be one of %s, %s, %s; got %q", DriverSelenium, DriverPlaywright, DriverMemory, c.Driver))
	}
	if c.SeleniumURL != "" {
		if u, err := url.Parse(c.SeleniumURL); err != nil || u.Host == "" {
			problems = append(problems, fmt.Sprintf("selenium_url is not a valid URL: %q", c.SeleniumURL))
		}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("log_level: %v", err))
	}
	problems = append(problems, c.Locators.Validate()...)

	if len(problems) > 0 {
		return &ValidationError{Errors: problems}
	}
	return nil
}
