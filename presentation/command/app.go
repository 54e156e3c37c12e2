// Package command is the process surface: flag parsing, logger setup and one scenario run.
package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"purchase_flow/application/pages"
	"purchase_flow/application/scenario"
	"purchase_flow/infrastructure/browser"
	"purchase_flow/infrastructure/config"
	"purchase_flow/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var version = "0.1.0"

// NewApp returns the purchaseflow command
func NewApp() *cli.App {
	return &cli.App{
		Name:    "purchaseflow",
		Usage:   "Run the storefront purchase flow end to end",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file", EnvVars: []string{"PURCHASEFLOW_CONFIG"}},
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "optional dotenv file"},
			&cli.StringFlag{Name: "driver", Usage: "browser backend: selenium, playwright or memory"},
			&cli.StringFlag{Name: "base-url", Usage: "storefront root URL"},
			&cli.StringFlag{Name: "search", Usage: "search term"},
			&cli.StringFlag{Name: "size-label", Usage: "visible text of the size option to select"},
			&cli.IntFlag{Name: "size-index", Usage: "1-based size position, used when no size label is set"},
			&cli.StringFlag{Name: "screenshot", Usage: "diagnostic screenshot path"},
			&cli.IntFlag{Name: "timeout-ms", Usage: "default wait timeout in milliseconds"},
			&cli.BoolFlag{Name: "headless", Usage: "run the browser without a window"},
			&cli.BoolFlag{Name: "no-verify-cart", Usage: "skip the cart contents check"},
			&cli.StringFlag{Name: "log-level", Usage: "logrus level"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}, Usage: "debug logging"},
		},
		Action: run,
	}
}

func newLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger
}

func run(c *cli.Context) error {
	out := c.App.ErrWriter
	if out == nil {
		out = os.Stderr
	}
	logger := newLogger(out)

	envFile := c.String("env-file")
	dotEnvMissing := false
	if err := config.LoadDotEnv(envFile); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		dotEnvMissing = true
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logrus.ParseLevel(cfg.LogLevel)
	if c.Bool("verbose") {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	if dotEnvMissing {
		logger.Debugf("No env file at %s, using environment variables", envFile)
	}

	factory, err := browser.NewFactory(browserOptions(cfg), logger)
	if err != nil {
		return err
	}
	sc := scenario.New(scenarioOptions(cfg), factory, storage.NewScreenshotStore(""), logger)

	report, err := sc.Run(c.Context)
	logger.WithFields(logrus.Fields{
		"run_id":   report.RunID,
		"status":   report.Status,
		"state":    report.State.String(),
		"duration": report.Duration.Round(time.Millisecond).String(),
	}).Info("Scenario finished")
	if err != nil {
		return fmt.Errorf("scenario %s failed: %w", report.RunID, err)
	}
	return nil
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("driver") {
		cfg.Driver = c.String("driver")
	}
	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("search") {
		cfg.SearchTerm = c.String("search")
	}
	if c.IsSet("size-label") {
		cfg.SizeLabel = c.String("size-label")
	}
	if c.IsSet("size-index") {
		cfg.SizeIndex = c.Int("size-index")
	}
	if c.IsSet("screenshot") {
		cfg.ScreenshotPath = c.String("screenshot")
	}
	if c.IsSet("timeout-ms") {
		cfg.TimeoutMS = c.Int("timeout-ms")
	}
	if c.IsSet("headless") {
		cfg.Headless = c.Bool("headless")
	}
	if c.Bool("no-verify-cart") {
		cfg.VerifyCart = false
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
}

func browserOptions(cfg config.Config) browser.Options {
	return browser.Options{
		Driver:           cfg.Driver,
		Headless:         cfg.Headless,
		SeleniumURL:      cfg.SeleniumURL,
		ChromeDriverPath: cfg.ChromeDriverPath,
		ChromeBinary:     cfg.ChromeBinary,
		BaseURL:          cfg.BaseURL,
		Locators:         cfg.Locators,
	}
}

func scenarioOptions(cfg config.Config) scenario.Options {
	return scenario.Options{
		BaseURL:        cfg.BaseURL,
		Viewport:       cfg.Viewport,
		Timeout:        cfg.Timeout(),
		PollInterval:   cfg.PollInterval(),
		SearchTerm:     cfg.SearchTerm,
		Size:           pages.SizeChoice{Label: cfg.SizeLabel, Index: cfg.SizeIndex},
		ScreenshotPath: cfg.ScreenshotPath,
		VerifyCart:     cfg.VerifyCart,
		Locators:       cfg.Locators,
	}
}
