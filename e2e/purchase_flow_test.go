// Package e2e runs the purchase flow against a real browser and storefront.
// Set PURCHASEFLOW_E2E=1 to enable; the other PURCHASEFLOW_* variables select
// the driver, site and size as for the command.
package e2e

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"purchase_flow/application/pages"
	"purchase_flow/application/scenario"
	"purchase_flow/domain/entities"
	"purchase_flow/infrastructure/browser"
	"purchase_flow/infrastructure/config"
	"purchase_flow/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T) config.Config {
	t.Helper()
	if os.Getenv("PURCHASEFLOW_E2E") != "1" {
		t.Skip("PURCHASEFLOW_E2E=1 not set")
	}
	if err := config.LoadDotEnv(); err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("load .env: %v", err)
	}
	cfg, err := config.Load(os.Getenv("PURCHASEFLOW_CONFIG"))
	require.NoError(t, err)
	cfg.ScreenshotPath = filepath.Join(t.TempDir(), "error.png")
	require.NoError(t, cfg.Validate())
	return cfg
}

func newScenario(t *testing.T, cfg config.Config) *scenario.Scenario {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	open, err := browser.NewFactory(browser.Options{
		Driver:           cfg.Driver,
		Headless:         cfg.Headless,
		SeleniumURL:      cfg.SeleniumURL,
		ChromeDriverPath: cfg.ChromeDriverPath,
		ChromeBinary:     cfg.ChromeBinary,
		BaseURL:          cfg.BaseURL,
		Locators:         cfg.Locators,
	}, logger)
	require.NoError(t, err)

	return scenario.New(scenario.Options{
		BaseURL:        cfg.BaseURL,
		Viewport:       cfg.Viewport,
		Timeout:        cfg.Timeout(),
		PollInterval:   cfg.PollInterval(),
		SearchTerm:     cfg.SearchTerm,
		Size:           pages.SizeChoice{Label: cfg.SizeLabel, Index: cfg.SizeIndex},
		ScreenshotPath: cfg.ScreenshotPath,
		VerifyCart:     cfg.VerifyCart,
		Locators:       cfg.Locators,
	}, open, storage.NewScreenshotStore(""), logger)
}

func TestPurchaseFlow(t *testing.T) {
	cfg := loadConfig(t)

	report, err := newScenario(t, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entities.RunStatusPassed, report.Status)
	assert.Equal(t, entities.StateDone, report.State)
	assert.Empty(t, report.Screenshot)
}

func TestPurchaseFlow_MissingSizeCapturesScreenshot(t *testing.T) {
	cfg := loadConfig(t)
	cfg.SizeLabel = "no such size"

	report, err := newScenario(t, cfg).Run(context.Background())

	var stepErr *scenario.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "select_size", stepErr.Step)
	assert.Equal(t, cfg.ScreenshotPath, report.Screenshot)
	_, statErr := os.Stat(cfg.ScreenshotPath)
	assert.NoError(t, statErr)
}
