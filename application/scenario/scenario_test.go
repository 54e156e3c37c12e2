package scenario_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"purchase_flow/application/pages"
	"purchase_flow/application/scenario"
	"purchase_flow/domain/entities"
	"purchase_flow/domain/interfaces"
	"purchase_flow/infrastructure/browser/memdriver"
	"purchase_flow/infrastructure/storage"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const baseURL = "https://shop.test/ca/"

// countingScreenshots records every Save on top of the file store
type countingScreenshots struct {
	mu    sync.Mutex
	next  interfaces.Screenshots
	paths []string
}

func (c *countingScreenshots) Save(path string, png []byte) error {
	c.mu.Lock()
	c.paths = append(c.paths, path)
	c.mu.Unlock()
	return c.next.Save(path, png)
}

func options(screenshot string) scenario.Options {
	return scenario.Options{
		BaseURL:        baseURL,
		Viewport:       entities.Viewport{Width: 1918, Height: 1032},
		Timeout:        50 * time.Millisecond,
		PollInterval:   5 * time.Millisecond,
		SearchTerm:     "jordan",
		Size:           pages.SizeChoice{Index: 8},
		ScreenshotPath: screenshot,
		VerifyCart:     true,
		Locators:       entities.DefaultLocators(),
	}
}

type harness struct {
	store *memdriver.Storefront
	shots *countingScreenshots
	logs  *logtest.Hook
	sc    *scenario.Scenario
}

func newHarness(opts scenario.Options, dir string, tweak func(*memdriver.Session)) *harness {
	h := &harness{
		store: memdriver.NewStorefront(baseURL, entities.DefaultLocators(), memdriver.DefaultCatalog()),
		shots: &countingScreenshots{next: storage.NewScreenshotStore(dir)},
	}
	if tweak != nil {
		tweak(h.store.Session())
	}
	logger, hook := logtest.NewNullLogger()
	h.logs = hook
	open := func(ctx context.Context) (interfaces.Session, error) {
		return h.store.Session(), nil
	}
	h.sc = scenario.New(opts, open, h.shots, logger)
	return h
}

var allStates = []entities.State{
	entities.StateInit, entities.StateLanded, entities.StateSearched, entities.StateProductSelected,
	entities.StateSizeSelected, entities.StateInCart, entities.StateAtCart, entities.StateCheckoutStarted,
	entities.StateDone,
}

func TestRun_PurchaseFlowReachesCart(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(options("error.png"), dir, nil)

	report, err := h.sc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.RunStatusPassed, report.Status)
	assert.Equal(t, entities.StateDone, report.State)
	assert.Equal(t, allStates, report.Visited)
	assert.NotEmpty(t, report.RunID)
	assert.Empty(t, report.Screenshot)
	assert.Empty(t, h.shots.paths)
	assert.True(t, h.store.Session().Closed())

	var found bool
	for _, line := range h.store.Cart() {
		if strings.Contains(strings.ToLower(line.Title), "jordan") {
			found = true
		}
	}
	assert.True(t, found, "cart %v has no jordan item", h.store.Cart())

	assert.Equal(t, "jordan", report.Vars.String(scenario.VarSearchTerm))
	titles, ok := report.Vars.Get(scenario.VarCartTitles)
	require.True(t, ok)
	assert.Equal(t, []string{"Air Jordan 1 Low"}, titles)

	_, err = os.Stat(filepath.Join(dir, "error.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_SizeTimeoutFailsAndCaptures(t *testing.T) {
	dir := t.TempDir()
	opts := options("artifacts/error.png")
	opts.Locators.Product.SizeOptionAt = entities.CSS(".does-not-exist:nth-child(%d)")
	h := newHarness(opts, dir, nil)

	report, err := h.sc.Run(context.Background())
	require.Error(t, err)

	var stepErr *scenario.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "select_size", stepErr.Step)
	assert.Equal(t, entities.StateProductSelected, stepErr.State)
	assert.True(t, entities.IsTimeout(err))

	assert.Equal(t, entities.RunStatusFailed, report.Status)
	assert.Equal(t, entities.StateProductSelected, report.State)
	assert.Equal(t, "artifacts/error.png", report.Screenshot)
	assert.Equal(t, []string{"artifacts/error.png"}, h.shots.paths)

	info, err := os.Stat(filepath.Join(dir, "artifacts", "error.png"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.True(t, h.store.Session().Closed())
	assert.Empty(t, h.store.Cart())
}

// breakStep makes exactly one step fail
func breakStep(step int, opts *scenario.Options) func(*memdriver.Session) {
	missing := entities.CSS(".injected-failure")
	switch step {
	case 0:
		return func(s *memdriver.Session) { s.NavigateErr = errors.New("net::ERR_CONNECTION_RESET") }
	case 1:
		opts.Locators.Landing.SearchContainer = missing
	case 2:
		opts.Locators.Product.ProductCard = missing
	case 3:
		opts.Locators.Product.SizeOptionAt = entities.CSS(".injected-failure:nth-child(%d)")
	case 4:
		opts.Locators.Product.AddToCart = missing
	case 5:
		opts.Locators.Product.CartButton = missing
	case 6:
		opts.Locators.Cart.ItemTitle = missing
	}
	return nil
}

var failingStep = []string{"visit", "search_product", "select_product", "select_size", "add_to_cart", "go_to_cart", "go_to_cart"}

func TestRun_AnyFailureCapturesExactlyOnce(t *testing.T) {
	root := t.TempDir()

	rapid.Check(t, func(rt *rapid.T) {
		step := rapid.IntRange(0, len(failingStep)-1).Draw(rt, "step")
		name := rapid.StringMatching(`[a-z]{1,8}\.png`).Draw(rt, "screenshot")
		dir, err := os.MkdirTemp(root, "run-*")
		if err != nil {
			rt.Fatalf("temp dir: %v", err)
		}

		opts := options(name)
		tweak := breakStep(step, &opts)
		h := newHarness(opts, dir, tweak)

		report, err := h.sc.Run(context.Background())
		if err == nil {
			rt.Fatalf("step %d: expected failure", step)
		}
		var stepErr *scenario.StepError
		if !errors.As(err, &stepErr) {
			rt.Fatalf("expected StepError, got %T: %v", err, err)
		}
		if stepErr.Step != failingStep[step] {
			rt.Fatalf("failed at %s, want %s", stepErr.Step, failingStep[step])
		}
		if len(h.shots.paths) != 1 || h.shots.paths[0] != name {
			rt.Fatalf("screenshots %v, want exactly [%s]", h.shots.paths, name)
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) != 1 || entries[0].Name() != name {
			rt.Fatalf("screenshot dir holds %v (%v), want only %s", entries, err, name)
		}
		if report.Status != entities.RunStatusFailed {
			rt.Fatalf("status %s, want failed", report.Status)
		}
		// States are never skipped: the visited list is a prefix of the full order.
		for i, s := range report.Visited {
			if allStates[i] != s {
				rt.Fatalf("visited %v is not a prefix of %v", report.Visited, allStates)
			}
		}
		if report.State == entities.StateDone {
			rt.Fatalf("failed run reported Done")
		}
		if !h.store.Session().Closed() {
			rt.Fatalf("session left open")
		}
	})
}

func TestRun_AddToCartOnlyAfterSize(t *testing.T) {
	opts := options("error.png")
	opts.Locators.Product.SizeOptionAt = entities.CSS(".injected-failure:nth-child(%d)")
	h := newHarness(opts, t.TempDir(), nil)

	_, err := h.sc.Run(context.Background())
	require.Error(t, err)

	for _, e := range h.store.Session().Events() {
		assert.NotContains(t, e, entities.DefaultLocators().Product.AddToCart.String())
		assert.NotContains(t, e, entities.DefaultLocators().Product.CartButton.String())
	}
}

func TestRun_CartVerificationFails(t *testing.T) {
	dir := t.TempDir()
	opts := options("error.png")
	// Read the header's cart button as if it were a cart line: its text never matches.
	opts.Locators.Cart.ItemTitle = entities.DefaultLocators().Product.CartButton
	h := newHarness(opts, dir, nil)

	report, err := h.sc.Run(context.Background())
	var ve *entities.VerificationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "jordan", ve.Expected)
	assert.Equal(t, []string{"Bag"}, ve.Got)
	assert.Equal(t, entities.StateInCart, report.State)
	assert.Equal(t, []string{"error.png"}, h.shots.paths)

	opts.VerifyCart = false
	h = newHarness(opts, dir, nil)
	report, err = h.sc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entities.StateDone, report.State)
}

func TestRun_SessionOpenFailure(t *testing.T) {
	shots := &countingScreenshots{next: storage.NewScreenshotStore(t.TempDir())}
	logger, _ := logtest.NewNullLogger()
	sc := scenario.New(options("error.png"), func(ctx context.Context) (interfaces.Session, error) {
		return nil, errors.New("chromedriver not found")
	}, shots, logger)

	report, err := sc.Run(context.Background())
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, entities.RunStatusFailed, report.Status)
	assert.Empty(t, shots.paths)
}

func TestRun_ScreenshotFailureStillFails(t *testing.T) {
	opts := options("error.png")
	opts.Locators.Product.ProductCard = entities.CSS(".injected-failure")
	h := newHarness(opts, t.TempDir(), func(s *memdriver.Session) {
		s.ScreenshotErr = errors.New("target closed")
	})

	_, err := h.sc.Run(context.Background())
	var stepErr *scenario.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Error(t, stepErr.ScreenshotErr)
	assert.Empty(t, stepErr.Screenshot)
	assert.True(t, h.store.Session().Closed())
}

func TestRun_CancelledContextStillCaptures(t *testing.T) {
	dir := t.TempDir()
	opts := options("error.png")
	opts.Timeout = 5 * time.Second
	opts.Locators.Landing.SearchContainer = entities.CSS(".injected-failure")
	h := newHarness(opts, dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := h.sc.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"error.png"}, h.shots.paths)
	_, statErr := os.Stat(filepath.Join(dir, "error.png"))
	assert.NoError(t, statErr)
}

func TestRun_LogsFailure(t *testing.T) {
	opts := options("error.png")
	opts.Locators.Product.AddToCart = entities.CSS(".injected-failure")
	h := newHarness(opts, t.TempDir(), nil)

	_, err := h.sc.Run(context.Background())
	require.Error(t, err)

	var failed bool
	for _, e := range h.logs.AllEntries() {
		if strings.HasPrefix(e.Message, "Test failed at add_to_cart") {
			failed = true
			assert.Equal(t, "error.png", e.Data["screenshot"])
			assert.NotEmpty(t, e.Data["run_id"])
		}
	}
	assert.True(t, failed)
}
