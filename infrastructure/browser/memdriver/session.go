// Package memdriver is an in-process browser session over a scripted DOM.
// Pages are sets of elements keyed by locator; navigation replaces the set
// and invalidates every handle taken from the previous page.
package memdriver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"

	"purchase_flow/domain/entities"
	"purchase_flow/domain/interfaces"
)

// ErrNotInteractable is returned when clicking or typing into a hidden or disabled element
var ErrNotInteractable = errors.New("element not interactable")

// Element is one scripted DOM node
type Element struct {
	Text     string
	Value    string
	Hidden   bool
	Disabled bool
	// ClickErr, when set, is returned by Click, e.g. to simulate an intercepted click
	ClickErr error
	OnClick  func(ctx context.Context) error
	OnKey    func(ctx context.Context, key entities.Key) error
}

// Session implements interfaces.Session in memory
type Session struct {
	mu         sync.Mutex
	url        string
	viewport   entities.Viewport
	generation int
	elements   map[entities.Locator][]*Element
	events     []string
	closed     bool

	// OnNavigate builds the page for url after the previous page was cleared
	OnNavigate func(ctx context.Context, s *Session, url string) error
	// NavigateErr, when set, fails every Navigate call
	NavigateErr error
	// ScreenshotErr, when set, fails every Screenshot call
	ScreenshotErr error
}

// New - creates an empty session on about:blank
func New() *Session {
	return &Session{
		url:      "about:blank",
		elements: make(map[entities.Locator][]*Element),
	}
}

// Put adds elements matching loc to the current page
func (s *Session) Put(loc entities.Locator, els ...*Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[loc] = append(s.elements[loc], els...)
}

// Remove drops every element matching loc from the current page
func (s *Session) Remove(loc entities.Locator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.elements, loc)
}

// Update runs fn while holding the session lock, for mutating Element fields
func (s *Session) Update(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Events returns a copy of the action log
func (s *Session) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

// Viewport returns the last viewport set
func (s *Session) Viewport() entities.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// Closed reports whether Close was called
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) record(format string, args ...any) {
	s.events = append(s.events, fmt.Sprintf(format, args...))
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("session closed")
	}
	if s.NavigateErr != nil {
		err := s.NavigateErr
		s.mu.Unlock()
		return err
	}
	s.url = url
	s.generation++
	s.elements = make(map[entities.Locator][]*Element)
	s.record("navigate %s", url)
	hook := s.OnNavigate
	s.mu.Unlock()

	if hook != nil {
		return hook(ctx, s, url)
	}
	return nil
}

func (s *Session) SetViewport(ctx context.Context, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = entities.Viewport{Width: width, Height: height}
	s.record("viewport %dx%d", width, height)
	return nil
}

func (s *Session) FindElement(ctx context.Context, loc entities.Locator) (interfaces.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	els := s.elements[loc]
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", entities.ErrElementNotFound, loc)
	}
	return &handle{s: s, el: els[0], loc: loc, gen: s.generation}, nil
}

func (s *Session) FindElements(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	els := s.elements[loc]
	out := make([]interfaces.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &handle{s: s, el: el, loc: loc, gen: s.generation})
	}
	return out, nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, nil
}

// Screenshot renders a 1x1 PNG; the content is irrelevant, the file is what callers check
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	err := s.ScreenshotErr
	s.record("screenshot")
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.record("close")
	return nil
}

type handle struct {
	s   *Session
	el  *Element
	loc entities.Locator
	gen int
}

// live must be called with the session lock held
func (h *handle) live() error {
	if h.gen != h.s.generation {
		return fmt.Errorf("%w: %s", entities.ErrStaleElement, h.loc)
	}
	return nil
}

func (h *handle) interactable() error {
	if err := h.live(); err != nil {
		return err
	}
	if h.el.Hidden || h.el.Disabled {
		return fmt.Errorf("%w: %s", ErrNotInteractable, h.loc)
	}
	return nil
}

func (h *handle) Click(ctx context.Context) error {
	h.s.mu.Lock()
	if err := h.interactable(); err != nil {
		h.s.mu.Unlock()
		return err
	}
	if h.el.ClickErr != nil {
		err := h.el.ClickErr
		h.s.mu.Unlock()
		return err
	}
	h.s.record("click %s", h.loc)
	hook := h.el.OnClick
	h.s.mu.Unlock()

	if hook != nil {
		return hook(ctx)
	}
	return nil
}

func (h *handle) Clear(ctx context.Context) error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if err := h.interactable(); err != nil {
		return err
	}
	h.el.Value = ""
	return nil
}

func (h *handle) SendKeys(ctx context.Context, text string) error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if err := h.interactable(); err != nil {
		return err
	}
	h.el.Value += text
	h.s.record("type %s %q", h.loc, text)
	return nil
}

func (h *handle) PressKey(ctx context.Context, key entities.Key) error {
	h.s.mu.Lock()
	if err := h.interactable(); err != nil {
		h.s.mu.Unlock()
		return err
	}
	h.s.record("press %s %s", h.loc, key)
	hook := h.el.OnKey
	h.s.mu.Unlock()

	if hook != nil {
		return hook(ctx, key)
	}
	return nil
}

func (h *handle) Text(ctx context.Context) (string, error) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if err := h.live(); err != nil {
		return "", err
	}
	return h.el.Text, nil
}

func (h *handle) Value(ctx context.Context) (string, error) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if err := h.live(); err != nil {
		return "", err
	}
	return h.el.Value, nil
}

func (h *handle) IsDisplayed(ctx context.Context) (bool, error) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if err := h.live(); err != nil {
		return false, err
	}
	return !h.el.Hidden, nil
}

func (h *handle) IsEnabled(ctx context.Context) (bool, error) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if err := h.live(); err != nil {
		return false, err
	}
	return !h.el.Disabled, nil
}

var _ interfaces.Session = (*Session)(nil)
