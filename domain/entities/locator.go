package entities

import "fmt"

// Strategy names how a Locator's selector is interpreted by the driver
type Strategy string

const (
	ByID       Strategy = "id"
	ByCSS      Strategy = "css"
	ByXPath    Strategy = "xpath"
	ByName     Strategy = "name"
	ByLinkText Strategy = "link_text"
	ByTag      Strategy = "tag"
)

// Valid reports whether s is one of the known strategies
func (s Strategy) Valid() bool {
	switch s {
	case ByID, ByCSS, ByXPath, ByName, ByLinkText, ByTag:
		return true
	}
	return false
}

// Locator identifies how to find an element on the page.
// Locators are values; page objects define them statically and never mutate them.
type Locator struct {
	By    Strategy `json:"by" yaml:"by"`
	Value string   `json:"value" yaml:"value"`
}

// ID returns a locator matching the element id
func ID(id string) Locator { return Locator{By: ByID, Value: id} }

// CSS returns a locator matching a CSS selector
func CSS(selector string) Locator { return Locator{By: ByCSS, Value: selector} }

// XPath returns a locator matching an XPath expression
func XPath(expr string) Locator { return Locator{By: ByXPath, Value: expr} }

// IsZero reports whether the locator is unset
func (l Locator) IsZero() bool {
	return l.By == "" && l.Value == ""
}

// Validate checks the locator can be handed to a driver
func (l Locator) Validate() error {
	if !l.By.Valid() {
		return fmt.Errorf("unknown locator strategy %q", l.By)
	}
	if l.Value == "" {
		return fmt.Errorf("empty %s selector", l.By)
	}
	return nil
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.By, l.Value)
}

// Condition is the state a wait polls for
type Condition string

const (
	ConditionPresence  Condition = "presence"
	ConditionClickable Condition = "clickable"
)

// Key is a non-text keystroke sent to an element
type Key string

const (
	KeyEnter Key = "Enter"
	KeyTab   Key = "Tab"
)

// Viewport holds browser viewport dimensions in CSS pixels
type Viewport struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}
