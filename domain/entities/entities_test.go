package entities

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocator_Validate(t *testing.T) {
	assert.NoError(t, CSS(".product-card").Validate())
	assert.NoError(t, ID("gn-search-input").Validate())
	assert.Error(t, Locator{By: "shadow", Value: "x"}.Validate())
	assert.Error(t, Locator{By: ByCSS}.Validate())
	assert.True(t, Locator{}.IsZero())
	assert.Equal(t, "id=gn-search-input", ID("gn-search-input").String())
}

func TestState_OrderIsLinear(t *testing.T) {
	want := []string{"Init", "Landed", "Searched", "ProductSelected", "SizeSelected", "InCart", "AtCart", "CheckoutStarted", "Done"}

	var got []string
	s := StateInit
	for {
		got = append(got, s.String())
		if s == StateDone {
			break
		}
		require.Equal(t, s+1, s.Next())
		s = s.Next()
	}

	assert.Equal(t, want, got)
	assert.Equal(t, StateDone, StateDone.Next())
	assert.Equal(t, "Unknown", State(42).String())
}

func TestErrors_Unwrap(t *testing.T) {
	cause := fmt.Errorf("%w: css=.x", ErrElementNotFound)
	te := &TimeoutError{Locator: CSS(".x"), Condition: ConditionClickable, Timeout: time.Second, Err: cause}

	wrapped := fmt.Errorf("select size: %w", te)
	assert.True(t, IsTimeout(wrapped))
	assert.ErrorIs(t, wrapped, ErrElementNotFound)
	assert.Contains(t, te.Error(), "css=.x")
	assert.Contains(t, te.Error(), "clickable")

	nav := &NavigationError{URL: "https://shop.test/", Err: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	assert.False(t, IsTimeout(nav))
	assert.Contains(t, nav.Error(), "https://shop.test/")

	ie := &ElementInteractionError{Locator: CSS(".mb3-sm"), Action: "click", Err: ErrStaleElement}
	assert.ErrorIs(t, ie, ErrStaleElement)
}

func TestNotFoundError_Message(t *testing.T) {
	none := &NotFoundError{Locator: CSS(".size"), Label: "M 9", Matches: 0}
	many := &NotFoundError{Locator: CSS(".size"), Label: "M 9", Matches: 2}
	assert.Contains(t, none.Error(), "no element")
	assert.Contains(t, many.Error(), "2 elements")
}

func TestStateBag(t *testing.T) {
	bag := StateBag{}
	bag.Set("search_term", "jordan")
	bag.Set("count", 3)

	v, ok := bag.Get("count")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, "jordan", bag.String("search_term"))
	assert.Equal(t, "", bag.String("count"))
	assert.Equal(t, "", bag.String("missing"))
}

func TestLocators_Validate(t *testing.T) {
	assert.Empty(t, DefaultLocators().Validate())

	locs := DefaultLocators()
	locs.Product.SizeOptionAt = CSS(".size:nth-child(8)")
	locs.Cart.ItemTitle = Locator{}
	assert.Len(t, locs.Validate(), 2)
}

func TestLocators_SizeOptionAtRejectsOtherVerbs(t *testing.T) {
	for _, v := range []string{
		"a[href*='air%20jordan'] .size:nth-child(%d)",
		".size:nth-child(%d) %s",
		".size:nth-child(%d):nth-of-type(%d)",
	} {
		locs := DefaultLocators()
		locs.Product.SizeOptionAt = CSS(v)
		assert.Len(t, locs.Validate(), 1, v)
	}
}

func TestProductLocators_SizeAt(t *testing.T) {
	loc := DefaultLocators().Product.SizeAt(8)
	assert.Equal(t, CSS(".css-vmnznv:nth-child(8) > .u-full-width"), loc)
}
