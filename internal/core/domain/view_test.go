package domain_test

import (
	"testing"

	"github.com/niksmo/price-tracker/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterMode(t *testing.T) {
	tests := []struct {
		in   string
		want domain.FilterMode
	}{
		{"", domain.FilterAll},
		{"all", domain.FilterAll},
		{"lowest_price", domain.FilterLowestPrice},
		{"Lowest Price (€)", domain.FilterLowestPrice},
		{"discounted", domain.FilterDiscounted},
		{"Discounted (%)", domain.FilterDiscounted},
		{" PRICE_OK ", domain.FilterPriceOK},
		{"Price OK", domain.FilterPriceOK},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			m, err := domain.ParseFilterMode(test.in)
			require.NoError(t, err)
			assert.Equal(t, test.want, m)
		})
	}

	_, err := domain.ParseFilterMode("cheap")
	assert.ErrorIs(t, err, domain.ErrUnknownFilter)
}

func TestParseSortMode(t *testing.T) {
	for _, m := range []domain.SortMode{
		domain.SortDefault, domain.SortDiscountDesc, domain.SortPriceAsc,
		domain.SortPriceDesc, domain.SortNameAsc,
	} {
		got, err := domain.ParseSortMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := domain.ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, domain.SortDefault, got)

	_, err = domain.ParseSortMode("random")
	assert.ErrorIs(t, err, domain.ErrUnknownSort)
}

func TestSelection(t *testing.T) {
	var none domain.Selection
	assert.False(t, none.IsSelected())
	assert.False(t, none.Is(""))

	sel := domain.Selected("7")
	assert.True(t, sel.IsSelected())
	assert.True(t, sel.Is("7"))
	assert.False(t, sel.Is("8"))
}

func TestProductDisplay(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"/vino-online/", "vino-online"},
		{"champagne/brut", "champagne brut"},
		{"", "Wine"},
		{" / ", "Wine"},
	}
	for _, test := range tests {
		p := domain.Product{Category: test.category}
		assert.Equal(t, test.want, p.DisplayCategory("Wine"))
	}

	assert.Zero(t, domain.Product{}.Price())
	assert.False(t, domain.Product{}.HasDiscount())
	assert.True(t, domain.Product{DiscountPercentage: 0.5}.HasDiscount())
}

func TestScrapeStateString(t *testing.T) {
	assert.Equal(t, "idle", domain.ScrapeIdle.String())
	assert.Equal(t, "requesting", domain.ScrapeRequesting.String())
	assert.Equal(t, "cooldown", domain.ScrapeCooldown.String())
}
