package service_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/niksmo/price-tracker/internal/core/domain"
	"github.com/niksmo/price-tracker/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func pipelineCatalog() []domain.Product {
	return []domain.Product{
		{ID: "a", Name: "Barolo Riserva", CurrentPrice: price(42), IsLowestAllTime: true},
		{ID: "b", Name: "Chianti Classico", CurrentPrice: price(12.5), DiscountPercentage: 20},
		{ID: "c", Name: "Prosecco", CurrentPrice: price(9.9), IsPriceOK: true},
		{ID: "d", Name: "barolo Docg", CurrentPrice: price(42), DiscountPercentage: 35, IsPriceOK: true},
		{ID: "e", Name: "Amarone", DiscountPercentage: 5},
	}
}

func TestPipelineSearch(t *testing.T) {
	p := service.NewPipeline(language.English)
	catalog := pipelineCatalog()

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"a", "b", "c", "d", "e"}},
		{"barolo", []string{"a", "d"}},
		{"BAROLO", []string{"a", "d"}},
		{"classico", []string{"b"}},
		{"o d", []string{"d"}},
		{"lambrusco", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := p.Apply(catalog, domain.ViewState{Search: tt.query})
			assert.Equal(t, tt.want, ids(got))

			for _, product := range catalog {
				contains := strings.Contains(
					strings.ToLower(product.Name), strings.ToLower(tt.query),
				)
				assert.Equal(t, contains, slices.Contains(ids(got), product.ID))
			}
		})
	}

	t.Run("CaseFolding", func(t *testing.T) {
		unicode := []domain.Product{{ID: "x", Name: "Weingut STRASSE"}}
		got := p.Apply(unicode, domain.ViewState{Search: "straße"})
		assert.Equal(t, []string{"x"}, ids(got))
	})
}

func TestPipelineFilter(t *testing.T) {
	p := service.NewPipeline(language.English)
	catalog := pipelineCatalog()

	tests := []struct {
		name   string
		filter domain.FilterMode
		want   []string
	}{
		{"All", domain.FilterAll, []string{"a", "b", "c", "d", "e"}},
		{"LowestPrice", domain.FilterLowestPrice, []string{"a"}},
		{"Discounted", domain.FilterDiscounted, []string{"b", "d", "e"}},
		{"PriceOK", domain.FilterPriceOK, []string{"c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Apply(catalog, domain.ViewState{Filter: tt.filter})
			assert.Equal(t, tt.want, ids(got))
		})
	}

	t.Run("SearchAppliesFirst", func(t *testing.T) {
		got := p.Apply(catalog, domain.ViewState{
			Search: "barolo", Filter: domain.FilterDiscounted,
		})
		assert.Equal(t, []string{"d"}, ids(got))
	})
}

func TestPipelineSort(t *testing.T) {
	p := service.NewPipeline(language.English)
	catalog := pipelineCatalog()

	t.Run("DefaultKeepsInputOrder", func(t *testing.T) {
		state := domain.ViewState{Search: "o", Filter: domain.FilterAll}
		got := p.Apply(catalog, state)
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(got))

		filtered := p.Apply(catalog, domain.ViewState{
			Filter: domain.FilterDiscounted, Sort: domain.SortDefault,
		})
		assert.Equal(t, []string{"b", "d", "e"}, ids(filtered))
	})

	t.Run("DiscountDesc", func(t *testing.T) {
		got := p.Apply(catalog, domain.ViewState{Sort: domain.SortDiscountDesc})
		assert.Equal(t, []string{"d", "b", "e", "a", "c"}, ids(got))
	})

	t.Run("PriceAscAbsentIsZero", func(t *testing.T) {
		got := p.Apply(catalog, domain.ViewState{Sort: domain.SortPriceAsc})
		assert.Equal(t, []string{"e", "c", "b", "a", "d"}, ids(got))
	})

	t.Run("PriceDescReversesAsc", func(t *testing.T) {
		priced := slices.DeleteFunc(pipelineCatalog(), func(p domain.Product) bool {
			return p.CurrentPrice == nil
		})

		asc := p.Apply(priced, domain.ViewState{Sort: domain.SortPriceAsc})
		desc := p.Apply(priced, domain.ViewState{Sort: domain.SortPriceDesc})

		require.Len(t, desc, len(asc))
		reversed := slices.Clone(asc)
		slices.Reverse(reversed)
		assert.Equal(t, reversed, desc)
	})

	t.Run("NameAscUsesCollation", func(t *testing.T) {
		names := []domain.Product{
			{ID: "1", Name: "Zeta"},
			{ID: "2", Name: "bravo"},
			{ID: "3", Name: "Ábaco"},
			{ID: "4", Name: "Alpha"},
		}
		got := p.Apply(names, domain.ViewState{Sort: domain.SortNameAsc})
		assert.Equal(t, []string{"3", "4", "2", "1"}, ids(got))
	})

	t.Run("InputNotMutated", func(t *testing.T) {
		in := pipelineCatalog()
		_ = p.Apply(in, domain.ViewState{Sort: domain.SortPriceDesc})
		assert.Equal(t, pipelineCatalog(), in)
	})
}
