package service

import (
	"cmp"
	"slices"
	"strings"

	"github.com/niksmo/price-tracker/internal/core/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// A Pipeline derives the display-ordered subset of a catalog.
//
// Apply never mutates its input. Stages run in order: search, filter, sort.
type Pipeline struct {
	locale language.Tag
}

func NewPipeline(locale language.Tag) Pipeline {
	return Pipeline{locale: locale}
}

func (p Pipeline) Apply(
	products []domain.Product, v domain.ViewState,
) []domain.Product {
	// casers and collators keep internal buffers and are not safe for
	// concurrent use
	fold := cases.Fold()
	query := fold.String(v.Search)

	out := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if !strings.Contains(fold.String(product.Name), query) {
			continue
		}
		if !matchFilter(product, v.Filter) {
			continue
		}
		out = append(out, product)
	}

	p.sort(out, v.Sort)
	return out
}

func matchFilter(p domain.Product, m domain.FilterMode) bool {
	switch m {
	case domain.FilterLowestPrice:
		return p.IsLowestAllTime
	case domain.FilterDiscounted:
		return p.HasDiscount()
	case domain.FilterPriceOK:
		return p.IsPriceOK
	default:
		return true
	}
}

func (p Pipeline) sort(ps []domain.Product, m domain.SortMode) {
	switch m {
	case domain.SortDiscountDesc:
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return cmp.Compare(b.DiscountPercentage, a.DiscountPercentage)
		})
	case domain.SortPriceAsc:
		sortByPrice(ps)
	case domain.SortPriceDesc:
		// exact reverse of price_asc, ties included
		sortByPrice(ps)
		slices.Reverse(ps)
	case domain.SortNameAsc:
		c := collate.New(p.locale)
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return c.CompareString(a.Name, b.Name)
		})
	}
}

func sortByPrice(ps []domain.Product) {
	slices.SortStableFunc(ps, func(a, b domain.Product) int {
		return cmp.Compare(a.Price(), b.Price())
	})
}
