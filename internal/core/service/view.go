package service

import (
	"github.com/niksmo/price-tracker/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	defaultCategoryLabel = "Wine"
	currencySymbol       = "€"
	noPriceLabel         = "N/A"

	BadgeLowest  = "lowest"
	BadgePriceOK = "Prezzo OK"
)

// ReadView derives the catalog screen for the given inputs. The stored
// catalog is never modified.
func (s *Service) ReadView(v domain.ViewState) domain.View {
	products := s.store.Products()
	sel := s.store.Selection()
	shown := s.pipeline.Apply(products, v)

	view := domain.View{
		State:    v,
		Cards:    make([]domain.Card, len(shown)),
		Shown:    len(shown),
		Total:    len(products),
		Loading:  s.store.Loading(),
		Scrape:   s.orchestrator.State(),
		Selected: sel,
	}

	for i, p := range shown {
		view.Cards[i] = s.toCard(p, sel)
	}

	if sel.IsSelected() {
		view.Series = TransformHistory(s.store.History(), s.dates)
	}
	return view
}

// ReadSelection returns the current selection and its display series.
func (s *Service) ReadSelection() (domain.Selection, domain.Series) {
	sel := s.store.Selection()
	if !sel.IsSelected() {
		return sel, domain.Series{}
	}
	return sel, TransformHistory(s.store.History(), s.dates)
}

func (s *Service) toCard(p domain.Product, sel domain.Selection) domain.Card {
	return domain.Card{
		Product:       p,
		PriceLabel:    PriceLabel(p.CurrentPrice),
		CategoryLabel: p.DisplayCategory(s.category),
		Badges:        Badges(p),
		Selected:      sel.Is(p.ID),
	}
}

// PriceLabel renders a price with two decimals, or N/A when absent.
func PriceLabel(price *float64) string {
	if price == nil {
		return noPriceLabel
	}
	return currencySymbol + decimal.NewFromFloat(*price).StringFixed(2)
}

func Badges(p domain.Product) []string {
	var badges []string
	if p.IsLowestAllTime {
		badges = append(badges, BadgeLowest)
	}
	if p.HasDiscount() {
		pct := decimal.NewFromFloat(p.DiscountPercentage)
		badges = append(badges, "-"+pct.String()+"%")
	}
	if p.IsPriceOK {
		badges = append(badges, BadgePriceOK)
	}
	return badges
}
