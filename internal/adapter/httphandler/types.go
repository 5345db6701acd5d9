package httphandler

import (
	"time"

	"github.com/niksmo/price-tracker/internal/core/domain"
)

type (
	View struct {
		Search     string  `json:"search"`
		Filter     string  `json:"filter"`
		Sort       string  `json:"sort"`
		Shown      int     `json:"shown"`
		Total      int     `json:"total"`
		Loading    bool    `json:"loading"`
		Scrape     string  `json:"scrape"`
		SelectedID *string `json:"selected_id"`
		Cards      []Card  `json:"cards"`
		Series     *Series `json:"series,omitempty"`
	}

	Card struct {
		ID                 string   `json:"id"`
		Name               string   `json:"name"`
		Category           string   `json:"category"`
		PriceLabel         string   `json:"price_label"`
		CurrentPrice       *float64 `json:"current_price"`
		ImageURL           string   `json:"image_url,omitempty"`
		ProductLink        string   `json:"product_link,omitempty"`
		IsLowestAllTime    bool     `json:"is_lowest_all_time"`
		DiscountPercentage float64  `json:"discount_percentage"`
		IsPriceOK          bool     `json:"is_price_ok"`
		Badges             []string `json:"badges"`
		Selected           bool     `json:"selected"`
	}

	Series struct {
		HasOrdinary bool          `json:"has_ordinary"`
		Points      []SeriesPoint `json:"points"`
	}

	SeriesPoint struct {
		Date          string    `json:"date"`
		Timestamp     time.Time `json:"timestamp"`
		Price         float64   `json:"price"`
		OrdinaryPrice *float64  `json:"ordinary_price,omitempty"`
	}

	Selection struct {
		SelectedID *string `json:"selected_id"`
		Series     *Series `json:"series,omitempty"`
	}
)

func toView(v domain.View) View {
	out := View{
		Search:     v.State.Search,
		Filter:     v.State.Filter.String(),
		Sort:       v.State.Sort.String(),
		Shown:      v.Shown,
		Total:      v.Total,
		Loading:    v.Loading,
		Scrape:     v.Scrape.String(),
		SelectedID: selectedID(v.Selected),
		Cards:      make([]Card, len(v.Cards)),
	}
	for i, c := range v.Cards {
		out.Cards[i] = toCard(c)
	}
	if v.Selected.IsSelected() {
		out.Series = toSeries(v.Series)
	}
	return out
}

func toSelection(sel domain.Selection, s domain.Series) Selection {
	out := Selection{SelectedID: selectedID(sel)}
	if sel.IsSelected() {
		out.Series = toSeries(s)
	}
	return out
}

func selectedID(sel domain.Selection) *string {
	if !sel.IsSelected() {
		return nil
	}
	id := sel.ProductID
	return &id
}

func toCard(c domain.Card) Card {
	badges := c.Badges
	if badges == nil {
		badges = []string{}
	}
	return Card{
		ID:                 c.Product.ID,
		Name:               c.Product.Name,
		Category:           c.CategoryLabel,
		PriceLabel:         c.PriceLabel,
		CurrentPrice:       c.Product.CurrentPrice,
		ImageURL:           c.Product.ImageURL,
		ProductLink:        c.Product.ProductLink,
		IsLowestAllTime:    c.Product.IsLowestAllTime,
		DiscountPercentage: c.Product.DiscountPercentage,
		IsPriceOK:          c.Product.IsPriceOK,
		Badges:             badges,
		Selected:           c.Selected,
	}
}

func toSeries(s domain.Series) *Series {
	out := &Series{
		HasOrdinary: s.HasOrdinary,
		Points:      make([]SeriesPoint, len(s.Points)),
	}
	for i, p := range s.Points {
		out.Points[i] = SeriesPoint{
			Date:          p.Label,
			Timestamp:     p.Timestamp,
			Price:         p.Price,
			OrdinaryPrice: p.OrdinaryPrice,
		}
	}
	return out
}
