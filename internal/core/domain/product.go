package domain

import (
	"strings"
	"time"
)

type (
	// A Product is a read-only snapshot of a tracked catalog item.
	Product struct {
		ID                 string
		Name               string
		Category           string
		CurrentPrice       *float64
		ImageURL           string
		ProductLink        string
		IsLowestAllTime    bool
		DiscountPercentage float64
		IsPriceOK          bool
	}

	// A HistoryEntry is one price observation of a product.
	HistoryEntry struct {
		Timestamp         time.Time
		Price             float64
		OrdinaryPrice     *float64
		LowestPrice30Days *float64
		Tags              string
	}
)

// DisplayCategory returns the category with path separators replaced by
// spaces, or fallback when the category is empty.
func (p Product) DisplayCategory(fallback string) string {
	c := strings.TrimSpace(strings.ReplaceAll(p.Category, "/", " "))
	if c == "" {
		return fallback
	}
	return c
}

// Price returns the current price, absent price is 0.
func (p Product) Price() float64 {
	if p.CurrentPrice == nil {
		return 0
	}
	return *p.CurrentPrice
}

func (p Product) HasDiscount() bool {
	return p.DiscountPercentage > 0
}
