package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/niksmo/price-tracker/internal/core/domain"
)

type (
	product struct {
		ID                 productID `json:"id"`
		Name               string    `json:"name"`
		Category           string    `json:"category"`
		CurrentPrice       *float64  `json:"current_price"`
		ImageURL           string    `json:"image_url"`
		ProductLink        string    `json:"product_link"`
		IsLowestAllTime    bool      `json:"is_lowest_all_time"`
		DiscountPercentage float64   `json:"discount_percentage"`
		IsPriceOK          bool      `json:"is_price_ok"`
	}

	historyEntry struct {
		Timestamp         timestamp `json:"timestamp"`
		Price             float64   `json:"price"`
		OrdinaryPrice     *float64  `json:"ordinary_price"`
		LowestPrice30Days *float64  `json:"lowest_price_30_days"`
		Tags              string    `json:"tags"`
	}
)

// productID accepts both JSON numbers and strings.
type productID string

func (id *productID) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch t := v.(type) {
	case json.Number:
		*id = productID(t.String())
	case string:
		*id = productID(t)
	default:
		return fmt.Errorf("invalid product id: %s", b)
	}
	return nil
}

// Zone-less timestamps are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

type timestamp time.Time

func (ts *timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)

	var errs []error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			*ts = timestamp(t)
			return nil
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("invalid timestamp %q: %w", s, errors.Join(errs...))
}

func (p product) toDomain() domain.Product {
	return domain.Product{
		ID:                 string(p.ID),
		Name:               p.Name,
		Category:           p.Category,
		CurrentPrice:       p.CurrentPrice,
		ImageURL:           p.ImageURL,
		ProductLink:        p.ProductLink,
		IsLowestAllTime:    p.IsLowestAllTime,
		DiscountPercentage: p.DiscountPercentage,
		IsPriceOK:          p.IsPriceOK,
	}
}

func (h historyEntry) toDomain() domain.HistoryEntry {
	return domain.HistoryEntry{
		Timestamp:         time.Time(h.Timestamp),
		Price:             h.Price,
		OrdinaryPrice:     h.OrdinaryPrice,
		LowestPrice30Days: h.LowestPrice30Days,
		Tags:              h.Tags,
	}
}
