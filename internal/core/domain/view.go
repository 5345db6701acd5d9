package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownFilter = errors.New("unknown filter mode")
	ErrUnknownSort   = errors.New("unknown sort mode")
)

type FilterMode int

const (
	FilterAll FilterMode = iota
	FilterLowestPrice
	FilterDiscounted
	FilterPriceOK
)

var filterKeys = map[FilterMode]string{
	FilterAll:         "all",
	FilterLowestPrice: "lowest_price",
	FilterDiscounted:  "discounted",
	FilterPriceOK:     "price_ok",
}

var filterAliases = map[string]FilterMode{
	"":                 FilterAll,
	"all":              FilterAll,
	"lowest_price":     FilterLowestPrice,
	"lowest price":     FilterLowestPrice,
	"lowest price (€)": FilterLowestPrice,
	"discounted":       FilterDiscounted,
	"discounted (%)":   FilterDiscounted,
	"price_ok":         FilterPriceOK,
	"price ok":         FilterPriceOK,
}

// ParseFilterMode accepts canonical keys and the UI labels, case-insensitive.
// An empty string means [FilterAll].
func ParseFilterMode(s string) (FilterMode, error) {
	m, ok := filterAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return FilterAll, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
	return m, nil
}

func (m FilterMode) String() string {
	if k, ok := filterKeys[m]; ok {
		return k
	}
	return fmt.Sprintf("FilterMode(%d)", int(m))
}

type SortMode int

const (
	SortDefault SortMode = iota
	SortDiscountDesc
	SortPriceAsc
	SortPriceDesc
	SortNameAsc
)

var sortKeys = map[SortMode]string{
	SortDefault:      "default",
	SortDiscountDesc: "discount_desc",
	SortPriceAsc:     "price_asc",
	SortPriceDesc:    "price_desc",
	SortNameAsc:      "name_asc",
}

// ParseSortMode accepts the canonical keys. An empty string means
// [SortDefault].
func ParseSortMode(s string) (SortMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortDefault, nil
	}
	for m, k := range sortKeys {
		if k == s {
			return m, nil
		}
	}
	return SortDefault, fmt.Errorf("%w: %q", ErrUnknownSort, s)
}

func (m SortMode) String() string {
	if k, ok := sortKeys[m]; ok {
		return k
	}
	return fmt.Sprintf("SortMode(%d)", int(m))
}

// A ViewState is the immutable set of user inputs the display list is
// derived from.
type ViewState struct {
	Search string
	Filter FilterMode
	Sort   SortMode
}

// A Selection is either deselected (zero value) or holds the selected
// product id.
type Selection struct {
	ProductID string
	selected  bool
}

func Selected(productID string) Selection {
	return Selection{ProductID: productID, selected: true}
}

func (s Selection) IsSelected() bool {
	return s.selected
}

// Is reports whether the product with the given id is the selected one.
func (s Selection) Is(productID string) bool {
	return s.selected && s.ProductID == productID
}

type ScrapeState int

const (
	ScrapeIdle ScrapeState = iota
	ScrapeRequesting
	ScrapeCooldown
)

func (s ScrapeState) String() string {
	switch s {
	case ScrapeIdle:
		return "idle"
	case ScrapeRequesting:
		return "requesting"
	case ScrapeCooldown:
		return "cooldown"
	}
	return fmt.Sprintf("ScrapeState(%d)", int(s))
}

type (
	// A Series is the display-ready form of a product history.
	Series struct {
		Points      []SeriesPoint
		HasOrdinary bool
	}

	SeriesPoint struct {
		Label         string
		Timestamp     time.Time
		Price         float64
		OrdinaryPrice *float64
	}
)

type (
	// A Card is the display projection of a product.
	Card struct {
		Product       Product
		PriceLabel    string
		CategoryLabel string
		Badges        []string
		Selected      bool
	}

	// A View is everything needed to render the catalog screen.
	View struct {
		State    ViewState
		Cards    []Card
		Shown    int
		Total    int
		Loading  bool
		Scrape   ScrapeState
		Selected Selection
		Series   Series
	}
)
