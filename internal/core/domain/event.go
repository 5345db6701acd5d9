package domain

import (
	"errors"
	"time"
)

// ErrFetchFailure marks any network, HTTP or decoding failure of a backend
// call.
var ErrFetchFailure = errors.New("fetch failure")

type ClientEventKind string

const (
	EventCatalogLoaded   ClientEventKind = "catalog_loaded"
	EventProductSelected ClientEventKind = "product_selected"
	EventScrapeRequested ClientEventKind = "scrape_requested"
)

// A ClientEvent records a user interaction with the catalog.
type ClientEvent struct {
	Kind      ClientEventKind
	ProductID string
	Products  int
	At        time.Time
}
