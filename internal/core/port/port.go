package port

import (
	"context"

	"github.com/niksmo/price-tracker/internal/core/domain"
)

type closer interface {
	Close()
}

// Outbound.

type ProductsFetcher interface {
	FetchProducts(context.Context) ([]domain.Product, error)
}

type HistoryFetcher interface {
	FetchHistory(ctx context.Context, productID string) ([]domain.HistoryEntry, error)
}

type ScrapeRequester interface {
	RequestScrape(context.Context) error
}

type Backend interface {
	ProductsFetcher
	HistoryFetcher
	ScrapeRequester
}

type EventPublisher interface {
	PublishEvent(context.Context, domain.ClientEvent) error
	closer
}

// Inbound.

type CatalogLoader interface {
	LoadCatalog(context.Context) error
}

type ProductSelector interface {
	ToggleProduct(ctx context.Context, productID string) (domain.Selection, error)
}

type ScrapeTrigger interface {
	TriggerScrape(context.Context) error
}

type ViewReader interface {
	ReadView(domain.ViewState) domain.View
}

type SelectionReader interface {
	ReadSelection() (domain.Selection, domain.Series)
}
