package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/price-tracker/internal/core/domain"
	"github.com/niksmo/price-tracker/internal/core/port"
	"github.com/niksmo/price-tracker/pkg/timer"
	"golang.org/x/text/language"
)

var _ port.CatalogLoader = (*Service)(nil)
var _ port.ProductSelector = (*Service)(nil)
var _ port.ScrapeTrigger = (*Service)(nil)
var _ port.ViewReader = (*Service)(nil)
var _ port.SelectionReader = (*Service)(nil)

type Config struct {
	RefreshDelay     time.Duration
	Cooldown         time.Duration
	Locale           language.Tag
	Location         *time.Location
	CategoryFallback string
	Scheduler        timer.Scheduler
}

func (c *Config) normalize() {
	if c.RefreshDelay <= 0 {
		c.RefreshDelay = DefaultRefreshDelay
	}
	if c.Cooldown <= 0 {
		c.Cooldown = DefaultCooldown
	}
	if c.CategoryFallback == "" {
		c.CategoryFallback = defaultCategoryLabel
	}
	if c.Scheduler == nil {
		c.Scheduler = timer.System{}
	}
}

// A Service wires the catalog store, the scrape orchestrator and the pure
// view pipelines together.
type Service struct {
	store        *CatalogStore
	orchestrator *ScrapeOrchestrator
	pipeline     Pipeline
	dates        DateFormatter
	events       port.EventPublisher
	category     string
	now          func() time.Time
}

// New creates the service. ctx bounds the refreshes scheduled after a
// scrape. events may be nil.
func New(
	ctx context.Context,
	backend port.Backend,
	events port.EventPublisher,
	cfg Config,
) *Service {
	cfg.normalize()

	s := &Service{
		store:    NewCatalogStore(backend, backend),
		pipeline: NewPipeline(cfg.Locale),
		dates:    NewLocaleDateFormatter(cfg.Locale, cfg.Location),
		events:   events,
		category: cfg.CategoryFallback,
		now:      time.Now,
	}
	s.orchestrator = NewScrapeOrchestrator(
		ctx, backend, s, cfg.Scheduler, cfg.RefreshDelay, cfg.Cooldown,
	)
	return s
}

func (s *Service) Close() {
	s.orchestrator.Close()
}

func (s *Service) LoadCatalog(ctx context.Context) error {
	const op = "Service.LoadCatalog"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Load(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, domain.ClientEvent{
		Kind:     domain.EventCatalogLoaded,
		Products: len(s.store.Products()),
	})
	return nil
}

func (s *Service) ToggleProduct(
	ctx context.Context, productID string,
) (domain.Selection, error) {
	const op = "Service.ToggleProduct"

	if err := ctx.Err(); err != nil {
		return s.store.Selection(), fmt.Errorf("%s: %w", op, err)
	}

	sel, err := s.store.Select(ctx, productID)
	if sel.Is(productID) && !errors.Is(err, ErrProductNotFound) {
		s.publish(ctx, domain.ClientEvent{
			Kind:      domain.EventProductSelected,
			ProductID: productID,
		})
	}
	if err != nil {
		return sel, fmt.Errorf("%s: %w", op, err)
	}
	return sel, nil
}

func (s *Service) TriggerScrape(ctx context.Context) error {
	const op = "Service.TriggerScrape"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := s.orchestrator.Trigger(ctx)
	if err == nil {
		s.publish(ctx, domain.ClientEvent{Kind: domain.EventScrapeRequested})
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) ScrapeState() domain.ScrapeState {
	return s.orchestrator.State()
}

func (s *Service) publish(ctx context.Context, evt domain.ClientEvent) {
	const op = "Service.publish"

	if s.events == nil {
		return
	}
	evt.At = s.now()
	if err := s.events.PublishEvent(ctx, evt); err != nil {
		slog.Warn("failed to publish client event",
			"op", op, "kind", evt.Kind, "err", err)
	}
}
