package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/niksmo/price-tracker/internal/core/domain"
	"github.com/niksmo/price-tracker/internal/core/port"
)

var ErrProductNotFound = errors.New("product not found")

// A CatalogStore holds the last loaded catalog snapshot and the selected
// product's history.
//
// Every load and history fetch replaces the local copy wholesale.
type CatalogStore struct {
	productsFetcher port.ProductsFetcher
	historyFetcher  port.HistoryFetcher

	mu         sync.RWMutex
	products   []domain.Product
	loading    int
	loadSeq    uint64
	appliedSeq uint64
	selection  domain.Selection
	selSeq     uint64
	history    []domain.HistoryEntry
}

func NewCatalogStore(
	pf port.ProductsFetcher, hf port.HistoryFetcher,
) *CatalogStore {
	return &CatalogStore{productsFetcher: pf, historyFetcher: hf}
}

// Load fetches the full catalog and replaces the stored one on success.
//
// On failure the previous catalog and selection stay untouched. A response
// that arrives after a newer load was applied is discarded.
func (s *CatalogStore) Load(ctx context.Context) error {
	const op = "CatalogStore.Load"
	log := slog.With("op", op)

	seq := s.acquireLoading()
	defer s.releaseLoading()

	ps, err := s.productsFetcher.FetchProducts(ctx)
	if err != nil {
		log.Error("failed to load catalog", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.appliedSeq {
		log.Warn("discard stale catalog", "seq", seq, "applied", s.appliedSeq)
		return nil
	}

	s.appliedSeq = seq
	s.products = slices.Clone(ps)
	s.selection = domain.Selection{}
	s.selSeq++
	s.history = nil

	log.Info("catalog loaded", "nProducts", len(ps))
	return nil
}

func (s *CatalogStore) acquireLoading() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading++
	s.loadSeq++
	return s.loadSeq
}

func (s *CatalogStore) releaseLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
}

// Select toggles the selection of the product with the given id.
//
// Selecting the selected product clears the selection and its history.
// Selecting another product fetches its history; the response is applied
// only if that selection is still current when it arrives. A failed fetch
// keeps the selection with an empty history.
func (s *CatalogStore) Select(
	ctx context.Context, productID string,
) (domain.Selection, error) {
	const op = "CatalogStore.Select"
	log := slog.With("op", op, "productID", productID)

	s.mu.Lock()
	if s.selection.Is(productID) {
		s.selection = domain.Selection{}
		s.selSeq++
		s.history = nil
		s.mu.Unlock()
		log.Debug("selection cleared")
		return domain.Selection{}, nil
	}

	if !s.containsLocked(productID) {
		s.mu.Unlock()
		return s.Selection(), fmt.Errorf("%s: %w", op, ErrProductNotFound)
	}

	s.selSeq++
	token := s.selSeq
	s.selection = domain.Selected(productID)
	s.history = nil
	sel := s.selection
	s.mu.Unlock()

	h, err := s.historyFetcher.FetchHistory(ctx, productID)
	if err != nil {
		log.Error("failed to fetch history", "err", err)
		return sel, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selSeq != token || !s.selection.Is(productID) {
		log.Debug("discard history of outdated selection")
		return s.selection, nil
	}
	s.history = slices.Clone(h)
	return sel, nil
}

func (s *CatalogStore) containsLocked(productID string) bool {
	return slices.ContainsFunc(s.products, func(p domain.Product) bool {
		return p.ID == productID
	})
}

func (s *CatalogStore) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products)
}

func (s *CatalogStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

func (s *CatalogStore) Selection() domain.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

func (s *CatalogStore) History() []domain.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}
