package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/niksmo/price-tracker/internal/core/domain"
	"github.com/niksmo/price-tracker/internal/core/port"
	"github.com/niksmo/price-tracker/internal/core/service"
)

// GET  v1/catalog?search=&filter=&sort= (200 OK, 400 Bad request)
// POST v1/catalog/reload (204 No content, 502 Bad gateway)
// POST v1/scrape (202 Accepted, 409 Conflict, 502 Bad gateway)
// POST v1/products/{id}/toggle (200 OK, 404 Not found, 502 Bad gateway)
// GET  v1/selection (200 OK)

type CatalogService interface {
	port.CatalogLoader
	port.ProductSelector
	port.ScrapeTrigger
	port.ViewReader
	port.SelectionReader
}

type CatalogHandler struct {
	s CatalogService
}

func RegisterCatalog(r chi.Router, s CatalogService) {
	h := CatalogHandler{s}
	r.Route("/v1", func(r chi.Router) {
		r.Get("/catalog", h.GetCatalog)
		r.Post("/catalog/reload", h.ReloadCatalog)
		r.Post("/scrape", h.PostScrape)
		r.Post("/products/{id}/toggle", h.ToggleProduct)
		r.Get("/selection", h.GetSelection)
	})
}

func (h CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetCatalog"
	log := slog.With("op", op)

	q := r.URL.Query()

	filter, err := domain.ParseFilterMode(q.Get("filter"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sort, err := domain.ParseSortMode(q.Get("sort"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	v := h.s.ReadView(domain.ViewState{
		Search: q.Get("search"),
		Filter: filter,
		Sort:   sort,
	})

	respond(w, log, http.StatusOK, toView(v))
}

func (h CatalogHandler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.ReloadCatalog"
	log := slog.With("op", op)

	if err := h.s.LoadCatalog(r.Context()); err != nil {
		http.Error(w, "failed to load catalog", http.StatusBadGateway)
		log.Warn("failed to load catalog", "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h CatalogHandler) PostScrape(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.PostScrape"
	log := slog.With("op", op)

	err := h.s.TriggerScrape(r.Context())
	switch {
	case err == nil:
	case errors.Is(err, service.ErrScrapeBusy):
		http.Error(w, "scrape already in progress", http.StatusConflict)
		return
	case errors.Is(err, service.ErrOrchestratorClosed):
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	case errors.Is(err, domain.ErrFetchFailure):
		http.Error(w, "failed to request scrape", http.StatusBadGateway)
		log.Warn("failed to request scrape", "err", err)
		return
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
		log.Error("failed to trigger scrape", "err", err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	if _, err = w.Write([]byte("Accepted")); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

func (h CatalogHandler) ToggleProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.ToggleProduct"
	log := slog.With("op", op)

	id := chi.URLParam(r, "id")

	_, err := h.s.ToggleProduct(r.Context(), id)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrProductNotFound):
		http.Error(w, "product not found", http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrFetchFailure):
		http.Error(w, "failed to fetch history", http.StatusBadGateway)
		log.Warn("failed to fetch history", "productID", id, "err", err)
		return
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
		log.Error("failed to toggle product", "productID", id, "err", err)
		return
	}

	respond(w, log, http.StatusOK, toSelection(h.s.ReadSelection()))
}

func (h CatalogHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetSelection"
	log := slog.With("op", op)

	respond(w, log, http.StatusOK, toSelection(h.s.ReadSelection()))
}

func respond(w http.ResponseWriter, log *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}
