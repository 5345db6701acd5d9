package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/niksmo/price-tracker/internal/core/domain"
	"github.com/niksmo/price-tracker/internal/core/port"
	"github.com/niksmo/price-tracker/pkg/timer"
)

const (
	DefaultRefreshDelay = 5 * time.Second
	DefaultCooldown     = 2 * time.Second
)

var (
	ErrScrapeBusy         = errors.New("scrape already in progress")
	ErrOrchestratorClosed = errors.New("orchestrator is closed")
)

// A ScrapeOrchestrator serialises scrape triggers.
//
// State machine: Idle -> Requesting -> Cooldown -> Idle. Each completed
// request, successful or not, schedules a catalog refresh after the refresh
// delay. Both delays are plain timers, the backend does not report scrape
// completion.
type ScrapeOrchestrator struct {
	ctx          context.Context
	requester    port.ScrapeRequester
	refresher    port.CatalogLoader
	sched        timer.Scheduler
	refreshDelay time.Duration
	cooldown     time.Duration

	mu        sync.Mutex
	state     domain.ScrapeState
	closed    bool
	nextID    int
	refreshes map[int]timer.Handle
	cooldownH timer.Handle
}

// NewScrapeOrchestrator creates an idle orchestrator. Scheduled refreshes run
// with ctx.
func NewScrapeOrchestrator(
	ctx context.Context,
	requester port.ScrapeRequester,
	refresher port.CatalogLoader,
	sched timer.Scheduler,
	refreshDelay, cooldown time.Duration,
) *ScrapeOrchestrator {
	if sched == nil {
		sched = timer.System{}
	}
	return &ScrapeOrchestrator{
		ctx:          ctx,
		requester:    requester,
		refresher:    refresher,
		sched:        sched,
		refreshDelay: refreshDelay,
		cooldown:     cooldown,
		refreshes:    make(map[int]timer.Handle),
	}
}

func (o *ScrapeOrchestrator) State() domain.ScrapeState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Trigger issues a scrape request if the orchestrator is idle, otherwise it
// returns [ErrScrapeBusy] without calling the backend.
//
// A failed request takes the same refresh and cooldown path as a
// successful one; its error is returned for reporting only.
func (o *ScrapeOrchestrator) Trigger(ctx context.Context) error {
	const op = "ScrapeOrchestrator.Trigger"
	log := slog.With("op", op)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrOrchestratorClosed)
	}
	if o.state != domain.ScrapeIdle {
		state := o.state
		o.mu.Unlock()
		log.Info("trigger rejected", "state", state)
		return fmt.Errorf("%s: %w", op, ErrScrapeBusy)
	}
	o.state = domain.ScrapeRequesting
	o.mu.Unlock()

	reqErr := o.requester.RequestScrape(ctx)
	if reqErr != nil {
		log.Error("scrape request failed", "err", reqErr)
	} else {
		log.Info("scrape request accepted")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		o.state = domain.ScrapeIdle
	} else {
		o.scheduleRefreshLocked()
		o.state = domain.ScrapeCooldown
		o.cooldownH = o.sched.AfterFunc(o.cooldown, o.endCooldown)
	}

	if reqErr != nil {
		return fmt.Errorf("%s: %w", op, reqErr)
	}
	return nil
}

func (o *ScrapeOrchestrator) scheduleRefreshLocked() {
	o.nextID++
	id := o.nextID
	o.refreshes[id] = o.sched.AfterFunc(o.refreshDelay, func() {
		o.refresh(id)
	})
}

func (o *ScrapeOrchestrator) refresh(id int) {
	const op = "ScrapeOrchestrator.refresh"
	log := slog.With("op", op)

	o.mu.Lock()
	delete(o.refreshes, id)
	closed := o.closed
	o.mu.Unlock()

	if closed {
		return
	}

	if err := o.refresher.LoadCatalog(o.ctx); err != nil {
		log.Warn("catalog refresh after scrape failed", "err", err)
	}
}

func (o *ScrapeOrchestrator) endCooldown() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == domain.ScrapeCooldown {
		o.state = domain.ScrapeIdle
	}
	o.cooldownH = nil
}

// Close cancels pending refreshes and the cooldown timer. Further triggers
// are rejected.
func (o *ScrapeOrchestrator) Close() {
	const op = "ScrapeOrchestrator.Close"
	log := slog.With("op", op)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true

	for id, h := range o.refreshes {
		h.Stop()
		delete(o.refreshes, id)
	}
	if o.cooldownH != nil {
		o.cooldownH.Stop()
		o.cooldownH = nil
	}
	if o.state == domain.ScrapeCooldown {
		o.state = domain.ScrapeIdle
	}
	log.Info("orchestrator is closed")
}
