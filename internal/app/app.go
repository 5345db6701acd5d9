package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/niksmo/price-tracker/config"
	"github.com/niksmo/price-tracker/internal/adapter"
	"github.com/niksmo/price-tracker/internal/adapter/backend"
	"github.com/niksmo/price-tracker/internal/adapter/eventlog"
	"github.com/niksmo/price-tracker/internal/adapter/httphandler"
	"github.com/niksmo/price-tracker/internal/adapter/kafka"
	"github.com/niksmo/price-tracker/internal/core/port"
	"github.com/niksmo/price-tracker/internal/core/service"
	"github.com/niksmo/price-tracker/pkg/retry"
	"github.com/niksmo/price-tracker/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

const handlerTimeoutReserve = 5 * time.Second

type App struct {
	ctx        context.Context
	cfg        config.Config
	backend    backend.Client
	events     port.EventPublisher
	service    *service.Service
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initOutboundAdapters()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	InitLogger(app.cfg.LogLevel)
}

// InitLogger sets the JSON stderr logger as default.
func InitLogger(level slog.Leveler) {
	opts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initOutboundAdapters() {
	const op = "App.initOutboundAdapters"

	cl, err := NewBackendClient(app.cfg)
	if err != nil {
		app.fallDown(op, err)
	}
	app.backend = cl

	if !app.cfg.Broker.Enabled() {
		slog.Info("no seed brokers, client events go to the log", "op", op)
		app.events = eventlog.New(nil)
		return
	}

	encoder, err := NewEventEncoder(app.ctx, app.cfg)
	if err != nil {
		app.fallDown(op, err)
	}

	producer, err := kafka.NewEventsProducer(
		kafka.ProducerClientOpt(
			app.ctx,
			app.cfg.Broker.SeedBrokers,
			app.cfg.Broker.Topics.ClientEvents,
			nil,
		),
		kafka.ProducerEncoderOpt(encoder),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.events = producer
}

// NewEventEncoder registers the client event schema when a schema registry
// is configured, otherwise events are plain Avro.
func NewEventEncoder(ctx context.Context, cfg config.Config) (kafka.Encoder, error) {
	const op = "app.NewEventEncoder"

	if !cfg.Broker.RegistryEnabled() {
		return schema.NewCodec(schema.ClientEventV1Avro()), nil
	}

	srClient, err := sr.NewClient(sr.URLs(cfg.Broker.SchemaRegistryURLs...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serde, err := schema.NewSerdeClientEventV1(
		ctx,
		schema.SubjectOpt(cfg.Broker.ClientEventsSubject()),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return serde, nil
}

// NewBackendClient creates the REST API client described by cfg.
func NewBackendClient(cfg config.Config) (backend.Client, error) {
	opts := []backend.Opt{backend.TimeoutOpt(cfg.Backend.RequestTimeout)}

	if tlsFiles := cfg.Backend.TLS; tlsFiles.Enabled() {
		tlsCfg, err := adapter.MakeTLSConfig(tlsFiles.CA, tlsFiles.Cert, tlsFiles.Key)
		if err != nil {
			return backend.Client{}, err
		}
		opts = append(opts, backend.TLSOpt(tlsCfg))
	}

	return backend.NewClient(cfg.Backend.BaseURL, opts...)
}

func (app *App) initCoreService() {
	app.service = service.New(app.ctx, app.backend, app.events, service.Config{
		RefreshDelay: app.cfg.Scrape.RefreshDelay,
		Cooldown:     app.cfg.Scrape.Cooldown,
		Locale:       app.cfg.Lang,
		Location:     app.cfg.Location,
	})
}

func (app *App) initInboundAdapters() {
	addr := app.cfg.HTTPServerAddr
	router := httphandler.NewRouter(app.service)
	timeout := app.cfg.Backend.RequestTimeout + handlerTimeoutReserve
	app.httpServer = httphandler.NewHTTPServer(addr, router, timeout)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)
	go app.loadInitialCatalog()

	slog.Info("application is running")
}

func (app *App) loadInitialCatalog() {
	const op = "App.loadInitialCatalog"
	log := slog.With("op", op)

	if err := WaitBackend(app.ctx, app.backend, app.cfg.Backend.WaitAttempts); err != nil {
		log.Warn("backend is not reachable", "err", err)
	}

	if err := app.service.LoadCatalog(app.ctx); err != nil {
		log.Error("failed to load initial catalog", "err", err)
	}
}

type pinger interface {
	Ping(context.Context) error
}

// WaitBackend probes the backend until it answers or attempts run out.
func WaitBackend(ctx context.Context, p pinger, attempts int) error {
	const op = "app.WaitBackend"
	log := slog.With("op", op)

	err := retry.Do(ctx, retry.RetryConfig{
		MaxAttempts: attempts,
		Backoff:     retry.ExponentialBackoff(250 * time.Millisecond),
		Notify: func(attempt int, wait time.Duration, err error) {
			log.Info("backend is not ready", "attempt", attempt, "wait", wait, "err", err)
		},
	}, func() error {
		return p.Ping(ctx)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.service.Close()
	app.events.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
