package eventlog

import (
	"context"
	"log/slog"

	"github.com/niksmo/price-tracker/internal/core/domain"
	"github.com/niksmo/price-tracker/internal/core/port"
)

var _ port.EventPublisher = (*Publisher)(nil)

// A Publisher writes client events to the log. It is used when no broker is
// configured.
type Publisher struct {
	log *slog.Logger
}

func New(log *slog.Logger) Publisher {
	if log == nil {
		log = slog.Default()
	}
	return Publisher{log: log}
}

func (p Publisher) PublishEvent(ctx context.Context, evt domain.ClientEvent) error {
	const op = "Publisher.PublishEvent"
	p.log.InfoContext(ctx, "client event",
		"op", op,
		"kind", evt.Kind,
		"productID", evt.ProductID,
		"products", evt.Products,
		"at", evt.At,
	)
	return nil
}

func (p Publisher) Close() {}
