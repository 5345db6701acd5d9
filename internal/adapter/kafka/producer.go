package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/price-tracker/internal/core/domain"
	"github.com/niksmo/price-tracker/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.EventPublisher = (*EventsProducer)(nil)

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// An EventsProducer used for produce [domain.ClientEvent]
type EventsProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewEventsProducer(opts ...ProducerOpt) (EventsProducer, error) {
	const op = "NewEventsProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return EventsProducer{}, opErr(err, op)
		}
	}

	opPrefix := "EventsProducer"
	p := producer{
		opPrefix: opPrefix,
		cl:       options.cl,
	}

	return EventsProducer{
		encoder:  options.encoder,
		producer: p,
		opPrefix: opPrefix,
	}, nil
}

func (p EventsProducer) Close() {
	p.producer.close()
}

func (p EventsProducer) PublishEvent(
	ctx context.Context, evt domain.ClientEvent,
) error {
	const op = "PublishEvent"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(evt)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

func (p EventsProducer) createRecord(evt domain.ClientEvent) (*kgo.Record, error) {
	s := clientEventToSchemaV1(evt)
	v, err := p.encoder.Encode(s)
	if err != nil {
		return nil, err
	}

	key := s.ProductID
	if key == "" {
		key = s.Kind
	}
	return &kgo.Record{Key: []byte(key), Value: v}, nil
}
