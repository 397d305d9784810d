package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/orderflow-io/orderflow/libs/kafkax"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Handler func(ctx context.Context, msg kafka.Message) error

type reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader  reader
	logger  *slog.Logger
	handler Handler

	minBackoff time.Duration
	maxBackoff time.Duration
}

type Config struct {
	Brokers string
	GroupID string
	Topic   string
}

func New(logger *slog.Logger, cfg Config, handler Handler) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: kafkax.SplitBrokers(cfg.Brokers),
		GroupID: cfg.GroupID,
		Topic:   cfg.Topic,
		// FirstOffset only applies when the group has no committed
		// offset; an established group resumes where it left off.
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	return &Consumer{
		reader:     r,
		logger:     logger,
		handler:    handler,
		minBackoff: 1 * time.Second,
		maxBackoff: 30 * time.Second,
	}
}

// Run pulls records serially until ctx is cancelled, preserving
// per-partition order. Handler errors are logged and the loop moves on;
// broker errors retry with capped exponential backoff rather than
// crashing the process.
func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	backoff := c.minBackoff
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka read error", "err", err, "retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > c.maxBackoff {
				backoff = c.maxBackoff
			}
			continue
		}
		backoff = c.minBackoff

		ctxMsg := kafkax.ExtractTraceContext(ctx, msg)
		ctxSpan, span := otel.Tracer("kafka").Start(ctxMsg, "kafka.consume",
			trace.WithAttributes(
				attribute.String("messaging.system", "kafka"),
				attribute.String("messaging.destination", msg.Topic),
			),
		)
		if err := c.handler(ctxSpan, msg); err != nil {
			c.logger.Error("handler error",
				"err", err,
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
			span.RecordError(err)
		}
		span.End()
	}
}
