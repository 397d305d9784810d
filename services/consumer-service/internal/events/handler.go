package events

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// Apply is the side effect run for each decoded event. The pipeline is
// at-least-once, so an Apply must tolerate redelivery.
type Apply func(ctx context.Context, evt Event, kind Kind)

// NewRecordHandler turns raw Kafka records into domain events. Empty
// values (tombstones, heartbeats) are skipped silently; malformed
// records are logged and skipped so one poison pill cannot stall the
// partition.
func NewRecordHandler(logger *slog.Logger, apply Apply) func(ctx context.Context, msg kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		if len(msg.Value) == 0 {
			return nil
		}

		evt, kind, err := Decode(msg.Value)
		if err != nil {
			logger.Error("skipping malformed record",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"err", err,
			)
			return nil
		}

		apply(ctx, evt, kind)
		return nil
	}
}
