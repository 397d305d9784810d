package outbox

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository writes outbox rows. Insert takes the caller's transaction
// so an event is never committed apart from its business mutation.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Insert(ctx context.Context, tx pgx.Tx, evt Event) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO outbox_event (event_id, aggregate_type, aggregate_id, type, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, evt.EventID, evt.AggregateType, evt.AggregateID, evt.Type, evt.Payload)
	return err
}
