package storage

import (
	"context"

	"github.com/orderflow-io/orderflow/libs/db"
	"github.com/orderflow-io/orderflow/services/order-service/internal/model"
	"github.com/orderflow-io/orderflow/services/order-service/internal/outbox"
)

type OrderRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewOrderRepository(pool *db.Pool, outboxRepo *outbox.Repository) *OrderRepository {
	return &OrderRepository{pool: pool, outbox: outboxRepo}
}

// CreateWithEvent inserts the order and its creation event in one
// transaction. A duplicate order id is a no-op on both tables: first
// write wins, and the original transaction already staged the event.
// Any failure after Begin rolls the whole unit back, so a committed
// outbox row always implies a committed order row and vice versa.
func (r *OrderRepository) CreateWithEvent(ctx context.Context, order model.Order, evt outbox.Event) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO orders (id, status)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, order.ID, order.Status)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}

	if err := r.outbox.Insert(ctx, tx, evt); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (r *OrderRepository) Get(ctx context.Context, id string) (model.Order, error) {
	var o model.Order
	err := r.pool.QueryRow(ctx, `
		SELECT id, status FROM orders WHERE id = $1
	`, id).Scan(&o.ID, &o.Status)
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}
