package order

import (
	"context"
	"errors"

	"fabricstore/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id::text, order_number, customer_name, customer_phone, channel, status,
delivery_option, delivery_location, subtotal, delivery_fee, total, tracking_number,
created_at, shipped_at, delivered_at, COALESCE(request_id, '')`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO orders (id, order_number, customer_name, customer_phone, channel, status,
    delivery_option, delivery_location, subtotal, delivery_fee, total, tracking_number, request_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''))
RETURNING created_at
`
	if err := tx.QueryRow(ctx, q,
		o.ID, o.OrderNumber, o.CustomerName, o.CustomerPhone, o.Channel, string(o.Status),
		string(o.DeliveryOption), o.DeliveryLocation, o.Subtotal, o.DeliveryFee, o.Total, o.TrackingNumber,
		o.RequestID,
	).Scan(&o.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	batch := &pgx.Batch{}
	for i, item := range o.Items {
		batch.Queue(`
INSERT INTO order_items (order_id, position, product_id, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5)
`, o.ID, i, item.ProductID, item.Quantity, item.UnitPrice)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.fetchOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id::text = $1`, id)
}

func (r *postgresRepo) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return r.fetchOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber)
}

func (r *postgresRepo) GetByRequestID(ctx context.Context, requestID string) (*domain.Order, error) {
	return r.fetchOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE request_id = $1`, requestID)
}

func (r *postgresRepo) ListByPhone(ctx context.Context, phone string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE customer_phone = $1
ORDER BY created_at DESC
`, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// UpdateStatus never overwrites an existing shipped_at or delivered_at.
func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (*domain.Order, error) {
	const q = `
UPDATE orders
SET status = $2,
    tracking_number = COALESCE($3, tracking_number),
    shipped_at = COALESCE(shipped_at, $4),
    delivered_at = COALESCE(delivered_at, $5)
WHERE id::text = $1
RETURNING ` + orderColumns
	return r.fetchOrder(ctx, q, id, string(upd.Status), upd.TrackingNumber, upd.ShippedAt, upd.DeliveredAt)
}

func (r *postgresRepo) fetchOrder(ctx context.Context, query string, args ...interface{}) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *postgresRepo) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
SELECT product_id, quantity, unit_price
FROM order_items
WHERE order_id::text = $1
ORDER BY position ASC
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status, option string
	if err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerName,
		&o.CustomerPhone,
		&o.Channel,
		&status,
		&option,
		&o.DeliveryLocation,
		&o.Subtotal,
		&o.DeliveryFee,
		&o.Total,
		&o.TrackingNumber,
		&o.CreatedAt,
		&o.ShippedAt,
		&o.DeliveredAt,
		&o.RequestID,
	); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	o.DeliveryOption = domain.DeliveryOption(option)
	return &o, nil
}
