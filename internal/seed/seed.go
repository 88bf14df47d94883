package seed

import (
	"context"
	"fmt"
	"time"

	"fabricstore/internal/delivery"
	"fabricstore/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DemoPhone = "0788123456"
	DemoToken = "demo-customer-token"
)

type orderSeed struct {
	Number   string
	Status   domain.OrderStatus
	Option   domain.DeliveryOption
	Location string
	Age      time.Duration
	Items    []domain.OrderItem
}

// Result reports what a seed run made available for manual testing.
type Result struct {
	OrderNumbers  []string
	CustomerPhone string
	CustomerToken string
}

// Apply inserts demo orders and a customer token. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) (Result, error) {
	orders := []orderSeed{
		{
			Number: "FAB-DEMO-0001",
			Status: domain.StatusDelivered,
			Option: domain.DeliveryPickup,
			Age:    14 * 24 * time.Hour,
			Items: []domain.OrderItem{
				{ProductID: "ankara-07", Quantity: 3, UnitPrice: 8000},
			},
		},
		{
			Number:   "FAB-DEMO-0002",
			Status:   domain.StatusShipped,
			Option:   domain.DeliveryKigali,
			Location: "Kimihurura, KG 7 Ave",
			Age:      2 * 24 * time.Hour,
			Items: []domain.OrderItem{
				{ProductID: "kitenge-01", Quantity: 2, UnitPrice: 15000},
				{ProductID: "ankara-07", Quantity: 1, UnitPrice: 8000},
			},
		},
		{
			Number:   "FAB-DEMO-0003",
			Status:   domain.StatusPending,
			Option:   domain.DeliveryUpcountry,
			Location: "Musanze",
			Age:      time.Hour,
			Items: []domain.OrderItem{
				{ProductID: "imigongo-03", Quantity: 1, UnitPrice: 45000},
			},
		},
	}

	res := Result{CustomerPhone: DemoPhone, CustomerToken: DemoToken}
	now := time.Now().UTC()
	for _, o := range orders {
		if err := insertOrder(ctx, pool, o, now); err != nil {
			return res, fmt.Errorf("insert order %s: %w", o.Number, err)
		}
		res.OrderNumbers = append(res.OrderNumbers, o.Number)
	}

	if err := upsertToken(ctx, pool, now.Add(365*24*time.Hour)); err != nil {
		return res, fmt.Errorf("upsert token: %w", err)
	}
	return res, nil
}

func insertOrder(ctx context.Context, pool *pgxpool.Pool, o orderSeed, now time.Time) error {
	var subtotal int64
	for _, it := range o.Items {
		subtotal += it.UnitPrice * int64(it.Quantity)
	}
	fee := delivery.Fee(o.Option)
	created := now.Add(-o.Age)

	var shippedAt, deliveredAt *time.Time
	if rank := domain.Classify(o.Status).Rank(); rank >= domain.StageShipped.Rank() {
		t := created.Add(24 * time.Hour)
		shippedAt = &t
		if o.Status == domain.StatusDelivered {
			d := created.Add(48 * time.Hour)
			deliveredAt = &d
		}
	}

	id := uuid.NewString()
	const q = `
INSERT INTO orders (id, order_number, customer_name, customer_phone, channel, status,
    delivery_option, delivery_location, subtotal, delivery_fee, total, created_at, shipped_at, delivered_at)
VALUES ($1, $2, 'Demo Customer', $3, 'whatsapp', $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (order_number) DO NOTHING
`
	cmd, err := pool.Exec(ctx, q, id, o.Number, DemoPhone, string(o.Status), string(o.Option), o.Location,
		subtotal, fee, subtotal+fee, created, shippedAt, deliveredAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return nil
	}
	for i, it := range o.Items {
		if _, err := pool.Exec(ctx, `
INSERT INTO order_items (order_id, position, product_id, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5)
`, id, i, it.ProductID, it.Quantity, it.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

func upsertToken(ctx context.Context, pool *pgxpool.Pool, expiresAt time.Time) error {
	const q = `
INSERT INTO customer_tokens (token, customer_phone, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (token) DO UPDATE
SET customer_phone = EXCLUDED.customer_phone,
    expires_at = EXCLUDED.expires_at
`
	_, err := pool.Exec(ctx, q, DemoToken, DemoPhone, expiresAt)
	return err
}
