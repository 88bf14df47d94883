package order

import (
	"context"
	"time"

	"fabricstore/internal/domain"
)

// StatusUpdate is applied atomically to a single order.
type StatusUpdate struct {
	Status         domain.OrderStatus
	TrackingNumber *string
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
}

type Repository interface {
	// Create stores o with its items. It returns domain.ErrAlreadyExists when
	// the id, order number or request id is taken.
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	GetByRequestID(ctx context.Context, requestID string) (*domain.Order, error)
	ListByPhone(ctx context.Context, phone string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (*domain.Order, error)
}
