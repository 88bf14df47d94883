// Package events publishes order lifecycle events.
package events

import (
	"context"
	"time"

	"fabricstore/internal/domain"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the payload written for every order lifecycle change.
type OrderEvent struct {
	Type           string             `json:"type"`
	OrderID        string             `json:"orderId"`
	OrderNumber    string             `json:"orderNumber"`
	Status         domain.OrderStatus `json:"status"`
	PreviousStatus domain.OrderStatus `json:"previousStatus,omitempty"`
	Total          int64              `json:"total"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

// NewOrderEvent builds an event of type typ from the order's current state.
func NewOrderEvent(typ string, o domain.Order, previous domain.OrderStatus, at time.Time) OrderEvent {
	return OrderEvent{
		Type:           typ,
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		PreviousStatus: previous,
		Total:          o.Total,
		OccurredAt:     at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
	Close() error
}
