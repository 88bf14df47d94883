package order

import (
	"fmt"

	"fabricstore/internal/domain"
)

// CheckTransition reports whether an order may move from one status to
// another. Delivered and cancelled orders are frozen; cancellation is allowed
// from any other state; everything else may only move forward along the
// customer-facing stages.
func CheckTransition(from, to domain.OrderStatus) error {
	if from.Terminal() {
		return fmt.Errorf("%w: order is %s", domain.ErrInvalidTransition, from)
	}
	if to == domain.StatusCancelled {
		return nil
	}
	if domain.Classify(to).Rank() < domain.Classify(from).Rank() {
		return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, from, to)
	}
	return nil
}
