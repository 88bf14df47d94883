// Package history lists a signed-in customer's past orders.
package history

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"fabricstore/internal/domain"
	"fabricstore/internal/logging"
	"fabricstore/internal/storefront/api"
	"go.uber.org/zap"
)

type Lister interface {
	ListMyOrders(ctx context.Context, token string) ([]domain.Order, error)
}

// Entry is one row of the history view.
type Entry struct {
	Order domain.Order
	Stage domain.Stage
}

type Service struct {
	lister Lister
	logger *zap.Logger
}

func NewService(l Lister, logger *zap.Logger) *Service {
	return &Service{lister: l, logger: logging.OrNop(logger)}
}

// List returns the customer's orders newest first. A missing or rejected
// token yields an empty list.
func (s *Service) List(ctx context.Context, token string) ([]Entry, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return []Entry{}, nil
	}
	orders, err := s.lister.ListMyOrders(ctx, token)
	if err != nil {
		var se *api.StatusError
		if errors.Is(err, domain.ErrNotFound) || (errors.As(err, &se) && se.Code == http.StatusUnauthorized) {
			s.logger.Info("history: no orders for token", zap.Error(err))
			return []Entry{}, nil
		}
		return nil, err
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	entries := make([]Entry, 0, len(orders))
	for _, o := range orders {
		entries = append(entries, Entry{Order: o, Stage: domain.Classify(o.Status)})
	}
	return entries, nil
}
