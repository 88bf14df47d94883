package history

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"fabricstore/internal/domain"
	"fabricstore/internal/storefront/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	orders []domain.Order
	err    error
	calls  int
	token  string
}

func (s *stubLister) ListMyOrders(_ context.Context, token string) ([]domain.Order, error) {
	s.calls++
	s.token = token
	return s.orders, s.err
}

func TestListEmptyTokenSkipsBackend(t *testing.T) {
	l := &stubLister{}
	got, err := NewService(l, nil).List(context.Background(), "  ")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, l.calls)
}

func TestListSortsNewestFirst(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	l := &stubLister{orders: []domain.Order{
		{OrderNumber: "A", Status: domain.StatusDelivered, CreatedAt: base},
		{OrderNumber: "C", Status: domain.StatusPending, CreatedAt: base.Add(48 * time.Hour)},
		{OrderNumber: "B", Status: domain.StatusConfirmed, CreatedAt: base.Add(24 * time.Hour)},
	}}
	got, err := NewService(l, nil).List(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", l.token)

	require.Len(t, got, 3)
	numbers := []string{got[0].Order.OrderNumber, got[1].Order.OrderNumber, got[2].Order.OrderNumber}
	assert.Equal(t, []string{"C", "B", "A"}, numbers)
	assert.Equal(t, domain.StageProcessing, got[1].Stage)
}

func TestListRejectedTokenIsEmpty(t *testing.T) {
	for name, err := range map[string]error{
		"unauthorized": &api.StatusError{Method: "GET", Path: "/me/orders", Code: http.StatusUnauthorized},
		"not found":    domain.ErrNotFound,
	} {
		t.Run(name, func(t *testing.T) {
			got, listErr := NewService(&stubLister{err: err}, nil).List(context.Background(), "expired")
			require.NoError(t, listErr)
			assert.Empty(t, got)
		})
	}
}

func TestListPropagatesOtherErrors(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := NewService(&stubLister{err: boom}, nil).List(context.Background(), "tok")
	assert.ErrorIs(t, err, boom)
}
