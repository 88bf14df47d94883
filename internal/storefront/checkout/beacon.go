package checkout

import (
	"context"
	"sync"

	"fabricstore/internal/domain"
	"fabricstore/internal/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sender is the transport behind BeaconSubmitter.
type Sender interface {
	SendBeacon(ctx context.Context, sub domain.OrderSubmission) error
	CreateOrder(ctx context.Context, sub domain.OrderSubmission) (*domain.Order, error)
}

// BeaconSubmitter delivers submissions on a background goroutine: a beacon
// first, then a conventional POST if the beacon is rejected. One attempt
// each, failures are logged and dropped. Both attempts carry the same
// request id, so a beacon that was recorded but answered late does not
// produce a second order.
type BeaconSubmitter struct {
	sender Sender
	logger *zap.Logger

	mu       sync.Mutex
	inflight int
	idle     chan struct{}
}

func NewBeaconSubmitter(sender Sender, logger *zap.Logger) *BeaconSubmitter {
	return &BeaconSubmitter{sender: sender, logger: logging.OrNop(logger)}
}

func (b *BeaconSubmitter) SubmitInBackground(sub domain.OrderSubmission) {
	if sub.RequestID == "" {
		sub.RequestID = uuid.NewString()
	}
	b.begin()
	go b.send(sub)
}

func (b *BeaconSubmitter) begin() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inflight == 0 {
		b.idle = make(chan struct{})
	}
	b.inflight++
}

func (b *BeaconSubmitter) finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inflight--
	if b.inflight == 0 {
		close(b.idle)
	}
}

func (b *BeaconSubmitter) send(sub domain.OrderSubmission) {
	defer b.finish()
	ctx := context.Background()
	fields := []zap.Field{
		zap.String("request_id", sub.RequestID),
		zap.String("phone", sub.CustomerPhone),
		zap.Int64("subtotal", sub.Subtotal),
	}

	err := b.sender.SendBeacon(ctx, sub)
	if err == nil {
		b.logger.Debug("checkout: beacon delivered", fields...)
		return
	}
	b.logger.Warn("checkout: beacon failed, falling back to POST", append(fields, zap.Error(err))...)

	order, err := b.sender.CreateOrder(ctx, sub)
	if err != nil {
		b.logger.Error("checkout: order submission failed", append(fields, zap.Error(err))...)
		return
	}
	b.logger.Info("checkout: order recorded", append(fields, zap.String("order_number", order.OrderNumber))...)
}

// Flush waits until no submission is in flight or ctx is done. Short-lived
// processes call it before exiting so a beacon is not cut off mid-flight.
// It is safe to call concurrently with SubmitInBackground.
func (b *BeaconSubmitter) Flush(ctx context.Context) error {
	b.mu.Lock()
	if b.inflight == 0 {
		b.mu.Unlock()
		return nil
	}
	idle := b.idle
	b.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
