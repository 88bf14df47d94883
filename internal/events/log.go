package events

import (
	"context"

	"fabricstore/internal/logging"
	"go.uber.org/zap"
)

type logPublisher struct {
	logger *zap.Logger
}

// NewLog records events in the log. Used when no broker is configured.
func NewLog(logger *zap.Logger) Publisher {
	return &logPublisher{logger: logging.OrNop(logger)}
}

func (l *logPublisher) Publish(_ context.Context, ev OrderEvent) error {
	l.logger.Info("order event",
		zap.String("type", ev.Type),
		zap.String("order_id", ev.OrderID),
		zap.String("order_number", ev.OrderNumber),
		zap.String("status", string(ev.Status)),
	)
	return nil
}

func (l *logPublisher) Close() error { return nil }
