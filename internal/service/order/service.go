package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fabricstore/internal/delivery"
	"fabricstore/internal/domain"
	"fabricstore/internal/events"
	"fabricstore/internal/logging"
	orderrepo "fabricstore/internal/repository/order"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	numberAttempts  = 5
	maxRequestIDLen = 128
	publishTimeout  = 5 * time.Second
	DefaultTokenTTL = 30 * 24 * time.Hour
)

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	GetByRequestID(ctx context.Context, requestID string) (*domain.Order, error)
	ListByPhone(ctx context.Context, phone string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, upd orderrepo.StatusUpdate) (*domain.Order, error)
}

type Service struct {
	repo      orderRepo
	tokens    *tokenManager
	publisher events.Publisher
	fees      delivery.FeePolicy
	number    NumberFunc
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*Service)

func WithFeePolicy(fees delivery.FeePolicy) Option {
	return func(s *Service) { s.fees = fees }
}

func WithNumberFunc(fn NumberFunc) Option {
	return func(s *Service) { s.number = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logging.OrNop(logger) }
}

func New(repo orderRepo, tokens tokenStore, publisher events.Publisher, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: publisher,
		fees:      delivery.Default,
		number:    RandomNumber,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil {
		s.publisher = events.NewLog(s.logger)
	}
	s.tokens = newTokenManager(tokens, s.now)
	return s
}

// Submit records a checkout submission as a PENDING order. Subtotal and fee
// are recomputed from the items and delivery option; client figures are only
// compared and logged. A submission whose RequestID was already recorded
// returns the existing order.
func (s *Service) Submit(ctx context.Context, sub domain.OrderSubmission) (*domain.Order, error) {
	sub, err := normalizeSubmission(sub)
	if err != nil {
		return nil, err
	}
	if existing, err := s.findByRequestID(ctx, sub.RequestID); err != nil || existing != nil {
		return existing, err
	}

	var subtotal int64
	for _, item := range sub.Items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}
	fee := s.fees(sub.DeliveryOption)
	if subtotal != sub.Subtotal || fee != sub.DeliveryFee {
		s.logger.Warn("order: client totals differ from recomputed totals",
			zap.Int64("client_subtotal", sub.Subtotal),
			zap.Int64("subtotal", subtotal),
			zap.Int64("client_fee", sub.DeliveryFee),
			zap.Int64("fee", fee),
		)
	}

	o := domain.Order{
		ID:               uuid.NewString(),
		CustomerName:     sub.CustomerName,
		CustomerPhone:    sub.CustomerPhone,
		Channel:          sub.Channel,
		Status:           domain.StatusPending,
		DeliveryOption:   sub.DeliveryOption,
		DeliveryLocation: sub.DeliveryLocation,
		Subtotal:         subtotal,
		DeliveryFee:      fee,
		Total:            subtotal + fee,
		Items:            sub.Items,
		RequestID:        sub.RequestID,
	}

	var created *domain.Order
	for attempt := 0; attempt < numberAttempts; attempt++ {
		number, err := s.number(s.now())
		if err != nil {
			return nil, fmt.Errorf("generate order number: %w", err)
		}
		o.OrderNumber = number
		created, err = s.repo.Create(ctx, o)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("create order: %w", err)
		}
		// A concurrent submission with the same request id won the insert.
		if existing, err := s.findByRequestID(ctx, sub.RequestID); err != nil || existing != nil {
			return existing, err
		}
		s.logger.Debug("order: number collision, retrying", zap.String("order_number", number))
		created = nil
	}
	if created == nil {
		return nil, errors.New("order number collision")
	}

	s.logger.Info("order: placed",
		zap.String("order_id", created.ID),
		zap.String("order_number", created.OrderNumber),
		zap.String("delivery_option", string(created.DeliveryOption)),
		zap.Int64("total", created.Total),
	)
	s.publish(ctx, events.NewOrderEvent(events.TypeOrderPlaced, *created, "", s.now()))
	return created, nil
}

func (s *Service) findByRequestID(ctx context.Context, requestID string) (*domain.Order, error) {
	if requestID == "" {
		return nil, nil
	}
	o, err := s.repo.GetByRequestID(ctx, requestID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup request id: %w", err)
	}
	s.logger.Info("order: duplicate submission",
		zap.String("request_id", requestID),
		zap.String("order_number", o.OrderNumber),
	)
	return o, nil
}

func (s *Service) Track(ctx context.Context, id string) (*domain.TrackingInfo, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := o.Tracking()
	return &info, nil
}

// TrackByNumber only reveals an order when phone matches the one it was placed with.
func (s *Service) TrackByNumber(ctx context.Context, orderNumber, phone string) (*domain.TrackingInfo, error) {
	orderNumber = strings.ToUpper(strings.TrimSpace(orderNumber))
	if orderNumber == "" || digitsOnly(phone) == "" {
		return nil, domain.ErrNotFound
	}
	o, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if digitsOnly(o.CustomerPhone) != digitsOnly(phone) {
		return nil, domain.ErrNotFound
	}
	info := o.Tracking()
	return &info, nil
}

// UpdateStatus moves an order to status, stamping shipped/delivered times on
// first arrival. An empty trackingNumber keeps the stored one.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, trackingNumber string) (*domain.Order, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(current.Status, status); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	upd := orderrepo.StatusUpdate{Status: status}
	if tn := strings.TrimSpace(trackingNumber); tn != "" {
		upd.TrackingNumber = &tn
	}
	switch status {
	case domain.StatusShipped:
		upd.ShippedAt = &now
	case domain.StatusDelivered:
		upd.ShippedAt = &now
		upd.DeliveredAt = &now
	}

	updated, err := s.repo.UpdateStatus(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if updated.Status != current.Status {
		s.publish(ctx, events.NewOrderEvent(events.TypeOrderStatusChanged, *updated, current.Status, now))
	}
	return updated, nil
}

// ListForCustomer returns the orders placed with the phone token was issued for, newest first.
func (s *Service) ListForCustomer(ctx context.Context, token string) ([]domain.Order, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	phone, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	orders, err := s.repo.ListByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// IssueToken grants phone read access to its order history for ttl.
func (s *Service) IssueToken(ctx context.Context, phone string, ttl time.Duration) (string, time.Time, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", time.Time{}, &domain.FieldError{Field: "customerPhone", Message: "phone required"}
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return s.tokens.Issue(ctx, phone, ttl)
}

func (s *Service) publish(ctx context.Context, ev events.OrderEvent) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, ev); err != nil {
		s.logger.Error("order: publish event failed",
			zap.String("type", ev.Type),
			zap.String("order_id", ev.OrderID),
			zap.Error(err),
		)
	}
}

func normalizeSubmission(sub domain.OrderSubmission) (domain.OrderSubmission, error) {
	sub.RequestID = strings.TrimSpace(sub.RequestID)
	if len(sub.RequestID) > maxRequestIDLen {
		return sub, &domain.FieldError{Field: "requestId", Message: "request id too long"}
	}
	sub.CustomerName = strings.TrimSpace(sub.CustomerName)
	if sub.CustomerName == "" {
		sub.CustomerName = "Guest"
	}
	sub.CustomerPhone = strings.TrimSpace(sub.CustomerPhone)
	if sub.CustomerPhone == "" {
		return sub, &domain.FieldError{Field: "customerPhone", Message: "phone required"}
	}
	if strings.TrimSpace(sub.Channel) == "" {
		sub.Channel = domain.OrderChannelWhatsApp
	}

	option, err := domain.ParseDeliveryOption(string(sub.DeliveryOption))
	if err != nil {
		return sub, &domain.FieldError{Field: "deliveryOption", Message: err.Error()}
	}
	sub.DeliveryOption = option
	sub.DeliveryLocation = strings.TrimSpace(sub.DeliveryLocation)
	if option == domain.DeliveryPickup {
		sub.DeliveryLocation = ""
	} else if sub.DeliveryLocation == "" {
		return sub, &domain.FieldError{Field: "deliveryLocation", Message: "location required"}
	}

	if len(sub.Items) == 0 {
		return sub, &domain.FieldError{Field: "items", Message: "at least one item required"}
	}
	for _, item := range sub.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return sub, &domain.FieldError{Field: "items", Message: "productId required"}
		}
		if item.Quantity <= 0 {
			return sub, &domain.FieldError{Field: "items", Message: "quantity must be positive"}
		}
		if item.UnitPrice < 0 {
			return sub, &domain.FieldError{Field: "items", Message: "unitPrice must not be negative"}
		}
	}
	return sub, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
