package order

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"fabricstore/internal/domain"
	"fabricstore/internal/events"
	orderrepo "fabricstore/internal/repository/order"
	tokenrepo "fabricstore/internal/repository/token"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubOrderRepo struct {
	orders     map[string]*domain.Order
	createErrs []error
	created    []domain.Order
	lastUpdate orderrepo.StatusUpdate
	listPhone  string
	// raceWith is stored just before Create reports a conflict, as a
	// concurrent insert of the same request id would.
	raceWith *domain.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: map[string]*domain.Order{}}
}

func (s *stubOrderRepo) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	if s.raceWith != nil {
		s.orders[s.raceWith.ID] = s.raceWith
		s.raceWith = nil
		return nil, domain.ErrAlreadyExists
	}
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	o.CreatedAt = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	s.created = append(s.created, o)
	s.orders[o.ID] = &o
	return &o, nil
}

func (s *stubOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubOrderRepo) GetByNumber(_ context.Context, number string) (*domain.Order, error) {
	for _, o := range s.orders {
		if o.OrderNumber == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubOrderRepo) GetByRequestID(_ context.Context, requestID string) (*domain.Order, error) {
	for _, o := range s.orders {
		if o.RequestID == requestID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubOrderRepo) ListByPhone(_ context.Context, phone string) ([]domain.Order, error) {
	s.listPhone = phone
	var out []domain.Order
	for _, o := range s.orders {
		if o.CustomerPhone == phone {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, id string, upd orderrepo.StatusUpdate) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.lastUpdate = upd
	o.Status = upd.Status
	if upd.TrackingNumber != nil {
		o.TrackingNumber = *upd.TrackingNumber
	}
	if upd.ShippedAt != nil && o.ShippedAt == nil {
		o.ShippedAt = upd.ShippedAt
	}
	if upd.DeliveredAt != nil && o.DeliveredAt == nil {
		o.DeliveredAt = upd.DeliveredAt
	}
	cp := *o
	return &cp, nil
}

type stubTokenRepo struct {
	tokens map[string]tokenrepo.Token
}

func (s *stubTokenRepo) Create(_ context.Context, t tokenrepo.Token) error {
	if _, ok := s.tokens[t.Token]; ok {
		return domain.ErrAlreadyExists
	}
	s.tokens[t.Token] = t
	return nil
}

func (s *stubTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := s.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s *stubTokenRepo) Delete(_ context.Context, token string) error {
	delete(s.tokens, token)
	return nil
}

type stubPublisher struct {
	events []events.OrderEvent
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, ev events.OrderEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *stubPublisher) Close() error { return nil }

var fixedNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestService(repo *stubOrderRepo, pub *stubPublisher, opts ...Option) (*Service, *stubTokenRepo) {
	tokens := &stubTokenRepo{tokens: map[string]tokenrepo.Token{}}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(repo, tokens, pub, opts...), tokens
}

func kigaliSubmission() domain.OrderSubmission {
	return domain.OrderSubmission{
		CustomerName:     "Aline",
		CustomerPhone:    "0788123456",
		Channel:          domain.OrderChannelWhatsApp,
		Subtotal:         38000,
		DeliveryOption:   domain.DeliveryKigali,
		DeliveryFee:      2000,
		DeliveryLocation: "Kimihurura",
		Items: []domain.OrderItem{
			{ProductID: "kitenge-01", Quantity: 2, UnitPrice: 15000},
			{ProductID: "ankara-07", Quantity: 1, UnitPrice: 8000},
		},
	}
}

func TestSubmitCreatesPendingOrder(t *testing.T) {
	repo := newStubOrderRepo()
	pub := &stubPublisher{}
	svc, _ := newTestService(repo, pub)

	o, err := svc.Submit(context.Background(), kigaliSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != domain.StatusPending || o.Total != 40000 || o.DeliveryFee != 2000 {
		t.Fatalf("unexpected order %+v", o)
	}
	if !regexp.MustCompile(`^FAB-250301-[A-Z2-9]{4}$`).MatchString(o.OrderNumber) {
		t.Fatalf("unexpected order number %q", o.OrderNumber)
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.TypeOrderPlaced {
		t.Fatalf("expected order.placed event, got %+v", pub.events)
	}
}

func TestSubmitRecomputesTotals(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	repo := newStubOrderRepo()
	svc, _ := newTestService(repo, &stubPublisher{}, WithLogger(zap.New(core)))

	sub := kigaliSubmission()
	sub.Subtotal = 1
	sub.DeliveryFee = 0
	o, err := svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Subtotal != 38000 || o.DeliveryFee != 2000 {
		t.Fatalf("expected server totals, got %d/%d", o.Subtotal, o.DeliveryFee)
	}
	if logs.FilterMessage("order: client totals differ from recomputed totals").Len() != 1 {
		t.Fatalf("expected mismatch to be logged")
	}
}

func TestSubmitValidation(t *testing.T) {
	cases := map[string]struct {
		mutate func(*domain.OrderSubmission)
		field  string
	}{
		"missing phone":    {func(s *domain.OrderSubmission) { s.CustomerPhone = "  " }, "customerPhone"},
		"unknown option":   {func(s *domain.OrderSubmission) { s.DeliveryOption = "drone" }, "deliveryOption"},
		"missing location": {func(s *domain.OrderSubmission) { s.DeliveryLocation = "" }, "deliveryLocation"},
		"no items":         {func(s *domain.OrderSubmission) { s.Items = nil }, "items"},
		"zero quantity":    {func(s *domain.OrderSubmission) { s.Items[0].Quantity = 0 }, "items"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newStubOrderRepo()
			svc, _ := newTestService(repo, &stubPublisher{})
			sub := kigaliSubmission()
			tc.mutate(&sub)
			_, err := svc.Submit(context.Background(), sub)
			var fe *domain.FieldError
			if !errors.As(err, &fe) || fe.Field != tc.field {
				t.Fatalf("expected field error on %s, got %v", tc.field, err)
			}
			if len(repo.created) != 0 {
				t.Fatalf("invalid submission must not be stored")
			}
		})
	}
}

func TestSubmitPickupDefaultsGuestAndClearsLocation(t *testing.T) {
	repo := newStubOrderRepo()
	svc, _ := newTestService(repo, &stubPublisher{})
	sub := kigaliSubmission()
	sub.CustomerName = ""
	sub.DeliveryOption = "PICKUP"
	o, err := svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.CustomerName != "Guest" || o.DeliveryLocation != "" || o.DeliveryFee != 0 {
		t.Fatalf("unexpected order %+v", o)
	}
}

func TestSubmitRetriesNumberCollision(t *testing.T) {
	repo := newStubOrderRepo()
	repo.createErrs = []error{domain.ErrAlreadyExists, domain.ErrAlreadyExists, nil}
	numbers := []string{"FAB-250301-AAAA", "FAB-250301-BBBB", "FAB-250301-CCCC"}
	calls := 0
	svc, _ := newTestService(repo, &stubPublisher{}, WithNumberFunc(func(time.Time) (string, error) {
		n := numbers[calls]
		calls++
		return n, nil
	}))
	o, err := svc.Submit(context.Background(), kigaliSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.OrderNumber != "FAB-250301-CCCC" || calls != 3 {
		t.Fatalf("expected third number after two collisions, got %s after %d calls", o.OrderNumber, calls)
	}
}

func TestSubmitSameRequestIDRecordsOnce(t *testing.T) {
	repo := newStubOrderRepo()
	pub := &stubPublisher{}
	svc, _ := newTestService(repo, pub)

	sub := kigaliSubmission()
	sub.RequestID = "req-1"
	first, err := svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.ID != first.ID || second.OrderNumber != first.OrderNumber {
		t.Fatalf("expected the first order back, got %s vs %s", second.OrderNumber, first.OrderNumber)
	}
	if len(repo.created) != 1 || len(pub.events) != 1 {
		t.Fatalf("expected one order and one event, got %d orders %d events", len(repo.created), len(pub.events))
	}

	other := kigaliSubmission()
	other.RequestID = "req-2"
	if _, err := svc.Submit(context.Background(), other); err != nil {
		t.Fatalf("different request id: %v", err)
	}
	if len(repo.created) != 2 {
		t.Fatalf("expected a second order for a new request id, got %d", len(repo.created))
	}
}

func TestSubmitConcurrentDuplicateReturnsWinner(t *testing.T) {
	repo := newStubOrderRepo()
	repo.raceWith = &domain.Order{ID: "winner", OrderNumber: "FAB-250301-WWWW", RequestID: "req-1", Status: domain.StatusPending}
	pub := &stubPublisher{}
	svc, _ := newTestService(repo, pub)

	sub := kigaliSubmission()
	sub.RequestID = "req-1"
	o, err := svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.ID != "winner" || len(repo.created) != 0 || len(pub.events) != 0 {
		t.Fatalf("expected the concurrent winner and no new order, got %+v created=%d", o, len(repo.created))
	}
}

func TestSubmitRejectsOversizedRequestID(t *testing.T) {
	svc, _ := newTestService(newStubOrderRepo(), &stubPublisher{})
	sub := kigaliSubmission()
	sub.RequestID = strings.Repeat("x", 129)
	_, err := svc.Submit(context.Background(), sub)
	var fe *domain.FieldError
	if !errors.As(err, &fe) || fe.Field != "requestId" {
		t.Fatalf("expected requestId field error, got %v", err)
	}
}

func TestSubmitGivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := newStubOrderRepo()
	repo.createErrs = []error{domain.ErrAlreadyExists, domain.ErrAlreadyExists, domain.ErrAlreadyExists, domain.ErrAlreadyExists, domain.ErrAlreadyExists}
	svc, _ := newTestService(repo, &stubPublisher{})
	if _, err := svc.Submit(context.Background(), kigaliSubmission()); err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
}

func TestSubmitSurvivesPublishFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	pub := &stubPublisher{err: errors.New("broker down")}
	svc, _ := newTestService(newStubOrderRepo(), pub, WithLogger(zap.New(core)))
	if _, err := svc.Submit(context.Background(), kigaliSubmission()); err != nil {
		t.Fatalf("publish failure must not fail submission: %v", err)
	}
	if logs.FilterMessage("order: publish event failed").Len() != 1 {
		t.Fatalf("expected publish failure to be logged")
	}
}

func TestTrackByNumberRequiresMatchingPhone(t *testing.T) {
	repo := newStubOrderRepo()
	svc, _ := newTestService(repo, &stubPublisher{})
	o, err := svc.Submit(context.Background(), kigaliSubmission())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	info, err := svc.TrackByNumber(context.Background(), o.OrderNumber, "0788 123-456")
	if err != nil || info.OrderID != o.ID {
		t.Fatalf("expected match with formatted phone, got %+v, %v", info, err)
	}
	if _, err := svc.TrackByNumber(context.Background(), o.OrderNumber, "0788000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong phone, got %v", err)
	}
	if _, err := svc.Track(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatusStampsAndPublishes(t *testing.T) {
	repo := newStubOrderRepo()
	pub := &stubPublisher{}
	svc, _ := newTestService(repo, pub)
	o, _ := svc.Submit(context.Background(), kigaliSubmission())

	shipped, err := svc.UpdateStatus(context.Background(), o.ID, domain.StatusShipped, "RW-TRACK-1")
	if err != nil {
		t.Fatalf("ship: %v", err)
	}
	if shipped.ShippedAt == nil || shipped.TrackingNumber != "RW-TRACK-1" {
		t.Fatalf("unexpected shipped order %+v", shipped)
	}
	last := pub.events[len(pub.events)-1]
	if last.Type != events.TypeOrderStatusChanged || last.PreviousStatus != domain.StatusPending {
		t.Fatalf("unexpected event %+v", last)
	}

	delivered, err := svc.UpdateStatus(context.Background(), o.ID, domain.StatusDelivered, "")
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if delivered.DeliveredAt == nil || delivered.TrackingNumber != "RW-TRACK-1" {
		t.Fatalf("unexpected delivered order %+v", delivered)
	}

	if _, err := svc.UpdateStatus(context.Background(), o.ID, domain.StatusCancelled, ""); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected delivered order to be frozen, got %v", err)
	}
}

func TestCheckTransition(t *testing.T) {
	ok := [][2]domain.OrderStatus{
		{domain.StatusPending, domain.StatusConfirmed},
		{domain.StatusConfirmed, domain.StatusProcessing},
		{domain.StatusProcessing, domain.StatusConfirmed},
		{domain.StatusPending, domain.StatusShipped},
		{domain.StatusShipped, domain.StatusCancelled},
	}
	for _, tr := range ok {
		if err := CheckTransition(tr[0], tr[1]); err != nil {
			t.Fatalf("%s -> %s: unexpected error %v", tr[0], tr[1], err)
		}
	}
	bad := [][2]domain.OrderStatus{
		{domain.StatusShipped, domain.StatusProcessing},
		{domain.StatusDelivered, domain.StatusShipped},
		{domain.StatusCancelled, domain.StatusPending},
	}
	for _, tr := range bad {
		if err := CheckTransition(tr[0], tr[1]); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("%s -> %s: expected ErrInvalidTransition, got %v", tr[0], tr[1], err)
		}
	}
}

func TestListForCustomer(t *testing.T) {
	repo := newStubOrderRepo()
	svc, tokens := newTestService(repo, &stubPublisher{})
	if _, err := svc.Submit(context.Background(), kigaliSubmission()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	token, expires, err := svc.IssueToken(context.Background(), "0788123456", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expires.Equal(fixedNow.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", expires)
	}
	orders, err := svc.ListForCustomer(context.Background(), token)
	if err != nil || len(orders) != 1 || repo.listPhone != "0788123456" {
		t.Fatalf("unexpected result %v, %v", orders, err)
	}

	if _, err := svc.ListForCustomer(context.Background(), "unknown"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	tokens.tokens["stale"] = tokenrepo.Token{Token: "stale", CustomerPhone: "0788123456", ExpiresAt: fixedNow.Add(-time.Minute)}
	if _, err := svc.ListForCustomer(context.Background(), "stale"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
	if _, ok := tokens.tokens["stale"]; ok {
		t.Fatalf("expired token should be deleted")
	}
}

func TestRandomNumberShape(t *testing.T) {
	n, err := RandomNumber(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !regexp.MustCompile(`^FAB-241231-[A-HJ-NP-Z2-9]{4}$`).MatchString(n) {
		t.Fatalf("unexpected number %q", n)
	}
}
