package checkout

import (
	"errors"
	"sync"

	"fabricstore/internal/delivery"
	"fabricstore/internal/domain"
	"fabricstore/internal/logging"
	"go.uber.org/zap"
)

// Phase is the state of the current checkout attempt.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseSubmitting
	PhaseHandoff
)

func (p Phase) String() string {
	switch p {
	case PhaseValidating:
		return "validating"
	case PhaseSubmitting:
		return "submitting"
	case PhaseHandoff:
		return "handoff"
	}
	return "idle"
}

// CartSource is the part of the cart store checkout needs.
type CartSource interface {
	Items() []domain.CartItem
	Clear()
}

// Submitter records an order durably without blocking the caller.
// Implementations must return immediately and swallow their own failures.
type Submitter interface {
	SubmitInBackground(sub domain.OrderSubmission)
}

// Navigator sends the customer to the handoff link.
type Navigator interface {
	Navigate(url string)
}

// Handoff is the outcome of a successful checkout.
type Handoff struct {
	URL         string
	Message     string
	Subtotal    int64
	DeliveryFee int64
	GrandTotal  int64
}

// Orchestrator runs checkout attempts: validate, fire the background
// submission, then hand off to the merchant regardless of how the
// submission fares.
type Orchestrator struct {
	cart      CartSource
	submitter Submitter
	navigator Navigator
	fees      delivery.FeePolicy
	recipient string
	logger    *zap.Logger

	mu    sync.Mutex
	phase Phase
}

type Option func(*Orchestrator)

// WithFeePolicy replaces the default delivery fee table.
func WithFeePolicy(fees delivery.FeePolicy) Option {
	return func(o *Orchestrator) { o.fees = fees }
}

// WithNavigator sets where the handoff URL is opened.
func WithNavigator(n Navigator) Option {
	return func(o *Orchestrator) { o.navigator = n }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logging.OrNop(logger) }
}

// New builds an Orchestrator handing off to the WhatsApp number recipient.
func New(cart CartSource, submitter Submitter, recipient string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cart:      cart,
		submitter: submitter,
		fees:      delivery.Default,
		recipient: recipient,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Phase reports where the latest attempt stopped.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
}

// Checkout validates d against the current cart and performs the handoff.
// A returned error is always a *domain.FieldError and means nothing happened.
func (o *Orchestrator) Checkout(d Draft) (*Handoff, error) {
	o.setPhase(PhaseValidating)
	items := o.cart.Items()
	if err := Validate(d); err != nil {
		o.setPhase(PhaseIdle)
		return nil, err
	}
	if len(items) == 0 {
		o.setPhase(PhaseIdle)
		return nil, ErrEmptyCart
	}

	o.setPhase(PhaseSubmitting)
	sub := Submission(d, items, o.fees)
	if o.submitter != nil {
		o.submitter.SubmitInBackground(sub)
	} else {
		o.logger.Warn("checkout: no submitter configured, order will not be recorded")
	}

	msg := BuildMessage(d, items, sub.DeliveryFee)
	h := &Handoff{
		URL:         HandoffURL(o.recipient, msg),
		Message:     msg,
		Subtotal:    sub.Subtotal,
		DeliveryFee: sub.DeliveryFee,
		GrandTotal:  sub.Subtotal + sub.DeliveryFee,
	}

	o.cart.Clear()
	o.setPhase(PhaseHandoff)
	o.logger.Info("checkout: handoff",
		zap.String("delivery", string(sub.DeliveryOption)),
		zap.Int("lines", len(items)),
		zap.Int64("grand_total", h.GrandTotal),
	)
	if o.navigator != nil {
		o.navigator.Navigate(h.URL)
	}
	return h, nil
}

// IsValidationError reports whether err came from checkout validation.
func IsValidationError(err error) bool {
	var fe *domain.FieldError
	return errors.As(err, &fe)
}
