package tracker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"fabricstore/internal/domain"
	"fabricstore/internal/logging"
	"go.uber.org/zap"
)

const DefaultInterval = 15 * time.Second

// Query identifies the order to follow: an order id, or an order number and
// phone pair for customers who are not signed in.
type Query struct {
	OrderID     string
	OrderNumber string
	Phone       string
}

// IsZero reports whether q cannot identify an order.
func (q Query) IsZero() bool {
	if strings.TrimSpace(q.OrderID) != "" {
		return false
	}
	return strings.TrimSpace(q.OrderNumber) == "" || strings.TrimSpace(q.Phone) == ""
}

// Fetcher loads the current tracking info for q. Implementations must return
// promptly once ctx is cancelled: Watch and Stop wait for the in-flight fetch
// of the handle they replace.
type Fetcher interface {
	Track(ctx context.Context, q Query) (*domain.TrackingInfo, error)
}

type FetcherFunc func(ctx context.Context, q Query) (*domain.TrackingInfo, error)

func (f FetcherFunc) Track(ctx context.Context, q Query) (*domain.TrackingInfo, error) {
	return f(ctx, q)
}

// View is what a tracker currently displays.
type View struct {
	Loading      bool
	Info         *domain.TrackingInfo
	Stage        domain.Stage
	Steps        []Step
	Cancelled    bool
	Empty        bool
	EmptyMessage string
}

// Tracker polls order status for one query at a time. Each Watch replaces
// the previous poll handle; at most one handle is live.
type Tracker struct {
	fetcher      Fetcher
	interval     time.Duration
	emptyMessage string
	onChange     func(View)
	logger       *zap.Logger

	// ctl serializes Watch and Stop so two callers can never leave two handles running.
	ctl    sync.Mutex
	mu     sync.Mutex
	view   View
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Tracker)

func WithInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithEmptyMessage is shown when there is nothing to track.
func WithEmptyMessage(msg string) Option {
	return func(t *Tracker) { t.emptyMessage = msg }
}

// WithOnChange subscribes fn to every view change.
func WithOnChange(fn func(View)) Option {
	return func(t *Tracker) { t.onChange = fn }
}

func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) { t.logger = logging.OrNop(logger) }
}

func New(f Fetcher, opts ...Option) *Tracker {
	t := &Tracker{fetcher: f, interval: DefaultInterval, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(t)
	}
	t.view = t.emptyView()
	return t
}

// View returns the current display state.
func (t *Tracker) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

// Watch starts following q, invalidating any previous handle first.
func (t *Tracker) Watch(q Query) {
	t.ctl.Lock()
	defer t.ctl.Unlock()
	t.stopHandle()

	t.mu.Lock()
	t.gen++
	gen := t.gen
	if q.IsZero() {
		t.view = t.emptyView()
		view := t.view
		t.mu.Unlock()
		t.notify(view)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done
	t.view = View{Loading: true}
	view := t.view
	t.mu.Unlock()

	t.notify(view)
	go t.run(ctx, gen, q, done)
}

// Stop cancels the active handle and waits for its goroutine to exit.
// OnChange callbacks must not call Watch or Stop.
func (t *Tracker) Stop() {
	t.ctl.Lock()
	defer t.ctl.Unlock()
	t.stopHandle()
}

func (t *Tracker) stopHandle() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.gen++
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (t *Tracker) run(ctx context.Context, gen uint64, q Query, done chan struct{}) {
	defer close(done)
	t.fetch(ctx, gen, q, true)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.fetch(ctx, gen, q, false)
		}
	}
}

func (t *Tracker) fetch(ctx context.Context, gen uint64, q Query, initial bool) {
	info, err := t.fetcher.Track(ctx, q)
	if ctx.Err() != nil {
		return
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		t.logger.Warn("tracker: fetch failed",
			zap.String("order_id", q.OrderID),
			zap.String("order_number", q.OrderNumber),
			zap.Bool("initial", initial),
			zap.Error(err),
		)
	}
	hasStatus := err == nil && info != nil && strings.TrimSpace(string(info.Status)) != ""

	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	switch {
	case hasStatus:
		t.view = viewFor(info)
	case initial:
		t.view = t.emptyView()
	default:
		// Background poll without data: keep showing what we had.
		t.mu.Unlock()
		return
	}
	view := t.view
	t.mu.Unlock()
	t.notify(view)
}

func (t *Tracker) notify(v View) {
	if t.onChange != nil {
		t.onChange(v)
	}
}

func (t *Tracker) emptyView() View {
	return View{Empty: true, EmptyMessage: t.emptyMessage}
}

func viewFor(info *domain.TrackingInfo) View {
	stage := domain.Classify(info.Status)
	return View{
		Info:      info,
		Stage:     stage,
		Steps:     Steps(info.Status),
		Cancelled: stage == domain.StageCancelled,
	}
}

// APIClient is the subset of the REST client the tracker uses.
type APIClient interface {
	TrackByID(ctx context.Context, id string) (*domain.TrackingInfo, error)
	TrackByNumber(ctx context.Context, orderNumber, phone string) (*domain.TrackingInfo, error)
}

// FromClient routes queries to the id or number+phone endpoint.
func FromClient(c APIClient) Fetcher {
	return FetcherFunc(func(ctx context.Context, q Query) (*domain.TrackingInfo, error) {
		if id := strings.TrimSpace(q.OrderID); id != "" {
			return c.TrackByID(ctx, id)
		}
		return c.TrackByNumber(ctx, strings.TrimSpace(q.OrderNumber), strings.TrimSpace(q.Phone))
	})
}
