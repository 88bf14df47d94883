package cart

import (
	"context"
	"strings"
	"sync"
	"time"

	"fabricstore/internal/domain"
	"fabricstore/internal/logging"
	"go.uber.org/zap"
)

// Persistence is the durable storage behind a Store.
type Persistence interface {
	Load(ctx context.Context) ([]domain.CartItem, error)
	Save(ctx context.Context, items []domain.CartItem) error
}

const persistTimeout = 3 * time.Second

// Store is the client-held cart. Every mutation re-persists synchronously;
// persistence failures are logged and the in-memory cart stays authoritative.
type Store struct {
	mu      sync.Mutex
	items   []domain.CartItem
	persist Persistence
	logger  *zap.Logger
}

// NewStore hydrates a cart from p once.
func NewStore(p Persistence, logger *zap.Logger) *Store {
	s := &Store{persist: p, logger: logging.OrNop(logger)}
	s.hydrate()
	return s
}

func (s *Store) hydrate() {
	if s.persist == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	items, err := s.persist.Load(ctx)
	if err != nil {
		s.logger.Warn("cart: load failed, starting empty", zap.Error(err))
		return
	}
	s.items = sanitize(items)
	s.logger.Debug("cart: hydrated", zap.Int("lines", len(s.items)))
}

// AddItem increments the quantity of p, appending it with quantity 1 when absent.
func (s *Store) AddItem(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(p.ID); idx >= 0 {
		s.items[idx].Quantity++
	} else {
		s.items = append(s.items, domain.CartItem{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Image:    p.Image,
			Quantity: 1,
		})
	}
	s.save()
}

// RemoveItem drops the line for id. Unknown ids are a no-op apart from re-persisting.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
	s.save()
}

// SetQuantity sets the quantity of id; n <= 0 removes the line.
func (s *Store) SetQuantity(id string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 {
		s.removeLocked(id)
	} else if idx := s.indexOf(id); idx >= 0 {
		s.items[idx].Quantity = n
	}
	s.save()
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.save()
}

// Items returns a copy of the cart lines in display order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CartTotal(s.items)
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CartCount(s.items)
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(id string) {
	if idx := s.indexOf(id); idx >= 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	}
}

func (s *Store) save() {
	if s.persist == nil {
		return
	}
	snapshot := make([]domain.CartItem, len(s.items))
	copy(snapshot, s.items)
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.persist.Save(ctx, snapshot); err != nil {
		s.logger.Warn("cart: save failed, keeping in-memory cart", zap.Error(err), zap.Int("lines", len(snapshot)))
	}
}

// sanitize enforces the cart invariants on stored data: no empty ids,
// no quantity <= 0, one line per id (later duplicates fold into the first).
func sanitize(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	seen := make(map[string]int, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.ID) == "" || it.Quantity <= 0 {
			continue
		}
		if idx, ok := seen[it.ID]; ok {
			out[idx].Quantity += it.Quantity
			continue
		}
		seen[it.ID] = len(out)
		out = append(out, it)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
