package order

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"fabricstore/internal/domain"
	tokenrepo "fabricstore/internal/repository/token"
)

type tokenStore interface {
	Create(ctx context.Context, token tokenrepo.Token) error
	Get(ctx context.Context, token string) (*tokenrepo.Token, error)
	Delete(ctx context.Context, token string) error
}

type tokenManager struct {
	repo tokenStore
	now  func() time.Time
}

func newTokenManager(repo tokenStore, now func() time.Time) *tokenManager {
	return &tokenManager{repo: repo, now: now}
}

func (m *tokenManager) Issue(ctx context.Context, phone string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := m.now().Add(ttl)
	for i := 0; i < 5; i++ {
		token, err := randomToken()
		if err != nil {
			return "", time.Time{}, err
		}
		err = m.repo.Create(ctx, tokenrepo.Token{
			Token:         token,
			CustomerPhone: phone,
			ExpiresAt:     expiresAt,
		})
		if err == nil {
			return token, expiresAt, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", time.Time{}, err
	}
	return "", time.Time{}, errors.New("token collision")
}

// Resolve returns the phone a token was issued for. Expired tokens are
// removed and reported as not found.
func (m *tokenManager) Resolve(ctx context.Context, token string) (string, error) {
	meta, err := m.repo.Get(ctx, token)
	if err != nil {
		return "", err
	}
	if meta.Expired(m.now()) {
		_ = m.repo.Delete(ctx, token)
		return "", domain.ErrNotFound
	}
	return meta.CustomerPhone, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
