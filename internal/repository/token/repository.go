package token

import (
	"context"
	"time"
)

// Token grants a customer read access to the orders placed with their phone.
type Token struct {
	Token         string
	CustomerPhone string
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// Expired reports whether the token is no longer usable at now.
func (t Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
}
