package cart

import (
	"context"
	"errors"
	"fmt"

	"fabricstore/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Redis persists the cart under a single key, for storefronts that keep
// session state server side.
type Redis struct {
	client redis.Cmdable
	key    string
}

func NewRedis(client redis.Cmdable, key string) *Redis {
	return &Redis{client: client, key: key}
}

func (r *Redis) Load(ctx context.Context) ([]domain.CartItem, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return Decode(data)
}

// Save stores the cart without expiry; carts never expire on their own.
func (r *Redis) Save(ctx context.Context, items []domain.CartItem) error {
	data, err := Encode(items)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}
