package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis guarda os blobs em chaves "sportsbook:state:{key}" sem TTL
type Redis struct {
	Client *redis.Client
	Prefix string
}

func NewRedis(c *redis.Client) *Redis { return &Redis{Client: c, Prefix: "sportsbook:state:"} }

func (r *Redis) Load(ctx context.Context, key string, dst any) error {
	b, err := r.Client.Get(ctx, r.Prefix+key).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return decode(key, b, dst)
}

func (r *Redis) Save(ctx context.Context, key string, v any) error {
	b, err := encode(key, v)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, r.Prefix+key, b, 0).Err()
}
