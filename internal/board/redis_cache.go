package board

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/playmoney-sportsbook/internal/domain"
)

// RedisCache guarda o último snapshot de jogos no Redis
// Client: cliente Redis
// TTL: tempo de expiração do snapshot
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

const keyGames = "odds:games:current"

// SetGames grava a lista de jogos com TTL
func (r *RedisCache) SetGames(ctx context.Context, games []domain.Game) error {
	b, err := json.Marshal(games)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, keyGames, b, r.TTL).Err()
}

// Games lê o snapshot; ok=false quando expirou ou nunca foi gravado
func (r *RedisCache) Games(ctx context.Context) ([]domain.Game, bool, error) {
	b, err := r.Client.Get(ctx, keyGames).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []domain.Game
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}
