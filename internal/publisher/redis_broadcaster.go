package publisher

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/playmoney-sportsbook/pkg/contracts/events"
)

// RedisBroadcaster publica os ticks do simulador num canal Pub/Sub
type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) BroadcastTick(ctx context.Context, tick events.OddsTick) error {
	payload, err := json.Marshal(tick)
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, payload).Err()
}
