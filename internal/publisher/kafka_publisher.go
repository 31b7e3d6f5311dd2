package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/pkg/contracts/events"
)

// MessageWriter é o subconjunto de *kafka.Writer usado aqui
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publica eventos de apostas em tópicos separados
type KafkaPublisher struct {
	placed  MessageWriter
	settled MessageWriter
	log     *zap.Logger
	now     func() time.Time
}

func NewKafkaPublisher(placed, settled MessageWriter, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{placed: placed, settled: settled, log: log, now: time.Now}
}

// PublishBetPlaced usa o BetID como chave para manter a ordem por aposta
func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	if e.TsUnixMs == 0 {
		e.TsUnixMs = p.now().UnixMilli()
	}
	return p.write(ctx, p.placed, e.BetID, e)
}

func (p *KafkaPublisher) PublishBetSettled(ctx context.Context, e events.BetSettled) error {
	if e.Ts.IsZero() {
		e.Ts = p.now()
	}
	return p.write(ctx, p.settled, e.BetID, e)
}

func (p *KafkaPublisher) write(ctx context.Context, w MessageWriter, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := kafka.Message{Key: []byte(key), Value: b, Time: p.now()}
	if err := w.WriteMessages(ctx, msg); err != nil {
		p.log.Error("failed to publish bet event", zap.String("bet_id", key), zap.Error(err))
		return err
	}
	p.log.Debug("published bet event", zap.String("bet_id", key))
	return nil
}

// Close finaliza os writers
func (p *KafkaPublisher) Close() error {
	err := p.placed.Close()
	if cerr := p.settled.Close(); err == nil {
		err = cerr
	}
	return err
}

// Nop descarta eventos; usado quando KAFKA_BROKERS não está configurado
type Nop struct{}

func (Nop) PublishBetPlaced(context.Context, events.BetPlaced) error   { return nil }
func (Nop) PublishBetSettled(context.Context, events.BetSettled) error { return nil }
