// Package events publishes trade lifecycle notifications for downstream
// consumers (search indexing, analytics). Publishing is best effort and
// never fails the request that triggered it.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/example/trade-marketplace/internal/domain"
)

const (
	TypeTradeCreated = "trade.created"
	TypeTradeDeleted = "trade.deleted"
)

// TradeEvent is the wire format written to the topic.
type TradeEvent struct {
	Type       string    `json:"type"`
	TradeID    string    `json:"trade_id"`
	UserID     string    `json:"user_id,omitempty"`
	CashAmount float64   `json:"cash_amount,omitempty"`
	Fiscalized bool      `json:"fiscalized,omitempty"`
	TS         time.Time `json:"ts"`
}

// Publisher emits trade lifecycle events.
type Publisher interface {
	TradeCreated(ctx context.Context, tr *domain.Trade)
	TradeDeleted(ctx context.Context, id string)
	Close() error
}

// KafkaPublisher writes events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 200 * time.Millisecond,
		RequiredAcks: int(kafka.RequireOne),
	})
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) TradeCreated(ctx context.Context, tr *domain.Trade) {
	p.publish(ctx, tr.ID, TradeEvent{
		Type:       TypeTradeCreated,
		TradeID:    tr.ID,
		UserID:     tr.UserID,
		CashAmount: tr.CashAmount,
		Fiscalized: tr.FiscalReceipt != "",
		TS:         time.Now().UTC(),
	})
}

func (p *KafkaPublisher) TradeDeleted(ctx context.Context, id string) {
	p.publish(ctx, id, TradeEvent{Type: TypeTradeDeleted, TradeID: id, TS: time.Now().UTC()})
}

func (p *KafkaPublisher) publish(ctx context.Context, key string, ev TradeEvent) {
	value, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("event encode failed", zap.Error(err))
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value}); err != nil {
		p.logger.Warn("event publish failed", zap.String("type", ev.Type), zap.Error(err))
	}
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) TradeCreated(context.Context, *domain.Trade) {}
func (NoopPublisher) TradeDeleted(context.Context, string)        {}
func (NoopPublisher) Close() error                                { return nil }
