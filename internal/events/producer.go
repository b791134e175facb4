// Package events publishes order lifecycle events to Kafka for downstream
// consumers (admin dashboards, fulfillment). Publishing is best-effort: a
// broker outage must never fail a checkout or a gateway callback.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const orderTopic = "order-events"

type Producer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

// NewProducer builds a producer for the comma-separated broker list. An empty
// list yields a disabled producer.
func NewProducer(brokersCSV string, log *zap.Logger) *Producer {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return &Producer{log: log}
	}

	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        orderTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		log: log,
	}
}

func (p *Producer) Enabled() bool {
	return p != nil && p.writer != nil
}

func (p *Producer) OrderCreated(ctx context.Context, event OrderCreated) {
	p.publish(ctx, "ORDER#"+event.OrderID, event)
}

func (p *Producer) PaymentResolved(ctx context.Context, event PaymentResolved) {
	p.publish(ctx, "TXN#"+event.TransactionID, event)
}

func (p *Producer) publish(ctx context.Context, key string, payload interface{}) {
	if !p.Enabled() {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("marshal order event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	msg := kafka.Message{Key: []byte(key), Value: data, Time: time.Now().UTC()}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("publish order event", zap.String("key", key), zap.Error(err))
	}
}

func (p *Producer) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}
