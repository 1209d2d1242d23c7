package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/rcoelho/order-fulfillment-saga/internal/order/domain"
	"github.com/rcoelho/order-fulfillment-saga/pkg/tracing"
)

// Publisher writes order snapshots to named channels. One writer serves all
// channels; the topic is set per message from the channel name.
type Publisher struct {
	log    *slog.Logger
	writer *kafka.Writer
}

func NewPublisher(log *slog.Logger, brokers []string) *Publisher {
	return &Publisher{
		log: log,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, channel string, o domain.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return err
	}

	headers := []kafka.Header{{Key: "event_type", Value: []byte(string(o.Status))}}
	headers = tracing.InjectKafkaHeaders(ctx, headers)

	msg := kafka.Message{
		Topic:   channel,
		Key:     []byte(o.ID),
		Value:   payload,
		Headers: headers,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("publish failed", "channel", channel, "order_id", o.ID, "err", err)
		return err
	}
	p.log.Info("order published", "channel", channel, "order_id", o.ID, "status", o.Status)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
