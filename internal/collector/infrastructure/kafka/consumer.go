package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/rcoelho/order-fulfillment-saga/internal/collector/application"
	"github.com/rcoelho/order-fulfillment-saga/internal/order/domain"
	"github.com/rcoelho/order-fulfillment-saga/pkg/idempotency"
	"github.com/rcoelho/order-fulfillment-saga/pkg/tracing"
)

// Consumer feeds order-created events to the collection step, one message at
// a time. Delivery is at-least-once; exact redeliveries are skipped through
// the idempotency store.
type Consumer struct {
	log    *slog.Logger
	reader *kafka.Reader
	svc    *application.Service
	idem   *idempotency.Store
	tracer trace.Tracer
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string, svc *application.Service, idem *idempotency.Store) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return &Consumer{
		log:    log,
		reader: r,
		svc:    svc,
		idem:   idem,
		tracer: otel.Tracer("collector-consumer"),
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}
		key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
		seen, err := c.idem.Seen(ctx, key)
		if err != nil {
			c.log.Error("idempotency check failed", "err", err)
			continue
		}
		if seen {
			c.log.Info("duplicate message skipped", "key", key)
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
		msgCtx, span := c.tracer.Start(msgCtx, "CollectOrder")

		var o domain.Order
		if err := json.Unmarshal(msg.Value, &o); err != nil {
			c.log.Error("unmarshal failed", "err", err)
			span.End()
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		if _, err := c.svc.Collect(msgCtx, o); err != nil {
			// Infrastructure failure: forget the dedup key and leave the
			// message uncommitted so the trigger retries.
			c.log.Error("collect failed", "order_id", o.ID, "err", err)
			_ = c.idem.Forget(ctx, key)
			span.End()
			continue
		}
		span.End()
		_ = c.reader.CommitMessages(ctx, msg)
	}
}
