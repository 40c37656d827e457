package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	TopicOrderEvents    = "order_events"
	TopicDiscountEvents = "discount_events"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type event struct {
	topic string
	key   string
	body  map[string]any
}

// publish sends events after a commit. Delivery is best effort: failures
// are logged and never reach the caller.
func publish(ctx context.Context, p EventPublisher, events []event) {
	if p == nil {
		return
	}
	l := logging.FromContext(ctx)
	for _, ev := range events {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := p.PublishEvent(pctx, ev.topic, ev.key, ev.body); err != nil {
			l.Error("kafka_publish_error", "topic", ev.topic, "type", ev.body["type"], "error", err)
		}
		cancel()
	}
}
