package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/models"
	"storefront/pkg/rabbitmq"
)

const EventOrderPaid = "order.paid"

// Publisher publishes a message body on a queue.
type Publisher interface {
	Publish(queue string, body []byte) error
}

// OrderEvent is the JSON message carried on the order queue.
type OrderEvent struct {
	Type  string       `json:"type"`
	Order models.Order `json:"order"`
}

// QueueNotifier defers receipt delivery to the order queue consumer.
type QueueNotifier struct {
	publisher Publisher
}

// NewQueueNotifier creates a QueueNotifier.
func NewQueueNotifier(p Publisher) *QueueNotifier {
	return &QueueNotifier{publisher: p}
}

// OrderPaid publishes an order.paid event.
func (n *QueueNotifier) OrderPaid(_ context.Context, order *models.Order) error {
	body, err := json.Marshal(OrderEvent{Type: EventOrderPaid, Order: *order})
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	if err := n.publisher.Publish(rabbitmq.OrderQueue, body); err != nil {
		return fmt.Errorf("failed to publish order event for order %s: %w", order.ID, err)
	}
	return nil
}

// OrderPaidHandler is the receiving side of QueueNotifier.
type OrderPaidHandler interface {
	OrderPaid(ctx context.Context, order *models.Order) error
}

// HandleOrderEvent decodes a queue message and dispatches order.paid events to
// target. Unknown event types are ignored.
func HandleOrderEvent(ctx context.Context, target OrderPaidHandler, body []byte) error {
	var ev OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("failed to decode order event: %w", err)
	}
	if ev.Type != EventOrderPaid {
		return nil
	}
	return target.OrderPaid(ctx, &ev.Order)
}
