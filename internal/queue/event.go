// Package queue defines message payloads exchanged over the message broker.
package queue

// OrdersQueueName is the durable queue order events are published to.
const OrdersQueueName = "orders.events"

// Order event types.
const (
	OrderCreated = "order.created"
	OrderUpdated = "order.updated"
	OrderDeleted = "order.deleted"
)

// OrderEvent is published after an order write commits. It carries enough of
// the order for downstream consumers to log or notify without querying the
// primary database. Notes and Timestamp are zero on order.deleted.
type OrderEvent struct {
	Type       string `json:"type"`
	OrderID    int64  `json:"order_id"`
	CustomerID int64  `json:"cust_id,omitempty"`
	Notes      string `json:"notes,omitempty"`
	Timestamp  int64  `json:"timestamp,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
