package domain

import "time"

const EventOrderCreated = "order.created"

type OrderCreatedEvent struct {
	OrderID     string      `json:"orderId"`
	UserID      string      `json:"userId"`
	UserEmail   string      `json:"userEmail"`
	Items       []OrderItem `json:"items"`
	TotalAmount int64       `json:"totalAmount"`
	Timestamp   time.Time   `json:"timestamp"`
}
