// Package notification reacts to order events: it emails the customer and
// moves the order to processing.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type OrderUpdater interface {
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
}

type Handler struct {
	mailer Mailer
	orders OrderUpdater
	logger *slog.Logger
}

func NewHandler(mailer Mailer, orders OrderUpdater, logger *slog.Logger) *Handler {
	return &Handler{
		mailer: mailer,
		orders: orders,
		logger: logger,
	}
}

// Handle dispatches on event type. Unknown types are skipped so new events
// can be introduced before the worker understands them.
func (h *Handler) Handle(ctx context.Context, eventType string, payload []byte) error {
	switch eventType {
	case domain.EventOrderCreated, "":
		return h.handleOrderCreated(ctx, payload)
	default:
		h.logger.WarnContext(ctx, "skipping unknown event", "event_type", eventType)
		return nil
	}
}

func (h *Handler) handleOrderCreated(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	h.logger.InfoContext(ctx, "processing order created event", "order_id", event.OrderID, "user_id", event.UserID)

	subject, body := confirmation(event)
	if err := h.mailer.Send(ctx, event.UserEmail, subject, body); err != nil {
		h.logger.ErrorContext(ctx, "failed to send confirmation email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send confirmation email: %w", err)
	}

	if _, err := h.orders.UpdateOrderStatus(ctx, event.OrderID, domain.OrderStatusProcessing); err != nil {
		h.logger.ErrorContext(ctx, "failed to update order status", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("update order status: %w", err)
	}

	h.logger.InfoContext(ctx, "order processing started", "order_id", event.OrderID)
	return nil
}

func confirmation(event domain.OrderCreatedEvent) (subject, body string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Your order %s has been received.\n\n", event.OrderID)
	for _, item := range event.Items {
		fmt.Fprintf(&b, "  %d x %s @ %s\n", item.Quantity, item.ProductName, formatAmount(item.UnitPrice))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", formatAmount(event.TotalAmount))

	return "Order Confirmation: " + event.OrderID, b.String()
}

func formatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
