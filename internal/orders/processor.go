package orders

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/products"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/storage"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/users"
)

// EventPublisher delivers domain events after they are committed.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, event any) error
}

type Processor struct {
	db        *sql.DB
	orders    *OrderRepository
	users     *users.UserRepository
	products  *products.ProductRepository
	publisher EventPublisher
	logger    *slog.Logger
}

// NewProcessor builds a Processor. publisher may be nil, in which case no
// events are emitted.
func NewProcessor(db *sql.DB, publisher EventPublisher, logger *slog.Logger) *Processor {
	return &Processor{
		db:        db,
		orders:    NewOrderRepository(db),
		users:     users.NewUserRepository(db),
		products:  products.NewProductRepository(db),
		publisher: publisher,
		logger:    logger,
	}
}

// Create places an order for the given lines at current product prices.
// Either the order and all its items are stored, or nothing is.
func (p *Processor) Create(ctx context.Context, userID string, lines []domain.OrderLine) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", domain.ErrValidation)
	}
	for _, line := range lines {
		if line.Quantity <= 0 || line.Quantity > domain.MaxQuantity {
			return nil, fmt.Errorf("%w: quantity for product %s must be between 1 and %d",
				domain.ErrValidation, line.ProductID, domain.MaxQuantity)
		}
	}

	var (
		order *domain.Order
		user  *domain.User
	)
	err := storage.RunInTx(ctx, p.db, func(tx *sql.Tx) error {
		var err error
		user, err = p.users.WithTx(tx).GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}

		productRepo := p.products.WithTx(tx)
		items := make([]domain.OrderItem, 0, len(lines))
		for _, line := range lines {
			product, err := productRepo.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("product %s: %w", line.ProductID, domain.ErrNotFound)
			}
			items = append(items, domain.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   product.Price,
			})
		}

		total, err := domain.Total(items)
		if err != nil {
			return err
		}

		order = &domain.Order{
			UserID:      userID,
			Status:      domain.OrderStatusPending,
			Items:       items,
			TotalAmount: total,
		}
		return p.orders.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "order created",
		"order_id", order.ID, "user_id", userID, "items", len(order.Items), "total_amount", order.TotalAmount)

	p.publishCreated(ctx, order, user)
	return order, nil
}

// publishCreated emits order.created. The order is already committed, so
// delivery failures are only logged.
func (p *Processor) publishCreated(ctx context.Context, order *domain.Order, user *domain.User) {
	if p.publisher == nil {
		return
	}

	event := domain.OrderCreatedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		UserEmail:   user.Email,
		Items:       order.Items,
		TotalAmount: order.TotalAmount,
		Timestamp:   time.Now().UTC(),
	}
	if err := p.publisher.Publish(ctx, domain.EventOrderCreated, order.ID, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish order created event", "error", err, "order_id", order.ID)
	}
}

func (p *Processor) List(ctx context.Context, userID string) ([]domain.Order, error) {
	return p.orders.List(ctx, userID)
}

func (p *Processor) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := p.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	return order, nil
}

// UpdateStatus overwrites the status. No transition rules are enforced.
func (p *Processor) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	// Any non-empty value is accepted; an empty one means the caller sent no status.
	if status == "" {
		return nil, fmt.Errorf("%w: status is required", domain.ErrValidation)
	}

	found, err := p.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}

	p.logger.InfoContext(ctx, "order status updated", "order_id", id, "status", status)
	return p.Get(ctx, id)
}
