// Package seed loads the demo catalog and users into an empty database.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
)

var DemoProducts = []domain.Product{
	{Name: "Laptop", Description: "High-performance laptop", Price: 1200, Stock: 50, Category: "Electronics"},
	{Name: "Wireless Mouse", Description: "Ergonomic wireless mouse", Price: 25, Stock: 200, Category: "Accessories"},
	{Name: "Mechanical Keyboard", Description: "RGB mechanical keyboard", Price: 80, Stock: 100, Category: "Accessories"},
}

var DemoUsers = []domain.User{
	{Email: "john@example.com", Name: "John Doe"},
	{Email: "jane@example.com", Name: "Jane Smith"},
}

type ProductStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type UserStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, email, name string) (*domain.User, error)
}

// Run inserts each demo set only when its table is empty.
func Run(ctx context.Context, products ProductStore, users UserStore, logger *slog.Logger) error {
	n, err := products.Count(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n == 0 {
		for _, p := range DemoProducts {
			if _, err := products.Create(ctx, p); err != nil {
				return fmt.Errorf("seed product %s: %w", p.Name, err)
			}
		}
		logger.InfoContext(ctx, "seeded demo products", "count", len(DemoProducts))
	}

	n, err = users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n == 0 {
		for _, u := range DemoUsers {
			if _, err := users.Create(ctx, u.Email, u.Name); err != nil {
				return fmt.Errorf("seed user %s: %w", u.Email, err)
			}
		}
		logger.InfoContext(ctx, "seeded demo users", "count", len(DemoUsers))
	}

	return nil
}
