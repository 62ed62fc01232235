package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
)

type countingProducts struct {
	existing int
	created  []domain.Product
}

func (c *countingProducts) Count(context.Context) (int, error) {
	return c.existing + len(c.created), nil
}

func (c *countingProducts) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	c.created = append(c.created, p)
	return &p, nil
}

type countingUsers struct {
	existing int
	created  []string
}

func (c *countingUsers) Count(context.Context) (int, error) {
	return c.existing + len(c.created), nil
}

func (c *countingUsers) Create(_ context.Context, email, name string) (*domain.User, error) {
	c.created = append(c.created, email)
	return &domain.User{Email: email, Name: name}, nil
}

func TestRun(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("empty database", func(t *testing.T) {
		products := &countingProducts{}
		users := &countingUsers{}

		if err := Run(ctx, products, users, logger); err != nil {
			t.Fatal(err)
		}
		if len(products.created) != 3 || len(users.created) != 2 {
			t.Errorf("expected 3 products and 2 users, got %d and %d", len(products.created), len(users.created))
		}
		if products.created[0].Name != "Laptop" || products.created[0].Price != 1200 {
			t.Errorf("unexpected first product %+v", products.created[0])
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		products := &countingProducts{}
		users := &countingUsers{}

		for range 2 {
			if err := Run(ctx, products, users, logger); err != nil {
				t.Fatal(err)
			}
		}
		if len(products.created) != 3 || len(users.created) != 2 {
			t.Errorf("expected second run to add nothing, got %d and %d", len(products.created), len(users.created))
		}
	})

	t.Run("populated tables left alone", func(t *testing.T) {
		products := &countingProducts{existing: 1}
		users := &countingUsers{}

		if err := Run(ctx, products, users, logger); err != nil {
			t.Fatal(err)
		}
		if len(products.created) != 0 {
			t.Errorf("expected no products seeded, got %d", len(products.created))
		}
		if len(users.created) != 2 {
			t.Errorf("expected users seeded, got %d", len(users.created))
		}
	})
}
