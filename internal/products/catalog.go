package products

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/storage"
)

// Catalog owns product records. Stock is only read elsewhere.
type Catalog struct {
	db     *sql.DB
	repo   *ProductRepository
	logger *slog.Logger
}

func NewCatalog(db *sql.DB, logger *slog.Logger) *Catalog {
	return &Catalog{
		db:     db,
		repo:   NewProductRepository(db),
		logger: logger,
	}
}

func (c *Catalog) List(ctx context.Context, category string) ([]domain.Product, error) {
	return c.repo.List(ctx, category)
}

func (c *Catalog) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return product, nil
}

func (c *Catalog) Create(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.ID = uuid.New().String()

	if err := c.repo.Create(ctx, &product); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "created product", "product_id", product.ID, "name", product.Name)
	return &product, nil
}

// Update applies only the fields present in patch. The row is locked while
// the patch is merged, so concurrent updates of different fields both land.
func (c *Catalog) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	var product *domain.Product
	err := storage.RunInTx(ctx, c.db, func(tx *sql.Tx) error {
		repo := c.repo.WithTx(tx)

		var err error
		product, err = repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}

		patch.Apply(product)

		found, err := repo.Update(ctx, product)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "updated product", "product_id", id)
	return product, nil
}

// Delete removes a product. Products referenced by an order are kept and
// reported as a conflict.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	found, err := c.repo.Delete(ctx, id)
	if err != nil {
		if storage.IsForeignKeyViolation(err) {
			return fmt.Errorf("product %s is referenced by orders: %w", id, domain.ErrConflict)
		}
		return err
	}
	if !found {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}

	c.logger.InfoContext(ctx, "deleted product", "product_id", id)
	return nil
}

func (c *Catalog) Count(ctx context.Context) (int, error) {
	return c.repo.Count(ctx)
}
