package products

import (
	"context"
	"database/sql"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/storage"
)

const productColumns = `id, name, description, price, stock, category, created_at, updated_at`

type ProductRepository struct {
	db storage.DBTX
}

func NewProductRepository(db storage.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) WithTx(tx *sql.Tx) *ProductRepository {
	return &ProductRepository{db: tx}
}

// List returns products ordered by name. An empty category matches all.
func (r *ProductRepository) List(ctx context.Context, category string) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE $1 = '' OR category = $1
		ORDER BY name, id
	`, category)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getByID(ctx, id, "")
}

// LockByID reads the product row with FOR UPDATE. It must run inside a
// transaction; the lock is held until commit.
func (r *ProductRepository) LockByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getByID(ctx, id, "FOR UPDATE")
}

func (r *ProductRepository) getByID(ctx context.Context, id, lock string) (*domain.Product, error) {
	product, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`+lock, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return product, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO products (id, name, description, price, stock, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Description, p.Price, p.Stock, p.Category).Scan(storage.UTC(&p.CreatedAt), storage.UTC(&p.UpdatedAt))
}

// Update overwrites every mutable column of p and reports whether the row existed.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (bool, error) {
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, category = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, p.ID, p.Name, p.Description, p.Price, p.Stock, p.Category).Scan(storage.UTC(&p.UpdatedAt))
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*domain.Product, error) {
	p := &domain.Product{}
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, storage.UTC(&p.CreatedAt), storage.UTC(&p.UpdatedAt))
	if err != nil {
		return nil, err
	}
	return p, nil
}
