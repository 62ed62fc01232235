package cart

import (
	"context"
	"database/sql"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/storage"
)

type CartRepository struct {
	db storage.DBTX
}

func NewCartRepository(db storage.DBTX) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) WithTx(tx *sql.Tx) *CartRepository {
	return &CartRepository{db: tx}
}

// CreateIfAbsent inserts an empty cart for the user unless one already exists.
func (r *CartRepository) CreateIfAbsent(ctx context.Context, id, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (id, user_id, total_amount)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, id, userID)
	return err
}

func (r *CartRepository) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.getByUser(ctx, userID, "")
}

// LockByUser reads the user's cart row with FOR UPDATE. It must run inside a
// transaction; the lock is held until commit.
func (r *CartRepository) LockByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.getByUser(ctx, userID, "FOR UPDATE")
}

func (r *CartRepository) getByUser(ctx context.Context, userID, lock string) (*domain.Cart, error) {
	cart := &domain.Cart{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, total_amount, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`+lock, userID).Scan(&cart.ID, &cart.UserID, &cart.TotalAmount, storage.UTC(&cart.CreatedAt), storage.UTC(&cart.UpdatedAt))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return cart, nil
}

// ListItems returns the cart lines in insertion order with current product names.
func (r *CartRepository) ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ci.id, ci.product_id, p.name, ci.unit_price, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at, ci.id
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// AddItem inserts a line or, when the product is already in the cart, adds
// quantity to it. The unit price of an existing line is kept.
func (r *CartRepository) AddItem(ctx context.Context, cartID string, item domain.CartItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`, item.ID, cartID, item.ProductID, item.Quantity, item.UnitPrice)
	return err
}

func (r *CartRepository) SetItemQuantity(ctx context.Context, itemID string, quantity int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, itemID, quantity)
	return err
}

func (r *CartRepository) DeleteItem(ctx context.Context, itemID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	return err
}

func (r *CartRepository) DeleteItems(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

func (r *CartRepository) UpdateTotal(ctx context.Context, cart *domain.Cart) error {
	return r.db.QueryRowContext(ctx, `
		UPDATE carts
		SET total_amount = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, cart.ID, cart.TotalAmount).Scan(storage.UTC(&cart.UpdatedAt))
}
