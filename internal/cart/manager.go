package cart

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/products"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/storage"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/users"
)

// Manager applies cart mutations. Every operation runs in one transaction
// and ends by recomputing the cart total from its lines.
type Manager struct {
	db       *sql.DB
	carts    *CartRepository
	users    *users.UserRepository
	products *products.ProductRepository
	logger   *slog.Logger
}

func NewManager(db *sql.DB, logger *slog.Logger) *Manager {
	return &Manager{
		db:       db,
		carts:    NewCartRepository(db),
		users:    users.NewUserRepository(db),
		products: products.NewProductRepository(db),
		logger:   logger,
	}
}

// txRepos groups the repositories bound to one transaction.
type txRepos struct {
	carts    *CartRepository
	users    *users.UserRepository
	products *products.ProductRepository
}

func (m *Manager) inTx(ctx context.Context, fn func(repos txRepos) error) error {
	return storage.RunInTx(ctx, m.db, func(tx *sql.Tx) error {
		return fn(txRepos{
			carts:    m.carts.WithTx(tx),
			users:    m.users.WithTx(tx),
			products: m.products.WithTx(tx),
		})
	})
}

// Get returns the user's cart, creating an empty one on first access.
func (m *Manager) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart *domain.Cart
	err := m.inTx(ctx, func(repos txRepos) error {
		var err error
		cart, err = m.open(ctx, repos, userID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem adds quantity of a product to the cart. A product already in the
// cart has its quantity increased; only the added quantity is checked
// against stock.
func (m *Manager) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 || quantity > domain.MaxQuantity {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", domain.ErrValidation, domain.MaxQuantity)
	}

	var cart *domain.Cart
	err := m.inTx(ctx, func(repos txRepos) error {
		var err error
		cart, err = m.open(ctx, repos, userID, true)
		if err != nil {
			return err
		}

		product, err := repos.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		if product.Stock < quantity {
			return fmt.Errorf("product %s has %d in stock, requested %d: %w",
				productID, product.Stock, quantity, domain.ErrInsufficientStock)
		}
		if item := cart.Item(productID); item != nil && item.Quantity > domain.MaxQuantity-quantity {
			return fmt.Errorf("%w: product %s would exceed %d in cart", domain.ErrValidation, productID, domain.MaxQuantity)
		}

		err = repos.carts.AddItem(ctx, cart.ID, domain.CartItem{
			ID:        uuid.New().String(),
			ProductID: productID,
			UnitPrice: product.Price,
			Quantity:  quantity,
		})
		if err != nil {
			return err
		}

		return m.recalculate(ctx, repos, cart)
	})
	if err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "added item to cart",
		"user_id", userID, "product_id", productID, "quantity", quantity, "cart_total", cart.TotalAmount)
	return cart, nil
}

// UpdateItem sets the quantity of a line. A quantity of zero or less removes it.
func (m *Manager) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity > domain.MaxQuantity {
		return nil, fmt.Errorf("%w: quantity must be at most %d", domain.ErrValidation, domain.MaxQuantity)
	}

	var cart *domain.Cart
	err := m.inTx(ctx, func(repos txRepos) error {
		var err error
		cart, err = m.open(ctx, repos, userID, true)
		if err != nil {
			return err
		}

		item := cart.Item(productID)
		if item == nil {
			return fmt.Errorf("product %s in cart: %w", productID, domain.ErrNotFound)
		}

		if quantity <= 0 {
			if err := repos.carts.DeleteItem(ctx, item.ID); err != nil {
				return err
			}
			return m.recalculate(ctx, repos, cart)
		}

		product, err := repos.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		if product.Stock < quantity {
			return fmt.Errorf("product %s has %d in stock, requested %d: %w",
				productID, product.Stock, quantity, domain.ErrInsufficientStock)
		}

		if err := repos.carts.SetItemQuantity(ctx, item.ID, quantity); err != nil {
			return err
		}
		return m.recalculate(ctx, repos, cart)
	})
	if err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "updated cart item",
		"user_id", userID, "product_id", productID, "quantity", quantity, "cart_total", cart.TotalAmount)
	return cart, nil
}

func (m *Manager) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	var cart *domain.Cart
	err := m.inTx(ctx, func(repos txRepos) error {
		var err error
		cart, err = m.open(ctx, repos, userID, true)
		if err != nil {
			return err
		}

		item := cart.Item(productID)
		if item == nil {
			return fmt.Errorf("product %s in cart: %w", productID, domain.ErrNotFound)
		}

		if err := repos.carts.DeleteItem(ctx, item.ID); err != nil {
			return err
		}
		return m.recalculate(ctx, repos, cart)
	})
	if err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "removed cart item", "user_id", userID, "product_id", productID)
	return cart, nil
}

// Clear empties the cart. The cart record itself is kept.
func (m *Manager) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart *domain.Cart
	err := m.inTx(ctx, func(repos txRepos) error {
		var err error
		cart, err = m.open(ctx, repos, userID, true)
		if err != nil {
			return err
		}

		if err := repos.carts.DeleteItems(ctx, cart.ID); err != nil {
			return err
		}
		return m.recalculate(ctx, repos, cart)
	})
	if err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "cleared cart", "user_id", userID)
	return cart, nil
}

// open resolves the user's cart with its lines, creating the cart if needed.
// With lock set the cart row stays locked until the transaction ends.
func (m *Manager) open(ctx context.Context, repos txRepos, userID string, lock bool) (*domain.Cart, error) {
	user, err := repos.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}

	if err := repos.carts.CreateIfAbsent(ctx, uuid.New().String(), userID); err != nil {
		return nil, err
	}

	var cart *domain.Cart
	if lock {
		cart, err = repos.carts.LockByUser(ctx, userID)
	} else {
		cart, err = repos.carts.GetByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("cart for user %s vanished", userID)
	}

	cart.Items, err = repos.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	return cart, nil
}

// recalculate reloads the lines and writes their total. It is the only
// place a cart total is written.
func (m *Manager) recalculate(ctx context.Context, repos txRepos, cart *domain.Cart) error {
	items, err := repos.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return err
	}

	total, err := domain.Total(items)
	if err != nil {
		return err
	}

	cart.Items = items
	cart.TotalAmount = total
	return repos.carts.UpdateTotal(ctx, cart)
}
