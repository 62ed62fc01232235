//go:build integration

package test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/cart"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/orders"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/products"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/seed"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/server"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/shopclient"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/users"
)

type shop struct {
	db        *sql.DB
	users     *users.Directory
	catalog   *products.Catalog
	carts     *cart.Manager
	processor *orders.Processor
	logger    *slog.Logger
}

func newShop(db *sql.DB, publisher orders.EventPublisher) *shop {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &shop{
		db:        db,
		users:     users.NewDirectory(users.NewUserRepository(db), logger),
		catalog:   products.NewCatalog(db, logger),
		carts:     cart.NewManager(db, logger),
		processor: orders.NewProcessor(db, publisher, logger),
		logger:    logger,
	}
}

func (s *shop) handler() *server.Handlers {
	return &server.Handlers{
		Users:    users.NewHandler(s.users, s.logger),
		Products: products.NewHandler(s.catalog, s.logger),
		Cart:     cart.NewHandler(s.carts, s.logger),
		Orders:   orders.NewHandler(s.processor, s.logger),
	}
}

func (s *shop) newUser(t *testing.T) *domain.User {
	t.Helper()
	user, err := s.users.Create(context.Background(), uuid.NewString()+"@example.com", "Test User")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (s *shop) newProduct(t *testing.T, name string, price int64, stock int) *domain.Product {
	t.Helper()
	product, err := s.catalog.Create(context.Background(), domain.Product{Name: name, Price: price, Stock: stock, Category: "Test"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func (s *shop) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestShop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	s := newShop(pg.DB, nil)

	t.Run("cart add merge and remove via zero quantity", func(t *testing.T) {
		user := s.newUser(t)
		laptop := s.newProduct(t, "Laptop", 1200, 50)

		c, err := s.carts.AddItem(ctx, user.ID, laptop.ID, 2)
		if err != nil {
			t.Fatal(err)
		}
		if c.TotalAmount != 2400 {
			t.Fatalf("expected total 2400, got %d", c.TotalAmount)
		}

		c, err = s.carts.AddItem(ctx, user.ID, laptop.ID, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(c.Items) != 1 || c.Items[0].Quantity != 3 || c.TotalAmount != 3600 {
			t.Fatalf("expected one line of 3 totalling 3600, got %+v", c)
		}

		c, err = s.carts.UpdateItem(ctx, user.ID, laptop.ID, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(c.Items) != 0 || c.TotalAmount != 0 {
			t.Fatalf("expected empty cart, got %+v", c)
		}

		stored, err := s.carts.Get(ctx, user.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.TotalAmount != 0 {
			t.Fatalf("expected persisted total 0, got %d", stored.TotalAmount)
		}
	})

	t.Run("stock is checked against the added quantity only", func(t *testing.T) {
		user := s.newUser(t)
		product := s.newProduct(t, "Limited", 10, 5)

		if _, err := s.carts.AddItem(ctx, user.ID, product.ID, 6); !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected insufficient stock, got %v", err)
		}

		if _, err := s.carts.AddItem(ctx, user.ID, product.ID, 4); err != nil {
			t.Fatal(err)
		}
		c, err := s.carts.AddItem(ctx, user.ID, product.ID, 4)
		if err != nil {
			t.Fatal(err)
		}
		if c.Items[0].Quantity != 8 {
			t.Fatalf("expected merged quantity 8, got %d", c.Items[0].Quantity)
		}
	})

	t.Run("update keeps captured price and checks stock", func(t *testing.T) {
		user := s.newUser(t)
		product := s.newProduct(t, "Monitor", 300, 10)

		if _, err := s.carts.AddItem(ctx, user.ID, product.ID, 1); err != nil {
			t.Fatal(err)
		}

		newPrice := int64(999)
		if _, err := s.catalog.Update(ctx, product.ID, domain.ProductPatch{Price: &newPrice}); err != nil {
			t.Fatal(err)
		}

		c, err := s.carts.UpdateItem(ctx, user.ID, product.ID, 2)
		if err != nil {
			t.Fatal(err)
		}
		if c.Items[0].UnitPrice != 300 || c.TotalAmount != 600 {
			t.Fatalf("expected captured price 300 and total 600, got %+v", c)
		}

		if _, err := s.carts.UpdateItem(ctx, user.ID, product.ID, 11); !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected insufficient stock, got %v", err)
		}
		if _, err := s.carts.UpdateItem(ctx, user.ID, uuid.NewString(), 1); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found for absent line, got %v", err)
		}
	})

	t.Run("cart operations on unknown user or product", func(t *testing.T) {
		user := s.newUser(t)

		if _, err := s.carts.Get(ctx, uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found for unknown user, got %v", err)
		}
		if _, err := s.carts.AddItem(ctx, user.ID, "no-such-product", 1); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found for unknown product, got %v", err)
		}
		if _, err := s.carts.RemoveItem(ctx, user.ID, "no-such-product"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found removing absent line, got %v", err)
		}
	})

	t.Run("clear empties the cart and is idempotent", func(t *testing.T) {
		user := s.newUser(t)
		for i := range 3 {
			p := s.newProduct(t, fmt.Sprintf("Item %d", i), 10, 10)
			if _, err := s.carts.AddItem(ctx, user.ID, p.ID, 1); err != nil {
				t.Fatal(err)
			}
		}

		for range 2 {
			c, err := s.carts.Clear(ctx, user.ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(c.Items) != 0 || c.TotalAmount != 0 {
				t.Fatalf("expected empty cart, got %+v", c)
			}
		}
	})

	t.Run("concurrent adds to one cart do not lose updates", func(t *testing.T) {
		user := s.newUser(t)
		product := s.newProduct(t, "Cable", 5, 100)

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.carts.AddItem(ctx, user.ID, product.ID, 1); err != nil {
					t.Errorf("add: %v", err)
				}
			}()
		}
		wg.Wait()

		c, err := s.carts.Get(ctx, user.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(c.Items) != 1 || c.Items[0].Quantity != 10 || c.TotalAmount != 50 {
			t.Fatalf("expected quantity 10 totalling 50, got %+v", c)
		}
	})

	t.Run("order snapshots prices", func(t *testing.T) {
		user := s.newUser(t)
		laptop := s.newProduct(t, "Laptop", 1200, 50)
		mouse := s.newProduct(t, "Wireless Mouse", 25, 200)

		order, err := s.processor.Create(ctx, user.ID, []domain.OrderLine{
			{ProductID: laptop.ID, Quantity: 2},
			{ProductID: mouse.ID, Quantity: 1},
		})
		if err != nil {
			t.Fatal(err)
		}
		if order.TotalAmount != 2425 || order.Status != domain.OrderStatusPending || len(order.Items) != 2 {
			t.Fatalf("unexpected order %+v", order)
		}

		newPrice := int64(1500)
		if _, err := s.catalog.Update(ctx, laptop.ID, domain.ProductPatch{Price: &newPrice}); err != nil {
			t.Fatal(err)
		}

		stored, err := s.processor.Get(ctx, order.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.TotalAmount != 2425 {
			t.Fatalf("expected total to stay 2425, got %d", stored.TotalAmount)
		}
		prices := map[string]int64{}
		for _, item := range stored.Items {
			prices[item.ProductID] = item.UnitPrice
		}
		if prices[laptop.ID] != 1200 || prices[mouse.ID] != 25 {
			t.Fatalf("expected captured prices 1200 and 25, got %v", prices)
		}
	})

	t.Run("order items keep request order when read back", func(t *testing.T) {
		user := s.newUser(t)
		zebra := s.newProduct(t, "Zebra Plush", 15, 10)
		apple := s.newProduct(t, "Apple Crate", 30, 10)
		mango := s.newProduct(t, "Mango Box", 20, 10)

		created, err := s.processor.Create(ctx, user.ID, []domain.OrderLine{
			{ProductID: zebra.ID, Quantity: 1},
			{ProductID: apple.ID, Quantity: 1},
			{ProductID: mango.ID, Quantity: 1},
		})
		if err != nil {
			t.Fatal(err)
		}

		stored, err := s.processor.Get(ctx, created.ID)
		if err != nil {
			t.Fatal(err)
		}
		listed, err := s.processor.List(ctx, user.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(listed) != 1 {
			t.Fatalf("expected one order, got %d", len(listed))
		}

		want := []string{zebra.ID, apple.ID, mango.ID}
		for name, items := range map[string][]domain.OrderItem{
			"create": created.Items,
			"get":    stored.Items,
			"list":   listed[0].Items,
		} {
			if len(items) != len(want) {
				t.Fatalf("%s: expected %d items, got %d", name, len(want), len(items))
			}
			for i, item := range items {
				if item.ProductID != want[i] {
					t.Errorf("%s: item %d expected product %s, got %s", name, i, want[i], item.ProductID)
				}
			}
		}
	})

	t.Run("order quantities beyond the integer column are rejected", func(t *testing.T) {
		user := s.newUser(t)
		laptop := s.newProduct(t, "Laptop", 1200, 50)
		ordersBefore := s.count(t, "orders")

		_, err := s.processor.Create(ctx, user.ID, []domain.OrderLine{{ProductID: laptop.ID, Quantity: domain.MaxQuantity + 1}})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}

		pricey := s.newProduct(t, "Private Jet", 1e12, 1)
		_, err = s.processor.Create(ctx, user.ID, []domain.OrderLine{{ProductID: pricey.ID, Quantity: 10_000_000}})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error for overflowing total, got %v", err)
		}
		if s.count(t, "orders") != ordersBefore {
			t.Fatal("expected no orders written")
		}
	})

	t.Run("merging cart adds past the integer column is rejected", func(t *testing.T) {
		user := s.newUser(t)
		product := s.newProduct(t, "Bulk Screws", 1, domain.MaxQuantity)

		if _, err := s.carts.AddItem(ctx, user.ID, product.ID, domain.MaxQuantity-10); err != nil {
			t.Fatal(err)
		}
		if _, err := s.carts.AddItem(ctx, user.ID, product.ID, 11); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}

		c, err := s.carts.Get(ctx, user.ID)
		if err != nil {
			t.Fatal(err)
		}
		if c.Items[0].Quantity != domain.MaxQuantity-10 {
			t.Fatalf("expected quantity to stay %d, got %d", domain.MaxQuantity-10, c.Items[0].Quantity)
		}
	})

	t.Run("concurrent partial product updates keep both fields", func(t *testing.T) {
		product := s.newProduct(t, "Desk", 200, 5)

		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := range 10 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				price := int64(300 + i)
				_, err := s.catalog.Update(ctx, product.ID, domain.ProductPatch{Price: &price})
				errs <- err
			}()
			go func() {
				defer wg.Done()
				stock := 50 + i
				_, err := s.catalog.Update(ctx, product.ID, domain.ProductPatch{Stock: &stock})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatal(err)
			}
		}

		stored, err := s.catalog.Get(ctx, product.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Price < 300 || stored.Stock < 50 {
			t.Fatalf("expected both patches to land, got price %d stock %d", stored.Price, stored.Stock)
		}
	})

	t.Run("order with missing product persists nothing", func(t *testing.T) {
		user := s.newUser(t)
		laptop := s.newProduct(t, "Laptop", 1200, 50)
		ordersBefore, itemsBefore := s.count(t, "orders"), s.count(t, "order_items")

		_, err := s.processor.Create(ctx, user.ID, []domain.OrderLine{
			{ProductID: laptop.ID, Quantity: 1},
			{ProductID: "ghost", Quantity: 1},
		})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		if s.count(t, "orders") != ordersBefore || s.count(t, "order_items") != itemsBefore {
			t.Fatal("expected no rows written")
		}
	})

	t.Run("order validation", func(t *testing.T) {
		if _, err := s.processor.Create(ctx, "anyone", nil); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, err := s.processor.Create(ctx, uuid.NewString(), []domain.OrderLine{{ProductID: "x", Quantity: 1}}); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found for unknown user, got %v", err)
		}
	})

	t.Run("order status and listing", func(t *testing.T) {
		user := s.newUser(t)
		product := s.newProduct(t, "Desk", 200, 5)

		first, err := s.processor.Create(ctx, user.ID, []domain.OrderLine{{ProductID: product.ID, Quantity: 1}})
		if err != nil {
			t.Fatal(err)
		}
		second, err := s.processor.Create(ctx, user.ID, []domain.OrderLine{{ProductID: product.ID, Quantity: 2}})
		if err != nil {
			t.Fatal(err)
		}

		list, err := s.processor.List(ctx, user.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
			t.Fatalf("expected newest first, got %+v", list)
		}
		if len(list[0].Items) != 1 || list[0].Items[0].ProductName != "Desk" {
			t.Fatalf("expected items with product names, got %+v", list[0].Items)
		}

		updated, err := s.processor.UpdateStatus(ctx, first.ID, "shipped-by-hand")
		if err != nil {
			t.Fatal(err)
		}
		if updated.Status != "shipped-by-hand" {
			t.Fatalf("expected arbitrary status to be stored, got %s", updated.Status)
		}

		if _, err := s.processor.UpdateStatus(ctx, uuid.NewString(), domain.OrderStatusCompleted); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("login converges on one user", func(t *testing.T) {
		email := uuid.NewString() + "@example.com"

		var wg sync.WaitGroup
		ids := make([]string, 5)
		for i := range ids {
			wg.Add(1)
			go func() {
				defer wg.Done()
				user, err := s.users.Login(ctx, email, "")
				if err != nil {
					t.Errorf("login: %v", err)
					return
				}
				ids[i] = user.ID
			}()
		}
		wg.Wait()

		for _, id := range ids[1:] {
			if id != ids[0] {
				t.Fatalf("expected one user id, got %v", ids)
			}
		}

		if _, err := s.users.Create(ctx, email, "Dup"); !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("deleting an ordered product conflicts", func(t *testing.T) {
		user := s.newUser(t)
		product := s.newProduct(t, "Lamp", 40, 5)
		unused := s.newProduct(t, "Chair", 90, 5)

		if _, err := s.processor.Create(ctx, user.ID, []domain.OrderLine{{ProductID: product.ID, Quantity: 1}}); err != nil {
			t.Fatal(err)
		}

		if err := s.catalog.Delete(ctx, product.ID); !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
		if err := s.catalog.Delete(ctx, unused.ID); err != nil {
			t.Fatalf("expected delete to succeed, got %v", err)
		}
		if err := s.catalog.Delete(ctx, unused.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found on second delete, got %v", err)
		}
	})

	t.Run("api round trip through the client", func(t *testing.T) {
		if err := seed.Run(ctx, s.catalog, s.users, s.logger); err != nil {
			t.Fatal(err)
		}

		srv := httptest.NewServer(server.New(server.Options{
			ServiceName: "shop-integration",
			Handlers:    *s.handler(),
			Logger:      s.logger,
		}))
		defer srv.Close()

		client := shopclient.New(srv.URL)

		user, err := client.Login(ctx, "user42@example.com", "")
		if err != nil {
			t.Fatal(err)
		}

		catalog, err := client.ListProducts(ctx, "")
		if err != nil || len(catalog) == 0 {
			t.Fatalf("expected products, got %d (%v)", len(catalog), err)
		}

		if _, err := client.AddCartItem(ctx, user.ID, catalog[0].ID, 1); err != nil {
			t.Fatal(err)
		}

		order, err := client.CreateOrder(ctx, user.ID, []domain.OrderLine{{ProductID: catalog[0].ID, Quantity: 1}})
		if err != nil {
			t.Fatal(err)
		}

		history, err := client.ListUserOrders(ctx, user.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(history) != 1 || history[0].ID != order.ID {
			t.Fatalf("expected the new order in history, got %+v", history)
		}

		var apiErr *shopclient.APIError
		if _, err := client.GetCart(ctx, "nobody"); !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
			t.Fatalf("expected 404, got %v", err)
		}
	})
}
