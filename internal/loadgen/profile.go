package loadgen

import (
	"context"
	"math/rand/v2"
	"time"
)

// Task is one weighted action of a profile.
type Task struct {
	Name   string
	Weight int
	Run    func(ctx context.Context, u *VirtualUser)
}

// Profile describes how a kind of shopper behaves.
type Profile struct {
	Name        string
	EmailPrefix string
	DisplayName string
	AccountPool int
	// ProductLimit caps how many listed products the user shops from; zero keeps all.
	ProductLimit int
	MinWait      time.Duration
	MaxWait      time.Duration
	Tasks        []Task
}

func (p Profile) pick(rng *rand.Rand) Task {
	total := 0
	for _, t := range p.Tasks {
		total += t.Weight
	}

	n := rng.IntN(total)
	for _, t := range p.Tasks {
		if n < t.Weight {
			return t
		}
		n -= t.Weight
	}
	return p.Tasks[len(p.Tasks)-1]
}

// NormalProfile browses a lot and buys occasionally.
func NormalProfile() Profile {
	return Profile{
		Name:         "normal",
		EmailPrefix:  "user",
		DisplayName:  "Test User",
		AccountPool:  1000,
		ProductLimit: 5,
		MinWait:      time.Second,
		MaxWait:      3 * time.Second,
		Tasks: []Task{
			{Name: "browse", Weight: 5, Run: browseProducts},
			{Name: "view", Weight: 3, Run: viewProduct},
			{Name: "add", Weight: 4, Run: addToCart},
			{Name: "cart", Weight: 2, Run: viewCart},
			{Name: "checkout", Weight: 1, Run: checkout},
			{Name: "history", Weight: 1, Run: orderHistory},
		},
	}
}

// HeavyProfile fills carts quickly and places large orders.
func HeavyProfile() Profile {
	return Profile{
		Name:        "heavy",
		EmailPrefix: "heavy",
		DisplayName: "Heavy User",
		AccountPool: 100,
		MinWait:     500 * time.Millisecond,
		MaxWait:     1500 * time.Millisecond,
		Tasks: []Task{
			{Name: "rapid-add", Weight: 10, Run: rapidAddToCart},
			{Name: "bulk-checkout", Weight: 3, Run: bulkCheckout},
		},
	}
}

func browseProducts(ctx context.Context, u *VirtualUser) {
	_ = u.track(ctx, "GET /products", func(ctx context.Context) error {
		_, err := u.api.ListProducts(ctx, "")
		return err
	})
}

func viewProduct(ctx context.Context, u *VirtualUser) {
	if len(u.productIDs) == 0 {
		return
	}
	id := u.randomProduct()
	_ = u.track(ctx, "GET /products/:id", func(ctx context.Context) error {
		_, err := u.api.GetProduct(ctx, id)
		return err
	})
}

func addToCart(ctx context.Context, u *VirtualUser) {
	if !u.ready() {
		return
	}
	id, qty := u.randomProduct(), u.between(1, 3)
	_ = u.track(ctx, "POST /cart/items", func(ctx context.Context) error {
		_, err := u.api.AddCartItem(ctx, u.userID, id, qty)
		return err
	})
}

func viewCart(ctx context.Context, u *VirtualUser) {
	if u.userID == "" {
		return
	}
	_ = u.track(ctx, "GET /cart/:userId", func(ctx context.Context) error {
		_, err := u.api.GetCart(ctx, u.userID)
		return err
	})
}

func checkout(ctx context.Context, u *VirtualUser) {
	if !u.ready() {
		return
	}
	lines := u.randomLines(1, 3, 2)
	_ = u.track(ctx, "POST /orders", func(ctx context.Context) error {
		_, err := u.api.CreateOrder(ctx, u.userID, lines)
		return err
	})
}

func orderHistory(ctx context.Context, u *VirtualUser) {
	if u.userID == "" {
		return
	}
	_ = u.track(ctx, "GET /orders/user/:userId", func(ctx context.Context) error {
		_, err := u.api.ListUserOrders(ctx, u.userID)
		return err
	})
}

func rapidAddToCart(ctx context.Context, u *VirtualUser) {
	if !u.ready() {
		return
	}
	for range u.between(1, 3) {
		id, qty := u.randomProduct(), u.between(1, 5)
		_ = u.track(ctx, "POST /cart/items (rapid)", func(ctx context.Context) error {
			_, err := u.api.AddCartItem(ctx, u.userID, id, qty)
			return err
		})
	}
}

func bulkCheckout(ctx context.Context, u *VirtualUser) {
	if !u.ready() {
		return
	}
	lines := u.randomLines(3, 6, 3)
	_ = u.track(ctx, "POST /orders (bulk)", func(ctx context.Context) error {
		_, err := u.api.CreateOrder(ctx, u.userID, lines)
		return err
	})
}
