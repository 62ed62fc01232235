package loadgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
)

// API is the part of the shop client the generator drives.
type API interface {
	Login(ctx context.Context, email, name string) (*domain.User, error)
	ListProducts(ctx context.Context, category string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	AddCartItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	CreateOrder(ctx context.Context, userID string, lines []domain.OrderLine) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error)
}

// VirtualUser is one simulated shopper. It is driven by a single goroutine.
type VirtualUser struct {
	api     API
	stats   *Stats
	rng     *rand.Rand
	profile Profile

	userID     string
	productIDs []string
}

func NewVirtualUser(api API, stats *Stats, profile Profile, rng *rand.Rand) *VirtualUser {
	return &VirtualUser{
		api:     api,
		stats:   stats,
		rng:     rng,
		profile: profile,
	}
}

// Start logs in and remembers the products to shop from. Failures are
// recorded and leave the user idle for tasks that need the missing state.
func (u *VirtualUser) Start(ctx context.Context) {
	n := u.between(1, u.profile.AccountPool)
	email := fmt.Sprintf("%s%d@example.com", u.profile.EmailPrefix, n)
	name := fmt.Sprintf("%s %d", u.profile.DisplayName, u.between(1, u.profile.AccountPool))

	_ = u.track(ctx, "POST /users/login", func(ctx context.Context) error {
		user, err := u.api.Login(ctx, email, name)
		if err == nil {
			u.userID = user.ID
		}
		return err
	})

	_ = u.track(ctx, "GET /products", func(ctx context.Context) error {
		products, err := u.api.ListProducts(ctx, "")
		if err != nil {
			return err
		}
		if limit := u.profile.ProductLimit; limit > 0 && len(products) > limit {
			products = products[:limit]
		}
		u.productIDs = make([]string, 0, len(products))
		for _, p := range products {
			u.productIDs = append(u.productIDs, p.ID)
		}
		return nil
	})
}

// Step runs one weighted task and then waits.
func (u *VirtualUser) Step(ctx context.Context) error {
	task := u.profile.pick(u.rng)
	task.Run(ctx, u)
	return u.wait(ctx)
}

func (u *VirtualUser) track(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	if ctx.Err() != nil {
		// interrupted by shutdown, not a server failure
		return err
	}
	u.stats.Record(name, time.Since(start), err)
	return err
}

func (u *VirtualUser) wait(ctx context.Context) error {
	d := u.profile.MinWait
	if spread := u.profile.MaxWait - u.profile.MinWait; spread > 0 {
		d += time.Duration(u.rng.Int64N(int64(spread) + 1))
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// between returns a uniform integer in [lo, hi].
func (u *VirtualUser) between(lo, hi int) int {
	return lo + u.rng.IntN(hi-lo+1)
}

func (u *VirtualUser) randomProduct() string {
	return u.productIDs[u.rng.IntN(len(u.productIDs))]
}

func (u *VirtualUser) ready() bool {
	return u.userID != "" && len(u.productIDs) > 0
}

func (u *VirtualUser) randomLines(minLines, maxLines, maxQuantity int) []domain.OrderLine {
	lines := make([]domain.OrderLine, u.between(minLines, maxLines))
	for i := range lines {
		lines[i] = domain.OrderLine{ProductID: u.randomProduct(), Quantity: u.between(1, maxQuantity)}
	}
	return lines
}
