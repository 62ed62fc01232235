// Package shopclient is a typed HTTP client for the shop API.
package shopclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("shop api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("shop api returned status %d: %s", e.StatusCode, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

type Client struct {
	http *resty.Client
}

type Option func(*resty.Client)

func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) {
		c.SetTimeout(d)
	}
}

// WithTransport replaces the traced default transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *resty.Client) {
		c.SetTransport(rt)
	}
}

func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json")

	for _, opt := range opts {
		opt(rc)
	}

	return &Client{http: rc}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx).SetError(&errorBody{})
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		if body, ok := resp.Error().(*errorBody); ok && body != nil {
			apiErr.Message = body.Error
		}
		return apiErr
	}
	return nil
}

func (c *Client) Login(ctx context.Context, email, name string) (*domain.User, error) {
	var user domain.User
	err := check(c.request(ctx).
		SetBody(map[string]string{"email": email, "name": name}).
		SetResult(&user).
		Post("/users/login"))
	if err != nil {
		return nil, fmt.Errorf("login %s: %w", email, err)
	}
	return &user, nil
}

func (c *Client) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	var products []domain.Product
	req := c.request(ctx).SetResult(&products)
	if category != "" {
		req.SetQueryParam("category", category)
	}
	if err := check(req.Get("/products")); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	err := check(c.request(ctx).
		SetPathParam("id", id).
		SetResult(&product).
		Get("/products/{id}"))
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &product, nil
}

func (c *Client) AddCartItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	var cart domain.Cart
	err := check(c.request(ctx).
		SetBody(map[string]any{"userId": userID, "productId": productID, "quantity": quantity}).
		SetResult(&cart).
		Post("/cart/items"))
	if err != nil {
		return nil, fmt.Errorf("add %s to cart of %s: %w", productID, userID, err)
	}
	return &cart, nil
}

func (c *Client) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := check(c.request(ctx).
		SetPathParam("userId", userID).
		SetResult(&cart).
		Get("/cart/{userId}"))
	if err != nil {
		return nil, fmt.Errorf("get cart of %s: %w", userID, err)
	}
	return &cart, nil
}

func (c *Client) CreateOrder(ctx context.Context, userID string, lines []domain.OrderLine) (*domain.Order, error) {
	var order domain.Order
	err := check(c.request(ctx).
		SetBody(map[string]any{"userId": userID, "items": lines}).
		SetResult(&order).
		Post("/orders"))
	if err != nil {
		return nil, fmt.Errorf("create order for %s: %w", userID, err)
	}
	return &order, nil
}

func (c *Client) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	var orders []domain.Order
	err := check(c.request(ctx).
		SetPathParam("userId", userID).
		SetResult(&orders).
		Get("/orders/user/{userId}"))
	if err != nil {
		return nil, fmt.Errorf("list orders of %s: %w", userID, err)
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	var order domain.Order
	err := check(c.request(ctx).
		SetPathParam("id", orderID).
		SetBody(map[string]string{"status": string(status)}).
		SetResult(&order).
		Patch("/orders/{id}/status"))
	if err != nil {
		return nil, fmt.Errorf("update status of order %s: %w", orderID, err)
	}
	return &order, nil
}
