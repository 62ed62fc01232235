// Package server assembles the shop API's HTTP surface.
package server

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/cart"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/httpjson"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/orders"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/products"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/telemetry"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/users"
)

type Handlers struct {
	Users    *users.Handler
	Products *products.Handler
	Cart     *cart.Handler
	Orders   *orders.Handler
}

type Options struct {
	ServiceName string
	Handlers    Handlers
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// HTTPMetrics records per-request metrics and logs when set.
	HTTPMetrics *telemetry.HTTPMetrics
	Logger      *slog.Logger
}

// New returns the root handler: tracing, CORS, request metrics, then routing.
func New(opts Options) http.Handler {
	mux := http.NewServeMux()
	routes(mux, opts.Handlers)

	resp := httpjson.Responder{Logger: opts.Logger}
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		resp.JSON(w, http.StatusOK, map[string]string{"status": "ok", "service": opts.ServiceName})
	})
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	var handler http.Handler = mux
	if opts.HTTPMetrics != nil {
		handler = opts.HTTPMetrics.Middleware(handler)
	}
	handler = cors(handler)

	return otelhttp.NewHandler(handler, opts.ServiceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			if r.Pattern != "" {
				return r.Pattern
			}
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health" && r.URL.Path != "/metrics"
		}),
	)
}

func routes(mux *http.ServeMux, h Handlers) {
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.HandleFunc(pattern, telemetry.WithHTTPRoute(fn))
	}

	handle("POST /users/login", h.Users.HandleLogin)
	handle("POST /users", h.Users.HandleCreate)
	handle("GET /users", h.Users.HandleList)
	handle("GET /users/{id}", h.Users.HandleGet)

	handle("GET /products", h.Products.HandleList)
	handle("POST /products", h.Products.HandleCreate)
	handle("GET /products/{id}", h.Products.HandleGet)
	handle("PUT /products/{id}", h.Products.HandleUpdate)
	handle("DELETE /products/{id}", h.Products.HandleDelete)

	handle("POST /cart/items", h.Cart.HandleAddItem)
	handle("GET /cart/{userId}", h.Cart.HandleGet)
	handle("PUT /cart/{userId}/items/{productId}", h.Cart.HandleUpdateItem)
	handle("DELETE /cart/{userId}/items/{productId}", h.Cart.HandleRemoveItem)
	handle("DELETE /cart/{userId}", h.Cart.HandleClear)

	handle("POST /orders", h.Orders.HandleCreate)
	handle("GET /orders", h.Orders.HandleList)
	handle("GET /orders/user/{userId}", h.Orders.HandleListByUser)
	handle("GET /orders/{id}", h.Orders.HandleGet)
	handle("PATCH /orders/{id}/status", h.Orders.HandleUpdateStatus)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, traceparent, tracestate")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
