package cart

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/httpjson"
)

type Service interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) (*domain.Cart, error)
}

type Handler struct {
	svc  Service
	resp httpjson.Responder
}

func NewHandler(svc Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:  svc,
		resp: httpjson.Responder{Logger: logger},
	}
}

type addItemRequest struct {
	UserID    string `json:"userId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0,lte=2147483647"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.resp.Fail(w, r, err, "decode cart item")
		return
	}

	cart, err := h.svc.AddItem(r.Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.resp.Fail(w, r, err, "add cart item")
		return
	}

	h.resp.JSON(w, http.StatusCreated, cart)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.Get(r.Context(), r.PathValue("userId"))
	if err != nil {
		h.resp.Fail(w, r, err, "get cart")
		return
	}

	h.resp.JSON(w, http.StatusOK, cart)
}

// Quantity has no lower bound here: zero or less removes the line.
type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=2147483647"`
}

func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.resp.Fail(w, r, err, "decode cart item")
		return
	}

	cart, err := h.svc.UpdateItem(r.Context(), r.PathValue("userId"), r.PathValue("productId"), *req.Quantity)
	if err != nil {
		h.resp.Fail(w, r, err, "update cart item")
		return
	}

	h.resp.JSON(w, http.StatusOK, cart)
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.RemoveItem(r.Context(), r.PathValue("userId"), r.PathValue("productId"))
	if err != nil {
		h.resp.Fail(w, r, err, "remove cart item")
		return
	}

	h.resp.JSON(w, http.StatusOK, cart)
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.Clear(r.Context(), r.PathValue("userId"))
	if err != nil {
		h.resp.Fail(w, r, err, "clear cart")
		return
	}

	h.resp.JSON(w, http.StatusOK, cart)
}
