package orders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/httpjson"
)

type Service interface {
	Create(ctx context.Context, userID string, lines []domain.OrderLine) (*domain.Order, error)
	List(ctx context.Context, userID string) ([]domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type Handler struct {
	svc    Service
	resp   httpjson.Responder
	logger *slog.Logger
}

func NewHandler(svc Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		resp:   httpjson.Responder{Logger: logger},
		logger: logger,
	}
}

type createOrderRequest struct {
	UserID string             `json:"userId" validate:"required"`
	Items  []domain.OrderLine `json:"items" validate:"dive"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.resp.Fail(w, r, err, "decode order")
		return
	}

	order, err := h.svc.Create(r.Context(), req.UserID, req.Items)
	if err != nil {
		h.resp.Fail(w, r, err, "create order")
		return
	}

	h.resp.JSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.URL.Query().Get("userId"))
}

func (h *Handler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.PathValue("userId"))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, userID string) {
	orders, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.resp.Fail(w, r, err, "list orders")
		return
	}

	h.logger.InfoContext(r.Context(), "orders listed", "count", len(orders), "user_id", userID)
	h.resp.JSON(w, http.StatusOK, orders)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.resp.Fail(w, r, err, "get order")
		return
	}

	h.resp.JSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required"`
}

// HandleUpdateStatus takes the new status from the status query parameter
// or, when absent, from a JSON body.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	req := updateStatusRequest{Status: domain.OrderStatus(r.URL.Query().Get("status"))}
	if req.Status == "" {
		if err := httpjson.Decode(r, &req); err != nil {
			h.resp.Fail(w, r, err, "decode order status")
			return
		}
	}

	order, err := h.svc.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		h.resp.Fail(w, r, err, "update order status")
		return
	}

	h.resp.JSON(w, http.StatusOK, order)
}
