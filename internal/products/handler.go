package products

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/httpjson"
)

type Service interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
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

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	products, err := h.svc.List(r.Context(), category)
	if err != nil {
		h.resp.Fail(w, r, err, "list products")
		return
	}

	h.logger.InfoContext(r.Context(), "products listed", "count", len(products), "category", category)
	h.resp.JSON(w, http.StatusOK, products)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.resp.Fail(w, r, err, "get product")
		return
	}

	h.resp.JSON(w, http.StatusOK, product)
}

type createProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" validate:"gte=0"`
	Stock       int    `json:"stock" validate:"gte=0,lte=2147483647"`
	Category    string `json:"category"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.resp.Fail(w, r, err, "decode product")
		return
	}

	product, err := h.svc.Create(r.Context(), domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
	})
	if err != nil {
		h.resp.Fail(w, r, err, "create product")
		return
	}

	h.resp.JSON(w, http.StatusCreated, product)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProductPatch
	if err := httpjson.Decode(r, &patch); err != nil {
		h.resp.Fail(w, r, err, "decode product patch")
		return
	}

	product, err := h.svc.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.resp.Fail(w, r, err, "update product")
		return
	}

	h.resp.JSON(w, http.StatusOK, product)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.resp.Fail(w, r, err, "delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
