package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/httpjson"
)

type Service interface {
	Login(ctx context.Context, email, name string) (*domain.User, error)
	Create(ctx context.Context, email, name string) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
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

type loginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.resp.Fail(w, r, err, "decode login")
		return
	}

	user, err := h.svc.Login(r.Context(), req.Email, req.Name)
	if err != nil {
		h.resp.Fail(w, r, err, "login user")
		return
	}

	h.resp.JSON(w, http.StatusOK, user)
}

type createUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.resp.Fail(w, r, err, "decode user")
		return
	}

	user, err := h.svc.Create(r.Context(), req.Email, req.Name)
	if err != nil {
		h.resp.Fail(w, r, err, "create user")
		return
	}

	h.resp.JSON(w, http.StatusCreated, user)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.resp.Fail(w, r, err, "get user")
		return
	}

	h.resp.JSON(w, http.StatusOK, user)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		h.resp.Fail(w, r, err, "list users")
		return
	}

	h.resp.JSON(w, http.StatusOK, users)
}
