package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
)

type addRequest struct {
	UserID   string             `json:"userId" validate:"required"`
	Quantity int                `json:"quantity" validate:"gt=0"`
	Lines    []domain.OrderLine `json:"lines" validate:"dive"`
}

func TestDecode(t *testing.T) {
	t.Run("accepts a valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"userId":"u1","quantity":2}`))
		var body addRequest
		if err := Decode(req, &body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if body.UserID != "u1" || body.Quantity != 2 {
			t.Errorf("unexpected body %+v", body)
		}
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"userId":`))
		var body addRequest
		err := Decode(req, &body)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("reports fields by json name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":0,"lines":[{"productId":"","quantity":1}]}`))
		var body addRequest
		err := Decode(req, &body)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
		for _, want := range []string{"userId failed required", "quantity failed gt", "lines[0].productId failed required"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("expected %q in %q", want, err.Error())
			}
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("user u1: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrInsufficientStock, http.StatusBadRequest},
		{fmt.Errorf("%w: order items required", domain.ErrValidation), http.StatusBadRequest},
		{domain.ErrConflict, http.StatusConflict},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestResponder_Fail(t *testing.T) {
	rs := Responder{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	t.Run("exposes domain errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rs.Fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("product p1: %w", domain.ErrNotFound), "get product")

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["error"] != "product p1: not found" {
			t.Errorf("unexpected message %q", resp["error"])
		}
	})

	t.Run("hides unexpected errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rs.Fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: connection reset"), "get product")

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "internal server error") {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
	})
}
