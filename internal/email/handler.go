// Package email is a stand-in mail transport. It accepts messages, simulates
// delivery latency and keeps the most recent ones for inspection.
package email

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/httpjson"
)

type Message struct {
	To      string    `json:"to" validate:"required,email"`
	Subject string    `json:"subject" validate:"required"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sentAt"`
}

// Outbox retains the last few sent messages.
type Outbox struct {
	mu       sync.Mutex
	messages []Message
	limit    int
}

func NewOutbox(limit int) *Outbox {
	return &Outbox{limit: limit}
}

func (o *Outbox) add(msg Message) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.messages = append(o.messages, msg)
	if over := len(o.messages) - o.limit; over > 0 {
		o.messages = o.messages[over:]
	}
}

// Recent returns sent messages, newest last.
func (o *Outbox) Recent() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]Message, len(o.messages))
	copy(out, o.messages)
	return out
}

type Handler struct {
	outbox   *Outbox
	minDelay time.Duration
	maxDelay time.Duration
	resp     httpjson.Responder
	logger   *slog.Logger
}

// NewHandler builds the send endpoint. Each send sleeps for a random
// duration in [minDelay, maxDelay].
func NewHandler(outbox *Outbox, minDelay, maxDelay time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		outbox:   outbox,
		minDelay: minDelay,
		maxDelay: maxDelay,
		resp:     httpjson.Responder{Logger: logger},
		logger:   logger,
	}
}

type sendResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := httpjson.Decode(r, &msg); err != nil {
		h.resp.Fail(w, r, err, "decode email")
		return
	}

	if err := h.deliver(r.Context()); err != nil {
		h.resp.Error(w, http.StatusServiceUnavailable, "delivery interrupted")
		return
	}

	msg.SentAt = time.Now().UTC()
	h.outbox.add(msg)

	h.logger.InfoContext(r.Context(), "email sent", "to", msg.To, "subject", msg.Subject)
	h.resp.JSON(w, http.StatusOK, sendResponse{Status: "sent"})
}

func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	h.resp.JSON(w, http.StatusOK, h.outbox.Recent())
}

func (h *Handler) deliver(ctx context.Context) error {
	delay := h.minDelay
	if spread := h.maxDelay - h.minDelay; spread > 0 {
		delay += rand.N(spread + 1)
	}
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
