package billing

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/churchbilling/pkg/logger"
)

const (
	// AccessTokenHeader carries the shared secret configured on the provider side.
	AccessTokenHeader = "asaas-access-token"

	defaultMaxBodyBytes int64 = 1 << 20
)

// EventHandler processes a normalized billing event.
type EventHandler interface {
	Handle(ctx context.Context, ev Event) (*Result, error)
}

// WebhookPayload is the provider notification body. Only the fields the reconciler
// needs are decoded; everything else is ignored.
type WebhookPayload struct {
	ID      string `json:"id"`
	Event   string `json:"event"`
	Payment *struct {
		ID                string `json:"id"`
		ExternalReference string `json:"externalReference"`
		Subscription      string `json:"subscription"`
	} `json:"payment"`
	Subscription *struct {
		ID                string `json:"id"`
		ExternalReference string `json:"externalReference"`
	} `json:"subscription"`
}

// ToEvent normalizes the payload. The tenant reference comes from the payment object
// first and the subscription object second.
func (p WebhookPayload) ToEvent() Event {
	ev := Event{
		ID:   strings.TrimSpace(p.ID),
		Kind: ParseEventKind(p.Event),
		Name: strings.TrimSpace(p.Event),
	}
	if p.Payment != nil {
		ev.TenantRef = strings.TrimSpace(p.Payment.ExternalReference)
		ev.SubscriptionID = strings.TrimSpace(p.Payment.Subscription)
	}
	if p.Subscription != nil {
		if ev.TenantRef == "" {
			ev.TenantRef = strings.TrimSpace(p.Subscription.ExternalReference)
		}
		if id := strings.TrimSpace(p.Subscription.ID); id != "" {
			ev.SubscriptionID = id
		}
	}
	return ev
}

// ParseWebhook decodes a provider body into an Event.
func ParseWebhook(body []byte) (Event, error) {
	var p WebhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return Event{}, errors.Join(ErrMalformedEvent, err)
	}
	return p.ToEvent(), nil
}

// WebhookHandler is the HTTP boundary of the reconciler.
// It acknowledges every safely handled event with 200 and answers 500 only when
// the billing state could not be read or written, so the provider re-delivers.
type WebhookHandler struct {
	events  EventHandler
	token   string
	maxBody int64
	logger  *slog.Logger
}

// WebhookOption configures a WebhookHandler.
type WebhookOption func(*WebhookHandler)

// WithAccessToken requires the provider to send token in AccessTokenHeader.
// An empty token disables the check.
func WithAccessToken(token string) WebhookOption {
	return func(h *WebhookHandler) {
		h.token = token
	}
}

// WithMaxBodyBytes limits the accepted request body size.
func WithMaxBodyBytes(n int64) WebhookOption {
	return func(h *WebhookHandler) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

// WithWebhookLogger sets the handler logger.
func WithWebhookLogger(l *slog.Logger) WebhookOption {
	return func(h *WebhookHandler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewWebhookHandler creates the receiver.
// Panics if events is nil to fail fast during initialization.
func NewWebhookHandler(events EventHandler, opts ...WebhookOption) *WebhookHandler {
	if events == nil {
		panic("billing: EventHandler is required")
	}
	h := &WebhookHandler{
		events:  events,
		maxBody: defaultMaxBodyBytes,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type webhookResponse struct {
	Received bool   `json:"received"`
	Error    string `json:"error,omitempty"`
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.token != "" {
		got := r.Header.Get(AccessTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
			h.logger.WarnContext(ctx, "Billing webhook rejected", logger.Error(ErrUnauthorizedWebhook))
			writeJSON(w, http.StatusUnauthorized, webhookResponse{Error: "unauthorized"})
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBody+1))
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to read billing webhook body", logger.Error(err))
		writeJSON(w, http.StatusOK, webhookResponse{Received: true})
		return
	}
	if int64(len(body)) > h.maxBody {
		h.logger.WarnContext(ctx, "Billing webhook body too large, dropped", slog.Int("size", len(body)))
		writeJSON(w, http.StatusOK, webhookResponse{Received: true})
		return
	}

	ev, err := ParseWebhook(body)
	if err != nil {
		h.logger.WarnContext(ctx, "Malformed billing webhook dropped", logger.Error(err))
		writeJSON(w, http.StatusOK, webhookResponse{Received: true})
		return
	}

	if _, err := h.events.Handle(ctx, ev); err != nil && !IsAcknowledged(err) {
		h.logger.ErrorContext(ctx, "Billing webhook processing failed",
			logger.EventType(ev.Name),
			logger.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, webhookResponse{Error: "internal_error"})
		return
	}

	writeJSON(w, http.StatusOK, webhookResponse{Received: true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
