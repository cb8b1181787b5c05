package handler

import (
	"errors"
	"io"
	"net/http"

	"green-kart/internal/gateway"
	"green-kart/internal/model"
	"green-kart/internal/reconcile"

	"github.com/rs/zerolog"
)

// maxWebhookBody caps the raw notification body read into memory.
const maxWebhookBody = 1 << 20

// WebhookHandler receives asynchronous payment-gateway notifications.
//
// The response code is the acknowledgement protocol: 200 tells the gateway
// the event is durably applied and retries should stop, 400 rejects an
// unauthentic or unparseable notification permanently, 500 asks the
// gateway to retry after an internal failure.
type WebhookHandler struct {
	verifier   *gateway.Verifier
	reconciler *reconcile.Reconciler
	logger     zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(verifier *gateway.Verifier, reconciler *reconcile.Reconciler, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:   verifier,
		reconciler: reconciler,
		logger:     logger.With().Str("handler", "webhook").Logger(),
	}
}

// Receive handles POST /payments/webhook requests.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body", h.logger)
		return
	}

	// Nothing in the payload is trusted before the signature verifies,
	// including the embedded order ID.
	event, err := h.verifier.VerifyAndParse(payload, r.Header.Get("X-Gateway-Signature"))
	if err != nil {
		if errors.Is(err, model.ErrInvalidSignature) {
			writeError(w, http.StatusBadRequest, model.ErrInvalidSignature.Message, h.logger)
			return
		}
		writeError(w, http.StatusBadRequest, model.ErrMalformedPayload.Message, h.logger)
		return
	}

	if err := h.reconciler.Handle(r.Context(), event); err != nil {
		// Post-verification internal failure: the gateway will retry.
		writeError(w, http.StatusInternalServerError, "failed to process notification", h.logger)
		return
	}

	h.logger.Debug().
		Str("event_id", event.ID).
		Str("kind", string(event.Kind)).
		Msg("notification acknowledged")
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
