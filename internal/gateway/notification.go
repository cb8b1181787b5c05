package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"green-kart/internal/model"

	"github.com/google/uuid"
)

// EventKind classifies a gateway notification.
type EventKind string

const (
	// EventPaymentCompleted reports a successfully settled checkout session.
	EventPaymentCompleted EventKind = "payment.completed"

	// EventSessionExpired reports a checkout session that lapsed unpaid.
	EventSessionExpired EventKind = "payment.session_expired"

	// EventUnknown covers event types this service does not recognise.
	// They are acknowledged and ignored so new gateway event types cannot
	// break reconciliation.
	EventUnknown EventKind = "unknown"
)

// NotificationEvent is a verified, parsed gateway notification. Delivery
// is at-least-once and unordered; consumers must be idempotent.
type NotificationEvent struct {
	ID        string
	Kind      EventKind
	SessionID string
	OrderID   uuid.UUID
}

// Verifier authenticates and parses raw gateway notifications.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier using the shared webhook secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// notificationPayload is the gateway's wire format.
type notificationPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		SessionID string `json:"sessionId"`
		OrderID   string `json:"orderId"`
	} `json:"data"`
}

// Sign computes the hex HMAC-SHA256 signature for a payload. Exported for
// tests and for gateway simulators.
func (v *Verifier) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyAndParse authenticates the raw payload against the signature
// header and parses it into a NotificationEvent.
//
// Any verification failure returns model.ErrInvalidSignature and the
// notification must be rejected outright: nothing in the payload, the
// embedded order ID included, is trusted before the signature checks out.
func (v *Verifier) VerifyAndParse(payload []byte, signatureHeader string) (*NotificationEvent, error) {
	if signatureHeader == "" {
		return nil, model.ErrInvalidSignature
	}

	provided, err := hex.DecodeString(signatureHeader)
	if err != nil {
		return nil, model.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return nil, model.ErrInvalidSignature
	}

	var p notificationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, model.ErrMalformedPayload
	}
	if p.ID == "" {
		return nil, model.ErrMalformedPayload
	}

	event := &NotificationEvent{
		ID:        p.ID,
		SessionID: p.Data.SessionID,
	}

	switch p.Type {
	case "checkout.session.completed":
		event.Kind = EventPaymentCompleted
	case "checkout.session.expired":
		event.Kind = EventSessionExpired
	default:
		// Forward-compatible: unknown kinds are parsed, not rejected.
		event.Kind = EventUnknown
		return event, nil
	}

	orderID, err := uuid.Parse(p.Data.OrderID)
	if err != nil {
		return nil, model.ErrMalformedPayload
	}
	event.OrderID = orderID

	if event.SessionID == "" {
		return nil, model.ErrMalformedPayload
	}

	return event, nil
}
