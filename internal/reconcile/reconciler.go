// Package reconcile applies verified payment-gateway notifications to
// orders. Delivery is at-least-once and unordered, so every path here must
// be safe to repeat and safe to race against its counterpart: completion
// marks paid (monotonic), expiry deletes only while still unpaid.
package reconcile

import (
	"context"
	"errors"

	"green-kart/internal/gateway"
	"green-kart/internal/model"
	"green-kart/internal/redisx"
	"green-kart/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Reconciler consumes gateway notifications and mutates order state
// through the order service.
type Reconciler struct {
	orders service.OrderService
	dedup  *redis.Client // optional; nil disables event dedup
	logger zerolog.Logger
}

// NewReconciler creates a Reconciler. dedup may be nil: the mutations are
// idempotent by construction, dedup only short-circuits repeat work.
func NewReconciler(orders service.OrderService, dedup *redis.Client, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		orders: orders,
		dedup:  dedup,
		logger: logger.With().Str("component", "reconciler").Logger(),
	}
}

// Handle applies a single verified notification. A nil return means the
// event is fully applied and must be acknowledged to the gateway; a
// non-nil return means the gateway should retry delivery.
func (r *Reconciler) Handle(ctx context.Context, event *gateway.NotificationEvent) error {
	if r.alreadyApplied(ctx, event.ID) {
		r.logger.Debug().
			Str("event_id", event.ID).
			Str("kind", string(event.Kind)).
			Msg("duplicate event, already applied")
		return nil
	}

	switch event.Kind {
	case gateway.EventPaymentCompleted:
		if err := r.apply(ctx, event, r.orders.MarkPaid); err != nil {
			return err
		}

	case gateway.EventSessionExpired:
		if err := r.apply(ctx, event, r.orders.ExpireUnpaid); err != nil {
			return err
		}

	default:
		// Unrecognised event kinds are acknowledged without any mutation.
		r.logger.Info().
			Str("event_id", event.ID).
			Str("kind", string(event.Kind)).
			Msg("ignoring unrecognised gateway event kind")
		return nil
	}

	r.recordApplied(ctx, event.ID)
	return nil
}

// apply runs one mutation for an event, translating unknown orders into an
// acknowledged anomaly. The gateway referencing an order this system never
// created (for example after a data restore) must not trigger retries.
func (r *Reconciler) apply(ctx context.Context, event *gateway.NotificationEvent, mutate func(context.Context, uuid.UUID) error) error {
	err := mutate(ctx, event.OrderID)
	if err == nil {
		return nil
	}

	if errors.Is(err, model.ErrOrderNotFound) {
		r.logger.Warn().
			Str("event_id", event.ID).
			Str("kind", string(event.Kind)).
			Str("order_id", event.OrderID.String()).
			Str("session_id", event.SessionID).
			Msg("gateway notification references unknown order, acknowledging")
		return nil
	}

	r.logger.Error().
		Err(err).
		Str("event_id", event.ID).
		Str("kind", string(event.Kind)).
		Str("order_id", event.OrderID.String()).
		Msg("failed to apply gateway notification")
	return err
}

// alreadyApplied reports whether the event ID was recorded as applied.
// Dedup failures are treated as a miss: applying again is safe.
func (r *Reconciler) alreadyApplied(ctx context.Context, eventID string) bool {
	if r.dedup == nil {
		return false
	}

	n, err := r.dedup.Exists(ctx, redisx.WebhookDedupKey(eventID)).Result()
	if err != nil {
		r.logger.Warn().Err(err).Str("event_id", eventID).Msg("dedup lookup failed, proceeding")
		return false
	}
	return n > 0
}

// recordApplied marks the event as applied, after the mutation durably
// succeeded. Best effort: a lost record only costs a redundant idempotent
// mutation on redelivery.
func (r *Reconciler) recordApplied(ctx context.Context, eventID string) {
	if r.dedup == nil {
		return
	}

	if err := r.dedup.Set(ctx, redisx.WebhookDedupKey(eventID), "1", redisx.TTLWebhookDedup).Err(); err != nil {
		r.logger.Warn().Err(err).Str("event_id", eventID).Msg("failed to record event dedup key")
	}
}
