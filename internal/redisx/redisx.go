// Package redisx holds the Redis client constructor and the key helpers
// used for webhook event deduplication.
package redisx

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyWebhookDedup marks a gateway event as fully applied:
	// dedup:webhook:{event_id} -> "1"
	keyWebhookDedup = "dedup:webhook:%s"
)

// TTLWebhookDedup bounds how long applied event IDs are remembered. The
// gateway stops retrying well within this window.
var TTLWebhookDedup = 48 * time.Hour

// New creates a Redis client for the given address.
func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// WebhookDedupKey returns the dedup key for a gateway event ID.
func WebhookDedupKey(eventID string) string {
	return fmt.Sprintf(keyWebhookDedup, eventID)
}
