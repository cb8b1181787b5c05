// Package gateway talks to the external payment gateway: it opens checkout
// sessions for online orders and authenticates the gateway's asynchronous
// notifications before anything downstream trusts them.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"green-kart/internal/model"

	"github.com/rs/zerolog"
)

// Session is the gateway's handle correlating a checkout attempt to an
// order. The ID is opaque and never reused across orders.
type Session struct {
	ID          string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
}

// Client creates checkout sessions at the payment gateway.
type Client interface {
	// CreateSession opens a checkout session for the order. Failures after
	// the bounded retry budget surface as model.ErrGatewayUnavailable.
	CreateSession(ctx context.Context, order *model.Order) (*Session, error)
}

// ClientConfig holds gateway client configuration.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// httpClient implements Client over the gateway's REST API.
type httpClient struct {
	cfg    ClientConfig
	http   *http.Client
	logger zerolog.Logger
}

// NewClient creates a new gateway client.
func NewClient(cfg ClientConfig, logger zerolog.Logger) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &httpClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.With().Str("component", "gateway-client").Logger(),
	}
}

// createSessionRequest is the payload sent to the gateway.
type createSessionRequest struct {
	OrderID     string `json:"orderId"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
}

// CreateSession opens a checkout session for the order, retrying transient
// failures up to the configured budget before giving up.
func (c *httpClient) CreateSession(ctx context.Context, order *model.Order) (*Session, error) {
	body, err := json.Marshal(createSessionRequest{
		OrderID:     order.ID.String(),
		AmountCents: order.AmountCents,
		Currency:    "usd",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		session, err := c.postSession(ctx, body)
		if err == nil {
			c.logger.Debug().
				Str("order_id", order.ID.String()).
				Str("session_id", session.ID).
				Int("attempt", attempt).
				Msg("checkout session created")
			return session, nil
		}

		lastErr = err
		c.logger.Warn().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("attempt", attempt).
			Int("max_retries", c.cfg.MaxRetries).
			Msg("checkout session attempt failed")

		if ctx.Err() != nil {
			break
		}
		if attempt < c.cfg.MaxRetries {
			select {
			case <-ctx.Done():
				attempt = c.cfg.MaxRetries
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
	}

	c.logger.Error().
		Err(lastErr).
		Str("order_id", order.ID.String()).
		Msg("gateway unavailable, giving up on session creation")
	return nil, model.ErrGatewayUnavailable
}

// postSession performs a single session-creation attempt.
func (c *httpClient) postSession(ctx context.Context, body []byte) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("gateway returned empty session id")
	}

	return &session, nil
}
