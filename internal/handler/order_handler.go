package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"green-kart/internal/model"
	"green-kart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// PlaceCOD handles POST /api/orders/cod requests.
func (h *OrderHandler) PlaceCOD(w http.ResponseWriter, r *http.Request) {
	h.place(w, r, model.PaymentCOD)
}

// PlaceOnline handles POST /api/orders/online requests.
func (h *OrderHandler) PlaceOnline(w http.ResponseWriter, r *http.Request) {
	h.place(w, r, model.PaymentOnline)
}

func (h *OrderHandler) place(w http.ResponseWriter, r *http.Request, method model.PaymentMethod) {
	var req model.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.PlaceOrder(r.Context(), &req, method)
	if err != nil {
		status, message := placementErrorStatus(err)
		writeError(w, status, message, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// placementErrorStatus maps placement failures to a status and an
// actionable client message.
func placementErrorStatus(err error) (int, string) {
	var unavailable *model.ProductUnavailableError
	switch {
	case errors.Is(err, model.ErrInvalidCart):
		return http.StatusBadRequest, model.ErrInvalidCart.Message
	case errors.As(err, &unavailable):
		return http.StatusBadRequest, unavailable.Error()
	case errors.Is(err, model.ErrGatewayUnavailable):
		return http.StatusServiceUnavailable, model.ErrGatewayUnavailable.Message
	case strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "nil"):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "failed to place order"
	}
}

// ListByOwner handles GET /api/orders?ownerId= requests.
func (h *OrderHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("ownerId")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "ownerId query parameter is required", h.logger)
		return
	}

	orders, err := h.service.ListByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list orders", h.logger)
		return
	}

	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// ListAll handles GET /api/orders/all requests (admin only).
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list orders", h.logger)
		return
	}

	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// MarkPaid handles PUT /api/orders/{id}/mark-paid requests (admin only).
// Manual reconciliation override for orders settled outside the gateway.
func (h *OrderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	if err := h.service.MarkPaid(r.Context(), orderID); err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "order not found", h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to mark order paid", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
