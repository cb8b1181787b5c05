package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"green-kart/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest, method model.PaymentMethod) (*model.PlaceOrderResponse, error) {
	args := m.Called(ctx, req, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlaceOrderResponse), args.Error(1)
}

func (m *MockOrderService) MarkPaid(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderService) ExpireUnpaid(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderService) ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func placementBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(model.PlaceOrderRequest{
		OwnerID: "user-1",
		Address: "42 Garden Lane",
		Lines:   []model.CartLine{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestOrderHandler_PlaceCOD(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	tests := []struct {
		name           string
		body           *bytes.Buffer
		mockReturn     *model.PlaceOrderResponse
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			body:           nil, // filled per test
			mockReturn:     &model.PlaceOrderResponse{OrderID: orderID, TotalCents: 1020},
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Invalid cart",
			mockError:      model.ErrInvalidCart,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Product unavailable",
			mockError:      model.NewProductUnavailableError("p1"),
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			h := NewOrderHandler(mockService, logger)

			if tt.expectService {
				mockService.On("PlaceOrder", mock.Anything, mock.AnythingOfType("*model.PlaceOrderRequest"), model.PaymentCOD).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/orders/cod", placementBody(t))
			rec := httptest.NewRecorder()

			h.PlaceCOD(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusCreated {
				var resp model.PlaceOrderResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, orderID, resp.OrderID)
				assert.Equal(t, int64(1020), resp.TotalCents)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_PlaceCOD_InvalidJSON(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/orders/cod", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()

	h.PlaceCOD(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_PlaceOnline(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	t.Run("Returns checkout URL", func(t *testing.T) {
		mockService := new(MockOrderService)
		h := NewOrderHandler(mockService, logger)

		mockService.On("PlaceOrder", mock.Anything, mock.Anything, model.PaymentOnline).
			Return(&model.PlaceOrderResponse{
				OrderID:     orderID,
				TotalCents:  1020,
				CheckoutURL: "https://pay.example/cs_1",
			}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/orders/online", placementBody(t))
		rec := httptest.NewRecorder()

		h.PlaceOnline(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp model.PlaceOrderResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "https://pay.example/cs_1", resp.CheckoutURL)
	})

	t.Run("Gateway unavailable", func(t *testing.T) {
		mockService := new(MockOrderService)
		h := NewOrderHandler(mockService, logger)

		mockService.On("PlaceOrder", mock.Anything, mock.Anything, model.PaymentOnline).
			Return(nil, model.ErrGatewayUnavailable)

		req := httptest.NewRequest(http.MethodPost, "/api/orders/online", placementBody(t))
		rec := httptest.NewRecorder()

		h.PlaceOnline(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Contains(t, resp.Error, "unavailable")
	})
}

func TestOrderHandler_ListByOwner(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockOrderService)
		h := NewOrderHandler(mockService, logger)

		orders := []model.Order{{ID: uuid.New(), OwnerID: "user-1", PaymentMethod: model.PaymentCOD}}
		mockService.On("ListByOwner", mock.Anything, "user-1").Return(orders, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/orders?ownerId=user-1", nil)
		rec := httptest.NewRecorder()

		h.ListByOwner(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got []model.Order
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Len(t, got, 1)
	})

	t.Run("Missing ownerId", func(t *testing.T) {
		mockService := new(MockOrderService)
		h := NewOrderHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		rec := httptest.NewRecorder()

		h.ListByOwner(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "ListByOwner", mock.Anything, mock.Anything)
	})
}

func markPaidRequest(t *testing.T, id string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/api/orders/"+id+"/mark-paid", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestOrderHandler_MarkPaid(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockOrderService)
		h := NewOrderHandler(mockService, logger)

		mockService.On("MarkPaid", mock.Anything, orderID).Return(nil)

		rec := httptest.NewRecorder()
		h.MarkPaid(rec, markPaidRequest(t, orderID.String()))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"ok": true}`, rec.Body.String())
	})

	t.Run("Not found", func(t *testing.T) {
		mockService := new(MockOrderService)
		h := NewOrderHandler(mockService, logger)

		mockService.On("MarkPaid", mock.Anything, orderID).Return(model.ErrOrderNotFound)

		rec := httptest.NewRecorder()
		h.MarkPaid(rec, markPaidRequest(t, orderID.String()))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Invalid order ID", func(t *testing.T) {
		mockService := new(MockOrderService)
		h := NewOrderHandler(mockService, logger)

		rec := httptest.NewRecorder()
		h.MarkPaid(rec, markPaidRequest(t, "not-a-uuid"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
	})
}
