package service

import (
	"context"
	"fmt"
	"time"

	"green-kart/internal/gateway"
	"green-kart/internal/model"
	"green-kart/internal/pricing"
	"green-kart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	catalogRepo repository.CatalogRepository
	gateway     gateway.Client
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	catalogRepo repository.CatalogRepository,
	gatewayClient gateway.Client,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		gateway:     gatewayClient,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder validates the cart, prices it server-side from a fresh
// catalogue snapshot, and persists the order. The client-submitted cart
// carries no amounts; the snapshot price is captured on every line so the
// order is immune to later catalogue changes.
func (s *orderService) PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest, method model.PaymentMethod) (*model.PlaceOrderResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	productIDs := make([]string, len(req.Lines))
	for i, line := range req.Lines {
		productIDs[i] = line.ProductID
	}

	snapshot, err := s.catalogRepo.Snapshot(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read catalog snapshot")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	quote, err := pricing.ComputeTotal(req.Lines, snapshot)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("owner_id", req.OwnerID).
			Int("line_count", len(req.Lines)).
			Msg("cart failed pricing")
		return nil, err
	}

	now := time.Now()
	order := &model.Order{
		ID:            uuid.New(),
		OwnerID:       req.OwnerID,
		AmountCents:   quote.TotalCents,
		Address:       req.Address,
		PaymentMethod: method,
		Paid:          false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// For online orders the checkout session comes first: if the gateway
	// is down, no order is persisted and nothing is left behind that could
	// never be marked paid. A session whose order fails to persist below
	// simply expires at the gateway and its expiry notification hits the
	// unknown-order path.
	var checkoutURL string
	if method == model.PaymentOnline {
		session, err := s.gateway.CreateSession(ctx, order)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("order_id", order.ID.String()).
				Msg("checkout session creation failed, aborting placement")
			return nil, err
		}
		order.GatewaySessionID = &session.ID
		checkoutURL = session.CheckoutURL
	}

	lines := make([]model.OrderLine, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = model.OrderLine{
			ID:             uuid.New(),
			OrderID:        order.ID,
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			UnitPriceCents: quote.UnitPrices[i],
		}
	}
	order.Lines = lines

	if err := s.persistOrder(ctx, order, lines); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("owner_id", order.OwnerID).
		Str("payment_method", string(method)).
		Int64("amount_cents", order.AmountCents).
		Int("line_count", len(lines)).
		Msg("order placed")

	return &model.PlaceOrderResponse{
		OrderID:     order.ID,
		TotalCents:  order.AmountCents,
		CheckoutURL: checkoutURL,
	}, nil
}

// persistOrder writes the order and its lines in one transaction.
func (s *orderService) persistOrder(ctx context.Context, order *model.Order, lines []model.OrderLine) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to place order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return fmt.Errorf("failed to place order: %w", err)
	}

	if err = s.orderRepo.CreateOrderLines(ctx, tx, lines); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("line_count", len(lines)).
			Msg("failed to create order lines")
		return fmt.Errorf("failed to place order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to place order: %w", err)
	}

	return nil
}

// MarkPaid marks the order paid. The repository update is a single atomic
// statement and matching an already-paid order succeeds, so this is
// idempotent under duplicate notification delivery.
func (s *orderService) MarkPaid(ctx context.Context, id uuid.UUID) error {
	found, err := s.orderRepo.MarkPaid(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark order paid")
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	if !found {
		return model.ErrOrderNotFound
	}

	s.logger.Info().Str("order_id", id.String()).Msg("order marked paid")
	return nil
}

// ExpireUnpaid deletes the order only while it is still an unpaid online
// order. The unpaid guard is inside the delete statement, so whichever of
// a concurrent MarkPaid/ExpireUnpaid pair lands paid first wins and the
// expiry becomes a no-op; a paid order is never deleted.
func (s *orderService) ExpireUnpaid(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.orderRepo.DeleteIfUnpaid(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to expire order")
		return fmt.Errorf("failed to expire order: %w", err)
	}

	if deleted {
		s.logger.Info().Str("order_id", id.String()).Msg("unpaid order expired and deleted")
		return nil
	}

	// Nothing deleted: either the order is paid (expiry is a no-op) or it
	// never existed here.
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to expire order: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	s.logger.Debug().
		Str("order_id", id.String()).
		Bool("paid", order.Paid).
		Msg("expiry skipped, order no longer deletable")
	return nil
}

// ListByOwner retrieves the owner's visible orders.
func (s *orderService) ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner ID is required")
	}

	orders, err := s.orderRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", ownerID).Msg("failed to list orders for owner")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// ListAll retrieves all visible orders.
func (s *orderService) ListAll(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list all orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// validateRequest validates the placement request.
func (s *orderService) validateRequest(req *model.PlaceOrderRequest) error {
	if req == nil {
		return fmt.Errorf("order request is nil")
	}

	if req.OwnerID == "" {
		return fmt.Errorf("owner ID is required")
	}

	if req.Address == "" {
		return fmt.Errorf("address is required")
	}

	if len(req.Lines) == 0 {
		return model.ErrInvalidCart
	}

	for i, line := range req.Lines {
		if line.ProductID == "" {
			return fmt.Errorf("item %d: product ID is required", i)
		}
		if line.Quantity < 1 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", line.ProductID).
				Int("quantity", line.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidCart
		}
	}

	return nil
}
