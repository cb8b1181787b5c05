package repository

import (
	"context"
	"fmt"

	"green-kart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, owner_id, amount_cents, address, payment_method, paid, gateway_session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.OwnerID,
		order.AmountCents,
		order.Address,
		order.PaymentMethod,
		order.Paid,
		order.GatewaySessionID,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderLines inserts the order's lines within the provided transaction.
func (r *orderRepository) CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_lines (id, order_id, product_id, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(query, line.ID, line.OrderID, line.ProductID, line.Quantity, line.UnitPriceCents)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(lines); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", lines[i].OrderID.String()).
				Str("product_id", lines[i].ProductID).
				Msg("failed to create order line")
			return fmt.Errorf("failed to create order line: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(lines)).
		Msg("order lines created successfully")

	return nil
}

// GetByID retrieves an order with its lines, or nil if absent.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	orderQuery := `
		SELECT id, owner_id, amount_cents, address, payment_method, paid, gateway_session_id, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&order.ID,
		&order.OwnerID,
		&order.AmountCents,
		&order.Address,
		&order.PaymentMethod,
		&order.Paid,
		&order.GatewaySessionID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	lines, err := r.linesForOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Lines = lines

	return &order, nil
}

// ListByOwner retrieves the owner's visible orders. Unpaid online orders
// are hidden: they surface only once the gateway reports payment.
func (r *orderRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error) {
	query := `
		SELECT id, owner_id, amount_cents, address, payment_method, paid, gateway_session_id, created_at, updated_at
		FROM orders
		WHERE owner_id = $1 AND (payment_method = $2 OR paid = TRUE)
		ORDER BY created_at DESC
	`

	return r.listOrders(ctx, query, ownerID, model.PaymentCOD)
}

// ListAll retrieves all visible orders across owners.
func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	query := `
		SELECT id, owner_id, amount_cents, address, payment_method, paid, gateway_session_id, created_at, updated_at
		FROM orders
		WHERE payment_method = $1 OR paid = TRUE
		ORDER BY created_at DESC
	`

	return r.listOrders(ctx, query, model.PaymentCOD)
}

// MarkPaid sets the order paid as a single atomic statement. Returns false
// if no such order exists. Already-paid orders are matched too, so repeat
// delivery of a completion notification stays a successful no-op.
func (r *orderRepository) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE orders
		SET paid = TRUE, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark order paid")
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return false, nil
	}

	r.logger.Debug().Str("order_id", id.String()).Msg("order marked paid")
	return true, nil
}

// DeleteIfUnpaid deletes the order only while it is still an unpaid online
// order. The guard lives in the statement itself, so a concurrent MarkPaid
// that lands first makes this a no-op rather than deleting a paid order.
func (r *orderRepository) DeleteIfUnpaid(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		DELETE FROM orders
		WHERE id = $1 AND payment_method = $2 AND paid = FALSE
	`

	tag, err := r.pool.Exec(ctx, query, id, model.PaymentOnline)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete unpaid order")
		return false, fmt.Errorf("failed to delete unpaid order: %w", err)
	}

	deleted := tag.RowsAffected() > 0
	if deleted {
		r.logger.Debug().Str("order_id", id.String()).Msg("unpaid order deleted")
	}
	return deleted, nil
}

// listOrders runs an order query and attaches lines to each result.
func (r *orderRepository) listOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		err := rows.Scan(
			&o.ID,
			&o.OwnerID,
			&o.AmountCents,
			&o.Address,
			&o.PaymentMethod,
			&o.Paid,
			&o.GatewaySessionID,
			&o.CreatedAt,
			&o.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		lines, err := r.linesForOrder(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}

	return orders, nil
}

// linesForOrder retrieves the lines belonging to a single order.
func (r *orderRepository) linesForOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderLine, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price_cents
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order lines")
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var lines []model.OrderLine
	for rows.Next() {
		var line model.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.UnitPriceCents); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line row")
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}

	return lines, nil
}
