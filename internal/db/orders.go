package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gitshopapp/merchconfig/internal/models"
)

var (
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrOrderNotFound           = errors.New("order not found")
)

const DefaultOrderListLimit = 50

type OrderStore struct {
	db DBTX
}

func NewOrderStore(db DBTX) *OrderStore {
	return &OrderStore{db: db}
}

// SubmitOrder inserts a new order. The configuration is stored as submitted.
func (s *OrderStore) SubmitOrder(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	configurationJSON, err := json.Marshal(order.Configuration)
	if err != nil {
		return err
	}
	quantity, err := intToInt32(order.Quantity, "quantity")
	if err != nil {
		return err
	}
	status := order.Status
	if status == "" {
		status = models.StatusNew
	}

	var createdAt pgtype.Timestamptz
	err = s.db.QueryRow(ctx, `
		INSERT INTO orders (id, customer_name, customer_contact, customer_comment, configuration,
			quantity, calculated_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()))
		RETURNING created_at`,
		order.ID, order.CustomerName, order.CustomerContact, order.CustomerComment, configurationJSON,
		quantity, order.CalculatedPrice, string(status),
		pgtype.Timestamptz{Time: order.CreatedAt, Valid: !order.CreatedAt.IsZero()},
	).Scan(&createdAt)
	if err != nil {
		if pgErrorCode(err) == codeInsufficientPrivilege {
			return fmt.Errorf("%w (inserting into orders is denied by a row-level security policy)", err)
		}
		return err
	}

	order.Status = status
	order.CreatedAt = createdAt.Time
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, customer_name, customer_contact, customer_comment, configuration,
			quantity, calculated_price, status, created_at
		FROM orders
		WHERE id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	order, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// List returns the newest orders first. An empty status lists every status.
func (s *OrderStore) List(ctx context.Context, status models.OrderStatus, limit int) ([]*models.Order, error) {
	if limit <= 0 {
		limit = DefaultOrderListLimit
	}
	limitInt32, err := intToInt32(limit, "limit")
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, customer_name, customer_contact, customer_comment, configuration,
			quantity, calculated_price, status, created_at
		FROM orders
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC
		LIMIT $2`, string(status), limitInt32)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateStatus moves an order to next when its current status allows it.
func (s *OrderStore) UpdateStatus(ctx context.Context, orderID uuid.UUID, next models.OrderStatus) error {
	previous := models.PreviousStatuses(next)
	if len(previous) == 0 {
		return fmt.Errorf("%w: nothing transitions to %q", ErrInvalidStatusTransition, next)
	}
	allowed := make([]string, len(previous))
	for i, status := range previous {
		allowed[i] = string(status)
	}

	cmdTag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)`,
		string(next), orderID, allowed)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	var current string
	if err := s.db.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return err
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current, next)
}

func scanOrder(row pgx.CollectableRow) (*models.Order, error) {
	var (
		order         models.Order
		configuration []byte
		quantity      int32
		status        string
		createdAt     pgtype.Timestamptz
	)
	if err := row.Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerContact,
		&order.CustomerComment,
		&configuration,
		&quantity,
		&order.CalculatedPrice,
		&status,
		&createdAt,
	); err != nil {
		return nil, err
	}
	if configuration != nil {
		if err := json.Unmarshal(configuration, &order.Configuration); err != nil {
			return nil, fmt.Errorf("failed to decode configuration of order %s: %w", order.ID, err)
		}
	}
	order.Quantity = int(quantity)
	order.Status = models.OrderStatus(status)
	order.CreatedAt = createdAt.Time
	return &order, nil
}
