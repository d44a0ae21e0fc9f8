package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/marketplace/internal/domain/order"
)

// PostgresOrderStore implements order.Store on PostgreSQL. Order items are
// stored as JSONB: they are written once at placement time and never
// queried individually.
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

func (s *PostgresOrderStore) Create(ctx context.Context, o *order.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, items, total_amount, status, shipping_address, phone, notes, created_at, updated_at, delivered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.UserID, items, o.TotalAmount, o.Status, o.ShippingAddress, o.Phone, o.Notes,
		o.CreatedAt, o.UpdatedAt, o.DeliveredAt,
	)
	return err
}

func (s *PostgresOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, items, total_amount, status, shipping_address, phone, notes, created_at, updated_at, delivered_at
		 FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (s *PostgresOrderStore) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, items, total_amount, status, shipping_address, phone, notes, created_at, updated_at, delivered_at
		 FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (s *PostgresOrderStore) ListAll(ctx context.Context) ([]*order.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, items, total_amount, status, shipping_address, phone, notes, created_at, updated_at, delivered_at
		 FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (s *PostgresOrderStore) UpdateStatus(ctx context.Context, id string, status order.Status, deliveredAt *time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = $2, delivered_at = $3, updated_at = now() WHERE id = $1`,
		id, status, deliveredAt,
	)
	if err != nil {
		return err
	}
	return requireRow(result, order.ErrOrderNotFound)
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	var items []byte
	var deliveredAt sql.NullTime
	err := row.Scan(&o.ID, &o.UserID, &items, &o.TotalAmount, &o.Status, &o.ShippingAddress,
		&o.Phone, &o.Notes, &o.CreatedAt, &o.UpdatedAt, &deliveredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		o.DeliveredAt = &t
	}
	return &o, nil
}

func collectOrders(rows *sql.Rows) ([]*order.Order, error) {
	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
