package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/marketplace/internal/domain/pricing"
	"github.com/example/marketplace/internal/domain/product"
)

// PostgresProductStore implements product.Store on PostgreSQL. Tier tables
// are stored as JSONB; the stock decrement is a conditional UPDATE so a
// concurrent checkout can never drive stock below zero.
type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (s *PostgresProductStore) Create(ctx context.Context, p *product.Product) error {
	tiers, err := json.Marshal(p.PriceTiers)
	if err != nil {
		return fmt.Errorf("failed to marshal price tiers: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO products (id, seller_id, name, description, image_url, stock, price_tiers, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.SellerID, p.Name, p.Description, p.ImageURL, p.Stock, tiers, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (s *PostgresProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, seller_id, name, description, image_url, stock, price_tiers, is_active, created_at, updated_at
		 FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

func (s *PostgresProductStore) List(ctx context.Context, activeOnly bool) ([]*product.Product, error) {
	query := `SELECT id, seller_id, name, description, image_url, stock, price_tiers, is_active, created_at, updated_at
	          FROM products`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (s *PostgresProductStore) ListBySeller(ctx context.Context, sellerID string) ([]*product.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seller_id, name, description, image_url, stock, price_tiers, is_active, created_at, updated_at
		 FROM products WHERE seller_id = $1 ORDER BY created_at DESC`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (s *PostgresProductStore) Update(ctx context.Context, p *product.Product) error {
	tiers, err := json.Marshal(p.PriceTiers)
	if err != nil {
		return fmt.Errorf("failed to marshal price tiers: %w", err)
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE products
		 SET name = $2, description = $3, image_url = $4, stock = $5, price_tiers = $6, is_active = $7, updated_at = $8
		 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.ImageURL, p.Stock, tiers, p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(result, product.ErrProductNotFound)
}

// DecrementStock takes quantity units atomically. The WHERE clause makes the
// decrement conditional: either the full quantity is available or nothing
// changes.
func (s *PostgresProductStore) DecrementStock(ctx context.Context, id string, quantity int) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1 AND stock >= $2`,
		id, quantity,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish a missing product from a failed condition.
		if _, err := s.Get(ctx, id); errors.Is(err, product.ErrProductNotFound) {
			return product.ErrProductNotFound
		}
		return product.ErrInsufficientStock
	}
	return nil
}

func (s *PostgresProductStore) IncrementStock(ctx context.Context, id string, quantity int) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		return err
	}
	return requireRow(result, product.ErrProductNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*product.Product, error) {
	var p product.Product
	var tiers []byte
	err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.ImageURL,
		&p.Stock, &tiers, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, product.ErrProductNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(tiers, &p.PriceTiers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price tiers: %w", err)
	}
	if p.PriceTiers == nil {
		p.PriceTiers = []pricing.PriceTier{}
	}
	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]*product.Product, error) {
	var products []*product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func requireRow(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
