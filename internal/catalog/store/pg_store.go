package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/shopadmin/internal/catalog/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = "id, title, description, category, price, image, created_at, updated_at"

const (
	findByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	findAllSQL  = `SELECT ` + productColumns + ` FROM products ORDER BY id LIMIT $1 OFFSET $2`
	createSQL   = `INSERT INTO products (title, description, category, price, image)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + productColumns
	updateSQL = `UPDATE products
SET title = $2, description = $3, category = $4, price = $5, image = $6, updated_at = now()
WHERE id = $1
RETURNING ` + productColumns
	deleteSQL = `DELETE FROM products WHERE id = $1`
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	rows, _ := p.db.Query(ctx, findByIDSQL, id)
	product, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

// FindAll retrieves a page of products ordered by ID.
func (p *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]Product, error) {
	rows, _ := p.db.Query(ctx, findAllSQL, limit, offset)
	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[Product])
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	return products, nil
}

// Create inserts a new product and returns it with the generated ID.
func (p *PgStore) Create(ctx context.Context, params ProductParams) (*Product, error) {
	rows, _ := p.db.Query(ctx, createSQL, params.Title, params.Description, params.Category, params.Price, params.Image)
	product, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

// Update replaces the product's writable fields.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, id int64, params ProductParams) (*Product, error) {
	rows, _ := p.db.Query(ctx, updateSQL, id, params.Title, params.Description, params.Category, params.Price, params.Image)
	product, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id int64) error {
	tag, err := p.db.Exec(ctx, deleteSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}
