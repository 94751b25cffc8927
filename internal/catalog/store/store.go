// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"
)

// Product is a persisted catalog record.
type Product struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	Price       float64   `db:"price"`
	Image       string    `db:"image"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ProductParams carries the writable fields of a product.
type ProductParams struct {
	Title       string
	Description string
	Category    string
	Price       float64
	Image       string
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindAll returns a page of products ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context, offset, limit int32) ([]Product, error)

	// Create adds a new product and assigns its ID.
	Create(ctx context.Context, params ProductParams) (*Product, error)

	// Update replaces all writable fields of the product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, params ProductParams) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error
}
