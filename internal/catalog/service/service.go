// Package service provides the implementation of catalog business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/shopadmin/internal/catalog/store"
	"github.com/abgdnv/shopadmin/pkg/messaging"
	"github.com/abgdnv/shopadmin/pkg/messaging/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const publishTimeout = 2 * time.Second

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// FindAll returns a page of products ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error)

	// Create adds a new product and returns it with its assigned ID.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update replaces the writable fields of product.ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, product ProductDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error
}

// Service implements ProductService. Every successful mutation is counted
// and announced as a ProductChangedEvent.
type Service struct {
	repository store.ProductStore
	publisher  messaging.Publisher
	mutations  metric.Int64Counter
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new instance of ProductService.
func NewService(repo store.ProductStore, publisher messaging.Publisher, meter metric.Meter, logger *slog.Logger) (*Service, error) {
	mutations, err := meter.Int64Counter("catalog_products_mutations",
		metric.WithDescription("Number of successful product mutations by action"))
	if err != nil {
		return nil, fmt.Errorf("failed to create mutation counter: %w", err)
	}
	return &Service{
		repository: repo,
		publisher:  publisher,
		mutations:  mutations,
		logger:     logger.With("component", "service"),
		now:        time.Now,
	}, nil
}

// ProductCreateDto is the writable part of a product. It is the body of both
// create and update requests; an id in the body is ignored.
type ProductCreateDto struct {
	Title       string  `json:"title"       validate:"required,max=255"`
	Description string  `json:"description" validate:"max=4000"`
	Category    string  `json:"category"    validate:"max=100"`
	Price       float64 `json:"price"       validate:"gte=0"`
	Image       string  `json:"image"       validate:"omitempty,url"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}

	return toDto(product), nil
}

// FindAll retrieves a page of products and returns them as ProductDTOs.
func (s *Service) FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))

	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}

	return productDTOs, nil
}

// Create creates a new product and returns it as a ProductDto.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	p, err := s.repository.Create(ctx, toParams(product))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	created := toDto(p)
	s.recordMutation(ctx, events.ProductCreated, created.ID, created)
	return created, nil
}

// Update replaces the product's writable fields and returns the stored record.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) Update(ctx context.Context, product ProductDto) (*ProductDto, error) {
	p, err := s.repository.Update(ctx, product.ID, toParams(ProductCreateDto{
		Title:       product.Title,
		Description: product.Description,
		Category:    product.Category,
		Price:       product.Price,
		Image:       product.Image,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", product.ID, err)
	}
	updated := toDto(p)
	s.recordMutation(ctx, events.ProductUpdated, updated.ID, updated)
	return updated, nil
}

// DeleteByID deletes a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	if err := s.repository.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	s.recordMutation(ctx, events.ProductDeleted, id, nil)
	return nil
}

// recordMutation counts the change and publishes its event. A publish
// failure is logged only; the mutation itself already succeeded.
func (s *Service) recordMutation(ctx context.Context, action events.ProductAction, id int64, product *ProductDto) {
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("action", string(action))))

	event := events.ProductChangedEvent{
		Action:     action,
		ProductID:  id,
		OccurredAt: s.now().UTC(),
	}
	if product != nil {
		event.Product = &events.ProductSnapshot{
			ID:          product.ID,
			Title:       product.Title,
			Description: product.Description,
			Category:    product.Category,
			Price:       product.Price,
			Image:       product.Image,
		}
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish product event", "subject", event.Subject(), "ID", id, "error", err)
	}
}

func toParams(p ProductCreateDto) store.ProductParams {
	return store.ProductParams{
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Image:       p.Image,
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Category:    product.Category,
		Price:       product.Price,
		Image:       product.Image,
	}
}
