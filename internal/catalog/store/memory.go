package store

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	perrors "github.com/abgdnv/shopadmin/internal/catalog/errors"
)

// MemoryStore implements ProductStore using an in-memory map.
// IDs are assigned sequentially starting at 1 and never reused.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]Product
	nextID   int64
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]Product),
		nextID:   1,
		now:      time.Now,
	}
}

// FindByID retrieves a product by its ID.
func (s *MemoryStore) FindByID(_ context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	return &p, nil
}

// FindAll returns a page of products ordered by ID.
func (s *MemoryStore) FindAll(_ context.Context, offset, limit int32) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(s.products))
	list := make([]Product, 0, min(len(ids), int(limit)))
	for i := int(offset); i < len(ids) && len(list) < int(limit); i++ {
		list = append(list, s.products[ids[i]])
	}
	return list, nil
}

// Create creates a new product and returns it.
func (s *MemoryStore) Create(_ context.Context, params ProductParams) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	p := Product{
		ID:          s.nextID,
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
		Price:       params.Price,
		Image:       params.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.nextID++
	s.products[p.ID] = p
	return &p, nil
}

// Update replaces the writable fields of an existing product.
func (s *MemoryStore) Update(_ context.Context, id int64, params ProductParams) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	p.Title = params.Title
	p.Description = params.Description
	p.Category = params.Category
	p.Price = params.Price
	p.Image = params.Image
	p.UpdatedAt = s.now().UTC()
	s.products[id] = p
	return &p, nil
}

// DeleteByID deletes a product by its ID.
func (s *MemoryStore) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return perrors.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}
