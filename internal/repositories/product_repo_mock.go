package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	variants map[string]models.ProductVariant
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
		variants: make(map[string]models.ProductVariant),
	}
}

// withVariants attaches variants to p; callers must hold the read lock.
func (r *MockProductRepository) withVariants(p models.Product, activeOnly bool) models.Product {
	p.Variants = nil
	for _, v := range r.variants {
		if v.ProductID == p.ID && (!activeOnly || v.Active) {
			p.Variants = append(p.Variants, v)
		}
	}
	sort.Slice(p.Variants, func(i, j int) bool { return p.Variants[i].CreatedAt.Before(p.Variants[j].CreatedAt) })
	return p
}

func (r *MockProductRepository) sorted(activeOnly bool) []models.Product {
	list := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if activeOnly && !p.Active {
			continue
		}
		list = append(list, r.withVariants(p, activeOnly))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].SortOrder != list[j].SortOrder {
			return list[i].SortOrder < list[j].SortOrder
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// ListActive returns active products with their active variants.
func (r *MockProductRepository) ListActive(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(true), nil
}

// ListAll returns all products.
func (r *MockProductRepository) ListAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(false), nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	product = r.withVariants(product, false)
	return &product, nil
}

// GetBySlug returns a product by its slug.
func (r *MockProductRepository) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Slug == slug {
			p = r.withVariants(p, false)
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %s: %w", slug, ErrNotFound)
}

// GetByIDs returns the known products among ids.
func (r *MockProductRepository) GetByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			list = append(list, p)
		}
	}
	return list, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	for _, p := range r.products {
		if p.Slug == product.Slug {
			return fmt.Errorf("failed to create product: slug %q already used", product.Slug)
		}
	}
	now := time.Now()
	product.CreatedAt, product.UpdatedAt = now, now
	stored := *product
	stored.Variants = nil
	r.products[product.ID] = stored
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	stored := *product
	stored.Variants = nil
	r.products[product.ID] = stored
	return nil
}

// Deactivate marks a product inactive.
func (r *MockProductRepository) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	p.Active = false
	r.products[id] = p
	return nil
}

// GetVariantsByIDs returns the known variants among ids.
func (r *MockProductRepository) GetVariantsByIDs(_ context.Context, ids []string) ([]models.ProductVariant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.ProductVariant
	for _, id := range ids {
		if v, ok := r.variants[id]; ok {
			list = append(list, v)
		}
	}
	return list, nil
}

// CreateVariant adds a new variant.
func (r *MockProductRepository) CreateVariant(_ context.Context, variant *models.ProductVariant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[variant.ProductID]; !ok {
		return fmt.Errorf("product %s: %w", variant.ProductID, ErrNotFound)
	}
	if variant.ID == "" {
		variant.ID = uuid.New().String()
	}
	now := time.Now()
	variant.CreatedAt, variant.UpdatedAt = now, now
	r.variants[variant.ID] = *variant
	return nil
}

// UpdateVariant modifies an existing variant.
func (r *MockProductRepository) UpdateVariant(_ context.Context, variant *models.ProductVariant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.variants[variant.ID]
	if !ok {
		return fmt.Errorf("variant %s: %w", variant.ID, ErrNotFound)
	}
	variant.ProductID = existing.ProductID
	variant.CreatedAt = existing.CreatedAt
	variant.UpdatedAt = time.Now()
	r.variants[variant.ID] = *variant
	return nil
}

// DeactivateVariant marks a variant inactive.
func (r *MockProductRepository) DeactivateVariant(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.variants[id]
	if !ok {
		return fmt.Errorf("variant %s: %w", id, ErrNotFound)
	}
	v.Active = false
	r.variants[id] = v
	return nil
}
