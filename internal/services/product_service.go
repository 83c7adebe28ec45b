package services

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ProductService handles business logic related to the catalog.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListActiveProducts returns the storefront catalog with active variants only.
func (s *ProductService) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListActive(ctx)
}

// GetActiveProductBySlug returns an active product with its active variants.
// Inactive products are reported as not found.
func (s *ProductService) GetActiveProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, fmt.Errorf("product %s: %w", slug, repositories.ErrNotFound)
	}
	active := product.Variants[:0:0]
	for _, v := range product.Variants {
		if v.Active {
			active = append(active, v)
		}
	}
	product.Variants = active
	return product, nil
}

// ListAllProducts returns every product, including inactive ones.
func (s *ProductService) ListAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct creates a new product. Variants are added separately.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	product.Variants = nil
	return s.repo.Create(ctx, product)
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	return s.repo.Update(ctx, product)
}

// DeactivateProduct hides a product from the storefront.
func (s *ProductService) DeactivateProduct(ctx context.Context, id string) error {
	return s.repo.Deactivate(ctx, id)
}

// CreateVariant adds a variant to an existing product. A product carries at
// most one active variant per size and color.
func (s *ProductService) CreateVariant(ctx context.Context, productID string, variant *models.ProductVariant) error {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if variant.Active {
		if existing, ok := product.FindVariant(variant.Size, variant.Color); ok {
			return newError(KindInvalid, CodeDuplicateVariant, existing.ID)
		}
	}
	variant.ProductID = productID
	return s.repo.CreateVariant(ctx, variant)
}

// UpdateVariant updates an existing variant.
func (s *ProductService) UpdateVariant(ctx context.Context, variant *models.ProductVariant) error {
	return s.repo.UpdateVariant(ctx, variant)
}

// DeactivateVariant makes a variant unpurchasable.
func (s *ProductService) DeactivateVariant(ctx context.Context, id string) error {
	return s.repo.DeactivateVariant(ctx, id)
}
