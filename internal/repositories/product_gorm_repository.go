package repositories

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func orderVariants(db *gorm.DB) *gorm.DB {
	return db.Order("created_at asc")
}

// ListActive returns active products with their active variants, in display order.
func (r *GORMProductRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return orderVariants(db).Where("active = ?", true) }).
		Where("active = ?", true).
		Order("sort_order asc, name asc").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active products: %w", err)
	}
	return products, nil
}

// ListAll returns every product, including inactive ones, with all variants.
func (r *GORMProductRepository) ListAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Preload("Variants", orderVariants).Order("sort_order asc, name asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return r.first(ctx, "id = ?", id)
}

// GetBySlug retrieves a single product by its slug.
func (r *GORMProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *GORMProductRepository) first(ctx context.Context, query string, arg string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Variants", orderVariants).First(&product, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", arg, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product %s: %w", arg, err)
	}
	return &product, nil
}

// GetByIDs retrieves the products with the given IDs. Unknown IDs are skipped.
func (r *GORMProductRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products by IDs: %w", err)
	}
	return products, nil
}

// Create creates a new product.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update overwrites the product's columns. Variants are managed separately.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		return fmt.Errorf("product without ID: %w", ErrNotFound)
	}
	res := r.db.WithContext(ctx).Model(product).Select("*").Omit("ID", "CreatedAt", clause.Associations).Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Deactivate hides a product from the storefront. Products are never deleted.
func (r *GORMProductRepository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetVariantsByIDs retrieves the variants with the given IDs. Unknown IDs are skipped.
func (r *GORMProductRepository) GetVariantsByIDs(ctx context.Context, ids []string) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	if len(ids) == 0 {
		return variants, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to get variants by IDs: %w", err)
	}
	return variants, nil
}

// CreateVariant creates a new variant for an existing product.
func (r *GORMProductRepository) CreateVariant(ctx context.Context, variant *models.ProductVariant) error {
	if variant.ID == "" {
		variant.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

// UpdateVariant overwrites the variant's columns.
func (r *GORMProductRepository) UpdateVariant(ctx context.Context, variant *models.ProductVariant) error {
	if variant.ID == "" {
		return fmt.Errorf("variant without ID: %w", ErrNotFound)
	}
	res := r.db.WithContext(ctx).Model(variant).Select("*").Omit("ID", "ProductID", "CreatedAt").Updates(variant)
	if res.Error != nil {
		return fmt.Errorf("failed to update variant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("variant %s: %w", variant.ID, ErrNotFound)
	}
	return nil
}

// DeactivateVariant makes a variant unpurchasable.
func (r *GORMProductRepository) DeactivateVariant(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.ProductVariant{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate variant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("variant %s: %w", id, ErrNotFound)
	}
	return nil
}
