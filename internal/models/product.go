package models

import "time"

// Product represents a catalog entry. Products are never deleted, only deactivated.
type Product struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string           `json:"name" gorm:"type:varchar(120)" validate:"required,min=1,max=120"`
	Slug        string           `json:"slug" gorm:"uniqueIndex;type:varchar(140)" validate:"required,max=140,slug"`
	Description string           `json:"description" validate:"omitempty,max=2000"`
	ImageURL    string           `json:"image_url" validate:"omitempty,max=500"`
	Active      bool             `json:"active" gorm:"index"`
	SortOrder   int              `json:"sort_order"`
	Variants    []ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID" validate:"-"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ProductVariant is a purchasable size/color combination of a product with its own price.
type ProductVariant struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ProductID  string    `json:"product_id" gorm:"index;type:varchar(36)"`
	Size       *string   `json:"size,omitempty" gorm:"column:size_value;type:varchar(40)" validate:"omitempty,max=40"`
	Color      *string   `json:"color,omitempty" gorm:"column:color_value;type:varchar(40)" validate:"omitempty,max=40"`
	PriceCents int64     `json:"price_cents" validate:"gte=0"`
	SKU        *string   `json:"sku,omitempty" gorm:"type:varchar(64)" validate:"omitempty,max=64"`
	Active     bool      `json:"active" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Matches reports whether the variant carries exactly the given size and color.
// An absent label only matches an unlabeled variant.
func (v ProductVariant) Matches(size, color *string) bool {
	return OptionalEqual(v.Size, size) && OptionalEqual(v.Color, color)
}

// FindVariant returns the active variant with exactly the given labels.
func (p Product) FindVariant(size, color *string) (*ProductVariant, bool) {
	for i := range p.Variants {
		if p.Variants[i].Active && p.Variants[i].Matches(size, color) {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// OptionalEqual compares two optional labels. Nil and empty are both "absent".
func OptionalEqual(a, b *string) bool {
	return labelValue(a) == labelValue(b)
}

// LabelsConflict reports whether a claimed label contradicts a stored one.
// Only two present, different values conflict.
func LabelsConflict(claimed, stored *string) bool {
	c, s := labelValue(claimed), labelValue(stored)
	return c != "" && s != "" && c != s
}

// Label returns a pointer to s, or nil when s is empty.
func Label(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func labelValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
