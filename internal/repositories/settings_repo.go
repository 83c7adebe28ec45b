package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository reads and writes the site settings singleton.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Save(ctx context.Context, settings *models.SiteSettings) error
}

// GORMSettingsRepository is a GORM implementation of SettingsRepository.
type GORMSettingsRepository struct {
	db *gorm.DB
}

// NewGORMSettingsRepository creates a new instance of GORMSettingsRepository.
func NewGORMSettingsRepository(db *gorm.DB) *GORMSettingsRepository {
	return &GORMSettingsRepository{db: db}
}

// Get returns the settings row, or an open store when the row does not exist yet.
func (r *GORMSettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	var settings models.SiteSettings
	err := r.db.WithContext(ctx).First(&settings, "id = ?", models.SiteSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.SiteSettings{ID: models.SiteSettingsID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site settings: %w", err)
	}
	return &settings, nil
}

// Save upserts the settings row.
func (r *GORMSettingsRepository) Save(ctx context.Context, settings *models.SiteSettings) error {
	settings.ID = models.SiteSettingsID
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"store_closed", "store_closed_message", "updated_at"}),
		}).
		Create(settings).Error
	if err != nil {
		return fmt.Errorf("failed to save site settings: %w", err)
	}
	return nil
}

// MockSettingsRepository is an in-memory implementation of SettingsRepository.
type MockSettingsRepository struct {
	settings models.SiteSettings
	mu       sync.RWMutex
}

// NewMockSettingsRepository creates an open-store settings repository.
func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{settings: models.SiteSettings{ID: models.SiteSettingsID}}
}

// Get returns a copy of the settings.
func (r *MockSettingsRepository) Get(_ context.Context) (*models.SiteSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.settings
	return &s, nil
}

// Save replaces the settings.
func (r *MockSettingsRepository) Save(_ context.Context, settings *models.SiteSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	settings.ID = models.SiteSettingsID
	settings.UpdatedAt = time.Now()
	r.settings = *settings
	return nil
}
