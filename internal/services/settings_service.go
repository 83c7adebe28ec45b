package services

import (
	"context"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// SettingsUpdate is the admin payload for site settings.
type SettingsUpdate struct {
	StoreClosed        bool    `json:"store_closed"`
	StoreClosedMessage *string `json:"store_closed_message" validate:"omitempty,max=500"`
}

// SettingsService reads and updates the site settings.
type SettingsService struct {
	repo repositories.SettingsRepository
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(repo repositories.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// Get returns the current settings.
func (s *SettingsService) Get(ctx context.Context) (*models.SiteSettings, error) {
	return s.repo.Get(ctx)
}

// Update replaces the settings. A blank message is stored as absent.
func (s *SettingsService) Update(ctx context.Context, in SettingsUpdate) (*models.SiteSettings, error) {
	settings := &models.SiteSettings{StoreClosed: in.StoreClosed}
	if in.StoreClosedMessage != nil {
		settings.StoreClosedMessage = models.Label(strings.TrimSpace(*in.StoreClosedMessage))
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
