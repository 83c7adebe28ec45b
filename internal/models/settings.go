package models

import "time"

const SiteSettingsID = 1

const defaultClosedMessage = "The store is currently closed."

// SiteSettings is the singleton row gating the storefront.
type SiteSettings struct {
	ID                 uint      `json:"-" gorm:"primaryKey"`
	StoreClosed        bool      `json:"store_closed"`
	StoreClosedMessage *string   `json:"store_closed_message"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ClosedMessage returns the configured closure message or a default.
func (s SiteSettings) ClosedMessage() string {
	if s.StoreClosedMessage != nil && *s.StoreClosedMessage != "" {
		return *s.StoreClosedMessage
	}
	return defaultClosedMessage
}
