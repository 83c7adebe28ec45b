package repositories

import (
	"context"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
//
// CreateWithItems must be backed by a uniqueness guarantee on the Stripe session
// id: when an order for the same session already exists, including one inserted
// concurrently, it returns ErrOrderExists and stores nothing.
type OrderRepository interface {
	CreateWithItems(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	FindByReference(ctx context.Context, ref string) (*models.Order, error)
	List(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	UpdatePayment(ctx context.Context, id string, details models.PaymentDetails) error
	ListPaidItems(ctx context.Context) ([]models.PaidItem, error)
}
