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

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// CreateWithItems inserts the order and its items in one transaction. The insert
// is ON CONFLICT (stripe_session_id) DO NOTHING, so a duplicate or concurrent
// delivery affects no rows and is reported as ErrOrderExists.
func (r *GORMOrderRepository) CreateWithItems(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	items := order.Items
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		items[i].OrderID = order.ID
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "stripe_session_id"}},
				DoNothing: true,
			}).
			Create(order)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("session %s: %w", order.StripeSessionID, ErrOrderExists)
			}
			return fmt.Errorf("failed to insert order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("session %s: %w", order.StripeSessionID, ErrOrderExists)
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("failed to insert order items: %w", err)
			}
		}
		return nil
	})
}

func (r *GORMOrderRepository) first(ctx context.Context, ref string, query string, args ...interface{}) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("product_name asc") }).
		Where(query, args...).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", ref, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", ref, err)
	}
	return &order, nil
}

// GetByID retrieves an order with its items by internal ID.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return r.first(ctx, id, "id = ?", id)
}

// GetBySessionID retrieves an order with its items by Stripe session ID.
func (r *GORMOrderRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	return r.first(ctx, sessionID, "stripe_session_id = ?", sessionID)
}

// FindByReference accepts either an internal order ID or a Stripe session ID.
func (r *GORMOrderRepository) FindByReference(ctx context.Context, ref string) (*models.Order, error) {
	return r.first(ctx, ref, "id = ? OR stripe_session_id = ?", ref, ref)
}

// List returns orders newest first, without items. An empty status lists all orders.
func (r *GORMOrderRepository) List(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.WithContext(ctx).Order("created_at desc")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdatePayment stores the non-empty provider references and fee breakdown.
func (r *GORMOrderRepository) UpdatePayment(ctx context.Context, id string, details models.PaymentDetails) error {
	updates := map[string]interface{}{}
	if details.PaymentIntentID != "" {
		updates["stripe_payment_intent_id"] = details.PaymentIntentID
	}
	if details.ChargeID != "" {
		updates["stripe_charge_id"] = details.ChargeID
	}
	if details.FeeCents != nil {
		updates["fee_cents"] = *details.FeeCents
	}
	if details.NetCents != nil {
		updates["net_cents"] = *details.NetCents
	}
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update order payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListPaidItems returns the items of paid orders, ordered by product, size and color.
func (r *GORMOrderRepository) ListPaidItems(ctx context.Context) ([]models.PaidItem, error) {
	var items []models.PaidItem
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_name, order_items.size_value AS size, order_items.color_value AS color, order_items.quantity, order_items.line_total_cents").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", models.OrderStatusPaid).
		Order("order_items.product_name, order_items.size_value, order_items.color_value").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list paid order items: %w", err)
	}
	return items, nil
}
