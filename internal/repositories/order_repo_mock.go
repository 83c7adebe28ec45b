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

// MockOrderRepository is an in-memory implementation of OrderRepository. The
// session index plays the role of the unique constraint.
type MockOrderRepository struct {
	orders    map[string]models.Order
	bySession map[string]string
	mu        sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders:    make(map[string]models.Order),
		bySession: make(map[string]string),
	}
}

// CreateWithItems adds a new order unless one exists for the same session.
func (r *MockOrderRepository) CreateWithItems(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bySession[order.StripeSessionID]; ok {
		return fmt.Errorf("session %s: %w", order.StripeSessionID, ErrOrderExists)
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
		order.Items[i].CreatedAt = now
	}
	stored := *order
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	r.orders[order.ID] = stored
	r.bySession[order.StripeSessionID] = order.ID
	return nil
}

func (r *MockOrderRepository) copyOf(o models.Order) *models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return &o
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return r.copyOf(order), nil
}

// GetBySessionID returns an order by its Stripe session ID.
func (r *MockOrderRepository) GetBySessionID(_ context.Context, sessionID string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySession[sessionID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", sessionID, ErrNotFound)
	}
	return r.copyOf(r.orders[id]), nil
}

// FindByReference returns an order by ID or Stripe session ID.
func (r *MockOrderRepository) FindByReference(ctx context.Context, ref string) (*models.Order, error) {
	if order, err := r.GetByID(ctx, ref); err == nil {
		return order, nil
	}
	return r.GetBySessionID(ctx, ref)
}

// List returns orders newest first. An empty status lists all orders.
func (r *MockOrderRepository) List(_ context.Context, status models.OrderStatus) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if status != "" && order.Status != status {
			continue
		}
		order.Items = nil
		orderList = append(orderList, order)
	}
	sort.Slice(orderList, func(i, j int) bool { return orderList[i].CreatedAt.After(orderList[j].CreatedAt) })
	return orderList, nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(_ context.Context, id string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// UpdatePayment stores provider references and fee breakdown.
func (r *MockOrderRepository) UpdatePayment(_ context.Context, id string, details models.PaymentDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if details.PaymentIntentID != "" {
		order.StripePaymentIntentID = details.PaymentIntentID
	}
	if details.ChargeID != "" {
		order.StripeChargeID = details.ChargeID
	}
	if details.FeeCents != nil {
		order.FeeCents = details.FeeCents
	}
	if details.NetCents != nil {
		order.NetCents = details.NetCents
	}
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// ListPaidItems returns items of paid orders.
func (r *MockOrderRepository) ListPaidItems(_ context.Context) ([]models.PaidItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []models.PaidItem
	for _, order := range r.orders {
		if order.Status != models.OrderStatusPaid {
			continue
		}
		for _, it := range order.Items {
			items = append(items, models.PaidItem{
				ProductName:    it.ProductName,
				Size:           it.Size,
				Color:          it.Color,
				Quantity:       it.Quantity,
				LineTotalCents: it.LineTotalCents,
			})
		}
	}
	return items, nil
}
