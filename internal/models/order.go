package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusFulfilled, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

const PaymentMethodStripe = "stripe"

// OrderItem is a line of an order. Name and prices are snapshots taken at the time
// of sale and do not follow later catalog edits.
type OrderItem struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID        string    `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductName    string    `json:"product_name"`
	ProductSlug    *string   `json:"product_slug,omitempty"`
	Size           *string   `json:"size,omitempty" gorm:"column:size_value"`
	Color          *string   `json:"color,omitempty" gorm:"column:color_value"`
	Quantity       int64     `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	LineTotalCents int64     `json:"line_total_cents"`
	CreatedAt      time.Time `json:"created_at"`
}

// Order represents a paid (or later refunded/fulfilled) customer order. The Stripe
// session id is unique: at most one order exists per completed checkout session.
type Order struct {
	ID                    string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerName          string      `json:"customer_name"`
	AffiliatedPlayer      string      `json:"affiliated_player"`
	AffiliatedGroup       string      `json:"affiliated_group"`
	Email                 string      `json:"email" gorm:"index"`
	Phone                 string      `json:"phone"`
	Note                  string      `json:"note,omitempty"`
	PaymentMethod         string      `json:"payment_method" gorm:"type:varchar(20)"`
	Status                OrderStatus `json:"status" gorm:"type:varchar(20);index"`
	AmountTotalCents      int64       `json:"amount_total_cents"`
	Currency              string      `json:"currency" gorm:"type:varchar(3)"`
	StripeSessionID       string      `json:"stripe_session_id" gorm:"uniqueIndex;type:varchar(255);not null"`
	StripePaymentIntentID string      `json:"stripe_payment_intent_id,omitempty"`
	StripeChargeID        string      `json:"stripe_charge_id,omitempty"`
	FeeCents              *int64      `json:"fee_cents,omitempty"`
	NetCents              *int64      `json:"net_cents,omitempty"`
	PaidAt                *time.Time  `json:"paid_at,omitempty"`
	IsTest                bool        `json:"is_test"`
	Items                 []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// PaidItem is an order item joined with its order's status, used by reports.
type PaidItem struct {
	ProductName    string
	Size           *string
	Color          *string
	Quantity       int64
	LineTotalCents int64
}

// PaymentDetails is the provider-side enrichment stored on an order.
type PaymentDetails struct {
	PaymentIntentID string
	ChargeID        string
	FeeCents        *int64
	NetCents        *int64
}
