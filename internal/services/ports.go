package services

import (
	"context"

	"storefront/internal/models"
	"storefront/pkg/payment"
)

// PaymentGateway is the subset of the payment provider the services rely on.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error)
	ParseWebhookEvent(payload []byte, signature string) (*payment.Event, error)
	GetSession(ctx context.Context, id string) (*payment.Session, error)
	ListLineItems(ctx context.Context, sessionID string) ([]payment.LineItem, error)
	GetPaymentIntent(ctx context.Context, id string) (*payment.PaymentIntent, error)
	ListChargeIDs(ctx context.Context, paymentIntentID string, limit int) ([]string, error)
	GetCharge(ctx context.Context, id string) (*payment.Charge, error)
	RefundCharge(ctx context.Context, chargeID string) (*payment.Refund, error)
	ListBalanceTransactions(ctx context.Context, limit int) ([]payment.BalanceTransaction, error)
}

// Notifier is told about newly paid orders. Delivery is best-effort.
type Notifier interface {
	OrderPaid(ctx context.Context, order *models.Order) error
}
