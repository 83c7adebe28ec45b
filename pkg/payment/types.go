// Package payment adapts the Stripe API to the small set of provider-neutral
// types the storefront needs.
package payment

import "errors"

const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	PaymentStatusPaid             = "paid"
)

var (
	// ErrInvalidSignature is returned when a webhook payload fails verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMalformedEvent is returned when a verified event cannot be decoded.
	ErrMalformedEvent = errors.New("malformed webhook event")
)

// LineItemRequest is one line of a hosted checkout session request.
type LineItemRequest struct {
	Name       string
	UnitAmount int64
	Quantity   int64
	Metadata   map[string]string
}

// SessionRequest describes a hosted checkout session to create.
type SessionRequest struct {
	LineItems     []LineItemRequest
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
	SuccessURL    string
	CancelURL     string
}

// Session is a hosted checkout session.
type Session struct {
	ID              string
	URL             string
	AmountTotal     int64
	Currency        string
	Email           string
	Livemode        bool
	PaymentStatus   string
	PaymentIntentID string
	Metadata        map[string]string
}

// LineItem is a purchased line of a completed session. Metadata merges the
// product metadata set at session creation.
type LineItem struct {
	Description string
	Quantity    int64
	UnitAmount  int64
	AmountTotal int64
	Metadata    map[string]string
}

// PaymentIntent carries the charge reference of a payment.
type PaymentIntent struct {
	ID             string
	LatestChargeID string
}

// Charge is a captured payment with its fee breakdown, when available.
type Charge struct {
	ID     string
	Amount int64
	Fee    *int64
	Net    *int64
}

// Refund is the result of a refund request.
type Refund struct {
	ID     string
	Status string
	Amount int64
}

// BalanceTransaction is a ledger entry of the provider account.
type BalanceTransaction struct {
	Type   string
	Amount int64
	Fee    int64
	Net    int64
}

// Event is a verified webhook event. Session is set for checkout session events.
type Event struct {
	ID      string
	Type    string
	Session *Session
}
