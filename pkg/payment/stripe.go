package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/stripe/stripe-go/v80/webhook"
)

// StripeClient talks to Stripe through stripe-go.
type StripeClient struct {
	api           *client.API
	webhookSecret string
}

// NewStripeClient creates a client for the given secret key. The webhook secret
// is used to verify inbound event signatures.
func NewStripeClient(secretKey, webhookSecret string) *StripeClient {
	return newStripeClient(secretKey, webhookSecret, nil)
}

// newStripeClient uses the given backends, or the stripe-go defaults when nil.
func newStripeClient(secretKey, webhookSecret string, backends *stripe.Backends) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeClient{api: api, webhookSecret: webhookSecret}
}

// CreateCheckoutSession creates a hosted checkout session in payment mode.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	for _, li := range req.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(li.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(li.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:     stripe.String(li.Name),
					Metadata: li.Metadata,
				},
			},
		})
	}

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return toSession(s), nil
}

// GetSession retrieves a checkout session with its payment intent reference.
func (c *StripeClient) GetSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")
	s, err := c.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session %s: %w", id, err)
	}
	return toSession(s), nil
}

// ListLineItems returns every purchased line of a session.
func (c *StripeClient) ListLineItems(ctx context.Context, sessionID string) ([]LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{Session: stripe.String(sessionID)}
	params.Context = ctx
	params.AddExpand("data.price.product")

	var items []LineItem
	iter := c.api.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		items = append(items, toLineItem(iter.LineItem()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list line items for session %s: %w", sessionID, err)
	}
	return items, nil
}

// GetPaymentIntent retrieves a payment intent with its latest charge reference.
func (c *StripeClient) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")
	pi, err := c.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent %s: %w", id, err)
	}
	out := &PaymentIntent{ID: pi.ID}
	if pi.LatestCharge != nil {
		out.LatestChargeID = pi.LatestCharge.ID
	}
	return out, nil
}

// ListChargeIDs returns up to limit charge IDs created for a payment intent.
func (c *StripeClient) ListChargeIDs(ctx context.Context, paymentIntentID string, limit int) ([]string, error) {
	params := &stripe.ChargeListParams{PaymentIntent: stripe.String(paymentIntentID)}
	params.Context = ctx
	params.Limit = stripe.Int64(int64(limit))

	var ids []string
	iter := c.api.Charges.List(params)
	for len(ids) < limit && iter.Next() {
		ids = append(ids, iter.Charge().ID)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list charges for payment intent %s: %w", paymentIntentID, err)
	}
	return ids, nil
}

// GetCharge retrieves a charge with the fee and net of its balance transaction.
func (c *StripeClient) GetCharge(ctx context.Context, id string) (*Charge, error) {
	params := &stripe.ChargeParams{}
	params.Context = ctx
	params.AddExpand("balance_transaction")
	ch, err := c.api.Charges.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve charge %s: %w", id, err)
	}
	out := &Charge{ID: ch.ID, Amount: ch.Amount}
	if bt := ch.BalanceTransaction; bt != nil && bt.Amount != 0 {
		fee, net := bt.Fee, bt.Net
		out.Fee, out.Net = &fee, &net
	}
	return out, nil
}

// RefundCharge issues a full refund of a charge.
func (c *StripeClient) RefundCharge(ctx context.Context, chargeID string) (*Refund, error) {
	params := &stripe.RefundParams{Charge: stripe.String(chargeID)}
	params.Context = ctx
	r, err := c.api.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to refund charge %s: %w", chargeID, err)
	}
	return &Refund{ID: r.ID, Status: string(r.Status), Amount: r.Amount}, nil
}

// ListBalanceTransactions returns up to limit of the most recent balance transactions.
func (c *StripeClient) ListBalanceTransactions(ctx context.Context, limit int) ([]BalanceTransaction, error) {
	params := &stripe.BalanceTransactionListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(int64(limit))

	var txns []BalanceTransaction
	iter := c.api.BalanceTransactions.List(params)
	for len(txns) < limit && iter.Next() {
		bt := iter.BalanceTransaction()
		txns = append(txns, BalanceTransaction{Type: string(bt.Type), Amount: bt.Amount, Fee: bt.Fee, Net: bt.Net})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list balance transactions: %w", err)
	}
	return txns, nil
}

// ParseWebhookEvent verifies the Stripe-Signature header against the webhook
// secret and decodes the event.
func (c *StripeClient) ParseWebhookEvent(payload []byte, signature string) (*Event, error) {
	if c.webhookSecret == "" || signature == "" {
		return nil, fmt.Errorf("%w: missing signature or secret", ErrInvalidSignature)
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if out.Type == EventCheckoutSessionCompleted {
		if ev.Data == nil {
			return nil, fmt.Errorf("%w: event %s has no data", ErrMalformedEvent, ev.ID)
		}
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		out.Session = toSession(&s)
	}
	return out, nil
}

func toSession(s *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:            s.ID,
		URL:           s.URL,
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		Email:         s.CustomerEmail,
		Livemode:      s.Livemode,
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
	}
	if s.CustomerDetails != nil && s.CustomerDetails.Email != "" {
		out.Email = s.CustomerDetails.Email
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out
}

func toLineItem(li *stripe.LineItem) LineItem {
	out := LineItem{
		Description: li.Description,
		Quantity:    li.Quantity,
		AmountTotal: li.AmountTotal,
		Metadata:    map[string]string{},
	}
	if li.Price != nil {
		out.UnitAmount = li.Price.UnitAmount
		if li.Price.Product != nil {
			for k, v := range li.Price.Product.Metadata {
				out.Metadata[k] = v
			}
		}
	}
	return out
}
