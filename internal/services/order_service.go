package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/payment"
)

// ReconcileResult reports the order a completed session maps to.
type ReconcileResult struct {
	OrderID string
	// Created is false when the order was already present.
	Created bool
}

// OrderService turns completed payment sessions into orders and serves the
// admin order views.
type OrderService struct {
	orderRepo repositories.OrderRepository
	gateway   PaymentGateway
	notifier  Notifier
	now       func() time.Time
}

// NewOrderService creates a new OrderService. notifier may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, gateway PaymentGateway, notifier Notifier) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		gateway:   gateway,
		notifier:  notifier,
		now:       time.Now,
	}
}

// HandleWebhook verifies a provider event and reconciles completed checkout
// sessions. A nil result with a nil error means the event type was ignored.
func (s *OrderService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*ReconcileResult, error) {
	event, err := s.gateway.ParseWebhookEvent(payload, signature)
	if err != nil {
		return nil, wrapError(KindInvalid, CodeInvalidSignature, err)
	}
	if event.Type != payment.EventCheckoutSessionCompleted || event.Session == nil {
		slog.Debug("ignoring webhook event", "type", event.Type, "event_id", event.ID)
		return nil, nil
	}
	return s.reconcile(ctx, event.Session, CodeLineItemsFetchFailed)
}

// Backfill recovers the order of a paid session whose webhook was missed.
func (s *OrderService) Backfill(ctx context.Context, sessionID string) (*ReconcileResult, error) {
	if sessionID == "" {
		return nil, newError(KindInvalid, CodeMissingSessionID, "")
	}

	session, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return nil, wrapError(KindUpstream, CodeBackfillFailed, err)
	}
	if session.PaymentStatus != payment.PaymentStatusPaid {
		return nil, newError(KindInvalid, CodeSessionNotPaid, session.PaymentStatus)
	}

	existing, err := s.orderRepo.GetBySessionID(ctx, sessionID)
	switch {
	case err == nil:
		return &ReconcileResult{OrderID: existing.ID}, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, wrapError(KindPersistence, CodeBackfillFailed, err)
	}

	return s.reconcile(ctx, session, CodeBackfillFailed)
}

// reconcile stores the order for a completed session exactly once. The insert
// relies on the session id uniqueness constraint, so concurrent deliveries of
// the same session settle on a single row.
func (s *OrderService) reconcile(ctx context.Context, session *payment.Session, upstreamCode string) (*ReconcileResult, error) {
	lineItems, err := s.gateway.ListLineItems(ctx, session.ID)
	if err != nil {
		return nil, wrapError(KindUpstream, upstreamCode, err)
	}

	order := BuildOrder(session, lineItems, s.now())
	if err := s.orderRepo.CreateWithItems(ctx, order); err != nil {
		if !errors.Is(err, repositories.ErrOrderExists) {
			return nil, wrapError(KindPersistence, CodeOrderInsertFailed, err)
		}
		existing, gerr := s.orderRepo.GetBySessionID(ctx, session.ID)
		if gerr != nil {
			return nil, wrapError(KindPersistence, CodeOrderLookupFailed, gerr)
		}
		slog.Info("order already present", "order_id", existing.ID, "session_id", session.ID)
		return &ReconcileResult{OrderID: existing.ID}, nil
	}
	slog.Info("order created", "order_id", order.ID, "session_id", session.ID,
		"amount_total_cents", order.AmountTotalCents, "is_test", order.IsTest)

	if err := s.enrich(ctx, order); err != nil {
		slog.Warn("payment enrichment failed", "order_id", order.ID, "error", err)
	}
	if s.notifier != nil {
		if err := s.notifier.OrderPaid(ctx, order); err != nil {
			slog.Warn("order notification failed", "order_id", order.ID, "error", err)
		}
	}
	return &ReconcileResult{OrderID: order.ID, Created: true}, nil
}

// enrich records the charge and its fee breakdown on a freshly stored order.
func (s *OrderService) enrich(ctx context.Context, order *models.Order) error {
	if order.StripePaymentIntentID == "" {
		return nil
	}
	details := models.PaymentDetails{PaymentIntentID: order.StripePaymentIntentID}

	chargeID, err := resolveIntentCharge(ctx, s.gateway, order.StripePaymentIntentID)
	if err != nil {
		return err
	}
	if chargeID != "" {
		details.ChargeID = chargeID
		charge, err := s.gateway.GetCharge(ctx, chargeID)
		if err != nil {
			return fmt.Errorf("failed to get charge %s: %w", chargeID, err)
		}
		details.FeeCents, details.NetCents = charge.Fee, charge.Net
	}

	if err := s.orderRepo.UpdatePayment(ctx, order.ID, details); err != nil {
		return err
	}
	order.StripeChargeID = details.ChargeID
	order.FeeCents, order.NetCents = details.FeeCents, details.NetCents
	return nil
}

// resolveIntentCharge returns the intent's latest charge, falling back to the
// first charge listed for it. An empty id means the intent has no charge yet.
func resolveIntentCharge(ctx context.Context, gateway PaymentGateway, paymentIntentID string) (string, error) {
	intent, err := gateway.GetPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return "", fmt.Errorf("failed to get payment intent %s: %w", paymentIntentID, err)
	}
	if intent.LatestChargeID != "" {
		return intent.LatestChargeID, nil
	}
	ids, err := gateway.ListChargeIDs(ctx, paymentIntentID, 1)
	if err != nil {
		return "", fmt.Errorf("failed to list charges for %s: %w", paymentIntentID, err)
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

// BuildOrder reconstructs a paid order from a completed session and its line items.
func BuildOrder(session *payment.Session, lineItems []payment.LineItem, paidAt time.Time) *models.Order {
	meta := session.Metadata
	order := &models.Order{
		CustomerName:          meta["customer_name"],
		AffiliatedPlayer:      meta["affiliated_player"],
		AffiliatedGroup:       meta["affiliated_group"],
		Email:                 session.Email,
		Phone:                 meta["phone"],
		Note:                  meta["note"],
		PaymentMethod:         models.PaymentMethodStripe,
		Status:                models.OrderStatusPaid,
		AmountTotalCents:      session.AmountTotal,
		Currency:              session.Currency,
		StripeSessionID:       session.ID,
		StripePaymentIntentID: session.PaymentIntentID,
		PaidAt:                &paidAt,
		IsTest:                !session.Livemode,
		Items:                 make([]models.OrderItem, 0, len(lineItems)),
	}

	for _, li := range lineItems {
		name := li.Description
		if name == "" {
			name = "Item"
		}
		qty := li.Quantity
		if qty < 1 {
			qty = 1
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductName:    name,
			ProductSlug:    models.Label(li.Metadata["slug"]),
			Size:           models.Label(li.Metadata["size"]),
			Color:          models.Label(li.Metadata["color"]),
			Quantity:       qty,
			UnitPriceCents: li.UnitAmount,
			LineTotalCents: li.UnitAmount * qty,
		})
	}
	return order
}

// ListOrderStatusAll lists orders regardless of status.
const ListOrderStatusAll = "all"

// ListOrders returns orders newest first, filtered by status. An empty status
// lists paid orders.
func (s *OrderService) ListOrders(ctx context.Context, status string) ([]models.Order, error) {
	filter := models.OrderStatusPaid
	switch {
	case status == ListOrderStatusAll:
		filter = ""
	case status != "":
		filter = models.OrderStatus(status)
		if !filter.Valid() {
			return nil, newError(KindInvalid, CodeInvalidStatus, status)
		}
	}
	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, wrapError(KindPersistence, CodeOrderLookupFailed, err)
	}
	return orders, nil
}

// GetOrder returns an order with its items by internal id or session id.
func (s *OrderService) GetOrder(ctx context.Context, ref string) (*models.Order, error) {
	order, err := s.orderRepo.FindByReference(ctx, ref)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, newError(KindNotFound, CodeOrderNotFound, ref)
	}
	if err != nil {
		return nil, wrapError(KindPersistence, CodeOrderLookupFailed, err)
	}
	return order, nil
}

// UpdateStatus moves an order to fulfilled, cancelled or back to paid.
// Refunded orders are final and the refunded state is only reachable by refunding.
func (s *OrderService) UpdateStatus(ctx context.Context, ref string, status models.OrderStatus) (*models.Order, error) {
	switch status {
	case models.OrderStatusPaid, models.OrderStatusFulfilled, models.OrderStatusCancelled:
	default:
		return nil, newError(KindInvalid, CodeInvalidStatus, string(status))
	}

	order, err := s.GetOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusRefunded {
		return nil, newError(KindInvalid, CodeInvalidStatus, "refunded orders cannot change status")
	}
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, status); err != nil {
		return nil, wrapError(KindPersistence, CodeOrderUpdateFailed, err)
	}
	order.Status = status
	return order, nil
}
