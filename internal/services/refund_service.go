package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// RefundService issues full refunds for paid orders.
type RefundService struct {
	orderRepo repositories.OrderRepository
	gateway   PaymentGateway
}

// NewRefundService creates a new RefundService.
func NewRefundService(orderRepo repositories.OrderRepository, gateway PaymentGateway) *RefundService {
	return &RefundService{orderRepo: orderRepo, gateway: gateway}
}

// Refund fully refunds the charge behind a paid order and marks it refunded.
// ref is either the internal order id or the checkout session id.
func (s *RefundService) Refund(ctx context.Context, ref string) (*models.Order, error) {
	if ref == "" {
		return nil, newError(KindInvalid, CodeMissingOrderID, "")
	}

	order, err := s.orderRepo.FindByReference(ctx, ref)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, newError(KindNotFound, CodeOrderNotFound, ref)
	}
	if err != nil {
		return nil, wrapError(KindPersistence, CodeOrderLookupFailed, err)
	}
	if order.Status != models.OrderStatusPaid {
		return nil, newError(KindInvalid, CodeOrderNotPaid, string(order.Status))
	}

	chargeID, err := s.resolveCharge(ctx, order)
	if err != nil {
		return nil, wrapError(KindUpstream, CodeRefundFailed, err)
	}
	if chargeID == "" {
		return nil, newError(KindInvalid, CodeMissingChargeID, order.ID)
	}

	refund, err := s.gateway.RefundCharge(ctx, chargeID)
	if err != nil {
		return nil, wrapError(KindUpstream, CodeRefundFailed, err)
	}
	slog.Info("order refunded", "order_id", order.ID, "charge_id", chargeID, "refund_id", refund.ID)

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, models.OrderStatusRefunded); err != nil {
		return nil, wrapError(KindPersistence, CodeOrderUpdateFailed, err)
	}
	if order.StripeChargeID != chargeID {
		if err := s.orderRepo.UpdatePayment(ctx, order.ID, models.PaymentDetails{ChargeID: chargeID}); err != nil {
			slog.Warn("failed to store refunded charge id", "order_id", order.ID, "error", err)
		}
	}

	order.Status = models.OrderStatusRefunded
	order.StripeChargeID = chargeID
	return order, nil
}

// resolveCharge finds the charge to refund: the stored charge id, else the
// latest (or first listed) charge of the payment intent. The intent comes from
// the order when known, otherwise from the checkout session.
func (s *RefundService) resolveCharge(ctx context.Context, order *models.Order) (string, error) {
	if order.StripeChargeID != "" {
		return order.StripeChargeID, nil
	}

	intentID := order.StripePaymentIntentID
	if intentID == "" {
		session, err := s.gateway.GetSession(ctx, order.StripeSessionID)
		if err != nil {
			return "", fmt.Errorf("failed to get session %s: %w", order.StripeSessionID, err)
		}
		intentID = session.PaymentIntentID
	}
	if intentID == "" {
		return "", nil
	}
	return resolveIntentCharge(ctx, s.gateway, intentID)
}
