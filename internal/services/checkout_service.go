package services

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/payment"
)

// MinimumTotalCents is the smallest aggregate the payment provider accepts.
const MinimumTotalCents = 50

// Customer holds the contact fields collected at checkout.
type Customer struct {
	Name             string `json:"name" validate:"required,max=120"`
	AffiliatedPlayer string `json:"affiliated_player" validate:"required,max=120"`
	AffiliatedGroup  string `json:"affiliated_group" validate:"required,oneof='Tykes - Kindegarden' 'Small Ball Girls (Gr 1-2)' 'Small Ball Boys (Gr 1-2)' 'Jr Mini Girls (Gr 3-4)' 'Jr Mini Boys (Gr 3-4)' 'Mini Girls House (Gr 5-6)' 'Mini Boys House (Gr 5-6)' 'Mini Girls Rep (Gr 5-6)' 'Mini Boys Rep (Gr 5-6)'"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required,max=40"`
	Note             string `json:"note" validate:"omitempty,max=500"`
}

// CheckoutRequest is the client's intent: cart lines plus contact details.
// Client-side prices are carried but never used for charging.
type CheckoutRequest struct {
	Items    []models.CartItem `json:"items" validate:"required,min=1,max=50,dive"`
	Customer Customer          `json:"customer" validate:"required"`
}

// CheckoutResult is the hosted payment page to redirect to.
type CheckoutResult struct {
	URL        string `json:"url"`
	SessionID  string `json:"-"`
	TotalCents int64  `json:"-"`
}

// CheckoutService re-prices carts from the catalog and opens payment sessions.
type CheckoutService struct {
	productRepo  repositories.ProductRepository
	settingsRepo repositories.SettingsRepository
	gateway      PaymentGateway
	currency     string
	siteURL      string
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(productRepo repositories.ProductRepository, settingsRepo repositories.SettingsRepository, gateway PaymentGateway, currency, siteURL string) *CheckoutService {
	return &CheckoutService{
		productRepo:  productRepo,
		settingsRepo: settingsRepo,
		gateway:      gateway,
		currency:     currency,
		siteURL:      siteURL,
	}
}

// Checkout validates the request against the catalog and creates a hosted
// checkout session priced from stored variant prices.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, newError(KindInvalid, CodeInvalidPayload, "at least one item is required")
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, wrapError(KindPersistence, CodeSettingsFetchFailed, err)
	}
	if settings.StoreClosed {
		return nil, newError(KindForbidden, CodeStoreClosed, settings.ClosedMessage())
	}

	lineItems, total, err := s.price(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	if total < MinimumTotalCents {
		return nil, newError(KindInvalid, CodeMinimumTotalNotMet,
			fmt.Sprintf("order total %d is below the minimum of %d", total, MinimumTotalCents))
	}

	metadata := map[string]string{
		"customer_name":     req.Customer.Name,
		"affiliated_player": req.Customer.AffiliatedPlayer,
		"affiliated_group":  req.Customer.AffiliatedGroup,
		"phone":             req.Customer.Phone,
	}
	if req.Customer.Note != "" {
		metadata["note"] = req.Customer.Note
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.SessionRequest{
		LineItems:     lineItems,
		Currency:      s.currency,
		CustomerEmail: req.Customer.Email,
		Metadata:      metadata,
		SuccessURL:    s.siteURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.siteURL + "/checkout",
	})
	if err != nil {
		return nil, wrapError(KindUpstream, CodeSessionCreateFailed, err)
	}

	return &CheckoutResult{URL: session.URL, SessionID: session.ID, TotalCents: total}, nil
}

// price builds provider line items from authoritative catalog data and returns
// their total. Client-claimed prices are ignored; claimed labels must agree
// with the stored variant.
func (s *CheckoutService) price(ctx context.Context, items []models.CartItem) ([]payment.LineItemRequest, int64, error) {
	variantIDs := uniqueStrings(len(items), func(i int) string { return items[i].VariantID })
	variants, err := s.productRepo.GetVariantsByIDs(ctx, variantIDs)
	if err != nil {
		return nil, 0, wrapError(KindPersistence, CodeVariantFetchFailed, err)
	}
	variantByID := make(map[string]models.ProductVariant, len(variants))
	for _, v := range variants {
		variantByID[v.ID] = v
	}

	productIDs := uniqueStrings(len(variants), func(i int) string { return variants[i].ProductID })
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, 0, wrapError(KindPersistence, CodeProductFetchFailed, err)
	}
	productByID := make(map[string]models.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	lineItems := make([]payment.LineItemRequest, 0, len(items))
	var total int64
	for _, item := range items {
		v, ok := variantByID[item.VariantID]
		if !ok || !v.Active {
			return nil, 0, newError(KindInvalid, CodeInvalidVariant, item.VariantID)
		}
		p, ok := productByID[v.ProductID]
		if !ok || !p.Active {
			return nil, 0, newError(KindInvalid, CodeInvalidVariant, item.VariantID)
		}
		if v.PriceCents <= 0 {
			return nil, 0, newError(KindInvalid, CodeInvalidPrice, item.VariantID)
		}
		if models.LabelsConflict(item.Size, v.Size) {
			return nil, 0, newError(KindInvalid, CodeSizeMismatch, item.VariantID)
		}
		if models.LabelsConflict(item.Color, v.Color) {
			return nil, 0, newError(KindInvalid, CodeColorMismatch, item.VariantID)
		}
		if item.Quantity < 1 {
			return nil, 0, newError(KindInvalid, CodeInvalidPayload, "quantity must be at least 1")
		}

		lineItems = append(lineItems, payment.LineItemRequest{
			Name:       p.Name,
			UnitAmount: v.PriceCents,
			Quantity:   item.Quantity,
			Metadata: map[string]string{
				"variantId": v.ID,
				"size":      labelOrEmpty(v.Size),
				"color":     labelOrEmpty(v.Color),
				"slug":      p.Slug,
			},
		})
		total += v.PriceCents * item.Quantity
	}
	return lineItems, total, nil
}

func uniqueStrings(n int, at func(int) string) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s := at(i)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func labelOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
