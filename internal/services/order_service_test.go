package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func completedSession() *payment.Session {
	return &payment.Session{
		ID:              "cs_test_1",
		AmountTotal:     5900,
		Currency:        "cad",
		Email:           "ada@example.com",
		Livemode:        false,
		PaymentStatus:   payment.PaymentStatusPaid,
		PaymentIntentID: "pi_1",
		Metadata: map[string]string{
			"customer_name":     "Ada Lovelace",
			"affiliated_player": "Jo Lovelace",
			"affiliated_group":  "Mini Boys Rep (Gr 5-6)",
			"phone":             "555-0100",
		},
	}
}

func sessionLineItems() []payment.LineItem {
	return []payment.LineItem{
		{Description: "Team Hoodie", Quantity: 1, UnitAmount: 4500, AmountTotal: 4500,
			Metadata: map[string]string{"variantId": "v1", "size": "M", "color": "Black", "slug": "team-hoodie"}},
		{Description: "Cap", Quantity: 1, UnitAmount: 1400, AmountTotal: 1400,
			Metadata: map[string]string{"variantId": "v2", "size": "", "color": "", "slug": "cap"}},
	}
}

func completedEvent() *payment.Event {
	return &payment.Event{ID: "evt_1", Type: payment.EventCheckoutSessionCompleted, Session: completedSession()}
}

func expectEnrichment(gw *MockGateway) {
	gw.On("GetPaymentIntent", mock.Anything, "pi_1").Return(&payment.PaymentIntent{ID: "pi_1", LatestChargeID: "ch_1"}, nil)
	gw.On("GetCharge", mock.Anything, "ch_1").Return(&payment.Charge{ID: "ch_1", Amount: 5900, Fee: int64Ptr(201), Net: int64Ptr(5699)}, nil)
}

func TestOrderService_HandleWebhookCreatesOrder(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockOrderRepository()
	gw := new(MockGateway)
	notifier := new(MockNotifier)
	service := services.NewOrderService(repo, gw, notifier)

	gw.On("ParseWebhookEvent", []byte("payload"), "sig").Return(completedEvent(), nil)
	gw.On("ListLineItems", mock.Anything, "cs_test_1").Return(sessionLineItems(), nil)
	expectEnrichment(gw)
	notifier.On("OrderPaid", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()

	result, err := service.HandleWebhook(ctx, []byte("payload"), "sig")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Created)

	order, err := repo.GetBySessionID(ctx, "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, result.OrderID, order.ID)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, int64(5900), order.AmountTotalCents)
	assert.True(t, order.IsTest)
	assert.Equal(t, "Ada Lovelace", order.CustomerName)
	assert.Equal(t, "Jo Lovelace", order.AffiliatedPlayer)
	assert.Equal(t, "Mini Boys Rep (Gr 5-6)", order.AffiliatedGroup)
	assert.Equal(t, "ada@example.com", order.Email)
	assert.NotNil(t, order.PaidAt)
	assert.Equal(t, "ch_1", order.StripeChargeID)
	assert.Equal(t, int64Ptr(201), order.FeeCents)
	assert.Equal(t, int64Ptr(5699), order.NetCents)

	require.Len(t, order.Items, 2)
	var sum int64
	for _, it := range order.Items {
		sum += it.LineTotalCents
	}
	assert.Equal(t, order.AmountTotalCents, sum)

	sent := notifier.Calls[0].Arguments.Get(1).(*models.Order)
	assert.Len(t, sent.Items, 2)
	notifier.AssertExpectations(t)
}

func TestOrderService_HandleWebhookIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockOrderRepository()
	gw := new(MockGateway)
	notifier := new(MockNotifier)
	service := services.NewOrderService(repo, gw, notifier)

	gw.On("ParseWebhookEvent", mock.Anything, mock.Anything).Return(completedEvent(), nil)
	gw.On("ListLineItems", mock.Anything, "cs_test_1").Return(sessionLineItems(), nil)
	expectEnrichment(gw)
	notifier.On("OrderPaid", mock.Anything, mock.Anything).Return(nil)

	first, err := service.HandleWebhook(ctx, []byte("payload"), "sig")
	require.NoError(t, err)
	second, err := service.HandleWebhook(ctx, []byte("payload"), "sig")
	require.NoError(t, err)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, first.OrderID, second.OrderID)

	orders, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	notifier.AssertNumberOfCalls(t, "OrderPaid", 1)
	gw.AssertNumberOfCalls(t, "GetPaymentIntent", 1)
}

func TestOrderService_ConcurrentDeliveriesCreateOneOrder(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockOrderRepository()
	gw := new(MockGateway)
	notifier := new(MockNotifier)
	service := services.NewOrderService(repo, gw, notifier)

	gw.On("ParseWebhookEvent", mock.Anything, mock.Anything).Return(completedEvent(), nil)
	gw.On("ListLineItems", mock.Anything, "cs_test_1").Return(sessionLineItems(), nil)
	expectEnrichment(gw)
	notifier.On("OrderPaid", mock.Anything, mock.Anything).Return(nil)

	const deliveries = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = map[string]struct{}{}
	)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := service.HandleWebhook(ctx, []byte("payload"), "sig")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if result.Created {
				created++
			}
			ids[result.OrderID] = struct{}{}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1)
	notifier.AssertNumberOfCalls(t, "OrderPaid", 1)
}

func TestOrderService_HandleWebhookRejectsBadSignature(t *testing.T) {
	repo := repositories.NewMockOrderRepository()
	gw := new(MockGateway)
	service := services.NewOrderService(repo, gw, nil)

	gw.On("ParseWebhookEvent", mock.Anything, "forged").Return(nil, payment.ErrInvalidSignature)

	result, err := service.HandleWebhook(context.Background(), []byte("payload"), "forged")

	assert.Nil(t, result)
	assertCode(t, err, services.CodeInvalidSignature)
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	gw.AssertNotCalled(t, "ListLineItems", mock.Anything, mock.Anything)
	orders, _ := repo.List(context.Background(), "")
	assert.Empty(t, orders)
}

func TestOrderService_HandleWebhookIgnoresOtherEvents(t *testing.T) {
	gw := new(MockGateway)
	service := services.NewOrderService(repositories.NewMockOrderRepository(), gw, nil)

	gw.On("ParseWebhookEvent", mock.Anything, mock.Anything).
		Return(&payment.Event{ID: "evt_2", Type: "payment_intent.created"}, nil)

	result, err := service.HandleWebhook(context.Background(), []byte("{}"), "sig")

	assert.NoError(t, err)
	assert.Nil(t, result)
	gw.AssertNotCalled(t, "ListLineItems", mock.Anything, mock.Anything)
}

func TestOrderService_LineItemFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockOrderRepository()
	gw := new(MockGateway)
	service := services.NewOrderService(repo, gw, nil)

	gw.On("ParseWebhookEvent", mock.Anything, mock.Anything).Return(completedEvent(), nil)
	gw.On("ListLineItems", mock.Anything, "cs_test_1").Return(nil, errors.New("timeout"))

	_, err := service.HandleWebhook(ctx, []byte("payload"), "sig")

	assertCode(t, err, services.CodeLineItemsFetchFailed)
	_, lookupErr := repo.GetBySessionID(ctx, "cs_test_1")
	assert.ErrorIs(t, lookupErr, repositories.ErrNotFound)
}

type failingOrderRepository struct {
	*repositories.MockOrderRepository
}

func (r failingOrderRepository) CreateWithItems(context.Context, *models.Order) error {
	return errors.New("connection reset")
}

func TestOrderService_InsertFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	repo := failingOrderRepository{repositories.NewMockOrderRepository()}
	gw := new(MockGateway)
	notifier := new(MockNotifier)
	service := services.NewOrderService(repo, gw, notifier)

	gw.On("ParseWebhookEvent", mock.Anything, mock.Anything).Return(completedEvent(), nil)
	gw.On("ListLineItems", mock.Anything, "cs_test_1").Return(sessionLineItems(), nil)

	_, err := service.HandleWebhook(ctx, []byte("payload"), "sig")

	assertCode(t, err, services.CodeOrderInsertFailed)
	se, _ := services.AsServiceError(err)
	assert.Equal(t, services.KindPersistence, se.Kind)
	gw.AssertNotCalled(t, "GetPaymentIntent", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "OrderPaid", mock.Anything, mock.Anything)
}

func TestOrderService_BestEffortFailuresDoNotFailReconciliation(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockOrderRepository()
	gw := new(MockGateway)
	notifier := new(MockNotifier)
	service := services.NewOrderService(repo, gw, notifier)

	gw.On("ParseWebhookEvent", mock.Anything, mock.Anything).Return(completedEvent(), nil)
	gw.On("ListLineItems", mock.Anything, "cs_test_1").Return(sessionLineItems(), nil)
	gw.On("GetPaymentIntent", mock.Anything, "pi_1").Return(nil, errors.New("permission denied"))
	notifier.On("OrderPaid", mock.Anything, mock.Anything).Return(errors.New("smtp unavailable"))

	result, err := service.HandleWebhook(ctx, []byte("payload"), "sig")

	require.NoError(t, err)
	assert.True(t, result.Created)
	order, err := repo.GetByID(ctx, result.OrderID)
	require.NoError(t, err)
	assert.Empty(t, order.StripeChargeID)
	assert.Nil(t, order.FeeCents)
}

func TestOrderService_EnrichmentFallsBackToListedCharge(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockOrderRepository()
	gw := new(MockGateway)
	service := services.NewOrderService(repo, gw, nil)

	gw.On("ParseWebhookEvent", mock.Anything, mock.Anything).Return(completedEvent(), nil)
	gw.On("ListLineItems", mock.Anything, "cs_test_1").Return(sessionLineItems(), nil)
	gw.On("GetPaymentIntent", mock.Anything, "pi_1").Return(&payment.PaymentIntent{ID: "pi_1"}, nil)
	gw.On("ListChargeIDs", mock.Anything, "pi_1", 1).Return([]string{"ch_listed"}, nil)
	gw.On("GetCharge", mock.Anything, "ch_listed").Return(&payment.Charge{ID: "ch_listed"}, nil)

	result, err := service.HandleWebhook(ctx, []byte("payload"), "sig")
	require.NoError(t, err)

	order, err := repo.GetByID(ctx, result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "ch_listed", order.StripeChargeID)
	assert.Nil(t, order.FeeCents)
}

func TestOrderService_Backfill(t *testing.T) {
	ctx := context.Background()

	t.Run("missing session id", func(t *testing.T) {
		service := services.NewOrderService(repositories.NewMockOrderRepository(), new(MockGateway), nil)
		_, err := service.Backfill(ctx, "")
		assertCode(t, err, services.CodeMissingSessionID)
	})

	t.Run("provider failure", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("GetSession", mock.Anything, "cs_x").Return(nil, errors.New("no such session"))
		service := services.NewOrderService(repositories.NewMockOrderRepository(), gw, nil)

		_, err := service.Backfill(ctx, "cs_x")

		assertCode(t, err, services.CodeBackfillFailed)
		assert.Contains(t, err.Error(), "no such session")
	})

	t.Run("session not paid", func(t *testing.T) {
		gw := new(MockGateway)
		unpaid := completedSession()
		unpaid.PaymentStatus = "unpaid"
		gw.On("GetSession", mock.Anything, "cs_test_1").Return(unpaid, nil)
		service := services.NewOrderService(repositories.NewMockOrderRepository(), gw, nil)

		_, err := service.Backfill(ctx, "cs_test_1")

		assertCode(t, err, services.CodeSessionNotPaid)
		gw.AssertNotCalled(t, "ListLineItems", mock.Anything, mock.Anything)
	})

	t.Run("recovers then reports already present", func(t *testing.T) {
		repo := repositories.NewMockOrderRepository()
		gw := new(MockGateway)
		notifier := new(MockNotifier)
		service := services.NewOrderService(repo, gw, notifier)

		gw.On("GetSession", mock.Anything, "cs_test_1").Return(completedSession(), nil)
		gw.On("ListLineItems", mock.Anything, "cs_test_1").Return(sessionLineItems(), nil)
		expectEnrichment(gw)
		notifier.On("OrderPaid", mock.Anything, mock.Anything).Return(nil).Once()

		first, err := service.Backfill(ctx, "cs_test_1")
		require.NoError(t, err)
		assert.True(t, first.Created)

		second, err := service.Backfill(ctx, "cs_test_1")
		require.NoError(t, err)
		assert.False(t, second.Created)
		assert.Equal(t, first.OrderID, second.OrderID)

		gw.AssertNumberOfCalls(t, "ListLineItems", 1)
		notifier.AssertExpectations(t)
	})
}

func TestBuildOrder(t *testing.T) {
	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session := completedSession()
	session.Livemode = true
	session.Metadata["note"] = "Gift"

	order := services.BuildOrder(session, []payment.LineItem{
		{Description: "", Quantity: 0, UnitAmount: 700},
		{Description: "Team Hoodie", Quantity: 2, UnitAmount: 4500, Metadata: map[string]string{"size": "L", "slug": "team-hoodie"}},
	}, paidAt)

	assert.False(t, order.IsTest)
	assert.Equal(t, "Gift", order.Note)
	assert.Equal(t, "Jo Lovelace", order.AffiliatedPlayer)
	assert.Equal(t, "Mini Boys Rep (Gr 5-6)", order.AffiliatedGroup)
	assert.Equal(t, models.PaymentMethodStripe, order.PaymentMethod)
	assert.Equal(t, paidAt, *order.PaidAt)
	require.Len(t, order.Items, 2)

	assert.Equal(t, "Item", order.Items[0].ProductName)
	assert.Equal(t, int64(1), order.Items[0].Quantity)
	assert.Equal(t, int64(700), order.Items[0].LineTotalCents)
	assert.Nil(t, order.Items[0].Size)
	assert.Nil(t, order.Items[0].ProductSlug)

	assert.Equal(t, int64(9000), order.Items[1].LineTotalCents)
	assert.Equal(t, "L", *order.Items[1].Size)
	assert.Nil(t, order.Items[1].Color)
	assert.Equal(t, "team-hoodie", *order.Items[1].ProductSlug)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockOrderRepository()
	service := services.NewOrderService(repo, new(MockGateway), nil)

	order := &models.Order{StripeSessionID: "cs_a", Status: models.OrderStatusPaid}
	require.NoError(t, repo.CreateWithItems(ctx, order))

	updated, err := service.UpdateStatus(ctx, order.ID, models.OrderStatusFulfilled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusFulfilled, updated.Status)

	_, err = service.UpdateStatus(ctx, order.ID, models.OrderStatusRefunded)
	assertCode(t, err, services.CodeInvalidStatus)

	_, err = service.UpdateStatus(ctx, "cs_missing", models.OrderStatusPaid)
	assertCode(t, err, services.CodeOrderNotFound)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, models.OrderStatusRefunded))
	_, err = service.UpdateStatus(ctx, "cs_a", models.OrderStatusPaid)
	assertCode(t, err, services.CodeInvalidStatus)
}

func TestOrderService_ListOrdersFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockOrderRepository()
	service := services.NewOrderService(repo, new(MockGateway), nil)

	require.NoError(t, repo.CreateWithItems(ctx, &models.Order{StripeSessionID: "cs_paid", Status: models.OrderStatusPaid}))
	require.NoError(t, repo.CreateWithItems(ctx, &models.Order{StripeSessionID: "cs_done", Status: models.OrderStatusFulfilled}))

	paid, err := service.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "cs_paid", paid[0].StripeSessionID)

	fulfilled, err := service.ListOrders(ctx, "fulfilled")
	require.NoError(t, err)
	require.Len(t, fulfilled, 1)
	assert.Equal(t, "cs_done", fulfilled[0].StripeSessionID)

	all, err := service.ListOrders(ctx, services.ListOrderStatusAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = service.ListOrders(ctx, "shipped")
	assertCode(t, err, services.CodeInvalidStatus)
}
