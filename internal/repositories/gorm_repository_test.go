package repositories_test

import (
	"context"
	"fmt"
	"testing"

	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func paidOrder(sessionID string) *models.Order {
	return &models.Order{
		CustomerName:     "Ada",
		Email:            "ada@example.com",
		PaymentMethod:    models.PaymentMethodStripe,
		Status:           models.OrderStatusPaid,
		AmountTotalCents: 5900,
		Currency:         "cad",
		StripeSessionID:  sessionID,
		Items: []models.OrderItem{
			{ProductName: "Team Hoodie", Size: models.Label("M"), Color: models.Label("Black"), Quantity: 1, UnitPriceCents: 4500, LineTotalCents: 4500},
			{ProductName: "Cap", Quantity: 1, UnitPriceCents: 1400, LineTotalCents: 1400},
		},
	}
}

func TestGORMOrderRepository_CreateWithItemsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(openTestDB(t))

	first := paidOrder("cs_1")
	require.NoError(t, repo.CreateWithItems(ctx, first))

	err := repo.CreateWithItems(ctx, paidOrder("cs_1"))
	assert.ErrorIs(t, err, repositories.ErrOrderExists)

	orders, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, first.ID, orders[0].ID)

	stored, err := repo.GetBySessionID(ctx, "cs_1")
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, "Cap", stored.Items[0].ProductName)
	assert.Nil(t, stored.Items[0].Size)
	assert.Equal(t, "M", *stored.Items[1].Size)
}

func TestGORMOrderRepository_LookupsAndUpdates(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(openTestDB(t))

	order := paidOrder("cs_2")
	require.NoError(t, repo.CreateWithItems(ctx, order))

	byID, err := repo.FindByReference(ctx, order.ID)
	require.NoError(t, err)
	bySession, err := repo.FindByReference(ctx, "cs_2")
	require.NoError(t, err)
	assert.Equal(t, byID.ID, bySession.ID)

	_, err = repo.FindByReference(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	fee, net := int64(201), int64(5699)
	require.NoError(t, repo.UpdatePayment(ctx, order.ID, models.PaymentDetails{ChargeID: "ch_1", FeeCents: &fee, NetCents: &net}))
	require.NoError(t, repo.UpdatePayment(ctx, order.ID, models.PaymentDetails{PaymentIntentID: "pi_1"}))

	stored, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ch_1", stored.StripeChargeID)
	assert.Equal(t, "pi_1", stored.StripePaymentIntentID)
	assert.Equal(t, int64(201), *stored.FeeCents)
	assert.Equal(t, int64(5699), *stored.NetCents)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", models.OrderStatusFulfilled), repositories.ErrNotFound)
}

func TestGORMOrderRepository_ListPaidItems(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(openTestDB(t))

	paid := paidOrder("cs_paid")
	require.NoError(t, repo.CreateWithItems(ctx, paid))
	refunded := paidOrder("cs_refunded")
	require.NoError(t, repo.CreateWithItems(ctx, refunded))
	require.NoError(t, repo.UpdateStatus(ctx, refunded.ID, models.OrderStatusRefunded))

	items, err := repo.ListPaidItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Cap", items[0].ProductName)
	assert.Nil(t, items[0].Size)
	assert.Equal(t, "Team Hoodie", items[1].ProductName)
	assert.Equal(t, "Black", *items[1].Color)
	assert.Equal(t, int64(4500), items[1].LineTotalCents)
}

func TestGORMProductRepository_Catalog(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(openTestDB(t))

	hoodie := &models.Product{Name: "Team Hoodie", Slug: "team-hoodie", Active: true, SortOrder: 1}
	require.NoError(t, repo.Create(ctx, hoodie))
	capProduct := &models.Product{Name: "Cap", Slug: "cap", Active: true, SortOrder: 1}
	require.NoError(t, repo.Create(ctx, capProduct))
	hidden := &models.Product{Name: "Hidden", Slug: "hidden", Active: false}
	require.NoError(t, repo.Create(ctx, hidden))

	medium := &models.ProductVariant{ProductID: hoodie.ID, Size: models.Label("M"), PriceCents: 4500, Active: true}
	require.NoError(t, repo.CreateVariant(ctx, medium))
	large := &models.ProductVariant{ProductID: hoodie.ID, Size: models.Label("L"), PriceCents: 4700, Active: true}
	require.NoError(t, repo.CreateVariant(ctx, large))
	require.NoError(t, repo.DeactivateVariant(ctx, large.ID))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Cap", active[0].Name)
	assert.Equal(t, "Team Hoodie", active[1].Name)
	require.Len(t, active[1].Variants, 1)
	assert.Equal(t, medium.ID, active[1].Variants[0].ID)

	bySlug, err := repo.GetBySlug(ctx, "team-hoodie")
	require.NoError(t, err)
	assert.Len(t, bySlug.Variants, 2)

	variants, err := repo.GetVariantsByIDs(ctx, []string{medium.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, int64(4500), variants[0].PriceCents)

	products, err := repo.GetByIDs(ctx, []string{hoodie.ID, hidden.ID})
	require.NoError(t, err)
	assert.Len(t, products, 2)

	hoodie.Name = "Team Hoodie v2"
	require.NoError(t, repo.Update(ctx, hoodie))
	updated, err := repo.GetByID(ctx, hoodie.ID)
	require.NoError(t, err)
	assert.Equal(t, "Team Hoodie v2", updated.Name)

	assert.ErrorIs(t, repo.Update(ctx, &models.Product{ID: "missing", Name: "x", Slug: "x"}), repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Deactivate(ctx, "missing"), repositories.ErrNotFound)
	_, err = repo.GetBySlug(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMSettingsRepository_DefaultsAndUpsert(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMSettingsRepository(openTestDB(t))

	settings, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.False(t, settings.StoreClosed)

	require.NoError(t, repo.Save(ctx, &models.SiteSettings{StoreClosed: true, StoreClosedMessage: models.Label("Closed for inventory")}))
	require.NoError(t, repo.Save(ctx, &models.SiteSettings{StoreClosed: true, StoreClosedMessage: models.Label("Back Monday")}))

	settings, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.True(t, settings.StoreClosed)
	assert.Equal(t, "Back Monday", settings.ClosedMessage())
}

func TestGORMUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(openTestDB(t))

	user := &models.User{Username: "admin", Email: "admin@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)

	got, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
