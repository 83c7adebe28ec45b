package services_test

import (
	"context"
	"testing"

	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_Update(t *testing.T) {
	ctx := context.Background()
	service := services.NewSettingsService(repositories.NewMockSettingsRepository())

	current, err := service.Get(ctx)
	require.NoError(t, err)
	assert.False(t, current.StoreClosed)

	msg := "  Back soon  "
	_, err = service.Update(ctx, services.SettingsUpdate{StoreClosed: true, StoreClosedMessage: &msg})
	require.NoError(t, err)

	current, err = service.Get(ctx)
	require.NoError(t, err)
	assert.True(t, current.StoreClosed)
	assert.Equal(t, "Back soon", current.ClosedMessage())

	blank := "   "
	_, err = service.Update(ctx, services.SettingsUpdate{StoreClosed: true, StoreClosedMessage: &blank})
	require.NoError(t, err)
	current, _ = service.Get(ctx)
	assert.Nil(t, current.StoreClosedMessage)
	assert.Equal(t, "The store is currently closed.", current.ClosedMessage())
}
