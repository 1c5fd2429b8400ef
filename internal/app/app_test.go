package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"maintenance-tracker-api/internal/config"
	"maintenance-tracker-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(seed bool) *config.Config {
	return &config.Config{
		Store: config.StoreConfig{Provider: config.ProviderMemory, Seed: seed},
		AI:    config.AIConfig{Enabled: true, MaxHistory: 10, MaxSuggestions: 5},
		Maintenance: config.MaintenanceConfig{
			DefaultIntervalDays: 180,
			UpcomingWindow:      7 * 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			RateLimitRPS:   10,
			RateLimitBurst: 10,
			RequestTimeout: 5 * time.Second,
		},
	}
}

func TestOpenStore_MemorySeeded(t *testing.T) {
	store, db, err := OpenStore(context.Background(), memoryConfig(true), nil)
	require.NoError(t, err)
	assert.Nil(t, db)

	result, err := store.Equipment.ListEquipment(context.Background(), repository.EquipmentFilter{}, repository.PaginationParams{})
	require.NoError(t, err)
	assert.Positive(t, result.TotalCount)
}

func TestOpenStore_UnknownProvider(t *testing.T) {
	cfg := memoryConfig(false)
	cfg.Store.Provider = "dynamodb"

	_, _, err := OpenStore(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestNew_WithoutAPIKeyDisablesSuggestions(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(false), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.Suggester.Enabled())

	rr := httptest.NewRecorder()
	a.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHealthChecks_NotifierOnlyWhenConfigured(t *testing.T) {
	cfg := memoryConfig(false)
	a := Build(cfg, repository.NewMemoryStore(), NewNotifier(cfg, nil), nil, nil)
	defer a.Close()

	checks := a.healthChecks()
	assert.Contains(t, checks, "store")
	assert.NotContains(t, checks, "notifier")
	assert.NoError(t, checks["store"](context.Background()))
}
