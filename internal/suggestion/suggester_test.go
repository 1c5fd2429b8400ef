package suggestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"maintenance-tracker-api/internal/model"
	"maintenance-tracker-api/internal/repository"
	apperrors "maintenance-tracker-api/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) (*repository.Store, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	id := uuid.New()

	require.NoError(t, store.Equipment.CreateEquipment(ctx, model.Equipment{
		ID: id, Name: "Lab Workstation", AssetTag: "PC-7", Status: model.StatusActive,
	}))
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Maintenance.CreateMaintenanceRecord(ctx, model.MaintenanceRecord{
			ID:          uuid.New(),
			AssetKind:   model.AssetKindEquipment,
			AssetID:     id,
			Kind:        model.MaintenancePreventive,
			PerformedAt: time.Date(2025, time.Month(i+1), 10, 0, 0, 0, 0, time.UTC),
			Technician:  "Sam Okafor",
			Description: "Quarterly check",
		}))
	}
	require.NoError(t, store.Tickets.CreateTicket(ctx, model.Ticket{
		ID: uuid.New(), Title: "Fan noise", AssetKind: model.AssetKindEquipment, AssetID: &id,
		Priority: model.PriorityLow, Status: model.TicketOpen,
	}))
	return store, id
}

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestHistoryCollector_Collect(t *testing.T) {
	store, id := seededStore(t)

	h, err := NewHistoryCollector(store, 2).Collect(context.Background(), model.AssetKindEquipment, id)
	require.NoError(t, err)

	assert.Equal(t, "Lab Workstation", h.Name())
	assert.Equal(t, id, h.AssetID())
	assert.Nil(t, h.Peripheral)
	require.Len(t, h.Maintenance, 2)
	assert.Equal(t, 3, h.MaintenanceTotal)
	assert.Equal(t, time.March, h.Maintenance[0].PerformedAt.Month())
	require.Len(t, h.Tickets, 1)
}

func TestHistoryCollector_Errors(t *testing.T) {
	store, id := seededStore(t)
	c := NewHistoryCollector(store, 10)

	_, err := c.Collect(context.Background(), model.AssetKindPeripheral, id)
	assertCode(t, err, apperrors.ErrorCodeNotFound)

	_, err = c.Collect(context.Background(), model.AssetKind("vehicle"), id)
	assertCode(t, err, apperrors.ErrorCodeValidation)
}

func TestSuggester_Suggest(t *testing.T) {
	store, id := seededStore(t)
	var prompt string
	gen := GeneratorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return "Recommendations:\n- Clean the dust filters\n- Schedule a disk health check\n- Clean the dust filters", nil
	})

	s := NewSuggester(NewHistoryCollector(store, 10), gen, Options{Model: "test-model", MaxSuggestions: 4}, nil)
	got, err := s.Suggest(context.Background(), model.AssetKindEquipment, id)
	require.NoError(t, err)

	assert.Equal(t, []string{"Clean the dust filters", "Schedule a disk health check"}, got.Items)
	assert.Equal(t, "Lab Workstation", got.AssetName)
	assert.Equal(t, id, got.AssetID)
	assert.Equal(t, model.AssetKindEquipment, got.AssetKind)
	assert.Equal(t, "test-model", got.Model)
	assert.Contains(t, prompt, "- Asset tag: PC-7\n")
	assert.Contains(t, prompt, "at most 4 short")
}

func TestSuggester_Failures(t *testing.T) {
	store, id := seededStore(t)
	collector := NewHistoryCollector(store, 10)
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		s := NewSuggester(collector, nil, Options{}, nil)
		assert.False(t, s.Enabled())
		_, err := s.Suggest(ctx, model.AssetKindEquipment, id)
		assertCode(t, err, apperrors.ErrorCodeServiceUnavailable)
	})

	t.Run("unknown asset", func(t *testing.T) {
		called := false
		s := NewSuggester(collector, GeneratorFunc(func(context.Context, string) (string, error) {
			called = true
			return "- x", nil
		}), Options{}, nil)
		_, err := s.Suggest(ctx, model.AssetKindEquipment, uuid.New())
		assertCode(t, err, apperrors.ErrorCodeNotFound)
		assert.False(t, called)
	})

	t.Run("generator error", func(t *testing.T) {
		s := NewSuggester(collector, GeneratorFunc(func(context.Context, string) (string, error) {
			return "", errors.New("quota exceeded")
		}), Options{}, nil)
		_, err := s.Suggest(ctx, model.AssetKindEquipment, id)
		assertCode(t, err, apperrors.ErrorCodeExternalService)
	})

	t.Run("nothing parseable", func(t *testing.T) {
		s := NewSuggester(collector, GeneratorFunc(func(context.Context, string) (string, error) {
			return "## Notes:\n", nil
		}), Options{}, nil)
		_, err := s.Suggest(ctx, model.AssetKindEquipment, id)
		assertCode(t, err, apperrors.ErrorCodeExternalService)
	})

	t.Run("timeout", func(t *testing.T) {
		s := NewSuggester(collector, GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}), Options{Timeout: 10 * time.Millisecond}, nil)
		_, err := s.Suggest(ctx, model.AssetKindEquipment, id)
		assertCode(t, err, apperrors.ErrorCodeTimeout)
	})
}
