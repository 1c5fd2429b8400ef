package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"maintenance-tracker-api/internal/model"
	"maintenance-tracker-api/internal/repository"
	apperrors "maintenance-tracker-api/pkg/errors"
	"maintenance-tracker-api/pkg/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// clockSkew tolerates small differences between client and server clocks.
const clockSkew = 5 * time.Minute

// MaintenanceService records maintenance work and keeps asset schedules current
type MaintenanceService struct {
	store          *repository.Store
	assets         assets
	notify         *Dispatcher
	upcomingWindow time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

// NewMaintenanceService creates a new maintenance service. upcomingWindow is the
// default look-ahead used by Due.
func NewMaintenanceService(store *repository.Store, notify *Dispatcher, upcomingWindow time.Duration, logger *zap.Logger) *MaintenanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceService{
		store:          store,
		assets:         assets{equipment: store.Equipment, peripherals: store.Peripherals},
		notify:         notify,
		upcomingWindow: upcomingWindow,
		logger:         logger.Named("maintenance"),
		now:            time.Now,
	}
}

// Record logs maintenance work on an asset. When the record is the newest for
// the asset, the asset's last and next maintenance dates move forward.
func (s *MaintenanceService) Record(ctx context.Context, m model.MaintenanceRecord) (*model.MaintenanceRecord, error) {
	errs := validation.ValidateMaintenanceInput(&m)
	if !m.PerformedAt.IsZero() && m.PerformedAt.After(s.now().Add(clockSkew)) {
		errs["performed_at"] = "performed at cannot be in the future"
	}
	if err := validationFailed("maintenance record", errs); err != nil {
		return nil, err
	}

	target, err := s.assets.get(ctx, m.AssetKind, m.AssetID)
	if err != nil {
		return nil, err
	}
	if target.Status == model.StatusRetired {
		return nil, apperrors.ConflictError(fmt.Sprintf("%s %s is retired", m.AssetKind, target.AssetTag))
	}

	if m.TicketID != nil {
		if err := s.checkTicket(ctx, *m.TicketID, m.AssetKind, m.AssetID); err != nil {
			return nil, err
		}
	}

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.PerformedAt = m.PerformedAt.UTC().Truncate(time.Microsecond)

	if err := s.store.Maintenance.CreateMaintenanceRecord(ctx, m); err != nil {
		return nil, repoError(err, "maintenance record", "create maintenance record")
	}

	latest, err := s.store.Maintenance.GetLatestMaintenanceForAsset(ctx, m.AssetKind, m.AssetID)
	if err != nil {
		return nil, repoError(err, "maintenance record", "retrieve latest maintenance")
	}
	if latest.ID == m.ID && (target.LastMaintenance == nil || !m.PerformedAt.Before(*target.LastMaintenance)) {
		last := m.PerformedAt
		next := nextMaintenance(&last, nil, target.IntervalDays)
		if err := s.assets.reschedule(ctx, m.AssetKind, m.AssetID, &last, next); err != nil {
			return nil, err
		}
	}

	s.logger.Info("maintenance recorded",
		zap.Stringer("id", m.ID),
		zap.String("asset_kind", string(m.AssetKind)),
		zap.Stringer("asset_id", m.AssetID),
		zap.String("kind", string(m.Kind)))

	return s.Get(ctx, m.ID)
}

func (s *MaintenanceService) checkTicket(ctx context.Context, ticketID uuid.UUID, kind model.AssetKind, assetID uuid.UUID) error {
	t, err := s.store.Tickets.GetTicketByID(ctx, ticketID)
	if errors.Is(err, repository.ErrTicketNotFound) {
		return apperrors.ValidationErrorWithDetails("invalid maintenance record", map[string]string{
			"ticket_id": "linked ticket does not exist",
		})
	}
	if err != nil {
		return repoError(err, "ticket", "retrieve ticket")
	}
	if t.AssetID != nil && (t.AssetKind != kind || *t.AssetID != assetID) {
		return apperrors.ValidationErrorWithDetails("invalid maintenance record", map[string]string{
			"ticket_id": "linked ticket belongs to a different asset",
		})
	}
	return nil
}

// Get retrieves a maintenance record by its ID
func (s *MaintenanceService) Get(ctx context.Context, id uuid.UUID) (*model.MaintenanceRecord, error) {
	m, err := s.store.Maintenance.GetMaintenanceRecordByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "maintenance record", "retrieve maintenance record")
	}
	return m, nil
}

// List retrieves the maintenance log, newest first
func (s *MaintenanceService) List(ctx context.Context, filter repository.MaintenanceFilter, params repository.PaginationParams) (*repository.PaginatedResult[model.MaintenanceRecord], error) {
	if filter.AssetKind != "" && !filter.AssetKind.Valid() {
		return nil, apperrors.ValidationError(fmt.Sprintf("invalid asset kind filter: %s", filter.AssetKind))
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, apperrors.ValidationError(fmt.Sprintf("invalid maintenance kind filter: %s", filter.Kind))
	}
	if filter.Since != nil && filter.Until != nil && !filter.Since.Before(*filter.Until) {
		return nil, apperrors.ValidationError("since must be before until")
	}

	result, err := s.store.Maintenance.ListMaintenanceRecords(ctx, filter, params)
	if err != nil {
		return nil, repoError(err, "maintenance record", "retrieve maintenance records")
	}
	return result, nil
}

// History returns the maintenance log of one asset
func (s *MaintenanceService) History(ctx context.Context, kind model.AssetKind, id uuid.UUID, params repository.PaginationParams) (*repository.PaginatedResult[model.MaintenanceRecord], error) {
	if _, err := s.assets.get(ctx, kind, id); err != nil {
		return nil, err
	}
	return s.List(ctx, repository.MaintenanceFilter{AssetKind: kind, AssetID: &id}, params)
}

// Delete removes a record. If it was the record the asset's schedule was based
// on, the schedule is recomputed from the newest remaining record.
func (s *MaintenanceService) Delete(ctx context.Context, id uuid.UUID) error {
	m, err := s.store.Maintenance.GetMaintenanceRecordByID(ctx, id)
	if err != nil {
		return repoError(err, "maintenance record", "retrieve maintenance record for deletion")
	}

	if err := s.store.Maintenance.DeleteMaintenanceRecord(ctx, id); err != nil {
		return repoError(err, "maintenance record", "delete maintenance record")
	}

	target, err := s.assets.get(ctx, m.AssetKind, m.AssetID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrorCodeNotFound) {
			return nil
		}
		return err
	}
	if target.LastMaintenance == nil || !target.LastMaintenance.Equal(m.PerformedAt) {
		return nil
	}

	var last *time.Time
	latest, err := s.store.Maintenance.GetLatestMaintenanceForAsset(ctx, m.AssetKind, m.AssetID)
	switch {
	case err == nil:
		at := latest.PerformedAt
		last = &at
	case !errors.Is(err, repository.ErrMaintenanceRecordNotFound):
		return repoError(err, "maintenance record", "retrieve latest maintenance")
	}

	next := nextMaintenance(last, target.PurchaseDate, target.IntervalDays)
	if err := s.assets.reschedule(ctx, m.AssetKind, m.AssetID, last, next); err != nil {
		return err
	}

	s.logger.Info("maintenance record deleted, schedule recomputed",
		zap.Stringer("id", id),
		zap.Stringer("asset_id", m.AssetID))

	return nil
}

// Due lists assets that are overdue or due within the given window, soonest first.
// A non-positive window uses the configured default.
func (s *MaintenanceService) Due(ctx context.Context, within time.Duration) ([]model.DueItem, error) {
	if within <= 0 {
		within = s.upcomingWindow
	}
	return s.due(ctx, s.now().Add(within))
}

func (s *MaintenanceService) due(ctx context.Context, before time.Time) ([]model.DueItem, error) {
	var (
		equipment   []model.Equipment
		peripherals []model.Peripheral
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		equipment, err = s.store.Equipment.GetEquipmentDueForMaintenance(gctx, before)
		return err
	})
	g.Go(func() error {
		var err error
		peripherals, err = s.store.Peripherals.GetPeripheralsDueForMaintenance(gctx, before)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, repoError(err, "asset", "retrieve due maintenance")
	}

	now := s.now()
	items := make([]model.DueItem, 0, len(equipment)+len(peripherals))
	for _, e := range equipment {
		items = append(items, dueItem(equipmentAsset(e), now))
	}
	for _, p := range peripherals {
		items = append(items, dueItem(peripheralAsset(p), now))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].NextMaintenance.Before(items[j].NextMaintenance)
	})
	return items, nil
}

func dueItem(a asset, now time.Time) model.DueItem {
	item := model.DueItem{
		AssetKind:       a.Kind,
		AssetID:         a.ID,
		Name:            a.Name,
		AssetTag:        a.AssetTag,
		Location:        a.Location,
		NextMaintenance: *a.NextMaintenance,
	}
	if a.NextMaintenance.Before(now) {
		item.Overdue = true
		item.DaysOverdue = int(now.Sub(*a.NextMaintenance).Hours() / 24)
	}
	return item
}

// NotifyOverdue sends one warning per overdue asset and returns how many were delivered.
func (s *MaintenanceService) NotifyOverdue(ctx context.Context) (int, error) {
	overdue, err := s.due(ctx, s.now())
	if err != nil {
		return 0, err
	}

	var sent int
	var failed []error
	for _, item := range overdue {
		event := Event{
			Type:    EventMaintenanceOverdue,
			Subject: item.AssetTag,
			Message: fmt.Sprintf("Maintenance for %s %s (%s) is %d day(s) overdue",
				item.AssetKind, item.Name, item.AssetTag, item.DaysOverdue),
			Metadata: map[string]string{
				"asset_kind":       string(item.AssetKind),
				"asset_id":         item.AssetID.String(),
				"next_maintenance": item.NextMaintenance.Format(time.RFC3339),
				"days_overdue":     fmt.Sprint(item.DaysOverdue),
			},
		}
		if err := s.notify.Send(ctx, event); err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", item.AssetTag, err))
			continue
		}
		sent++
	}

	s.logger.Info("overdue maintenance notifications sent",
		zap.Int("overdue", len(overdue)),
		zap.Int("sent", sent),
		zap.Int("failed", len(failed)))

	if len(failed) > 0 {
		return sent, apperrors.ExternalServiceError("notification", errors.Join(failed...))
	}
	return sent, nil
}
