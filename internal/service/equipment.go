package service

import (
	"context"
	"fmt"

	"maintenance-tracker-api/internal/model"
	"maintenance-tracker-api/internal/repository"
	apperrors "maintenance-tracker-api/pkg/errors"
	"maintenance-tracker-api/pkg/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EquipmentService handles business logic for computers
type EquipmentService struct {
	store           *repository.Store
	defaultInterval int
	logger          *zap.Logger
}

// NewEquipmentService creates a new equipment service. defaultInterval is applied
// to computers created without a maintenance interval.
func NewEquipmentService(store *repository.Store, defaultInterval int, logger *zap.Logger) *EquipmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EquipmentService{
		store:           store,
		defaultInterval: defaultInterval,
		logger:          logger.Named("equipment"),
	}
}

// Create registers a new computer
func (s *EquipmentService) Create(ctx context.Context, e model.Equipment) (*model.Equipment, error) {
	if err := validationFailed("equipment", validation.ValidateEquipmentInput(&e)); err != nil {
		return nil, err
	}

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = model.StatusActive
	}
	if e.MaintenanceIntervalDays == 0 {
		e.MaintenanceIntervalDays = s.defaultInterval
	}
	if e.NextMaintenance == nil {
		e.NextMaintenance = nextMaintenance(e.LastMaintenance, e.PurchaseDate, e.MaintenanceIntervalDays)
	}

	if err := s.store.Equipment.CreateEquipment(ctx, e); err != nil {
		return nil, repoError(err, "equipment", "create equipment")
	}

	s.logger.Info("equipment created",
		zap.Stringer("id", e.ID),
		zap.String("asset_tag", e.AssetTag))

	return s.Get(ctx, e.ID)
}

// Get retrieves a computer by its ID
func (s *EquipmentService) Get(ctx context.Context, id uuid.UUID) (*model.Equipment, error) {
	e, err := s.store.Equipment.GetEquipmentByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "equipment", "retrieve equipment")
	}
	return e, nil
}

// List retrieves computers with filtering and pagination
func (s *EquipmentService) List(ctx context.Context, filter repository.EquipmentFilter, params repository.PaginationParams) (*repository.PaginatedResult[model.Equipment], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.ValidationError(fmt.Sprintf("invalid status filter: %s", filter.Status))
	}

	result, err := s.store.Equipment.ListEquipment(ctx, filter, params)
	if err != nil {
		return nil, repoError(err, "equipment", "retrieve equipment")
	}

	s.logger.Debug("listed equipment",
		zap.Int("count", len(result.Items)),
		zap.Int("total", result.TotalCount),
		zap.Int("offset", params.Offset))

	return result, nil
}

// Update replaces the editable fields of a piece of equipment. Omitted status,
// interval and maintenance dates keep their current values. Next maintenance is
// recomputed only when the last maintenance, purchase date or interval changes.
func (s *EquipmentService) Update(ctx context.Context, id uuid.UUID, updates model.Equipment) (*model.Equipment, error) {
	existing, err := s.store.Equipment.GetEquipmentByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "equipment", "retrieve equipment for update")
	}

	if err := validationFailed("equipment", validation.ValidateEquipmentInput(&updates)); err != nil {
		return nil, err
	}

	rescheduled := timeChanged(updates.LastMaintenance, existing.LastMaintenance) ||
		timeChanged(updates.PurchaseDate, existing.PurchaseDate) ||
		intervalChanged(updates.MaintenanceIntervalDays, existing.MaintenanceIntervalDays)

	updates.ID = id
	updates.CreatedAt = existing.CreatedAt
	if updates.Status == "" {
		updates.Status = existing.Status
	}
	if updates.MaintenanceIntervalDays == 0 {
		updates.MaintenanceIntervalDays = existing.MaintenanceIntervalDays
	}
	if updates.LastMaintenance == nil {
		updates.LastMaintenance = existing.LastMaintenance
	}
	if updates.NextMaintenance == nil {
		updates.NextMaintenance = existing.NextMaintenance
		if next := nextMaintenance(updates.LastMaintenance, updates.PurchaseDate, updates.MaintenanceIntervalDays); (rescheduled || existing.NextMaintenance == nil) && next != nil {
			updates.NextMaintenance = next
		}
	}

	if err := s.store.Equipment.UpdateEquipment(ctx, updates); err != nil {
		return nil, repoError(err, "equipment", "update equipment")
	}

	if existing.Status != updates.Status {
		s.logger.Info("equipment status changed",
			zap.Stringer("id", id),
			zap.String("from", string(existing.Status)),
			zap.String("to", string(updates.Status)))
	}

	return s.Get(ctx, id)
}

// Delete removes equipment together with its maintenance history.
// Connected peripherals are detached. Equipment with open tickets cannot be deleted.
func (s *EquipmentService) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := s.store.Equipment.GetEquipmentByID(ctx, id)
	if err != nil {
		return repoError(err, "equipment", "retrieve equipment for deletion")
	}

	open, err := countOpenTickets(ctx, s.store.Tickets, model.AssetKindEquipment, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return apperrors.ConflictError(fmt.Sprintf("equipment %s has %d open ticket(s)", e.AssetTag, open)).
			WithDetail("open_tickets", fmt.Sprint(open))
	}

	detached, err := s.store.Peripherals.DetachPeripheralsFromEquipment(ctx, id)
	if err != nil {
		return repoError(err, "peripheral", "detach peripherals")
	}
	removed, err := s.store.Maintenance.DeleteMaintenanceForAsset(ctx, model.AssetKindEquipment, id)
	if err != nil {
		return repoError(err, "maintenance record", "delete maintenance history")
	}
	if err := s.store.Equipment.DeleteEquipment(ctx, id); err != nil {
		return repoError(err, "equipment", "delete equipment")
	}

	s.logger.Info("equipment deleted",
		zap.Stringer("id", id),
		zap.String("asset_tag", e.AssetTag),
		zap.Int64("peripherals_detached", detached),
		zap.Int64("maintenance_records_removed", removed))

	return nil
}
