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

// PeripheralService handles business logic for printers, scanners and other devices
type PeripheralService struct {
	store           *repository.Store
	defaultInterval int
	logger          *zap.Logger
}

// NewPeripheralService creates a new peripheral service
func NewPeripheralService(store *repository.Store, defaultInterval int, logger *zap.Logger) *PeripheralService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeripheralService{
		store:           store,
		defaultInterval: defaultInterval,
		logger:          logger.Named("peripherals"),
	}
}

func (s *PeripheralService) checkEquipment(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := s.store.Equipment.GetEquipmentByID(ctx, *id)
	if err == nil {
		return nil
	}
	appErr := repoError(err, "equipment", "retrieve equipment")
	if apperrors.IsCode(appErr, apperrors.ErrorCodeNotFound) {
		return apperrors.ValidationErrorWithDetails("invalid peripheral", map[string]string{
			"equipment_id": "connected equipment does not exist",
		})
	}
	return appErr
}

// Create registers a new peripheral
func (s *PeripheralService) Create(ctx context.Context, p model.Peripheral) (*model.Peripheral, error) {
	if err := validationFailed("peripheral", validation.ValidatePeripheralInput(&p)); err != nil {
		return nil, err
	}
	if err := s.checkEquipment(ctx, p.EquipmentID); err != nil {
		return nil, err
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = model.StatusActive
	}
	if p.MaintenanceIntervalDays == 0 {
		p.MaintenanceIntervalDays = s.defaultInterval
	}
	if p.NextMaintenance == nil {
		p.NextMaintenance = nextMaintenance(p.LastMaintenance, nil, p.MaintenanceIntervalDays)
	}

	if err := s.store.Peripherals.CreatePeripheral(ctx, p); err != nil {
		return nil, repoError(err, "peripheral", "create peripheral")
	}

	s.logger.Info("peripheral created",
		zap.Stringer("id", p.ID),
		zap.String("type", string(p.Type)),
		zap.String("asset_tag", p.AssetTag))

	return s.Get(ctx, p.ID)
}

// Get retrieves a peripheral by its ID
func (s *PeripheralService) Get(ctx context.Context, id uuid.UUID) (*model.Peripheral, error) {
	p, err := s.store.Peripherals.GetPeripheralByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "peripheral", "retrieve peripheral")
	}
	return p, nil
}

// List retrieves peripherals with filtering and pagination
func (s *PeripheralService) List(ctx context.Context, filter repository.PeripheralFilter, params repository.PaginationParams) (*repository.PaginatedResult[model.Peripheral], error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, apperrors.ValidationError(fmt.Sprintf("invalid type filter: %s", filter.Type))
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.ValidationError(fmt.Sprintf("invalid status filter: %s", filter.Status))
	}

	result, err := s.store.Peripherals.ListPeripherals(ctx, filter, params)
	if err != nil {
		return nil, repoError(err, "peripheral", "retrieve peripherals")
	}
	return result, nil
}

// Update replaces the editable fields of a peripheral
func (s *PeripheralService) Update(ctx context.Context, id uuid.UUID, updates model.Peripheral) (*model.Peripheral, error) {
	existing, err := s.store.Peripherals.GetPeripheralByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "peripheral", "retrieve peripheral for update")
	}

	if err := validationFailed("peripheral", validation.ValidatePeripheralInput(&updates)); err != nil {
		return nil, err
	}
	if err := s.checkEquipment(ctx, updates.EquipmentID); err != nil {
		return nil, err
	}

	rescheduled := timeChanged(updates.LastMaintenance, existing.LastMaintenance) ||
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
		if next := nextMaintenance(updates.LastMaintenance, nil, updates.MaintenanceIntervalDays); (rescheduled || existing.NextMaintenance == nil) && next != nil {
			updates.NextMaintenance = next
		}
	}

	if err := s.store.Peripherals.UpdatePeripheral(ctx, updates); err != nil {
		return nil, repoError(err, "peripheral", "update peripheral")
	}

	return s.Get(ctx, id)
}

// Delete removes a peripheral and its maintenance history unless open tickets reference it
func (s *PeripheralService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.store.Peripherals.GetPeripheralByID(ctx, id)
	if err != nil {
		return repoError(err, "peripheral", "retrieve peripheral for deletion")
	}

	open, err := countOpenTickets(ctx, s.store.Tickets, model.AssetKindPeripheral, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return apperrors.ConflictError(fmt.Sprintf("peripheral %s has %d open ticket(s)", p.AssetTag, open)).
			WithDetail("open_tickets", fmt.Sprint(open))
	}

	removed, err := s.store.Maintenance.DeleteMaintenanceForAsset(ctx, model.AssetKindPeripheral, id)
	if err != nil {
		return repoError(err, "maintenance record", "delete maintenance history")
	}
	if err := s.store.Peripherals.DeletePeripheral(ctx, id); err != nil {
		return repoError(err, "peripheral", "delete peripheral")
	}

	s.logger.Info("peripheral deleted",
		zap.Stringer("id", id),
		zap.String("asset_tag", p.AssetTag),
		zap.Int64("maintenance_records_removed", removed))

	return nil
}
