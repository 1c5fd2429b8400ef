package handler

import (
	"context"
	"time"

	"maintenance-tracker-api/internal/model"
	"maintenance-tracker-api/internal/repository"
	"maintenance-tracker-api/internal/service"
	"maintenance-tracker-api/internal/suggestion"

	"github.com/google/uuid"
)

// The interfaces below are the contracts handlers depend on. They enable
// testing with function-field mocks and are satisfied by the service layer.

// EquipmentService manages equipment
type EquipmentService interface {
	Create(ctx context.Context, e model.Equipment) (*model.Equipment, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Equipment, error)
	List(ctx context.Context, filter repository.EquipmentFilter, params repository.PaginationParams) (*repository.PaginatedResult[model.Equipment], error)
	Update(ctx context.Context, id uuid.UUID, e model.Equipment) (*model.Equipment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PeripheralService manages peripherals
type PeripheralService interface {
	Create(ctx context.Context, p model.Peripheral) (*model.Peripheral, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Peripheral, error)
	List(ctx context.Context, filter repository.PeripheralFilter, params repository.PaginationParams) (*repository.PaginatedResult[model.Peripheral], error)
	Update(ctx context.Context, id uuid.UUID, p model.Peripheral) (*model.Peripheral, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MaintenanceService records maintenance work
type MaintenanceService interface {
	Record(ctx context.Context, m model.MaintenanceRecord) (*model.MaintenanceRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*model.MaintenanceRecord, error)
	List(ctx context.Context, filter repository.MaintenanceFilter, params repository.PaginationParams) (*repository.PaginatedResult[model.MaintenanceRecord], error)
	History(ctx context.Context, kind model.AssetKind, id uuid.UUID, params repository.PaginationParams) (*repository.PaginatedResult[model.MaintenanceRecord], error)
	Delete(ctx context.Context, id uuid.UUID) error
	Due(ctx context.Context, within time.Duration) ([]model.DueItem, error)
}

// TicketService manages support tickets
type TicketService interface {
	Create(ctx context.Context, t model.Ticket) (*model.Ticket, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Ticket, error)
	List(ctx context.Context, filter repository.TicketFilter, params repository.PaginationParams) (*repository.PaginatedResult[model.Ticket], error)
	ForAsset(ctx context.Context, kind model.AssetKind, id uuid.UUID, params repository.PaginationParams) (*repository.PaginatedResult[model.Ticket], error)
	Update(ctx context.Context, id uuid.UUID, t model.Ticket) (*model.Ticket, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ChangeStatus(ctx context.Context, id uuid.UUID, status model.TicketStatus, resolution string) (*model.Ticket, error)
	Assign(ctx context.Context, id uuid.UUID, engineer string) (*model.Ticket, error)
}

// DashboardService summarizes the inventory
type DashboardService interface {
	Summary(ctx context.Context) (*model.Dashboard, error)
}

// SuggestionService produces maintenance recommendations
type SuggestionService interface {
	Suggest(ctx context.Context, kind model.AssetKind, id uuid.UUID) (*model.Suggestion, error)
}

// Ensure the service layer implements the handler contracts at compile time
var (
	_ EquipmentService   = (*service.EquipmentService)(nil)
	_ PeripheralService  = (*service.PeripheralService)(nil)
	_ MaintenanceService = (*service.MaintenanceService)(nil)
	_ TicketService      = (*service.TicketService)(nil)
	_ DashboardService   = (*service.DashboardService)(nil)
	_ SuggestionService  = (*suggestion.Suggester)(nil)
)
