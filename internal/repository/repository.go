package repository

import (
	"context"
	"errors"
	"time"

	"maintenance-tracker-api/internal/model"

	"github.com/google/uuid"
)

// Custom errors for better error handling
var (
	ErrEquipmentNotFound         = errors.New("equipment not found")
	ErrPeripheralNotFound        = errors.New("peripheral not found")
	ErrMaintenanceRecordNotFound = errors.New("maintenance record not found")
	ErrTicketNotFound            = errors.New("ticket not found")
	ErrDuplicateAssetTag         = errors.New("an asset with this asset tag already exists")
	ErrDuplicateID               = errors.New("a record with this id already exists")
)

// PaginationParams holds pagination parameters for repository queries.
// A non-positive Limit returns every matching row.
type PaginationParams struct {
	Offset int
	Limit  int
}

// PaginatedResult holds paginated query results
type PaginatedResult[T any] struct {
	Items      []T
	TotalCount int
}

// EquipmentFilter narrows equipment listings. Empty fields match everything.
type EquipmentFilter struct {
	Status     model.AssetStatus
	Location   string
	AssignedTo string
	Search     string
}

// PeripheralFilter narrows peripheral listings.
type PeripheralFilter struct {
	Type        model.PeripheralType
	Status      model.AssetStatus
	EquipmentID *uuid.UUID
	Search      string
}

// MaintenanceFilter narrows maintenance history listings.
type MaintenanceFilter struct {
	AssetKind model.AssetKind
	AssetID   *uuid.UUID
	Kind      model.MaintenanceKind
	Since     *time.Time
	Until     *time.Time
}

// TicketFilter narrows ticket listings. OpenOnly keeps open, in-progress and on-hold tickets.
type TicketFilter struct {
	Status           model.TicketStatus
	Priority         model.TicketPriority
	AssignedEngineer string
	AssetKind        model.AssetKind
	AssetID          *uuid.UUID
	OpenOnly         bool
}

// EquipmentRepository is an interface for interacting with computer data.
type EquipmentRepository interface {
	CreateEquipment(ctx context.Context, equipment model.Equipment) error
	GetEquipmentByID(ctx context.Context, id uuid.UUID) (*model.Equipment, error)
	ListEquipment(ctx context.Context, filter EquipmentFilter, params PaginationParams) (*PaginatedResult[model.Equipment], error)
	UpdateEquipment(ctx context.Context, equipment model.Equipment) error
	DeleteEquipment(ctx context.Context, id uuid.UUID) error
	GetEquipmentDueForMaintenance(ctx context.Context, before time.Time) ([]model.Equipment, error)
	CountEquipmentByStatus(ctx context.Context) (map[model.AssetStatus]int, error)
}

// PeripheralRepository is an interface for interacting with peripheral data.
type PeripheralRepository interface {
	CreatePeripheral(ctx context.Context, peripheral model.Peripheral) error
	GetPeripheralByID(ctx context.Context, id uuid.UUID) (*model.Peripheral, error)
	ListPeripherals(ctx context.Context, filter PeripheralFilter, params PaginationParams) (*PaginatedResult[model.Peripheral], error)
	UpdatePeripheral(ctx context.Context, peripheral model.Peripheral) error
	DeletePeripheral(ctx context.Context, id uuid.UUID) error
	DetachPeripheralsFromEquipment(ctx context.Context, equipmentID uuid.UUID) (int64, error)
	GetPeripheralsDueForMaintenance(ctx context.Context, before time.Time) ([]model.Peripheral, error)
	CountPeripheralsByStatus(ctx context.Context) (map[model.AssetStatus]int, error)
}

// MaintenanceRepository is an interface for the maintenance log.
type MaintenanceRepository interface {
	CreateMaintenanceRecord(ctx context.Context, record model.MaintenanceRecord) error
	GetMaintenanceRecordByID(ctx context.Context, id uuid.UUID) (*model.MaintenanceRecord, error)
	ListMaintenanceRecords(ctx context.Context, filter MaintenanceFilter, params PaginationParams) (*PaginatedResult[model.MaintenanceRecord], error)
	DeleteMaintenanceRecord(ctx context.Context, id uuid.UUID) error
	GetLatestMaintenanceForAsset(ctx context.Context, kind model.AssetKind, assetID uuid.UUID) (*model.MaintenanceRecord, error)
	DeleteMaintenanceForAsset(ctx context.Context, kind model.AssetKind, assetID uuid.UUID) (int64, error)
}

// TicketRepository is an interface for interacting with support tickets.
type TicketRepository interface {
	CreateTicket(ctx context.Context, ticket model.Ticket) error
	GetTicketByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error)
	ListTickets(ctx context.Context, filter TicketFilter, params PaginationParams) (*PaginatedResult[model.Ticket], error)
	UpdateTicket(ctx context.Context, ticket model.Ticket) error
	DeleteTicket(ctx context.Context, id uuid.UUID) error
	CountOpenTicketsByPriority(ctx context.Context) (map[model.TicketPriority]int, error)
}

// Store groups the repositories backed by one data source.
type Store struct {
	Equipment   EquipmentRepository
	Peripherals PeripheralRepository
	Maintenance MaintenanceRepository
	Tickets     TicketRepository

	closer func() error
}

// Close releases the underlying data source.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
