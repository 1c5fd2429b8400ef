package model

import (
	"time"

	"github.com/google/uuid"
)

// MaintenanceKind separates scheduled work from repairs.
type MaintenanceKind string

const (
	MaintenancePreventive MaintenanceKind = "preventive"
	MaintenanceCorrective MaintenanceKind = "corrective"
)

func (k MaintenanceKind) Valid() bool {
	return k == MaintenancePreventive || k == MaintenanceCorrective
}

// MaintenanceRecord is a dated log entry of work performed on an asset.
type MaintenanceRecord struct {
	ID              uuid.UUID       `json:"id" yaml:"id"`
	AssetKind       AssetKind       `json:"asset_kind" yaml:"asset_kind"`
	AssetID         uuid.UUID       `json:"asset_id" yaml:"asset_id"`
	Kind            MaintenanceKind `json:"kind" yaml:"kind"`
	PerformedAt     time.Time       `json:"performed_at" yaml:"performed_at"`
	Technician      string          `json:"technician" yaml:"technician"`
	Description     string          `json:"description" yaml:"description"`
	DurationMinutes int             `json:"duration_minutes,omitempty" yaml:"duration_minutes"`
	TicketID        *uuid.UUID      `json:"ticket_id,omitempty" yaml:"ticket_id"`
	CreatedAt       time.Time       `json:"created_at" yaml:"-"`
}

// DueItem describes an asset whose maintenance is overdue or coming up.
type DueItem struct {
	AssetKind       AssetKind `json:"asset_kind"`
	AssetID         uuid.UUID `json:"asset_id"`
	Name            string    `json:"name"`
	AssetTag        string    `json:"asset_tag"`
	Location        string    `json:"location,omitempty"`
	NextMaintenance time.Time `json:"next_maintenance"`
	Overdue         bool      `json:"overdue"`
	DaysOverdue     int       `json:"days_overdue,omitempty"`
}
