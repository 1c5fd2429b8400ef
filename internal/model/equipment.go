package model

import (
	"time"

	"github.com/google/uuid"
)

// Equipment represents a tracked computer.
type Equipment struct {
	ID                      uuid.UUID   `json:"id" yaml:"id"`
	Name                    string      `json:"name" yaml:"name"`
	AssetTag                string      `json:"asset_tag" yaml:"asset_tag"`
	SerialNumber            string      `json:"serial_number,omitempty" yaml:"serial_number"`
	Manufacturer            string      `json:"manufacturer,omitempty" yaml:"manufacturer"`
	Model                   string      `json:"model,omitempty" yaml:"model"`
	OperatingSystem         string      `json:"operating_system,omitempty" yaml:"operating_system"`
	OSVersion               string      `json:"os_version,omitempty" yaml:"os_version"`
	CPU                     string      `json:"cpu,omitempty" yaml:"cpu"`
	RAMGB                   int         `json:"ram_gb,omitempty" yaml:"ram_gb"`
	StorageGB               int         `json:"storage_gb,omitempty" yaml:"storage_gb"`
	MACAddress              string      `json:"mac_address,omitempty" yaml:"mac_address"`
	IPAddress               string      `json:"ip_address,omitempty" yaml:"ip_address"`
	Location                string      `json:"location,omitempty" yaml:"location"`
	AssignedTo              string      `json:"assigned_to,omitempty" yaml:"assigned_to"`
	Status                  AssetStatus `json:"status" yaml:"status"`
	PurchaseDate            *time.Time  `json:"purchase_date,omitempty" yaml:"purchase_date"`
	WarrantyExpiry          *time.Time  `json:"warranty_expiry,omitempty" yaml:"warranty_expiry"`
	LastMaintenance         *time.Time  `json:"last_maintenance,omitempty" yaml:"last_maintenance"`
	NextMaintenance         *time.Time  `json:"next_maintenance,omitempty" yaml:"next_maintenance"`
	MaintenanceIntervalDays int         `json:"maintenance_interval_days" yaml:"maintenance_interval_days"`
	Notes                   string      `json:"notes,omitempty" yaml:"notes"`
	CreatedAt               time.Time   `json:"created_at" yaml:"-"`
	UpdatedAt               time.Time   `json:"updated_at" yaml:"-"`
}

// IsOverdue reports whether an in-service machine has passed its next maintenance date.
func (e Equipment) IsOverdue(now time.Time) bool {
	return e.Status != StatusRetired && e.NextMaintenance != nil && e.NextMaintenance.Before(now)
}
