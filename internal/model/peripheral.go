package model

import (
	"time"

	"github.com/google/uuid"
)

// PeripheralType is the category of a non-computer device.
type PeripheralType string

const (
	PeripheralPrinter   PeripheralType = "printer"
	PeripheralScanner   PeripheralType = "scanner"
	PeripheralMonitor   PeripheralType = "monitor"
	PeripheralKeyboard  PeripheralType = "keyboard"
	PeripheralMouse     PeripheralType = "mouse"
	PeripheralUPS       PeripheralType = "ups"
	PeripheralProjector PeripheralType = "projector"
	PeripheralOther     PeripheralType = "other"
)

var peripheralTypes = map[PeripheralType]bool{
	PeripheralPrinter:   true,
	PeripheralScanner:   true,
	PeripheralMonitor:   true,
	PeripheralKeyboard:  true,
	PeripheralMouse:     true,
	PeripheralUPS:       true,
	PeripheralProjector: true,
	PeripheralOther:     true,
}

func (t PeripheralType) Valid() bool {
	return peripheralTypes[t]
}

// Peripheral represents a tracked device such as a printer or scanner.
type Peripheral struct {
	ID                      uuid.UUID      `json:"id" yaml:"id"`
	Name                    string         `json:"name" yaml:"name"`
	Type                    PeripheralType `json:"type" yaml:"type"`
	Manufacturer            string         `json:"manufacturer,omitempty" yaml:"manufacturer"`
	Model                   string         `json:"model,omitempty" yaml:"model"`
	SerialNumber            string         `json:"serial_number,omitempty" yaml:"serial_number"`
	AssetTag                string         `json:"asset_tag" yaml:"asset_tag"`
	Location                string         `json:"location,omitempty" yaml:"location"`
	EquipmentID             *uuid.UUID     `json:"equipment_id,omitempty" yaml:"equipment_id"`
	Status                  AssetStatus    `json:"status" yaml:"status"`
	LastMaintenance         *time.Time     `json:"last_maintenance,omitempty" yaml:"last_maintenance"`
	NextMaintenance         *time.Time     `json:"next_maintenance,omitempty" yaml:"next_maintenance"`
	MaintenanceIntervalDays int            `json:"maintenance_interval_days" yaml:"maintenance_interval_days"`
	Notes                   string         `json:"notes,omitempty" yaml:"notes"`
	CreatedAt               time.Time      `json:"created_at" yaml:"-"`
	UpdatedAt               time.Time      `json:"updated_at" yaml:"-"`
}

// IsOverdue reports whether an in-service device has passed its next maintenance date.
func (p Peripheral) IsOverdue(now time.Time) bool {
	return p.Status != StatusRetired && p.NextMaintenance != nil && p.NextMaintenance.Before(now)
}
