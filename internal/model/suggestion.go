package model

import (
	"time"

	"github.com/google/uuid"
)

// Suggestion is a list of AI-generated maintenance recommendations for one asset.
type Suggestion struct {
	AssetKind   AssetKind `json:"asset_kind"`
	AssetID     uuid.UUID `json:"asset_id"`
	AssetName   string    `json:"asset_name"`
	Items       []string  `json:"suggestions"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Dashboard summarizes the state of the inventory.
type Dashboard struct {
	EquipmentByStatus  map[AssetStatus]int    `json:"equipment_by_status"`
	PeripheralByStatus map[AssetStatus]int    `json:"peripherals_by_status"`
	OpenTickets        map[TicketPriority]int `json:"open_tickets_by_priority"`
	OpenTicketTotal    int                    `json:"open_ticket_total"`
	Overdue            []DueItem              `json:"overdue_maintenance"`
	Upcoming           []DueItem              `json:"upcoming_maintenance"`
	GeneratedAt        time.Time              `json:"generated_at"`
}
