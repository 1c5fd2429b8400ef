package model

import (
	"time"

	"github.com/google/uuid"
)

// TicketPriority is the urgency of a support ticket.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "low"
	PriorityMedium   TicketPriority = "medium"
	PriorityHigh     TicketPriority = "high"
	PriorityCritical TicketPriority = "critical"
)

// TicketPriorities lists every priority from least to most urgent.
var TicketPriorities = []TicketPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p TicketPriority) Valid() bool {
	for _, known := range TicketPriorities {
		if p == known {
			return true
		}
	}
	return false
}

// TicketStatus is the resolution state of a support ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketOnHold     TicketStatus = "on_hold"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

// ticketTransitions holds the allowed status moves. Closed is terminal.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketOpen:       {TicketInProgress, TicketOnHold, TicketResolved, TicketClosed},
	TicketInProgress: {TicketOpen, TicketOnHold, TicketResolved, TicketClosed},
	TicketOnHold:     {TicketOpen, TicketInProgress, TicketClosed},
	TicketResolved:   {TicketOpen, TicketClosed},
	TicketClosed:     {},
}

func (s TicketStatus) Valid() bool {
	_, ok := ticketTransitions[s]
	return ok
}

// IsActive reports whether the ticket still needs work.
func (s TicketStatus) IsActive() bool {
	return s == TicketOpen || s == TicketInProgress || s == TicketOnHold
}

// CanTransition reports whether moving from s to next is allowed.
func (s TicketStatus) CanTransition(next TicketStatus) bool {
	for _, allowed := range ticketTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Ticket is a support request about an issue, optionally tied to an asset.
type Ticket struct {
	ID               uuid.UUID      `json:"id" yaml:"id"`
	Title            string         `json:"title" yaml:"title"`
	Description      string         `json:"description,omitempty" yaml:"description"`
	AssetKind        AssetKind      `json:"asset_kind,omitempty" yaml:"asset_kind"`
	AssetID          *uuid.UUID     `json:"asset_id,omitempty" yaml:"asset_id"`
	Priority         TicketPriority `json:"priority" yaml:"priority"`
	Status           TicketStatus   `json:"status" yaml:"status"`
	ReportedBy       string         `json:"reported_by,omitempty" yaml:"reported_by"`
	AssignedEngineer string         `json:"assigned_engineer,omitempty" yaml:"assigned_engineer"`
	Resolution       string         `json:"resolution,omitempty" yaml:"resolution"`
	CreatedAt        time.Time      `json:"created_at" yaml:"-"`
	UpdatedAt        time.Time      `json:"updated_at" yaml:"-"`
	ResolvedAt       *time.Time     `json:"resolved_at,omitempty" yaml:"resolved_at"`
}
