// Package suggestion produces AI-generated maintenance recommendations from an
// asset's service history.
package suggestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maintenance-tracker-api/internal/model"
	"maintenance-tracker-api/internal/repository"
	apperrors "maintenance-tracker-api/pkg/errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// History is everything the model is told about one asset.
type History struct {
	Kind       model.AssetKind
	Equipment  *model.Equipment
	Peripheral *model.Peripheral

	// Maintenance holds the newest records; MaintenanceTotal counts all of them.
	Maintenance      []model.MaintenanceRecord
	MaintenanceTotal int
	Tickets          []model.Ticket

	CollectedAt time.Time
}

// Name returns the asset's display name.
func (h *History) Name() string {
	if h.Equipment != nil {
		return h.Equipment.Name
	}
	if h.Peripheral != nil {
		return h.Peripheral.Name
	}
	return ""
}

// AssetID returns the asset's ID.
func (h *History) AssetID() uuid.UUID {
	if h.Equipment != nil {
		return h.Equipment.ID
	}
	if h.Peripheral != nil {
		return h.Peripheral.ID
	}
	return uuid.Nil
}

// HistoryCollector loads an asset together with its maintenance log and tickets.
type HistoryCollector struct {
	store *repository.Store
	limit int
	now   func() time.Time
}

// NewHistoryCollector creates a collector that keeps at most limit maintenance
// records and tickets per asset.
func NewHistoryCollector(store *repository.Store, limit int) *HistoryCollector {
	if limit <= 0 {
		limit = 20
	}
	return &HistoryCollector{store: store, limit: limit, now: time.Now}
}

// Collect fetches the asset, its newest maintenance records and its tickets concurrently.
func (c *HistoryCollector) Collect(ctx context.Context, kind model.AssetKind, id uuid.UUID) (*History, error) {
	if !kind.Valid() {
		return nil, apperrors.ValidationError(fmt.Sprintf("invalid asset kind: %q", kind))
	}

	h := &History{Kind: kind, CollectedAt: c.now().UTC()}
	page := repository.PaginationParams{Limit: c.limit}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if kind == model.AssetKindEquipment {
			h.Equipment, err = c.store.Equipment.GetEquipmentByID(gctx, id)
		} else {
			h.Peripheral, err = c.store.Peripherals.GetPeripheralByID(gctx, id)
		}
		return err
	})
	g.Go(func() error {
		records, err := c.store.Maintenance.ListMaintenanceRecords(gctx,
			repository.MaintenanceFilter{AssetKind: kind, AssetID: &id}, page)
		if err != nil {
			return err
		}
		h.Maintenance, h.MaintenanceTotal = records.Items, records.TotalCount
		return nil
	})
	g.Go(func() error {
		tickets, err := c.store.Tickets.ListTickets(gctx,
			repository.TicketFilter{AssetKind: kind, AssetID: &id}, page)
		if err != nil {
			return err
		}
		h.Tickets = tickets.Items
		return nil
	})

	if err := g.Wait(); err != nil {
		switch {
		case errors.Is(err, repository.ErrEquipmentNotFound), errors.Is(err, repository.ErrPeripheralNotFound):
			return nil, apperrors.NotFoundError(string(kind))
		case errors.Is(err, context.DeadlineExceeded):
			return nil, apperrors.TimeoutError("collect asset history", err)
		default:
			return nil, apperrors.DatabaseError("failed to collect asset history", err)
		}
	}
	return h, nil
}
