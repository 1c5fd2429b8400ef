package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"maintenance-tracker-api/internal/model"
	"maintenance-tracker-api/internal/repository"
	apperrors "maintenance-tracker-api/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService interface for sending notifications
type NotificationService interface {
	SendEvent(ctx context.Context, event Event) error
}

// Event represents something operators should hear about
type Event struct {
	Type     EventType
	Subject  string
	Message  string
	Metadata map[string]string
}

// EventType represents the type of notification
type EventType string

const (
	EventMaintenanceOverdue  EventType = "maintenance_overdue"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

const notificationTimeout = 30 * time.Second

// Dispatcher sends notifications in the background so request handling never waits on the webhook.
// A nil *Dispatcher drops every event.
type Dispatcher struct {
	notifier NotificationService
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher around notifier
func NewDispatcher(notifier NotificationService, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{notifier: notifier, logger: logger}
}

// Dispatch sends event asynchronously. Failures are logged.
func (d *Dispatcher) Dispatch(event Event) {
	if d == nil || d.notifier == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
		defer cancel()
		if err := d.notifier.SendEvent(ctx, event); err != nil {
			d.logger.Warn("failed to send notification",
				zap.String("type", string(event.Type)),
				zap.String("subject", event.Subject),
				zap.Error(err))
		}
	}()
}

// Send delivers event synchronously.
func (d *Dispatcher) Send(ctx context.Context, event Event) error {
	if d == nil || d.notifier == nil {
		return nil
	}
	return d.notifier.SendEvent(ctx, event)
}

// Wait blocks until every dispatched notification has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

// repoError converts repository failures into application errors.
func repoError(err error, resource, action string) error {
	switch {
	case errors.Is(err, repository.ErrEquipmentNotFound),
		errors.Is(err, repository.ErrPeripheralNotFound),
		errors.Is(err, repository.ErrMaintenanceRecordNotFound),
		errors.Is(err, repository.ErrTicketNotFound):
		return apperrors.NotFoundError(resource)
	case errors.Is(err, repository.ErrDuplicateAssetTag):
		return apperrors.AlreadyExistsError("asset with this asset tag")
	case errors.Is(err, repository.ErrDuplicateID):
		return apperrors.AlreadyExistsError(resource + " with this id")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.TimeoutError(action, err)
	default:
		return apperrors.DatabaseError("failed to "+action, err)
	}
}

// timeChanged reports whether an update supplies a date different from the stored one.
func timeChanged(provided, current *time.Time) bool {
	return provided != nil && (current == nil || !provided.Equal(*current))
}

func intervalChanged(provided, current int) bool {
	return provided != 0 && provided != current
}

// nextMaintenance schedules the next visit intervalDays after the last one,
// or after purchase when the asset was never serviced.
func nextMaintenance(last, purchase *time.Time, intervalDays int) *time.Time {
	if intervalDays <= 0 {
		return nil
	}
	base := last
	if base == nil {
		base = purchase
	}
	if base == nil {
		return nil
	}
	next := base.AddDate(0, 0, intervalDays)
	return &next
}

// asset is the part of equipment and peripherals that maintenance cares about.
type asset struct {
	Kind            model.AssetKind
	ID              uuid.UUID
	Name            string
	AssetTag        string
	Location        string
	Status          model.AssetStatus
	IntervalDays    int
	PurchaseDate    *time.Time
	LastMaintenance *time.Time
	NextMaintenance *time.Time
}

func equipmentAsset(e model.Equipment) asset {
	return asset{
		Kind:            model.AssetKindEquipment,
		ID:              e.ID,
		Name:            e.Name,
		AssetTag:        e.AssetTag,
		Location:        e.Location,
		Status:          e.Status,
		IntervalDays:    e.MaintenanceIntervalDays,
		PurchaseDate:    e.PurchaseDate,
		LastMaintenance: e.LastMaintenance,
		NextMaintenance: e.NextMaintenance,
	}
}

func peripheralAsset(p model.Peripheral) asset {
	return asset{
		Kind:            model.AssetKindPeripheral,
		ID:              p.ID,
		Name:            p.Name,
		AssetTag:        p.AssetTag,
		Location:        p.Location,
		Status:          p.Status,
		IntervalDays:    p.MaintenanceIntervalDays,
		LastMaintenance: p.LastMaintenance,
		NextMaintenance: p.NextMaintenance,
	}
}

// assets reads and reschedules either kind of asset.
type assets struct {
	equipment   repository.EquipmentRepository
	peripherals repository.PeripheralRepository
}

func (a assets) get(ctx context.Context, kind model.AssetKind, id uuid.UUID) (*asset, error) {
	switch kind {
	case model.AssetKindEquipment:
		e, err := a.equipment.GetEquipmentByID(ctx, id)
		if err != nil {
			return nil, repoError(err, "equipment", "retrieve equipment")
		}
		found := equipmentAsset(*e)
		return &found, nil
	case model.AssetKindPeripheral:
		p, err := a.peripherals.GetPeripheralByID(ctx, id)
		if err != nil {
			return nil, repoError(err, "peripheral", "retrieve peripheral")
		}
		found := peripheralAsset(*p)
		return &found, nil
	default:
		return nil, apperrors.ValidationError(fmt.Sprintf("invalid asset kind: %q", kind))
	}
}

func (a assets) reschedule(ctx context.Context, kind model.AssetKind, id uuid.UUID, last, next *time.Time) error {
	switch kind {
	case model.AssetKindEquipment:
		e, err := a.equipment.GetEquipmentByID(ctx, id)
		if err != nil {
			return repoError(err, "equipment", "retrieve equipment")
		}
		e.LastMaintenance, e.NextMaintenance = last, next
		if err := a.equipment.UpdateEquipment(ctx, *e); err != nil {
			return repoError(err, "equipment", "update equipment schedule")
		}
	case model.AssetKindPeripheral:
		p, err := a.peripherals.GetPeripheralByID(ctx, id)
		if err != nil {
			return repoError(err, "peripheral", "retrieve peripheral")
		}
		p.LastMaintenance, p.NextMaintenance = last, next
		if err := a.peripherals.UpdatePeripheral(ctx, *p); err != nil {
			return repoError(err, "peripheral", "update peripheral schedule")
		}
	}
	return nil
}

// countOpenTickets returns how many active tickets reference the asset.
func countOpenTickets(ctx context.Context, tickets repository.TicketRepository, kind model.AssetKind, id uuid.UUID) (int, error) {
	result, err := tickets.ListTickets(ctx, repository.TicketFilter{
		OpenOnly:  true,
		AssetKind: kind,
		AssetID:   &id,
	}, repository.PaginationParams{Limit: 1})
	if err != nil {
		return 0, repoError(err, "ticket", "check open tickets")
	}
	return result.TotalCount, nil
}

func validationFailed(resource string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return apperrors.ValidationErrorWithDetails("invalid "+resource, fields)
}
