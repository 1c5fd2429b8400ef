package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"maintenance-tracker-api/internal/model"
	"maintenance-tracker-api/internal/repository"
	apperrors "maintenance-tracker-api/pkg/errors"
	"maintenance-tracker-api/pkg/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TicketService handles the support ticket workflow
type TicketService struct {
	store  *repository.Store
	assets assets
	notify *Dispatcher
	logger *zap.Logger
	now    func() time.Time
}

// NewTicketService creates a new ticket service
func NewTicketService(store *repository.Store, notify *Dispatcher, logger *zap.Logger) *TicketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		store:  store,
		assets: assets{equipment: store.Equipment, peripherals: store.Peripherals},
		notify: notify,
		logger: logger.Named("tickets"),
		now:    time.Now,
	}
}

func isUrgent(p model.TicketPriority) bool {
	return p == model.PriorityHigh || p == model.PriorityCritical
}

func (s *TicketService) checkAsset(ctx context.Context, t model.Ticket) error {
	if t.AssetID == nil {
		return nil
	}
	_, err := s.assets.get(ctx, t.AssetKind, *t.AssetID)
	if apperrors.IsCode(err, apperrors.ErrorCodeNotFound) {
		return apperrors.ValidationErrorWithDetails("invalid ticket", map[string]string{
			"asset_id": fmt.Sprintf("%s does not exist", t.AssetKind),
		})
	}
	return err
}

// Create opens a new ticket. High and critical tickets notify operators, as
// does an engineer assigned up front.
func (s *TicketService) Create(ctx context.Context, t model.Ticket) (*model.Ticket, error) {
	if err := validationFailed("ticket", validation.ValidateTicketInput(&t)); err != nil {
		return nil, err
	}
	if err := s.checkAsset(ctx, t); err != nil {
		return nil, err
	}

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	t.Status = model.TicketOpen
	t.Resolution = ""
	t.ResolvedAt = nil

	if err := s.store.Tickets.CreateTicket(ctx, t); err != nil {
		return nil, repoError(err, "ticket", "create ticket")
	}

	s.logger.Info("ticket created",
		zap.Stringer("id", t.ID),
		zap.String("priority", string(t.Priority)))

	if isUrgent(t.Priority) {
		s.notify.Dispatch(s.ticketEvent(EventTicketEscalated, t,
			fmt.Sprintf("New %s priority ticket: %s", t.Priority, t.Title)))
	}
	if t.AssignedEngineer != "" {
		s.notify.Dispatch(s.ticketEvent(EventTicketAssigned, t,
			fmt.Sprintf("Ticket %q assigned to %s", t.Title, t.AssignedEngineer)))
	}

	return s.Get(ctx, t.ID)
}

// Get retrieves a ticket by its ID
func (s *TicketService) Get(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	t, err := s.store.Tickets.GetTicketByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "ticket", "retrieve ticket")
	}
	return t, nil
}

// List retrieves tickets with filtering and pagination, newest first
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter, params repository.PaginationParams) (*repository.PaginatedResult[model.Ticket], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.ValidationError(fmt.Sprintf("invalid status filter: %s", filter.Status))
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, apperrors.ValidationError(fmt.Sprintf("invalid priority filter: %s", filter.Priority))
	}
	if filter.AssetKind != "" && !filter.AssetKind.Valid() {
		return nil, apperrors.ValidationError(fmt.Sprintf("invalid asset kind filter: %s", filter.AssetKind))
	}

	result, err := s.store.Tickets.ListTickets(ctx, filter, params)
	if err != nil {
		return nil, repoError(err, "ticket", "retrieve tickets")
	}
	return result, nil
}

// ForAsset lists the tickets raised against one asset
func (s *TicketService) ForAsset(ctx context.Context, kind model.AssetKind, id uuid.UUID, params repository.PaginationParams) (*repository.PaginatedResult[model.Ticket], error) {
	if _, err := s.assets.get(ctx, kind, id); err != nil {
		return nil, err
	}
	return s.List(ctx, repository.TicketFilter{AssetKind: kind, AssetID: &id}, params)
}

// Update edits the descriptive fields of a ticket. Status, resolution and
// assignment change only through ChangeStatus and Assign.
func (s *TicketService) Update(ctx context.Context, id uuid.UUID, updates model.Ticket) (*model.Ticket, error) {
	existing, err := s.store.Tickets.GetTicketByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "ticket", "retrieve ticket for update")
	}
	if existing.Status == model.TicketClosed {
		return nil, apperrors.ConflictError("closed tickets cannot be edited")
	}

	updates.AssignedEngineer = ""
	if err := validationFailed("ticket", validation.ValidateTicketInput(&updates)); err != nil {
		return nil, err
	}
	if err := s.checkAsset(ctx, updates); err != nil {
		return nil, err
	}

	ticket := *existing
	ticket.Title = updates.Title
	ticket.Description = updates.Description
	ticket.AssetKind = updates.AssetKind
	ticket.AssetID = updates.AssetID
	ticket.ReportedBy = updates.ReportedBy
	if updates.Priority != "" {
		ticket.Priority = updates.Priority
	}

	if err := s.store.Tickets.UpdateTicket(ctx, ticket); err != nil {
		return nil, repoError(err, "ticket", "update ticket")
	}

	if isUrgent(ticket.Priority) && !isUrgent(existing.Priority) && ticket.Status.IsActive() {
		s.notify.Dispatch(s.ticketEvent(EventTicketEscalated, ticket,
			fmt.Sprintf("Ticket escalated from %s to %s: %s", existing.Priority, ticket.Priority, ticket.Title)))
	}

	return s.Get(ctx, id)
}

// Delete removes a ticket
func (s *TicketService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Tickets.DeleteTicket(ctx, id); err != nil {
		return repoError(err, "ticket", "delete ticket")
	}
	s.logger.Info("ticket deleted", zap.Stringer("id", id))
	return nil
}

// ChangeStatus moves a ticket through its workflow. Resolving requires a
// resolution; reopening clears the resolution.
func (s *TicketService) ChangeStatus(ctx context.Context, id uuid.UUID, status model.TicketStatus, resolution string) (*model.Ticket, error) {
	if !status.Valid() {
		return nil, apperrors.ValidationErrorWithDetails("invalid ticket status", map[string]string{
			"status": fmt.Sprintf("unknown status: %q", status),
		})
	}
	resolution = strings.TrimSpace(resolution)
	if err := validation.ValidateMaxLength("resolution", resolution, validation.MaxDescriptionLength); err != nil {
		return nil, apperrors.ValidationErrorWithDetails("invalid ticket status", map[string]string{"resolution": err.Error()})
	}

	t, err := s.store.Tickets.GetTicketByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "ticket", "retrieve ticket")
	}
	if t.Status == status {
		return t, nil
	}
	if !t.Status.CanTransition(status) {
		return nil, apperrors.InvalidTransitionError(string(t.Status), string(status))
	}

	from := t.Status
	now := s.now().UTC()
	switch status {
	case model.TicketResolved:
		if resolution == "" {
			return nil, apperrors.ValidationErrorWithDetails("invalid ticket status", map[string]string{
				"resolution": "resolution is required when resolving a ticket",
			})
		}
		t.Resolution = resolution
		t.ResolvedAt = &now
	case model.TicketClosed:
		if resolution != "" {
			t.Resolution = resolution
		}
		if t.ResolvedAt == nil {
			t.ResolvedAt = &now
		}
	default:
		t.Resolution = ""
		t.ResolvedAt = nil
	}
	t.Status = status

	if err := s.store.Tickets.UpdateTicket(ctx, *t); err != nil {
		return nil, repoError(err, "ticket", "update ticket status")
	}

	s.logger.Info("ticket status changed",
		zap.Stringer("id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)))

	if isUrgent(t.Priority) {
		s.notify.Dispatch(s.ticketEvent(EventTicketStatusChanged, *t,
			fmt.Sprintf("Ticket %q moved from %s to %s", t.Title, from, status)))
	}

	return s.Get(ctx, id)
}

// Assign hands a ticket to an engineer. Open tickets move to in progress.
func (s *TicketService) Assign(ctx context.Context, id uuid.UUID, engineer string) (*model.Ticket, error) {
	engineer = strings.TrimSpace(engineer)
	if err := validation.ValidatePersonName("assigned engineer", engineer); err != nil {
		return nil, apperrors.ValidationErrorWithDetails("invalid assignment", map[string]string{
			"assigned_engineer": err.Error(),
		})
	}

	t, err := s.store.Tickets.GetTicketByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "ticket", "retrieve ticket")
	}
	if !t.Status.IsActive() {
		return nil, apperrors.ConflictError(fmt.Sprintf("cannot assign a %s ticket", t.Status))
	}

	previous := t.AssignedEngineer
	t.AssignedEngineer = engineer
	if t.Status == model.TicketOpen {
		t.Status = model.TicketInProgress
	}

	if err := s.store.Tickets.UpdateTicket(ctx, *t); err != nil {
		return nil, repoError(err, "ticket", "assign ticket")
	}

	s.logger.Info("ticket assigned",
		zap.Stringer("id", id),
		zap.String("engineer", engineer),
		zap.String("previous", previous))

	event := s.ticketEvent(EventTicketAssigned, *t, fmt.Sprintf("Ticket %q assigned to %s", t.Title, engineer))
	if previous != "" {
		event.Metadata["previous_engineer"] = previous
	}
	s.notify.Dispatch(event)

	return s.Get(ctx, id)
}

func (s *TicketService) ticketEvent(typ EventType, t model.Ticket, message string) Event {
	metadata := map[string]string{
		"ticket_id": t.ID.String(),
		"priority":  string(t.Priority),
		"status":    string(t.Status),
	}
	if t.AssignedEngineer != "" {
		metadata["assigned_engineer"] = t.AssignedEngineer
	}
	if t.AssetID != nil {
		metadata["asset_kind"] = string(t.AssetKind)
		metadata["asset_id"] = t.AssetID.String()
	}
	return Event{
		Type:     typ,
		Subject:  t.Title,
		Message:  message,
		Metadata: metadata,
	}
}
