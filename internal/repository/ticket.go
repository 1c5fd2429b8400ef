package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"maintenance-tracker-api/internal/model"

	"github.com/google/uuid"
)

const ticketColumns = `id, title, description, asset_kind, asset_id, priority, status, reported_by, assigned_engineer, resolution, created_at, updated_at, resolved_at`

type ticketRepository struct {
	DB *sql.DB
}

// NewTicketRepository creates a new TicketRepository.
func NewTicketRepository(db *sql.DB) TicketRepository {
	return &ticketRepository{DB: db}
}

func scanTicket(row rowScanner) (model.Ticket, error) {
	var (
		t          model.Ticket
		assetID    uuid.NullUUID
		resolvedAt sql.NullTime
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.AssetKind, &assetID, &t.Priority, &t.Status,
		&t.ReportedBy, &t.AssignedEngineer, &t.Resolution, &t.CreatedAt, &t.UpdatedAt, &resolvedAt)
	if err != nil {
		return t, err
	}
	if assetID.Valid {
		id := assetID.UUID
		t.AssetID = &id
	}
	t.ResolvedAt = toTimePtr(resolvedAt)
	return t, nil
}

// CreateTicket opens a new support ticket.
func (r *ticketRepository) CreateTicket(ctx context.Context, t model.Ticket) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		INSERT INTO tickets (id, title, description, asset_kind, asset_id, priority, status, reported_by, assigned_engineer, resolution, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.DB.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, string(t.AssetKind), t.AssetID, string(t.Priority),
		string(t.Status), t.ReportedBy, t.AssignedEngineer, t.Resolution, t.ResolvedAt,
	)
	if err != nil {
		if _, dup := isUniqueViolation(err); dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

// GetTicketByID retrieves a ticket by its ID.
func (r *ticketRepository) GetTicketByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	t, err := scanTicket(r.DB.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &t, nil
}

func ticketWhere(f TicketFilter) *whereClause {
	w := &whereClause{}
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	if f.OpenOnly {
		w.addRaw("status IN ('open', 'in_progress', 'on_hold')")
	}
	if f.Priority != "" {
		w.add("priority = ?", string(f.Priority))
	}
	if f.AssignedEngineer != "" {
		w.add("assigned_engineer ILIKE ?", f.AssignedEngineer)
	}
	if f.AssetKind != "" {
		w.add("asset_kind = ?", string(f.AssetKind))
	}
	if f.AssetID != nil {
		w.add("asset_id = ?", *f.AssetID)
	}
	return w
}

// ListTickets returns tickets matching filter, newest first.
func (r *ticketRepository) ListTickets(ctx context.Context, filter TicketFilter, params PaginationParams) (*PaginatedResult[model.Ticket], error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	where := ticketWhere(filter)
	query, args := paginate(`SELECT `+ticketColumns+` FROM tickets`+where.String()+` ORDER BY created_at DESC, id`, where.args, params)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	items := []model.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	total, err := countRows(ctx, r.DB, "tickets", where)
	if err != nil {
		return nil, err
	}

	return &PaginatedResult[model.Ticket]{Items: items, TotalCount: total}, nil
}

// UpdateTicket replaces every mutable column of the ticket identified by t.ID.
func (r *ticketRepository) UpdateTicket(ctx context.Context, t model.Ticket) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		UPDATE tickets
		SET title = $1, description = $2, asset_kind = $3, asset_id = $4, priority = $5, status = $6, reported_by = $7, assigned_engineer = $8, resolution = $9, resolved_at = $10, updated_at = CURRENT_TIMESTAMP
		WHERE id = $11`

	result, err := r.DB.ExecContext(ctx, query,
		t.Title, t.Description, string(t.AssetKind), t.AssetID, string(t.Priority), string(t.Status),
		t.ReportedBy, t.AssignedEngineer, t.Resolution, t.ResolvedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	return expectOneRow(result, ErrTicketNotFound)
}

// DeleteTicket removes a ticket.
func (r *ticketRepository) DeleteTicket(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	return expectOneRow(result, ErrTicketNotFound)
}

// CountOpenTicketsByPriority counts active tickets per priority.
func (r *ticketRepository) CountOpenTicketsByPriority(ctx context.Context) (map[model.TicketPriority]int, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctx,
		`SELECT priority, COUNT(*) FROM tickets WHERE status IN ('open', 'in_progress', 'on_hold') GROUP BY priority`)
	if err != nil {
		return nil, fmt.Errorf("failed to count open tickets: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.TicketPriority]int)
	for rows.Next() {
		var (
			priority string
			n        int
		)
		if err := rows.Scan(&priority, &n); err != nil {
			return nil, fmt.Errorf("failed to scan ticket count: %w", err)
		}
		counts[model.TicketPriority(priority)] = n
	}
	return counts, rows.Err()
}
