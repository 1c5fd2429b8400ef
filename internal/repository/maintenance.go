package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"maintenance-tracker-api/internal/model"

	"github.com/google/uuid"
)

const maintenanceColumns = `id, asset_kind, asset_id, kind, performed_at, technician, description, duration_minutes, ticket_id, created_at`

type maintenanceRepository struct {
	DB *sql.DB
}

// NewMaintenanceRepository creates a new MaintenanceRepository.
func NewMaintenanceRepository(db *sql.DB) MaintenanceRepository {
	return &maintenanceRepository{DB: db}
}

func scanMaintenanceRecord(row rowScanner) (model.MaintenanceRecord, error) {
	var (
		m        model.MaintenanceRecord
		ticketID uuid.NullUUID
	)
	err := row.Scan(&m.ID, &m.AssetKind, &m.AssetID, &m.Kind, &m.PerformedAt, &m.Technician,
		&m.Description, &m.DurationMinutes, &ticketID, &m.CreatedAt)
	if err != nil {
		return m, err
	}
	if ticketID.Valid {
		id := ticketID.UUID
		m.TicketID = &id
	}
	return m, nil
}

// CreateMaintenanceRecord appends an entry to the maintenance log.
func (r *maintenanceRepository) CreateMaintenanceRecord(ctx context.Context, m model.MaintenanceRecord) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		INSERT INTO maintenance_records (id, asset_kind, asset_id, kind, performed_at, technician, description, duration_minutes, ticket_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.DB.ExecContext(ctx, query,
		m.ID, string(m.AssetKind), m.AssetID, string(m.Kind), m.PerformedAt,
		m.Technician, m.Description, m.DurationMinutes, m.TicketID,
	)
	if err != nil {
		if _, dup := isUniqueViolation(err); dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, m.ID)
		}
		return fmt.Errorf("failed to create maintenance record: %w", err)
	}
	return nil
}

// GetMaintenanceRecordByID retrieves a maintenance record by its ID.
func (r *maintenanceRepository) GetMaintenanceRecordByID(ctx context.Context, id uuid.UUID) (*model.MaintenanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	m, err := scanMaintenanceRecord(r.DB.QueryRowContext(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_records WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMaintenanceRecordNotFound
		}
		return nil, fmt.Errorf("failed to get maintenance record: %w", err)
	}
	return &m, nil
}

// ListMaintenanceRecords returns the log newest first.
func (r *maintenanceRepository) ListMaintenanceRecords(ctx context.Context, filter MaintenanceFilter, params PaginationParams) (*PaginatedResult[model.MaintenanceRecord], error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	where := &whereClause{}
	if filter.AssetKind != "" {
		where.add("asset_kind = ?", string(filter.AssetKind))
	}
	if filter.AssetID != nil {
		where.add("asset_id = ?", *filter.AssetID)
	}
	if filter.Kind != "" {
		where.add("kind = ?", string(filter.Kind))
	}
	if filter.Since != nil {
		where.add("performed_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		where.add("performed_at < ?", *filter.Until)
	}

	query, args := paginate(`SELECT `+maintenanceColumns+` FROM maintenance_records`+where.String()+` ORDER BY performed_at DESC, created_at DESC`, where.args, params)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query maintenance records: %w", err)
	}
	defer rows.Close()

	items := []model.MaintenanceRecord{}
	for rows.Next() {
		m, err := scanMaintenanceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maintenance record: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	total, err := countRows(ctx, r.DB, "maintenance_records", where)
	if err != nil {
		return nil, err
	}

	return &PaginatedResult[model.MaintenanceRecord]{Items: items, TotalCount: total}, nil
}

// DeleteMaintenanceRecord removes a single log entry.
func (r *maintenanceRepository) DeleteMaintenanceRecord(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctx, `DELETE FROM maintenance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete maintenance record: %w", err)
	}
	return expectOneRow(result, ErrMaintenanceRecordNotFound)
}

// GetLatestMaintenanceForAsset returns the most recently performed record for an asset.
func (r *maintenanceRepository) GetLatestMaintenanceForAsset(ctx context.Context, kind model.AssetKind, assetID uuid.UUID) (*model.MaintenanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_records
		WHERE asset_kind = $1 AND asset_id = $2
		ORDER BY performed_at DESC, created_at DESC
		LIMIT 1`

	m, err := scanMaintenanceRecord(r.DB.QueryRowContext(ctx, query, string(kind), assetID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMaintenanceRecordNotFound
		}
		return nil, fmt.Errorf("failed to get latest maintenance: %w", err)
	}
	return &m, nil
}

// DeleteMaintenanceForAsset drops the whole history of an asset.
func (r *maintenanceRepository) DeleteMaintenanceForAsset(ctx context.Context, kind model.AssetKind, assetID uuid.UUID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM maintenance_records WHERE asset_kind = $1 AND asset_id = $2`, string(kind), assetID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete maintenance history: %w", err)
	}
	return result.RowsAffected()
}
