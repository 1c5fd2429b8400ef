package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"maintenance-tracker-api/internal/model"

	"github.com/google/uuid"
)

const peripheralColumns = `id, name, type, manufacturer, model, serial_number, asset_tag, location, equipment_id, status, last_maintenance, next_maintenance, maintenance_interval_days, notes, created_at, updated_at`

type peripheralRepository struct {
	DB *sql.DB
}

// NewPeripheralRepository creates a new PeripheralRepository.
func NewPeripheralRepository(db *sql.DB) PeripheralRepository {
	return &peripheralRepository{DB: db}
}

func scanPeripheral(row rowScanner) (model.Peripheral, error) {
	var (
		p           model.Peripheral
		equipmentID uuid.NullUUID
		last, next  sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.Manufacturer, &p.Model, &p.SerialNumber,
		&p.AssetTag, &p.Location, &equipmentID, &p.Status, &last, &next,
		&p.MaintenanceIntervalDays, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if equipmentID.Valid {
		id := equipmentID.UUID
		p.EquipmentID = &id
	}
	p.LastMaintenance = toTimePtr(last)
	p.NextMaintenance = toTimePtr(next)
	return p, nil
}

func (r *peripheralRepository) queryPeripherals(ctx context.Context, query string, args ...any) ([]model.Peripheral, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query peripherals: %w", err)
	}
	defer rows.Close()

	items := []model.Peripheral{}
	for rows.Next() {
		p, err := scanPeripheral(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan peripheral: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

// CreatePeripheral adds a new peripheral to the database.
func (r *peripheralRepository) CreatePeripheral(ctx context.Context, p model.Peripheral) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		INSERT INTO peripherals (id, name, type, manufacturer, model, serial_number, asset_tag, location, equipment_id, status, last_maintenance, next_maintenance, maintenance_interval_days, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.DB.ExecContext(ctx, query,
		p.ID, p.Name, string(p.Type), p.Manufacturer, p.Model, p.SerialNumber, p.AssetTag,
		p.Location, p.EquipmentID, string(p.Status), p.LastMaintenance, p.NextMaintenance,
		p.MaintenanceIntervalDays, p.Notes,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err, "peripherals_asset_tag_key"); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, p.AssetTag)
		}
		return fmt.Errorf("failed to create peripheral: %w", err)
	}
	return nil
}

// GetPeripheralByID retrieves a peripheral by its ID.
func (r *peripheralRepository) GetPeripheralByID(ctx context.Context, id uuid.UUID) (*model.Peripheral, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	p, err := scanPeripheral(r.DB.QueryRowContext(ctx, `SELECT `+peripheralColumns+` FROM peripherals WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPeripheralNotFound
		}
		return nil, fmt.Errorf("failed to get peripheral: %w", err)
	}
	return &p, nil
}

// ListPeripherals retrieves peripherals matching filter, ordered by name.
func (r *peripheralRepository) ListPeripherals(ctx context.Context, filter PeripheralFilter, params PaginationParams) (*PaginatedResult[model.Peripheral], error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	where := &whereClause{}
	if filter.Type != "" {
		where.add("type = ?", string(filter.Type))
	}
	if filter.Status != "" {
		where.add("status = ?", string(filter.Status))
	}
	if filter.EquipmentID != nil {
		where.add("equipment_id = ?", *filter.EquipmentID)
	}
	if filter.Search != "" {
		where.add("(name ILIKE ? OR asset_tag ILIKE ? OR serial_number ILIKE ?)", likePattern(filter.Search))
	}

	query, args := paginate(`SELECT `+peripheralColumns+` FROM peripherals`+where.String()+` ORDER BY name, asset_tag`, where.args, params)

	items, err := r.queryPeripherals(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	total, err := countRows(ctx, r.DB, "peripherals", where)
	if err != nil {
		return nil, err
	}

	return &PaginatedResult[model.Peripheral]{Items: items, TotalCount: total}, nil
}

// UpdatePeripheral replaces every mutable column of the peripheral identified by p.ID.
func (r *peripheralRepository) UpdatePeripheral(ctx context.Context, p model.Peripheral) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		UPDATE peripherals
		SET name = $1, type = $2, manufacturer = $3, model = $4, serial_number = $5, asset_tag = $6, location = $7, equipment_id = $8, status = $9, last_maintenance = $10, next_maintenance = $11, maintenance_interval_days = $12, notes = $13, updated_at = CURRENT_TIMESTAMP
		WHERE id = $14`

	result, err := r.DB.ExecContext(ctx, query,
		p.Name, string(p.Type), p.Manufacturer, p.Model, p.SerialNumber, p.AssetTag, p.Location,
		p.EquipmentID, string(p.Status), p.LastMaintenance, p.NextMaintenance,
		p.MaintenanceIntervalDays, p.Notes, p.ID,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err, "peripherals_asset_tag_key"); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, p.AssetTag)
		}
		return fmt.Errorf("failed to update peripheral: %w", err)
	}
	return expectOneRow(result, ErrPeripheralNotFound)
}

// DeletePeripheral removes a peripheral from the database.
func (r *peripheralRepository) DeletePeripheral(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctx, `DELETE FROM peripherals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete peripheral: %w", err)
	}
	return expectOneRow(result, ErrPeripheralNotFound)
}

// DetachPeripheralsFromEquipment clears the connected computer of every peripheral attached to equipmentID.
func (r *peripheralRepository) DetachPeripheralsFromEquipment(ctx context.Context, equipmentID uuid.UUID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctx,
		`UPDATE peripherals SET equipment_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE equipment_id = $1`, equipmentID)
	if err != nil {
		return 0, fmt.Errorf("failed to detach peripherals: %w", err)
	}
	return result.RowsAffected()
}

// GetPeripheralsDueForMaintenance returns non-retired peripherals whose next maintenance falls before the given time.
func (r *peripheralRepository) GetPeripheralsDueForMaintenance(ctx context.Context, before time.Time) ([]model.Peripheral, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	query := `SELECT ` + peripheralColumns + ` FROM peripherals
		WHERE status <> 'retired' AND next_maintenance IS NOT NULL AND next_maintenance < $1
		ORDER BY next_maintenance`

	return r.queryPeripherals(ctx, query, before)
}

// CountPeripheralsByStatus returns the number of peripherals per status.
func (r *peripheralRepository) CountPeripheralsByStatus(ctx context.Context) (map[model.AssetStatus]int, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	return countByStatus(ctx, r.DB, `SELECT status, COUNT(*) FROM peripherals GROUP BY status`)
}
