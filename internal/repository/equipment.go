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

const equipmentColumns = `id, name, asset_tag, serial_number, manufacturer, model, operating_system, os_version, cpu, ram_gb, storage_gb, mac_address, ip_address, location, assigned_to, status, purchase_date, warranty_expiry, last_maintenance, next_maintenance, maintenance_interval_days, notes, created_at, updated_at`

// equipmentRepository is the PostgreSQL implementation of EquipmentRepository.
type equipmentRepository struct {
	DB *sql.DB
}

// NewEquipmentRepository creates a new EquipmentRepository.
func NewEquipmentRepository(db *sql.DB) EquipmentRepository {
	return &equipmentRepository{DB: db}
}

func scanEquipment(row rowScanner) (model.Equipment, error) {
	var (
		e                              model.Equipment
		purchase, warranty, last, next sql.NullTime
	)
	err := row.Scan(&e.ID, &e.Name, &e.AssetTag, &e.SerialNumber, &e.Manufacturer, &e.Model,
		&e.OperatingSystem, &e.OSVersion, &e.CPU, &e.RAMGB, &e.StorageGB, &e.MACAddress, &e.IPAddress,
		&e.Location, &e.AssignedTo, &e.Status, &purchase, &warranty, &last, &next,
		&e.MaintenanceIntervalDays, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return e, err
	}
	e.PurchaseDate = toTimePtr(purchase)
	e.WarrantyExpiry = toTimePtr(warranty)
	e.LastMaintenance = toTimePtr(last)
	e.NextMaintenance = toTimePtr(next)
	return e, nil
}

func (r *equipmentRepository) queryEquipment(ctx context.Context, query string, args ...any) ([]model.Equipment, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query equipment: %w", err)
	}
	defer rows.Close()

	items := []model.Equipment{}
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

// CreateEquipment adds a new computer to the database.
func (r *equipmentRepository) CreateEquipment(ctx context.Context, e model.Equipment) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		INSERT INTO equipment (id, name, asset_tag, serial_number, manufacturer, model, operating_system, os_version, cpu, ram_gb, storage_gb, mac_address, ip_address, location, assigned_to, status, purchase_date, warranty_expiry, last_maintenance, next_maintenance, maintenance_interval_days, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Name, e.AssetTag, e.SerialNumber, e.Manufacturer, e.Model,
		e.OperatingSystem, e.OSVersion, e.CPU, e.RAMGB, e.StorageGB, e.MACAddress, e.IPAddress,
		e.Location, e.AssignedTo, string(e.Status), e.PurchaseDate, e.WarrantyExpiry,
		e.LastMaintenance, e.NextMaintenance, e.MaintenanceIntervalDays, e.Notes,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err, "equipment_asset_tag_key"); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, e.AssetTag)
		}
		return fmt.Errorf("failed to create equipment: %w", err)
	}
	return nil
}

// GetEquipmentByID retrieves a computer by its ID.
func (r *equipmentRepository) GetEquipmentByID(ctx context.Context, id uuid.UUID) (*model.Equipment, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1`

	e, err := scanEquipment(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}
	return &e, nil
}

func equipmentWhere(f EquipmentFilter) *whereClause {
	w := &whereClause{}
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	if f.Location != "" {
		w.add("location ILIKE ?", likePattern(f.Location))
	}
	if f.AssignedTo != "" {
		w.add("assigned_to ILIKE ?", f.AssignedTo)
	}
	if f.Search != "" {
		w.add("(name ILIKE ? OR asset_tag ILIKE ? OR serial_number ILIKE ?)", likePattern(f.Search))
	}
	return w
}

// ListEquipment retrieves computers matching filter, ordered by name.
func (r *equipmentRepository) ListEquipment(ctx context.Context, filter EquipmentFilter, params PaginationParams) (*PaginatedResult[model.Equipment], error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	where := equipmentWhere(filter)
	query, args := paginate(`SELECT `+equipmentColumns+` FROM equipment`+where.String()+` ORDER BY name, asset_tag`, where.args, params)

	items, err := r.queryEquipment(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	total, err := countRows(ctx, r.DB, "equipment", where)
	if err != nil {
		return nil, err
	}

	return &PaginatedResult[model.Equipment]{Items: items, TotalCount: total}, nil
}

// UpdateEquipment replaces every mutable column of the computer identified by e.ID.
func (r *equipmentRepository) UpdateEquipment(ctx context.Context, e model.Equipment) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		UPDATE equipment
		SET name = $1, asset_tag = $2, serial_number = $3, manufacturer = $4, model = $5, operating_system = $6, os_version = $7, cpu = $8, ram_gb = $9, storage_gb = $10, mac_address = $11, ip_address = $12, location = $13, assigned_to = $14, status = $15, purchase_date = $16, warranty_expiry = $17, last_maintenance = $18, next_maintenance = $19, maintenance_interval_days = $20, notes = $21, updated_at = CURRENT_TIMESTAMP
		WHERE id = $22`

	result, err := r.DB.ExecContext(ctx, query,
		e.Name, e.AssetTag, e.SerialNumber, e.Manufacturer, e.Model, e.OperatingSystem,
		e.OSVersion, e.CPU, e.RAMGB, e.StorageGB, e.MACAddress, e.IPAddress, e.Location,
		e.AssignedTo, string(e.Status), e.PurchaseDate, e.WarrantyExpiry, e.LastMaintenance,
		e.NextMaintenance, e.MaintenanceIntervalDays, e.Notes, e.ID,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err, "equipment_asset_tag_key"); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, e.AssetTag)
		}
		return fmt.Errorf("failed to update equipment: %w", err)
	}
	return expectOneRow(result, ErrEquipmentNotFound)
}

// DeleteEquipment removes a computer from the database.
func (r *equipmentRepository) DeleteEquipment(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete equipment: %w", err)
	}
	return expectOneRow(result, ErrEquipmentNotFound)
}

// GetEquipmentDueForMaintenance returns non-retired computers whose next maintenance falls before the given time.
func (r *equipmentRepository) GetEquipmentDueForMaintenance(ctx context.Context, before time.Time) ([]model.Equipment, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	query := `SELECT ` + equipmentColumns + ` FROM equipment
		WHERE status <> 'retired' AND next_maintenance IS NOT NULL AND next_maintenance < $1
		ORDER BY next_maintenance`

	return r.queryEquipment(ctx, query, before)
}

// CountEquipmentByStatus returns the number of computers per status.
func (r *equipmentRepository) CountEquipmentByStatus(ctx context.Context) (map[model.AssetStatus]int, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	return countByStatus(ctx, r.DB, `SELECT status, COUNT(*) FROM equipment GROUP BY status`)
}

func countByStatus(ctx context.Context, db *sql.DB, query string) (map[model.AssetStatus]int, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.AssetStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[model.AssetStatus(status)] = n
	}
	return counts, rows.Err()
}
