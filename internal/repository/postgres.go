package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

const (
	readTimeout  = 5 * time.Second
	listTimeout  = 10 * time.Second
	writeTimeout = 5 * time.Second
)

// NewPostgresStore wires every repository to the same connection pool.
func NewPostgresStore(db *sql.DB) *Store {
	return &Store{
		Equipment:   NewEquipmentRepository(db),
		Peripherals: NewPeripheralRepository(db),
		Maintenance: NewMaintenanceRepository(db),
		Tickets:     NewTicketRepository(db),
		closer:      db.Close,
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// whereClause accumulates AND-ed conditions with numbered placeholders.
type whereClause struct {
	conds []string
	args  []any
}

func (w *whereClause) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereClause) addRaw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// paginate appends LIMIT/OFFSET placeholders to query and returns the extended argument list.
func paginate(query string, args []any, params PaginationParams) (string, []any) {
	if params.Limit <= 0 {
		return query, args
	}
	args = append(args, params.Offset, params.Limit)
	return fmt.Sprintf("%s OFFSET $%d LIMIT $%d", query, len(args)-1, len(args)), args
}

func countRows(ctx context.Context, db *sql.DB, table string, where *whereClause) (int, error) {
	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+where.String(), where.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return total, nil
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// isUniqueViolation reports a PostgreSQL unique constraint failure (SQLSTATE 23505).
func isUniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint, true
	}
	return "", false
}

// mapUniqueViolation translates duplicate key errors on asset tables into sentinel errors.
func mapUniqueViolation(err error, assetTagConstraint string) error {
	constraint, ok := isUniqueViolation(err)
	if !ok {
		return nil
	}
	if constraint == assetTagConstraint {
		return ErrDuplicateAssetTag
	}
	return ErrDuplicateID
}

func toTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
