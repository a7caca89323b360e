// Package repository implements persistence over MySQL. EntryRepo is
// the production gate.EntryStore; UserRepo and SessionRepo back the
// peripheral operator accounts and login sessions.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shivenk/gatepass/internal/gate"
	"github.com/shivenk/gatepass/internal/model"
)

// entryColumns is the scan order shared by every entry query.
const entryColumns = `entry_id, name, contact_no, destination, reason,
	vehicle_type, vehicle_no, in_time, out_time,
	no_driver, no_student, no_visitor, no_person, remarks`

// EntryRepo provides data access to the gate_entries and
// gate_entry_counters tables. All timestamps are stored in UTC; callers
// localize for display. Conditional updates (close, latest-open close,
// remark append) are single statements, so MySQL's row atomicity gives
// the at-most-one-transition guarantee without explicit transactions.
type EntryRepo struct {
	db *sql.DB
}

// NewEntryRepo returns an EntryRepo bound to the given database.
func NewEntryRepo(db *sql.DB) *EntryRepo { return &EntryRepo{db: db} }

// storeErr tags an infrastructure failure with the core's sentinel so
// callers can classify it without importing driver types.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, gate.ErrStorageUnavailable)
}

// Insert persists a fully-populated entry as one atomic statement.
func (r *EntryRepo) Insert(ctx context.Context, e *model.Entry) error {
	const q = `INSERT INTO gate_entries
		(entry_id, name, contact_no, destination, reason,
		 vehicle_type, vehicle_no, in_time,
		 no_driver, no_student, no_visitor, no_person, remarks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		e.EntryID, e.Name, e.ContactNo, e.Destination, e.Reason,
		e.VehicleType, e.VehicleNo, e.InTime.UTC(),
		e.NoDriver, e.NoStudent, e.NoVisitor, e.NoPerson, e.Remarks)
	if err != nil {
		return storeErr("insert entry", err)
	}
	return nil
}

// GetByID returns the entry with the given identifier, or nil when it
// does not exist.
func (r *EntryRepo) GetByID(ctx context.Context, entryID string) (*model.Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM gate_entries WHERE entry_id = ? LIMIT 1`
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, entryID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get entry", err)
	}
	return e, nil
}

// NextDailySequence atomically increments and returns the counter row
// for the given YYYYMMDD key. The LAST_INSERT_ID trick makes both the
// fresh-day insert and the increment path report the new value through
// the session's last-insert id, serializing concurrent allocators on
// the counter row lock.
func (r *EntryRepo) NextDailySequence(ctx context.Context, dateKey string) (int, error) {
	const q = `INSERT INTO gate_entry_counters (date_key, seq)
		VALUES (?, LAST_INSERT_ID(1))
		ON DUPLICATE KEY UPDATE seq = LAST_INSERT_ID(seq + 1)`
	res, err := r.db.ExecContext(ctx, q, dateKey)
	if err != nil {
		return 0, storeErr("next daily sequence", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("next daily sequence", err)
	}
	return int(seq), nil
}

// CloseByID stamps out_time on the named entry only while it is still
// open. The out_time IS NULL guard in the WHERE clause is the
// compare-and-set: a second close matches zero rows.
func (r *EntryRepo) CloseByID(ctx context.Context, entryID string, outTime time.Time) (bool, error) {
	const q = `UPDATE gate_entries SET out_time = ?
		WHERE entry_id = ? AND out_time IS NULL`
	res, err := r.db.ExecContext(ctx, q, outTime.UTC(), entryID)
	if err != nil {
		return false, storeErr("close entry", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("close entry", err)
	}
	return n > 0, nil
}

// CloseLatestOpenBy closes the most recent open entry matching the
// selector column in one statement. MySQL applies the ORDER BY and
// LIMIT inside the UPDATE, so selection and transition are a single
// atomic operation and concurrent exits for the same plate or phone
// close distinct entries.
func (r *EntryRepo) CloseLatestOpenBy(ctx context.Context, field gate.SelectorField, value string, outTime time.Time) (bool, error) {
	var col string
	switch field {
	case gate.SelectByVehicle:
		col = "vehicle_no"
	case gate.SelectByContact:
		col = "contact_no"
	case gate.SelectByEntryID:
		return r.CloseByID(ctx, value, outTime)
	default:
		return false, fmt.Errorf("%w: unknown selector %q", gate.ErrValidation, string(field))
	}
	q := `UPDATE gate_entries SET out_time = ?
		WHERE ` + col + ` = ? AND out_time IS NULL
		ORDER BY in_time DESC LIMIT 1`
	res, err := r.db.ExecContext(ctx, q, outTime.UTC(), value)
	if err != nil {
		return false, storeErr("close latest open entry", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("close latest open entry", err)
	}
	return n > 0, nil
}

// AppendRemark appends a space-separated token to remarks, leaving all
// other columns untouched.
func (r *EntryRepo) AppendRemark(ctx context.Context, entryID, token string) (bool, error) {
	const q = `UPDATE gate_entries
		SET remarks = TRIM(CONCAT(COALESCE(remarks, ''), ' ', ?))
		WHERE entry_id = ?`
	res, err := r.db.ExecContext(ctx, q, token, entryID)
	if err != nil {
		return false, storeErr("append remark", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("append remark", err)
	}
	return n > 0, nil
}

// List returns one page of matching entries, newest first, plus the
// total match count for pagination.
func (r *EntryRepo) List(ctx context.Context, f gate.Filter, p gate.Page) ([]model.Entry, int, error) {
	cond, args := filterClause(f)

	var total int
	countQ := `SELECT COUNT(*) FROM gate_entries WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, storeErr("count entries", err)
	}

	dataQ := `SELECT ` + entryColumns + ` FROM gate_entries WHERE ` + cond + `
		ORDER BY in_time DESC LIMIT ? OFFSET ?`
	dataArgs := append(append([]any{}, args...), p.Limit, p.Offset)
	rows, err := r.db.QueryContext(ctx, dataQ, dataArgs...)
	if err != nil {
		return nil, 0, storeErr("list entries", err)
	}
	defer rows.Close()

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, 0, storeErr("list entries", err)
	}
	return entries, total, nil
}

// ListOpen returns every open entry matching the filter, newest first.
func (r *EntryRepo) ListOpen(ctx context.Context, f gate.Filter) ([]model.Entry, error) {
	cond, args := filterClause(f)
	q := `SELECT ` + entryColumns + ` FROM gate_entries
		WHERE out_time IS NULL AND ` + cond + `
		ORDER BY in_time DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storeErr("list open entries", err)
	}
	defer rows.Close()

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, storeErr("list open entries", err)
	}
	return entries, nil
}

// RecentByContact returns up to limit most recent entries for a phone
// number, newest first.
func (r *EntryRepo) RecentByContact(ctx context.Context, contactNo string, limit int) ([]model.Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM gate_entries
		WHERE contact_no = ? ORDER BY in_time DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, contactNo, limit)
	if err != nil {
		return nil, storeErr("recent entries by contact", err)
	}
	defer rows.Close()

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, storeErr("recent entries by contact", err)
	}
	return entries, nil
}

// filterClause translates a gate.Filter into a WHERE condition and its
// arguments. Substring fields match case-insensitively; the date field
// becomes a half-open range over in_time.
func filterClause(f gate.Filter) (string, []any) {
	switch f.Field {
	case gate.FieldID:
		return "LOWER(entry_id) LIKE ?", []any{"%" + strings.ToLower(f.Pattern) + "%"}
	case gate.FieldName:
		return "LOWER(name) LIKE ?", []any{"%" + strings.ToLower(f.Pattern) + "%"}
	case gate.FieldContact:
		return "LOWER(contact_no) LIKE ?", []any{"%" + strings.ToLower(f.Pattern) + "%"}
	case gate.FieldDate:
		return "in_time >= ? AND in_time < ?", []any{f.DayStart.UTC(), f.DayEnd.UTC()}
	default:
		return "1=1", nil
	}
}

// rowScanner lets scanEntry work on both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (*model.Entry, error) {
	var (
		e         model.Entry
		vehicleNo sql.NullString
		outTime   sql.NullTime
		remarks   sql.NullString
	)
	err := s.Scan(
		&e.EntryID, &e.Name, &e.ContactNo, &e.Destination, &e.Reason,
		&e.VehicleType, &vehicleNo, &e.InTime, &outTime,
		&e.NoDriver, &e.NoStudent, &e.NoVisitor, &e.NoPerson, &remarks)
	if err != nil {
		return nil, err
	}
	if vehicleNo.Valid {
		v := vehicleNo.String
		e.VehicleNo = &v
	}
	if outTime.Valid {
		t := outTime.Time
		e.OutTime = &t
	}
	if remarks.Valid {
		rm := remarks.String
		e.Remarks = &rm
	}
	return &e, nil
}

func collectEntries(rows *sql.Rows) ([]model.Entry, error) {
	entries := make([]model.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
