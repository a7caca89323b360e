package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shivenk/gatepass/internal/model"
)

// SessionRepo mirrors the 'sessions' table, one row per operator login.
// A session is open while logout_time is null; End uses the same
// set-if-null conditional update shape as an entry close.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Start records a fresh login.
func (r *SessionRepo) Start(ctx context.Context, username, sessionID, ip string, loginTime time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (username, session_id, ip_address, login_time) VALUES (?,?,?,?)",
		username, sessionID, ip, loginTime.UTC())
	return err
}

// End stamps logout_time on the named active session, reporting whether
// one was actually open.
func (r *SessionRepo) End(ctx context.Context, username, sessionID string, logoutTime time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET logout_time = ? WHERE username = ? AND session_id = ? AND logout_time IS NULL",
		logoutTime.UTC(), username, sessionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListNonAdmin returns guard sessions newest first, for the admin
// console's shift audit view.
func (r *SessionRepo) ListNonAdmin(ctx context.Context) ([]model.Session, error) {
	const q = `SELECT s.id, s.username, s.session_id, s.ip_address, s.login_time, s.logout_time
		FROM sessions s
		JOIN users u ON u.username = s.username
		WHERE u.role <> 'admin'
		ORDER BY s.login_time DESC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := make([]model.Session, 0)
	for rows.Next() {
		var (
			s      model.Session
			logout sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.Username, &s.SessionID, &s.IPAddress, &s.LoginTime, &logout); err != nil {
			return nil, err
		}
		if logout.Valid {
			t := logout.Time
			s.LogoutTime = &t
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
