package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shivenk/gatepass/internal/model"
	"github.com/shivenk/gatepass/internal/utils"
)

// ErrUsernameExists is returned by Create when the username is taken.
var ErrUsernameExists = errors.New("username already exists")

// UserRepo mirrors the 'users' table: guard and admin accounts.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user with a bcrypt-hashed password and returns its ID.
// Shift is nil for admins.
func (r *UserRepo) Create(ctx context.Context, username, password, role string, shift *string, cost int) (uint64, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, role, shift) VALUES (?,?,?,?)",
		username, hash, role, shift)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var (
		u     model.User
		shift sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,role,shift,created_at FROM users WHERE username=? LIMIT 1",
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &shift, &u.CreatedAt)
	if shift.Valid {
		s := shift.String
		u.Shift = &s
	}
	return u, err
}

// UsernamesByRole returns the usernames holding the given role, with an
// optional shift restriction for guards. Pass an empty shift to list
// every holder of the role.
func (r *UserRepo) UsernamesByRole(ctx context.Context, role, shift string) ([]string, error) {
	q := "SELECT username FROM users WHERE role = ?"
	args := []any{role}
	if shift != "" {
		q += " AND shift = ?"
		args = append(args, shift)
	}
	q += " ORDER BY username"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := make([]string, 0)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// ResetPassword replaces the stored hash for the named user, reporting
// whether such a user exists.
func (r *UserRepo) ResetPassword(ctx context.Context, username, newPassword string, cost int) (bool, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	hash, err := utils.HashPassword(newPassword, cost)
	if err != nil {
		return false, err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE username = ?", hash, username)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
