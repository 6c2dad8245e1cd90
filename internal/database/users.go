package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// User represents a registered account
type User struct {
	ID          int64      `json:"id"`
	GoogleID    string     `json:"-"`
	Email       string     `json:"email"`
	Name        *string    `json:"name,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// NormalizeEmail trims and lower-cases an email address. All stored invitee
// and user emails go through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetUserByID retrieves a user by ID. Returns (nil, nil) when not found.
func (d *DB) GetUserByID(id int64) (*User, error) {
	return d.scanUser(d.QueryRow(`
		SELECT id, google_id, email, name, avatar_url, created_at, updated_at, last_login_at
		FROM users WHERE id = ?
	`, id))
}

// GetUserByEmail retrieves a user by normalized email. Returns (nil, nil) when not found.
func (d *DB) GetUserByEmail(email string) (*User, error) {
	return d.scanUser(d.QueryRow(`
		SELECT id, google_id, email, name, avatar_url, created_at, updated_at, last_login_at
		FROM users WHERE email = ?
	`, NormalizeEmail(email)))
}

func (d *DB) scanUser(row *sql.Row) (*User, error) {
	var u User
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.AvatarURL,
		&u.CreatedAt, &u.UpdatedAt, &lastLogin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if lastLogin.Valid {
		u.LastLoginAt = &lastLogin.Time
	}
	return &u, nil
}

// SearchUsersByEmail returns up to limit users whose email contains the
// given fragment. Used by the invite autocomplete.
func (d *DB) SearchUsersByEmail(fragment string, limit int) ([]User, error) {
	fragment = NormalizeEmail(fragment)
	if limit <= 0 {
		limit = 10
	}

	rows, err := d.Query(`
		SELECT id, google_id, email, name, avatar_url, created_at, updated_at, last_login_at
		FROM users
		WHERE email LIKE ?
		ORDER BY email
		LIMIT ?
	`, "%"+fragment+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var lastLogin sql.NullTime
		if err := rows.Scan(&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.AvatarURL,
			&u.CreatedAt, &u.UpdatedAt, &lastLogin); err != nil {
			return nil, err
		}
		if lastLogin.Valid {
			u.LastLoginAt = &lastLogin.Time
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// LinkPendingInvitations attaches invitations addressed to the given email
// but not yet tied to an account. Called when that email signs in for the
// first time, so earlier invites become visible to the new account.
func (d *DB) LinkPendingInvitations(email string, userID int64) (int64, error) {
	result, err := d.Exec(`
		UPDATE invitations SET user_id = ?
		WHERE invitee_email = ? AND user_id IS NULL
	`, userID, NormalizeEmail(email))
	if err != nil {
		return 0, fmt.Errorf("failed to link pending invitations: %w", err)
	}
	return result.RowsAffected()
}
