package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 1,
		Name:    "initial_schema",
		Up:      initialSchema,
	})
}

func initialSchema(db *sql.DB) error {
	statements := []string{
		// Users table
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			google_id TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			name TEXT,
			avatar_url TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_login_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,

		// Session tokens (hashed)
		`CREATE TABLE IF NOT EXISTS user_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			token_hash TEXT UNIQUE NOT NULL,
			expires_at DATETIME NOT NULL,
			device_info TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_sessions_token ON user_sessions(token_hash)`,

		// Events table
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			owner_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			location TEXT,
			start_time DATETIME NOT NULL,
			end_time DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(owner_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_owner ON events(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_start_time ON events(start_time)`,

		// Invitations table. The UNIQUE(event_id, invitee_email) constraint is
		// the authoritative guard against duplicate invites, including racing
		// concurrent requests.
		`CREATE TABLE IF NOT EXISTS invitations (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL,
			invitee_email TEXT NOT NULL,
			user_id INTEGER,
			status TEXT NOT NULL DEFAULT 'upcoming' CHECK(status IN ('upcoming', 'attending', 'maybe', 'declined')),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(event_id) REFERENCES events(id) ON DELETE CASCADE,
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE SET NULL,
			UNIQUE(event_id, invitee_email)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invitations_event ON invitations(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invitations_user ON invitations(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invitations_email ON invitations(invitee_email)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
