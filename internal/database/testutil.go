package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates an in-memory SQLite database for testing.
// The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestUser represents a user created for testing
type TestUser struct {
	ID       int64
	GoogleID string
	Email    string
	Name     string
}

var testUserCounter int64 = 0

// CreateTestUser creates a unique test user with an auto-generated email.
func CreateTestUser(t *testing.T, db *DB) *TestUser {
	t.Helper()
	testUserCounter++
	email := fmt.Sprintf("testuser%d@example.com", testUserCounter)
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a test user with a specific email.
func CreateTestUserWithEmail(t *testing.T, db *DB, email string) *TestUser {
	t.Helper()
	testUserCounter++

	googleID := fmt.Sprintf("test-google-id-%d", testUserCounter)
	name := fmt.Sprintf("Test User %d", testUserCounter)

	result, err := db.Exec(`
		INSERT INTO users (google_id, email, name)
		VALUES (?, ?, ?)
	`, googleID, NormalizeEmail(email), name)
	require.NoError(t, err, "failed to create test user")

	id, err := result.LastInsertId()
	require.NoError(t, err, "failed to get test user ID")

	return &TestUser{
		ID:       id,
		GoogleID: googleID,
		Email:    NormalizeEmail(email),
		Name:     name,
	}
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}
