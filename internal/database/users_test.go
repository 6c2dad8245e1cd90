package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "bob@x.com", NormalizeEmail("  Bob@X.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestGetUserByEmail(t *testing.T) {
	db := NewTestDB(t)
	user := CreateTestUserWithEmail(t, db, "carol@example.com")

	t.Run("lookup is case-insensitive via normalization", func(t *testing.T) {
		found, err := db.GetUserByEmail("Carol@Example.COM")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("unknown email returns nil", func(t *testing.T) {
		found, err := db.GetUserByEmail("nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestSearchUsersByEmail(t *testing.T) {
	db := NewTestDB(t)
	CreateTestUserWithEmail(t, db, "dave@acme.org")
	CreateTestUserWithEmail(t, db, "diana@acme.org")
	CreateTestUserWithEmail(t, db, "erin@other.net")

	users, err := db.SearchUsersByEmail("acme", 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "dave@acme.org", users[0].Email)
	assert.Equal(t, "diana@acme.org", users[1].Email)
}

func TestLinkPendingInvitations(t *testing.T) {
	db := NewTestDB(t)
	owner := CreateTestUser(t, db)
	event := createTestEvent(t, db, owner.ID, "Launch", time.Now().UTC())

	_, err := db.CreateInvitation(&Invitation{
		EventID:      event.ID,
		InviteeEmail: "newcomer@example.com",
	})
	require.NoError(t, err)

	// Newcomer registers later; their pending invitation gets attached.
	newcomer := CreateTestUserWithEmail(t, db, "newcomer@example.com")
	linked, err := db.LinkPendingInvitations(newcomer.Email, newcomer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), linked)

	inv, err := db.GetInvitationByEventAndUser(event.ID, newcomer.ID)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, "newcomer@example.com", inv.InviteeEmail)

	t.Run("second link is a no-op", func(t *testing.T) {
		linked, err := db.LinkPendingInvitations(newcomer.Email, newcomer.ID)
		require.NoError(t, err)
		assert.Zero(t, linked)
	})
}
