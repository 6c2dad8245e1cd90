package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventsync/eventsync/internal/auth"
	"github.com/eventsync/eventsync/internal/database"
)

// createTestServer creates a minimal server for testing with just the database
func createTestServer(t *testing.T) *Server {
	t.Helper()
	return &Server{
		db:          database.NewTestDB(t),
		frontendURL: "http://localhost:3000",
	}
}

// withAuthContext adds user context to a request for testing authenticated endpoints
func withAuthContext(r *http.Request, testUser *database.TestUser) *http.Request {
	user := &auth.User{
		ID:       testUser.ID,
		GoogleID: testUser.GoogleID,
		Email:    testUser.Email,
		Name:     testUser.Name,
	}
	ctx := context.WithValue(r.Context(), auth.UserContextKey, user)
	return r.WithContext(ctx)
}

func TestHandleHealthCheck(t *testing.T) {
	t.Run("healthy without assistant", func(t *testing.T) {
		s := createTestServer(t)

		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()

		s.handleHealthCheck(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)

		assert.Equal(t, "healthy", response["status"])
		assert.Equal(t, "disabled", response["assistant"])
	})
}
