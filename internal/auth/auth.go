package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"golang.org/x/oauth2"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/eventsync/eventsync/internal/database"
)

const (
	// SessionDuration is how long session tokens are valid
	SessionDuration = 30 * 24 * time.Hour
)

// ProfileScopes - user identity only; the token is used once at login for
// userinfo and is not stored.
var ProfileScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// Service handles Google sign-in and session tokens
type Service struct {
	db     *database.DB
	config *oauth2.Config
}

// NewService creates a new authentication service
func NewService(db *database.DB, oauthConfig *oauth2.Config) *Service {
	return &Service{
		db:     db,
		config: oauthConfig,
	}
}

// GetAuthURL returns the Google OAuth authorization URL
func (s *Service) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// GetOAuthConfig returns the OAuth config for use by other packages
func (s *Service) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// ExchangeCodeAndLogin exchanges an OAuth code, upserts the user, links any
// pending invitations addressed to their email, and creates a session.
// Returns the user and a session token.
// If redirectURI is provided, it must match the one used for the auth URL.
func (s *Service) ExchangeCodeAndLogin(ctx context.Context, code, deviceInfo, redirectURI string) (*database.User, string, error) {
	cfg := s.config
	if redirectURI != "" {
		tmp := *s.config
		tmp.RedirectURL = redirectURI
		cfg = &tmp
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to exchange code: %w", err)
	}

	googleUser, err := s.getGoogleUserInfo(ctx, token)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user info: %w", err)
	}

	user, err := s.upsertUser(googleUser)
	if err != nil {
		return nil, "", fmt.Errorf("failed to upsert user: %w", err)
	}

	// Invitations sent before this email registered become visible now.
	if linked, err := s.db.LinkPendingInvitations(user.Email, user.ID); err != nil {
		log.Printf("Warning: failed to link pending invitations for user %d: %v", user.ID, err)
	} else if linked > 0 {
		log.Printf("Linked %d pending invitation(s) to user %d", linked, user.ID)
	}

	sessionToken, err := s.createSession(user.ID, deviceInfo)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	return user, sessionToken, nil
}

// getGoogleUserInfo fetches the user profile from Google
func (s *Service) getGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*goauth2.Userinfo, error) {
	client := s.config.Client(ctx, token)
	oauth2Service, err := goauth2.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, err
	}

	return oauth2Service.Userinfo.Get().Do()
}

// upsertUser creates or updates a user from their Google profile. Matching is
// by Google ID first, then by email so accounts invited before sign-up attach
// to the same row.
func (s *Service) upsertUser(googleUser *goauth2.Userinfo) (*database.User, error) {
	email := database.NormalizeEmail(googleUser.Email)
	if email == "" {
		return nil, fmt.Errorf("google profile has no email")
	}
	now := time.Now().UTC()

	existing, err := s.findByGoogleIDOrEmail(googleUser.Id, email)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		result, err := s.db.Exec(`
			INSERT INTO users (google_id, email, name, avatar_url, created_at, updated_at, last_login_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, googleUser.Id, email, googleUser.Name, googleUser.Picture, now, now, now)
		if err != nil {
			return nil, err
		}
		userID, err := result.LastInsertId()
		if err != nil {
			return nil, err
		}
		return s.db.GetUserByID(userID)
	}

	_, err = s.db.Exec(`
		UPDATE users SET google_id = ?, email = ?, name = ?, avatar_url = ?, updated_at = ?, last_login_at = ?
		WHERE id = ?
	`, googleUser.Id, email, googleUser.Name, googleUser.Picture, now, now, existing.ID)
	if err != nil {
		return nil, err
	}

	return s.db.GetUserByID(existing.ID)
}

func (s *Service) findByGoogleIDOrEmail(googleID, email string) (*database.User, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM users WHERE google_id = ?`, googleID).Scan(&id)
	if err == nil {
		return s.db.GetUserByID(id)
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	return s.db.GetUserByEmail(email)
}

// createSession creates a new session for a user
func (s *Service) createSession(userID int64, deviceInfo string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	// Hash the token for storage
	hash := sha256.Sum256([]byte(token))
	tokenHash := base64.StdEncoding.EncodeToString(hash[:])

	expiresAt := time.Now().Add(SessionDuration)

	_, err := s.db.Exec(`
		INSERT INTO user_sessions (user_id, token_hash, expires_at, device_info)
		VALUES (?, ?, ?, ?)
	`, userID, tokenHash, expiresAt, deviceInfo)
	if err != nil {
		return "", err
	}

	return token, nil
}

// ValidateSession validates a session token and returns the user
func (s *Service) ValidateSession(token string) (*User, error) {
	hash := sha256.Sum256([]byte(token))
	tokenHash := base64.StdEncoding.EncodeToString(hash[:])

	var user User
	var name, avatar sql.NullString
	var expiresAt time.Time

	err := s.db.QueryRow(`
		SELECT u.id, u.google_id, u.email, u.name, u.avatar_url, s.expires_at
		FROM user_sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token_hash = ?
	`, tokenHash).Scan(&user.ID, &user.GoogleID, &user.Email, &name, &avatar, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invalid session")
	} else if err != nil {
		return nil, err
	}
	user.Name = name.String
	user.AvatarURL = avatar.String

	if time.Now().After(expiresAt) {
		s.db.Exec(`DELETE FROM user_sessions WHERE token_hash = ?`, tokenHash)
		return nil, fmt.Errorf("session expired")
	}

	return &user, nil
}

// Logout invalidates a session token
func (s *Service) Logout(token string) error {
	hash := sha256.Sum256([]byte(token))
	tokenHash := base64.StdEncoding.EncodeToString(hash[:])

	_, err := s.db.Exec(`DELETE FROM user_sessions WHERE token_hash = ?`, tokenHash)
	return err
}

// CleanupExpiredSessions removes all expired sessions
func (s *Service) CleanupExpiredSessions() error {
	_, err := s.db.Exec(`DELETE FROM user_sessions WHERE expires_at < ?`, time.Now())
	return err
}
