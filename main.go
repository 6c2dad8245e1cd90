package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/eventsync/eventsync/internal/assistant"
	"github.com/eventsync/eventsync/internal/auth"
	"github.com/eventsync/eventsync/internal/config"
	"github.com/eventsync/eventsync/internal/database"
	"github.com/eventsync/eventsync/internal/genai"
	"github.com/eventsync/eventsync/internal/notify"
	"github.com/eventsync/eventsync/internal/server"
)

func main() {
	cfg := config.LoadFromEnv()

	db, err := database.New(cfg.DBPath)
	if err != nil {
		fatal("creating database", err)
	}
	defer db.Close()

	notifyService := initNotifyService(cfg)
	authService := initAuthService(db, cfg)
	assistantService := initAssistantService(db, cfg, notifyService)

	srv := server.New(server.Config{
		DB:               db,
		AuthService:      authService,
		AssistantService: assistantService,
		NotifyService:    notifyService,
		FrontendURL:      cfg.FrontendURL,
		Port:             cfg.HTTPPort,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "HTTP server error: %v\n", err)
		}
	}()

	if authService != nil {
		go sessionCleanupLoop(authService)
	}

	waitForShutdown(srv)
}

func initAuthService(db *database.DB, cfg *config.Config) *auth.Service {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		fmt.Println("Warning: GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set, sign-in disabled")
		return nil
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.FrontendURL + "/auth/callback",
		Scopes:       auth.ProfileScopes,
	}

	fmt.Println("Google sign-in configured")
	return auth.NewService(db, oauthConfig)
}

func initAssistantService(db *database.DB, cfg *config.Config, notifyService *notify.Service) *assistant.Service {
	if cfg.GeminiAPIKey == "" {
		fmt.Println("Warning: GEMINI_API_KEY not set, assistant disabled")
	}

	model := genai.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	fmt.Printf("Assistant configured (model %s)\n", cfg.GeminiModel)
	return assistant.NewService(db, model, notifyService)
}

func initNotifyService(cfg *config.Config) *notify.Service {
	var emailNotifier notify.Notifier
	if cfg.ResendAPIKey != "" {
		if n := notify.NewResendNotifier(cfg.ResendAPIKey, cfg.EmailFrom, cfg.FrontendURL); n != nil {
			emailNotifier = n
			fmt.Println("Email notification service configured (Resend)")
		}
	}

	return notify.NewService(emailNotifier)
}

// sessionCleanupLoop prunes expired sessions once a day.
func sessionCleanupLoop(authService *auth.Service) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			fmt.Printf("Warning: session cleanup failed: %v\n", err)
		}
	}
}

func fatal(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}

func waitForShutdown(srv *server.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	fmt.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv.Shutdown(ctx)
}
