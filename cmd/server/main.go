package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"messenger/internal/config"
	"messenger/internal/httpserver"
	"messenger/internal/security"
	"messenger/internal/store/postgres"
	"messenger/internal/store/sqlite"
	"messenger/internal/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize the store for the configured driver
	var repos httpserver.Repos
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(cfg.PostgresURL)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if err := postgres.Migrate(db); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		repos = httpserver.Repos{
			Users:         postgres.NewUserRepo(db),
			Conversations: postgres.NewConversationRepo(db),
			Messages:      postgres.NewMessageRepo(db),
			Participants:  postgres.NewParticipantRepo(db),
		}
	default:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if err := sqlite.Migrate(db); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		repos = httpserver.Repos{
			Users:         sqlite.NewUserRepo(db),
			Conversations: sqlite.NewConversationRepo(db),
			Messages:      sqlite.NewMessageRepo(db),
			Participants:  sqlite.NewParticipantRepo(db),
		}
	}

	// Security components
	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	passwordHasher := security.NewPasswordHasher(0)

	encryptor, err := security.NewEncryptor([]byte(cfg.EncryptKey), cfg.LegacyEncryptKeys)
	if err != nil {
		log.Fatalf("failed to initialize encryptor: %v", err)
	}

	// Fan-out: hub holds live connections, the notifier feeds it.
	hub := ws.NewHub()
	notifier := ws.NewNotifier(hub, cfg.NotifyQueueSize)
	go notifier.Run()

	// Build HTTP router
	router := httpserver.NewRouter(cfg, repos, hub, notifier, tokenSvc, passwordHasher, encryptor)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Starting %s on %s\n", cfg.AppName, cfg.HTTPAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	// No more requests means no more publishes; drain the queue.
	notifier.Close()
}
