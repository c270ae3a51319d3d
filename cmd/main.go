package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"sign-relay/auth"
	"sign-relay/handlers"
	"sign-relay/moderation"
	"sign-relay/repositories"
	"sign-relay/runtime"
	"sign-relay/runtime/workers"
	"sign-relay/services"
	"sign-relay/translation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Returning an error instead of calling os.Exit keeps every defer (database
// and cache teardown included) on the shutdown path.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Message store (SQLite)
	db, err := repositories.OpenStore(config.DatabasePath)
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing SQLite...")
		_ = db.Close()
	}()

	// 3. Video lookup cache (BadgerDB)
	cacheDB, err := badger.Open(badger.DefaultOptions(config.CachePath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("cache opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = cacheDB.Close()
	}()

	if err := os.MkdirAll(config.VideoDir, 0o755); err != nil {
		return fmt.Errorf("video directory creation failed: %w", err)
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervised background workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewCacheJanitorWorker(log, cacheDB, config.GCInterval))
	supervisorDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supervisorDone)
	}()

	// 6. Core wiring
	registry := runtime.NewRegistry(log)
	replacement, err := config.CensorRune()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	moderator, err := moderation.NewDefaultModerator(replacement)
	if err != nil {
		return fmt.Errorf("moderator setup failed: %w", err)
	}
	messageRepository := repositories.NewMessageRepository(db, log)
	userRepository := repositories.NewUserRepository(db)
	router := runtime.NewRouter(log, registry, messageRepository, moderator)

	issuer := auth.NewTokenIssuer([]byte(config.TokenSecret), config.TokenDuration)
	authService := services.NewAuthService(userRepository, issuer)

	cache := translation.NewVideoCache(cacheDB, log, config.CacheTTL)
	scraper := translation.NewScraper(log)
	translator := translation.NewTranslator(log, cache, scraper)

	// 7. HTTP surface
	httpHandler := handlers.NewHTTPHandler(log, authService, messageRepository, translator)
	wsHandler := handlers.NewWSHandler(log, router, registry, config.ConnectionBufferSize)
	healthHandler := handlers.NewHealthHandler(log)
	app := handlers.NewApp(httpHandler, wsHandler, healthHandler, config.VideoDir)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := app.Listen(address); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	if err := app.Shutdown(); err != nil {
		log.Warn("HTTP shutdown failed", "err", err)
	}
	sup.Stop()
	<-supervisorDone
	log.Info("Program stopped cleanly")

	return nil
}
