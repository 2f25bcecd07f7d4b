package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bgg-mirror-api/internal/bgg"
	"bgg-mirror-api/internal/cache"
	"bgg-mirror-api/internal/config"
	"bgg-mirror-api/internal/handler"
	"bgg-mirror-api/internal/notify"
	"bgg-mirror-api/internal/repository"
	"bgg-mirror-api/internal/router"
	"bgg-mirror-api/internal/service"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting BGG mirror API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize the durable store
	db, err := repository.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repos := service.Repositories{
		Games:       repository.NewGameRepository(db),
		Accessories: repository.NewAccessoryRepository(db),
		HotGames:    repository.NewHotGameRepository(db),
		HotPersons:  repository.NewHotPersonRepository(db),
		Plays:       repository.NewPlayRepository(db),
	}

	// Initialize the fingerprint store. Without Redis it degrades to an
	// in-memory cache: change detection still works within one process
	// lifetime, every restart just re-fetches everything once.
	var fingerprintCache cache.Cache
	if addr := cfg.Fingerprint.Address(); addr != "" {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     addr,
			Password: cfg.Fingerprint.Password,
			DB:       cfg.Fingerprint.DB,
		})
		if err != nil {
			log.Printf("Warning: fingerprint Redis unavailable, using in-memory store: %v", err)
			fingerprintCache = cache.NewMemoryCache()
		} else {
			defer redisCache.Close()
			fingerprintCache = redisCache
			log.Println("Fingerprint Redis store initialized")
		}
	} else {
		log.Println("Fingerprint Redis not configured, using in-memory store")
		fingerprintCache = cache.NewMemoryCache()
	}
	fingerprints := cache.NewFingerprintStore(fingerprintCache)

	// Initialize the session store (optional, shares sessions across
	// instances)
	var sessionStore *cache.SessionStore
	if addr := cfg.Session.Address(); addr != "" {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     addr,
			Password: cfg.Session.Password,
			DB:       cfg.Session.DB,
		})
		if err != nil {
			log.Printf("Warning: session Redis unavailable, sessions stay in-process: %v", err)
		} else {
			defer redisCache.Close()
			sessionStore = cache.NewSessionStore(redisCache)
			log.Println("Session Redis store initialized")
		}
	}

	// Initialize the BGG client. The session cache is only created when
	// credentials are configured; without it the play sync reports an auth
	// error and everything else still works.
	var session *bgg.SessionCache
	if cfg.BGG.HasCredentials() {
		session = bgg.NewSessionCache(bgg.SessionConfig{
			Username:  cfg.BGG.Username,
			Password:  cfg.BGG.Password,
			LoginURL:  cfg.BGG.LoginURL,
			UserAgent: cfg.BGG.UserAgent,
			TTL:       cfg.BGG.SessionTTL,
			Timeout:   cfg.BGG.RequestTimeout,
		}, sessionStore)
	} else {
		log.Println("BGG credentials not configured, private data sync disabled")
	}

	client := bgg.NewClient(bgg.ClientConfig{
		APIURL:         cfg.BGG.APIURL,
		PlaysURL:       cfg.BGG.PlaysURL,
		UserAgent:      cfg.BGG.UserAgent,
		Timeout:        cfg.BGG.RequestTimeout,
		MaxRetries:     cfg.BGG.MaxRetries,
		RetryBaseDelay: cfg.BGG.RetryBaseDelay,
		RateLimit:      cfg.BGG.RateLimit,
	}, session)

	// Initialize the sync-summary notifier
	var notifier notify.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notifier = notify.NewTelegramNotifier(cfg.Telegram)
		log.Println("Telegram notifier initialized")
	}

	// Initialize the orchestrator and scheduler
	orchestrator := service.NewSyncOrchestrator(client, fingerprints, repos, notifier, cfg.BGG.Username)
	scheduler := service.NewSyncScheduler(orchestrator, cfg.Sync)
	scheduler.Start()

	// Initialize handlers
	healthHandler := handler.New(db, cfg.App.Version)
	catalogHandler := handler.NewCatalogHandler(repos)
	syncHandler := handler.NewSyncHandler(orchestrator)

	// Create router
	r := router.New(router.Config{
		Handler:        healthHandler,
		CatalogHandler: catalogHandler,
		SyncHandler:    syncHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
