// Package main is the entry point for the Adverpress server. It loads
// configuration, connects to services, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adverpress/internal/ai"
	"adverpress/internal/cache"
	"adverpress/internal/config"
	"adverpress/internal/database"
	"adverpress/internal/handlers"
	"adverpress/internal/imaging"
	"adverpress/internal/middleware"
	"adverpress/internal/pipeline"
	"adverpress/internal/router"
	"adverpress/internal/scrape"
	"adverpress/internal/session"
	"adverpress/internal/storage"
	"adverpress/internal/store"
)

func main() {
	// Structured logger — JSON in production, text in development.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL and run pending migrations.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the default admin account and categories (no-op when present).
	if err := database.Seed(db); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (sessions, page cache, rate limiting).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	// Generation endpoints call paid providers; cap them per client.
	limiter := middleware.NewRateLimiter(valkeyClient, "ratelimit:generate", 10, time.Minute)

	// Data stores.
	userStore := store.NewUserStore(db)
	articleStore := store.NewArticleStore(db)
	productStore := store.NewProductStore(db)
	categoryStore := store.NewCategoryStore(db)

	// S3-compatible object storage for generated images (optional — the
	// pipeline cannot synthesise images without it).
	var storageClient *storage.Client
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured — image synthesis disabled")
	}

	// libvips worker pool for WebP transcoding.
	imaging.Startup(2)
	defer imaging.Shutdown()
	transcoder := imaging.NewTranscoder(82)

	// AI clients: Gemini for copy and primary images, DALL-E fallback,
	// OpenAI moderation for user-supplied prompt text.
	gemini := ai.NewGemini(ai.ClientConfig{
		APIKey:     cfg.GeminiKey,
		Model:      cfg.GeminiModel,
		ImageModel: cfg.GeminiImageModel,
		BaseURL:    cfg.GeminiBaseURL,
	})

	var fallback pipeline.FallbackImageClient
	if cfg.OpenAIKey != "" {
		fallback = ai.NewOpenAI(ai.ClientConfig{
			APIKey:     cfg.OpenAIKey,
			ImageModel: cfg.OpenAIImageModel,
			BaseURL:    cfg.OpenAIBaseURL,
		})
	} else {
		slog.Warn("openai not configured — no image fallback, no moderation")
	}
	moderator := ai.NewModerator(cfg.OpenAIKey, cfg.OpenAIBaseURL)

	extractor := scrape.NewExtractor()
	var uploader pipeline.ImageUploader
	if storageClient != nil {
		uploader = storageClient
	}
	gateway := pipeline.NewGateway(gemini, fallback, transcoder, uploader)
	pipe := pipeline.New(gemini, extractor, gateway)

	// Handler groups.
	adminHandlers := handlers.NewAdmin(articleStore, productStore, categoryStore, userStore, storageClient, pageCache)
	authHandlers := handlers.NewAuth(sessionStore, userStore)
	generateHandlers := handlers.NewGenerate(pipe, extractor, moderator, articleStore, productStore, pageCache)
	publicHandlers := handlers.NewPublic(articleStore, categoryStore, pageCache, cfg.SiteBaseURL)

	r := router.New(sessionStore, limiter, adminHandlers, authHandlers, generateHandlers, publicHandlers)

	// WriteTimeout must accommodate generation endpoints that wait on a
	// copy call plus two image calls.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
