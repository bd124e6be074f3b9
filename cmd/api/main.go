//	@title			Store2S3 API
//	@version		1.0
//	@description	Photo upload/gallery backend over S3-compatible object storage, with an optional metadata database.
//
//	@host		localhost:8080
//	@BasePath	/api
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/store2s3/service/internal/auth"
	"github.com/store2s3/service/internal/config"
	"github.com/store2s3/service/internal/db"
	appMiddleware "github.com/store2s3/service/internal/middleware"
	"github.com/store2s3/service/internal/photo"
	"github.com/store2s3/service/internal/response"
	"github.com/store2s3/service/internal/storage"
	"github.com/store2s3/service/internal/user"

	_ "github.com/store2s3/service/docs/swagger"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel, cfg.IsProduction())

	// Metadata store (optional). Presence selects metadata mode.
	var pool *pgxpool.Pool
	if cfg.DatabaseConfigured() {
		var err error
		pool, err = db.Connect(cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			slog.Error("database migration failed", "err", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("metadata store not configured, running in bucket-only mode")
	}

	// Object storage (optional). Without it the photo routes answer 503.
	var store storage.Storage
	if cfg.StorageConfigured() {
		s, err := storage.NewMinioStorage(
			cfg.StorageEndpoint,
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			cfg.StorageBucket,
			cfg.StoragePublicBase,
			cfg.StorageUseSSL,
		)
		if err != nil {
			slog.Error("object storage init failed", "err", err)
			os.Exit(1)
		}
		store = s
	} else {
		slog.Warn("object storage not configured, uploads disabled")
	}

	// Token verification: identity provider wins when configured,
	// otherwise local signature verification against the user store.
	var verifier auth.Verifier
	var authHandler *auth.Handler
	switch {
	case cfg.ProviderConfigured():
		verifier = auth.NewProviderVerifier(cfg.IdentityProviderURL, nil)
		slog.Info("token verification via identity provider", "userinfo", cfg.IdentityProviderURL)
	case cfg.LocalAuthConfigured():
		userRepo := user.NewRepository(pool)
		verifier = auth.NewLocalVerifier(cfg.JWTSecret, userRepo)
		authHandler = auth.NewHandler(auth.NewService(userRepo, cfg.JWTSecret))
		slog.Info("token verification via local signatures")
	default:
		slog.Warn("no auth backend configured, protected routes disabled")
	}

	// Upload/gallery service: one implementation per deployment mode,
	// chosen here once. Handlers never branch on the mode.
	var photoSvc photo.Service
	switch {
	case pool != nil:
		photoSvc = photo.NewDBService(photo.NewRepository(pool), store)
	case store != nil:
		photoSvc = photo.NewBucketService(store)
	}
	photoHandler := photo.NewHandler(photoSvc)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			response.OK(w, map[string]string{"status": "OK", "message": "Server is running"})
		})

		if authHandler != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.With(appMiddleware.RequireAuth(verifier)).Get("/me", authHandler.Me)
			})
		}

		// Public photo routes.
		r.Get("/photos/public", photoHandler.ListPublic)
		r.With(appMiddleware.OptionalAuth(verifier)).Get("/photos/{id}", photoHandler.Get)

		// Protected photo routes.
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(verifier))
			r.Post("/upload", photoHandler.Upload)
			r.Post("/upload-multiple", photoHandler.UploadMultiple)
			r.Get("/photos", photoHandler.List)
			r.Patch("/photos/{id}", photoHandler.Update)
			r.Delete("/photos/*", photoHandler.Delete)
		})
	})

	// Serve the built single-page client, if one is deployed alongside.
	if cfg.StaticDir != "" {
		r.NotFound(spaHandler(cfg.StaticDir))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server listening", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// spaHandler serves files from dir and falls back to index.html for any
// path without an extension, so client-side routing keeps working.
func spaHandler(dir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || strings.HasPrefix(r.URL.Path, "/api/") {
			response.NotFound(w, "not found")
			return
		}
		if filepath.Ext(r.URL.Path) == "" {
			http.ServeFile(w, r, index)
			return
		}
		fs.ServeHTTP(w, r)
	}
}
