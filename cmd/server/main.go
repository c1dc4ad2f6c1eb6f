package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mathachew7/JoslaSync/internal/featureflags"
	"github.com/mathachew7/JoslaSync/internal/handler"
	"github.com/mathachew7/JoslaSync/internal/infrastructure/logger"
	"github.com/mathachew7/JoslaSync/internal/infrastructure/redis"
	"github.com/mathachew7/JoslaSync/internal/infrastructure/storage"
	"github.com/mathachew7/JoslaSync/internal/observability/metrics"
	"github.com/mathachew7/JoslaSync/internal/observability/tracing"
	"github.com/mathachew7/JoslaSync/internal/reliability/retry"
	"github.com/mathachew7/JoslaSync/internal/repository"
	"github.com/mathachew7/JoslaSync/internal/security/audit"
	"github.com/mathachew7/JoslaSync/internal/security/auth"
	"github.com/mathachew7/JoslaSync/internal/security/middleware"
	"github.com/mathachew7/JoslaSync/internal/security/ratelimit"
	"github.com/mathachew7/JoslaSync/internal/service"
	"github.com/mathachew7/JoslaSync/internal/tenant"
	"github.com/mathachew7/JoslaSync/pkg/config"
	"github.com/mathachew7/JoslaSync/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting JoslaSync server", slog.String("environment", cfg.Environment))

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(context.Background(), log, "joslasync", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Initialize Redis. The directory cache is optional: without redis
	// every company lookup goes to the master database.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, directory cache disabled", slog.String("error", err.Error()))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// 5. Connect to the master database, retrying while it comes up.
	dbCfg := &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.MasterDBName,
		SSLMode:  cfg.DBSSLMode,
	}
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 60*time.Second)
	masterDB, err := retry.Do(startupCtx, retry.DefaultConfig(), log, "connect master database",
		func(ctx context.Context) (*sql.DB, error) {
			return database.Connect(ctx, dbCfg, log)
		})
	cancelStartup()
	if err != nil {
		log.Error("failed to connect to master database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer masterDB.Close()

	if err := tenant.EnsureMasterSchema(context.Background(), masterDB); err != nil {
		log.Error("failed to ensure master schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Tenant connection registry and request resolver
	registry := tenant.NewRegistry(masterDB, dbCfg, log)
	defer registry.Close()
	resolver := tenant.NewResolver(registry, log)

	// 7. Master-directory repositories. Company lookups go through the
	// redis read-through cache when available.
	directory := repository.NewCachedCompanyDirectory(
		repository.NewPostgresCompanyDirectory(masterDB, log),
		redisClient,
		log,
	)
	users := repository.NewPostgresUserRepository(masterDB, log)

	// 8. File storage for logos and signatures
	store, err := storage.NewStore(cfg.StaticRoot, log)
	if err != nil {
		log.Error("failed to initialize file storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 9. Services
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	masterIdentity := auth.MasterIdentity{
		Username: cfg.MasterUsername,
		Password: cfg.MasterPassword,
		Email:    cfg.MasterEmail,
		DBName:   cfg.MasterDBName,
	}
	settingsService := service.NewSettingsService(log)
	authService := service.NewAuthService(users, directory, tokenManager, masterIdentity, log)
	provisionService := service.NewProvisionService(directory, users, registry, settingsService, store, log)
	clientService := service.NewClientService(log)
	invoiceService := service.NewInvoiceService(log)

	// 10. Handlers
	loginHandler := handler.NewLoginHandler(authService, log, cfg)
	refreshHandler := handler.NewRefreshHandler(authService, log, cfg)
	registerUserHandler := handler.NewRegisterUserHandler(authService, log, cfg)
	meHandler := handler.NewMeHandler(authService, log, cfg)
	registerCompanyHandler := handler.NewRegisterCompanyHandler(provisionService, log, cfg)
	profileHandler := handler.NewProfileHandler(provisionService, resolver, log, cfg)
	updateProfileHandler := handler.NewUpdateProfileHandler(provisionService, resolver, log, cfg)
	settingsHandler := handler.NewSettingsHandler(settingsService, resolver, log, cfg)
	updateSettingsHandler := handler.NewUpdateSettingsHandler(settingsService, resolver, store, log, cfg)
	clientsHandler := handler.NewClientsHandler(clientService, resolver, log, cfg)
	invoicesHandler := handler.NewInvoicesHandler(invoiceService, resolver, log, cfg)

	// 10a. Security components
	rateLimiter := ratelimit.NewLimiter(100, time.Minute) // 100 requests per minute per tenant
	auditLogger := audit.NewLogger(log)

	// 11. HTTP routes
	mux := http.NewServeMux()
	mux.Handle("POST /api/auth/login", withLoginRateLimit(rateLimiter, loginHandler))
	mux.Handle("POST /api/auth/refresh", refreshHandler)
	mux.Handle("POST /api/auth/register", registerUserHandler)
	mux.Handle("GET /api/auth/me", meHandler)
	mux.Handle("POST /api/company-profile", registerCompanyHandler)
	mux.Handle("GET /api/company-profile", profileHandler)
	mux.Handle("PUT /api/company-profile", updateProfileHandler)
	mux.Handle("GET /api/company-settings", settingsHandler)
	mux.Handle("PUT /api/company-settings", updateSettingsHandler)
	mux.HandleFunc("GET /api/clients", clientsHandler.List)
	mux.HandleFunc("POST /api/clients", clientsHandler.Create)
	mux.HandleFunc("GET /api/clients/{id}", clientsHandler.Get)
	mux.HandleFunc("PUT /api/clients/{id}", clientsHandler.Update)
	mux.HandleFunc("DELETE /api/clients/{id}", clientsHandler.Delete)
	mux.HandleFunc("GET /api/invoices", invoicesHandler.List)
	mux.HandleFunc("POST /api/invoices", invoicesHandler.Create)
	mux.HandleFunc("GET /api/invoices/{id}", invoicesHandler.Get)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticRoot))))

	// Health and readiness endpoints (no auth required)
	mux.HandleFunc("/healthz", handler.Health)
	mux.HandleFunc("/readyz", handler.Ready(masterDB, redisClient))

	// Chain middleware: request ID -> metrics -> CORS -> JWT -> rate limit
	// -> audit. JWT runs before the rate limiter so limiting is per tenant;
	// CORS runs before JWT so preflight never needs a token.
	authedChain := middleware.JWTMiddleware(tokenManager, log)(
		middleware.RateLimitMiddleware(rateLimiter, log)(
			middleware.AuditMiddleware(auditLogger)(mux),
		),
	)

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		authedChain.ServeHTTP(w, r)
	})

	var rootHandler http.Handler = withRequestID(
		metrics.HTTPMetricsMiddleware(handlerWithCORS),
		log,
	)
	rootHandler = otelhttp.NewHandler(rootHandler, "joslasync")

	// 12. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("master_db", cfg.MasterDBName),
		slog.Bool("directory_cache", redisClient != nil),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	rateLimiter.Stop()
	log.Info("server stopped")
}

// withLoginRateLimit brakes brute-force login attempts per source address.
// Disabled unless the login_rate_limit feature flag is on.
func withLoginRateLimit(limiter *ratelimit.Limiter, next http.Handler) http.Handler {
	if !featureflags.Enabled(featureflags.LoginRateLimit) {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.AllowStrict(r.RemoteAddr, 10, time.Minute) {
			http.Error(w, `{"error":"too many login attempts"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := audit.WithRequestID(r.Context(), reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
