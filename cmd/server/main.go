package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"parkingconsole/internal/audit"
	"parkingconsole/internal/backend"
	"parkingconsole/internal/config"
	"parkingconsole/internal/guard"
	"parkingconsole/internal/handlers"
	"parkingconsole/internal/metrics"
	"parkingconsole/internal/security"
	"parkingconsole/internal/session"
)

func main() {
	// Load configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Session storage (memory, sql or redis)
	storage, closeStorage, err := session.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open session storage: %v", err)
	}
	defer closeStorage()

	policy, err := session.PolicyByName(cfg.RolePolicy)
	if err != nil {
		log.Fatalf("Invalid role policy: %v", err)
	}
	store := session.NewStore(storage)

	m := metrics.New()

	publisher, err := audit.New(cfg.AuditAMQPURL, cfg.AuditExchange, m)
	if err != nil {
		// Auditing is best effort; the console keeps working without a broker
		log.Printf("Warning: audit publisher unavailable, events will be dropped: %v", err)
		publisher = audit.Nop{}
	}
	defer publisher.Close()

	client := backend.NewClient(backend.Options{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.APITimeout,
		RolePolicy: policy,
		Metrics:    m,
		Audit:      publisher,
		Debug:      cfg.Debug,
	})
	log.Printf("Parking backend: %s", cfg.APIBaseURL)

	// Load templates
	templates, err := handlers.LoadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	log.Println("Templates loaded successfully")

	csrf := security.NewCSRF(cfg.CSRFSecret)
	limiter := security.NewRateLimiter(10, time.Minute)
	limiter.TrustProxy = cfg.TrustProxy
	g := guard.New("/static/", "/healthz", "/metrics")

	middleware := handlers.NewMiddleware(store, g, csrf, limiter, m, cfg.SessionDuration)
	pages := handlers.NewPages(templates, client, store, csrf, cfg.PageSize)

	// Setup routes
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	// Console pages
	mux.Handle("/", handlers.Routes(middleware, pages, cfg.SessionDuration))

	// Wrap with logging middleware
	handler := middleware.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background cleanup
	go cleanupExpiredSessions(ctx, store, cfg.SessionDuration)
	go limiter.Cleanup(ctx, 5*time.Minute)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}

// cleanupExpiredSessions periodically removes sessions idle for longer than maxIdle
func cleanupExpiredSessions(ctx context.Context, store *session.Store, maxIdle time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Purge(ctx, maxIdle)
			if err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
				continue
			}
			log.Printf("Expired sessions cleaned up: %d", n)
		}
	}
}
