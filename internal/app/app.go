// Package app wires the terminal's components together and runs the facade
// server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	sdkapp "github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/merchpoint/poscart/internal/backend"
	catalogcache "github.com/merchpoint/poscart/internal/catalog"
	"github.com/merchpoint/poscart/internal/domain/cart"
	"github.com/merchpoint/poscart/internal/domain/order"
	"github.com/merchpoint/poscart/internal/handler"
	"github.com/merchpoint/poscart/internal/storage/bolt"
	"github.com/merchpoint/poscart/pkg/health"
	"github.com/merchpoint/poscart/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the facade server, and handles
// graceful shutdown. It is the single wiring point for the terminal.
func Run(ctx context.Context, lg *zap.Logger, m *sdkapp.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.BackendURL),
		zap.String("store", cfg.StorePath()),
	)

	// Local durable store. The sole source of truth until the first
	// successful network call.
	db, err := bolt.Open(cfg.StorePath())
	if err != nil {
		return errors.Wrap(err, "open local store")
	}
	defer func() { _ = db.Close() }()

	// Backend client + catalog cache.
	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	cache := catalogcache.NewCache(client, bolt.NewSnapshotStore(db))

	// Cart, restored from the durable store.
	cartAgg, err := cart.Load(ctx, bolt.NewCartStore(db))
	if err != nil {
		return errors.Wrap(err, "restore cart")
	}
	if n := cartAgg.Len(); n > 0 {
		lg.Info("Restored in-progress cart", zap.Int("items", n))
	}

	// Order workflow.
	history := bolt.NewHistoryStore(db)
	workflow := order.NewWorkflow(cartAgg, client, history)

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("store", time.Second, func(context.Context) error {
		return db.Ping()
	})
	healthSvc.AddReadinessCheck("backend", 5*time.Second, client.Ping)
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Facade routes + health endpoints on one server.
	h := handler.New(cache, cartAgg, workflow, history)
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	// Warm the catalog before serving so the first shell request does not
	// pay for the fetch. Offline start is fine: the cache falls back.
	if _, freshness, err := cache.Load(ctx); err != nil {
		lg.Warn("Catalog warmup failed", zap.Error(err))
	} else {
		lg.Info("Catalog ready", zap.String("freshness", string(freshness)))
	}

	lg.Info("Facade listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
