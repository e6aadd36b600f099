// cmd/generation-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"adgen-orchestrator/internal/api"
	"adgen-orchestrator/internal/background"
	"adgen-orchestrator/internal/common/config"
	"adgen-orchestrator/internal/common/database"
	"adgen-orchestrator/internal/common/logger"
	"adgen-orchestrator/internal/common/observability"
	"adgen-orchestrator/internal/store"
	"adgen-orchestrator/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting generation manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("generation-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Redis: tracked-job set for the background poller ---
	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("redis init failed", zap.Error(err))
	}
	defer redisClient.Close()

	err = retryWithBackoff(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return redisClient.Ping(pingCtx)
	}, 5, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis unavailable", zap.Error(err))
	}

	// --- Postgres: job history (optional) ---
	var history *store.HistoryStore
	if cfg.Database.Postgres.Host != "" {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			zapLog.Fatal("postgres init failed", zap.Error(err))
		}
		defer pg.Close()

		err = retryWithBackoff(func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return pg.Ping(pingCtx)
		}, 5, 2*time.Second, zapLog, "Postgres connection")
		if err != nil {
			zapLog.Fatal("postgres unavailable", zap.Error(err))
		}

		history = store.NewHistoryStore(pg.DB)
		if err := history.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("history schema failed", zap.Error(err))
		}
	} else {
		zapLog.Info("postgres not configured, job history disabled")
	}

	// --- Template registry: local catalog, fallback for template listing ---
	var reg *registry.TemplateRegistry
	if _, err := os.Stat(cfg.Templates.RegistryPath); err == nil {
		reg, err = registry.LoadRegistry(cfg.Templates.RegistryPath)
		if err != nil {
			zapLog.Fatal("template registry load failed", zap.Error(err))
		}
		zapLog.Info("template registry loaded",
			zap.Int("templates", len(reg.Templates)),
			zap.String("path", cfg.Templates.RegistryPath),
		)
	} else {
		zapLog.Info("template registry file not found, relying on backend listing",
			zap.String("path", cfg.Templates.RegistryPath),
		)
	}

	// --- API client ---
	apiClient := api.NewClient(cfg.Backend, log)

	// --- Usage cache ---
	usage := store.NewCachedUsage(apiClient, redisClient,
		time.Duration(cfg.Templates.CacheTTL)*time.Second, log)
	if snapshot, err := usage.Current(ctx); err == nil {
		zapLog.Info("account usage",
			zap.Int("currentUsage", snapshot.CurrentUsage),
			zap.Int("limit", snapshot.Limit),
			zap.Int("remaining", snapshot.Remaining()),
		)
	} else {
		zapLog.Warn("usage check failed", zap.Error(err))
	}

	// --- Notifier ---
	var notifier background.Notifier = background.NoopNotifier{}
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		awsNotifier, err := background.NewAWSNotifier(ctx, cfg.Notifications, log)
		if err != nil {
			zapLog.Fatal("notifier init failed", zap.Error(err))
		}
		notifier = awsNotifier
	}

	// --- Background polling service (process-owned, started once) ---
	poller := background.NewService(
		apiClient,
		redisClient,
		history,
		notifier,
		obs,
		usage,
		config.GetDuration(cfg.Polling.Interval),
		log,
	)
	poller.Start(ctx)

	// --- Metrics / health / templates endpoint ---
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("/templates", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if templates, err := apiClient.ListTemplates(r.Context()); err == nil {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"templates": templates})
			return
		}
		if reg == nil {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprintln(w, `{"error":"template listing unavailable"}`)
			return
		}
		// Backend unreachable, serve the local catalog.
		templates := reg.Templates
		if kind := r.URL.Query().Get("kind"); kind != "" {
			templates = reg.ByKind(kind)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"templates": templates})
	})

	srv := &http.Server{Addr: cfg.App.MetricsAddr, Handler: mux}
	go func() {
		zapLog.Info("metrics server listening", zap.String("addr", cfg.App.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()

	// --- Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	zapLog.Info("shutting down", zap.String("signal", sig.String()))

	poller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("metrics server shutdown failed", zap.Error(err))
	}

	zapLog.Info("generation manager stopped")
}
