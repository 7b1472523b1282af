package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"talent-pipeline/internal/api"
	"talent-pipeline/internal/auth"
	"talent-pipeline/internal/config"
	"talent-pipeline/internal/directory"
	"talent-pipeline/internal/logger"
	"talent-pipeline/internal/manager"
	"talent-pipeline/internal/messaging"
	"talent-pipeline/internal/metrics"
	"talent-pipeline/internal/storage"
	"talent-pipeline/internal/worker"
)

const queueDepthInterval = 10 * time.Second

// @title Talent Pipeline API
// @version 1.0
// @description Multi-tenant talent pipeline directory with per-tenant JWT
// @host localhost:8080
// @BasePath /
// @schemes http

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	zl, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.Log.Environment,
		ServiceName: "talent-pipeline",
	})
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()
	auth.SetSecret(cfg.Auth.JWTSecret)
	auth.SetTokenTTL(cfg.Auth.TokenTTL)

	store, err := storage.Open(ctx, storage.Config{Driver: cfg.Storage.Driver, DSN: cfg.Storage.DSN})
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info("storage ready", zap.String("driver", cfg.Storage.Driver))

	opts := directory.Options{
		Defaults: directory.TenantDefaults{
			BrandColor:     cfg.TenantDefaults.BrandColor,
			Departments:    cfg.TenantDefaults.Departments,
			IntroTemplate:  cfg.TenantDefaults.IntroTemplate,
			CareersPageURL: cfg.TenantDefaults.CareersPageURL,
		},
		Demo:         directory.DemoAccount{Email: cfg.Demo.Email, Secret: cfg.Demo.Secret},
		Logger:       log,
		PasswordCost: cfg.Auth.BcryptCost,
	}

	var (
		tm   *manager.TenantManager
		prov api.Provisioner
	)
	if cfg.RabbitMQ.URL != "" {
		rabbitClient, err := messaging.NewRabbitClient(cfg.RabbitMQ.URL, log)
		if err != nil {
			return err
		}
		defer rabbitClient.Close()
		log.Info("RabbitMQ connected")

		tm = manager.NewTenantManager(rabbitClient, worker.LogNotifier{Logger: log}, cfg.Workers, log)
		defer tm.ShutdownAll()
		opts.Publisher = rabbitClient
		prov = tm
	} else {
		log.Warn("rabbitmq.url not set, notifications are disabled")
	}

	dir := directory.New(store, opts)

	if cfg.Demo.Seed {
		if _, err := dir.SeedDemo(ctx); err != nil {
			return err
		}
	}

	if tm != nil {
		if err := recoverTenants(ctx, dir, tm, log); err != nil {
			return err
		}
		go reportQueueDepth(ctx, tm)
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewAPI(dir, prov, cfg, log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting API server", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown error", zap.Error(err))
	}

	log.Info("graceful shutdown complete")
	return nil
}

// recoverTenants starts consumers for the demo tenant and every stored tenant.
func recoverTenants(ctx context.Context, dir *directory.Directory, tm *manager.TenantManager, log *zap.Logger) error {
	tenants, err := dir.ListTenants(ctx)
	if err != nil {
		return err
	}

	ids := []string{directory.DemoTenantID}
	for _, t := range tenants {
		ids = append(ids, t.ID)
	}
	for _, id := range ids {
		if err := tm.AddTenant(id); err != nil {
			log.Warn("failed to recover tenant", zap.String("tenant_id", id), zap.Error(err))
			continue
		}
	}
	log.Info("tenants recovered", zap.Int("count", len(tm.ListTenantIDs())))
	return nil
}

func reportQueueDepth(ctx context.Context, tm *manager.TenantManager) {
	ticker := time.NewTicker(queueDepthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tm.UpdateQueueDepths()
		}
	}
}
