package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tailor-backend/internal/auth"
	"tailor-backend/internal/backup"
	"tailor-backend/internal/cache"
	"tailor-backend/internal/database"
	"tailor-backend/internal/handlers"
	"tailor-backend/internal/health"
	h "tailor-backend/internal/http"
	"tailor-backend/internal/metrics"
	"tailor-backend/internal/middleware"
	"tailor-backend/internal/services"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and live query server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", true, "apply pending migrations before serving (postgres only)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	cfg := a.cfg

	if a.pool != nil {
		if autoMigrate {
			if err := database.NewMigrator(a.pool, database.Migrations()).RunMigrations(ctx); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
		}
		collector := metrics.NewPoolCollector(a.pool, 30*time.Second)
		collector.Start()
		defer collector.Stop()
	}

	if cfg.Backup.Enabled {
		client, err := backup.NewS3Client(ctx, cfg.Backup)
		if err != nil {
			a.log.Warn("Backups disabled", zap.Error(err))
		} else {
			scheduler := backup.NewScheduler(backup.NewExporter(a.store, client, cfg.Backup), cfg.Backup.Interval)
			scheduler.Start()
			defer scheduler.Stop()
		}
	}

	// Services
	repos := services.NewRepos(a.store)
	invalidator := cache.Invalidator{}
	jwtManager := auth.NewJWTManager(cfg)

	profileService := services.NewProfileService(repos.Profiles, cfg.Format.Currency)
	userService := services.NewUserService(a.users, jwtManager, profileService)
	customerService := services.NewCustomerService(repos.Customers, invalidator)
	measurementService := services.NewMeasurementService(repos)
	orderService := services.NewOrderService(repos, invalidator)
	paymentService := services.NewPaymentService(repos, invalidator)
	presetService := services.NewPresetService(repos.Presets)
	customMeasurementService := services.NewCustomMeasurementService(repos.CustomMeasurements)
	dashboardService := services.NewDashboardService(repos)
	receiptService := services.NewReceiptService(orderService, customerService, profileService, a.format)

	// Health
	var dbPinger, redisPinger health.Pinger
	if a.pool != nil {
		dbPinger = a.pool
	}
	if client := cache.GetClient(); client != nil {
		redisPinger = health.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
	}
	healthChecker := health.NewHealthChecker(dbPinger, redisPinger)

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, a.users, profileService)
	router := h.NewRouter(
		handlers.NewAuthHandler(userService, cfg.Auth.LoginTimeout),
		handlers.NewCustomerHandler(customerService),
		handlers.NewMeasurementHandler(measurementService),
		handlers.NewOrderHandler(orderService, receiptService),
		handlers.NewPaymentHandler(paymentService),
		handlers.NewProfileHandler(profileService),
		handlers.NewPresetHandler(presetService, customMeasurementService),
		handlers.NewDashboardHandler(dashboardService, cfg.Cache.DashboardTTL),
		handlers.NewLiveHandler(a.store, authMiddleware, cfg.Server.CorsAllowedOrigins),
		handlers.NewHealthHandler(healthChecker),
		authMiddleware,
	)

	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(middleware.RequestLogging(a.log)(corsMiddleware(router)))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Server starting",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("feed", cfg.Store.Feed))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("Shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
