package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/config"
	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
	appHTTP "github.com/fieldops-hr/geofence-engine-go/internal/handler/http"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/cron"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/database"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/jwt"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/maps"
	"github.com/fieldops-hr/geofence-engine-go/internal/repository/postgresql"
	adminService "github.com/fieldops-hr/geofence-engine-go/internal/service/admin"
	checkinService "github.com/fieldops-hr/geofence-engine-go/internal/service/checkin"
	"github.com/fieldops-hr/geofence-engine-go/internal/service/engine"
	ingestService "github.com/fieldops-hr/geofence-engine-go/internal/service/ingest"
	"github.com/fieldops-hr/geofence-engine-go/internal/service/notify"
	"github.com/fieldops-hr/geofence-engine-go/internal/service/registry"
	statsService "github.com/fieldops-hr/geofence-engine-go/internal/service/stats"
)

const retryBatchSize = 200

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	geofenceRepo := postgresql.NewGeofenceRepository(db)
	assignmentRepo := postgresql.NewAssignmentRepository(db)
	eventRepo := postgresql.NewEventRepository(db)
	sessionRepo := postgresql.NewSessionRepository(db)
	sampleRepo := postgresql.NewSampleRepository(db)
	retryRepo := postgresql.NewRetryRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)

	txRunner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return postgresql.WithTransaction(ctx, db, fn)
	}

	var notifier geofence.Notifier = notify.LogNotifier{}
	if cfg.Engine.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Engine.NotifyWebhookURL)
	}

	registrySvc := registry.NewService(geofenceRepo, cfg.Engine.RegistryRefresh)
	engineSvc := engine.NewEngine(
		registrySvc,
		sampleRepo,
		eventRepo,
		sessionRepo,
		retryRepo,
		notifier,
		txRunner,
		cfg.Engine.SyntheticEntryGap,
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	mapResolver := maps.NewResolver()

	ingestSvc := ingestService.NewIngestService(sampleRepo, retryRepo, employeeRepo, engineSvc, cfg.Engine.LocationAPIKey)
	adminSvc := adminService.NewAdminService(
		geofenceRepo,
		assignmentRepo,
		sessionRepo,
		employeeRepo,
		mapResolver,
		registrySvc,
		txRunner,
		cfg.Engine.CloseSessionsOnDelete,
	)
	statsSvc := statsService.NewStatsService(geofenceRepo, eventRepo, sessionRepo)
	checkinSvc := checkinService.NewCheckInService(geofenceRepo, sessionRepo, eventRepo, attendanceRepo, txRunner)

	locationHandler := appHTTP.NewLocationHandler(ingestSvc)
	geofenceHandler := appHTTP.NewGeofenceHandler(adminSvc, checkinSvc)
	statsHandler := appHTTP.NewStatsHandler(statsSvc)

	router := appHTTP.NewRouter(cfg.App.Env, JWTService, locationHandler, geofenceHandler, statsHandler)

	scheduler := cron.NewScheduler()
	scheduler.AddJob("sample-retry", time.Minute, func(ctx context.Context) error {
		engineSvc.RetryFailed(ctx, retryBatchSize)
		return nil
	})
	scheduler.Start()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down...")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	slog.Info("Server stopped")
}
