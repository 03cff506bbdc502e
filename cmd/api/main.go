package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	settingService "github.com/cmlabs-hris/attendance-backend-go/internal/service/setting"
	"github.com/cmlabs-hris/attendance-backend-go/migrations"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", "attendance-cmlabs"), slog.String("env", cfg.App.Env)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.App.RunMigrations {
		if err := postgresql.Migrate(ctx, db, migrations.FS); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	policy := cfg.Attendance

	sessionRepo := postgresql.NewSessionRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	settingRepo := postgresql.NewSettingRepository(db)
	transactor := postgresql.NewTransactor(db)

	hub := sse.NewHub()
	notifier := sse.NewAttendanceNotifier(hub, policy.Location)

	settingSvc := settingService.NewSettingService(settingRepo)
	attendanceSvc := attendanceService.NewAttendanceService(
		sessionRepo,
		employeeRepo,
		settingSvc,
		transactor,
		notifier,
		attendanceService.Policy{
			Location:         policy.Location,
			Office:           policy.Office,
			RadiusMeters:     policy.OfficeRadiusMeters,
			GracePeriod:      policy.GracePeriod,
			DefaultWorkStart: policy.WorkStart,
			OneSessionPerDay: policy.OneSessionPerDay,
		},
		time.Now,
	)
	sweeper := attendanceService.NewSweeper(sessionRepo, notifier, policy.Location, policy.AutoCheckoutTime)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Env:            cfg.App.Env,
		Version:        version,
		AllowedOrigins: cfg.App.AllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
		CronSecret:     cfg.Cron.Secret,
	}, JWTService, db, appHTTP.Handlers{
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Stream:     appHTTP.NewStreamHandler(hub, JWTService),
		Setting:    appHTTP.NewSettingHandler(settingSvc),
		Cron:       appHTTP.NewCronHandler(sweeper),
	})

	if cfg.Cron.Scheduler {
		scheduler := cron.NewScheduler()
		cron.NewAttendanceJobs(sweeper, policy.AutoCheckoutTime, policy.Location, policy.StaleSweepInterval).RegisterJobs(scheduler)
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "version", version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
