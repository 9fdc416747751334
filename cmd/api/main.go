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
	_ "time/tzdata"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/incident"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/repository/postgresql"
	auditService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/audit"
	incidentService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/incident"
	punchService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/punch"
	scheduleService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/schedule"
	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// repositories groups one storage backend's implementations.
type repositories struct {
	db        database.Pool
	users     user.UserRepository
	punches   punch.PunchRepository
	schedules schedule.ScheduleRepository
	incidents incident.IncidentRepository
	traces    audit.TraceRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	level, _ := cfg.Log.SlogLevel()
	logFormat := httplog.SchemaECS.Concise(cfg.Log.Concise)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-timekeeping"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk, err := clock.New(cfg.App.Timezone)
	if err != nil {
		slog.Error("Failed to load timezone", "timezone", cfg.App.Timezone, "error", err)
		os.Exit(1)
	}

	repos, err := openRepositories(ctx, cfg, clk)
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessExpiration)
	auditWriter := auditService.NewWriter(repos.traces, clk)
	matcher := scheduleService.NewMatcher(repos.schedules, repos.punches)

	punchSvc := punchService.NewPunchService(repos.db, repos.punches, repos.users, matcher, auditWriter, clk, m, cfg.App.RecentPunchesLimit)
	scheduleSvc := scheduleService.NewScheduleService(repos.db, repos.schedules, repos.users, matcher)
	incidentSvc := incidentService.NewIncidentService(repos.db, repos.incidents, repos.punches, repos.users, punchSvc, auditWriter, clk, m)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Logger:         logger,
			LogLevel:       level,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Gatherer:       reg,
		},
		JWTService,
		appHTTP.NewPunchHandler(punchSvc),
		appHTTP.NewScheduleHandler(scheduleSvc),
		appHTTP.NewIncidentHandler(incidentSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "driver", cfg.Database.Driver, "timezone", cfg.App.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	slog.Info("Server stopped")
}

func openRepositories(ctx context.Context, cfg *config.Config, clk clock.Clock) (*repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		if cfg.Database.SeedDemoData {
			if err := seedDemoData(ctx, store, clk); err != nil {
				return nil, err
			}
		}
		return &repositories{
			db:        store,
			users:     memory.NewUserRepository(store),
			punches:   memory.NewPunchRepository(store),
			schedules: memory.NewScheduleRepository(store),
			incidents: memory.NewIncidentRepository(store),
			traces:    memory.NewTraceRepository(store),
			close:     func() {},
		}, nil

	case config.DriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return &repositories{
			db:        db,
			users:     postgresql.NewUserRepository(),
			punches:   postgresql.NewPunchRepository(),
			schedules: postgresql.NewScheduleRepository(),
			incidents: postgresql.NewIncidentRepository(),
			traces:    postgresql.NewTraceRepository(),
			close:     db.Close,
		}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
}

// seedDemoData loads the default users, each with the standard office
// schedule covering every day of the current month.
func seedDemoData(ctx context.Context, store *memory.Store, clk clock.Clock) error {
	now := clk.Now()
	effectiveFrom := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)

	schedules := memory.NewScheduleRepository(store)
	for _, u := range fixtures.DefaultUsers() {
		store.AddUser(u)
		if _, err := schedules.CreateSet(ctx, store, fixtures.DefaultSet(u.ID, effectiveFrom)); err != nil {
			return fmt.Errorf("failed to seed schedule for user %d: %w", u.ID, err)
		}
	}
	slog.Info("Demo data seeded", "users", len(fixtures.DefaultUsers()))
	return nil
}
