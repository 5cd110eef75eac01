package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/rbi-inspect/internal/application"
	appadvisory "github.com/bryanwahyu/rbi-inspect/internal/application/advisory"
	appdashboard "github.com/bryanwahyu/rbi-inspect/internal/application/dashboard"
	appequipment "github.com/bryanwahyu/rbi-inspect/internal/application/equipment"
	appinspections "github.com/bryanwahyu/rbi-inspect/internal/application/inspections"
	apprbi "github.com/bryanwahyu/rbi-inspect/internal/application/rbi"
	appreports "github.com/bryanwahyu/rbi-inspect/internal/application/reports"
	"github.com/bryanwahyu/rbi-inspect/internal/config"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/advisory"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/inspections"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/reports"
	"github.com/bryanwahyu/rbi-inspect/internal/infra/ai/local"
	"github.com/bryanwahyu/rbi-inspect/internal/infra/ai/openai"
	"github.com/bryanwahyu/rbi-inspect/internal/infra/catalog"
	"github.com/bryanwahyu/rbi-inspect/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/rbi-inspect/internal/infra/db/mysql"
	"github.com/bryanwahyu/rbi-inspect/internal/infra/db/postgres"
	"github.com/bryanwahyu/rbi-inspect/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/rbi-inspect/internal/infra/storage"
	"github.com/bryanwahyu/rbi-inspect/internal/infra/telemetry"
	"github.com/bryanwahyu/rbi-inspect/internal/middleware"
)

var version = "dev"

// repositories is the set of ports one storage driver provides.
type repositories struct {
	equipment  equipment.Repository
	analyses   rbi.Repository
	schedules  inspections.Repository
	narratives advisory.Repository
	health     middleware.HealthChecker
	close      func() error
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("catalog load error: %w", err)
	}
	logger.Info("damage mechanism catalog loaded", "mechanisms", cat.Len(), "path", cfg.Catalog.Path)

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	var metrics application.Metrics = application.NopMetrics{}
	if cfg.Telemetry.Enabled {
		tp, err := telemetry.New(ctx, telemetry.Config{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: version,
			OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
			Insecure:       cfg.Telemetry.Insecure,
		})
		if err != nil {
			return fmt.Errorf("telemetry init error: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(sctx)
		}()
		metrics = tp
	}

	// init minio
	var artifacts reports.ArtifactStore
	checkers := map[string]middleware.HealthChecker{
		"database": repos.health,
		"catalog":  middleware.CatalogHealthChecker{Len: cat.Len},
	}
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init error: %w", err)
		}
		if cfg.Minio.PresignTTL > 0 {
			store = store.WithPresignedURLs(cfg.Minio.PresignTTL)
		}
		artifacts = store
		checkers["storage"] = middleware.CheckerFunc(store.Ping)
	}

	clock := application.SystemClock{}
	inspectionSvc := &appinspections.Service{
		Repo:    repos.schedules,
		Clock:   clock,
		Metrics: metrics,
		Logger:  logger.With("component", "inspections"),
	}
	svc := httpserver.Services{
		Equipment: &appequipment.Service{Repo: repos.equipment, Clock: clock},
		Analyses: &apprbi.Service{
			Equipment:  repos.equipment,
			Analyses:   repos.analyses,
			Engine:     rbi.NewEngine(cat),
			Mechanisms: cat,
			Clock:      clock,
			Metrics:    metrics,
			Logger:     logger.With("component", "rbi"),
		},
		Inspections: inspectionSvc,
		Dashboard: &appdashboard.Service{
			Equipment:   repos.equipment,
			Analyses:    repos.analyses,
			Inspections: repos.schedules,
			Clock:       clock,
		},
		Reports: &appreports.Service{
			Equipment: repos.equipment,
			Analyses:  repos.analyses,
			Artifacts: artifacts,
			Clock:     clock,
		},
		Advisory: &appadvisory.Service{
			Analyses:   repos.analyses,
			Client:     narrativeClient(cfg, logger),
			Narratives: repos.narratives,
			Clock:      clock,
			Logger:     logger.With("component", "advisory"),
		},
	}

	sweep, err := inspectionSvc.StartSweep(ctx, cfg.Scheduler.OverdueSweep)
	if err != nil {
		return err
	}
	defer sweep.Stop()

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst)
	limiter.StartJanitor(ctx)

	handler := httpserver.NewRouter(svc, httpserver.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
		Metrics:     middleware.NewRequestMetrics(),
		Limiter:     limiter,
		Health:      checkers,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return repositories{}, fmt.Errorf("mysql connect error: %w", err)
		}
		if err := mysqlp.Migrate(ctx, db); err != nil {
			db.Close()
			return repositories{}, fmt.Errorf("mysql migrate error: %w", err)
		}
		return sqlRepositories(db,
			mysqlp.NewEquipmentRepository(db),
			mysqlp.NewAnalysisRepository(db),
			mysqlp.NewScheduleRepository(db),
			mysqlp.NewNarrativeRepository(db),
		), nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return repositories{}, fmt.Errorf("postgres connect error: %w", err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return repositories{}, fmt.Errorf("postgres migrate error: %w", err)
		}
		return sqlRepositories(db,
			postgres.NewEquipmentRepository(db),
			postgres.NewAnalysisRepository(db),
			postgres.NewScheduleRepository(db),
			postgres.NewNarrativeRepository(db),
		), nil
	default:
		slog.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return repositories{
			equipment:  store.Equipment(),
			analyses:   store.Analyses(),
			schedules:  store.Schedules(),
			narratives: store.Narratives(),
			health:     middleware.CheckerFunc(func(context.Context) error { return store.Ping() }),
			close:      func() error { return nil },
		}, nil
	}
}

func sqlRepositories(db *sql.DB, eq equipment.Repository, an rbi.Repository, sc inspections.Repository, nr advisory.Repository) repositories {
	return repositories{
		equipment:  eq,
		analyses:   an,
		schedules:  sc,
		narratives: nr,
		health:     &middleware.DatabaseHealthChecker{DB: db},
		close:      db.Close,
	}
}

// narrativeClient returns nil when no provider is available; the advisory
// endpoints then answer 501.
func narrativeClient(cfg *config.Config, logger *slog.Logger) advisory.Client {
	switch {
	case cfg.OpenAI.APIKey != "" && cfg.OpenAI.BaseURL != "":
		return openai.NewClientWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
	case cfg.OpenAI.APIKey != "":
		return openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case cfg.LocalNarratives():
		logger.Info("no OpenAI key configured, using local narratives")
		return local.Narrator{}
	}
	return nil
}
