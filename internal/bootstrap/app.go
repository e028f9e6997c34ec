package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"expertcof/internal/analyses"
	"expertcof/internal/analyzer"
	"expertcof/internal/auth"
	"expertcof/internal/billing"
	"expertcof/internal/compare"
	"expertcof/internal/dashboard"
	"expertcof/internal/events"
	"expertcof/internal/exports"
	"expertcof/internal/history"
	"expertcof/internal/postal"
	"expertcof/internal/preferences"
	"expertcof/internal/profile"
	"expertcof/internal/services/health"
	sharedauth "expertcof/internal/shared/auth"
	"expertcof/internal/shared/config"
	"expertcof/internal/shared/metrics"
	"expertcof/internal/shared/server"
	"expertcof/internal/shared/storage/db"
	"expertcof/internal/shared/storage/object"
	localstore "expertcof/internal/shared/storage/object/local"
	s3store "expertcof/internal/shared/storage/object/s3"
	"expertcof/internal/shared/storage/rest"
	"expertcof/internal/shared/telemetry"
	"expertcof/internal/usage"
	"expertcof/internal/users"
)

// Mode selects how the database pool is shared.
type Mode int

const (
	// ModeServer opens a dedicated pool sized for the API.
	ModeServer Mode = iota
	// ModeCLI reuses one small process-wide pool.
	ModeCLI
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	AnalysesRepo analyses.Repo
	UsersRepo    users.Repo

	Auth      *auth.Client
	Analyzer  *analyzer.Client
	Billing   *billing.Client
	Postal    *postal.Client
	Bus       *events.Bus
	Hub       *events.Hub
	Health    *health.Service
	Analyses  *analyses.Service
	Users     *users.Service
	Usage     *usage.Service
	History   *history.Service
	Compare   *compare.Assembler
	Exports   *exports.Service
	Dashboard *dashboard.Service
	Profile   *profile.Service
}

// Build prepares the API: services plus the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app, err := BuildServices(ctx, cfg, ModeServer)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.SupabaseJWTSecret) == "" {
		telemetry.Warn("bootstrap.jwt_secret_missing", map[string]any{"env": cfg.Env})
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:      app.Config,
		Verifier:    sharedauth.NewVerifier(cfg.SupabaseJWTSecret),
		Health:      app.Health,
		Auth:        auth.NewHandler(app.Auth, cfg.AppURL),
		Users:       users.NewHandler(app.Users),
		Dashboard:   dashboard.NewHandler(app.Dashboard),
		Usage:       usage.NewHandler(app.Usage),
		History:     history.NewHandler(app.History),
		Compare:     compare.NewHandler(app.Compare),
		Exports:     exports.NewHandler(app.Exports, app.Analyses),
		Events:      events.NewHandler(app.Hub, cfg.CORSAllowOrigin),
		Profile:     profile.NewHandler(app.Profile),
		Postal:      postal.NewHandler(app.Postal),
		Preferences: preferences.NewHandler(!config.IsDevLike(cfg.Env)),
	})
	return app, nil
}

// BuildServices wires stores, clients and services without any routes. The
// CLI uses it directly.
func BuildServices(ctx context.Context, cfg config.Config, mode Mode) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.RecordStore) == "" {
		cfg.RecordStore = "rest"
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	uploadClient := &http.Client{Timeout: cfg.UploadTimeout}

	app := &App{
		Config:   cfg,
		Auth:     auth.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, httpClient),
		Analyzer: analyzer.New(cfg.APIBaseURL, uploadClient),
		Billing:  billing.New(cfg.APIBaseURL, httpClient),
		Postal:   postal.New(cfg.PostalBaseURL, httpClient),
		Bus:      events.NewBus(),
	}
	app.Hub = events.NewHub(app.Bus)

	if err := buildRecordStore(ctx, app, httpClient, mode); err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Store = store

	buildServices(app)

	var pinger health.Pinger
	if app.DB != nil {
		pinger = app.DB
	}
	app.Health = health.NewService(cfg.RecordStore, pinger, app.Hub)
	return app, nil
}

// Start runs background loops until ctx is done.
func (a *App) Start(ctx context.Context) {
	go a.Hub.Run(ctx)
}

// Close releases the database pool.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// SelfHosted reports whether this process writes records and plans itself.
func (a *App) SelfHosted() bool {
	return a.Config.RecordStore != "rest"
}

func buildRecordStore(ctx context.Context, app *App, httpClient *http.Client, mode Mode) error {
	cfg := app.Config
	switch cfg.RecordStore {
	case "rest":
		if strings.TrimSpace(cfg.SupabaseURL) == "" {
			return errors.New("RECORD_STORE=rest requires SUPABASE_URL")
		}
		rc := rest.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, httpClient)
		app.AnalysesRepo = &analyses.RESTRepo{Client: rc}
		app.UsersRepo = &users.RESTRepo{Client: rc}
		return nil
	case "postgres":
		sqlDB, err := buildDB(ctx, cfg, mode)
		if err != nil {
			return err
		}
		if sqlDB != nil {
			app.DB = sqlDB
			app.AnalysesRepo = &analyses.PGRepo{DB: sqlDB}
			app.UsersRepo = &users.PGRepo{DB: sqlDB}
			return nil
		}
	}
	telemetry.Info("bootstrap.memory_store", map[string]any{"record_store": cfg.RecordStore})
	app.Config.RecordStore = "memory"
	app.AnalysesRepo = analyses.NewMemoryRepo()
	app.UsersRepo = users.NewMemoryRepo()
	return nil
}

func buildDB(ctx context.Context, cfg config.Config, mode Mode) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_url_missing", map[string]any{"fallback": "memory"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if mode == ModeCLI {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err == nil {
		if err = db.RunMigrations(ctx, sqlDB); err != nil && mode == ModeServer {
			sqlDB.Close()
		}
	}
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_failed", map[string]any{"fallback": "memory", "error": err})
			return nil, nil
		}
		return nil, err
	}
	metrics.RegisterDB(sqlDB, "records")
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) {
	selfHosted := app.SelfHosted()

	app.Analyses = analyses.NewService(app.AnalysesRepo)
	app.Users = users.NewService(app.UsersRepo)
	app.Usage = usage.NewService(app.AnalysesRepo, app.UsersRepo)
	app.History = history.NewService(app.Analyses)
	app.Compare = compare.NewAssembler(app.AnalysesRepo)
	app.Exports = exports.NewService(app.Store, exports.Clock{}, true)

	app.Dashboard = &dashboard.Service{
		Analyzer: app.Analyzer,
		Widgets:  dashboard.NewWidgets(),
		Bus:      app.Bus,
		Checkout: app.Billing,
		Now:      time.Now,
	}
	if selfHosted {
		if rec, ok := app.AnalysesRepo.(analyses.Recorder); ok {
			app.Dashboard.Recorder = rec
		}
		app.Dashboard.Plans = app.Users
	}

	app.Profile = &profile.Service{
		Users:      app.Users,
		Passwords:  app.Auth,
		Billing:    app.Billing,
		PriceID:    app.Config.CheckoutPriceID,
		LocalPlans: selfHosted,
	}
}
