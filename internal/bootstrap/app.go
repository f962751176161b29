package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/account"
	googleauth "resume-builder/internal/auth"
	"resume-builder/internal/documents"
	"resume-builder/internal/draftsync"
	"resume-builder/internal/exports"
	"resume-builder/internal/kv"
	"resume-builder/internal/pending"
	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	"resume-builder/internal/sharing"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	s3store "resume-builder/internal/shared/storage/object/s3"
)

// App holds shared dependencies and the configured router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	AdminDB          *sql.DB
	Devices          kv.Store
	Store            object.ObjectStore
	ResumesRepo      resumes.Repo
	RemoteStore      *resumes.RemoteStore
	DocumentsService *documents.Service
	SharingService   *sharing.Service
	ExportsService   *exports.Service
	DraftSync        *draftsync.Service
	SessionGuard     *draftsync.SessionGuard
	Health           *health.Service
	DocumentsHandler *documents.Handler
	ShareHandler     *sharing.Handler
	ExportHandler    *exports.Handler
	PendingHandler   *pending.Handler
	AccountHandler   *account.Handler
	GoogleAuth       *googleauth.GoogleService
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.DraftStoreType) == "" {
		cfg.DraftStoreType = "memory"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	var adminDB *sql.DB
	if sqlDB != nil && strings.TrimSpace(cfg.AdminDatabaseURL) != "" {
		adminDB, err = connect(ctx, cfg.AdminDatabaseURL, db.AdminOptions)
		if err != nil {
			return nil, fmt.Errorf("admin database: %w", err)
		}
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	devices, redisStore, err := buildDevices(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		AdminDB: adminDB,
		Devices: devices,
		Store:   store,
		Health:  health.NewService(),
	}
	if sqlDB != nil {
		app.Health.Register("database", health.CheckFunc(sqlDB.PingContext))
	}
	if redisStore != nil {
		app.Health.Register("redis", redisStore)
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Devices:         app.Devices,
		DraftSync:       app.DraftSync,
		SessionGuard:    app.SessionGuard,
		Health:          app.Health,
		DocumentHandler: app.DocumentsHandler,
		ShareHandler:    app.ShareHandler,
		ExportHandler:   app.ExportHandler,
		PendingHandler:  app.PendingHandler,
		AccountHandler:  app.AccountHandler,
		GoogleAuth:      app.GoogleAuth,
		RateLimiter:     middleware.NewRateLimiter(nil),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config, url string) (*sql.DB, error) {
	if strings.TrimSpace(url) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := connect(ctx, url, nil)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func connect(ctx context.Context, url string, tune func(db.Options) db.Options) (*sql.DB, error) {
	if tune == nil {
		tune = func(o db.Options) db.Options { return o }
	}
	if db.IsLambdaRuntime() {
		opts := tune(db.OptionsFromEnv(db.DefaultLambdaOptions()))
		return db.GetSingleton(ctx, url, opts)
	}
	opts := tune(db.OptionsFromEnv(db.DefaultServerOptions()))
	return db.Connect(ctx, url, opts)
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

// buildDevices selects the backend of per-device draft storage. The redis
// store is returned separately so it can be health checked.
func buildDevices(ctx context.Context, cfg config.Config) (kv.Store, *kv.Redis, error) {
	switch cfg.DraftStoreType {
	case "redis":
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return nil, nil, errors.New("LOCAL_STORE=redis requires REDIS_ADDR")
		}
		store := kv.NewRedis(kv.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB))
		if err := store.Ping(ctx); err != nil {
			if !isDevLike(cfg.Env) {
				return nil, nil, err
			}
			log.Printf("bootstrap: %v; continuing, requests will fail until redis is reachable", err)
		}
		return store, store, nil
	case "file":
		return kv.NewFile(cfg.DraftStoreDir), nil, nil
	default:
		return kv.NewMemory(), nil, nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var repo resumes.Repo
	if app.DB != nil {
		repo = &resumes.PGRepo{DB: app.DB, AdminDB: app.AdminDB}
	} else {
		repo = resumes.NewMemoryRepo()
	}
	remote := resumes.NewRemoteStore(repo)

	docSvc := documents.NewService(app.Devices, remote)
	shareSvc := sharing.NewService(remote, docSvc, app.Config.PublicBaseURL)
	exportSvc := exports.NewService(app.Store, docSvc, app.Config.APIBaseURL)
	syncSvc := draftsync.NewService(documents.UserSaver{Svc: docSvc})
	guard := draftsync.NewSessionGuard(draftsync.DefaultSessionTTL)
	resumer := &pending.Resumer{Docs: docSvc, Sharing: shareSvc, Exports: exportSvc}

	app.ResumesRepo = repo
	app.RemoteStore = remote
	app.DocumentsService = docSvc
	app.SharingService = shareSvc
	app.ExportsService = exportSvc
	app.DraftSync = syncSvc
	app.SessionGuard = guard
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.ShareHandler = sharing.NewHandler(shareSvc)
	app.ExportHandler = exports.NewHandler(exportSvc)
	app.PendingHandler = pending.NewHandler(app.Devices, resumer)
	app.AccountHandler = account.NewHandler(account.NewService(syncSvc, guard, app.Devices))
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
	)

	if app.DocumentsHandler == nil || app.ShareHandler == nil || app.ExportHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}
