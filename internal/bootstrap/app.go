package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	googleauth "resume-builder/internal/auth"
	"resume-builder/internal/docstore"
	"resume-builder/internal/exports"
	"resume-builder/internal/resumes"
	"resume-builder/internal/sections"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/querycache"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	gcsstore "resume-builder/internal/shared/storage/object/gcs"
	localstore "resume-builder/internal/shared/storage/object/local"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/templates"
	"resume-builder/internal/users"
	"resume-builder/internal/wizard"
)

const (
	cacheKeyPrefix = "resume-builder"
	sweepEvery     = time.Minute
)

// App holds shared dependencies and the wired router.
type App struct {
	Config       config.Config
	Router       *gin.Engine
	DB           *sql.DB
	Store        object.ObjectStore
	Docs         docstore.Store
	CacheBackend querycache.Backend

	Resumes    *resumes.Repository
	Controller *sections.Controller
	Sessions   *wizard.Manager
	Templates  *templates.Service
	Exports    *exports.Service
	Users      *users.Service
	GoogleAuth *googleauth.GoogleService

	closers []io.Closer
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.DocStoreType) == "" {
		cfg.DocStoreType = "memory"
	}
	ctx := context.Background()
	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sqlDB != nil {
		app.DB = sqlDB
		app.closers = append(app.closers, sqlDB)
	}

	if err := app.buildDocStore(ctx); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.buildCacheBackend(ctx); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.buildStore(ctx); err != nil {
		app.Close()
		return nil, err
	}

	app.buildServices()

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		GoogleAuth:      app.GoogleAuth,
		UserHandler:     users.NewHandler(app.Users),
		TemplateHandler: templates.NewHandler(app.Templates),
		ResumeHandler:   resumes.NewHandler(app.Resumes),
		SectionHandler:  sections.NewHandler(app.Controller),
		SessionHandler:  wizard.NewHandler(app.Sessions),
		ExportHandler:   exports.NewHandler(app.Exports),
	})
	return app, nil
}

// Start runs background work until ctx is done.
func (a *App) Start(ctx context.Context) {
	go a.Sessions.Run(ctx, sweepEvery)
}

// Close releases database, cache and storage clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.DocStoreType == "postgres" {
			return nil, fmt.Errorf("DOC_STORE=postgres requires DATABASE_URL")
		}
		log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
		return nil, nil
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) && cfg.DocStoreType != "postgres" {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if isDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func (a *App) buildDocStore(ctx context.Context) error {
	switch a.Config.DocStoreType {
	case "postgres":
		a.Docs = docstore.NewPGStore(a.DB)
	case "firestore":
		client, err := docstore.NewFirestoreClient(ctx, a.Config.FirestoreProjectID)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client)
		a.Docs = docstore.NewFirestoreStore(client)
	default:
		a.Docs = docstore.NewMemoryStore()
	}
	log.Printf("bootstrap: document store %s", a.Config.DocStoreType)
	return nil
}

func (a *App) buildCacheBackend(ctx context.Context) error {
	if strings.TrimSpace(a.Config.RedisURL) == "" {
		return nil
	}
	client, err := querycache.NewRedisClient(ctx, a.Config.RedisURL)
	if err != nil {
		if isDevLike(a.Config.Env) {
			log.Printf("bootstrap: redis unavailable; caching in process only: %v", err)
			return nil
		}
		return err
	}
	a.closers = append(a.closers, client)
	a.CacheBackend = querycache.NewRedisBackend(client, cacheKeyPrefix)
	return nil
}

func (a *App) buildStore(ctx context.Context) error {
	cfg := a.Config
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return err
		}
		a.Store = store
	case "gcs":
		store, err := gcsstore.New(ctx, cfg.GCSBucket, cfg.S3Prefix)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, store)
		a.Store = store
	default:
		a.Store = localstore.New(cfg.LocalStoreDir)
	}
	return nil
}

func (a *App) buildServices() {
	a.Resumes = resumes.NewRepository(a.Docs, resumes.Options{
		ListStaleAfter:    a.Config.ResumeListStaleAfter,
		PreloadStaleAfter: a.Config.PreloadStaleAfter,
		Backend:           a.CacheBackend,
	})
	registry := templates.Default()
	a.Controller = sections.NewController(a.Docs, a.Resumes, sections.WithTemplates(registry))
	a.Sessions = wizard.NewManager(a.Controller, a.Config.SessionIdleTTL)

	a.Templates = templates.NewService(registry, a.Store, a.Config.AssetPrefix)

	var exportRepo exports.Repo = exports.NewMemoryRepo()
	var userRepo users.Repo = users.NewMemoryRepo()
	if a.DB != nil {
		exportRepo = &exports.PGRepo{DB: a.DB}
		userRepo = &users.PGRepo{DB: a.DB}
	}
	a.Exports = exports.NewService(exportRepo, a.Resumes, registry, a.Store)
	a.Users = users.NewService(userRepo)
	a.GoogleAuth = googleauth.NewGoogleService(
		a.Config.GoogleClientID,
		a.Config.GoogleClientSecret,
		a.Config.GoogleRedirectURL,
		a.Config.UIRedirectURL,
		a.Users,
	)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
