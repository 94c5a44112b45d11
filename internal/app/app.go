package app

import (
	"context"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/templui/securefiles/internal/apiclient"
	"github.com/templui/securefiles/internal/config"
	"github.com/templui/securefiles/internal/db"
	"github.com/templui/securefiles/internal/middleware"
	"github.com/templui/securefiles/internal/repository"
	"github.com/templui/securefiles/internal/service"
	"github.com/templui/securefiles/internal/session"
	"github.com/templui/securefiles/internal/storage"
)

// App holds the handles a command needs. Nothing here is global.
type App struct {
	Cfg          *config.Config
	DB           *sqlx.DB
	Client       *apiclient.Client
	SessionStore *session.Store
	AuthService  *service.AuthService
	FileService  *service.FileService

	closers []io.Closer
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Cfg: cfg}

	kv, err := a.sessionBackend(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	// Transport
	transport := middleware.Chain(nil,
		middleware.Tracing,
		middleware.RequestID,
		middleware.RequestLogging,
	)
	a.Client = apiclient.New(apiclient.Config{
		BaseURL:   cfg.APIURL,
		Transport: transport,
	})

	// Services
	a.SessionStore = session.NewStore(kv)
	a.AuthService = service.NewAuthService(a.Client, a.SessionStore)
	a.FileService = service.NewFileService(a.Client, a.AuthService, cfg.MaxUploadSize)

	return a, nil
}

func (a *App) sessionBackend(ctx context.Context) (session.KV, error) {
	cfg := a.Cfg

	switch cfg.SessionDriver {
	case "memory":
		return session.NewMemoryKV(), nil

	case "redis":
		kv, err := session.NewRedisKV(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionProfile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize session store: %w", err)
		}
		a.closers = append(a.closers, kv)
		return kv, nil
	}

	database, err := db.Init(ctx, cfg.SessionDriver, cfg.SessionConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session database: %w", err)
	}
	a.DB = database

	err = db.RunMigrations(ctx, database.DB, cfg.SessionDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return session.NewSQLKV(repository.NewEntryRepository(database), cfg.SessionProfile), nil
}

// Downloads opens the configured download sink. Built on demand because the
// S3 sink contacts the bucket on construction.
func (a *App) Downloads(ctx context.Context) (storage.Storage, error) {
	sink, err := storage.New(ctx, a.Cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return sink, nil
}

func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := db.Close(a.DB); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
