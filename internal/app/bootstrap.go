// Package app is the composition root: it wires config, database, stores,
// services and the router, and nothing else.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockroom.io/stockroom/internal/api/handlers"
	"stockroom.io/stockroom/internal/audit"
	"stockroom.io/stockroom/internal/config"
	"stockroom.io/stockroom/internal/imaging"
	"stockroom.io/stockroom/internal/infrastructure"
	"stockroom.io/stockroom/internal/pkg/worker"
	"stockroom.io/stockroom/internal/service"
	"stockroom.io/stockroom/internal/store"
)

// Application holds composed application dependencies.
type Application struct {
	Config  *config.Config
	Router  *gin.Engine
	Pool    *pgxpool.Pool
	Cleanup *worker.Pool
}

// Bootstrap initializes all dependencies using manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	pool, err := infrastructure.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database pool: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := infrastructure.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	cleanup, err := worker.NewPool(ctx, "image-cleanup", cfg.Worker.CleanupPoolSize)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init cleanup pool: %w", err)
	}

	st := store.New(pool)
	recorder := audit.NewRecorder(st)
	pipeline := imaging.NewPipeline(cfg.Storage)

	assets := service.NewAssetService(service.NewCatalog(st), recorder, pipeline, cleanup)
	refs := service.NewReferenceService(st, recorder)
	maint := service.NewMaintenanceService(st, recorder)
	trail := service.NewAuditService(st)

	server := handlers.NewServer(assets, refs, maint, trail, st, pipeline, pool)

	return &Application{
		Config:  cfg,
		Router:  newRouter(cfg, server),
		Pool:    pool,
		Cleanup: cleanup,
	}, nil
}

// Shutdown releases background workers and the database pool. Safe to call
// once after the HTTP server has stopped accepting requests.
func (a *Application) Shutdown() {
	if a.Cleanup != nil {
		a.Cleanup.Shutdown()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
