package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/workshop/internal/config"
	"github.com/sakif/workshop/internal/persistence"
	"github.com/sakif/workshop/internal/prompt"
	"github.com/sakif/workshop/internal/repository"
	"github.com/sakif/workshop/internal/repository/memory"
	redisRepo "github.com/sakif/workshop/internal/repository/redis"
	sqliteRepo "github.com/sakif/workshop/internal/repository/sqlite"
	"github.com/sakif/workshop/internal/service"
)

// OpenRepository opens the slot backend selected by cfg.Storage. The
// returned close function releases it.
func OpenRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.SlotRepository, func() error, error) {
	switch cfg.Storage {
	case config.StorageRedis:
		opts := redisRepo.DefaultConnectOptions(cfg.RedisAddr)
		opts.Password = cfg.RedisPassword
		opts.DB = cfg.RedisDB
		opts.ConnectTimeout = cfg.RedisConnectTimeout
		client, err := redisRepo.Connect(ctx, opts, logger)
		if err != nil {
			return nil, nil, err
		}
		s := redisRepo.NewStore(client, cfg.RedisPrefix)
		return s, s.Close, nil

	case config.StorageMemory:
		logger.Warn("using in-memory storage, nothing will be persisted")
		return memory.New(), func() error { return nil }, nil

	default:
		if cfg.DBPath != sqliteRepo.MemoryPath {
			dir := filepath.Dir(cfg.DBPath)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return db, db.Close, nil
	}
}

// OpenService wires storage, persistence and the template library into a
// loaded WorkshopService. Both the HTTP server and the CLI start here.
func OpenService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*service.WorkshopService, func() error, error) {
	templates, err := prompt.LoadLibrary(cfg.TemplatesPath)
	if err != nil {
		return nil, nil, err
	}

	repo, closeRepo, err := OpenRepository(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	svc, err := service.NewWorkshopService(ctx, persistence.NewAdapter(repo, logger), templates, logger)
	if err != nil {
		closeRepo()
		return nil, nil, err
	}
	return svc, closeRepo, nil
}
