package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
	repo "github.com/joseph-ayodele/nanopore-tracker/internal/repository"
)

// ConnectDB opens the configured database, pings it and, when migrate is set,
// applies the schema. The caller owns the returned handle.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, migrate bool, logger *slog.Logger) (*repo.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "driver", cfg.Driver)
	db, err := repo.Open(ctx, repo.Config{
		Driver:           cfg.Driver,
		DSN:              cfg.DSN,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if err := PingDB(ctx, db, logger, 5*time.Second); err != nil {
		db.Close()
		return nil, err
	}
	if migrate {
		if err := db.Migrate(ctx); err != nil {
			logger.Error("schema migration failed", "error", err)
			db.Close()
			return nil, err
		}
	}
	logger.Info("successfully connected to database", "dialect", db.Dialect())
	return db, nil
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, db *repo.DB, logger *slog.Logger, timeout time.Duration) error {
	logger.Debug("pinging database")
	if err := db.HealthCheck(ctx, timeout); err != nil {
		logger.Error("database ping failed", "error", err)
		return err
	}
	logger.Debug("database ping successful")
	return nil
}
