package kvstore

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wision/internal/config"
	"wision/internal/database"
)

// Open builds the store selected by cfg, running SQL migrations when
// needed. The returned close function releases the backend.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (Store, func() error, error) {
	if strings.EqualFold(cfg.Type, "memory") {
		logger.Warn("using in-memory store, data is lost on exit")
		return NewMemory(), func() error { return nil }, nil
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Info("database connection established", zap.String("type", cfg.Type))

	applied, err := db.RunMigrations(ctx)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, name := range applied {
		logger.Info("applied migration", zap.String("file", name))
	}

	return NewSQLStore(db), db.Close, nil
}
