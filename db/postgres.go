// db/postgres.go
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/aniketsuryawanshi1/recipe-hub-api/config"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
)

var Pool *pgxpool.Pool

func InitPostgres() error {
	url := config.GetString("postgres.url")
	logger.Info("Connecting to Postgres", zap.String("url", url))

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse postgres config: %w", err)
	}
	cfg.MaxConns = 20
	cfg.MaxConnLifetime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	Pool, err = pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := Pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	logger.Info("Successfully connected to Postgres")
	return nil
}

func ClosePostgres() {
	if Pool != nil {
		Pool.Close()
		logger.Info("Postgres connection pool closed")
	}
}
