package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/grafamedia/keuangan-bot/internal/database"
	"github.com/grafamedia/keuangan-bot/pkg/config"
)

// New opens the Store selected by configuration and applies pending
// migrations for the SQL backends. The memory driver is for tests and local
// experiments only.
func New(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		return newPostgresFromConfig(ctx, cfg, log)
	case "sqlite":
		store, db, err := OpenSQLite(cfg.SQLite.Path, log)
		if err != nil {
			return nil, err
		}
		if err := migrate(ctx, db, cfg, "sqlite", log); err != nil {
			db.Close()
			return nil, err
		}
		return store, nil
	case "memory":
		return NewMemory(), nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func newPostgresFromConfig(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (Store, error) {
	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := migrate(ctx, db, cfg, "postgres", log); err != nil {
		db.Close()
		return nil, err
	}

	return NewPostgres(db, log), nil
}

// migrate applies the driver's migration directory when one is configured.
// Each backend keeps its own dialect under migrations/<driver>/.
func migrate(ctx context.Context, db *sql.DB, cfg config.StorageConfig, driver string, log *slog.Logger) error {
	if cfg.MigrationsDir == "" {
		return nil
	}

	dir := filepath.Join(cfg.MigrationsDir, driver)
	if err := database.NewMigrator(db, log).ApplyDir(ctx, dir); err != nil {
		return fmt.Errorf("apply %s migrations: %w", driver, err)
	}
	return nil
}
