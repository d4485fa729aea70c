package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"tasks-api/config"
	"tasks-api/utilities"
)

const pingTimeout = 5 * time.Second

// DriverName maps the configured driver onto the name it registers with
// database/sql.
func DriverName(driver string) (string, error) {
	switch driver {
	case config.DriverPQ, "":
		return "postgres", nil
	case config.DriverPGX:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// ConnectPostgres opens the shared connection pool and checks that the
// database answers. The caller owns the returned pool and must Close it.
func ConnectPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	driver, err := DriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, cfg.URL)
	if err != nil {
		utilities.LogError(err, "Failed to open database connection")
		return nil, err
	}
	Configure(db, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		utilities.LogError(err, "Failed to reach database")
		db.Close()
		return nil, err
	}

	utilities.LogInfo("Connected to PostgreSQL using driver %q", driver)
	return db, nil
}

// Configure applies the pool limits from cfg.
func Configure(db *sql.DB, cfg config.DatabaseConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
}
