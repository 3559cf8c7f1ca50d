package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"kanban-backend/configs"
)

// Connect opens the Postgres pool for the configured database and verifies
// the connection. Pool bounds are fixed at startup and never changed.
func Connect(ctx context.Context, cfg configs.Config, dbName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.PostgresDSN(dbName))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
