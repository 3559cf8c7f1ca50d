package repository

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    username VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(255) NOT NULL,
    name VARCHAR(255) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS teams (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS tasks (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    description TEXT,
    status VARCHAR(32) NOT NULL DEFAULT 'TO_DO',
    external_link TEXT,
    created_by INT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS task_teams (
    task_id INT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
    team_id INT NOT NULL REFERENCES teams (id) ON DELETE CASCADE,
    PRIMARY KEY (task_id, team_id)
);

CREATE TABLE IF NOT EXISTS task_attachments (
    id SERIAL PRIMARY KEY,
    task_id INT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
    file_name VARCHAR(255) NOT NULL,
    original_name VARCHAR(255) NOT NULL,
    file_path TEXT NOT NULL,
    file_size BIGINT NOT NULL,
    mime_type VARCHAR(128) NOT NULL,
    uploaded_by INT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// CreateTablesIfNotExist bootstraps the relational schema.
func CreateTablesIfNotExist(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// defaultTeams is the fixed reference set; teams are seeded, never created
// through the API.
var defaultTeams = []string{"BACKEND", "FRONTEND", "DESIGN", "QA"}

// SeedDefaults inserts the board owner and the team reference set. Reruns
// are no-ops. The admin credentials are development defaults; production
// deployments replace the row out of band.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, name)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (username) DO NOTHING`,
		"admin", string(hash), "Administrator",
	); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	for _, team := range defaultTeams {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO teams (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			team,
		); err != nil {
			return fmt.Errorf("seed team %s: %w", team, err)
		}
	}
	return nil
}
