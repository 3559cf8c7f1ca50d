package repository

import (
	"context"
	"database/sql"

	"kanban-backend/internal/apperr"
	"kanban-backend/internal/models"
)

type TeamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM teams ORDER BY name`)
	if err != nil {
		return nil, apperr.Service("Failed to fetch teams", err)
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.CreatedAt); err != nil {
			return nil, apperr.Service("Failed to scan team", err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Service("Failed to iterate teams", err)
	}
	return teams, nil
}

// resolveTeamIDs maps team names to ids on the given transaction. An
// unknown name is a validation error, never a silent skip.
func resolveTeamIDs(ctx context.Context, q dbtx, names []string) ([]int, error) {
	ids := make([]int, 0, len(names))
	for _, name := range names {
		var id int
		err := q.QueryRowContext(ctx, `SELECT id FROM teams WHERE name = $1`, name).Scan(&id)
		if err == sql.ErrNoRows {
			return nil, apperr.Validationf("Team '%s' not found", name)
		}
		if err != nil {
			return nil, apperr.Service("Failed to query team", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
