package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"kanban-backend/internal/apperr"
	"kanban-backend/internal/models"
)

const taskColumns = "id, name, description, status, external_link, created_by, created_at, updated_at"

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts the task and its team associations in one transaction, so
// a bad team name leaves nothing behind.
func (r *TaskRepository) Create(ctx context.Context, createdBy int, in NewTask) (*models.TaskDetail, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Service("Transaction failed", err)
	}
	defer tx.Rollback()

	task := models.Task{}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO tasks (name, description, status, external_link, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+taskColumns,
		in.Name, in.Description, in.Status, in.ExternalLink, createdBy,
	).Scan(
		&task.ID, &task.Name, &task.Description, &task.Status,
		&task.ExternalLink, &task.CreatedBy, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.Service("Failed to create task", err)
	}

	teams, err := replaceTaskTeams(ctx, tx, task.ID, in.Teams)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Service("Transaction failed", err)
	}

	return &models.TaskDetail{
		Task:        task,
		Teams:       teams,
		Attachments: []models.AttachmentRef{},
	}, nil
}

func (r *TaskRepository) Get(ctx context.Context, id int) (*models.TaskDetail, error) {
	task := models.Task{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id,
	).Scan(
		&task.ID, &task.Name, &task.Description, &task.Status,
		&task.ExternalLink, &task.CreatedBy, &task.CreatedAt, &task.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Service("Failed to fetch task", err)
	}
	return r.detail(ctx, task)
}

// List returns every task in creation order so paging and tests are
// deterministic.
func (r *TaskRepository) List(ctx context.Context) ([]models.TaskDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, apperr.Service("Failed to fetch tasks", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(
			&task.ID, &task.Name, &task.Description, &task.Status,
			&task.ExternalLink, &task.CreatedBy, &task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, apperr.Service("Failed to scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Service("Failed to iterate tasks", err)
	}

	details := []models.TaskDetail{}
	for _, task := range tasks {
		detail, err := r.detail(ctx, task)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

// Update applies the supplied fields only. When the patch carries a team
// list the whole association set is replaced inside the same transaction
// as the row update, so readers never observe a partial set.
func (r *TaskRepository) Update(ctx context.Context, id int, patch TaskPatch) (*models.TaskDetail, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Service("Transaction failed", err)
	}
	defer tx.Rollback()

	set := []string{"updated_at = NOW()"}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.ExternalLink != nil {
		add("external_link", *patch.ExternalLink)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), taskColumns)

	task := models.Task{}
	err = tx.QueryRowContext(ctx, query, args...).Scan(
		&task.ID, &task.Name, &task.Description, &task.Status,
		&task.ExternalLink, &task.CreatedBy, &task.CreatedAt, &task.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Task not found")
	}
	if err != nil {
		return nil, apperr.Service("Failed to update task", err)
	}

	var teams []string
	if patch.Teams != nil {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM task_teams WHERE task_id = $1`, id); err != nil {
			return nil, apperr.Service("Failed to remove team assignments", err)
		}
		teams, err = replaceTaskTeams(ctx, tx, id, *patch.Teams)
		if err != nil {
			return nil, err
		}
	} else {
		teams, err = taskTeams(ctx, tx, id)
		if err != nil {
			return nil, err
		}
	}

	attachments, err := taskAttachmentRefs(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Service("Transaction failed", err)
	}

	return &models.TaskDetail{Task: task, Teams: teams, Attachments: attachments}, nil
}

// Delete removes the task; task_teams and task_attachments rows go with it
// via ON DELETE CASCADE. A missing id is a not-found, not a success.
func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return apperr.Service("Failed to delete task", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperr.Service("Failed to delete task", err)
	}
	if affected == 0 {
		return apperr.NotFound("Task not found")
	}
	return nil
}

func (r *TaskRepository) detail(ctx context.Context, task models.Task) (*models.TaskDetail, error) {
	teams, err := taskTeams(ctx, r.db, task.ID)
	if err != nil {
		return nil, err
	}
	attachments, err := taskAttachmentRefs(ctx, r.db, task.ID)
	if err != nil {
		return nil, err
	}
	return &models.TaskDetail{Task: task, Teams: teams, Attachments: attachments}, nil
}

// replaceTaskTeams resolves names and inserts the association rows on the
// caller's transaction. Duplicates collapse, and the returned set is
// name-ordered like every read path.
func replaceTaskTeams(ctx context.Context, tx dbtx, taskID int, names []string) ([]string, error) {
	unique := []string{}
	seen := map[string]bool{}
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			unique = append(unique, name)
		}
	}
	if len(unique) == 0 {
		return []string{}, nil
	}
	sort.Strings(unique)

	ids, err := resolveTeamIDs(ctx, tx, unique)
	if err != nil {
		return nil, err
	}
	for _, teamID := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO task_teams (task_id, team_id) VALUES ($1, $2)`,
			taskID, teamID); err != nil {
			return nil, apperr.Service("Failed to assign team", err)
		}
	}
	return unique, nil
}

func taskTeams(ctx context.Context, q dbtx, taskID int) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT t.name FROM teams t
		 JOIN task_teams tt ON t.id = tt.team_id
		 WHERE tt.task_id = $1
		 ORDER BY t.name`, taskID)
	if err != nil {
		return nil, apperr.Service("Failed to query task teams", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperr.Service("Failed to scan task team", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Service("Failed to iterate task teams", err)
	}
	return names, nil
}

func taskAttachmentRefs(ctx context.Context, q dbtx, taskID int) ([]models.AttachmentRef, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, original_name FROM task_attachments
		 WHERE task_id = $1 ORDER BY id`, taskID)
	if err != nil {
		return nil, apperr.Service("Failed to query task attachments", err)
	}
	defer rows.Close()

	refs := []models.AttachmentRef{}
	for rows.Next() {
		var (
			id   int
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, apperr.Service("Failed to scan task attachment", err)
		}
		refs = append(refs, models.AttachmentRef{
			Name: name,
			URL:  attachmentDownloadURL(taskID, id),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Service("Failed to iterate task attachments", err)
	}
	return refs, nil
}

func attachmentDownloadURL(taskID, attachmentID int) string {
	return fmt.Sprintf("/api/tasks/%d/attachments/%d/download", taskID, attachmentID)
}
