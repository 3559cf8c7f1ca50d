// Package repository holds the store interfaces the handlers depend on and
// their Postgres implementations. Every query names its columns and scans
// into struct fields explicitly; no reflective row mapping.
package repository

import (
	"context"
	"database/sql"

	"kanban-backend/internal/models"
)

// dbtx is the subset of *sql.DB and *sql.Tx the queries need, so helpers
// can run inside or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type UserStore interface {
	// GetByUsername returns (nil, nil) when no such user exists: an absent
	// credential is a valid outcome, not a failure.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
}

type TeamStore interface {
	List(ctx context.Context) ([]models.Team, error)
}

// NewTask is the resolved input for task creation. Status is already
// defaulted and validated by the handler.
type NewTask struct {
	Name         string
	Description  *string
	Status       string
	ExternalLink *string
	Teams        []string
}

// TaskPatch carries partial-update fields. A nil pointer means "leave the
// column alone"; a nil Teams means "keep the current association set".
type TaskPatch struct {
	Name         *string
	Description  *string
	Status       *string
	ExternalLink *string
	Teams        *[]string
}

type TaskStore interface {
	Create(ctx context.Context, createdBy int, in NewTask) (*models.TaskDetail, error)
	// Get returns (nil, nil) when the task does not exist.
	Get(ctx context.Context, id int) (*models.TaskDetail, error)
	List(ctx context.Context) ([]models.TaskDetail, error)
	Update(ctx context.Context, id int, patch TaskPatch) (*models.TaskDetail, error)
	Delete(ctx context.Context, id int) error
}

type AttachmentStore interface {
	// Add persists the attachment and fills in the store-assigned fields:
	// ID, CreatedAt and DownloadURL.
	Add(ctx context.Context, att *models.TaskAttachment) error
	ListByTask(ctx context.Context, taskID int) ([]models.TaskAttachment, error)
	// Get returns (nil, nil) when the attachment does not exist on the task.
	Get(ctx context.Context, taskID, attachmentID int) (*models.TaskAttachment, error)
	Delete(ctx context.Context, taskID, attachmentID int) error
}
