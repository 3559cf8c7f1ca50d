package repository

import (
	"context"
	"database/sql"
	"errors"

	"kanban-backend/internal/apperr"
	"kanban-backend/internal/models"
)

const attachmentColumns = "id, task_id, file_name, original_name, file_path, file_size, mime_type, uploaded_by, created_at"

type AttachmentRepository struct {
	db *sql.DB
}

func NewAttachmentRepository(db *sql.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Add(ctx context.Context, att *models.TaskAttachment) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO task_attachments (task_id, file_name, original_name, file_path, file_size, mime_type, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		att.TaskID, att.FileName, att.OriginalName, att.FilePath,
		att.FileSize, att.MimeType, att.UploadedBy,
	).Scan(&att.ID, &att.CreatedAt)
	if err != nil {
		return apperr.Service("Failed to store attachment", err)
	}
	att.DownloadURL = attachmentDownloadURL(att.TaskID, att.ID)
	return nil
}

func (r *AttachmentRepository) ListByTask(ctx context.Context, taskID int) ([]models.TaskAttachment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+attachmentColumns+` FROM task_attachments
		 WHERE task_id = $1 ORDER BY id`, taskID)
	if err != nil {
		return nil, apperr.Service("Failed to fetch attachments", err)
	}
	defer rows.Close()

	attachments := []models.TaskAttachment{}
	for rows.Next() {
		var att models.TaskAttachment
		if err := rows.Scan(
			&att.ID, &att.TaskID, &att.FileName, &att.OriginalName,
			&att.FilePath, &att.FileSize, &att.MimeType, &att.UploadedBy,
			&att.CreatedAt,
		); err != nil {
			return nil, apperr.Service("Failed to scan attachment", err)
		}
		att.DownloadURL = attachmentDownloadURL(att.TaskID, att.ID)
		attachments = append(attachments, att)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Service("Failed to iterate attachments", err)
	}
	return attachments, nil
}

func (r *AttachmentRepository) Get(ctx context.Context, taskID, attachmentID int) (*models.TaskAttachment, error) {
	att := &models.TaskAttachment{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+attachmentColumns+` FROM task_attachments
		 WHERE id = $1 AND task_id = $2`, attachmentID, taskID,
	).Scan(
		&att.ID, &att.TaskID, &att.FileName, &att.OriginalName,
		&att.FilePath, &att.FileSize, &att.MimeType, &att.UploadedBy,
		&att.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Service("Failed to fetch attachment", err)
	}
	att.DownloadURL = attachmentDownloadURL(att.TaskID, att.ID)
	return att, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, taskID, attachmentID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM task_attachments WHERE id = $1 AND task_id = $2`,
		attachmentID, taskID)
	if err != nil {
		return apperr.Service("Failed to delete attachment", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperr.Service("Failed to delete attachment", err)
	}
	if affected == 0 {
		return apperr.NotFound("Attachment not found")
	}
	return nil
}
