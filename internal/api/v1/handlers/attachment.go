package handlers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kanban-backend/internal/middleware"
	"kanban-backend/internal/models"
	"kanban-backend/internal/repository"
	"kanban-backend/pkg/logger"
	"kanban-backend/pkg/response"
)

const maxAttachmentSize = 5 * 1024 * 1024

var allowedAttachmentExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true,
	".xlsx": true, ".txt": true, ".csv": true, ".zip": true,
}

type AttachmentHandler struct {
	attachments repository.AttachmentStore
	tasks       repository.TaskStore
	uploadDir   string
}

func NewAttachmentHandler(attachments repository.AttachmentStore, tasks repository.TaskStore, uploadDir string) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments, tasks: tasks, uploadDir: uploadDir}
}

// taskByParam loads the task an attachment route is nested under. When the
// route cannot proceed it writes the rejection itself and returns a nil
// task with the write's result, so callers just return err on nil.
func (h *AttachmentHandler) taskByParam(c *fiber.Ctx) (*models.TaskDetail, error) {
	taskID, err := c.ParamsInt("id")
	if err != nil {
		return nil, response.Error(c, fiber.StatusBadRequest, "Invalid task ID")
	}
	task, err := h.tasks.Get(c.Context(), taskID)
	if err != nil {
		return nil, response.FromError(c, err)
	}
	if task == nil {
		return nil, response.Error(c, fiber.StatusNotFound, "Task not found")
	}
	return task, nil
}

func (h *AttachmentHandler) Upload(c *fiber.Ctx) error {
	task, err := h.taskByParam(c)
	if task == nil {
		return err
	}
	userID := c.Locals(middleware.LocalsUserID).(int)

	file, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, "No file provided")
	}
	if file.Size > maxAttachmentSize {
		return response.Error(c, fiber.StatusBadRequest, "File size exceeds the 5MB limit")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAttachmentExts[ext] {
		return response.Error(c, fiber.StatusBadRequest, "File type not allowed")
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return response.FromError(c, err)
	}
	storedName := uuid.NewString() + ext
	storedPath := filepath.Join(h.uploadDir, storedName)
	if err := c.SaveFile(file, storedPath); err != nil {
		logger.ErrorLogger.Error("attachment save failed",
			zap.String("path", storedPath), zap.Error(err))
		return response.Error(c, fiber.StatusInternalServerError, "Failed to save file")
	}

	mimeType := file.Header.Get("Content-Type")
	att := &models.TaskAttachment{
		TaskID:       task.ID,
		FileName:     storedName,
		OriginalName: file.Filename,
		FilePath:     storedPath,
		FileSize:     file.Size,
		MimeType:     mimeType,
		UploadedBy:   userID,
	}
	if err := h.attachments.Add(c.Context(), att); err != nil {
		os.Remove(storedPath)
		return response.FromError(c, err)
	}

	logger.AuditLogger.Info("attachment uploaded",
		zap.Int("task_id", task.ID),
		zap.Int("attachment_id", att.ID),
		zap.Int("user_id", userID))
	return response.Success(c, fiber.StatusCreated, "File uploaded successfully", att)
}

func (h *AttachmentHandler) List(c *fiber.Ctx) error {
	task, err := h.taskByParam(c)
	if task == nil {
		return err
	}
	atts, err := h.attachments.ListByTask(c.Context(), task.ID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Attachments retrieved successfully", atts)
}

func (h *AttachmentHandler) Download(c *fiber.Ctx) error {
	task, err := h.taskByParam(c)
	if task == nil {
		return err
	}
	attID, err := c.ParamsInt("attachmentId")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid attachment ID")
	}
	att, err := h.attachments.Get(c.Context(), task.ID, attID)
	if err != nil {
		return response.FromError(c, err)
	}
	if att == nil {
		return response.Error(c, fiber.StatusNotFound, "Attachment not found")
	}
	if _, err := os.Stat(att.FilePath); err != nil {
		logger.ErrorLogger.Error("attachment file missing on disk",
			zap.String("path", att.FilePath), zap.Error(err))
		return response.Error(c, fiber.StatusNotFound, "Attachment not found")
	}
	return c.Download(att.FilePath, att.OriginalName)
}

func (h *AttachmentHandler) Delete(c *fiber.Ctx) error {
	task, err := h.taskByParam(c)
	if task == nil {
		return err
	}
	attID, err := c.ParamsInt("attachmentId")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid attachment ID")
	}
	att, err := h.attachments.Get(c.Context(), task.ID, attID)
	if err != nil {
		return response.FromError(c, err)
	}
	if att == nil {
		return response.Error(c, fiber.StatusNotFound, "Attachment not found")
	}
	if err := h.attachments.Delete(c.Context(), task.ID, attID); err != nil {
		return response.FromError(c, err)
	}
	if err := os.Remove(att.FilePath); err != nil && !os.IsNotExist(err) {
		logger.ErrorLogger.Warn("attachment file cleanup failed",
			zap.String("path", att.FilePath), zap.Error(err))
	}

	logger.AuditLogger.Info("attachment deleted",
		zap.Int("task_id", task.ID), zap.Int("attachment_id", attID))
	return response.Success(c, fiber.StatusOK, "Attachment deleted successfully", true)
}
