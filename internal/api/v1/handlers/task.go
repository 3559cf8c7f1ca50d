package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kanban-backend/internal/middleware"
	"kanban-backend/internal/models"
	"kanban-backend/internal/repository"
	ws "kanban-backend/internal/websocket"
	"kanban-backend/pkg/logger"
	"kanban-backend/pkg/response"
)

// taskCacheTTL bounds how stale a cached task can get if an invalidation
// is lost.
const taskCacheTTL = time.Hour

type TaskHandler struct {
	tasks    repository.TaskStore
	cache    *redis.Client
	hub      *ws.Hub
	validate *validator.Validate
}

// NewTaskHandler wires the task endpoints. cache and hub may be nil; both
// are advisory side channels.
func NewTaskHandler(tasks repository.TaskStore, cache *redis.Client, hub *ws.Hub, validate *validator.Validate) *TaskHandler {
	return &TaskHandler{tasks: tasks, cache: cache, hub: hub, validate: validate}
}

type CreateTaskRequest struct {
	Name         string   `json:"name" validate:"required"`
	Description  *string  `json:"description"`
	Status       string   `json:"status" validate:"omitempty,oneof=TO_DO DOING DONE"`
	ExternalLink *string  `json:"external_link"`
	Teams        []string `json:"teams"`
}

type UpdateTaskRequest struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	Status       *string   `json:"status"`
	ExternalLink *string   `json:"external_link"`
	Teams        *[]string `json:"teams"`
}

func taskCacheKey(id int) string {
	return fmt.Sprintf("task:%d", id)
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	userID := c.Locals(middleware.LocalsUserID).(int)

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("bad create task body", zap.Error(err))
		return response.Error(c, fiber.StatusBadRequest, "Bad request")
	}

	if err := h.validate.Struct(req); err != nil {
		if req.Name == "" {
			return response.Error(c, fiber.StatusBadRequest, "Task name is required")
		}
		return response.Error(c, fiber.StatusBadRequest, "Invalid task status")
	}
	if req.Status == "" {
		req.Status = models.StatusToDo
	}

	task, err := h.tasks.Create(c.Context(), userID, repository.NewTask{
		Name:         req.Name,
		Description:  req.Description,
		Status:       req.Status,
		ExternalLink: req.ExternalLink,
		Teams:        req.Teams,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	h.cacheSet(c, task)
	h.hub.Publish(ws.EventTaskCreated, task.ID)

	logger.AuditLogger.Info("task created",
		zap.Int("task_id", task.ID), zap.Int("user_id", userID))
	return response.Success(c, fiber.StatusCreated, "Task created successfully", task)
}

func (h *TaskHandler) List(c *fiber.Ctx) error {
	tasks, err := h.tasks.List(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	if tasks == nil {
		tasks = []models.TaskDetail{}
	}
	return response.Success(c, fiber.StatusOK, "Tasks retrieved successfully", tasks)
}

// Get serves a single task, from cache when possible. A miss is a success
// with data null, not an error.
func (h *TaskHandler) Get(c *fiber.Ctx) error {
	taskID, err := c.ParamsInt("id")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid task ID")
	}

	if task := h.cacheGet(c, taskID); task != nil {
		return response.Success(c, fiber.StatusOK, "Task retrieved successfully", task)
	}

	task, err := h.tasks.Get(c.Context(), taskID)
	if err != nil {
		return response.FromError(c, err)
	}
	if task == nil {
		return response.Success(c, fiber.StatusOK, "Task not found", nil)
	}

	h.cacheSet(c, task)
	return response.Success(c, fiber.StatusOK, "Task retrieved successfully", task)
}

func (h *TaskHandler) Update(c *fiber.Ctx) error {
	taskID, err := c.ParamsInt("id")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid task ID")
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("bad update task body", zap.Error(err))
		return response.Error(c, fiber.StatusBadRequest, "Bad request")
	}

	if req.Status != nil && !models.ValidStatus(*req.Status) {
		return response.Error(c, fiber.StatusBadRequest, "Invalid task status")
	}
	if req.Name != nil && *req.Name == "" {
		return response.Error(c, fiber.StatusBadRequest, "Task name is required")
	}

	task, err := h.tasks.Update(c.Context(), taskID, repository.TaskPatch{
		Name:         req.Name,
		Description:  req.Description,
		Status:       req.Status,
		ExternalLink: req.ExternalLink,
		Teams:        req.Teams,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	h.cacheDelete(c, taskID)
	h.hub.Publish(ws.EventTaskUpdated, taskID)

	logger.AuditLogger.Info("task updated", zap.Int("task_id", taskID))
	return response.Success(c, fiber.StatusOK, "Task updated successfully", task)
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	taskID, err := c.ParamsInt("id")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid task ID")
	}

	if err := h.tasks.Delete(c.Context(), taskID); err != nil {
		return response.FromError(c, err)
	}

	h.cacheDelete(c, taskID)
	h.hub.Publish(ws.EventTaskDeleted, taskID)

	logger.AuditLogger.Info("task deleted", zap.Int("task_id", taskID))
	return response.Success(c, fiber.StatusOK, "Task deleted successfully", true)
}

// Cache helpers. Redis trouble is logged and otherwise ignored: the store
// stays authoritative and a request never fails because the cache did.

func (h *TaskHandler) cacheGet(c *fiber.Ctx, taskID int) *models.TaskDetail {
	if h.cache == nil {
		return nil
	}
	raw, err := h.cache.Get(c.Context(), taskCacheKey(taskID)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.ErrorLogger.Warn("task cache read failed", zap.Error(err))
		}
		return nil
	}
	task := &models.TaskDetail{}
	if err := json.Unmarshal([]byte(raw), task); err != nil {
		logger.ErrorLogger.Warn("task cache entry corrupt", zap.Error(err))
		return nil
	}
	return task
}

func (h *TaskHandler) cacheSet(c *fiber.Ctx, task *models.TaskDetail) {
	if h.cache == nil {
		return
	}
	payload, err := json.Marshal(task)
	if err != nil {
		logger.ErrorLogger.Warn("task cache encode failed", zap.Error(err))
		return
	}
	if err := h.cache.Set(c.Context(), taskCacheKey(task.ID), payload, taskCacheTTL).Err(); err != nil {
		logger.ErrorLogger.Warn("task cache write failed", zap.Error(err))
	}
}

func (h *TaskHandler) cacheDelete(c *fiber.Ctx, taskID int) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Del(c.Context(), taskCacheKey(taskID)).Err(); err != nil {
		logger.ErrorLogger.Warn("task cache invalidation failed", zap.Error(err))
	}
}
