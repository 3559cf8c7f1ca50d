package main

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberws "github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"kanban-backend/configs"
	v1 "kanban-backend/internal/api/v1"
	"kanban-backend/internal/api/v1/handlers"
	"kanban-backend/internal/middleware"
	"kanban-backend/internal/repository"
	"kanban-backend/internal/token"
	ws "kanban-backend/internal/websocket"
	"kanban-backend/pkg/database"
	"kanban-backend/pkg/logger"
	"kanban-backend/pkg/response"
)

func main() {
	if err := logger.Init("logs"); err != nil {
		log.Fatalf("failed to initialize loggers: %v", err)
	}
	defer logger.Sync()

	cfg, err := configs.Load()
	if err != nil {
		logger.ErrorLogger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg, cfg.DBName)
	if err != nil {
		logger.ErrorLogger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := repository.CreateTablesIfNotExist(ctx, db); err != nil {
		logger.ErrorLogger.Fatal("schema setup failed", zap.Error(err))
	}
	if err := repository.SeedDefaults(ctx, db); err != nil {
		logger.ErrorLogger.Fatal("seeding failed", zap.Error(err))
	}

	// The cache is advisory. A missing Redis degrades to store-only reads.
	cache, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.SystemLogger.Warn("redis unavailable, task cache disabled", zap.Error(err))
		cache = nil
	}

	tokens := token.NewService([]byte(cfg.JWTSecret), cfg.TokenTTL)

	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	hub := ws.NewHub()
	go hub.Run()

	validate := validator.New()

	app := fiber.New(fiber.Config{
		AppName:   "kanban-backend",
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Use(middleware.Recover())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	gate := middleware.Auth(tokens)

	v1.RegisterRoutes(app, v1.Handlers{
		Auth:        handlers.NewAuthHandler(userRepo, tokens),
		Tasks:       handlers.NewTaskHandler(taskRepo, cache, hub, validate),
		Teams:       handlers.NewTeamHandler(teamRepo),
		Attachments: handlers.NewAttachmentHandler(attachmentRepo, taskRepo, cfg.UploadDir),
		Health:      handlers.NewHealthHandler(db),
	}, gate)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if !fiberws.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if _, err := tokens.Validate(c.Query("token")); err != nil {
			return response.Error(c, fiber.StatusUnauthorized, "Authentication required")
		}
		return c.Next()
	})
	app.Get("/ws/board", fiberws.New(hub.HandleConn))

	logger.SystemLogger.Info("server starting", zap.Int("port", cfg.ServerPort))
	if err := app.Listen(fmt.Sprintf(":%d", cfg.ServerPort)); err != nil {
		logger.ErrorLogger.Fatal("server stopped", zap.Error(err))
	}
}
