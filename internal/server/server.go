package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"todoapp/internal/auth"
	"todoapp/internal/config"
	"todoapp/internal/database"
	"todoapp/internal/handler"
	"todoapp/internal/middleware"
	"todoapp/internal/repository"
	"todoapp/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Printf("✅ Connected to database (%s)", cfg.DBDriver)

	gin.SetMode(cfg.GinMode)
	return New(db, cfg, NewLogger(cfg.LogLevel))
}

// New wires repositories, services and routes on top of an open database
// and seeds the roles and the admin account.
func New(db *gorm.DB, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, logger)
	taskService := service.NewTaskService(taskRepo, logger)

	if err := userService.Seed(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return nil, fmt.Errorf("❌ failed to seed users: %w", err)
	}
	log.Println("✅ Roles and admin account ready")

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService, tokens, taskService)
	taskHandler := handler.NewTaskHandler(taskService)

	// Setup Gin
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), errorLogger(logger))

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.GET("/me", userHandler.Me)

		// Task routes
		authorized.GET("/tasks", taskHandler.List)
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/toggle", taskHandler.ToggleComplete)
	}
	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
	}, nil
}

// NewLogger builds the structured logger handed to the services.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error", "silent":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// errorLogger logs errors handlers attached with c.Error.
func errorLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		for _, e := range c.Errors {
			logger.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", c.Writer.Status(),
				"error", e.Err,
			)
		}
	}
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("✅ Server exited properly")
}
