package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"peerdesk/internal/auth"
	"peerdesk/internal/config"
	"peerdesk/internal/database"
	"peerdesk/internal/handlers"
	"peerdesk/internal/logger"
	"peerdesk/internal/middleware"
	"peerdesk/internal/policy"
	"peerdesk/internal/repository"
	"peerdesk/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logger
	logger.Setup(logger.Config{
		Level: cfg.Log.Level,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
	)

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *database.Database) {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	// Run database migrations
	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations("./migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Load per-journal default disclosure policies
	filePolicies, err := config.LoadWorkflowPolicies(cfg.Policy.WorkflowPolicyFile)
	if err != nil {
		slog.Error("Failed to load workflow policy file", "path", cfg.Policy.WorkflowPolicyFile, "error", err)
		os.Exit(1)
	}
	if len(filePolicies) > 0 {
		slog.Info("Workflow policy file loaded", "journals", len(filePolicies))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	journalRepo := repository.NewJournalRepository(db.DB)
	manuscriptRepo := repository.NewManuscriptRepository(db.DB)
	assignmentRepo := repository.NewAssignmentRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)

	// The reviewer index caches pseudonym ordinals per manuscript and is the
	// single shared instance for the whole process.
	reviewerIndex := policy.NewReviewerIndex(assignmentRepo)

	// Initialize services
	authService := auth.NewService(&cfg.JWT)
	authSvc := service.NewAuthService(userRepo, authService)
	journalService := service.NewJournalService(journalRepo)
	manuscriptService := service.NewManuscriptService(manuscriptRepo, journalRepo)
	assignmentService := service.NewAssignmentService(assignmentRepo, manuscriptRepo, userRepo, reviewerIndex)
	conversationService := service.NewConversationService(
		messageRepo,
		manuscriptRepo,
		journalRepo,
		userRepo,
		assignmentRepo,
		reviewerIndex,
		filePolicies,
	)

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authService)
	rbacMw := middleware.NewRBACMiddleware()
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)
	auditMw := middleware.NewAuditMiddleware(db.DB)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authSvc, auditMw)
	journalHandler := handlers.NewJournalHandler(journalService, reviewerIndex, auditMw)
	manuscriptHandler := handlers.NewManuscriptHandler(manuscriptService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService, auditMw)
	conversationHandler := handlers.NewConversationHandler(conversationService)
	adminHandler := handlers.NewAdminHandler(reviewerIndex, auditRepo, auditMw)

	// Setup router
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.Handle("GET /api/v1/auth/me", authMw.Authenticate(http.HandlerFunc(authHandler.Me)))

	mux.HandleFunc("GET /api/v1/journals/{slug}", journalHandler.GetBySlug)

	// Discussion reads accept anonymous viewers; visibility filtering and
	// identity masking are applied per viewer by the service.
	mux.Handle("GET /api/v1/conversations/{id}",
		authMw.OptionalAuth(http.HandlerFunc(conversationHandler.GetConversation)))
	mux.Handle("GET /api/v1/manuscripts/{id}/discussion",
		authMw.OptionalAuth(http.HandlerFunc(conversationHandler.GetManuscriptDiscussion)))
	mux.Handle("GET /api/v1/manuscripts/{id}",
		authMw.OptionalAuth(http.HandlerFunc(manuscriptHandler.Get)))

	// Participant routes
	mux.Handle("POST /api/v1/manuscripts",
		authMw.Authenticate(http.HandlerFunc(manuscriptHandler.Submit)))
	mux.Handle("POST /api/v1/manuscripts/{id}/conversations",
		authMw.Authenticate(http.HandlerFunc(conversationHandler.CreateConversation)))
	mux.Handle("POST /api/v1/conversations/{id}/messages",
		authMw.Authenticate(http.HandlerFunc(conversationHandler.PostMessage)))

	// Editorial routes
	mux.Handle("POST /api/v1/journals",
		authMw.Authenticate(rbacMw.RequireEditorial(http.HandlerFunc(journalHandler.Create))))
	mux.Handle("GET /api/v1/journals/{id}/manuscripts",
		authMw.Authenticate(rbacMw.RequireEditorial(http.HandlerFunc(manuscriptHandler.ListByJournal))))
	mux.Handle("GET /api/v1/journals/{id}/workflow-config",
		authMw.Authenticate(rbacMw.RequireEditorial(http.HandlerFunc(journalHandler.GetWorkflowConfig))))
	mux.Handle("PUT /api/v1/journals/{id}/workflow-config",
		authMw.Authenticate(rbacMw.RequireEditorial(http.HandlerFunc(journalHandler.SetWorkflowConfig))))
	mux.Handle("DELETE /api/v1/journals/{id}/workflow-config",
		authMw.Authenticate(rbacMw.RequireEditorial(http.HandlerFunc(journalHandler.ClearWorkflowConfig))))
	mux.Handle("POST /api/v1/manuscripts/{id}/transition",
		authMw.Authenticate(rbacMw.RequireEditorial(http.HandlerFunc(manuscriptHandler.Transition))))
	mux.Handle("POST /api/v1/manuscripts/{id}/authors",
		authMw.Authenticate(rbacMw.RequireEditorial(http.HandlerFunc(manuscriptHandler.AddAuthor))))
	mux.Handle("POST /api/v1/manuscripts/{id}/assignments",
		authMw.Authenticate(rbacMw.RequireEditorial(http.HandlerFunc(assignmentHandler.Assign))))
	mux.Handle("GET /api/v1/manuscripts/{id}/assignments",
		authMw.Authenticate(rbacMw.RequireEditorial(http.HandlerFunc(assignmentHandler.List))))
	mux.Handle("PATCH /api/v1/assignments/{id}",
		authMw.Authenticate(http.HandlerFunc(assignmentHandler.UpdateStatus)))
	mux.Handle("DELETE /api/v1/assignments/{id}",
		authMw.Authenticate(rbacMw.RequireEditorial(http.HandlerFunc(assignmentHandler.Remove))))

	// Admin routes
	mux.Handle("POST /api/v1/admin/reviewer-index/invalidate",
		authMw.Authenticate(rbacMw.RequireAdmin(http.HandlerFunc(adminHandler.InvalidateReviewerIndex))))
	mux.Handle("GET /api/v1/admin/audit-logs",
		authMw.Authenticate(rbacMw.RequireAdmin(http.HandlerFunc(adminHandler.ListAuditLogs))))

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, err := w.Write([]byte(`{"status":"unhealthy","database":"error"}`)); err != nil {
				slog.Error("Failed to write health check response", "error", err)
			}
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"healthy","version":"` + cfg.App.Version + `"}`)); err != nil {
			slog.Error("Failed to write health check response", "error", err)
		}
	})

	// Apply global middleware
	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(
				rateLimiter.Limit(mux),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
