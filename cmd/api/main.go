package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/recruiter/internal/bootstrap"
	"alfredoptarigan/recruiter/internal/config"
	"alfredoptarigan/recruiter/internal/handlers"
	"alfredoptarigan/recruiter/internal/repositories"
	"alfredoptarigan/recruiter/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	docRepo := repositories.NewDocumentRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	checkpointRepo := repositories.NewCheckpointRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coordinator, err := bootstrap.NewCoordinator(ctx, cfg, checkpointRepo)
	if err != nil {
		log.Fatalf("❌ Failed to initialize workflow: %v", err)
	}
	log.Printf("✅ Workflow initialized (score threshold %.1f)\n", cfg.Workflow.ScoreThreshold)

	// Initialize worker
	worker := services.NewWorker(jobRepo, coordinator, services.WorkerOptions{
		Concurrency:  cfg.Worker.Concurrency,
		QueueSize:    cfg.Worker.QueueSize,
		PollInterval: cfg.Worker.PollInterval,
	})
	worker.Start(ctx)

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(docRepo, storageService, cfg.Storage.MaxFileSize)
	workflowHandler := handlers.NewWorkflowHandler(coordinator, jobRepo, worker, cfg.Workflow.RunTimeout)
	jobHandler := handlers.NewJobHandler(jobRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Recruiter Workflow API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Workflow.RunTimeout + 30*time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	app.Get("/health", handlers.HandleHealth)

	app.Post("/workflow", workflowHandler.HandleExecute)
	app.Post("/workflow/queue", workflowHandler.HandleEnqueue)
	app.Post("/workflow/stream", workflowHandler.HandleStream)
	app.Get("/runs/:id", workflowHandler.HandleRunState)
	app.Get("/runs/:id/checkpoints", workflowHandler.HandleCheckpoints)
	app.Get("/jobs/:id", jobHandler.HandleGetJob)
	app.Post("/upload", uploadHandler.HandleUpload)
	app.Get("/documents/:id", uploadHandler.HandleGetDocument)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		cancel()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
