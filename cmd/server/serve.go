package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	config "github.com/maheshrc27/listing-api/configs"
	"github.com/maheshrc27/listing-api/internal/api/handlers"
	"github.com/maheshrc27/listing-api/internal/api/middleware"
	"github.com/maheshrc27/listing-api/internal/database"
	job "github.com/maheshrc27/listing-api/internal/jobs"
	"github.com/maheshrc27/listing-api/internal/queue"
	"github.com/maheshrc27/listing-api/internal/repository"
	"github.com/maheshrc27/listing-api/internal/service"
	"github.com/robfig/cron"
	"github.com/spf13/cobra"
)

func newServeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, trigger worker and stale post sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := database.Open(ctx, cfg.PostgresURI)
	if err != nil {
		return err
	}
	defer closeDB(db)

	transactor := repository.NewTransactor(db)
	postRepo := repository.NewPostRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	syncRepo := repository.NewPlatformSyncRepository(db)
	queueRepo := repository.NewPublishingQueueRepository(db)
	logRepo := repository.NewAiGenerationLogRepository(db)

	storageService, err := service.NewStorageService(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	n8nService := service.NewN8NService(cfg.N8N)
	workflowService := service.NewWorkflowService(postRepo, assetRepo, n8nService, cfg.PublicURL)

	var dispatcher service.TriggerDispatcher
	var worker *asynq.Server
	if cfg.RedisURI != "" {
		redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
		client := asynq.NewClient(redisConn)
		defer client.Close()
		dispatcher = queue.NewDispatcher(client)

		worker = asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})
		mux := asynq.NewServeMux()
		queue.NewWorker(workflowService).Register(mux)

		go func() {
			log.Println("Starting the Asynq server...")
			if err := worker.Run(mux); err != nil {
				log.Fatalf("Could not start Asynq server: %v", err)
			}
		}()
	} else {
		slog.Warn("REDIS_URI is not set, workflow triggers run in-process")
		inline := service.NewInlineDispatcher(workflowService)
		defer inline.Wait()
		dispatcher = inline
	}

	postService := service.NewPostService(transactor, postRepo, assetRepo, syncRepo, queueRepo, logRepo, workflowService, dispatcher)
	callbackService := service.NewCallbackService(transactor, postRepo, assetRepo, syncRepo)
	uploadService := service.NewUploadService(transactor, postRepo, assetRepo, storageService)

	c := cron.New()
	if cfg.PendingAITimeout > 0 {
		staleJob := job.NewStalePendingJob(postRepo, cfg.PendingAITimeout)
		c.AddFunc("@every 00h05m00s", staleJob.Run)
		c.Start()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-API-Key",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	handlers.Register(app, handlers.Handlers{
		Post:    handlers.NewPostHandler(postService),
		Upload:  handlers.NewUploadHandler(uploadService),
		Webhook: handlers.NewWebhookHandler(callbackService),
	}, middleware.NewWebhookMiddleware(cfg.N8N.APIKey))

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	slog.Info("server is running", "port", cfg.Port)

	gracefulShutdown(app, c, worker)
	return nil
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, c *cron.Cron, worker *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}
	c.Stop()
	if worker != nil {
		worker.Shutdown()
	}

	log.Println("Server shutdown complete.")
}
