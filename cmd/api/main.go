package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/config"
	"alfredoptarigan/resume-ranker/internal/handlers"
	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/repositories"
	"alfredoptarigan/resume-ranker/internal/scoring"
	"alfredoptarigan/resume-ranker/internal/services"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.EnvFile {
		log.Info("no .env file found, using process environment")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("bad configuration", zap.Error(err))
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return err
	}

	companyRepo := repositories.NewCompanyRepository(db)
	resumeRepo := repositories.NewResumeRepository(db)
	rankingRepo := repositories.NewRankingRepository(db)
	jobRepo := repositories.NewReconcileJobRepository(db)

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	geminiService, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:     cfg.Gemini.APIKey,
		Model:      cfg.Gemini.Model,
		RetryDelay: cfg.Worker.RetryInitialDelay,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to initialize gemini: %w", err)
	}

	index := services.NewDisabledResumeIndex()
	if cfg.Qdrant.Enabled {
		qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
		if err != nil {
			return fmt.Errorf("failed to initialize qdrant: %w", err)
		}
		if err := qdrantService.InitCollection(ctx); err != nil {
			return fmt.Errorf("failed to initialize qdrant collection: %w", err)
		}
		index = services.NewResumeIndex(qdrantService, geminiService, log)
	} else {
		log.Info("resume index disabled")
	}

	scorer := scoring.WithTimeout(scoring.NewWeightedScorer(), cfg.Ranking.ScoringTimeout)
	rankingService := services.NewRankingService(
		companyRepo,
		resumeRepo,
		rankingRepo,
		jobRepo,
		scorer,
		services.NewCompanyLocker(),
		services.RankingOptions{Concurrency: cfg.Ranking.Concurrency},
		log,
	)

	worker := services.NewWorker(jobRepo, rankingService, services.WorkerOptions{
		Concurrency:  cfg.Worker.Concurrency,
		MaxAttempts:  cfg.Worker.RetryMaxAttempts,
		PollInterval: cfg.Worker.PollInterval,
	}, log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	worker.Start(workerCtx)

	resumeService := services.NewResumeService(services.ResumeServiceDeps{
		ResumeRepo:     resumeRepo,
		CompanyRepo:    companyRepo,
		RankingRepo:    rankingRepo,
		JobRepo:        jobRepo,
		RankingService: rankingService,
		Storage:        storageService,
		Extractor:      services.NewTextExtractor(),
		Parser:         services.NewAttributeParser(geminiService, cfg.Worker.RetryMaxAttempts, cfg.Ranking.ParserTimeout, log),
		Index:          index,
		PostCommit:     services.NewPostCommitRunner(log),
	}, log)
	companyService := services.NewCompanyService(companyRepo, rankingRepo, jobRepo, rankingService, worker, log)

	app := fiber.New(fiber.Config{
		AppName:      "Resume Ranker API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * cfg.Ranking.ParserTimeout,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.RegisterRoutes(
		app.Group("/api/v1"),
		handlers.NewResumeHandler(resumeService, cfg.Storage.MaxFileSize, log),
		handlers.NewCompanyHandler(companyService, log),
	)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Ranker API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/resumes",
				"GET /api/v1/resumes",
				"GET /api/v1/resumes/search?q=",
				"GET /api/v1/resumes/:id",
				"DELETE /api/v1/resumes/:id",
				"POST /api/v1/companies",
				"GET /api/v1/companies",
				"GET /api/v1/companies/:id",
				"PUT /api/v1/companies/:id",
				"DELETE /api/v1/companies/:id",
				"GET /api/v1/companies/:id/resumes",
				"POST /api/v1/companies/:id/reconcile",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Server.Env))

	err = app.Listen(addr)
	worker.Stop()
	return err
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"code":  code,
		})
	}
}
