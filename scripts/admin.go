package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/config"
	"alfredoptarigan/resume-ranker/internal/importer"
	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/repositories"
	"alfredoptarigan/resume-ranker/internal/scoring"
	"alfredoptarigan/resume-ranker/internal/services"
)

var rootCmd = &cobra.Command{
	Use:           "ranker-admin",
	Short:         "Maintenance commands for the resume ranker",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var importCmd = &cobra.Command{
	Use:   "import-companies",
	Short: "Create or update companies from the placement spreadsheet (CSV)",
	RunE:  runImport,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the resume search index from the stored resumes",
	RunE:  runReindex,
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute the leaderboard of every company",
	RunE:  runReconcile,
}

var importFile string

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "./data/companies.csv", "Path to the companies CSV file")
	rootCmd.AddCommand(importCmd, reindexCmd, reconcileCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type stack struct {
	cfg         *config.Config
	log         *zap.Logger
	companyRepo repositories.CompanyRepository
	resumeRepo  repositories.ResumeRepository
	rankingRepo repositories.RankingRepository
	jobRepo     repositories.ReconcileJobRepository
	ranking     services.RankingService
}

func setup() (*stack, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	s := &stack{
		cfg:         cfg,
		log:         log,
		companyRepo: repositories.NewCompanyRepository(db),
		resumeRepo:  repositories.NewResumeRepository(db),
		rankingRepo: repositories.NewRankingRepository(db),
		jobRepo:     repositories.NewReconcileJobRepository(db),
	}
	s.ranking = services.NewRankingService(
		s.companyRepo,
		s.resumeRepo,
		s.rankingRepo,
		s.jobRepo,
		scoring.WithTimeout(scoring.NewWeightedScorer(), cfg.Ranking.ScoringTimeout),
		services.NewCompanyLocker(),
		services.RankingOptions{Concurrency: cfg.Ranking.Concurrency},
		log,
	)
	return s, nil
}

func runImport(cmd *cobra.Command, _ []string) error {
	s, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = s.log.Sync() }()

	f, err := os.Open(importFile)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", importFile, err)
	}
	defer f.Close()

	rows, err := importer.ReadCompanies(f)
	if err != nil {
		return err
	}
	s.log.Info("importing companies", zap.String("file", importFile), zap.Int("rows", len(rows)))

	// Without a worker the jobs stay queued until the API server picks them up.
	companies := services.NewCompanyService(s.companyRepo, s.rankingRepo, s.jobRepo, s.ranking, nil, s.log)
	summary := importer.Import(cmd.Context(), companies, rows, s.log)

	s.log.Info("import finished",
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed))

	if summary.Failed > 0 {
		return fmt.Errorf("%d companies failed to import: %w", summary.Failed, errors.Join(summary.Failures...))
	}
	return nil
}

func runReindex(cmd *cobra.Command, _ []string) error {
	s, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = s.log.Sync() }()

	if !s.cfg.Qdrant.Enabled {
		return services.ErrIndexDisabled
	}

	ctx := cmd.Context()
	gemini, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:     s.cfg.Gemini.APIKey,
		Model:      s.cfg.Gemini.Model,
		RetryDelay: s.cfg.Worker.RetryInitialDelay,
	}, s.log)
	if err != nil {
		return err
	}
	qdrant, err := services.NewQdrantService(s.cfg.Qdrant.URL, s.cfg.Qdrant.APIKey, s.cfg.Qdrant.Collection, s.log)
	if err != nil {
		return err
	}
	if err := qdrant.InitCollection(ctx); err != nil {
		return err
	}
	index := services.NewResumeIndex(qdrant, gemini, s.log)

	// FindAll leaves out the resume text, so each resume is loaded in full.
	resumes, err := s.resumeRepo.FindAll(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range resumes {
		log := logger.WithFields(s.log, logger.ResumeFields(r.ID, r.Email)...)
		full, err := s.resumeRepo.FindByID(ctx, r.ID)
		if err == nil {
			err = index.Index(ctx, full)
		}
		if err != nil {
			failed++
			log.Warn("failed to index resume", zap.Error(err))
			continue
		}
		log.Info("resume indexed")
	}

	s.log.Info("reindex finished", zap.Int("resumes", len(resumes)), zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d resumes failed to index", failed, len(resumes))
	}
	return nil
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	s, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = s.log.Sync() }()

	ctx := cmd.Context()
	companies, err := s.companyRepo.FindAll(ctx)
	if err != nil {
		return err
	}

	stale := 0
	for _, c := range companies {
		log := logger.WithFields(s.log, logger.CompanyFields(c.ID, c.Name)...)
		outcome, err := s.ranking.Reconcile(ctx, c.ID)
		if err != nil {
			stale++
			log.Warn("reconcile failed", zap.Error(err))
			continue
		}
		if len(outcome.Failures) > 0 {
			stale++
			log.Warn("reconciled with failures", zap.Int("failures", len(outcome.Failures)))
			continue
		}
		log.Info("leaderboard reconciled", zap.Int("resumes", len(outcome.Standings)))
	}

	if stale > 0 {
		return fmt.Errorf("%d of %d companies still have stale leaderboards", stale, len(companies))
	}
	return nil
}
