package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/repositories"
)

// ValidationError wraps a rejected company payload.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid company: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type CompanyService interface {
	Create(ctx context.Context, req models.CompanyRequest) (*models.Company, *RankingOutcome, error)
	Update(ctx context.Context, id uuid.UUID, patch models.CompanyPatch) (*models.Company, *RankingOutcome, error)
	// Upsert creates the company or replaces the one with the same name.
	Upsert(ctx context.Context, req models.CompanyRequest) (*models.Company, bool, *RankingOutcome, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Company, error)
	List(ctx context.Context) ([]models.Company, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Leaderboard(ctx context.Context, id uuid.UUID) ([]models.LeaderboardEntry, error)
	RequestReconcile(ctx context.Context, id uuid.UUID) (*models.ReconcileJob, error)
}

// JobNotifier hands a queued job to a running worker.
type JobNotifier interface {
	EnqueueJob(jobID uuid.UUID)
}

type companyService struct {
	companyRepo    repositories.CompanyRepository
	rankingRepo    repositories.RankingRepository
	jobRepo        repositories.ReconcileJobRepository
	rankingService RankingService
	notifier       JobNotifier
	log            *zap.Logger
}

func NewCompanyService(
	companyRepo repositories.CompanyRepository,
	rankingRepo repositories.RankingRepository,
	jobRepo repositories.ReconcileJobRepository,
	rankingService RankingService,
	notifier JobNotifier,
	log *zap.Logger,
) CompanyService {
	return &companyService{
		companyRepo:    companyRepo,
		rankingRepo:    rankingRepo,
		jobRepo:        jobRepo,
		rankingService: rankingService,
		notifier:       notifier,
		log:            log.Named("companies"),
	}
}

func (s *companyService) Create(ctx context.Context, req models.CompanyRequest) (*models.Company, *RankingOutcome, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		return nil, nil, &ValidationError{Err: err}
	}

	company := &models.Company{}
	applyRequest(company, req)
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, nil, err
	}

	s.log.Info("company created", logger.CompanyFields(company.ID, company.Name)...)
	outcome, err := s.rankingService.OnCompanyUpserted(ctx, company)
	return company, outcome, err
}

func (s *companyService) Update(ctx context.Context, id uuid.UUID, patch models.CompanyPatch) (*models.Company, *RankingOutcome, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if err := patch.Validate(); err != nil {
		return nil, nil, &ValidationError{Err: err}
	}

	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	applyPatch(company, patch)

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, nil, err
	}

	s.log.Info("company updated", logger.CompanyFields(company.ID, company.Name)...)
	outcome, err := s.rankingService.OnCompanyUpserted(ctx, company)
	return company, outcome, err
}

func (s *companyService) Upsert(ctx context.Context, req models.CompanyRequest) (*models.Company, bool, *RankingOutcome, error) {
	req.Name = strings.TrimSpace(req.Name)
	existing, err := s.companyRepo.FindByName(ctx, req.Name)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		company, outcome, err := s.Create(ctx, req)
		return company, true, outcome, err
	case err != nil:
		return nil, false, nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, false, nil, &ValidationError{Err: err}
	}
	applyRequest(existing, req)
	if err := s.companyRepo.Update(ctx, existing); err != nil {
		return nil, false, nil, err
	}

	s.log.Info("company replaced", logger.CompanyFields(existing.ID, existing.Name)...)
	outcome, err := s.rankingService.OnCompanyUpserted(ctx, existing)
	return existing, false, outcome, err
}

func (s *companyService) Get(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return s.companyRepo.FindByID(ctx, id)
}

func (s *companyService) List(ctx context.Context) ([]models.Company, error) {
	return s.companyRepo.FindAll(ctx)
}

func (s *companyService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.rankingService.OnCompanyDeleted(ctx, id)
}

func (s *companyService) Leaderboard(ctx context.Context, id uuid.UUID) ([]models.LeaderboardEntry, error) {
	if _, err := s.companyRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.rankingRepo.Leaderboard(ctx, id)
}

func (s *companyService) RequestReconcile(ctx context.Context, id uuid.UUID) (*models.ReconcileJob, error) {
	if _, err := s.companyRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	job, err := s.jobRepo.Enqueue(ctx, id, "requested via api")
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.EnqueueJob(job.ID)
	}
	return job, nil
}

func applyRequest(c *models.Company, req models.CompanyRequest) {
	c.Name = req.Name
	c.MinCPI = req.CPI
	c.SkillSet = req.SkillSet
	c.InternshipRole = req.InternshipRole
	c.VisitsCampus = req.VisitsCampus
	c.MinProjects = req.MinProjects
	c.ProjectKeywords = req.ProjectKeywords
	c.Branches = req.Branch
	c.DSARequired = req.DSARequired
	c.CoreSkills = req.CoreSkills
	c.Description = req.Description
}

func applyPatch(c *models.Company, p models.CompanyPatch) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.CPI != nil {
		c.MinCPI = *p.CPI
	}
	if p.SkillSet != nil {
		c.SkillSet = *p.SkillSet
	}
	if p.InternshipRole != nil {
		c.InternshipRole = *p.InternshipRole
	}
	if p.VisitsCampus != nil {
		c.VisitsCampus = *p.VisitsCampus
	}
	if p.MinProjects != nil {
		c.MinProjects = *p.MinProjects
	}
	if p.ProjectKeywords != nil {
		c.ProjectKeywords = *p.ProjectKeywords
	}
	if p.Branch != nil {
		c.Branches = *p.Branch
	}
	if p.DSARequired != nil {
		c.DSARequired = *p.DSARequired
	}
	if p.CoreSkills != nil {
		c.CoreSkills = *p.CoreSkills
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
}
