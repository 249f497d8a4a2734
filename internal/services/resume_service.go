package services

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/normalizer"
	"alfredoptarigan/resume-ranker/internal/repositories"
)

type ResumeService interface {
	// Upload runs the whole pipeline for one uploaded file: store, extract,
	// parse, upsert by email, rank against every company.
	Upload(ctx context.Context, file *multipart.FileHeader) (*UploadResult, error)
	List(ctx context.Context) ([]models.Resume, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Resume, []models.Ranking, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error)
}

type UploadResult struct {
	Resume  *models.Resume
	Created bool
	Outcome *RankingOutcome
}

type resumeService struct {
	resumeRepo     repositories.ResumeRepository
	companyRepo    repositories.CompanyRepository
	rankingRepo    repositories.RankingRepository
	jobRepo        repositories.ReconcileJobRepository
	rankingService RankingService
	storage        StorageService
	extractor      TextExtractor
	parser         AttributeParser
	index          ResumeIndex
	postCommit     PostCommitRunner
	log            *zap.Logger
}

type ResumeServiceDeps struct {
	ResumeRepo     repositories.ResumeRepository
	CompanyRepo    repositories.CompanyRepository
	RankingRepo    repositories.RankingRepository
	JobRepo        repositories.ReconcileJobRepository
	RankingService RankingService
	Storage        StorageService
	Extractor      TextExtractor
	Parser         AttributeParser
	Index          ResumeIndex
	PostCommit     PostCommitRunner
}

func NewResumeService(deps ResumeServiceDeps, log *zap.Logger) ResumeService {
	index := deps.Index
	if index == nil {
		index = NewDisabledResumeIndex()
	}
	return &resumeService{
		resumeRepo:     deps.ResumeRepo,
		companyRepo:    deps.CompanyRepo,
		rankingRepo:    deps.RankingRepo,
		jobRepo:        deps.JobRepo,
		rankingService: deps.RankingService,
		storage:        deps.Storage,
		extractor:      deps.Extractor,
		parser:         deps.Parser,
		index:          index,
		postCommit:     deps.PostCommit,
		log:            log.Named("resumes"),
	}
}

func (s *resumeService) Upload(ctx context.Context, file *multipart.FileHeader) (*UploadResult, error) {
	_, path, err := s.storage.SaveFile(file, "resume")
	if err != nil {
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if err := s.storage.DeleteFile(path); err != nil {
				s.log.Warn("failed to clean up upload", zap.String("path", path), zap.Error(err))
			}
		}
	}()

	content, err := s.extractor.Extract(path)
	if err != nil {
		return nil, &ParsingFailure{Stage: StageExtract, Err: err}
	}

	attributes, err := s.parser.Parse(ctx, content.Text)
	if err != nil {
		return nil, &ParsingFailure{Stage: StageParse, Err: err}
	}

	raw, err := normalizer.DecodeResume(attributes)
	if err != nil {
		s.log.Warn("resume attributes partially decoded", zap.String("file", file.Filename), zap.Error(err))
	}
	raw.Email = strings.TrimSpace(raw.Email)
	if raw.Email == "" {
		return nil, &ParsingFailure{Stage: StageEmail, Err: ErrMissingEmail}
	}

	companies, err := s.companyRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, ErrNoCompanies
	}

	previous, err := s.resumeRepo.FindByEmail(ctx, raw.Email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	resume, err := buildResume(raw, file.Filename, content.Text, path)
	if err != nil {
		return nil, err
	}

	created, err := s.resumeRepo.Upsert(ctx, resume)
	if err != nil {
		return nil, &PersistenceFailure{Op: "save resume", Err: err}
	}
	committed = true

	log := logger.WithFields(s.log, logger.ResumeFields(resume.ID, resume.Email)...)
	log.Info("resume stored", zap.Bool("created", created), zap.String("file", file.Filename))

	outcome, err := s.rankingService.OnResumeUpserted(ctx, resume)
	if err != nil {
		log.Warn("resume stored but not ranked", zap.Error(err))
		outcome = &RankingOutcome{}
		outcome.fail(&PersistenceFailure{Op: "rank resume", Err: err})
		s.queueReconcile(ctx, log, companies, "resume "+resume.ID.String()+" not ranked: "+err.Error())
	}

	tasks := []PostCommitTask{{
		Name: "index resume",
		Run:  func(ctx context.Context) error { return s.index.Index(ctx, resume) },
	}}
	if previous != nil && previous.FilePath != "" && previous.FilePath != path {
		old := previous.FilePath
		tasks = append(tasks, PostCommitTask{
			Name: "delete previous file",
			Run:  func(context.Context) error { return s.storage.DeleteFile(old) },
		})
	}
	s.postCommit.Run(ctx, tasks...)

	return &UploadResult{Resume: resume, Created: created, Outcome: outcome}, nil
}

// queueReconcile asks for a full recompute of every company the resume missed.
func (s *resumeService) queueReconcile(ctx context.Context, log *zap.Logger, companies []models.Company, reason string) {
	if s.jobRepo == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, company := range companies {
		if _, err := s.jobRepo.Enqueue(ctx, company.ID, reason); err != nil {
			log.Error("failed to queue reconciliation", append(logger.CompanyFields(company.ID, company.Name), zap.Error(err))...)
		}
	}
}

func buildResume(raw normalizer.RawResume, filename, text, path string) (*models.Resume, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	attrs := normalizer.NormalizeResume(raw)
	return &models.Resume{
		Name:          NameFromFilename(filename),
		Email:         raw.Email,
		Phone:         raw.Phone,
		GPA:           attrs.GPA,
		Branch:        attrs.Branch,
		Skills:        attrs.SkillSet.Sorted(),
		ProjectCount:  attrs.ProjectCount,
		HasExperience: attrs.HasExperience,
		RawAttributes: datatypes.JSON(encoded),
		ResumeText:    text,
		FilePath:      path,
	}, nil
}

// NameFromFilename turns "Jane_Doe-cv.pdf" into "Jane Doe cv".
func NameFromFilename(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(base))
}

func (s *resumeService) List(ctx context.Context) ([]models.Resume, error) {
	return s.resumeRepo.FindAll(ctx)
}

func (s *resumeService) Get(ctx context.Context, id uuid.UUID) (*models.Resume, []models.Ranking, error) {
	resume, err := s.resumeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rankings, err := s.rankingRepo.FindByResume(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return resume, rankings, nil
}

func (s *resumeService) Delete(ctx context.Context, id uuid.UUID) error {
	resume, err := s.resumeRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	outcome, err := s.rankingService.OnResumeDeleted(ctx, id)
	if err != nil {
		return err
	}
	if len(outcome.Failures) > 0 {
		s.log.Warn("resume deleted with stale leaderboards",
			append(logger.ResumeFields(id, resume.Email), zap.Int("failed", len(outcome.Failures)))...)
	}

	s.postCommit.Run(ctx,
		PostCommitTask{Name: "delete file", Run: func(context.Context) error { return s.storage.DeleteFile(resume.FilePath) }},
		PostCommitTask{Name: "remove from index", Run: func(ctx context.Context) error { return s.index.Remove(ctx, id) }},
	)
	return nil
}

func (s *resumeService) Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error) {
	return s.index.Search(ctx, query, limit)
}
