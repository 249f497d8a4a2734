package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/normalizer"
	"alfredoptarigan/resume-ranker/internal/ranking"
	"alfredoptarigan/resume-ranker/internal/repositories"
	"alfredoptarigan/resume-ranker/internal/scoring"
)

// RankingService keeps every company's leaderboard consistent with the stored
// resumes and companies. Each call touches whole company leaderboards only; a
// failure for one company never blocks the others.
type RankingService interface {
	OnResumeUpserted(ctx context.Context, resume *models.Resume) (*RankingOutcome, error)
	OnCompanyUpserted(ctx context.Context, company *models.Company) (*RankingOutcome, error)
	OnCompanyDeleted(ctx context.Context, companyID uuid.UUID) error
	OnResumeDeleted(ctx context.Context, resumeID uuid.UUID) (*RankingOutcome, error)
	Reconcile(ctx context.Context, companyID uuid.UUID) (*RankingOutcome, error)
}

// CompanyStanding is one resume's place in one company's leaderboard.
type CompanyStanding struct {
	CompanyID   uuid.UUID
	CompanyName string
	ranking.Standing
}

// RankingOutcome lists the standings that were written and the per-company
// failures that were skipped. Failures are *scoring.Failure or
// *PersistenceFailure values.
type RankingOutcome struct {
	Standings []CompanyStanding
	Failures  []error
}

func (o *RankingOutcome) fail(err error) {
	o.Failures = append(o.Failures, err)
}

type RankingOptions struct {
	Concurrency int
}

type rankingService struct {
	companyRepo repositories.CompanyRepository
	resumeRepo  repositories.ResumeRepository
	rankingRepo repositories.RankingRepository
	jobRepo     repositories.ReconcileJobRepository
	scorer      scoring.Scorer
	locker      *CompanyLocker
	concurrency int
	log         *zap.Logger
}

func NewRankingService(
	companyRepo repositories.CompanyRepository,
	resumeRepo repositories.ResumeRepository,
	rankingRepo repositories.RankingRepository,
	jobRepo repositories.ReconcileJobRepository,
	scorer scoring.Scorer,
	locker *CompanyLocker,
	opts RankingOptions,
	log *zap.Logger,
) RankingService {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &rankingService{
		companyRepo: companyRepo,
		resumeRepo:  resumeRepo,
		rankingRepo: rankingRepo,
		jobRepo:     jobRepo,
		scorer:      scorer,
		locker:      locker,
		concurrency: concurrency,
		log:         log.Named("ranking"),
	}
}

// OnResumeUpserted scores the resume against every company and merges the
// score into each leaderboard. Companies are handled concurrently.
func (s *rankingService) OnResumeUpserted(ctx context.Context, resume *models.Resume) (*RankingOutcome, error) {
	attrs, err := normalizer.StoredResume(resume)
	if err != nil {
		return nil, fmt.Errorf("failed to load resume attributes: %w", err)
	}

	companies, err := s.companyRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.WithFields(s.log, logger.ResumeFields(resume.ID, resume.Email)...)
	subject := ranking.Entry{ResumeID: resume.ID, DiscoveredAt: discoveryKey(resume.CreatedAt)}

	standings := make([]*CompanyStanding, len(companies))
	failures := make([]error, len(companies))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range companies {
		company := &companies[i]
		g.Go(func() error {
			req := normalizer.NormalizeCompany(company)

			score, err := s.scorer.Score(ctx, attrs, req)
			if err != nil {
				failures[i] = scoring.AsFailure(req, err)
				return nil
			}

			entry := subject
			entry.Score = score
			standing, err := s.mergeOne(ctx, company.ID, entry)
			if err != nil {
				failures[i] = err
				return nil
			}
			standings[i] = &CompanyStanding{CompanyID: company.ID, CompanyName: company.Name, Standing: standing}
			return nil
		})
	}
	_ = g.Wait()

	outcome := &RankingOutcome{}
	for i := range companies {
		if standings[i] != nil {
			outcome.Standings = append(outcome.Standings, *standings[i])
		}
		if failures[i] != nil {
			outcome.fail(failures[i])
			s.degraded(ctx, log, &companies[i], failures[i], "resume "+resume.ID.String())
		}
	}

	log.Info("resume ranked",
		zap.Int("companies", len(companies)),
		zap.Int("ranked", len(outcome.Standings)),
		zap.Int("failed", len(outcome.Failures)))

	return outcome, nil
}

// mergeOne merges entry into one company's leaderboard under the company lock.
func (s *rankingService) mergeOne(ctx context.Context, companyID uuid.UUID, entry ranking.Entry) (ranking.Standing, error) {
	unlock := s.locker.Lock(companyID)
	defer unlock()

	ctx = context.WithoutCancel(ctx)

	rows, err := s.rankingRepo.FindByCompany(ctx, companyID)
	if err != nil {
		return ranking.Standing{}, &PersistenceFailure{Op: "load rankings", CompanyID: companyID, Err: err}
	}

	previous := previousStandings(rows)
	next := ranking.Merge(&entry, entries(rows))

	if err := s.apply(ctx, companyID, previous, next); err != nil {
		return ranking.Standing{}, err
	}

	standing, _ := ranking.Find(next, entry.ResumeID)
	return standing, nil
}

func (s *rankingService) OnCompanyUpserted(ctx context.Context, company *models.Company) (*RankingOutcome, error) {
	log := logger.WithFields(s.log, logger.CompanyFields(company.ID, company.Name)...)

	// The company row is already committed; a failed recompute only leaves the
	// leaderboard stale until the queued job runs.
	outcome, err := s.recompute(ctx, company)
	if err != nil {
		if outcome == nil {
			outcome = &RankingOutcome{}
		}
		outcome.fail(err)
		log.Warn("company leaderboard left stale", zap.Error(err))
	}

	if len(outcome.Failures) > 0 {
		s.enqueue(ctx, log, company.ID, fmt.Sprintf("company upsert left %d failures", len(outcome.Failures)))
	}
	return outcome, nil
}

func (s *rankingService) Reconcile(ctx context.Context, companyID uuid.UUID) (*RankingOutcome, error) {
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.recompute(ctx, company)
}

// recompute rebuilds a company's leaderboard from every stored resume. A resume
// that fails to score keeps its previous entry, if it had one.
//
// Scoring runs outside the company lock, so the resume set is read again once
// the lock is held. Resumes added or re-uploaded meanwhile keep the score their
// own merge wrote; a newcomer without one is left to that merge.
func (s *rankingService) recompute(ctx context.Context, company *models.Company) (*RankingOutcome, error) {
	req := normalizer.NormalizeCompany(company)
	log := logger.WithFields(s.log, logger.CompanyFields(company.ID, company.Name)...)

	resumes, err := s.resumeRepo.FindForRanking(ctx)
	if err != nil {
		return nil, &PersistenceFailure{Op: "load resumes", CompanyID: company.ID, Err: err}
	}

	scores := make([]float64, len(resumes))
	failures := make([]error, len(resumes))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range resumes {
		resume := &resumes[i]
		g.Go(func() error {
			attrs, err := normalizer.StoredResume(resume)
			if err == nil {
				scores[i], err = s.scorer.Score(ctx, attrs, req)
			}
			if err != nil {
				failures[i] = scoring.AsFailure(req, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	unlock := s.locker.Lock(company.ID)
	defer unlock()

	pctx := context.WithoutCancel(ctx)
	outcome := &RankingOutcome{}

	rows, err := s.rankingRepo.FindByCompany(pctx, company.ID)
	if err != nil {
		return outcome, &PersistenceFailure{Op: "load rankings", CompanyID: company.ID, Err: err}
	}
	previous := previousStandings(rows)

	current, err := s.resumeRepo.FindForRanking(pctx)
	if err != nil {
		return outcome, &PersistenceFailure{Op: "load resumes", CompanyID: company.ID, Err: err}
	}

	scored := make(map[uuid.UUID]int, len(resumes))
	for i, resume := range resumes {
		scored[resume.ID] = i
	}

	candidates := make([]ranking.Entry, 0, len(current))
	carried := 0
	for _, resume := range current {
		entry := ranking.Entry{ResumeID: resume.ID, DiscoveredAt: discoveryKey(resume.CreatedAt)}
		old, hasOld := previous[resume.ID]

		i, ok := scored[resume.ID]
		if !ok || !resumes[i].UpdatedAt.Equal(resume.UpdatedAt) {
			if !hasOld {
				continue
			}
			entry.Score = old.Score
			candidates = append(candidates, entry)
			carried++
			continue
		}

		entry.Score = scores[i]
		if failures[i] != nil {
			outcome.fail(failures[i])
			log.Warn("scoring failed", append(logger.ResumeFields(resume.ID, resume.Email), zap.Error(failures[i]))...)
			if !hasOld {
				continue
			}
			entry.Score = old.Score
		}
		candidates = append(candidates, entry)
	}

	next := ranking.Rank(candidates)
	if err := s.apply(pctx, company.ID, previous, next); err != nil {
		log.Error("leaderboard not written", zap.Error(err))
		return outcome, err
	}

	for _, standing := range next {
		outcome.Standings = append(outcome.Standings, CompanyStanding{
			CompanyID:   company.ID,
			CompanyName: company.Name,
			Standing:    standing,
		})
	}

	log.Info("company leaderboard recomputed",
		zap.Int("resumes", len(current)),
		zap.Int("ranked", len(next)),
		zap.Int("carried", carried),
		zap.Int("failed", len(outcome.Failures)))

	return outcome, nil
}

func (s *rankingService) OnCompanyDeleted(ctx context.Context, companyID uuid.UUID) error {
	unlock := s.locker.Lock(companyID)
	defer unlock()

	if err := s.companyRepo.Delete(context.WithoutCancel(ctx), companyID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		return &PersistenceFailure{Op: "delete company", CompanyID: companyID, Err: err}
	}

	s.log.Info("company deleted", logger.CompanyFields(companyID, "")...)
	return nil
}

// OnResumeDeleted removes the resume and closes the rank gaps it leaves in
// every leaderboard it was part of.
func (s *rankingService) OnResumeDeleted(ctx context.Context, resumeID uuid.UUID) (*RankingOutcome, error) {
	ctx = context.WithoutCancel(ctx)

	affected, err := s.rankingRepo.FindByResume(ctx, resumeID)
	if err != nil {
		return nil, err
	}

	if err := s.resumeRepo.Delete(ctx, resumeID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, &PersistenceFailure{Op: "delete resume", Err: err}
	}

	outcome := &RankingOutcome{}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range affected {
		companyID := affected[i].CompanyID
		companyName := ""
		if affected[i].Company != nil {
			companyName = affected[i].Company.Name
		}

		g.Go(func() error {
			next, err := s.rerank(ctx, companyID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				outcome.fail(err)
				s.degraded(ctx, s.log, &models.Company{ID: companyID, Name: companyName}, err, "resume deleted "+resumeID.String())
				return nil
			}
			for _, standing := range next {
				outcome.Standings = append(outcome.Standings, CompanyStanding{
					CompanyID:   companyID,
					CompanyName: companyName,
					Standing:    standing,
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(outcome.Standings, func(i, j int) bool {
		a, b := outcome.Standings[i], outcome.Standings[j]
		if a.CompanyName != b.CompanyName {
			return a.CompanyName < b.CompanyName
		}
		return a.Rank < b.Rank
	})

	s.log.Info("resume deleted",
		zap.String(logger.FieldResumeID, resumeID.String()),
		zap.Int("companies", len(affected)),
		zap.Int("failed", len(outcome.Failures)))

	return outcome, nil
}

// rerank re-assigns ranks from the stored scores without scoring again.
func (s *rankingService) rerank(ctx context.Context, companyID uuid.UUID) ([]ranking.Standing, error) {
	unlock := s.locker.Lock(companyID)
	defer unlock()

	rows, err := s.rankingRepo.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, &PersistenceFailure{Op: "load rankings", CompanyID: companyID, Err: err}
	}

	next := ranking.Rank(entries(rows))
	if err := s.apply(ctx, companyID, previousStandings(rows), next); err != nil {
		return nil, err
	}
	return next, nil
}

// apply writes only the rows whose score or rank changed. The caller must hold
// the company lock.
func (s *rankingService) apply(ctx context.Context, companyID uuid.UUID, previous map[uuid.UUID]ranking.Standing, next []ranking.Standing) error {
	change := repositories.RankingChange{
		CompanyID: companyID,
		Deletes:   ranking.Removed(previous, next),
	}
	for _, standing := range ranking.Changed(previous, next) {
		change.Upserts = append(change.Upserts, models.Ranking{
			ResumeID:  standing.ResumeID,
			CompanyID: companyID,
			Score:     standing.Score,
			Rank:      standing.Rank,
		})
	}

	if err := s.rankingRepo.Apply(ctx, change); err != nil {
		return &PersistenceFailure{Op: "write rankings", CompanyID: companyID, Err: err}
	}
	return nil
}

// degraded logs a per-company failure and queues the company for reconciliation.
func (s *rankingService) degraded(ctx context.Context, log *zap.Logger, company *models.Company, err error, reason string) {
	log.Warn("company leaderboard left stale",
		append(logger.CompanyFields(company.ID, company.Name), zap.Error(err))...)
	s.enqueue(ctx, log, company.ID, reason+": "+err.Error())
}

func (s *rankingService) enqueue(ctx context.Context, log *zap.Logger, companyID uuid.UUID, reason string) {
	if s.jobRepo == nil {
		return
	}
	job, err := s.jobRepo.Enqueue(context.WithoutCancel(ctx), companyID, reason)
	if err != nil {
		log.Error("failed to queue reconciliation", zap.String(logger.FieldCompanyID, companyID.String()), zap.Error(err))
		return
	}
	log.Debug("reconciliation queued", zap.String("job_id", job.ID.String()), zap.String(logger.FieldCompanyID, companyID.String()))
}

func previousStandings(rows []repositories.RankingRow) map[uuid.UUID]ranking.Standing {
	out := make(map[uuid.UUID]ranking.Standing, len(rows))
	for _, row := range rows {
		out[row.ResumeID] = ranking.Standing{ResumeID: row.ResumeID, Score: row.Score, Rank: row.Rank}
	}
	return out
}

func entries(rows []repositories.RankingRow) []ranking.Entry {
	out := make([]ranking.Entry, len(rows))
	for i, row := range rows {
		out[i] = ranking.Entry{ResumeID: row.ResumeID, Score: row.Score, DiscoveredAt: discoveryKey(row.DiscoveredAt)}
	}
	return out
}

// discoveryKey matches the microsecond precision Postgres stores timestamps with.
func discoveryKey(t time.Time) time.Time {
	return t.Round(time.Microsecond)
}
