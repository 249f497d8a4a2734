package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/repositories"
)

// memStore backs every repository fake with one set of maps so cascades and
// joins behave like the database.
type memStore struct {
	mu        sync.Mutex
	companies map[uuid.UUID]models.Company
	resumes   map[uuid.UUID]models.Resume
	rankings  map[uuid.UUID]map[uuid.UUID]models.Ranking // company -> resume
	jobs      map[uuid.UUID]models.ReconcileJob
	clock     time.Time

	applyErr   map[uuid.UUID]error
	applies    int
	rankingErr error
}

func newMemStore() *memStore {
	return &memStore{
		companies: map[uuid.UUID]models.Company{},
		resumes:   map[uuid.UUID]models.Resume{},
		rankings:  map[uuid.UUID]map[uuid.UUID]models.Ranking{},
		jobs:      map[uuid.UUID]models.ReconcileJob{},
		clock:     time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		applyErr:  map[uuid.UUID]error{},
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memStore) companyRepo() repositories.CompanyRepository { return memCompanies{m} }
func (m *memStore) resumeRepo() repositories.ResumeRepository   { return memResumes{m} }
func (m *memStore) rankingRepo() repositories.RankingRepository { return memRankings{m} }
func (m *memStore) jobRepo() repositories.ReconcileJobRepository {
	return memJobs{m}
}

// leaderboard returns a company's stored rankings ordered by rank.
func (m *memStore) leaderboard(companyID uuid.UUID) []models.Ranking {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Ranking
	for _, r := range m.rankings[companyID] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return m.resumes[out[i].ResumeID].CreatedAt.Before(m.resumes[out[j].ResumeID].CreatedAt)
	})
	return out
}

func (m *memStore) queuedJobs() []models.ReconcileJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ReconcileJob
	for _, j := range m.jobs {
		if j.Status == models.StatusQueued {
			out = append(out, j)
		}
	}
	return out
}

type memCompanies struct{ m *memStore }

func (r memCompanies) Create(_ context.Context, c *models.Company) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.companies {
		if existing.Name == c.Name {
			return repositories.ErrDuplicate
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = r.m.tick()
	r.m.companies[c.ID] = *c
	return nil
}

func (r memCompanies) Update(_ context.Context, c *models.Company) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.companies[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	for id, existing := range r.m.companies {
		if id != c.ID && existing.Name == c.Name {
			return repositories.ErrDuplicate
		}
	}
	r.m.companies[c.ID] = *c
	return nil
}

func (r memCompanies) FindByID(_ context.Context, id uuid.UUID) (*models.Company, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.companies[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r memCompanies) FindByName(_ context.Context, name string) (*models.Company, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.companies {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r memCompanies) FindAll(_ context.Context) ([]models.Company, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]models.Company, 0, len(r.m.companies))
	for _, c := range r.m.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCompanies) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.companies[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.companies, id)
	delete(r.m.rankings, id)
	return nil
}

type memResumes struct{ m *memStore }

func (r memResumes) Upsert(_ context.Context, resume *models.Resume) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.resumes {
		if existing.Email == resume.Email {
			resume.ID = existing.ID
			resume.CreatedAt = existing.CreatedAt
			resume.UpdatedAt = r.m.tick()
			r.m.resumes[resume.ID] = *resume
			return false, nil
		}
	}
	if resume.ID == uuid.Nil {
		resume.ID = uuid.New()
	}
	resume.CreatedAt = r.m.tick()
	resume.UpdatedAt = resume.CreatedAt
	r.m.resumes[resume.ID] = *resume
	return true, nil
}

func (r memResumes) FindByID(_ context.Context, id uuid.UUID) (*models.Resume, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	res, ok := r.m.resumes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &res, nil
}

func (r memResumes) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Resume, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Resume
	for _, id := range ids {
		if res, ok := r.m.resumes[id]; ok {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r memResumes) FindByEmail(_ context.Context, email string) (*models.Resume, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, res := range r.m.resumes {
		if res.Email == email {
			return &res, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r memResumes) sorted(desc bool) []models.Resume {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]models.Resume, 0, len(r.m.resumes))
	for _, res := range r.m.resumes {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r memResumes) FindAll(context.Context) ([]models.Resume, error) {
	return r.sorted(true), nil
}

func (r memResumes) FindForRanking(context.Context) ([]models.Resume, error) {
	r.m.mu.Lock()
	err := r.m.rankingErr
	r.m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.sorted(false), nil
}

func (r memResumes) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.resumes[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.resumes, id)
	for _, byResume := range r.m.rankings {
		delete(byResume, id)
	}
	return nil
}

type memRankings struct{ m *memStore }

func (r memRankings) FindByCompany(_ context.Context, companyID uuid.UUID) ([]repositories.RankingRow, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var rows []repositories.RankingRow
	for resumeID, rk := range r.m.rankings[companyID] {
		rows = append(rows, repositories.RankingRow{
			ResumeID:     resumeID,
			Score:        rk.Score,
			Rank:         rk.Rank,
			DiscoveredAt: r.m.resumes[resumeID].CreatedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].DiscoveredAt.Before(rows[j].DiscoveredAt) })
	return rows, nil
}

func (r memRankings) FindByResume(_ context.Context, resumeID uuid.UUID) ([]models.Ranking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Ranking
	for companyID, byResume := range r.m.rankings {
		if rk, ok := byResume[resumeID]; ok {
			c := r.m.companies[companyID]
			rk.Company = &c
			out = append(out, rk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Company.Name < out[j].Company.Name })
	return out, nil
}

func (r memRankings) Leaderboard(_ context.Context, companyID uuid.UUID) ([]models.LeaderboardEntry, error) {
	var out []models.LeaderboardEntry
	for _, rk := range r.m.leaderboard(companyID) {
		res := r.m.resumes[rk.ResumeID]
		out = append(out, models.LeaderboardEntry{ID: res.ID, Name: res.Name, Email: res.Email, Score: rk.Score, Rank: rk.Rank})
	}
	return out, nil
}

func (r memRankings) Apply(_ context.Context, change repositories.RankingChange) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.applyErr[change.CompanyID]; err != nil {
		return err
	}
	if _, ok := r.m.companies[change.CompanyID]; !ok {
		return repositories.ErrNotFound
	}
	r.m.applies++
	byResume := r.m.rankings[change.CompanyID]
	if byResume == nil {
		byResume = map[uuid.UUID]models.Ranking{}
		r.m.rankings[change.CompanyID] = byResume
	}
	for _, id := range change.Deletes {
		delete(byResume, id)
	}
	for _, rk := range change.Upserts {
		if _, ok := r.m.resumes[rk.ResumeID]; !ok {
			return errors.New("foreign key violation")
		}
		byResume[rk.ResumeID] = rk
	}
	return nil
}

type memJobs struct{ m *memStore }

func (r memJobs) Enqueue(_ context.Context, companyID uuid.UUID, reason string) (*models.ReconcileJob, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, j := range r.m.jobs {
		if j.CompanyID == companyID && j.Status == models.StatusQueued {
			return &j, nil
		}
	}
	job := models.ReconcileJob{ID: uuid.New(), CompanyID: companyID, Reason: reason, Status: models.StatusQueued, CreatedAt: r.m.tick()}
	r.m.jobs[job.ID] = job
	return &job, nil
}

func (r memJobs) FindByID(_ context.Context, id uuid.UUID) (*models.ReconcileJob, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	j, ok := r.m.jobs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &j, nil
}

func (r memJobs) Claim(_ context.Context, id uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	j, ok := r.m.jobs[id]
	if !ok || j.Status != models.StatusQueued {
		return false, nil
	}
	j.Status = models.StatusProcessing
	j.Attempts++
	r.m.jobs[id] = j
	return true, nil
}

func (r memJobs) set(id uuid.UUID, status models.ReconcileStatus, msg string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	j, ok := r.m.jobs[id]
	if !ok {
		return repositories.ErrNotFound
	}
	j.Status = status
	if msg != "" {
		j.ErrorMessage = &msg
	}
	r.m.jobs[id] = j
	return nil
}

func (r memJobs) MarkCompleted(_ context.Context, id uuid.UUID) error {
	return r.set(id, models.StatusCompleted, "")
}

func (r memJobs) Requeue(_ context.Context, id uuid.UUID, msg string) error {
	return r.set(id, models.StatusQueued, msg)
}

func (r memJobs) UpdateError(_ context.Context, id uuid.UUID, msg string) error {
	return r.set(id, models.StatusFailed, msg)
}

func (r memJobs) FindPendingJobs(_ context.Context, limit int) ([]models.ReconcileJob, error) {
	jobs := r.m.queuedJobs()
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}
