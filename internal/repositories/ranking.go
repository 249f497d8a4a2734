package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-ranker/internal/models"
)

// RankingRow is a stored ranking joined with its resume's discovery key.
type RankingRow struct {
	ResumeID     uuid.UUID
	Score        float64
	Rank         int
	DiscoveredAt time.Time
}

// RankingChange is the write set for one company's leaderboard.
type RankingChange struct {
	CompanyID uuid.UUID
	Upserts   []models.Ranking
	Deletes   []uuid.UUID
}

func (c RankingChange) Empty() bool {
	return len(c.Upserts) == 0 && len(c.Deletes) == 0
}

type RankingRepository interface {
	// FindByCompany returns the company's leaderboard in discovery order.
	FindByCompany(ctx context.Context, companyID uuid.UUID) ([]RankingRow, error)
	// FindByResume returns the resume's standings with company names, best rank first.
	FindByResume(ctx context.Context, resumeID uuid.UUID) ([]models.Ranking, error)
	Leaderboard(ctx context.Context, companyID uuid.UUID) ([]models.LeaderboardEntry, error)
	// Apply writes one company's changes atomically.
	Apply(ctx context.Context, change RankingChange) error
}

type rankingRepository struct {
	db *gorm.DB
}

func NewRankingRepository(db *gorm.DB) RankingRepository {
	return &rankingRepository{db: db}
}

func (r *rankingRepository) FindByCompany(ctx context.Context, companyID uuid.UUID) ([]RankingRow, error) {
	var rows []RankingRow
	err := r.db.WithContext(ctx).
		Table("rankings").
		Select("rankings.resume_id, rankings.score, rankings.rank, resumes.created_at AS discovered_at").
		Joins("JOIN resumes ON resumes.id = rankings.resume_id").
		Where("rankings.company_id = ?", companyID).
		Order("resumes.created_at ASC, resumes.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find company rankings: %w", err)
	}
	return rows, nil
}

func (r *rankingRepository) FindByResume(ctx context.Context, resumeID uuid.UUID) ([]models.Ranking, error) {
	var rankings []models.Ranking
	err := r.db.WithContext(ctx).
		Preload("Company").
		Where("resume_id = ?", resumeID).
		Order("rank ASC, score DESC").
		Find(&rankings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find resume rankings: %w", err)
	}
	return rankings, nil
}

type leaderboardRow struct {
	ID     uuid.UUID
	Name   string
	Email  string
	Skills pq.StringArray
	GPA    float64
	Branch string
	Score  float64
	Rank   int
}

func (r *rankingRepository) Leaderboard(ctx context.Context, companyID uuid.UUID) ([]models.LeaderboardEntry, error) {
	var rows []leaderboardRow
	err := r.db.WithContext(ctx).
		Table("rankings").
		Select("resumes.id, resumes.name, resumes.email, resumes.skills, resumes.gpa, resumes.branch, rankings.score, rankings.rank").
		Joins("JOIN resumes ON resumes.id = rankings.resume_id").
		Where("rankings.company_id = ?", companyID).
		Order("rankings.rank ASC, resumes.created_at ASC, resumes.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := make([]models.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = models.LeaderboardEntry{
			ID:     row.ID,
			Name:   row.Name,
			Email:  row.Email,
			Skills: []string(row.Skills),
			GPA:    row.GPA,
			Branch: row.Branch,
			Score:  row.Score,
			Rank:   row.Rank,
		}
	}
	return entries, nil
}

func (r *rankingRepository) Apply(ctx context.Context, change RankingChange) error {
	if change.Empty() {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(change.Deletes) > 0 {
			err := tx.
				Where("company_id = ? AND resume_id IN ?", change.CompanyID, change.Deletes).
				Delete(&models.Ranking{}).Error
			if err != nil {
				return fmt.Errorf("failed to delete rankings: %w", err)
			}
		}

		if len(change.Upserts) == 0 {
			return nil
		}

		now := time.Now()
		for i := range change.Upserts {
			if change.Upserts[i].ID == uuid.Nil {
				change.Upserts[i].ID = uuid.New()
			}
			change.Upserts[i].CompanyID = change.CompanyID
			change.Upserts[i].UpdatedAt = now
		}

		err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "resume_id"}, {Name: "company_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"score", "rank", "updated_at"}),
			}).
			Create(&change.Upserts).Error
		if err != nil {
			return fmt.Errorf("failed to upsert rankings: %w", translate(err))
		}
		return nil
	})
}
