package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-ranker/internal/models"
)

type ResumeRepository interface {
	// Upsert creates the resume or, when one with the same email exists,
	// replaces its attributes in place. The existing id and CreatedAt are kept
	// so the resume holds its discovery position.
	Upsert(ctx context.Context, resume *models.Resume) (created bool, err error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Resume, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Resume, error)
	FindByEmail(ctx context.Context, email string) (*models.Resume, error)
	// FindAll lists resumes newest first.
	FindAll(ctx context.Context) ([]models.Resume, error)
	// FindForRanking lists every resume in discovery order.
	FindForRanking(ctx context.Context) ([]models.Resume, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) Upsert(ctx context.Context, resume *models.Resume) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Resume
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("email = ?", resume.Email).
			First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			if err := tx.Create(resume).Error; err != nil {
				return fmt.Errorf("failed to create resume: %w", translate(err))
			}
			return nil
		case err != nil:
			return fmt.Errorf("failed to find resume: %w", err)
		}

		resume.ID = existing.ID
		resume.CreatedAt = existing.CreatedAt
		if err := tx.Model(resume).
			Select("*").
			Omit("id", "created_at", clause.Associations).
			Updates(resume).Error; err != nil {
			return fmt.Errorf("failed to update resume: %w", translate(err))
		}
		return nil
	})
	return created, err
}

func (r *resumeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Resume, error) {
	var resume models.Resume
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&resume).Error; err != nil {
		return nil, fmt.Errorf("failed to find resume: %w", translate(err))
	}
	return &resume, nil
}

func (r *resumeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Resume, error) {
	var resumes []models.Resume
	if len(ids) == 0 {
		return resumes, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&resumes).Error; err != nil {
		return nil, fmt.Errorf("failed to find resumes: %w", err)
	}
	return resumes, nil
}

func (r *resumeRepository) FindByEmail(ctx context.Context, email string) (*models.Resume, error) {
	var resume models.Resume
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&resume).Error; err != nil {
		return nil, fmt.Errorf("failed to find resume: %w", translate(err))
	}
	return &resume, nil
}

func (r *resumeRepository) FindAll(ctx context.Context) ([]models.Resume, error) {
	var resumes []models.Resume
	err := r.db.WithContext(ctx).
		Omit("resume_text", "raw_attributes").
		Order("created_at DESC").
		Find(&resumes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find resumes: %w", err)
	}
	return resumes, nil
}

func (r *resumeRepository) FindForRanking(ctx context.Context) ([]models.Resume, error) {
	var resumes []models.Resume
	err := r.db.WithContext(ctx).
		Select("id", "email", "phone", "raw_attributes", "created_at", "updated_at").
		Order("created_at ASC, id ASC").
		Find(&resumes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find resumes for ranking: %w", err)
	}
	return resumes, nil
}

// Delete removes the resume; its rankings go with it through the cascade.
func (r *resumeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Resume{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete resume: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("resume %s: %w", id, ErrNotFound)
	}
	return nil
}
