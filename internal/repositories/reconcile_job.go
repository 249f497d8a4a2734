package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-ranker/internal/models"
)

type ReconcileJobRepository interface {
	// Enqueue returns the company's queued job if one exists, otherwise it
	// creates a new one.
	Enqueue(ctx context.Context, companyID uuid.UUID, reason string) (*models.ReconcileJob, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ReconcileJob, error)
	// Claim moves a queued job to processing. It reports false when another
	// worker got there first.
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	Requeue(ctx context.Context, id uuid.UUID, errorMsg string) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	FindPendingJobs(ctx context.Context, limit int) ([]models.ReconcileJob, error)
}

type reconcileJobRepository struct {
	db *gorm.DB
}

func NewReconcileJobRepository(db *gorm.DB) ReconcileJobRepository {
	return &reconcileJobRepository{db: db}
}

func (r *reconcileJobRepository) Enqueue(ctx context.Context, companyID uuid.UUID, reason string) (*models.ReconcileJob, error) {
	var job models.ReconcileJob
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("company_id = ? AND status = ?", companyID, models.StatusQueued).
			Order("created_at ASC").
			First(&job).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to find queued job: %w", err)
		}

		job = models.ReconcileJob{
			ID:        uuid.New(),
			CompanyID: companyID,
			Reason:    reason,
			Status:    models.StatusQueued,
		}
		if err := tx.Create(&job).Error; err != nil {
			return fmt.Errorf("failed to create reconcile job: %w", translate(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *reconcileJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.ReconcileJob, error) {
	var job models.ReconcileJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, fmt.Errorf("failed to find reconcile job: %w", translate(err))
	}
	return &job, nil
}

func (r *reconcileJobRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.ReconcileJob{}).
		Where("id = ? AND status = ?", id, models.StatusQueued).
		Updates(map[string]interface{}{
			"status":     models.StatusProcessing,
			"attempts":   gorm.Expr("attempts + 1"),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to claim job: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *reconcileJobRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":        models.StatusCompleted,
		"error_message": nil,
		"updated_at":    time.Now(),
	})
}

func (r *reconcileJobRepository) Requeue(ctx context.Context, id uuid.UUID, errorMsg string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":        models.StatusQueued,
		"error_message": errorMsg,
		"updated_at":    time.Now(),
	})
}

func (r *reconcileJobRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
		"updated_at":    time.Now(),
	})
}

func (r *reconcileJobRepository) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.ReconcileJob{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update reconcile job: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("reconcile job %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *reconcileJobRepository) FindPendingJobs(ctx context.Context, limit int) ([]models.ReconcileJob, error) {
	var jobs []models.ReconcileJob
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return jobs, nil
}
