package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-ranker/internal/models"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	Update(ctx context.Context, company *models.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	FindByName(ctx context.Context, name string) (*models.Company, error)
	FindAll(ctx context.Context) ([]models.Company, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *models.Company) error {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		return fmt.Errorf("failed to create company: %w", translate(err))
	}
	return nil
}

func (r *companyRepository) Update(ctx context.Context, company *models.Company) error {
	result := r.db.WithContext(ctx).
		Model(company).
		Select("*").
		Omit("id", "created_at").
		Updates(company)

	if result.Error != nil {
		return fmt.Errorf("failed to update company: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("company %s: %w", company.ID, ErrNotFound)
	}
	return nil
}

func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&company).Error; err != nil {
		return nil, fmt.Errorf("failed to find company: %w", translate(err))
	}
	return &company, nil
}

func (r *companyRepository) FindByName(ctx context.Context, name string) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&company).Error; err != nil {
		return nil, fmt.Errorf("failed to find company: %w", translate(err))
	}
	return &company, nil
}

func (r *companyRepository) FindAll(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("failed to find companies: %w", err)
	}
	return companies, nil
}

// Delete removes the company and its whole leaderboard in one transaction.
func (r *companyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", id).Delete(&models.Ranking{}).Error; err != nil {
			return fmt.Errorf("failed to delete company rankings: %w", err)
		}
		if err := tx.Where("company_id = ?", id).Delete(&models.ReconcileJob{}).Error; err != nil {
			return fmt.Errorf("failed to delete reconcile jobs: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&models.Company{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete company: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("company %s: %w", id, ErrNotFound)
		}
		return nil
	})
}
