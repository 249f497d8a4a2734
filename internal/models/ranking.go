package models

import (
	"time"

	"github.com/google/uuid"
)

// Ranking is one resume's standing in one company's leaderboard.
type Ranking struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ResumeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rankings_resume_company,priority:1" json:"resumeId"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_rankings_resume_company,priority:2" json:"companyId"`
	Score     float64   `gorm:"not null;default:0" json:"score"`
	Rank      int       `gorm:"not null;default:1" json:"rank"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	// Relations
	Company *Company `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"company,omitempty"`
}

func (Ranking) TableName() string {
	return "rankings"
}
