package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Company struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name            string         `gorm:"type:text;uniqueIndex;not null" json:"name"`
	MinCPI          float64        `gorm:"column:min_cpi;not null;default:0" json:"cpi"`
	SkillSet        pq.StringArray `gorm:"type:text[]" json:"skillSet"`
	InternshipRole  string         `gorm:"type:text" json:"internshipRole"`
	VisitsCampus    bool           `gorm:"not null;default:false" json:"visitsCampus"`
	MinProjects     int            `gorm:"not null;default:0" json:"minProjects"`
	ProjectKeywords pq.StringArray `gorm:"type:text[]" json:"projectKeywords"`
	Branches        pq.StringArray `gorm:"type:text[]" json:"branch"`
	DSARequired     bool           `gorm:"column:dsa_required;not null;default:false" json:"dsaRequired"`
	CoreSkills      pq.StringArray `gorm:"type:text[]" json:"coreSkills"`
	Description     string         `gorm:"type:text" json:"description"`
	CreatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Company) TableName() string {
	return "companies"
}
