package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Resume is unique by email. RawAttributes keeps the decoded parser output so the
// normalized attributes can be rebuilt for every scoring call.
type Resume struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name          string         `gorm:"type:text;not null" json:"name"`
	Email         string         `gorm:"type:text;uniqueIndex;not null" json:"email"`
	Phone         string         `gorm:"type:text" json:"phone"`
	GPA           float64        `gorm:"column:gpa;not null;default:0" json:"gpa"`
	Branch        string         `gorm:"type:text" json:"branch"`
	Skills        pq.StringArray `gorm:"type:text[]" json:"skills"`
	ProjectCount  int            `gorm:"not null;default:0" json:"projectCount"`
	HasExperience bool           `gorm:"not null;default:false" json:"hasExperience"`
	RawAttributes datatypes.JSON `gorm:"type:jsonb" json:"-"`
	ResumeText    string         `gorm:"type:text;not null" json:"-"`
	FilePath      string         `gorm:"type:text" json:"-"`
	CreatedAt     time.Time      `gorm:"index;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	// Relations
	Rankings []Ranking `gorm:"foreignKey:ResumeID;constraint:OnDelete:CASCADE" json:"rankings,omitempty"`
}

func (Resume) TableName() string {
	return "resumes"
}
