package models

import (
	"time"

	"github.com/google/uuid"
)

type ReconcileStatus string

const (
	StatusQueued     ReconcileStatus = "queued"
	StatusProcessing ReconcileStatus = "processing"
	StatusCompleted  ReconcileStatus = "completed"
	StatusFailed     ReconcileStatus = "failed"
)

// ReconcileJob asks for a full ranking recompute of one company. Jobs are
// queued whenever a company's leaderboard may have been left stale.
type ReconcileJob struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CompanyID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	Reason       string          `gorm:"type:text" json:"reason"`
	Status       ReconcileStatus `gorm:"not null;default:'queued';index" json:"status"`
	Attempts     int             `gorm:"not null;default:0" json:"attempts"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ReconcileJob) TableName() string {
	return "reconcile_jobs"
}
