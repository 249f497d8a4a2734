package logger

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	FieldCompanyID   = "company_id"
	FieldCompanyName = "company_name"
	FieldResumeID    = "resume_id"
	FieldResumeEmail = "resume_email"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, trimming whitespace
// and omitting entries with an empty key or value.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger. A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

func idValue(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

// CompanyFields describes a company in log entries.
func CompanyFields(id uuid.UUID, name string) []zap.Field {
	return StringFields(
		StringField{Key: FieldCompanyID, Value: idValue(id)},
		StringField{Key: FieldCompanyName, Value: name},
	)
}

// ResumeFields describes a resume in log entries.
func ResumeFields(id uuid.UUID, email string) []zap.Field {
	return StringFields(
		StringField{Key: FieldResumeID, Value: idValue(id)},
		StringField{Key: FieldResumeEmail, Value: email},
	)
}

// PairFields describes one (resume, company) evaluation.
func PairFields(resumeID, companyID uuid.UUID, companyName string) []zap.Field {
	fields := ResumeFields(resumeID, "")
	return append(fields, CompanyFields(companyID, companyName)...)
}
