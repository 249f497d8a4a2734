package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"alfredoptarigan/resume-ranker/internal/repositories"
)

var (
	ErrNotFound        = repositories.ErrNotFound
	ErrDuplicate       = repositories.ErrDuplicate
	ErrNoCompanies     = errors.New("no companies found in the database")
	ErrMissingEmail    = errors.New("failed to extract email from resume")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// Parsing stages.
const (
	StageExtract = "extract"
	StageParse   = "parse"
	StageEmail   = "email"
)

// ParsingFailure aborts an upload before anything is persisted.
type ParsingFailure struct {
	Stage string
	Err   error
}

func (e *ParsingFailure) Error() string {
	return fmt.Sprintf("resume %s failed: %v", e.Stage, e.Err)
}

func (e *ParsingFailure) Unwrap() error {
	return e.Err
}

// PersistenceFailure reports a storage error while writing one company's
// leaderboard. The previous state of that company stays in place.
type PersistenceFailure struct {
	Op        string
	CompanyID uuid.UUID
	Err       error
}

func (e *PersistenceFailure) Error() string {
	if e.CompanyID == uuid.Nil {
		return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s for company %s: %v", e.Op, e.CompanyID, e.Err)
}

func (e *PersistenceFailure) Unwrap() error {
	return e.Err
}
