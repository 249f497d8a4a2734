// Package scoring computes the compatibility score of one resume against one
// company. Scores are deterministic, bounded to [0,100] and never decrease when a
// resume covers more of a company's required skills or keywords.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/resume-ranker/internal/normalizer"
)

const (
	MinScore = 0.0
	MaxScore = 100.0
)

type Scorer interface {
	Score(ctx context.Context, resume normalizer.ResumeAttributes, company normalizer.CompanyRequirements) (float64, error)
}

// Failure reports that a score for one company could not be computed.
type Failure struct {
	CompanyID   uuid.UUID
	CompanyName string
	Err         error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("scoring failed for company %q (%s): %v", f.CompanyName, f.CompanyID, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure wraps err in a *Failure for company unless it already is one.
func AsFailure(company normalizer.CompanyRequirements, err error) error {
	if err == nil {
		return nil
	}
	var failure *Failure
	if errors.As(err, &failure) {
		return err
	}
	return &Failure{CompanyID: company.ID, CompanyName: company.Name, Err: err}
}

type timeoutScorer struct {
	next    Scorer
	timeout time.Duration
}

// WithTimeout bounds every Score call of next. A deadline or cancellation is
// reported as a *Failure like any other scoring error.
func WithTimeout(next Scorer, timeout time.Duration) Scorer {
	if timeout <= 0 {
		return next
	}
	return &timeoutScorer{next: next, timeout: timeout}
}

type scoreResult struct {
	score float64
	err   error
}

func (s *timeoutScorer) Score(ctx context.Context, resume normalizer.ResumeAttributes, company normalizer.CompanyRequirements) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan scoreResult, 1)
	go func() {
		score, err := s.next.Score(ctx, resume, company)
		done <- scoreResult{score: score, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return 0, AsFailure(company, res.err)
		}
		return res.score, nil
	case <-ctx.Done():
		return 0, AsFailure(company, fmt.Errorf("scorer did not finish: %w", ctx.Err()))
	}
}
