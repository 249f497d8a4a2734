package scoring

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-ranker/internal/normalizer"
)

func company(minCPI float64, skills ...string) normalizer.CompanyRequirements {
	return normalizer.CompanyRequirements{
		ID:               uuid.New(),
		Name:             "Acme",
		MinCPI:           minCPI,
		RequiredSkills:   normalizer.NewSet(skills...),
		ProjectKeywords:  normalizer.NewSet(),
		EligibleBranches: normalizer.NewSet(),
		CoreSkills:       normalizer.NewSet(),
	}
}

func resume(gpa float64, skills ...string) normalizer.ResumeAttributes {
	return normalizer.ResumeAttributes{
		GPA:             gpa,
		SkillSet:        normalizer.NewSet(skills...),
		ProjectKeywords: normalizer.NewSet(),
		CoreSkills:      normalizer.NewSet(),
	}
}

func TestWeightedScorer_StrongerCandidateScoresHigher(t *testing.T) {
	s := NewWeightedScorer()
	c := company(7.0, "Python", "SQL")

	strong, err := s.Score(context.Background(), resume(8.5, "Python", "SQL", "React"), c)
	require.NoError(t, err)
	weak, err := s.Score(context.Background(), resume(6.0, "React"), c)
	require.NoError(t, err)

	assert.Equal(t, 85.0, strong)
	assert.Equal(t, 66.17, weak)
	assert.Greater(t, strong, weak)
}

func TestWeightedScorer_FewerRequirementsNeverScoreLower(t *testing.T) {
	s := NewWeightedScorer()
	candidates := []normalizer.ResumeAttributes{
		resume(8, "Go"),
		resume(6, "Python", "SQL"),
		resume(0),
		resume(9.5, "Go", "Python", "SQL", "Rust"),
	}

	strict := company(7, "Go", "Python", "SQL")
	strict.ProjectKeywords = normalizer.NewSet("ml", "cloud")
	lenient := strict
	lenient.RequiredSkills = normalizer.NewSet("Python")
	lenient.ProjectKeywords = normalizer.NewSet("ml")

	for _, r := range candidates {
		a, err := s.Score(context.Background(), r, strict)
		require.NoError(t, err)
		b, err := s.Score(context.Background(), r, lenient)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b, a)
	}
}

func TestWeightedScorer_MoreOverlapNeverScoresLower(t *testing.T) {
	s := NewWeightedScorer()
	c := company(7, "Go", "Python", "SQL")
	c.ProjectKeywords = normalizer.NewSet("ml", "cloud")

	prev := -1.0
	skills := []string{}
	for _, skill := range []string{"Go", "Python", "SQL"} {
		skills = append(skills, skill)
		r := resume(7.5, skills...)
		r.ProjectKeywords = normalizer.NewSet(skills...)
		score, err := s.Score(context.Background(), r, c)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
}

func TestWeightedScorer_BoundedAndDeterministic(t *testing.T) {
	s := NewWeightedScorer()

	best := resume(10, "Go")
	best.HasExperience = true
	best.ProjectCount = 10
	high, err := s.Score(context.Background(), best, company(0))
	require.NoError(t, err)
	assert.Equal(t, MaxScore, high)

	worst := company(9, "Go", "Rust")
	worst.EligibleBranches = normalizer.NewSet("EE")
	worst.MinProjects = 3
	worst.ProjectKeywords = normalizer.NewSet("fpga")
	worst.CoreSkills = normalizer.NewSet("os")
	low, err := s.Score(context.Background(), resume(0), worst)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, low, MinScore)
	assert.Less(t, low, high)

	again, err := s.Score(context.Background(), resume(0), worst)
	require.NoError(t, err)
	assert.Equal(t, low, again)
}

func TestWeightedScorer_BranchEligibilityIsExactMatch(t *testing.T) {
	s := NewWeightedScorer()
	c := company(0)
	c.EligibleBranches = normalizer.NewSet("CSE")

	r := resume(8)
	r.Branch = "CSE"
	eligible, err := s.Score(context.Background(), r, c)
	require.NoError(t, err)

	r.Branch = "cse"
	ineligible, err := s.Score(context.Background(), r, c)
	require.NoError(t, err)

	assert.InDelta(t, educationWeight*30, eligible-ineligible, 0.01)
}

func TestWeightedScorer_InvalidInputIsFailure(t *testing.T) {
	s := NewWeightedScorer()
	c := company(math.NaN())

	_, err := s.Score(context.Background(), resume(8), c)
	require.Error(t, err)

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, c.ID, failure.CompanyID)
	assert.ErrorIs(t, err, errInvalidInput)
}

func TestWeightedScorer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWeightedScorer().Score(ctx, resume(8), company(7))
	var failure *Failure
	assert.True(t, errors.As(err, &failure))
}

type slowScorer struct {
	delay time.Duration
}

func (s slowScorer) Score(ctx context.Context, _ normalizer.ResumeAttributes, _ normalizer.CompanyRequirements) (float64, error) {
	select {
	case <-time.After(s.delay):
		return 50, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func TestWithTimeout(t *testing.T) {
	c := company(7)

	_, err := WithTimeout(slowScorer{delay: time.Second}, 20*time.Millisecond).Score(context.Background(), resume(8), c)
	require.Error(t, err)
	var failure *Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "Acme", failure.CompanyName)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	score, err := WithTimeout(slowScorer{}, time.Second).Score(context.Background(), resume(8), c)
	require.NoError(t, err)
	assert.Equal(t, 50.0, score)

	inner := NewWeightedScorer()
	assert.Same(t, inner, WithTimeout(inner, 0))
}
