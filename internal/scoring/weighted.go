package scoring

import (
	"context"
	"errors"
	"math"

	"alfredoptarigan/resume-ranker/internal/normalizer"
)

// Weights of the four scoring components. They sum to 1.
const (
	skillsWeight     = 0.35
	educationWeight  = 0.25
	projectsWeight   = 0.25
	experienceWeight = 0.15
)

var errInvalidInput = errors.New("attributes contain NaN or infinite values")

// WeightedScorer is the default scoring policy. Each component is scored on a
// 0-100 scale and combined by fixed weights. Experience only counts as present
// or absent; the number of roles is not graded because parsed resumes carry a
// yes/no flag rather than a list of positions.
type WeightedScorer struct{}

func NewWeightedScorer() *WeightedScorer {
	return &WeightedScorer{}
}

func (w *WeightedScorer) Score(ctx context.Context, resume normalizer.ResumeAttributes, company normalizer.CompanyRequirements) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, AsFailure(company, err)
	}
	if invalid(resume.GPA) || invalid(company.MinCPI) {
		return 0, AsFailure(company, errInvalidInput)
	}

	total := skillsWeight*scoreSkills(resume, company) +
		educationWeight*scoreEducation(resume, company) +
		projectsWeight*scoreProjects(resume, company) +
		experienceWeight*scoreExperience(resume)

	return clamp(round2(total)), nil
}

// scoreSkills: 70 points for required skills, 30 for core skills. Each part
// shrinks with the number of missing members, so a smaller requirement set can
// never score lower than a superset of it.
func scoreSkills(resume normalizer.ResumeAttributes, company normalizer.CompanyRequirements) float64 {
	missingRequired := resume.SkillSet.Missing(company.RequiredSkills)
	missingCore := resume.SkillSet.Union(resume.CoreSkills).Missing(company.CoreSkills)
	return 70/float64(1+missingRequired) + 30/float64(1+missingCore)
}

// scoreEducation: 70 points for meeting the minimum CPI (pro rata below it), 30
// for an eligible branch. No branch list means every branch is eligible.
func scoreEducation(resume normalizer.ResumeAttributes, company normalizer.CompanyRequirements) float64 {
	cpi := 0.0
	switch {
	case resume.GPA <= 0:
		cpi = 0
	case resume.GPA >= company.MinCPI:
		cpi = 70
	default:
		cpi = 70 * resume.GPA / company.MinCPI
	}

	branch := 0.0
	if company.EligibleBranches.Len() == 0 || company.EligibleBranches.Has(resume.Branch) {
		branch = 30
	}

	return cpi + branch
}

// scoreProjects: 50 points for the project count (pro rata below the minimum),
// 50 for project keyword coverage.
func scoreProjects(resume normalizer.ResumeAttributes, company normalizer.CompanyRequirements) float64 {
	count := 50.0
	if resume.ProjectCount < company.MinProjects {
		count = 50 * float64(resume.ProjectCount) / float64(company.MinProjects)
	}

	missing := resume.ProjectKeywords.Missing(company.ProjectKeywords)
	return count + 50/float64(1+missing)
}

func scoreExperience(resume normalizer.ResumeAttributes) float64 {
	if resume.HasExperience {
		return 100
	}
	return 0
}

func invalid(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func clamp(f float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, f))
}
