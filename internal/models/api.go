package models

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CompanyRequest is the validated shape of a company create/update body after the
// list fields have been decoded from either arrays or comma-separated strings.
type CompanyRequest struct {
	Name            string   `json:"name" validate:"required,min=1,max=200"`
	CPI             float64  `json:"cpi" validate:"gte=0,lte=10"`
	SkillSet        []string `json:"skillSet" validate:"dive,required"`
	InternshipRole  string   `json:"internshipRole"`
	VisitsCampus    bool     `json:"visitsCampus"`
	MinProjects     int      `json:"minProjects" validate:"gte=0"`
	ProjectKeywords []string `json:"projectKeywords" validate:"dive,required"`
	Branch          []string `json:"branch" validate:"dive,required"`
	DSARequired     bool     `json:"dsaRequired"`
	CoreSkills      []string `json:"coreSkills" validate:"dive,required"`
	Description     string   `json:"description"`
}

// Validate validates the CompanyRequest using the validator.
func (r *CompanyRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// CompanyPatch is a partial company update; nil fields are left untouched.
type CompanyPatch struct {
	Name            *string   `json:"name" validate:"omitempty,min=1,max=200"`
	CPI             *float64  `json:"cpi" validate:"omitempty,gte=0,lte=10"`
	SkillSet        *[]string `json:"skillSet" validate:"omitempty,dive,required"`
	InternshipRole  *string   `json:"internshipRole"`
	VisitsCampus    *bool     `json:"visitsCampus"`
	MinProjects     *int      `json:"minProjects" validate:"omitempty,gte=0"`
	ProjectKeywords *[]string `json:"projectKeywords" validate:"omitempty,dive,required"`
	Branch          *[]string `json:"branch" validate:"omitempty,dive,required"`
	DSARequired     *bool     `json:"dsaRequired"`
	CoreSkills      *[]string `json:"coreSkills" validate:"omitempty,dive,required"`
	Description     *string   `json:"description"`
}

// Validate validates the CompanyPatch using the validator.
func (p *CompanyPatch) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

type RankingResponse struct {
	CompanyID   uuid.UUID `json:"companyId"`
	CompanyName string    `json:"companyName"`
	Score       float64   `json:"score"`
	Rank        int       `json:"rank"`
}

type FailureResponse struct {
	CompanyID   string `json:"companyId,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	ResumeID    string `json:"resumeId,omitempty"`
	Error       string `json:"error"`
}

type ResumeResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Rankings []RankingResponse `json:"rankings"`
}

type UploadResponse struct {
	Message  string            `json:"msg"`
	Resume   ResumeResponse    `json:"resume"`
	Failures []FailureResponse `json:"failures,omitempty"`
}

type LeaderboardEntry struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Skills []string  `json:"skills"`
	GPA    float64   `json:"gpa"`
	Branch string    `json:"branch"`
	Score  float64   `json:"score"`
	Rank   int       `json:"rank"`
}

type CompanyMutationResponse struct {
	Company  *Company          `json:"company"`
	Failures []FailureResponse `json:"failures,omitempty"`
}

type ReconcileResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type SearchHit struct {
	ResumeID string  `json:"resumeId"`
	Score    float32 `json:"score"`
	Snippet  string  `json:"snippet"`
}
