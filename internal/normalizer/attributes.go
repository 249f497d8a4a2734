// Package normalizer turns raw parser output and stored company records into the
// canonical attribute sets the scorer works on.
package normalizer

import "github.com/google/uuid"

type Contact struct {
	Email string
	Phone string
}

// ResumeAttributes is rebuilt for every scoring call and never persisted as is.
type ResumeAttributes struct {
	GPA             float64
	SkillSet        Set
	ProjectCount    int
	ProjectKeywords Set
	CoreSkills      Set
	Branch          string
	HasExperience   bool
	Contact         Contact
}

// CompanyRequirements is a read-only view over a stored company.
type CompanyRequirements struct {
	ID               uuid.UUID
	Name             string
	MinCPI           float64
	RequiredSkills   Set
	MinProjects      int
	ProjectKeywords  Set
	EligibleBranches Set
	CoreSkills       Set
}

// RawEducation is one education entry as produced by the attribute parser.
type RawEducation struct {
	Degree      string   `mapstructure:"degree" json:"degree,omitempty"`
	Field       string   `mapstructure:"field" json:"field,omitempty"`
	Institution string   `mapstructure:"institution" json:"institution,omitempty"`
	GPA         *float64 `mapstructure:"gpa" json:"gpa,omitempty"`
}

// RawResume is the optional-field schema of the attribute parser output. Every
// field may be absent; absent fields keep their zero value.
type RawResume struct {
	Name            string         `mapstructure:"Name" json:"Name,omitempty"`
	Email           string         `mapstructure:"Email_ID" json:"Email_ID,omitempty"`
	Phone           string         `mapstructure:"Mobile_Number" json:"Mobile_Number,omitempty"`
	CPI             *float64       `mapstructure:"CPI/GPA" json:"CPI/GPA,omitempty"`
	Education       []RawEducation `mapstructure:"Education" json:"Education,omitempty"`
	Skills          []string       `mapstructure:"Skills" json:"Skills,omitempty"`
	Branch          string         `mapstructure:"Branch" json:"Branch,omitempty"`
	ProjectCount    int            `mapstructure:"No_of_Projects" json:"No_of_Projects,omitempty"`
	ProjectKeywords []string       `mapstructure:"Project_Keywords" json:"Project_Keywords,omitempty"`
	Experience      bool           `mapstructure:"Experience" json:"Experience,omitempty"`
	CoreSkills      []string       `mapstructure:"Core_Computer_Skills" json:"Core_Computer_Skills,omitempty"`
}
