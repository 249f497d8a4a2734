package normalizer

import "alfredoptarigan/resume-ranker/internal/models"

// NormalizeResume never fails: missing values become empty sets, 0 or "".
// GPA is the highest GPA found across the education entries.
func NormalizeResume(raw RawResume) ResumeAttributes {
	gpa := 0.0
	if raw.CPI != nil && *raw.CPI > gpa {
		gpa = *raw.CPI
	}
	for _, edu := range raw.Education {
		if edu.GPA != nil && *edu.GPA > gpa {
			gpa = *edu.GPA
		}
	}

	projects := raw.ProjectCount
	if projects < 0 {
		projects = 0
	}

	branch := raw.Branch
	if branch == "" {
		for _, edu := range raw.Education {
			if edu.Field != "" {
				branch = edu.Field
				break
			}
		}
	}

	return ResumeAttributes{
		GPA:             gpa,
		SkillSet:        NewSet(raw.Skills...),
		ProjectCount:    projects,
		ProjectKeywords: NewSet(raw.ProjectKeywords...),
		CoreSkills:      NewSet(raw.CoreSkills...),
		Branch:          branch,
		HasExperience:   raw.Experience,
		Contact: Contact{
			Email: raw.Email,
			Phone: raw.Phone,
		},
	}
}

func NormalizeCompany(c *models.Company) CompanyRequirements {
	if c == nil {
		return CompanyRequirements{
			RequiredSkills:   NewSet(),
			ProjectKeywords:  NewSet(),
			EligibleBranches: NewSet(),
			CoreSkills:       NewSet(),
		}
	}

	minProjects := c.MinProjects
	if minProjects < 0 {
		minProjects = 0
	}

	minCPI := c.MinCPI
	if minCPI < 0 {
		minCPI = 0
	}

	return CompanyRequirements{
		ID:               c.ID,
		Name:             c.Name,
		MinCPI:           minCPI,
		RequiredSkills:   NewSet(c.SkillSet...),
		MinProjects:      minProjects,
		ProjectKeywords:  NewSet(c.ProjectKeywords...),
		EligibleBranches: NewSet(c.Branches...),
		CoreSkills:       NewSet(c.CoreSkills...),
	}
}

// StoredResume rebuilds the attributes of a persisted resume.
func StoredResume(r *models.Resume) (ResumeAttributes, error) {
	raw, err := DecodeStoredResume(r.RawAttributes)
	if err != nil {
		return ResumeAttributes{}, err
	}
	if raw.Email == "" {
		raw.Email = r.Email
	}
	if raw.Phone == "" {
		raw.Phone = r.Phone
	}
	return NormalizeResume(raw), nil
}
