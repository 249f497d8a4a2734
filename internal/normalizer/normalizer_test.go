package normalizer

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-ranker/internal/models"
)

func TestDecodeResume_ParserOutput(t *testing.T) {
	input := map[string]interface{}{
		"Email_ID":             "jane@example.com",
		"Mobile_Number":        "9876543210",
		"CPI/GPA":              8.1,
		"Skills":               []interface{}{"Python", "SQL", "Python"},
		"Branch":               "Computer Science",
		"No_of_Projects":       "3",
		"Project_Keywords":     "ml, web dev ,ml",
		"Experience":           "Yes",
		"Core_Computer_Skills": "dbms, os",
		"Education": []interface{}{
			map[string]interface{}{"degree": "B.Tech", "gpa": 7.2},
			map[string]interface{}{"degree": "M.Tech", "gpa": "9.0"},
		},
	}

	raw, err := DecodeResume(input)
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", raw.Email)
	assert.Equal(t, 3, raw.ProjectCount)
	assert.True(t, raw.Experience)
	assert.Equal(t, []string{"ml", "web dev", "ml"}, raw.ProjectKeywords)
	assert.Equal(t, []string{"dbms", "os"}, raw.CoreSkills)

	attrs := NormalizeResume(raw)
	assert.Equal(t, 9.0, attrs.GPA)
	assert.Equal(t, 2, attrs.SkillSet.Len())
	assert.Equal(t, []string{"ml", "web dev"}, attrs.ProjectKeywords.Sorted())
	assert.Equal(t, "Computer Science", attrs.Branch)
	assert.Equal(t, "9876543210", attrs.Contact.Phone)
}

func TestDecodeResume_MissingFieldsDefault(t *testing.T) {
	raw, err := DecodeResume(map[string]interface{}{
		"CPI/GPA":    nil,
		"Experience": "No",
	})
	require.NoError(t, err)

	attrs := NormalizeResume(raw)
	assert.Zero(t, attrs.GPA)
	assert.Zero(t, attrs.ProjectCount)
	assert.False(t, attrs.HasExperience)
	assert.Empty(t, attrs.Branch)
	assert.NotNil(t, attrs.SkillSet)
	assert.Equal(t, 0, attrs.SkillSet.Len())
	assert.Equal(t, 0, attrs.CoreSkills.Len())
}

func TestNormalizeResume_KeepsCaseAndSpacing(t *testing.T) {
	attrs := NormalizeResume(RawResume{Skills: []string{"Python", "python", "Machine  Learning"}})

	assert.Equal(t, 3, attrs.SkillSet.Len())
	assert.True(t, attrs.SkillSet.Has("python"))
	assert.False(t, attrs.SkillSet.Has("Machine Learning"))
}

func TestNormalizeResume_IgnoresNegativeCounts(t *testing.T) {
	gpa := -1.0
	attrs := NormalizeResume(RawResume{ProjectCount: -2, CPI: &gpa})

	assert.Zero(t, attrs.ProjectCount)
	assert.Zero(t, attrs.GPA)
}

func TestDecodeCompany_ArraysAndStrings(t *testing.T) {
	req, err := DecodeCompany(map[string]interface{}{
		"name":            "Acme",
		"cpi":             "Not Available",
		"skillSet":        "Python, SQL",
		"minProjects":     "2+",
		"projectKeywords": []interface{}{"ml", "cloud"},
		"branch":          "CSE,ECE",
		"coreSkills":      "None",
		"visitsIITPatna":  "YES",
		"dsaRequired":     true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme", req.Name)
	assert.Zero(t, req.CPI)
	assert.Equal(t, []string{"Python", "SQL"}, req.SkillSet)
	assert.Equal(t, 2, req.MinProjects)
	assert.Equal(t, []string{"ml", "cloud"}, req.ProjectKeywords)
	assert.Equal(t, []string{"CSE", "ECE"}, req.Branch)
	assert.Empty(t, req.CoreSkills)
	assert.True(t, req.VisitsCampus)
	assert.True(t, req.DSARequired)
}

func TestDecodeCompanyPatch_OnlyPresentKeys(t *testing.T) {
	patch, err := DecodeCompanyPatch(map[string]interface{}{
		"cpi":      7.5,
		"skillSet": "Go",
	})
	require.NoError(t, err)

	require.NotNil(t, patch.CPI)
	assert.Equal(t, 7.5, *patch.CPI)
	require.NotNil(t, patch.SkillSet)
	assert.Equal(t, []string{"Go"}, *patch.SkillSet)
	assert.Nil(t, patch.Name)
	assert.Nil(t, patch.MinProjects)
	assert.Nil(t, patch.CoreSkills)
}

func TestNormalizeCompany(t *testing.T) {
	id := uuid.New()
	req := NormalizeCompany(&models.Company{
		ID:          id,
		Name:        "Acme",
		MinCPI:      7,
		SkillSet:    pq.StringArray{"Python", "SQL", "SQL"},
		MinProjects: -1,
		Branches:    pq.StringArray{"CSE"},
	})

	assert.Equal(t, id, req.ID)
	assert.Equal(t, 2, req.RequiredSkills.Len())
	assert.Zero(t, req.MinProjects)
	assert.True(t, req.EligibleBranches.Has("CSE"))
	assert.Equal(t, 0, req.CoreSkills.Len())

	empty := NormalizeCompany(nil)
	assert.Equal(t, 0, empty.RequiredSkills.Len())
}

func TestStoredResume_RoundTripsRawAttributes(t *testing.T) {
	gpa := 8.5
	data, err := json.Marshal(RawResume{CPI: &gpa, Skills: []string{"Go"}, Experience: true})
	require.NoError(t, err)

	attrs, err := StoredResume(&models.Resume{Email: "a@b.co", RawAttributes: data})
	require.NoError(t, err)

	assert.Equal(t, 8.5, attrs.GPA)
	assert.True(t, attrs.SkillSet.Has("Go"))
	assert.True(t, attrs.HasExperience)
	assert.Equal(t, "a@b.co", attrs.Contact.Email)

	_, err = StoredResume(&models.Resume{RawAttributes: []byte("{not json")})
	assert.Error(t, err)
}

func TestSetMissing(t *testing.T) {
	have := NewSet("a", "b")
	assert.Equal(t, 1, have.Missing(NewSet("a", "c")))
	assert.Equal(t, 0, have.Missing(NewSet()))
	assert.Equal(t, []string{"a"}, have.Intersect(NewSet("a", "z")).Sorted())
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 3.0, ParseNumber(" 3+ "))
	assert.Equal(t, 0.0, ParseNumber("N/A"))
	assert.Equal(t, 0.0, ParseNumber("abc"))
	assert.True(t, ParseFlag("YES"))
	assert.False(t, ParseFlag("no"))
	assert.Nil(t, SplitList("None"))
}
