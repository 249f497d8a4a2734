package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/services"
)

const sheet = `Company Name,Minimum CPI/GPA,Required Skills,Internship Role,Visits IIT Patna,No of Projects,Key words in project,Branches Invited,DSA REQUIRED,CORE COMPUTER SKILLS
Acme,7.5,"Go, SQL , Docker",Backend Intern,YES,2,"api, cloud","CSE,EE",YES,"DBMS, OS"
Globex,Not Available,Python,Data Intern,NO,,,CSE,NO,None
,8,Go,,,,,,,
`

func TestReadCompanies(t *testing.T) {
	rows, err := ReadCompanies(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	acme := rows[0].Request
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Acme", acme.Name)
	assert.Equal(t, 7.5, acme.CPI)
	assert.Equal(t, []string{"Go", "SQL", "Docker"}, acme.SkillSet)
	assert.Equal(t, "Backend Intern", acme.InternshipRole)
	assert.True(t, acme.VisitsCampus)
	assert.Equal(t, 2, acme.MinProjects)
	assert.Equal(t, []string{"api", "cloud"}, acme.ProjectKeywords)
	assert.Equal(t, []string{"CSE", "EE"}, acme.Branch)
	assert.True(t, acme.DSARequired)
	assert.Equal(t, []string{"DBMS", "OS"}, acme.CoreSkills)

	globex := rows[1].Request
	assert.Equal(t, 0.0, globex.CPI)
	assert.Equal(t, 0, globex.MinProjects)
	assert.Empty(t, globex.CoreSkills)
	assert.Empty(t, globex.ProjectKeywords)
	assert.False(t, globex.VisitsCampus)
	assert.False(t, globex.DSARequired)
}

func TestReadCompanies_RequiresNameColumn(t *testing.T) {
	_, err := ReadCompanies(strings.NewReader("Name,CPI\nAcme,7\n"))
	assert.ErrorIs(t, err, ErrMissingNameColumn)
}

type fakeUpserter struct {
	existing map[string]bool
	fail     map[string]error
}

func (f *fakeUpserter) Upsert(_ context.Context, req models.CompanyRequest) (*models.Company, bool, *services.RankingOutcome, error) {
	if err := f.fail[req.Name]; err != nil {
		return nil, false, nil, err
	}
	created := !f.existing[req.Name]
	f.existing[req.Name] = true
	return &models.Company{ID: uuid.New(), Name: req.Name}, created, &services.RankingOutcome{}, nil
}

func TestImport_CountsAndContinuesPastFailures(t *testing.T) {
	rows := []Row{
		{Line: 2, Request: models.CompanyRequest{Name: "Acme"}},
		{Line: 3, Request: models.CompanyRequest{Name: "Broken"}},
		{Line: 4, Request: models.CompanyRequest{Name: "Globex"}},
	}
	upserter := &fakeUpserter{
		existing: map[string]bool{"Globex": true},
		fail:     map[string]error{"Broken": errors.New("db down")},
	}

	summary := Import(context.Background(), upserter, rows, zap.NewNop())

	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Contains(t, summary.Failures[0].Error(), "line 3 (Broken)")
}
