// Package importer loads company requirements from the placement spreadsheet
// export and upserts them by name.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/normalizer"
	"alfredoptarigan/resume-ranker/internal/services"
)

// Spreadsheet column headers.
const (
	ColName            = "Company Name"
	ColCPI             = "Minimum CPI/GPA"
	ColSkills          = "Required Skills"
	ColInternshipRole  = "Internship Role"
	ColVisitsCampus    = "Visits IIT Patna"
	ColProjects        = "No of Projects"
	ColProjectKeywords = "Key words in project"
	ColBranches        = "Branches Invited"
	ColDSA             = "DSA REQUIRED"
	ColCoreSkills      = "CORE COMPUTER SKILLS"
)

var ErrMissingNameColumn = errors.New("csv has no \"Company Name\" column")

// Row is one parsed spreadsheet line. Line is 1-based and counts the header.
type Row struct {
	Line    int
	Request models.CompanyRequest
}

// ReadCompanies parses the spreadsheet. Rows without a company name are skipped.
func ReadCompanies(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := columns[ColName]; !ok {
		return nil, ErrMissingNameColumn
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		get := func(col string) string {
			i, ok := columns[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		name := get(ColName)
		if name == "" {
			continue
		}

		projects, _ := strconv.Atoi(get(ColProjects))
		if projects < 0 {
			projects = 0
		}

		rows = append(rows, Row{
			Line: line,
			Request: models.CompanyRequest{
				Name:            name,
				CPI:             normalizer.ParseNumber(get(ColCPI)),
				SkillSet:        normalizer.SplitList(get(ColSkills)),
				InternshipRole:  get(ColInternshipRole),
				VisitsCampus:    normalizer.ParseFlag(get(ColVisitsCampus)),
				MinProjects:     projects,
				ProjectKeywords: normalizer.SplitList(get(ColProjectKeywords)),
				Branch:          normalizer.SplitList(get(ColBranches)),
				DSARequired:     normalizer.ParseFlag(get(ColDSA)),
				CoreSkills:      normalizer.SplitList(get(ColCoreSkills)),
			},
		})
	}
	return rows, nil
}

// Upserter is the part of the company service the import needs.
type Upserter interface {
	Upsert(ctx context.Context, req models.CompanyRequest) (*models.Company, bool, *services.RankingOutcome, error)
}

type Summary struct {
	Created  int
	Updated  int
	Failed   int
	Failures []error
}

// Import upserts every row. A failing row is recorded and the import goes on.
func Import(ctx context.Context, companies Upserter, rows []Row, log *zap.Logger) Summary {
	var summary Summary
	for _, row := range rows {
		company, created, outcome, err := companies.Upsert(ctx, row.Request)
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, fmt.Errorf("line %d (%s): %w", row.Line, row.Request.Name, err))
			log.Warn("company import failed", zap.Int("line", row.Line), zap.String(logger.FieldCompanyName, row.Request.Name), zap.Error(err))
			continue
		}

		fields := logger.CompanyFields(company.ID, company.Name)
		if outcome != nil && len(outcome.Failures) > 0 {
			fields = append(fields, zap.Int("ranking_failures", len(outcome.Failures)))
		}
		if created {
			summary.Created++
			log.Info("company created", fields...)
		} else {
			summary.Updated++
			log.Info("company updated", fields...)
		}
	}
	return summary
}
