package usecase

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/jobfit/internal/domain"
	"github.com/fairyhunter13/jobfit/internal/service/normalize"
	"github.com/fairyhunter13/jobfit/internal/service/refine"
	"github.com/fairyhunter13/jobfit/internal/service/scoring"
	"github.com/fairyhunter13/jobfit/pkg/textx"
)

// parsedJob is a scoring request's job after the PARSE step.
type parsedJob struct {
	view  scoring.JobView
	input refine.Input
}

// parseJob accepts a CanonicalJob, a *CanonicalJob or a JSON-like object.
// Anything else is a malformed request.
func parseJob(job any, salary normalize.SalaryParser) (parsedJob, error) {
	switch v := job.(type) {
	case domain.CanonicalJob:
		return fromCanonical(v, salary), nil
	case *domain.CanonicalJob:
		if v == nil {
			return parsedJob{}, fmt.Errorf("%w: job is required", domain.ErrInvalidArgument)
		}
		return fromCanonical(*v, salary), nil
	case map[string]any:
		if v == nil {
			return parsedJob{}, fmt.Errorf("%w: job is required", domain.ErrInvalidArgument)
		}
		return fromRecord(normalize.Record(v), salary), nil
	case normalize.Record:
		if v == nil {
			return parsedJob{}, fmt.Errorf("%w: job is required", domain.ErrInvalidArgument)
		}
		return fromRecord(v, salary), nil
	case nil:
		return parsedJob{}, fmt.Errorf("%w: job is required", domain.ErrInvalidArgument)
	}
	return parsedJob{}, fmt.Errorf("%w: job must be an object, got %T", domain.ErrInvalidArgument, job)
}

func fromCanonical(j domain.CanonicalJob, salary normalize.SalaryParser) parsedJob {
	description := j.Description
	var skills []string
	var seniority string
	if j.Raw != nil {
		raw := normalize.Record(j.Raw)
		if description == "" {
			description = cleanDescription(raw.String("description"))
		}
		skills = raw.Strings("skills")
		seniority = raw.String("seniority", "seniority_level")
	}
	minSalary, maxSalary := j.SalaryMin, j.SalaryMax
	if minSalary == nil && maxSalary == nil && j.SalaryText != nil {
		minSalary, maxSalary, _ = salary.Parse(j.SalaryText)
	}
	return build(j.Title, j.Company, j.Location, description, minSalary, maxSalary, skills, seniority)
}

func fromRecord(r normalize.Record, salary normalize.SalaryParser) parsedJob {
	minSalary := r.Int("salary_min")
	maxSalary := r.Int("salary_max")
	if minSalary == nil && maxSalary == nil {
		minSalary, maxSalary, _ = salary.ParseString(r.String("salary_text", "salary"))
	}
	return build(
		r.String("title"),
		r.String("company"),
		r.String("location"),
		cleanDescription(r.String("description", "raw.description")),
		minSalary, maxSalary,
		r.Strings("skills"),
		r.String("seniority", "seniority_level"),
	)
}

func build(title, company, location, description string, minSalary, maxSalary *int, skills []string, seniority string) parsedJob {
	title = textx.CleanText(title)
	company = textx.CleanText(company)
	location = textx.CleanText(location)
	return parsedJob{
		view: scoring.JobView{
			Title:       title,
			Company:     company,
			Location:    location,
			Description: description,
			SalaryMin:   minSalary,
			SalaryMax:   maxSalary,
			Skills:      skills,
			Seniority:   seniority,
		},
		input: refine.Input{Title: title, Company: company, Location: location, Description: description},
	}
}

func cleanDescription(s string) string {
	if strings.ContainsRune(s, '<') {
		return textx.StripHTML(s)
	}
	return textx.CleanText(s)
}

// candidateOf merges the résumé text and the optional profile.
func candidateOf(resume *string, p *domain.Profile) scoring.Candidate {
	var c scoring.Candidate
	if resume != nil {
		c.ResumeText = textx.SanitizeText(*resume)
	}
	if p == nil {
		return c
	}
	c.Skills = p.Skills
	c.DesiredTitle = deref(p.DesiredTitle)
	c.Location = deref(p.Location)
	c.RemoteOK = p.RemoteOK
	c.MinSalary = p.MinSalary
	c.MaxSalary = p.MaxSalary
	c.SeniorityLevel = deref(p.SeniorityLevel)
	return c
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
