package normalize

import (
	"net/url"
	"regexp"
)

// Source tags with a dedicated mapping.
const (
	SourceSerpAPI    = "serpapi"
	SourceIndeed     = "indeed"
	SourceZyte       = "zyte"
	SourcePlaywright = "playwright"
	SourceGreenhouse = "greenhouse"
	SourceLever      = "lever"
)

var (
	indeedJobKeyRe = regexp.MustCompile(`[?&]jk=([^&#]+)`)
	lastSegmentRe  = regexp.MustCompile(`/([\w-]+)/?$`)
)

func builtinMappings() map[string]MapFunc {
	return map[string]MapFunc{
		SourceSerpAPI:    mapSerpAPI,
		SourceIndeed:     mapIndeed,
		SourceZyte:       mapZyte,
		SourcePlaywright: mapPlaywright,
		SourceGreenhouse: mapGreenhouse,
		SourceLever:      mapLever,
	}
}

// Google Jobs results as returned by SerpAPI.
func mapSerpAPI(r Record) Fields {
	return Fields{
		Title:       r.String("title"),
		Company:     r.String("company_name"),
		Location:    r.String("location"),
		Description: r.String("description"),
		URL:         r.String("share_link", "share_url", "link", "apply_options.0.link", "related_links.0.link"),
		ExternalID:  r.StringPtr("job_id"),
		SalaryText:  r.StringPtr("detected_extensions.salary"),
		Posted:      r.StringPtr("detected_extensions.posted_at"),
		JobType:     r.StringPtr("detected_extensions.schedule_type"),
	}
}

func mapIndeed(r Record) Fields {
	link := r.String("link", "url")
	return Fields{
		Title:       r.String("title"),
		Company:     r.String("company"),
		Location:    r.String("location"),
		Description: r.String("description"),
		URL:         link,
		ExternalID:  indeedJobKey(link),
		SalaryText:  r.StringPtr("salary"),
		Posted:      r.StringPtr("date_posted"),
		JobType:     r.StringPtr("job_type"),
	}
}

func mapZyte(r Record) Fields {
	return Fields{
		Title:       r.String("title"),
		Company:     r.String("company"),
		Location:    r.String("location"),
		Description: r.String("description"),
		URL:         r.String("url"),
		ExternalID:  r.StringPtr("id"),
		SalaryText:  r.StringPtr("salary"),
		Posted:      r.StringPtr("posted_date"),
		JobType:     r.StringPtr("employment_type"),
	}
}

// Pages scraped with a headless browser; the id is the last URL path segment.
func mapPlaywright(r Record) Fields {
	link := r.String("url")
	return Fields{
		Title:       r.String("title"),
		Company:     r.String("company"),
		Location:    r.String("location"),
		Description: r.String("description"),
		URL:         link,
		ExternalID:  lastPathSegment(link),
		SalaryText:  r.StringPtr("salary"),
		Posted:      r.StringPtr("posted"),
		JobType:     r.StringPtr("type"),
	}
}

// Greenhouse job board API (boards-api.greenhouse.io/v1/boards/<org>/jobs?content=true).
func mapGreenhouse(r Record) Fields {
	return Fields{
		Title:       r.String("title"),
		Company:     r.String("company_name", "company"),
		Location:    r.String("location.name"),
		Description: r.String("content"),
		URL:         r.String("absolute_url"),
		ExternalID:  r.StringPtr("id", "internal_job_id"),
		Posted:      r.StringPtr("updated_at", "first_published"),
	}
}

// Lever postings API (api.lever.co/v0/postings/<org>?mode=json).
func mapLever(r Record) Fields {
	return Fields{
		Title:       r.String("text"),
		Company:     r.String("company"),
		Location:    r.String("categories.location"),
		Description: r.String("descriptionPlain", "description"),
		URL:         r.String("hostedUrl", "applyUrl"),
		ExternalID:  r.StringPtr("id"),
		SalaryText:  r.StringPtr("salaryRange.text"),
		PostedAt:    r.EpochMillis("createdAt"),
		JobType:     r.StringPtr("categories.commitment"),
	}
}

// mapGuess serves unknown sources by trying the usual key spellings.
func mapGuess(r Record) Fields {
	return Fields{
		Title:       r.String("title", "job_title", "position", "name"),
		Company:     r.String("company", "company_name", "employer", "organization"),
		Location:    r.String("location", "job_location", "city", "location.name"),
		Description: r.String("description", "summary", "content"),
		URL:         r.String("link", "url", "apply_url", "share_link", "absolute_url"),
		ExternalID:  r.StringPtr("id", "external_id", "job_id"),
		SalaryText:  r.StringPtr("salary", "salary_text", "compensation"),
		Posted:      r.StringPtr("date_posted", "posted_at", "posted", "posted_date"),
		JobType:     r.StringPtr("job_type", "employment_type", "type", "schedule_type"),
	}
}

func indeedJobKey(link string) *string {
	if m := indeedJobKeyRe.FindStringSubmatch(link); m != nil {
		if v, err := url.QueryUnescape(m[1]); err == nil && v != "" {
			return &v
		}
	}
	return nil
}

func lastPathSegment(link string) *string {
	path := link
	if u, err := url.Parse(link); err == nil && u.Path != "" {
		path = u.Path
	}
	if m := lastSegmentRe.FindStringSubmatch(path); m != nil {
		return &m[1]
	}
	return nil
}
