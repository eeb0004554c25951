// Package normalize maps source-specific job postings onto domain.CanonicalJob.
package normalize

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fairyhunter13/jobfit/internal/domain"
	"github.com/fairyhunter13/jobfit/pkg/textx"
)

// UnknownSource tags records that arrive without a source.
const UnknownSource = "unknown"

// Fields are the values a source mapping pulls out of a raw record before the
// shared parsing and defaulting steps.
type Fields struct {
	Title, Company, Location, Description, URL string

	ExternalID *string
	SalaryText *string
	JobType    *string
	// Posted is a free-form date phrase; PostedAt wins when the source has a timestamp.
	Posted   *string
	PostedAt *time.Time
}

// MapFunc extracts Fields from one raw record of a given source.
type MapFunc func(Record) Fields

// Normalizer dispatches raw records to per-source mappings. It holds no
// mutable state and is safe for concurrent use.
type Normalizer struct {
	salary   SalaryParser
	now      func() time.Time
	mappings map[string]MapFunc
	fallback MapFunc
}

// Option customises a Normalizer.
type Option func(*Normalizer)

// WithClock sets the processing-time clock used for relative dates.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// WithThousandsThreshold overrides DefaultThousandsThreshold.
func WithThousandsThreshold(v int) Option {
	return func(n *Normalizer) { n.salary.ThousandsThreshold = v }
}

// WithSource adds or replaces the mapping for a source tag.
func WithSource(source string, fn MapFunc) Option {
	return func(n *Normalizer) {
		if fn != nil {
			n.mappings[SourceTag(source)] = fn
		}
	}
}

// New builds a Normalizer with every built-in source mapping.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		salary:   SalaryParser{ThousandsThreshold: DefaultThousandsThreshold},
		now:      func() time.Time { return time.Now().UTC() },
		mappings: builtinMappings(),
		fallback: mapGuess,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Sources lists the tags with a dedicated mapping, sorted.
func (n *Normalizer) Sources() []string {
	out := make([]string, 0, len(n.mappings))
	for k := range n.mappings {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Salary returns the salary parser configured for this normalizer.
func (n *Normalizer) Salary() SalaryParser { return n.salary }

// Normalize maps raw into a canonical job. The only error is a record that is
// not an object.
func (n *Normalizer) Normalize(raw any, source string) (domain.CanonicalJob, error) {
	rec, ok := asRecord(raw)
	if !ok {
		return domain.CanonicalJob{}, fmt.Errorf("%w: job record must be an object, got %T", domain.ErrInvalidArgument, raw)
	}
	tag := SourceTag(source)
	mapFn, known := n.mappings[tag]
	if !known {
		mapFn = n.fallback
	}
	return n.build(mapFn(rec), tag, rec), nil
}

func (n *Normalizer) build(f Fields, source string, rec Record) domain.CanonicalJob {
	minSalary, maxSalary, salaryText := n.salary.Parse(trimmedPtr(f.SalaryText))
	job := domain.CanonicalJob{
		Title:       orUnknown(f.Title),
		Company:     orUnknown(f.Company),
		Location:    textx.CleanText(f.Location),
		Description: textx.StripHTML(f.Description),
		SalaryMin:   minSalary,
		SalaryMax:   maxSalary,
		SalaryText:  salaryText,
		JobType:     trimmedPtr(f.JobType),
		URL:         CanonicalURL(f.URL),
		Source:      source,
		ExternalID:  trimmedPtr(f.ExternalID),
		PostedAt:    f.PostedAt,
		Raw:         domain.RawRecord(rec),
	}
	if job.PostedAt == nil && f.Posted != nil {
		job.PostedAt = ParsePosted(*f.Posted, n.now())
	}
	return job
}

func asRecord(raw any) (Record, bool) {
	switch v := raw.(type) {
	case map[string]any:
		if v == nil {
			return nil, false
		}
		return Record(v), true
	case Record:
		if v == nil {
			return nil, false
		}
		return v, true
	}
	return nil, false
}

// SourceTag normalises a source name; blank becomes UnknownSource.
func SourceTag(source string) string {
	s := strings.ToLower(strings.TrimSpace(source))
	if s == "" {
		return UnknownSource
	}
	return s
}

func orUnknown(s string) string {
	if s = textx.CleanText(s); s == "" {
		return domain.PlaceholderUnknown
	}
	return s
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
