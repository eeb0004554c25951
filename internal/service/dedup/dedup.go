// Package dedup computes job identity keys and collapses duplicate postings.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/fairyhunter13/jobfit/internal/domain"
)

// Key prefixes, one per identity tier.
const (
	PrefixURL      = "url:"
	PrefixExternal = "ext:"
	PrefixHash     = "hash:"
)

// Key returns the identity of job: its URL when present, else (source,
// external id), else a content hash of title, company and location.
// Stores use the same string as their unique key.
func Key(job domain.CanonicalJob) string {
	if u := strings.TrimSpace(job.URL); u != "" {
		return PrefixURL + u
	}
	if job.ExternalID != nil {
		if id := strings.TrimSpace(*job.ExternalID); id != "" {
			return PrefixExternal + strings.ToLower(strings.TrimSpace(job.Source)) + ":" + id
		}
	}
	return PrefixHash + ContentHash(job.Title, job.Company, job.Location)
}

// ContentHash is the hex SHA-256 of the case-folded, trimmed fields joined by a unit separator.
func ContentHash(title, company, location string) string {
	h := sha256.New()
	for i, part := range []string{title, company, location} {
		if i > 0 {
			h.Write([]byte{0x1f})
		}
		h.Write([]byte(strings.ToLower(strings.TrimSpace(part))))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Filter keeps the first job seen for every key, preserving input order, and
// reports how many were dropped.
func Filter(jobs []domain.CanonicalJob) (unique []domain.CanonicalJob, dropped int) {
	seen := make(map[string]struct{}, len(jobs))
	unique = make([]domain.CanonicalJob, 0, len(jobs))
	for _, j := range jobs {
		k := Key(j)
		if _, dup := seen[k]; dup {
			dropped++
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, j)
	}
	return unique, dropped
}
