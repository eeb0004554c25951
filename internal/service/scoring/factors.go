// Package scoring computes heuristic job fit: five bounded factor scores and
// their weighted aggregate.
package scoring

import (
	"math"
	"strings"

	"github.com/fairyhunter13/jobfit/pkg/textx"
)

// Neutral is returned when a factor has no information to judge.
const Neutral = 0.5

// Fixed scores for remote postings and for pay above the candidate's range.
const (
	RemoteMatch       = 1.0
	RemoteNotAccepted = 0.3
	AboveRange        = 0.8
)

// SkillsScore compares candidate and job skill sets. A job without skills is
// neutral; a candidate without skills against a job with skills scores 0.
func SkillsScore(candidate, job map[string]struct{}) float64 {
	if len(job) == 0 {
		return Neutral
	}
	if len(candidate) == 0 {
		return 0
	}
	return textx.Jaccard(candidate, job)
}

// TitleScore is the cosine similarity of the stopword-free tokens of the
// desired title and the job title. A missing job title scores 0.
func TitleScore(desired, jobTitle string) float64 {
	if strings.TrimSpace(jobTitle) == "" {
		return 0
	}
	if strings.TrimSpace(desired) == "" {
		return Neutral
	}
	return textx.Cosine(textx.Tokenize(desired), textx.Tokenize(jobTitle))
}

// LocationScore rewards remote postings for remote-friendly candidates and any
// shared location token otherwise.
func LocationScore(jobLocation, candidateLocation string, remoteOK bool) float64 {
	if strings.TrimSpace(jobLocation) == "" {
		return Neutral
	}
	if strings.Contains(strings.ToLower(jobLocation), "remote") {
		if remoteOK {
			return RemoteMatch
		}
		return RemoteNotAccepted
	}
	if strings.TrimSpace(candidateLocation) == "" {
		return Neutral
	}
	jobTokens := textx.WordSet(jobLocation)
	for tok := range textx.WordSet(candidateLocation) {
		if _, ok := jobTokens[tok]; ok {
			return 1
		}
	}
	return 0
}

// SalaryScore measures how the job's pay range sits against the candidate's.
// nil bounds are open (0 below, +Inf above); an explicit 0 is a real amount.
func SalaryScore(jobMin, jobMax *int, candMin, candMax *float64) float64 {
	if jobMin == nil && jobMax == nil {
		return Neutral
	}
	if candMin == nil && candMax == nil {
		return Neutral
	}
	jLo, jHi := 0.0, math.Inf(1)
	if jobMin != nil {
		jLo = float64(*jobMin)
	}
	if jobMax != nil {
		jHi = float64(*jobMax)
	}
	if jLo > jHi {
		jLo, jHi = jHi, jLo
	}
	cLo, cHi := 0.0, math.Inf(1)
	if candMin != nil {
		cLo = *candMin
	}
	if candMax != nil {
		cHi = *candMax
	}
	if cLo > cHi {
		cLo, cHi = cHi, cLo
	}

	switch {
	case !math.IsInf(cHi, 1) && jLo > cHi:
		return AboveRange
	case jHi < cLo:
		// cLo > jHi >= 0 here
		return clamp01(1 - (cLo-jHi)/cLo)
	}

	candSpan := cHi - cLo
	if math.IsInf(candSpan, 1) || candSpan == 0 {
		return 1
	}
	// a single advertised amount inside the range meets the preference
	if jLo == jHi {
		return 1
	}
	overlap := math.Min(jHi, cHi) - math.Max(jLo, cLo)
	return clamp01(overlap / candSpan)
}

// SeniorityScore compares ladder ranks; an unknown level on either side is neutral.
func SeniorityScore(jobLevel, candidateLevel string) float64 {
	jr, okJob := LevelRank(jobLevel)
	cr, okCand := LevelRank(candidateLevel)
	if !okJob || !okCand {
		return Neutral
	}
	if jr == cr {
		return 1
	}
	delta := math.Abs(float64(jr - cr))
	return clamp01(1 - delta/float64(LadderSpan))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
