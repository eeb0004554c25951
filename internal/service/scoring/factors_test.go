package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func set(items ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		out[it] = struct{}{}
	}
	return out
}

func TestSkillsScore(t *testing.T) {
	assert.Equal(t, Neutral, SkillsScore(set("go"), nil))
	assert.Equal(t, 0.0, SkillsScore(nil, set("go")))
	assert.InDelta(t, 1.0/3.0, SkillsScore(set("go", "sql"), set("go", "java")), 1e-9)
	assert.Equal(t, 1.0, SkillsScore(set("go"), set("go")))
}

func TestTitleScore(t *testing.T) {
	assert.Equal(t, 0.0, TitleScore("Backend Engineer", ""))
	assert.Equal(t, Neutral, TitleScore("  ", "Backend Engineer"))
	assert.InDelta(t, 1.0, TitleScore("backend engineer", "Backend Engineer"), 1e-9)
	assert.Equal(t, 0.0, TitleScore("graphic designer", "Java Backend Engineer"))
	s := TitleScore("Senior Backend Engineer", "Backend Developer")
	assert.Greater(t, s, 0.0)
	assert.Less(t, s, 1.0)
}

func TestLocationScore(t *testing.T) {
	tests := []struct {
		name     string
		job      string
		cand     string
		remoteOK bool
		want     float64
	}{
		{"job location missing", "", "Berlin", false, Neutral},
		{"remote accepted", "Remote - US", "", true, RemoteMatch},
		{"remote not accepted", "REMOTE", "Berlin", false, RemoteNotAccepted},
		{"candidate location missing", "Berlin, Germany", "", false, Neutral},
		{"shared token", "Berlin, Germany", "berlin", false, 1},
		{"no overlap", "Berlin, Germany", "Lisbon, Portugal", false, 0},
		{"state code", "New York, NY", "NY", false, 1},
		{"country code", "London, UK", "UK", false, 1},
		{"shared state code", "San Diego, CA", "LA, CA", false, 1},
		{"different codes", "Austin, TX", "NY", false, 0},
		{"punctuation only", "Berlin", " - ", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LocationScore(tt.job, tt.cand, tt.remoteOK))
		})
	}
}

func TestSalaryScore(t *testing.T) {
	tests := []struct {
		name             string
		jobMin, jobMax   *int
		candMin, candMax *float64
		want             float64
	}{
		{"job unspecified", nil, nil, floatp(100000), nil, Neutral},
		{"candidate unspecified", intp(100000), intp(150000), nil, nil, Neutral},
		{"zero salary is unfavourable", intp(0), intp(0), floatp(100000), nil, 0},
		{"above candidate range", intp(200000), intp(250000), floatp(100000), floatp(150000), AboveRange},
		{"below candidate minimum", intp(50000), intp(80000), floatp(100000), nil, 0.8},
		{"full overlap", intp(90000), intp(200000), floatp(100000), floatp(150000), 1},
		{"half overlap", intp(125000), intp(200000), floatp(100000), floatp(150000), 0.5},
		{"open-ended candidate", intp(120000), intp(130000), floatp(100000), nil, 1},
		{"single amount inside range", intp(120000), intp(120000), floatp(100000), floatp(150000), 1},
		{"job maximum only", nil, intp(120000), floatp(100000), floatp(200000), 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SalaryScore(tt.jobMin, tt.jobMax, tt.candMin, tt.candMax), 1e-9)
		})
	}
}

func TestSalaryScore_UnspecifiedIsNeutralForAnyDesire(t *testing.T) {
	for _, desired := range []float64{0, 1, 50000, 100000, 1e9} {
		assert.Equal(t, Neutral, SalaryScore(nil, nil, floatp(desired), nil))
	}
	assert.Less(t, SalaryScore(intp(0), intp(0), floatp(100000), nil), Neutral)
}

func TestSeniorityScore(t *testing.T) {
	assert.Equal(t, Neutral, SeniorityScore("", "senior"))
	assert.Equal(t, Neutral, SeniorityScore("Backend Engineer", "senior"))
	assert.Equal(t, Neutral, SeniorityScore("senior", "wizard"))
	assert.Equal(t, 1.0, SeniorityScore("Sr. Engineer", "senior"))
	assert.InDelta(t, 1-1.0/9.0, SeniorityScore("Staff Engineer", "principal"), 1e-9)
	assert.Equal(t, 0.0, SeniorityScore("Software Intern", "CTO"))
}

func TestLevelRank(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"intern", RankIntern, true},
		{"Associate Product Manager", RankEntry, true},
		{"Entry-Level Analyst", RankEntry, true},
		{"Jr Developer", RankJunior, true},
		{"intermediate", RankMid, true},
		{"Senior Staff Engineer", RankStaff, true},
		{"Head of Data", RankDirector, true},
		{"Vice President, Engineering", RankDirector, true},
		{"Chief Technology Officer", RankExecutive, true},
		{"Backend Engineer", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := LevelRank(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
