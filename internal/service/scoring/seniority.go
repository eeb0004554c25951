package scoring

import (
	"strings"
	"unicode"
)

// Seniority ranks, lowest to highest.
const (
	RankIntern = iota + 1
	RankEntry
	RankJunior
	RankMid
	RankSenior
	RankLead
	RankStaff
	RankPrincipal
	RankDirector
	RankExecutive
)

// LadderSpan is the largest possible rank distance.
const LadderSpan = RankExecutive - RankIntern

var ladderAliases = map[string]int{
	"intern": RankIntern, "internship": RankIntern, "trainee": RankIntern, "apprentice": RankIntern,
	"entry": RankEntry, "graduate": RankEntry, "associate": RankEntry, "new grad": RankEntry, "entry level": RankEntry,
	"junior": RankJunior, "jr": RankJunior,
	"mid": RankMid, "intermediate": RankMid, "mid level": RankMid, "midlevel": RankMid,
	"senior": RankSenior, "sr": RankSenior,
	"lead": RankLead, "team lead": RankLead, "tech lead": RankLead,
	"staff": RankStaff,
	"principal": RankPrincipal, "distinguished": RankPrincipal,
	"director": RankDirector, "head": RankDirector, "vp": RankDirector, "vice president": RankDirector,
	"executive": RankExecutive, "chief": RankExecutive, "cto": RankExecutive, "ceo": RankExecutive,
	"cio": RankExecutive, "cfo": RankExecutive, "coo": RankExecutive, "c level": RankExecutive,
}

// LevelRank maps a level name or a job title onto the ladder. When several
// levels appear ("Senior Staff Engineer") the highest wins.
func LevelRank(s string) (int, bool) {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return 0, false
	}
	best := 0
	for i, w := range words {
		if r, ok := ladderAliases[w]; ok && r > best {
			best = r
		}
		if i+1 < len(words) {
			if r, ok := ladderAliases[w+" "+words[i+1]]; ok && r > best {
				best = r
			}
		}
	}
	return best, best > 0
}
