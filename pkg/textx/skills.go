package textx

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SkillMode selects how skills are pulled out of free text.
type SkillMode string

const (
	// SkillModeGeneric treats every token of the text as a skill.
	SkillModeGeneric SkillMode = "generic"
	// SkillModeVocabulary keeps only known terms found in the text.
	SkillModeVocabulary SkillMode = "vocabulary"
)

// ErrEmptyVocabulary is returned when vocabulary mode is configured without terms.
var ErrEmptyVocabulary = errors.New("skill vocabulary is empty")

// SkillExtractor turns text into a skill set. It is immutable and safe for concurrent use.
type SkillExtractor struct {
	mode  SkillMode
	vocab []string
}

// NewSkillExtractor builds an extractor for mode. The vocabulary is only used in
// vocabulary mode; terms are lower-cased, trimmed and de-duplicated.
func NewSkillExtractor(mode SkillMode, vocabulary []string) (*SkillExtractor, error) {
	switch mode {
	case SkillModeGeneric:
		return &SkillExtractor{mode: mode}, nil
	case SkillModeVocabulary:
	default:
		return nil, fmt.Errorf("unknown skill mode %q", mode)
	}
	seen := make(map[string]struct{}, len(vocabulary))
	terms := make([]string, 0, len(vocabulary))
	for _, v := range vocabulary {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		terms = append(terms, v)
	}
	if len(terms) == 0 {
		return nil, ErrEmptyVocabulary
	}
	sort.Strings(terms)
	return &SkillExtractor{mode: mode, vocab: terms}, nil
}

// Mode returns the configured extraction mode.
func (e *SkillExtractor) Mode() SkillMode { return e.mode }

// Extract returns the skills mentioned in text.
func (e *SkillExtractor) Extract(text string) map[string]struct{} {
	if e.mode == SkillModeGeneric {
		return TokenSet(text)
	}
	out := map[string]struct{}{}
	lower := strings.ToLower(text)
	for _, term := range e.vocab {
		if containsTerm(lower, term) {
			out[term] = struct{}{}
		}
	}
	return out
}

// Normalize maps caller-declared skills onto the same space Extract produces,
// so declared and extracted skills compare equal.
func (e *SkillExtractor) Normalize(skills []string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, s := range skills {
		if e.mode == SkillModeGeneric {
			for t := range TokenSet(s) {
				out[t] = struct{}{}
			}
			continue
		}
		found := e.Extract(s)
		if len(found) == 0 {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out[s] = struct{}{}
			}
			continue
		}
		for t := range found {
			out[t] = struct{}{}
		}
	}
	return out
}

// containsTerm finds term in text where neither neighbour is alphanumeric.
func containsTerm(text, term string) bool {
	for from := 0; from <= len(text)-len(term); {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }
