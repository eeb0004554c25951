package textx

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTokenLen is the shortest token kept by Tokenize; shorter ones carry no signal.
const MinTokenLen = 3

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		the a an and or but in on at to for of with by from as is was are were be been being
		have has had do does did will would should could may might must can this that these those
		i you he she it we they our your their its his her them not all any who what when where
		which into onto about than then also such very etc per via within across using including
		are there here just more most other some only own same so too out off over under again
	`) {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether w (lower-case) belongs to the fixed stopword set.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// Tokenize lower-cases s, turns every non-alphanumeric rune into a separator and
// drops tokens shorter than MinTokenLen as well as stopwords. Order and
// repetitions are preserved.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	fields := strings.Fields(mapped)
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinTokenLen || IsStopword(f) {
			continue
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// WordSet returns the distinct lower-case alphanumeric words of s with no
// length or stopword filtering, so short codes such as "NY" or "UK" survive.
func WordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[f] = struct{}{}
	}
	return set
}

// TokenSet returns the distinct tokens of s.
func TokenSet(s string) map[string]struct{} {
	toks := Tokenize(s)
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}
