package normalize

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultThousandsThreshold is the value below which a parsed salary number is
// read as thousands ("100 - 150" means 100000 - 150000). A "k" suffix always
// means thousands.
const DefaultThousandsThreshold = 1000

var (
	currencyReplacer = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", "₹", "", ",", "")
	salaryRangeRe    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(k)?\s*(?:-|–|—|\bto\b)\s*(\d+(?:\.\d+)?)\s*(k)?`)
	salarySingleRe   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(k)?`)
)

// SalaryParser extracts a (min, max, text) triple from free-form salary text.
// The zero value uses DefaultThousandsThreshold.
type SalaryParser struct {
	ThousandsThreshold int
}

// Parse never fails: text without a number yields (nil, nil, text).
// The original text is returned untouched whenever it is present.
func (p SalaryParser) Parse(text *string) (minSalary, maxSalary *int, original *string) {
	if text == nil {
		return nil, nil, nil
	}
	original = text
	raw := strings.TrimSpace(*text)
	if raw == "" {
		return nil, nil, original
	}
	clean := currencyReplacer.Replace(raw)

	if m := salaryRangeRe.FindStringSubmatch(clean); m != nil {
		lo, okLo := p.amount(m[1], m[2] != "")
		hi, okHi := p.amount(m[3], m[4] != "")
		if okLo && okHi {
			if lo > hi {
				lo, hi = hi, lo
			}
			return &lo, &hi, original
		}
	}
	if m := salarySingleRe.FindStringSubmatch(clean); m != nil {
		if v, ok := p.amount(m[1], m[2] != ""); ok {
			lo, hi := v, v
			return &lo, &hi, original
		}
	}
	slog.Debug("salary text has no amount", slog.String("salary_text", raw))
	return nil, nil, original
}

// ParseString is Parse for callers holding a plain string; "" counts as absent.
func (p SalaryParser) ParseString(text string) (minSalary, maxSalary *int, original *string) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, nil
	}
	return p.Parse(&text)
}

func (p SalaryParser) amount(digits string, thousands bool) (int, bool) {
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	threshold := p.ThousandsThreshold
	if threshold <= 0 {
		threshold = DefaultThousandsThreshold
	}
	if thousands || v < float64(threshold) {
		v *= 1000
	}
	if v > math.MaxInt32 {
		return 0, false
	}
	return int(math.Round(v)), true
}
