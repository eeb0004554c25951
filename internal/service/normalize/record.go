package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is read-only access to a raw posting. Keys may be dotted paths into
// nested objects and arrays ("detected_extensions.salary", "apply_options.0.link").
type Record map[string]any

// Lookup returns the value at path, or nil.
func (r Record) Lookup(path string) any {
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			cur = node[part]
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		default:
			return nil
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

// String returns the first non-blank scalar found at any of paths, rendered as text.
func (r Record) String(paths ...string) string {
	for _, p := range paths {
		if s, ok := scalarString(r.Lookup(p)); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// StringPtr is String with "" mapped to nil.
func (r Record) StringPtr(paths ...string) *string {
	if s := r.String(paths...); s != "" {
		return &s
	}
	return nil
}

// Int returns the first numeric value found at any of paths. Numbers may be
// JSON numbers or numeric strings; fractions are rounded. An explicit 0 is kept
// and values outside the int32 range are rejected.
func (r Record) Int(paths ...string) *int {
	for _, p := range paths {
		if f, ok := number(r.Lookup(p)); ok {
			f = math.Round(f)
			if f > math.MaxInt32 || f < math.MinInt32 {
				return nil
			}
			v := int(f)
			return &v
		}
	}
	return nil
}

// Strings returns the text items at path. A string value is split on commas.
func (r Record) Strings(path string) []string {
	var out []string
	switch v := r.Lookup(path).(type) {
	case []any:
		for _, it := range v {
			if s, ok := scalarString(it); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case []string:
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	}
	return out
}

// maxEpochMillis is 9999-12-31T23:59:59Z.
const maxEpochMillis = 253402300799000

// EpochMillis reads a millisecond Unix timestamp at path.
func (r Record) EpochMillis(path string) *time.Time {
	var ms int64
	switch v := r.Lookup(path).(type) {
	case float64:
		if v <= 0 || v > maxEpochMillis {
			return nil
		}
		ms = int64(v)
	case int64:
		ms = v
	case int:
		ms = int64(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil
		}
		ms = n
	default:
		return nil
	}
	if ms <= 0 || ms > maxEpochMillis {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}

func number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}
