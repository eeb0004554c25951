package textx

import "math"

// Jaccard returns |a∩b| / |a∪b|. Two empty sets, or one empty set, score 0:
// absence of evidence is not a match.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for k := range small {
		if _, ok := large[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Cosine returns the cosine similarity of the token-frequency vectors of a and b,
// or 0 when either vector is empty.
func Cosine(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	va := frequencies(a)
	vb := frequencies(b)
	var dot, na, nb float64
	for k, x := range va {
		na += x * x
		if y, ok := vb[k]; ok {
			dot += x * y
		}
	}
	for _, y := range vb {
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// guard float drift above 1 for identical vectors
	return math.Min(1, math.Max(0, sim))
}

func frequencies(tokens []string) map[string]float64 {
	m := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		m[t]++
	}
	return m
}
