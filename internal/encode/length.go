package encode

import (
	"math"
	"strings"
)

// TokenCount is the number of space-separated tokens in a cleaned string,
// counted as spaces + 1. An empty string counts as one token.
func TokenCount(s string) int {
	return strings.Count(s, " ") + 1
}

// MaxLen picks a sequence length for a column of cleaned strings:
// round(mean + 2*std) over per-row token counts, std being the population
// standard deviation. For roughly normal lengths this keeps ~97.7% of rows
// untruncated. An empty column yields 0.
func MaxLen(column []string) int {
	n := len(column)
	if n == 0 {
		return 0
	}

	counts := make([]float64, n)

	var sum float64
	for i, s := range column {
		counts[i] = float64(TokenCount(s))
		sum += counts[i]
	}

	mean := sum / float64(n)

	var sq float64
	for _, c := range counts {
		d := c - mean
		sq += d * d
	}

	std := math.Sqrt(sq / float64(n))

	return int(math.Round(mean + 2*std))
}
