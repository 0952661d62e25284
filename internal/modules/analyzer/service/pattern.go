package service

import "math"

// DetectPattern — грубое распознавание по трём последним закрытиям.
// Идёт в строку reason алерта, на решение не влияет.
func DetectPattern(closes []float64) string {
	if len(closes) < 3 {
		return "NONE"
	}
	a, b, c := closes[len(closes)-3], closes[len(closes)-2], closes[len(closes)-1]

	if math.Abs(c-b) <= 0.0008*c {
		return "Doji"
	}
	if a < b && b < c {
		return "Bullish sequence"
	}
	if a > b && b > c {
		return "Bearish sequence"
	}
	return "NONE"
}
