package metrics

import (
	"math"

	"github.com/antzucaro/matchr"
)

// Scoring for the alignment family
const (
	alignMatch     = 1.0
	alignMismatch  = 0.0
	alignGap       = 1.0
	gotohGapOpen   = 1.0
	gotohGapExtend = 0.5
)

func substitution(a, b rune, mismatch float64) float64 {
	if a == b {
		return alignMatch
	}
	return mismatch
}

// normalizeGlobal maps a global alignment score from [-maxLen, maxLen] onto [0, 1]
func normalizeGlobal(score float64, la, lb int) float64 {
	maxLen := float64(max(la, lb))
	if maxLen == 0 {
		return 1.0
	}
	return (score + maxLen) / (2 * maxLen)
}

// needlemanWunschSimilarity runs a global alignment with linear gap penalty
func needlemanWunschSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	rows, cols := len(ra)+1, len(rb)+1

	matrix := make([][]float64, rows)
	for i := range matrix {
		matrix[i] = make([]float64, cols)
		matrix[i][0] = -float64(i) * alignGap
	}
	for j := 0; j < cols; j++ {
		matrix[0][j] = -float64(j) * alignGap
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			matrix[i][j] = max(
				matrix[i-1][j-1]+substitution(ra[i-1], rb[j-1], alignMismatch),
				matrix[i-1][j]-alignGap,
				matrix[i][j-1]-alignGap,
			)
		}
	}

	return normalizeGlobal(matrix[rows-1][cols-1], len(ra), len(rb))
}

// gotohSimilarity is a global alignment with affine gaps: opening a gap costs
// gotohGapOpen and each further position gotohGapExtend.
func gotohSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	rows, cols := len(ra)+1, len(rb)+1
	negInf := math.Inf(-1)

	// m ends in a substitution, x in a gap in b, y in a gap in a
	m := make([][]float64, rows)
	x := make([][]float64, rows)
	y := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		m[i] = make([]float64, cols)
		x[i] = make([]float64, cols)
		y[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			m[i][j], x[i][j], y[i][j] = negInf, negInf, negInf
		}
	}
	m[0][0] = 0
	for i := 1; i < rows; i++ {
		x[i][0] = -gotohGapOpen - float64(i-1)*gotohGapExtend
	}
	for j := 1; j < cols; j++ {
		y[0][j] = -gotohGapOpen - float64(j-1)*gotohGapExtend
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			best := max(m[i-1][j-1], x[i-1][j-1], y[i-1][j-1])
			m[i][j] = best + substitution(ra[i-1], rb[j-1], alignMismatch)
			x[i][j] = max(m[i-1][j]-gotohGapOpen, x[i-1][j]-gotohGapExtend, y[i-1][j]-gotohGapOpen)
			y[i][j] = max(m[i][j-1]-gotohGapOpen, y[i][j-1]-gotohGapExtend, x[i][j-1]-gotohGapOpen)
		}
	}

	score := max(m[rows-1][cols-1], x[rows-1][cols-1], y[rows-1][cols-1])
	return normalizeGlobal(score, len(ra), len(rb))
}

// smithWatermanSimilarity is the best local alignment score over the shorter
// length. A match scores 1, so a fully contained label scores 1.
func smithWatermanSimilarity(a, b string) float64 {
	shorter := min(len([]rune(a)), len([]rune(b)))
	if shorter == 0 {
		return 0.0
	}
	return matchr.SmithWaterman(a, b) / float64(shorter)
}
