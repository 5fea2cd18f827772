package metrics

import (
	"math"
	"strings"
)

// runeBag counts the characters of a label
type runeBag map[rune]int

func newRuneBag(s string) (runeBag, int) {
	bag := make(runeBag)
	n := 0
	for _, r := range s {
		bag[r]++
		n++
	}
	return bag, n
}

// bagOverlap returns |A ∩ B| with multiplicities
func bagOverlap(a, b runeBag) int {
	shared := 0
	for r, ca := range a {
		shared += min(ca, b[r])
	}
	return shared
}

func bagCounts(a, b string) (shared, sizeA, sizeB int) {
	bagA, sizeA := newRuneBag(a)
	bagB, sizeB := newRuneBag(b)
	return bagOverlap(bagA, bagB), sizeA, sizeB
}

func jaccardSimilarity(a, b string) float64 {
	shared, sizeA, sizeB := bagCounts(a, b)
	union := sizeA + sizeB - shared
	if union == 0 {
		return 1.0
	}
	return float64(shared) / float64(union)
}

// tanimotoSimilarity reports the Tanimoto coefficient itself. The usual
// Tanimoto distance is its base 2 logarithm, which is never positive.
func tanimotoSimilarity(a, b string) float64 {
	return jaccardSimilarity(a, b)
}

func sorensenSimilarity(a, b string) float64 {
	shared, sizeA, sizeB := bagCounts(a, b)
	if sizeA+sizeB == 0 {
		return 1.0
	}
	return 2.0 * float64(shared) / float64(sizeA+sizeB)
}

// tverskySimilarity uses alpha = beta = 1
func tverskySimilarity(a, b string) float64 {
	const alpha, beta = 1.0, 1.0
	shared, sizeA, sizeB := bagCounts(a, b)
	denom := float64(shared) + alpha*float64(sizeA-shared) + beta*float64(sizeB-shared)
	if denom == 0 {
		return 1.0
	}
	return float64(shared) / denom
}

func overlapSimilarity(a, b string) float64 {
	shared, sizeA, sizeB := bagCounts(a, b)
	smaller := min(sizeA, sizeB)
	if smaller == 0 {
		return 0.0
	}
	return float64(shared) / float64(smaller)
}

func cosineSimilarity(a, b string) float64 {
	shared, sizeA, sizeB := bagCounts(a, b)
	if sizeA == 0 || sizeB == 0 {
		return 0.0
	}
	return float64(shared) / math.Sqrt(float64(sizeA)*float64(sizeB))
}

// mongeElkanSimilarity averages, for each word of one label, its best
// Jaro-Winkler match among the words of the other, in both directions.
func mongeElkanSimilarity(a, b string) float64 {
	wordsA, wordsB := strings.Fields(a), strings.Fields(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}
	return (mongeElkan(wordsA, wordsB) + mongeElkan(wordsB, wordsA)) / 2.0
}

func mongeElkan(from, to []string) float64 {
	sum := 0.0
	for _, w := range from {
		best := 0.0
		for _, v := range to {
			best = max(best, jaroWinklerSimilarity(w, v))
		}
		sum += best
	}
	return sum / float64(len(from))
}
