package metrics

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	lev "github.com/texttheater/golang-levenshtein/levenshtein"
)

// unit costs for insertion, deletion and substitution
var levenshteinOptions = lev.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: lev.IdenticalRunes,
}

// levenshteinSimilarity is 1 - distance/maxLen
func levenshteinSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1.0
	}
	dist := lev.DistanceForStrings(ra, rb, levenshteinOptions)
	return 1.0 - float64(dist)/float64(maxLen)
}

func damerauLevenshteinSimilarity(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	dist := matchr.DamerauLevenshtein(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

func jaroSimilarity(a, b string) float64 {
	return matchr.Jaro(a, b)
}

func jaroWinklerSimilarity(a, b string) float64 {
	return matchr.JaroWinkler(a, b, false)
}

// strcmp95Similar pairs characters commonly confused in typed or scanned
// text. Each pair found among the unmatched characters counts as 0.3 of a match.
var strcmp95Similar = map[[2]rune]bool{}

func init() {
	pairs := []string{
		"AE", "AI", "AO", "AU", "BV", "EI", "EO", "EU", "IO", "IU", "OU", "IY",
		"EY", "CG", "EF", "WU", "WV", "XK", "SZ", "XS", "QC", "UV", "MN", "LI",
		"QO", "PR", "IJ", "2Z", "5S", "8B", "1I", "1L", "0O", "0Q", "CK", "GJ",
		"E ", "Y ", "S ",
	}
	for _, p := range pairs {
		r := []rune(p)
		strcmp95Similar[[2]rune{r[0], r[1]}] = true
		strcmp95Similar[[2]rune{r[1], r[0]}] = true
	}
}

// strcmp95Similarity is Jaro over upper-cased input, with partial credit for
// similar unmatched characters, the Winkler prefix bonus and the long string
// adjustment.
func strcmp95Similarity(a, b string) float64 {
	ra := []rune(strings.ToUpper(strings.TrimSpace(a)))
	rb := []rune(strings.ToUpper(strings.TrimSpace(b)))
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	longer, shorter := max(len(ra), len(rb)), min(len(ra), len(rb))
	window := max(longer/2-1, 0)

	flagA := make([]int, len(ra))
	flagB := make([]int, len(rb))
	common := 0
	for i, ca := range ra {
		lo, hi := max(i-window, 0), min(i+window, len(rb)-1)
		for j := lo; j <= hi; j++ {
			if flagB[j] == 0 && rb[j] == ca {
				flagA[i], flagB[j] = 1, 1
				common++
				break
			}
		}
	}
	if common == 0 {
		return 0.0
	}

	transpositions, k := 0, 0
	for i, ca := range ra {
		if flagA[i] == 0 {
			continue
		}
		j := k
		for ; j < len(rb); j++ {
			if flagB[j] != 0 {
				k = j + 1
				break
			}
		}
		if j < len(rb) && ca != rb[j] {
			transpositions++
		}
	}
	transpositions /= 2

	similar := 0
	if shorter > common {
		for i, ca := range ra {
			if flagA[i] != 0 || ca >= 91 {
				continue
			}
			for j, cb := range rb {
				if flagB[j] != 0 || cb >= 91 || !strcmp95Similar[[2]rune{ca, cb}] {
					continue
				}
				similar += 3
				flagB[j] = 2
				break
			}
		}
	}

	matched := float64(similar)/10.0 + float64(common)
	weight := (matched/float64(len(ra)) + matched/float64(len(rb)) +
		float64(common-transpositions)/float64(common)) / 3.0
	if weight <= 0.7 {
		return weight
	}

	prefix := 0
	for prefix < min(shorter, 4) && ra[prefix] == rb[prefix] && !unicode.IsDigit(ra[prefix]) {
		prefix++
	}
	weight += float64(prefix) * 0.1 * (1.0 - weight)

	if shorter <= 4 || common <= prefix+1 || 2*common < shorter+prefix || unicode.IsDigit(ra[0]) {
		return weight
	}
	rest := float64(common-prefix-1) / float64(len(ra)+len(rb)-2*prefix+2)
	return weight + (1.0-weight)*rest
}

// lcsSeqSimilarity is the longest common subsequence length over the longer length
func lcsSeqSimilarity(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	return float64(matchr.LongestCommonSubsequence(a, b)) / float64(maxLen)
}

// lcsStrSimilarity is the longest common substring length over the longer length
func lcsStrSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1.0
	}
	_, _, size := longestCommonSubstring(ra, rb)
	return float64(size) / float64(maxLen)
}

// ratcliffObershelpSimilarity is 2*M/T where M counts the characters of the
// longest common substring plus, recursively, the matches left and right of it.
func ratcliffObershelpSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(gestaltMatches(ra, rb)) / float64(total)
}

func gestaltMatches(a, b []rune) int {
	i, j, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size + gestaltMatches(a[:i], b[:j]) + gestaltMatches(a[i+size:], b[j+size:])
}

// longestCommonSubstring returns the start in a, the start in b and the length
// of the leftmost longest common run.
func longestCommonSubstring(a, b []rune) (int, int, int) {
	bestI, bestJ, bestSize := 0, 0, 0
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > bestSize {
					bestSize = curr[j]
					bestI = i - bestSize
					bestJ = j - bestSize
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return bestI, bestJ, bestSize
}
