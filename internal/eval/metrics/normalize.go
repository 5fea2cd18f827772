package metrics

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer rewrites a label before it is compared
type Normalizer func(string) string

// Normalization modes accepted by GetNormalizer
const (
	NormalizeModeNone = "none"
	NormalizeModeNFKC = "nfkc"
	NormalizeModeFold = "fold"
)

// NormalizeNone returns the label unchanged.
func NormalizeNone(s string) string {
	return s
}

// NormalizeNFKC applies compatibility composition, so ligatures and
// full-width forms compare equal to their plain spelling.
func NormalizeNFKC(s string) string {
	return norm.NFKC.String(s)
}

// NormalizeFold applies NFKC, lowercases and strips combining accents.
func NormalizeFold(s string) string {
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripAccents, strings.ToLower(norm.NFKC.String(s)))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// GetNormalizer returns the normalizer for mode. An empty mode means none.
func GetNormalizer(mode string) (Normalizer, error) {
	switch strings.ToLower(mode) {
	case "", NormalizeModeNone:
		return NormalizeNone, nil
	case NormalizeModeNFKC:
		return NormalizeNFKC, nil
	case NormalizeModeFold:
		return NormalizeFold, nil
	default:
		return nil, fmt.Errorf("unsupported normalization: %s (supported: none, nfkc, fold)", mode)
	}
}
