package labels

import "strings"

// Separator joins the values of a multi-valued label field
const Separator = "|"

// Set is an ordered list of distinct, non-empty labels.
// The zero value is the empty set.
type Set []string

// ParseSet splits a pipe-delimited field into a Set.
// Empty segments are dropped, so "" and "||" both give the empty set.
func ParseSet(s string) Set {
	if s == "" {
		return nil
	}
	return NewSet(strings.Split(s, Separator)...)
}

// NewSet builds a Set from values, keeping the first occurrence of each
func NewSet(values ...string) Set {
	var out Set
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Union returns s followed by the values of other not already in s
func (s Set) Union(other Set) Set {
	merged := make([]string, 0, len(s)+len(other))
	merged = append(merged, s...)
	merged = append(merged, other...)
	return NewSet(merged...)
}

// Empty reports whether the set has no values
func (s Set) Empty() bool {
	return len(s) == 0
}

// String renders the set as a pipe-delimited field
func (s Set) String() string {
	return strings.Join(s, Separator)
}
