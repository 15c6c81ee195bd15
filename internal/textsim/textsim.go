// Package textsim provides the string comparison primitives used by
// reference matching: normalized edit distance, fuzzy subsequence scoring,
// token extraction and token-set comparison.
//
// All functions are pure and never fail: any input, including empty strings,
// yields a defined numeric result.
package textsim

import (
	"regexp"
	"sort"
	"strings"
)

// EditDistance returns the Levenshtein distance between a and b with unit
// insert, delete and substitute costs. Comparison is case-insensitive and
// both inputs are whitespace-trimmed before comparison. Two empty strings
// have distance 0.
func EditDistance(a, b string) int {
	ra := []rune(strings.ToLower(strings.TrimSpace(a)))
	rb := []rune(strings.ToLower(strings.TrimSpace(b)))

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two-row dynamic programming over the (|a|+1) x (|b|+1) table.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, minInt(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Similarity returns a normalized similarity in [0, 1] between a and b:
// 1 - distance / max(|a|, |b|). Two empty strings are defined as identical
// and score 1.0.
func Similarity(a, b string) float64 {
	na := strings.ToLower(strings.TrimSpace(a))
	nb := strings.ToLower(strings.TrimSpace(b))

	maxLen := maxInt(len([]rune(na)), len([]rune(nb)))
	if maxLen == 0 {
		return 1.0
	}

	distance := EditDistance(na, nb)
	return 1.0 - float64(distance)/float64(maxLen)
}

// SubsequenceScore checks whether every character of pattern occurs in
// target in order (case-insensitive, single forward scan) and scores the
// match by how early in the target the pattern completes.
//
// Returns 0.0 when any pattern character is missing. When all characters
// match, the score is 1 - endIndex/|target|/2 where endIndex is the scan
// position just past the last matched character, clamped to [0.5, 1.0].
// An empty pattern scores 1.0; an empty target with a nonempty pattern
// scores 0.0.
func SubsequenceScore(pattern, target string) float64 {
	rp := []rune(strings.ToLower(pattern))
	rt := []rune(strings.ToLower(target))

	if len(rp) == 0 {
		return 1.0
	}
	if len(rt) == 0 {
		return 0.0
	}

	pi := 0
	endIndex := 0
	for ti := 0; ti < len(rt) && pi < len(rp); ti++ {
		if rt[ti] == rp[pi] {
			pi++
			endIndex = ti + 1
		}
	}

	if pi < len(rp) {
		return 0.0
	}

	// All characters matched; reward patterns that complete early.
	score := 1.0 - float64(endIndex)/float64(len(rt))/2.0
	if score < 0.5 {
		score = 0.5
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

var (
	tokenSplitPattern = regexp.MustCompile(`[\s\-_(),]+`)
	digitRunPattern   = regexp.MustCompile(`\d{3,}`)
	codePattern       = regexp.MustCompile(`(?i)\b[a-z]{1,4}-?\d{1,10}\b`)
)

// ExtractTokens normalizes text into a deduplicated token set for reference
// comparison. Words are lowercased and split on whitespace, hyphens,
// underscores, parentheses and commas; only tokens longer than two
// characters are kept. Standalone digit runs of three or more digits and
// alphanumeric codes (1-4 letters, optional hyphen, 1-10 digits) are
// extracted in addition, the codes emitted upper-cased.
//
// The returned slice is sorted so downstream consumers never depend on
// incidental ordering.
func ExtractTokens(text string) []string {
	set := make(map[string]struct{})

	for _, token := range tokenSplitPattern.Split(strings.ToLower(text), -1) {
		if len(token) > 2 {
			set[token] = struct{}{}
		}
	}

	for _, run := range digitRunPattern.FindAllString(text, -1) {
		set[run] = struct{}{}
	}

	for _, code := range codePattern.FindAllString(text, -1) {
		set[strings.ToUpper(code)] = struct{}{}
	}

	tokens := make([]string, 0, len(set))
	for token := range set {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	return tokens
}

// CompareTokenSets scores how well token set a is covered by token set b.
// For each token in a the best match in b is found (exact equality
// short-circuits to 1.0, otherwise the maximum of edit similarity and
// subsequence score) and the best-match scores are averaged over |a|.
//
// Two empty sets score 1.0; exactly one empty set scores 0.0. The
// comparison is asymmetric: only the a-to-b direction is evaluated.
func CompareTokenSets(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	total := 0.0
	for _, tokenA := range a {
		best := 0.0
		for _, tokenB := range b {
			if strings.EqualFold(tokenA, tokenB) {
				best = 1.0
				break
			}
			if s := Similarity(tokenA, tokenB); s > best {
				best = s
			}
			if s := SubsequenceScore(tokenA, tokenB); s > best {
				best = s
			}
		}
		total += best
	}

	return total / float64(len(a))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
