package textsim

import (
	"math"
	"testing"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{"both empty", "", "", 0},
		{"empty vs nonempty", "", "abc", 3},
		{"nonempty vs empty", "abc", "", 3},
		{"identical", "invoice", "invoice", 0},
		{"case insensitive", "ACME Corp", "acme corp", 0},
		{"whitespace trimmed", "  payment  ", "payment", 0},
		{"single substitution", "cat", "car", 1},
		{"single insertion", "cat", "cart", 1},
		{"single deletion", "cart", "cat", 1},
		{"classic kitten", "kitten", "sitting", 3},
		{"completely different", "abc", "xyz", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EditDistance(tt.a, tt.b); got != tt.expected {
				t.Errorf("EditDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestEditDistance_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"", "abc"},
		{"acme corp", "acme corporation"},
		{"REF-001", "ref001"},
	}

	for _, pair := range pairs {
		forward := EditDistance(pair[0], pair[1])
		backward := EditDistance(pair[1], pair[0])
		if forward != backward {
			t.Errorf("EditDistance(%q, %q) = %d but reversed = %d", pair[0], pair[1], forward, backward)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{"both empty", "", "", 1.0},
		{"identical", "payment", "payment", 1.0},
		{"case insensitive identical", "Payment", "PAYMENT", 1.0},
		{"one empty", "", "abc", 0.0},
		{"half similar", "ab", "ax", 0.5},
		{"completely different", "abc", "xyz", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestSimilarity_SelfIsOne(t *testing.T) {
	inputs := []string{"", "a", "Test Company", "REF-001 payment", "  spaced  "}

	for _, s := range inputs {
		if got := Similarity(s, s); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %f, want 1.0", s, s, got)
		}
		if got := EditDistance(s, s); got != 0 {
			t.Errorf("EditDistance(%q, %q) = %d, want 0", s, s, got)
		}
	}
}

func TestSubsequenceScore(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		target   string
		expected float64
	}{
		{"empty pattern", "", "anything", 1.0},
		{"both empty", "", "", 1.0},
		{"empty target", "abc", "", 0.0},
		{"missing character", "xyz", "abc", 0.0},
		{"out of order", "ba", "ab", 0.0},
		// "abc" completes at index 3 of a 6-char target: 1 - 3/6/2 = 0.75.
		{"early completion", "abc", "abcxxx", 0.75},
		// Completes at the very end: 1 - 6/6/2 = 0.5.
		{"late completion", "abc", "xxxabc", 0.5},
		{"exact match", "abc", "abc", 0.5},
		{"case insensitive", "ABC", "xabcx", 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SubsequenceScore(tt.pattern, tt.target)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("SubsequenceScore(%q, %q) = %f, want %f", tt.pattern, tt.target, got, tt.expected)
			}
		})
	}
}

func TestSubsequenceScore_Range(t *testing.T) {
	pairs := [][2]string{
		{"ref", "reference"},
		{"acme", "acme corporation ltd"},
		{"pay", "prepayment"},
	}

	for _, pair := range pairs {
		got := SubsequenceScore(pair[0], pair[1])
		if got < 0.5 || got > 1.0 {
			t.Errorf("SubsequenceScore(%q, %q) = %f, want value in [0.5, 1.0]", pair[0], pair[1], got)
		}
	}
}

func TestExtractTokens(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"empty", "", nil},
		{"short tokens dropped", "a of to", nil},
		{"basic words", "Acme Corporation payment", []string{"acme", "corporation", "payment"}},
		{"split on separators", "acme-corp_ltd(uk),payment", []string{"acme", "corp", "ltd", "payment"}},
		{"reference code", "REF-001", []string{"001", "REF-001", "ref"}},
		{"digit run", "invoice 20240115 paid", []string{"20240115", "invoice", "paid"}},
		{"deduplication", "payment payment PAYMENT", []string{"payment"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTokens(tt.text)
			if len(got) != len(tt.expected) {
				t.Fatalf("ExtractTokens(%q) = %v, want %v", tt.text, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("ExtractTokens(%q) = %v, want %v", tt.text, got, tt.expected)
					break
				}
			}
		})
	}
}

func TestCompareTokenSets(t *testing.T) {
	tests := []struct {
		name     string
		a        []string
		b        []string
		expected float64
	}{
		{"both empty", nil, nil, 1.0},
		{"a empty", nil, []string{"payment"}, 0.0},
		{"b empty", []string{"payment"}, nil, 0.0},
		{"exact overlap", []string{"acme", "payment"}, []string{"payment", "acme"}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareTokenSets(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("CompareTokenSets(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestCompareTokenSets_Asymmetric(t *testing.T) {
	a := []string{"acme"}
	b := []string{"acme", "unrelated", "tokens"}

	// Every token of a is covered by b, but not vice versa.
	forward := CompareTokenSets(a, b)
	backward := CompareTokenSets(b, a)

	if forward != 1.0 {
		t.Errorf("CompareTokenSets(a, b) = %f, want 1.0", forward)
	}
	if backward >= forward {
		t.Errorf("expected backward score %f to be lower than forward score %f", backward, forward)
	}
}

func TestCompareTokenSets_FuzzyFallback(t *testing.T) {
	// No exact match, but high edit similarity.
	got := CompareTokenSets([]string{"payment"}, []string{"payments"})
	if got <= 0.5 {
		t.Errorf("CompareTokenSets fuzzy score = %f, want > 0.5", got)
	}
	if got >= 1.0 {
		t.Errorf("CompareTokenSets fuzzy score = %f, want < 1.0", got)
	}
}
