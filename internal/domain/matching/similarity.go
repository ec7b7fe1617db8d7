package matching

import (
	"strings"
	"unicode"
)

// SimilarityThreshold is the Jaccard score above which two jobs are
// considered near-duplicates for match reuse.
const SimilarityThreshold = 0.70

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"has": true, "have": true, "this": true, "that": true, "with": true,
	"from": true, "they": true, "been": true, "were": true,
	"will": true, "would": true, "there": true, "their": true, "what": true,
	"about": true, "which": true, "when": true, "who": true, "how": true,
	"some": true, "very": true, "just": true, "into": true, "than": true,
	"then": true, "them": true, "these": true, "those": true, "its": true,
	"his": true, "she": true, "him": true, "get": true, "got": true,
	"over": true, "under": true, "where": true, "while": true, "your": true,
}

// Tokenize lowercases the text, strips non-alphanumeric runes, splits on
// whitespace, and drops short tokens and common stopwords. The result is
// a set.
func Tokenize(text string) map[string]bool {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= 2 {
			continue
		}
		if stopwords[tok] {
			continue
		}
		tokens[tok] = true
	}
	return tokens
}

// Jaccard returns |A ∩ B| / |A ∪ B| over two token sets. Two empty sets
// score zero.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// TextSimilarity scores two jobs' combined title+description texts.
func TextSimilarity(titleA, descA, titleB, descB string) float64 {
	return Jaccard(
		Tokenize(titleA+" "+descA),
		Tokenize(titleB+" "+descB),
	)
}
