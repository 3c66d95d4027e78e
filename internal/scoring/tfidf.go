package scoring

import (
	"errors"
	"maps"
	"math"
	"regexp"
	"slices"
	"strings"
)

// termPattern mirrors the default word tokenizer of common TF-IDF vectorizers:
// runs of two or more word characters.
var termPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

var errEmptyVocabulary = errors.New("empty vocabulary: texts contain no terms")

// TextSimilarity returns the TF-IDF cosine similarity of a and b in percent. The
// corpus is the two texts; idf is smoothed as ln((1+n)/(1+df))+1.
func TextSimilarity(a, b string) (float64, error) {
	left := termCounts(a)
	right := termCounts(b)
	if len(left) == 0 && len(right) == 0 {
		return 0, errEmptyVocabulary
	}

	const docs = 2.0
	idf := func(term string) float64 {
		df := 0.0
		if left[term] > 0 {
			df++
		}
		if right[term] > 0 {
			df++
		}
		return math.Log((1+docs)/(1+df)) + 1
	}

	leftVec := weigh(left, idf)
	rightVec := weigh(right, idf)

	// Sums run over sorted terms so the result does not depend on map order.
	var dot float64
	for _, term := range slices.Sorted(maps.Keys(leftVec)) {
		dot += leftVec[term] * rightVec[term]
	}

	norm := l2(leftVec) * l2(rightVec)
	if norm == 0 {
		return 0, nil
	}

	return dot / norm * 100, nil
}

func termCounts(text string) map[string]float64 {
	counts := make(map[string]float64)
	for _, term := range termPattern.FindAllString(strings.ToLower(text), -1) {
		counts[term]++
	}
	return counts
}

func weigh(counts map[string]float64, idf func(string) float64) map[string]float64 {
	out := make(map[string]float64, len(counts))
	for term, count := range counts {
		out[term] = count * idf(term)
	}
	return out
}

func l2(vec map[string]float64) float64 {
	var sum float64
	for _, term := range slices.Sorted(maps.Keys(vec)) {
		sum += vec[term] * vec[term]
	}
	return math.Sqrt(sum)
}
