package corpus

import (
	"math"
	"sort"
	"strings"
)

// SparseVector is an L2-normalized term-weight vector with ascending term indices
type SparseVector struct {
	Indices []int
	Values  []float64
}

// IsZero reports whether the vector has no non-zero terms
func (v SparseVector) IsZero() bool {
	return len(v.Indices) == 0
}

// Dot returns the dot product of two sparse vectors; for normalized vectors this is the cosine
func (v SparseVector) Dot(o SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Vectorizer is a TF-IDF model fit over a fixed set of texts. Raw term counts
// are weighted by smoothed IDF, ln((1+n)/(1+df)) + 1, and L2-normalized.
type Vectorizer struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
	stopwords  map[string]struct{}
}

// FitVectorizer builds the vocabulary from texts. Stopwords are excluded, as
// are terms appearing in more than maxDF or fewer than minDF of the documents
// (both fractions of len(texts)). The vocabulary may end up empty.
func FitVectorizer(texts []string, stopwords []string, minDF, maxDF float64) *Vectorizer {
	v := &Vectorizer{
		vocabulary: make(map[string]int),
		stopwords:  make(map[string]struct{}, len(stopwords)),
	}
	for _, w := range stopwords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			v.stopwords[w] = struct{}{}
		}
	}

	df := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, tok := range v.tokens(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	n := float64(len(texts))
	maxDocCount := maxDF * n
	minDocCount := minDF * n

	for term, count := range df {
		c := float64(count)
		if c > maxDocCount || c < minDocCount {
			continue
		}
		v.terms = append(v.terms, term)
	}
	sort.Strings(v.terms)

	v.idf = make([]float64, len(v.terms))
	for i, term := range v.terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	return v
}

// Transform returns the normalized TF-IDF vector of text over the fitted vocabulary
func (v *Vectorizer) Transform(text string) SparseVector {
	counts := make(map[int]float64)
	for _, tok := range v.tokens(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var norm float64
	for i, idx := range indices {
		w := counts[idx] * v.idf[idx]
		values[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for i := range values {
		values[i] /= norm
	}

	return SparseVector{Indices: indices, Values: values}
}

// VocabularySize returns the number of terms kept after pruning
func (v *Vectorizer) VocabularySize() int {
	return len(v.terms)
}

// Terms returns the kept terms in index order
func (v *Vectorizer) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

func (v *Vectorizer) tokens(text string) []string {
	raw := Tokenize(text)
	out := raw[:0]
	for _, tok := range raw {
		if _, isStop := v.stopwords[tok]; isStop {
			continue
		}
		out = append(out, tok)
	}
	return out
}
