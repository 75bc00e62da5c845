package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// LocalEmbedder is an offline embedder that hashes word and character-trigram
// features into a fixed number of buckets. It needs no network access and is
// deterministic, which makes it the embedder for tests and air-gapped installs.
type LocalEmbedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewLocalEmbedder creates a hashing embedder with the given dimension
func NewLocalEmbedder(dimension int) *LocalEmbedder {
	if dimension <= 0 {
		dimension = 768
	}
	return &LocalEmbedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}
}

// Embed hashes every text into a vector. It never fails except on context cancellation.
func (e *LocalEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *LocalEmbedder) embed(text string) []float32 {
	counts := make(map[int]float64)
	for _, tok := range e.tokenize(text) {
		e.add(counts, "w:"+tok, 1.0)
		padded := "^" + tok + "$"
		runes := []rune(padded)
		for i := 0; i+3 <= len(runes); i++ {
			e.add(counts, "c:"+string(runes[i:i+3]), 0.5)
		}
	}

	vec := make([]float32, e.dimension)
	for idx, v := range counts {
		if v == 0 {
			continue
		}
		sign := 1.0
		if v < 0 {
			sign = -1.0
		}
		vec[idx] = float32(sign * (1 + math.Log(math.Abs(v)+1)))
	}
	return vec
}

func (e *LocalEmbedder) add(counts map[int]float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dimension))
	if (sum>>63)&1 == 1 {
		weight = -weight
	}
	counts[idx] += weight
}

func (e *LocalEmbedder) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ModelName returns the model name
func (e *LocalEmbedder) ModelName() string {
	return "local-hash"
}

// Dimension returns the embedding dimension
func (e *LocalEmbedder) Dimension() int {
	return e.dimension
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"what", "how", "who", "where", "when", "why", "do", "does", "i", "my", "me", "we", "our", "you", "your",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
