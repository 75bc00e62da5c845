package retrieval

// Weights are the fusion coefficients per signal
type Weights struct {
	TFIDF    float64
	Fuzzy    float64
	Semantic float64
}

// Fuse scores every document as the weighted sum of its three signals and
// returns the position of the best one. fuzzy is on a 0-1 scale. Ties resolve
// to the earliest position. All slices must have the same length; an empty
// input returns -1.
func Fuse(w Weights, tfidf, fuzzy, semantic []float64) (int, float64) {
	best, bestScore := -1, 0.0
	for i := range semantic {
		score := w.TFIDF*tfidf[i] + w.Fuzzy*fuzzy[i] + w.Semantic*semantic[i]
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}

// argmax returns the first position holding the largest value, or -1 for an empty slice
func argmax(scores []float64) int {
	best := -1
	for i, s := range scores {
		if best < 0 || s > scores[best] {
			best = i
		}
	}
	return best
}
