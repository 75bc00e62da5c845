package embeddings

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
)

// Normalize returns a unit-length copy of v. A zero vector is returned as zeros.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// Dot returns the dot product of a and b over their shared length.
// For unit vectors this is the cosine similarity.
func Dot(a, b []float32) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// CacheKey identifies an embedding by model, dimension and content hash
func CacheKey(model string, dimension int, text string) string {
	sum := sha256.Sum256([]byte(text))
	return model + ":" + strconv.Itoa(dimension) + ":" + hex.EncodeToString(sum[:])
}
