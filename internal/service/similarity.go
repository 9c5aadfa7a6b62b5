package service

import "math"

// cosineSimilarity is dot(a,b)/(||a||*||b||) with float64 accumulation. A
// zero-norm side (the empty-prefix "spoken so far" vector) yields 0, never
// NaN: no speech means no similarity, not an error.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
