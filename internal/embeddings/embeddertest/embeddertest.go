// Package embeddertest provides a deterministic embedder for tests.
package embeddertest

import (
	"context"
	"math"
)

// Deterministic produces reproducible hash-based embeddings. Texts sharing
// characters at the same positions produce similar vectors, which is enough
// to make ranking assertions in tests.
type Deterministic struct {
	Dims int
}

func New(dims int) *Deterministic {
	return &Deterministic{Dims: dims}
}

func (d *Deterministic) Embed(_ context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		results[i] = d.Vector(text)
	}
	return results, nil
}

func (d *Deterministic) Dimensions() int { return d.Dims }
func (d *Deterministic) Name() string    { return "deterministic-test" }

// Vector builds a normalized vector from the text's characters.
func (d *Deterministic) Vector(text string) []float32 {
	vec := make([]float32, d.Dims)
	for i, ch := range text {
		idx := (int(ch) + i) % d.Dims
		vec[idx] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}
