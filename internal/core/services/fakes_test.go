package services

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"sync"
)

// fakeEmbedder is a deterministic embedding service for tests. Known
// texts return their configured vector; anything else gets a stable
// hash-derived vector. A configured failure text rejects the call.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	failOn  string
	dim     int
	calls   int
}

var errEmbedderRejected = errors.New("input rejected")

func newFakeEmbedder(dim int) *fakeEmbedder {
	return &fakeEmbedder{vectors: make(map[string][]float32), dim: dim}
}

func (f *fakeEmbedder) set(text string, vec []float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vectors[text] = vec
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.failOn != "" && text == f.failOn {
		return nil, errEmbedderRejected
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum32()

	vec := make([]float32, f.dim)
	var norm float64
	for i := range vec {
		seed = seed*1664525 + 1013904223
		vec[i] = float32(seed%1000)/1000 + 0.001
		norm += float64(vec[i]) * float64(vec[i])
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec, nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dim }

func (f *fakeEmbedder) ModelName() string { return "fake" }

func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }

func (f *fakeEmbedder) Close() error { return nil }

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
