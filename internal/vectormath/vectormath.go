// Package vectormath provides the distance primitives shared by the
// vector index implementations.
package vectormath

import "math"

// Dot returns the dot product of a and b. The caller guarantees equal
// lengths.
func Dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// Magnitude returns the L2 norm of v.
func Magnitude(v []float32) float64 {
	return math.Sqrt(Dot(v, v))
}

// CosineDistance returns 1 - cosine similarity, so that closer vectors
// yield smaller values. ok is false when the vectors differ in length
// or either has zero magnitude; such pairs cannot be ranked and are
// skipped by the callers.
func CosineDistance(a, b []float32) (dist float64, ok bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	ma := Magnitude(a)
	mb := Magnitude(b)
	if ma == 0 || mb == 0 {
		return 0, false
	}
	d := 1 - Dot(a, b)/(ma*mb)
	if math.IsNaN(d) {
		return 0, false
	}
	return d, true
}
