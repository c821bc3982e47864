package embedding

import (
	"math"
	"sort"
)

// Term is a single dimension-weight pair in a sparse vector.
type Term struct {
	Index  int
	Weight float64
}

// Vector is a sparse vector, always sorted by Index for merge-join operations.
// A nil Vector is the zero vector.
type Vector []Term

// NewVector creates a sorted Vector from a dimension-weight map.
// Zero weights are dropped.
func NewVector(weights map[int]float64) Vector {
	if len(weights) == 0 {
		return nil
	}
	v := make(Vector, 0, len(weights))
	for idx, w := range weights {
		if w != 0 {
			v = append(v, Term{Index: idx, Weight: w})
		}
	}
	if len(v) == 0 {
		return nil
	}
	sort.Slice(v, func(i, j int) bool { return v[i].Index < v[j].Index })
	return v
}

// Norm returns the L2 norm of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, t := range v {
		sum += t.Weight * t.Weight
	}
	return math.Sqrt(sum)
}

// Normalize returns a copy of v scaled to unit L2 norm.
// The zero vector is returned unchanged.
func (v Vector) Normalize() Vector {
	n := v.Norm()
	if n == 0 {
		return nil
	}
	out := make(Vector, len(v))
	for i, t := range v {
		out[i] = Term{Index: t.Index, Weight: t.Weight / n}
	}
	return out
}

// Dot computes the inner product of two sorted sparse vectors using a
// merge-join. O(n+m), no allocations.
func Dot(a, b Vector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Index == b[j].Index:
			dot += a[i].Weight * b[j].Weight
			i++
			j++
		case a[i].Index < b[j].Index:
			i++
		default:
			j++
		}
	}
	return dot
}

// CosineDistance returns 1 - cos(a, b) given the precomputed norms an
// and bn, clamped to [0, 2]. A zero-magnitude operand gives distance 1.
func CosineDistance(a Vector, an float64, b Vector, bn float64) float64 {
	denom := an * bn
	if denom == 0 {
		return 1
	}
	return ClampDistance(1 - Dot(a, b)/denom)
}

// ClampDistance bounds a cosine distance to [0, 2].
func ClampDistance(d float64) float64 {
	switch {
	case d < 0:
		return 0
	case d > 2:
		return 2
	}
	return d
}
