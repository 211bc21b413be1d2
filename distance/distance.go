// Package distance provides the similarity kernels of the search core:
// dense distance functions over float32 vectors and sparse dot/cosine over
// sorted (index, weight) pairs.
//
// All kernels are pure functions. Callers validate dimensions once at the
// index boundary; the hot-path functions assume equal lengths.
package distance

import (
	"fmt"
	"math"
	"slices"
)

// Metric represents the distance metric used for vector comparison.
// A metric is fixed per index instance at creation and applied uniformly.
type Metric int

const (
	MetricL2 Metric = iota
	MetricCosine
	MetricDot
	MetricManhattan
	MetricHamming
	MetricJaccard
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricCosine:
		return "Cosine"
	case MetricDot:
		return "Dot"
	case MetricManhattan:
		return "Manhattan"
	case MetricHamming:
		return "Hamming"
	case MetricJaccard:
		return "Jaccard"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParseMetric parses a metric name as produced by Metric.String.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "L2":
		return MetricL2, nil
	case "Cosine":
		return MetricCosine, nil
	case "Dot":
		return MetricDot, nil
	case "Manhattan":
		return MetricManhattan, nil
	case "Hamming":
		return MetricHamming, nil
	case "Jaccard":
		return MetricJaccard, nil
	default:
		return 0, fmt.Errorf("unknown metric: %q", s)
	}
}

// Func is a function type for distance calculation.
// Lower return values mean closer vectors for every provided Func.
type Func func(a, b []float32) float32

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Manhattan calculates the L1 distance between two vectors.
// Assumes vectors are the same length.
func Manhattan(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum
}

// Hamming calculates the Hamming distance between two vectors, counting
// positions whose values differ. Assumes vectors are the same length.
func Hamming(a, b []float32) float32 {
	var count float32
	for i := range a {
		if a[i] != b[i] {
			count++
		}
	}
	return count
}

// Jaccard calculates the Jaccard distance 1 - |min|/|max| over non-negative
// weight vectors. Assumes vectors are the same length.
// Two zero vectors have distance 0.
func Jaccard(a, b []float32) float32 {
	var minSum, maxSum float32
	for i := range a {
		if a[i] < b[i] {
			minSum += a[i]
			maxSum += b[i]
		} else {
			minSum += b[i]
			maxSum += a[i]
		}
	}
	if maxSum == 0 {
		return 0
	}
	return 1 - minSum/maxSum
}

// CosineDistance calculates 1 - cosine similarity.
// A zero vector on either side yields the maximum distance 1.
func CosineDistance(a, b []float32) float32 {
	var dot, na, nb float32
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/float32(math.Sqrt(float64(na)*float64(nb)))
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm.
func NormalizeL2InPlace(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	norm2 := Dot(v, v)
	if norm2 == 0 {
		return false
	}
	inv := 1 / float32(math.Sqrt(float64(norm2)))
	for i := range v {
		v[i] *= inv
	}
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src has zero L2 norm.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := slices.Clone(src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}

// Provider returns the distance function for the given metric.
//
// For MetricCosine the returned function assumes L2-normalized inputs and
// computes 1 - dot, which equals cosine distance on unit vectors. For
// MetricDot the similarity is negated so that lower is always closer.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricL2:
		return SquaredL2, nil
	case MetricCosine:
		return func(a, b []float32) float32 {
			return 1 - Dot(a, b)
		}, nil
	case MetricDot:
		return func(a, b []float32) float32 {
			return -Dot(a, b)
		}, nil
	case MetricManhattan:
		return Manhattan, nil
	case MetricHamming:
		return Hamming, nil
	case MetricJaccard:
		return Jaccard, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// NeedsNormalization reports whether vectors must be L2-normalized before
// the Provider function for m is applied.
func NeedsNormalization(m Metric) bool {
	return m == MetricCosine
}
