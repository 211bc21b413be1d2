package distance

import (
	"math"

	"github.com/hupe1980/vexo/model"
)

// SparseDot computes the dot product of two sparse vectors by merging their
// sorted index lists with a two-pointer scan. O(n+m), never materializes the
// nominal dimensionality.
func SparseDot(a, b model.SparseVector) float32 {
	var sum float32
	i, j := 0, 0
	for i < len(a.Entries) && j < len(b.Entries) {
		ai, bi := a.Entries[i].Index, b.Entries[j].Index
		switch {
		case ai == bi:
			sum += a.Entries[i].Weight * b.Entries[j].Weight
			i++
			j++
		case ai < bi:
			i++
		default:
			j++
		}
	}
	return sum
}

// SparseNorm returns the L2 norm of a sparse vector.
func SparseNorm(a model.SparseVector) float32 {
	var sum float32
	for _, e := range a.Entries {
		sum += e.Weight * e.Weight
	}
	return float32(math.Sqrt(float64(sum)))
}

// SparseCosine computes the cosine similarity of two sparse vectors.
// Either side having zero norm yields 0.
func SparseCosine(a, b model.SparseVector) float32 {
	na, nb := SparseNorm(a), SparseNorm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return SparseDot(a, b) / (na * nb)
}
