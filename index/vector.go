package index

import (
	"math"
	"sort"
)

// WeightedTerm is one non-zero coordinate of a term vector.
type WeightedTerm struct {
	TermID int
	Weight float64
}

// SparseVector holds the non-zero coordinates of a vector, sorted by TermID.
// Keeping the order fixed makes every dot product sum in the same sequence,
// so repeated scoring of identical inputs is bit-identical.
type SparseVector []WeightedTerm

// newSparseVector builds a vector from term counts, weighting each count with weight(termID).
func newSparseVector(counts map[int]int, weight func(termID int) float64) SparseVector {
	vec := make(SparseVector, 0, len(counts))
	for termID, count := range counts {
		vec = append(vec, WeightedTerm{TermID: termID, Weight: float64(count) * weight(termID)})
	}
	sort.Slice(vec, func(i, j int) bool {
		return vec[i].TermID < vec[j].TermID
	})
	return vec
}

// Norm returns the Euclidean length of the vector.
func (v SparseVector) Norm() float64 {
	sum := 0.0
	for _, wt := range v {
		sum += wt.Weight * wt.Weight
	}
	return math.Sqrt(sum)
}

// Normalize scales the vector to unit length in place. Zero vectors are left untouched.
func (v SparseVector) Normalize() {
	norm := v.Norm()
	if norm == 0 {
		return
	}
	for i := range v {
		v[i].Weight /= norm
	}
}

// Dot returns the dot product of two vectors using a merge join over term ids.
func (v SparseVector) Dot(other SparseVector) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(v) && j < len(other) {
		switch {
		case v[i].TermID == other[j].TermID:
			sum += v[i].Weight * other[j].Weight
			i++
			j++
		case v[i].TermID < other[j].TermID:
			i++
		default:
			j++
		}
	}
	return sum
}
