package similarity

import (
	"fmt"
	"math"

	"github.com/mutscan/mutscan/embedding"
)

// Series is a per-position sequence of scores, index-aligned with the
// sequence positions of the matrices it was derived from.
type Series []float64

// ErrShapeMismatch indicates two matrices that cannot be compared
// position-wise because their shapes disagree.
type ErrShapeMismatch struct {
	APositions, ADims int
	BPositions, BDims int
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch: %dx%d vs %dx%d",
		e.APositions, e.ADims, e.BPositions, e.BDims)
}

// ErrLengthMismatch indicates two series of unequal length. For a single
// variant this means the two layers were computed over inconsistent
// position counts, which is a data-integrity violation.
type ErrLengthMismatch struct {
	Deep, Shallow int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("series length mismatch: deep=%d shallow=%d", e.Deep, e.Shallow)
}

// Cosine returns the cosine similarity of a and b.
// Assumes vectors are the same length (caller's responsibility).
//
// If either vector has zero L2 norm the result is mathematically
// undefined; NaN is returned so the degenerate position stays visible
// through downstream aggregation instead of being masked.
func Cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return math.NaN()
	}
	return dot / denom
}

// PositionwiseCosine computes the cosine similarity between matching
// rows of a and b, one score per sequence position.
//
// The matrices must agree in both position count and dimensionality;
// a mismatch fails before any score is computed. Pure function, no
// side effects on its inputs.
func PositionwiseCosine(a, b *embedding.Matrix) (Series, error) {
	if !a.SameShape(b) {
		return nil, &ErrShapeMismatch{
			APositions: a.Positions(), ADims: a.Dims(),
			BPositions: b.Positions(), BDims: b.Dims(),
		}
	}

	out := make(Series, a.Positions())
	for i := range out {
		out[i] = Cosine(a.Row(i), b.Row(i))
	}
	return out, nil
}

// Delta returns the element-wise layer differential deep − shallow.
// Unequal lengths are a fatal data-integrity error, never truncated.
func Delta(deep, shallow Series) (Series, error) {
	if len(deep) != len(shallow) {
		return nil, &ErrLengthMismatch{Deep: len(deep), Shallow: len(shallow)}
	}

	out := make(Series, len(deep))
	for i := range out {
		out[i] = deep[i] - shallow[i]
	}
	return out, nil
}
