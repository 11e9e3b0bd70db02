package embedding

import (
	"fmt"
)

// Matrix is a dense row-major float32 matrix of shape positions × dims.
// Row i holds the embedding vector of sequence position i.
//
// A Matrix is immutable after construction; Row returns a view into the
// backing array and callers must not write through it.
type Matrix struct {
	data      []float32
	positions int
	dims      int
}

// New creates a Matrix from a flat row-major backing slice.
func New(data []float32, positions, dims int) (*Matrix, error) {
	if positions <= 0 || dims <= 0 {
		return nil, fmt.Errorf("embedding: invalid shape %dx%d", positions, dims)
	}
	if len(data) != positions*dims {
		return nil, fmt.Errorf("embedding: data length %d does not match shape %dx%d", len(data), positions, dims)
	}
	return &Matrix{data: data, positions: positions, dims: dims}, nil
}

// FromShape creates a Matrix from a flat backing slice and a tensor shape.
//
// Accepted shapes are (positions, dims) and (1, positions, dims); the
// leading singleton batch axis produced by the embedding export is dropped.
// Any other rank, or a leading axis != 1, is an error.
func FromShape(data []float32, shape []int) (*Matrix, error) {
	switch len(shape) {
	case 2:
		return New(data, shape[0], shape[1])
	case 3:
		if shape[0] != 1 {
			return nil, fmt.Errorf("embedding: expected singleton leading axis, got shape %v", shape)
		}
		return New(data, shape[1], shape[2])
	default:
		return nil, fmt.Errorf("embedding: unsupported tensor rank %d (shape %v)", len(shape), shape)
	}
}

// Positions returns the number of sequence positions (rows).
func (m *Matrix) Positions() int { return m.positions }

// Dims returns the embedding dimensionality (columns).
func (m *Matrix) Dims() int { return m.dims }

// Row returns the embedding vector at position i as a view.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.dims : (i+1)*m.dims]
}

// SameShape reports whether m and o agree in both positions and dims.
func (m *Matrix) SameShape(o *Matrix) bool {
	return m.positions == o.positions && m.dims == o.dims
}
