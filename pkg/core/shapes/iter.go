// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"iter"

	"github.com/pkg/errors"
)

// Strides returns the strides for each axis of the shape, assuming a "row-major" layout
// in memory: stride[axis] is the product of the dimensions of all axes after axis.
//
// Notice the strides are **not in bytes**, but in indices.
func (s Shape) Strides() (strides []int) {
	rank := s.Rank()
	if rank == 0 {
		return
	}
	strides = make([]int, rank)
	if s.IsZeroSize() {
		// Some axis is zero-dimension.
		return
	}
	currentStride := 1
	for dim := rank - 1; dim >= 0; dim-- {
		strides[dim] = currentStride
		currentStride *= s.Dimensions[dim]
	}
	return
}

// FlatIndex returns the row-major offset of the element at indices.
//
// It returns an error if len(indices) differs from the rank, if any index is negative or not smaller
// than its dimension, or if the resulting offset falls beyond Size. Negative indices are not wrapped.
func (s Shape) FlatIndex(indices []int) (int, error) {
	if len(indices) != s.Rank() {
		return 0, errors.Errorf("got %d indices for shape %s of rank %d", len(indices), s, s.Rank())
	}
	flatIdx := 0
	stride := 1
	for axis := s.Rank() - 1; axis >= 0; axis-- {
		idx, dim := indices[axis], s.Dimensions[axis]
		if idx < 0 || idx >= dim {
			return 0, errors.Errorf("index %d out of bounds for axis %d with dimension %d", idx, axis, dim)
		}
		flatIdx += idx * stride
		stride *= dim
	}
	if flatIdx >= s.Size() {
		return 0, errors.Errorf("flat index %d out of bounds for shape %s with %d elements", flatIdx, s, s.Size())
	}
	return flatIdx, nil
}

// Iter iterates sequentially over all possible indices of the given shape, in row-major order.
//
// It yields the flat index (counter) and a slice of indices for each axis.
//
// To avoid allocating the slice of indices, the yielded indices is owned by the Iter() method:
// don't change it inside the loop.
func (s Shape) Iter() iter.Seq2[int, []int] {
	indices := make([]int, s.Rank())
	return s.IterOn(indices)
}

// IterOn iterates over all possible indices of the given shape.
//
// It yields the flat index (counter) and a slice of indices for each axis.
//
// The iteration updates the indices on the given indices slice.
// During the iteration the caller shouldn't modify the slice of indices, otherwise it will lead to undefined behavior.
//
// It expects len(indices) == s.Rank(). It will panic otherwise.
func (s Shape) IterOn(indices []int) iter.Seq2[int, []int] {
	if len(indices) != s.Rank() {
		panic(errors.Errorf("Shape.IterOn given len(indices) == %d, want it to be equal to the rank %d", len(indices), s.Rank()))
	}
	return func(yield func(int, []int) bool) {
		rank := s.Rank()
		if rank == 0 {
			// Valid scalar: yield one empty index slice.
			_ = yield(0, indices)
			return
		}
		if s.IsZeroSize() {
			return
		}
		for i := range indices {
			indices[i] = 0
		}

		// This structure simulates an N-dimensional counter for the indices.
		flatIdx := 0
	yielder:
		for {
			if !yield(flatIdx, indices) {
				return // Consumer requested to stop iteration.
			}
			flatIdx++

			// Increment indices to the next set of coordinates
			// (row-major order: the last index changes fastest).
			for axis := rank - 1; axis >= 0; axis-- {
				indices[axis]++
				if indices[axis] < s.Dimensions[axis] {
					continue yielder
				}
				// The current axis overflowed: reset it to 0 and carry over to the previous axis.
				indices[axis] = 0
			}

			// The first axis also overflowed: iteration is complete.
			break
		}
	}
}
