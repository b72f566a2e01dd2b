// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package tensors implement a `Tensor`, an immutable, dense, n-dimensional array of float64 values.
//
// Tensors are multidimensional arrays (from scalar with 0 dimensions, to arbitrarily large dimensions), defined
// by their shape (its axes' dimensions) and their actual content, stored as a flat slice in row-major order.
//
// There are various ways to construct a Tensor:
//
//   - FromValue(value any): from a Go nested slice (or array) of any numeric type, including the `[]any`
//     trees produced by encoding/json. All sub-slices must have the same shape. Example:
//
//     t, err := FromValue([][]float32{{1, 2}, {3, 5}, {7, 11}})
//
//   - FromJSON(data []byte): from a JSON document with nested arrays of numbers, like `[[1, 2], [3, 5]]`.
//
//   - FromSequence(e sequence.Element): from any nested sequence, see package sequence.
//
//   - FromFlat(shape, data) and FromFlatDataAndDimensions(data, dimensions...): from the flattened values.
//
// Tensors are never modified after they are created: operations (Add, AddScalar) return new tensors, and
// Chain returns a new handle to the same data. So they can be shared and read concurrently without locking.
//
// Failures are reported with *Error values, classified by ErrorKind. See Error for details.
package tensors

import (
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/ndarray/pkg/core/dtypes"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/pkg/errors"
)

// Tensor represents a multidimensional array (from scalar with 0 dimensions, to arbitrarily large dimensions) of
// float64 values, defined by its shape and its content stored as a flat (1D) slice of values in row-major order.
//
// The flat data is immutable, and may be shared by multiple Tensor handles (see Chain).
type Tensor struct {
	// shape of the tensor.
	shape shapes.Shape

	// flat holds the values, len(flat) == shape.Size().
	flat []float64
}

// FromFlat creates a Tensor with the given shape and flat data in row-major order.
//
// The Tensor takes ownership of data: it must not be modified afterward. See FromFlatDataAndDimensions for a
// version that copies the data.
//
// It returns an error (of kind ShapeMismatch) if len(data) is not the size of the shape, or if the shape has
// negative dimensions.
func FromFlat(shape shapes.Shape, data []float64) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, &Error{Kind: ShapeMismatch, Expected: shape.Clone(), Length: len(data), Reason: err.Error()}
	}
	if shape.Size() != len(data) {
		return nil, &Error{
			Kind:     ShapeMismatch,
			Expected: shape.Clone(),
			Length:   len(data),
			Reason:   fmt.Sprintf("shape %s requires %d elements, got %d", shape, shape.Size(), len(data)),
		}
	}
	return &Tensor{shape: shape.Clone(), flat: data}, nil
}

// newTensor is used internally for results of operations, when the shape is known to be valid
// and owned.
func newTensor(shape shapes.Shape, flat []float64) *Tensor {
	return &Tensor{shape: shape, flat: flat}
}

// AssertValid panics if t is nil.
func (t *Tensor) AssertValid() {
	if t == nil {
		exceptions.Panicf("tensor is nil")
	}
}

// Shape of the tensor.
//
// The returned shape shares its dimensions with the tensor: it must not be modified. See Dimensions for a copy.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// Dimensions returns a copy of the tensor dimensions, one per axis.
func (t *Tensor) Dimensions() []int { return slices.Clone(t.shape.Dimensions) }

// Size returns the number of elements in the tensor.
func (t *Tensor) Size() int { return len(t.flat) }

// Rank returns the number of axes of the tensor.
func (t *Tensor) Rank() int { return t.shape.Rank() }

// IsScalar returns whether the tensor has rank 0.
func (t *Tensor) IsScalar() bool { return t.shape.IsScalar() }

// DType returns the element type of the tensor, always dtypes.Float64.
func (t *Tensor) DType() dtypes.DType { return dtypes.Float64 }

// DTypeName returns the name of the element type, "float64".
func (t *Tensor) DTypeName() string { return t.DType().GoStr() }

// Strides returns the row-major strides of each axis, in number of elements. See shapes.Shape.Strides.
func (t *Tensor) Strides() []int { return t.shape.Strides() }

// Memory returns the number of bytes used by the flat data.
func (t *Tensor) Memory() uintptr { return t.shape.Memory() }

// Get returns the element at the given indices, one per axis.
//
// It returns an error of kind IndexOutOfBounds if len(indices) differs from the rank, or if any index is
// negative or not smaller than the dimension of its axis. Negative indices are not wrapped around.
func (t *Tensor) Get(indices []int) (float64, error) {
	offset, err := t.shape.FlatIndex(indices)
	if err == nil && offset >= len(t.flat) {
		err = errors.Errorf("flat index %d beyond data of length %d", offset, len(t.flat))
	}
	if err != nil {
		return 0, &Error{
			Kind:     IndexOutOfBounds,
			Expected: t.shape,
			Index:    slices.Clone(indices),
			Reason:   fmt.Sprintf("indices %v for shape %s: %v", indices, t.shape, err),
		}
	}
	return t.flat[offset], nil
}

// At is a variadic version of Get.
func (t *Tensor) At(indices ...int) (float64, error) {
	return t.Get(indices)
}

// Chain returns a new Tensor handle sharing the same data and shape as t.
// Both handles are observationally identical.
func (t *Tensor) Chain() *Tensor {
	return &Tensor{shape: t.shape, flat: t.flat}
}

// String returns a one-line description of the tensor, e.g. "Tensor(float64)[2 3] 48 B".
// It doesn't print the values.
func (t *Tensor) String() string {
	if t == nil {
		return "Tensor(nil)"
	}
	return fmt.Sprintf("Tensor(%s)%s %s", t.DTypeName(), t.shape, humanize.Bytes(uint64(t.Memory())))
}
