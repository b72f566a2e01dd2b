// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape and associated tools.
//
// Shape represents the dimensions of a Tensor: an ordered list of per-axis extents, outermost first.
// The element type is always Float64 (see package dtypes), so it is not part of the Shape.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a Tensor.
//   - Axis: is the index of a dimension on a multidimensional Tensor.
//   - Dimension: the size of a multi-dimensions Tensor in one of its axes.
//   - Size: the number of elements, the product of all dimensions.
//
// Example: The nested sequence `[[0, 1, 2], [3, 4, 5]]` if converted to a Tensor would have shape `[2 3]`.
// We say it has rank 2 (so 2 axes), axis 0 has dimension 2, and axis 1 has dimension 3. This shape could be
// created with `shapes.Make(2, 3)`.
//
// Shapes are laid out in "row-major" order: the last axis varies fastest. See Shape.Strides.
package shapes

import (
	"fmt"
	"math"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/ndarray/pkg/core/dtypes"
	"github.com/pkg/errors"
)

// Shape represents the dimensions of a Tensor.
//
// Use Make to create a new shape, or build it directly with a `Shape{Dimensions: ...}` literal and call Validate.
type Shape struct {
	Dimensions []int
}

// Make returns a Shape structure filled with the dimensions given.
// The dimensions are copied.
//
// It panics if the shape is not valid (see Shape.Validate): use a struct literal and Shape.Validate to check
// dimensions coming from untrusted sources.
func Make(dimensions ...int) Shape {
	s := Shape{Dimensions: slices.Clone(dimensions)}
	if err := s.Validate(); err != nil {
		exceptions.Panicf("shapes.Make(%s): %v", s, err)
	}
	return s
}

// Validate returns an error if any of the dimensions is negative, or if the shape is too large to be
// addressed: the product of the non-zero dimensions, in bytes of float64, must fit an int.
//
// Size and Memory are only meaningful for valid shapes.
func (s Shape) Validate() error {
	maxSize := math.MaxInt / dtypes.Float64.Size()
	size := 1
	for axis, dim := range s.Dimensions {
		if dim < 0 {
			return errors.Errorf("shape %s has negative dimension %d for axis %d", s, dim, axis)
		}
		if dim == 0 {
			continue
		}
		if size > maxSize/dim {
			return errors.Errorf("shape %s is too large: number of elements overflows at axis %d", s, axis)
		}
		size *= dim
	}
	return nil
}

// Rank of the shape, that is, the number of dimensions.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape represents a scalar, that is there are no dimensions (rank==0).
func (s Shape) IsScalar() bool { return s.Rank() == 0 }

// IsZeroSize returns whether any of the axes has dimension 0, in which case there are no elements.
func (s Shape) IsZeroSize() bool {
	return slices.Contains(s.Dimensions, 0)
}

// String implements stringer, pretty-prints the shape.
func (s Shape) String() string {
	return fmt.Sprintf("%v", s.Dimensions)
}

// Size returns the number of elements needed for this shape. It's the product of all dimensions.
// A scalar shape has size 1.
func (s Shape) Size() (size int) {
	size = 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return
}

// Memory returns the memory used to store a flat array of the given shape, in bytes.
func (s Shape) Memory() uintptr {
	return dtypes.Float64.Memory() * uintptr(s.Size())
}

// Equal compares two shapes for equality.
func (s Shape) Equal(s2 Shape) bool {
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() Shape {
	return Shape{Dimensions: slices.Clone(s.Dimensions)}
}

// Prepend returns a new shape with the given dimension as its new outermost axis, followed by the axes of s.
func (s Shape) Prepend(dim int) Shape {
	dims := make([]int, 0, s.Rank()+1)
	dims = append(dims, dim)
	dims = append(dims, s.Dimensions...)
	return Shape{Dimensions: dims}
}
