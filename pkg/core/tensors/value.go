// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"reflect"

	"github.com/gomlx/ndarray/pkg/support/xslices"
)

// Value returns a multidimensional slice (except if the shape is a scalar) containing a copy of the values
// stored in the tensor: a float64 for rank 0, a []float64 for rank 1, a [][]float64 for rank 2, etc.
//
// Converting the result back with FromValue yields an equal tensor.
// This is expensive and usually only used for smaller tensors in tests and to print results.
func (t *Tensor) Value() any {
	t.AssertValid()
	if t.shape.IsScalar() {
		return t.flat[0]
	}
	flatCopy := make([]float64, len(t.flat))
	copy(flatCopy, t.flat)
	if t.shape.Rank() == 1 {
		return flatCopy
	}
	// If multi-dimensional slice, returns slices pointing to the flatCopy.
	return convertDataToSlices(reflect.ValueOf(flatCopy), t.shape.Dimensions...).Interface()
}

// CopyFlatData returns a copy of the flat data, in row-major order.
func (t *Tensor) CopyFlatData() []float64 {
	t.AssertValid()
	flatCopy := make([]float64, len(t.flat))
	copy(flatCopy, t.flat)
	return flatCopy
}

// convertDataToSlices takes data as a flat slice and creates a multidimensional slice with the given dimensions that
// points to the given data.
func convertDataToSlices(dataV reflect.Value, dimensions ...int) reflect.Value {
	if len(dimensions) <= 1 {
		return dataV
	}
	resultT := dataV.Type().Elem()
	for range dimensions {
		resultT = reflect.SliceOf(resultT)
	}
	// Strides computed from the dimensions directly: they must not collapse to zeros for zero-sized shapes.
	strides := make([]int, len(dimensions))
	currentStride := 1
	for dim := len(dimensions) - 1; dim >= 0; dim-- {
		strides[dim] = currentStride
		currentStride *= dimensions[dim]
	}
	return createSlicesRecursively(resultT, dataV, dimensions, strides)
}

// createSlicesRecursively recursively creates slices pointing to the flat data, assuming the strides for
// each dimension.
func createSlicesRecursively(resultT reflect.Type, data reflect.Value, dimensions []int, strides []int) reflect.Value {
	if len(strides) == 1 {
		// Last level of slice, just use the flat data (not a copy).
		return data
	}

	numElements := dimensions[0]
	slice := reflect.MakeSlice(resultT, numElements, numElements)

	subStrides := strides[1:]
	subDimensions := dimensions[1:]
	subResultT := resultT.Elem()
	for ii := 0; ii < numElements; ii++ {
		start := ii * strides[0]
		end := (ii + 1) * strides[0]
		subData := data.Slice3(start, end, end)
		subSlice := createSlicesRecursively(subResultT, subData, subDimensions, subStrides)
		slice.Index(ii).Set(subSlice)
	}
	return slice
}

// Equal checks whether t and otherTensor have the same shape and the same values.
// If they are the same pointer, they are considered equal. Otherwise, values are compared following IEEE-754,
// so tensors holding NaN values are never equal, not even to their Chain.
//
// It panics if either side is nil.
func (t *Tensor) Equal(otherTensor *Tensor) bool {
	t.AssertValid()
	otherTensor.AssertValid()
	if t == otherTensor {
		return true
	}
	if !t.shape.Equal(otherTensor.shape) {
		return false
	}
	for ii, v := range t.flat {
		if v != otherTensor.flat[ii] {
			return false
		}
	}
	return true
}

// InDelta checks whether Abs(t - otherTensor) <= delta for every element.
// If they are the same pointer, they are considered equal.
// If the shapes are different, it returns false.
//
// It panics if either side is nil.
func (t *Tensor) InDelta(otherTensor *Tensor, delta float64) bool {
	t.AssertValid()
	otherTensor.AssertValid()
	if t == otherTensor {
		return true
	}
	if !t.shape.Equal(otherTensor.shape) {
		return false
	}
	if t.shape.IsZeroSize() {
		// If any of the axes is zero-dimensional, there is no data to compare.
		return true
	}
	return xslices.SlicesInDelta(t.flat, otherTensor.flat, delta)
}
