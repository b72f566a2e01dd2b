// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/ndarray/pkg/core/sequence"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/gomlx/ndarray/pkg/support/xslices"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
)

// FromSequence creates a Tensor from a nested sequence of numbers. See Ingest for the rules and errors.
func FromSequence(value sequence.Element) (*Tensor, error) {
	flat, shape, err := Ingest(value)
	if err != nil {
		return nil, err
	}
	return FromFlat(shape, flat)
}

// FromValue creates a Tensor from a Go nested slice (or array) of numbers, of any Go numeric type.
// Sub-slices can also be given as `[]any`, as the ones produced by encoding/json.
// The values are converted to float64 and copied.
//
// If value is already a *Tensor, it is simply returned.
//
// See sequence.FromGo for the Go types accepted and Ingest for the rules and errors.
func FromValue(value any) (*Tensor, error) {
	if t, ok := value.(*Tensor); ok {
		return t, nil
	}
	return FromSequence(sequence.FromGo(value))
}

// MustFromValue is like FromValue, but panics on error.
func MustFromValue(value any) *Tensor {
	return must.M1(FromValue(value))
}

// FromJSON creates a Tensor from a JSON document holding nested arrays of numbers, like `[[1, 2], [3, 4]]`.
//
// It returns an error if the document is malformed, and otherwise the same errors as Ingest.
func FromJSON(data []byte) (*Tensor, error) {
	value, err := sequence.FromJSON(data)
	if err != nil {
		return nil, errors.WithMessage(err, "tensors.FromJSON")
	}
	return FromSequence(value)
}

// MustFromFlat is like FromFlat, but panics on error.
func MustFromFlat(shape shapes.Shape, data []float64) *Tensor {
	t, err := FromFlat(shape, data)
	if err != nil {
		exceptions.Panicf("MustFromFlat(%s, len(data)=%d): %+v", shape, len(data), err)
	}
	return t
}

// FromFlatDataAndDimensions creates a tensor with the given dimensions, filled with the flattened values given
// in data, in row-major order. The data is copied to the Tensor.
//
// Example:
//
//	t, err := FromFlatDataAndDimensions([]float64{1, 2, 3, 4}, 2, 2) // Tensor with [[1, 2], [3, 4]]
//
// It returns an error of kind ShapeMismatch if the size of data is wrong for the dimensions.
func FromFlatDataAndDimensions(data []float64, dimensions ...int) (*Tensor, error) {
	return FromFlat(shapes.Shape{Dimensions: dimensions}, xslices.Copy(data))
}

// FromScalarAndDimensions creates a tensor with the given dimensions, filled with the given scalar value
// replicated everywhere.
//
// It returns an error of kind ShapeMismatch if any dimension is negative.
func FromScalarAndDimensions(value float64, dimensions ...int) (*Tensor, error) {
	shape := shapes.Shape{Dimensions: dimensions}
	if err := shape.Validate(); err != nil {
		return nil, &Error{Kind: ShapeMismatch, Expected: shape.Clone(), Reason: err.Error()}
	}
	flat := make([]float64, shape.Size())
	xslices.FillSlice(flat, value)
	return FromFlat(shape, flat)
}
