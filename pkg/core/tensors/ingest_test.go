// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/gomlx/ndarray/pkg/core/sequence"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/gomlx/ndarray/pkg/support/xslices"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngest(t *testing.T) {
	flat, shape, err := Ingest(sequence.FromGo([][]float64{{1, 2}, {3, 4}}))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, flat)
	assert.Equal(t, []int{2, 2}, shape.Dimensions)

	flat, shape, err = Ingest(sequence.Floats(7, 8, 9))
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 8, 9}, flat)
	assert.Equal(t, []int{3}, shape.Dimensions)

	// Mixed Go numeric types, arrays and []any.
	flat, shape, err = Ingest(sequence.FromGo([]any{[2]int8{1, -2}, []uint64{3, 4}, []any{float32(5), 6}}))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -2, 3, 4, 5, 6}, flat)
	assert.Equal(t, []int{3, 2}, shape.Dimensions)

	flat, shape, err = Ingest(sequence.FromGo([][][]float64{{{1}}}))
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, flat)
	assert.Equal(t, []int{1, 1, 1}, shape.Dimensions)
}

func TestIngestErrors(t *testing.T) {
	selfReferencing := []any{nil}
	selfReferencing[0] = selfReferencing

	testCases := []struct {
		name     string
		value    any
		kind     ErrorKind
		sentinel error
		path     []int
	}{
		{"empty", []float64{}, EmptyInput, ErrEmptyInput, []int{}},
		{"empty nested", [][]float64{{}, {}}, EmptyNestedSequence, ErrEmptyNestedSequence, []int{0}},
		{"empty nested later", []any{[]float64{1}, []float64{}}, EmptyNestedSequence, ErrEmptyNestedSequence, []int{1}},
		{"jagged", []any{[]float64{1, 2}, []float64{3}}, JaggedArray, ErrJaggedArray, []int{1}},
		{"jagged later", [][]float64{{1, 2}, {3, 4}, {5}}, JaggedArray, ErrJaggedArray, []int{2}},
		{"scalar then sequence", []any{1.0, []float64{2, 3}}, JaggedArray, ErrJaggedArray, []int{1}},
		{"sequence then scalar", []any{[]float64{1}, 2.0}, JaggedArray, ErrJaggedArray, []int{1}},
		{"deep jagged", [][][]float64{{{1, 2}}, {{1}}}, JaggedArray, ErrJaggedArray, []int{1}},
		{"string", []any{1.0, "a"}, UnsupportedType, ErrUnsupportedType, []int{1}},
		{"nil", [][]any{{1.0, nil}}, UnsupportedType, ErrUnsupportedType, []int{0, 1}},
		{"bool", []bool{true}, UnsupportedType, ErrUnsupportedType, []int{0}},
		{"complex", []complex128{1i}, UnsupportedType, ErrUnsupportedType, []int{0}},
		{"top-level scalar", 5.0, UnsupportedType, ErrUnsupportedType, []int{}},
		{"top-level string", "blah", UnsupportedType, ErrUnsupportedType, []int{}},
		{"self-referencing", selfReferencing, UnsupportedType, ErrUnsupportedType, make([]int, MaxDepth)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			flat, shape, err := Ingest(sequence.FromGo(tc.value))
			require.Error(t, err)
			assert.Nil(t, flat)
			assert.Equal(t, 0, shape.Rank())
			assert.ErrorIs(t, err, tc.sentinel)
			var tErr *Error
			require.ErrorAs(t, err, &tErr)
			assert.Equal(t, tc.kind, tErr.Kind)
			assert.Equal(t, tc.path, tErr.Path)
			assert.Contains(t, err.Error(), tc.kind.String())
			for _, other := range []error{ErrEmptyInput, ErrEmptyNestedSequence, ErrJaggedArray, ErrUnsupportedType,
				ErrShapeMismatch, ErrIndexOutOfBounds} {
				if other != tc.sentinel {
					assert.NotErrorIs(t, err, other)
				}
			}
		})
	}
}

func TestIngestJaggedShapes(t *testing.T) {
	_, _, err := Ingest(sequence.FromGo([][][]float64{{{1, 2}}, {{1}}}))
	var tErr *Error
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, []int{1, 2}, tErr.Expected.Dimensions)
	assert.Equal(t, []int{1, 1}, tErr.Actual.Dimensions)
	assert.Contains(t, err.Error(), "[1 2]")
	assert.Contains(t, err.Error(), "[1 1]")
	assert.Contains(t, err.Error(), "at [1]")
}

func TestIngestMaxDepth(t *testing.T) {
	defer func(previous int) { MaxDepth = previous }(MaxDepth)
	MaxDepth = 3

	_, shape, err := Ingest(sequence.FromGo([][][]float64{{{1}}}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, shape.Dimensions)

	_, _, err = Ingest(sequence.FromGo([][][][]float64{{{{1}}}}))
	require.ErrorIs(t, err, ErrUnsupportedType)
	assert.Contains(t, err.Error(), "nesting too deep")
}

// failingSequence fails to return its element at index failAt.
type failingSequence struct {
	length, failAt int
	err            error
}

func (s failingSequence) Len() int { return s.length }

func (s failingSequence) At(i int) (sequence.Element, error) {
	if i == s.failAt {
		return sequence.Element{}, s.err
	}
	return sequence.Scalar(float64(i)), nil
}

func TestIngestBindingErrors(t *testing.T) {
	bindingErr := errors.New("connection to host lost")
	value := sequence.List(sequence.Floats(0, 1, 2), sequence.Nested(failingSequence{length: 3, failAt: 2, err: bindingErr}))
	_, _, err := Ingest(value)
	require.Error(t, err)
	assert.ErrorIs(t, err, bindingErr)
	assert.Contains(t, err.Error(), "[1 2]")
	var tErr *Error
	assert.False(t, errors.As(err, &tErr), "binding errors are not classified")

	// Malformed JSON deep inside the document.
	elem, err := sequence.FromJSON([]byte(`[[1, 2], [3, 4e]]`))
	if err == nil {
		_, _, err = Ingest(elem)
	}
	require.Error(t, err)
}

func TestIngestJSON(t *testing.T) {
	doc := []byte(`[[[1, 2, 3], [4, 5, 6]], [[7, 8, 9], [10, 11, 12.5]]]`)
	elem, err := sequence.FromJSON(doc)
	require.NoError(t, err)
	flatJSON, shapeJSON, err := Ingest(elem)
	require.NoError(t, err)

	var decoded any
	require.NoError(t, json.Unmarshal(doc, &decoded))
	flatGo, shapeGo, err := Ingest(sequence.FromGo(decoded))
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 3}, shapeJSON.Dimensions)
	assert.True(t, shapeJSON.Equal(shapeGo))
	assert.Equal(t, flatGo, flatJSON)
	assert.Equal(t, 12.5, flatJSON[11])

	for _, doc := range []string{`[]`, `[[], []]`, `[[1, 2], [3]]`, `[1, [2, 3]]`, `[1, "2"]`, `[1, null]`, `{"a": 1}`} {
		elem, err := sequence.FromJSON([]byte(doc))
		require.NoError(t, err, "doc=%s", doc)
		_, _, err = Ingest(elem)
		var tErr *Error
		require.ErrorAsf(t, err, &tErr, "doc=%s", doc)
	}
}

// nestedIota builds a nested []any of the given dimensions, with values 0, 1, 2, ... in row-major order.
func nestedIota(dims []int, next *float64) any {
	values := make([]any, dims[0])
	for ii := range values {
		if len(dims) == 1 {
			values[ii] = *next
			*next++
		} else {
			values[ii] = nestedIota(dims[1:], next)
		}
	}
	return values
}

func TestIngestRectangularProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	for range 50 {
		dims := make([]int, 1+rng.IntN(4))
		for axis := range dims {
			dims[axis] = 1 + rng.IntN(4)
		}
		var next float64
		value := nestedIota(dims, &next)

		flat, shape, err := Ingest(sequence.FromGo(value))
		require.NoError(t, err)
		require.Equal(t, dims, shape.Dimensions)
		require.Equal(t, shape.Size(), len(flat))
		require.Equal(t, xslices.Iota(0.0, shapes.Make(dims...).Size()), flat)

		// Round-trip: the reconstructed nested slices ingest back to the same data.
		tensor, err := FromFlat(shape, flat)
		require.NoError(t, err)
		flat2, shape2, err := Ingest(sequence.FromGo(tensor.Value()))
		require.NoError(t, err)
		require.True(t, shape.Equal(shape2))
		require.Equal(t, flat, flat2)
	}
}
