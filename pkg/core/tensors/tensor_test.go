// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"math"
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/ndarray/pkg/core/dtypes"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/gomlx/ndarray/pkg/support/xslices"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

func TestFromFlat(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}
	tensor, err := FromFlat(shapes.Make(2, 3), data)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, tensor.Dimensions())
	assert.Equal(t, 6, tensor.Size())

	// Rank 0 and zero-sized tensors.
	scalar, err := FromFlat(shapes.Make(), []float64{3})
	require.NoError(t, err)
	assert.True(t, scalar.IsScalar())
	assert.Equal(t, 1, scalar.Size())
	v, err := scalar.At()
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	empty, err := FromFlat(shapes.Make(2, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Size())
	assert.Equal(t, 2, empty.Rank())

	// Size mismatch.
	tensor, err = FromFlat(shapes.Make(2, 2), []float64{1, 2, 3})
	require.Error(t, err)
	assert.Nil(t, tensor)
	require.ErrorIs(t, err, ErrShapeMismatch)
	var tErr *Error
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, []int{2, 2}, tErr.Expected.Dimensions)
	assert.Equal(t, 4, tErr.Expected.Size())
	assert.Equal(t, 3, tErr.Length)
	assert.Contains(t, err.Error(), "requires 4 elements, got 3")

	// Negative dimensions.
	_, err = FromFlat(shapes.Shape{Dimensions: []int{-1, 2}}, nil)
	require.ErrorIs(t, err, ErrShapeMismatch)

	// Dimensions whose product overflows int are rejected, not wrapped around to a small size.
	for _, dims := range [][]int{{math.MaxInt/2 + 1, 4}, {math.MaxInt/4 + 1, 0, 8}, {1 << 30, 1 << 30, 1 << 30, 1 << 30}} {
		tensor, err = FromFlat(shapes.Shape{Dimensions: dims}, []float64{})
		require.ErrorIsf(t, err, ErrShapeMismatch, "dims=%v", dims)
		assert.Nil(t, tensor)
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, dims, tErr.Expected.Dimensions)
		assert.Contains(t, err.Error(), "too large")
	}

	// The shape given is not kept: changing it doesn't affect the tensor.
	dims := []int{3, 2}
	tensor = MustFromFlat(shapes.Shape{Dimensions: dims}, data)
	dims[0] = 1
	assert.Equal(t, []int{3, 2}, tensor.Dimensions())

	err = exceptions.TryCatch[error](func() { MustFromFlat(shapes.Make(5), data) })
	require.Error(t, err)
}

func TestQueries(t *testing.T) {
	tensor := must.M1(FromValue([][]float64{{1.0, 2.0}, {3.0, 4.0}}))
	assert.Equal(t, []int{2, 2}, tensor.Shape().Dimensions)
	assert.Equal(t, 4, tensor.Size())
	assert.Equal(t, 2, tensor.Rank())
	assert.Equal(t, dtypes.Float64, tensor.DType())
	assert.Equal(t, "float64", tensor.DTypeName())
	assert.Equal(t, []int{2, 1}, tensor.Strides())
	assert.Equal(t, uintptr(32), tensor.Memory())
	assert.Equal(t, "Tensor(float64)[2 2] 32 B", tensor.String())
	v, err := tensor.Get([]int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	// Dimensions returns a copy.
	dims := tensor.Dimensions()
	dims[0] = 7
	assert.Equal(t, []int{2, 2}, tensor.Dimensions())

	var nilTensor *Tensor
	assert.Equal(t, "Tensor(nil)", nilTensor.String())
}

func TestGet(t *testing.T) {
	data := xslices.Iota(0.0, 24)
	tensor := must.M1(FromFlatDataAndDimensions(data, 2, 3, 4))

	// Every valid index returns the value ingested at that position.
	for flatIdx, indices := range tensor.Shape().Iter() {
		v, err := tensor.Get(indices)
		require.NoError(t, err)
		require.Equal(t, data[flatIdx], v)
	}
	v, err := tensor.At(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 23.0, v)

	for _, indices := range [][]int{{2, 0, 0}, {0, 3, 0}, {0, 0, 4}, {0, 0, -1}, {-1, 0, 0}, {0, 0}, {0, 0, 0, 0}, {}, nil} {
		v, err := tensor.Get(indices)
		require.Errorf(t, err, "indices=%v", indices)
		assert.Zero(t, v)
		assert.ErrorIs(t, err, ErrIndexOutOfBounds)
		var tErr *Error
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, IndexOutOfBounds, tErr.Kind)
		assert.Equal(t, len(indices), len(tErr.Index))
		assert.Equal(t, []int{2, 3, 4}, tErr.Expected.Dimensions)
	}

	// Zero-sized tensors have no valid index.
	empty := must.M1(FromFlatDataAndDimensions(nil, 3, 0))
	_, err = empty.At(0, 0)
	require.ErrorIs(t, err, ErrIndexOutOfBounds)
}

func TestSizeAndRankProperty(t *testing.T) {
	for _, dims := range [][]int{{}, {1}, {5}, {2, 3}, {4, 1, 2}, {2, 0, 3}, {1, 1, 1, 1, 1}} {
		size := shapes.Make(dims...).Size()
		tensor := must.M1(FromFlatDataAndDimensions(make([]float64, size), dims...))
		assert.Equal(t, size, tensor.Size())
		assert.Equal(t, len(dims), tensor.Rank())
	}
}

func TestChain(t *testing.T) {
	tensor := must.M1(FromValue([][]float64{{1, 2}, {3, 4}}))
	chained := tensor.Chain()
	require.NotSame(t, tensor, chained)
	assert.True(t, tensor.Equal(chained))
	assert.Same(t, &tensor.flat[0], &chained.flat[0], "Chain must share the data")
	assert.Equal(t, tensor.Value(), chained.Value())
}

func TestFromFlatDataAndDimensions(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	tensor := must.M1(FromFlatDataAndDimensions(data, 2, 2))
	data[0] = 100
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, tensor.Value(), "data must be copied")

	_, err := FromFlatDataAndDimensions(data, 3)
	require.ErrorIs(t, err, ErrShapeMismatch)

	filled := must.M1(FromScalarAndDimensions(0.5, 2, 3))
	assert.Equal(t, [][]float64{{0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}}, filled.Value())
	_, err = FromScalarAndDimensions(1, -1)
	require.ErrorIs(t, err, ErrShapeMismatch)
	_, err = FromScalarAndDimensions(1, math.MaxInt/2+1, 4)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFromValue(t *testing.T) {
	tensor, err := FromValue([][]int32{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}}, tensor.Value())

	same, err := FromValue(tensor)
	require.NoError(t, err)
	assert.Same(t, tensor, same)

	_, err = FromValue([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, ErrJaggedArray)
	_, err = FromValue(3.0)
	require.ErrorIs(t, err, ErrUnsupportedType)

	require.Panics(t, func() { MustFromValue([]float64{}) })
	assert.Equal(t, []float64{1}, MustFromValue([]float64{1}).Value())
}

func TestFromJSON(t *testing.T) {
	tensor, err := FromJSON([]byte(`[[1.0, 2.0], [3.0, 4.0]]`))
	require.NoError(t, err)
	assert.True(t, tensor.Equal(must.M1(FromValue([][]float64{{1, 2}, {3, 4}}))))

	_, err = FromJSON([]byte(`[[1, 2], [3, 4]`))
	require.Error(t, err)
	var tErr *Error
	assert.False(t, errors.As(err, &tErr), "malformed JSON is not classified")

	_, err = FromJSON([]byte(`[[1, 2], [3, 4]]]`))
	require.Error(t, err)
	assert.False(t, errors.As(err, &tErr), "trailing content is a malformed document")

	_, err = FromJSON([]byte(`[]`))
	require.ErrorIs(t, err, ErrEmptyInput)
	_, err = FromJSON([]byte(`[[], []]`))
	require.ErrorIs(t, err, ErrEmptyNestedSequence)
}

func TestValue(t *testing.T) {
	assert.Equal(t, 5.0, must.M1(FromFlatDataAndDimensions([]float64{5})).Value())
	assert.Equal(t, []float64{1, 2}, must.M1(FromFlatDataAndDimensions([]float64{1, 2}, 2)).Value())
	assert.Equal(t, [][][]float64{{{1}, {2}}, {{3}, {4}}},
		must.M1(FromFlatDataAndDimensions([]float64{1, 2, 3, 4}, 2, 2, 1)).Value())
	assert.Equal(t, [][]float64{{}, {}}, must.M1(FromFlatDataAndDimensions(nil, 2, 0)).Value())

	// Value returns a copy.
	tensor := must.M1(FromValue([][]float64{{1, 2}, {3, 4}}))
	value := tensor.Value().([][]float64)
	value[0][0] = 100
	flat := tensor.CopyFlatData()
	assert.Equal(t, []float64{1, 2, 3, 4}, flat)
	flat[1] = 100
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, tensor.Value())
}

func TestEqualAndInDelta(t *testing.T) {
	a := must.M1(FromValue([]float64{1, 2, 3}))
	b := must.M1(FromValue([]float64{1, 2, 3.001}))
	c := must.M1(FromValue([][]float64{{1, 2, 3}}))
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(c), "different shapes")
	assert.True(t, a.InDelta(b, 0.01))
	assert.False(t, a.InDelta(b, 0.0001))
	assert.False(t, a.InDelta(c, 1))

	require.Panics(t, func() { a.Equal(nil) })
}
