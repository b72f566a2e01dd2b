// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	shape0 := Make()
	require.True(t, shape0.IsScalar())
	require.Equal(t, 0, shape0.Rank())
	require.Len(t, shape0.Dimensions, 0)
	require.Equal(t, 1, shape0.Size())
	require.Equal(t, 8, int(shape0.Memory()))

	shape1 := Make(4, 3, 2)
	require.False(t, shape1.IsScalar())
	require.False(t, shape1.IsZeroSize())
	require.Equal(t, 3, shape1.Rank())
	require.Len(t, shape1.Dimensions, 3)
	require.Equal(t, 4*3*2, shape1.Size())
	require.Equal(t, 8*4*3*2, int(shape1.Memory()))
	require.Equal(t, "[4 3 2]", shape1.String())

	shape2 := Make(3, 0)
	require.True(t, shape2.IsZeroSize())
	require.Equal(t, 0, shape2.Size())

	require.Panics(t, func() { _ = Make(2, -1) })
}

func TestMakeCopiesDimensions(t *testing.T) {
	dims := []int{2, 3}
	shape := Make(dims...)
	dims[0] = 7
	require.Equal(t, []int{2, 3}, shape.Dimensions)

	clone := shape.Clone()
	clone.Dimensions[1] = 5
	require.Equal(t, []int{2, 3}, shape.Dimensions)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Make(2, 3).Validate())
	require.NoError(t, Make(0).Validate())
	require.Error(t, Shape{Dimensions: []int{2, -3}}.Validate())

	// The number of elements (and bytes) must fit an int.
	require.ErrorContains(t, Shape{Dimensions: []int{math.MaxInt/2 + 1, 4}}.Validate(), "too large")
	require.ErrorContains(t, Shape{Dimensions: []int{math.MaxInt / 8, 2}}.Validate(), "too large")
	require.ErrorContains(t, Shape{Dimensions: []int{math.MaxInt/2 + 1, 0, 4}}.Validate(), "too large")
	require.NoError(t, Shape{Dimensions: []int{math.MaxInt / 8}}.Validate())
	require.NoError(t, Shape{Dimensions: []int{math.MaxInt / 8, 0, 1}}.Validate())
	require.Panics(t, func() { Make(math.MaxInt/2+1, 4) })
	require.Panics(t, func() { Make(-1) })
}

func TestEqual(t *testing.T) {
	require.True(t, Make(2, 2).Equal(Make(2, 2)))
	require.False(t, Make(2, 2).Equal(Make(2, 3)))
	require.False(t, Make(2, 2).Equal(Make(2, 2, 1)))
	require.True(t, Make().Equal(Shape{}))
}

func TestPrepend(t *testing.T) {
	inner := Make(3, 4)
	require.Equal(t, []int{2, 3, 4}, inner.Prepend(2).Dimensions)
	require.Equal(t, []int{3, 4}, inner.Dimensions)
	require.Equal(t, []int{5}, Make().Prepend(5).Dimensions)
}
