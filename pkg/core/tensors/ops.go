// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"
)

// ChunkSize is the number of contiguous elements processed at a time by the elementwise kernels.
//
// It only affects memory access patterns: results are bit-for-bit the same for any chunk size.
const ChunkSize = 64

// Add returns a new tensor with the elementwise sum a + b.
//
// a and b must have exactly the same shape (there is no broadcasting), otherwise it returns an error of kind
// ShapeMismatch with both shapes. NaN and Inf propagate following IEEE-754.
//
// It panics if a or b is nil.
func Add(a, b *Tensor) (*Tensor, error) {
	a.AssertValid()
	b.AssertValid()
	if !a.shape.Equal(b.shape) {
		return nil, &Error{
			Kind:     ShapeMismatch,
			Expected: a.shape.Clone(),
			Actual:   b.shape.Clone(),
			Reason:   fmt.Sprintf("cannot add tensors of shapes %s and %s", a.shape, b.shape),
		}
	}
	dst := make([]float64, len(a.flat))
	addChunked(dst, a.flat, b.flat, ChunkSize)
	klog.V(3).Infof("tensors.Add: %d elements of shape %s in chunks of %d", len(dst), a.shape, ChunkSize)
	return newTensor(a.shape.Clone(), dst), nil
}

// Add returns a new tensor with the elementwise sum t + other. See the Add function.
func (t *Tensor) Add(other *Tensor) (*Tensor, error) {
	return Add(t, other)
}

// AddScalar returns a new tensor with the scalar s added to every element of t.
//
// It panics if t is nil.
func AddScalar(t *Tensor, s float64) *Tensor {
	t.AssertValid()
	dst := make([]float64, len(t.flat))
	addScalarChunked(dst, t.flat, s, ChunkSize)
	klog.V(3).Infof("tensors.AddScalar: %d elements of shape %s in chunks of %d", len(dst), t.shape, ChunkSize)
	return newTensor(t.shape.Clone(), dst)
}

// AddScalar returns a new tensor with s added to every element of t. See the AddScalar function.
func (t *Tensor) AddScalar(s float64) *Tensor {
	return AddScalar(t, s)
}

// ZerosLike returns a new tensor of zeros with the same shape as t.
func ZerosLike(t *Tensor) *Tensor {
	t.AssertValid()
	return newTensor(t.shape.Clone(), make([]float64, len(t.flat)))
}

// addChunked sets dst[i] = a[i] + b[i], processing chunkSize contiguous elements at a time.
// All slices must have the same length.
func addChunked(dst, a, b []float64, chunkSize int) {
	for start := 0; start < len(dst); start += chunkSize {
		end := min(start+chunkSize, len(dst))
		floats.AddTo(dst[start:end], a[start:end], b[start:end])
	}
}

// addScalarChunked sets dst[i] = a[i] + s, processing chunkSize contiguous elements at a time.
// Both slices must have the same length.
func addScalarChunked(dst, a []float64, s float64, chunkSize int) {
	for start := 0; start < len(dst); start += chunkSize {
		end := min(start+chunkSize, len(dst))
		chunk := dst[start:end]
		copy(chunk, a[start:end])
		floats.AddConst(s, chunk)
	}
}
