// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"slices"

	"github.com/gomlx/ndarray/pkg/core/sequence"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// MaxDepth is the maximum nesting level accepted by Ingest. Deeper inputs fail with UnsupportedType.
//
// It also bounds the recursion for self-referencing inputs (e.g. a `[]any` that contains itself).
var MaxDepth = 64

// Ingest walks the nested sequence in value, validates that it is regular (rectangular) and returns its
// numbers flattened in row-major order (depth-first, left to right), along with the inferred shape.
//
// The first element of each sequence is the reference: its kind (scalar or sequence) and, for sequences,
// its sub-shape must be matched by all its siblings. A sequence of scalars of length n has shape [n]; a
// sequence of n sequences of sub-shape S has shape [n, S...]. So len(flat) == shape.Size() always.
//
// Failures are returned as *Error, with the Path of the failing sequence or element:
//
//   - EmptyInput: value is an empty sequence.
//   - EmptyNestedSequence: some nested sequence is empty.
//   - JaggedArray: siblings mix scalars and sequences, or have different sub-shapes.
//   - UnsupportedType: some element is neither a number nor a sequence, value itself is not a sequence,
//     or the nesting is deeper than MaxDepth.
//
// Errors reading an element from the sequence (see sequence.Sequence.At) are returned wrapped with the path.
func Ingest(value sequence.Element) ([]float64, shapes.Shape, error) {
	if !value.IsSequence() {
		return nil, shapes.Shape{}, ingestionError(UnsupportedType, []int{},
			"top-level value must be a sequence, got %s", value.TypeName())
	}
	ing := ingestor{path: make([]int, 0, 8)}
	flat, dims, err := ing.ingest(value.Sequence())
	if err != nil {
		return nil, shapes.Shape{}, err
	}
	shape := shapes.Shape{Dimensions: dims}
	klog.V(2).Infof("tensors.Ingest: inferred shape %s (%d elements)", shape, len(flat))
	return flat, shape, nil
}

// ingestor holds the state of one Ingest call.
type ingestor struct {
	// path to the sequence being ingested, from the root. Its length is the current depth.
	path []int
}

// ingest the sequence at the current path, returning its flattened data and dimensions.
func (ing *ingestor) ingest(seq sequence.Sequence) (flat []float64, dims []int, err error) {
	depth := len(ing.path)
	if depth >= MaxDepth {
		return nil, nil, ingestionError(UnsupportedType, ing.path, "nesting too deep, more than %d levels", MaxDepth)
	}
	n := seq.Len()
	if n == 0 {
		if depth == 0 {
			return nil, nil, ingestionError(EmptyInput, ing.path, "cannot create a tensor from an empty sequence")
		}
		return nil, nil, ingestionError(EmptyNestedSequence, ing.path, "nested sequences cannot be empty")
	}

	var (
		firstKind  sequence.Kind
		firstInner []int // Sub-shape of the first element, if it is a sequence.
	)
	flat = make([]float64, 0, n)
	for i := range n {
		ing.path = append(ing.path, i)
		elem, err := seq.At(i)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to read element at %v", ing.path)
		}

		kind := elem.Kind()
		if kind == sequence.KindUnsupported {
			return nil, nil, ingestionError(UnsupportedType, ing.path,
				"element of type %s is neither a number nor a sequence", elem.TypeName())
		}
		if i == 0 {
			firstKind = kind
		} else if kind != firstKind {
			return nil, nil, ingestionError(JaggedArray, ing.path,
				"element is a %s but the first element of its sequence is a %s", kind, firstKind)
		}

		if kind == sequence.KindScalar {
			flat = append(flat, elem.Float())
		} else {
			innerFlat, innerDims, err := ing.ingest(elem.Sequence())
			if err != nil {
				return nil, nil, err
			}
			if i == 0 {
				firstInner = innerDims
				flat = slices.Grow(flat, n*len(innerFlat))
			} else if !slices.Equal(innerDims, firstInner) {
				jagged := ingestionError(JaggedArray, ing.path,
					"expected sub-shape %v (from the first sibling), got %v", firstInner, innerDims)
				jagged.Expected = shapes.Shape{Dimensions: firstInner}
				jagged.Actual = shapes.Shape{Dimensions: innerDims}
				return nil, nil, jagged
			}
			flat = append(flat, innerFlat...)
		}
		ing.path = ing.path[:depth]
	}

	return flat, shapes.Shape{Dimensions: firstInner}.Prepend(n).Dimensions, nil
}
