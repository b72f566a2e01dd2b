// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"fmt"
	"strings"

	"github.com/gomlx/ndarray/pkg/core/shapes"
)

// ErrorKind classifies the failures reported by this package.
type ErrorKind int

const (
	// EmptyInput: the top-level sequence has no elements.
	EmptyInput ErrorKind = iota + 1

	// EmptyNestedSequence: a sequence below the top level has no elements.
	EmptyNestedSequence

	// JaggedArray: sibling elements disagree on their kind (scalar vs. sequence) or on their sub-shape.
	JaggedArray

	// UnsupportedType: an element is neither a numeric scalar nor a sequence.
	UnsupportedType

	// ShapeMismatch: a shape doesn't match the data length, or operands of an elementwise operation
	// have different shapes.
	ShapeMismatch

	// IndexOutOfBounds: element indices don't address an element of the tensor.
	IndexOutOfBounds
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case EmptyInput:
		return "empty input"
	case EmptyNestedSequence:
		return "empty nested sequence"
	case JaggedArray:
		return "jagged array"
	case UnsupportedType:
		return "unsupported type"
	case ShapeMismatch:
		return "shape mismatch"
	case IndexOutOfBounds:
		return "index out of bounds"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the error returned for all failures classified by ErrorKind.
//
// Use errors.Is with one of the sentinel values (ErrEmptyInput, ErrJaggedArray, ...) to test for the kind,
// and errors.As to access the details:
//
//	var tErr *tensors.Error
//	if errors.As(err, &tErr) && tErr.Kind == tensors.JaggedArray {
//		fmt.Printf("expected sub-shape %s, got %s at %v\n", tErr.Expected, tErr.Actual, tErr.Path)
//	}
type Error struct {
	Kind ErrorKind

	// Path holds the indices, from the root of the nested input, of the sequence or element where
	// ingestion failed. It is nil for errors not raised during ingestion.
	Path []int

	// Expected and Actual shapes in conflict: the first and the deviating sub-shapes for JaggedArray,
	// the operands' shapes for ShapeMismatch in elementwise operations.
	// Expected is also the shape of the tensor indexed for IndexOutOfBounds.
	Expected, Actual shapes.Shape

	// Index holds the offending indices for IndexOutOfBounds.
	Index []int

	// Length of the data given for ShapeMismatch in FromFlat. It is compared to Expected.Size().
	Length int

	// Reason is a human-readable description of the failure.
	Reason string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if e.Path != nil {
		if len(e.Path) == 0 {
			sb.WriteString(" at top level")
		} else {
			_, _ = fmt.Fprintf(&sb, " at %v", e.Path)
		}
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	return sb.String()
}

// Is reports whether target is an *Error of the same Kind, so the sentinel values match any
// error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinel errors, one per ErrorKind, to be used with errors.Is.
var (
	ErrEmptyInput          = &Error{Kind: EmptyInput}
	ErrEmptyNestedSequence = &Error{Kind: EmptyNestedSequence}
	ErrJaggedArray         = &Error{Kind: JaggedArray}
	ErrUnsupportedType     = &Error{Kind: UnsupportedType}
	ErrShapeMismatch       = &Error{Kind: ShapeMismatch}
	ErrIndexOutOfBounds    = &Error{Kind: IndexOutOfBounds}
)

// ingestionError creates an *Error for a failure at the given path, which is copied.
func ingestionError(kind ErrorKind, path []int, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Path:   append(make([]int, 0, len(path)), path...),
		Reason: fmt.Sprintf(format, args...),
	}
}
