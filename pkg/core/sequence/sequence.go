// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package sequence defines the values a host hands over to build a tensor: arbitrarily nested sequences
// of numeric scalars.
//
// An Element is a tagged union over {Scalar, Sequence, Unsupported}. Bindings produce Elements from their
// host representation, so the ingestion code (see package tensors) never introspects host values itself:
//
//   - FromGo: Go values, like `[][]float32{{1, 2}, {3, 4}}` or the `[]any` trees produced by encoding/json.
//   - FromJSON: JSON documents, like `[[1, 2], [3, 4]]`.
//   - List, Floats, Scalar, Number: Elements built directly in Go.
//
// Bindings don't validate shapes: an Element may describe a jagged or empty nesting, or hold values that are
// not numbers. Those are reported by the ingestion.
package sequence

import (
	"github.com/gomlx/ndarray/pkg/core/dtypes"
	"github.com/pkg/errors"
)

// Kind of an Element.
type Kind int

const (
	// KindUnsupported is a value that is neither a number nor a sequence: strings, booleans, nil, maps, etc.
	KindUnsupported Kind = iota

	// KindScalar is a numeric scalar, already converted to float64.
	KindScalar

	// KindSequence is a length-queryable, index-accessible container of Elements.
	KindSequence
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	default:
		return "unsupported"
	}
}

// Sequence is a container of Elements handed over by a host binding.
//
// Implementations must be safe to read repeatedly: Len must always return the same value, and At(i) the
// same Element for the same i.
type Sequence interface {
	// Len returns the number of elements in the sequence.
	Len() int

	// At returns the element at position i, 0 <= i < Len().
	// Bindings that decode lazily (e.g. FromJSON) return an error if the element can't be decoded.
	At(i int) (Element, error)
}

// Element is either a numeric scalar, a Sequence of Elements, or an unsupported value.
// The zero value is an unsupported element.
type Element struct {
	kind     Kind
	value    float64
	seq      Sequence
	typeName string
}

// Scalar returns a numeric scalar Element.
func Scalar(value float64) Element {
	return Element{kind: KindScalar, value: value}
}

// Number returns a numeric scalar Element for any Go integer or float value, converted to float64.
func Number[T dtypes.NumberNotComplex](value T) Element {
	return Scalar(float64(value))
}

// Nested returns an Element holding the given Sequence.
// A nil Sequence yields an unsupported Element.
func Nested(seq Sequence) Element {
	if seq == nil {
		return Unsupported("nil")
	}
	return Element{kind: KindSequence, seq: seq}
}

// Unsupported returns an Element for a value that is neither a number nor a sequence.
// typeName describes the host type, and it is used in error messages.
func Unsupported(typeName string) Element {
	return Element{kind: KindUnsupported, typeName: typeName}
}

// Kind returns the kind of the element.
func (e Element) Kind() Kind { return e.kind }

// IsScalar returns whether the element is a numeric scalar.
func (e Element) IsScalar() bool { return e.kind == KindScalar }

// IsSequence returns whether the element is a Sequence.
func (e Element) IsSequence() bool { return e.kind == KindSequence }

// Float returns the value of a scalar element. It returns 0 for other kinds.
func (e Element) Float() float64 { return e.value }

// Sequence returns the Sequence of a sequence element. It returns nil for other kinds.
func (e Element) Sequence() Sequence { return e.seq }

// TypeName describes the element's type for error messages: "float64" for scalars, "sequence" for
// sequences, and the host type name for unsupported values.
func (e Element) TypeName() string {
	switch e.kind {
	case KindScalar:
		return "float64"
	case KindSequence:
		return "sequence"
	default:
		if e.typeName == "" {
			return "unknown"
		}
		return e.typeName
	}
}

// Slice is a Sequence of Elements held in memory.
type Slice []Element

// Len implements Sequence.
func (s Slice) Len() int { return len(s) }

// At implements Sequence.
func (s Slice) At(i int) (Element, error) {
	if i < 0 || i >= len(s) {
		return Element{}, errors.Errorf("sequence index %d out of range for length %d", i, len(s))
	}
	return s[i], nil
}

// List returns a sequence Element with the given elements.
//
// Example: the 2x2 nested sequence `[[1, 2], [3, 4]]`:
//
//	e := sequence.List(sequence.Floats(1, 2), sequence.Floats(3, 4))
func List(elements ...Element) Element {
	return Nested(Slice(elements))
}

// Float64s is a Sequence of numeric scalars backed by a []float64.
type Float64s []float64

// Len implements Sequence.
func (s Float64s) Len() int { return len(s) }

// At implements Sequence.
func (s Float64s) At(i int) (Element, error) {
	if i < 0 || i >= len(s) {
		return Element{}, errors.Errorf("sequence index %d out of range for length %d", i, len(s))
	}
	return Scalar(s[i]), nil
}

// Floats returns a sequence Element of scalars.
func Floats(values ...float64) Element {
	return Nested(Float64s(values))
}
