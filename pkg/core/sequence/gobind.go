// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package sequence

import (
	"reflect"

	"github.com/gomlx/ndarray/pkg/core/dtypes"
	"github.com/pkg/errors"
)

// FromGo converts a Go value to an Element.
//
//   - Slices and arrays (of any element type, including `[]any`) are sequences. They are read lazily,
//     nothing is copied.
//   - Integers, unsigned integers, floats (including float16.Float16) and named types based on them are
//     scalars, converted to float64.
//   - Pointers and interfaces are dereferenced.
//   - Elements and Sequences are taken as is.
//   - Anything else (nil, bool, string, complex, map, struct, ...) is an unsupported Element, with the Go type
//     name as its TypeName.
func FromGo(value any) Element {
	switch v := value.(type) {
	case Element:
		return v
	case Sequence:
		return Nested(v)
	case []float64:
		return Nested(Float64s(v))
	case float64:
		return Scalar(v)
	}
	return fromReflect(reflect.ValueOf(value))
}

func fromReflect(v reflect.Value) Element {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return Unsupported("nil")
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return Unsupported("nil")
	}
	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case Element:
			return x
		case []float64:
			return Nested(Float64s(x))
		}
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return Nested(reflectSequence{v: v})
	}
	if value, ok := dtypes.ToFloat64(v); ok {
		return Scalar(value)
	}
	return Unsupported(v.Type().String())
}

// reflectSequence is a Sequence over a Go slice or array.
type reflectSequence struct {
	v reflect.Value
}

// Len implements Sequence.
func (s reflectSequence) Len() int { return s.v.Len() }

// At implements Sequence.
func (s reflectSequence) At(i int) (Element, error) {
	if i < 0 || i >= s.v.Len() {
		return Element{}, errors.Errorf("sequence index %d out of range for length %d", i, s.v.Len())
	}
	return fromReflect(s.v.Index(i)), nil
}
