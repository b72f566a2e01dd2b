// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dtypes

import "strconv"

// DType is an enum that represents the data type of a tensor element, or of a scalar value handed over by a
// host binding.
//
// The values follow the XLA numbering used across GoMLX, so they can be exchanged with those packages.
type DType int32

const (
	// InvalidDType is used for values that are not numeric, or whose type is not known.
	InvalidDType DType = 0

	// Bool holds two-state booleans. They are not accepted as tensor values.
	Bool DType = 1

	Int8  DType = 2
	Int16 DType = 3
	Int32 DType = 4
	Int64 DType = 5

	Uint8  DType = 6
	Uint16 DType = 7
	Uint32 DType = 8
	Uint64 DType = 9

	// Float16 is IEEE 754 half precision, as implemented by github.com/x448/float16.
	Float16 DType = 10
	Float32 DType = 11

	// Float64 is the only dtype a Tensor stores.
	Float64 DType = 12

	Complex64  DType = 14
	Complex128 DType = 15
)

// Short aliases, as used by XLA.
const (
	INVALID = InvalidDType
	PRED    = Bool
	S8      = Int8
	S16     = Int16
	S32     = Int32
	S64     = Int64
	U8      = Uint8
	U16     = Uint16
	U32     = Uint32
	U64     = Uint64
	F16     = Float16
	F32     = Float32
	F64     = Float64
	C64     = Complex64
	C128    = Complex128
)

// String implements fmt.Stringer.
func (dtype DType) String() string {
	switch dtype {
	case InvalidDType:
		return "InvalidDType"
	case Bool:
		return "Bool"
	case Int8:
		return "Int8"
	case Int16:
		return "Int16"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case Uint8:
		return "Uint8"
	case Uint16:
		return "Uint16"
	case Uint32:
		return "Uint32"
	case Uint64:
		return "Uint64"
	case Float16:
		return "Float16"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case Complex64:
		return "Complex64"
	case Complex128:
		return "Complex128"
	default:
		return "DType(" + strconv.Itoa(int(dtype)) + ")"
	}
}
