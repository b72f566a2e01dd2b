// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package xslices provide missing functionality to the slices package.
package xslices

import (
	"math"
	"reflect"

	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"
)

// Copy creates a new (shallow) copy of T. A short cut to a call to `make` and then `copy`.
// It returns nil for an empty slice.
func Copy[T any](slice []T) []T {
	if len(slice) == 0 {
		return nil
	}
	slice2 := make([]T, len(slice))
	copy(slice2, slice)
	return slice2
}

// FillSlice with fill the slice with the given value.
func FillSlice[T any](slice []T, value T) {
	// Apparently, the fastest way is by using copy.
	if len(slice) == 0 {
		return
	}
	slice[0] = value
	for filled := 1; filled < len(slice); filled *= 2 {
		copy(slice[filled:], slice[:filled])
	}
}

// Iota returns a slice of incremental values, starting with start and of length len.
// Eg: Iota(3.0, 2) -> []float64{3.0, 4.0}
func Iota[T constraints.Integer | constraints.Float](start T, len int) (slice []T) {
	slice = make([]T, len)
	for ii := range slice {
		slice[ii] = start + T(ii)
	}
	return
}

// SlicesInDelta checks whether multidimensional slices s0 and s1 have the same shape,
// and that each of their values are within the given delta. Works with any real numeric
// types: values are compared as float64.
//
// If delta <= 0, it checks for equality. NaN values are never equal, not even to NaN.
func SlicesInDelta(s0, s1 any, delta float64) bool {
	float64Type := reflect.TypeOf(delta)
	cmpFn := func(e0, e1 any) bool {
		e0v, e1v := reflect.ValueOf(e0), reflect.ValueOf(e1)
		if !e0v.CanConvert(float64Type) || !e1v.CanConvert(float64Type) {
			// Not numeric, fall back to exact comparison.
			return reflect.DeepEqual(e0, e1)
		}
		f0, f1 := e0v.Convert(float64Type).Float(), e1v.Convert(float64Type).Float()
		if f0 == f1 {
			return true
		}
		if delta <= 0 {
			return false
		}
		return math.Abs(f0-f1) <= delta
	}
	return DeepSliceCmp(s0, s1, cmpFn)
}

// DeepSliceCmp returns false if the slices given are of different shapes, or if the given cmpFn on each element
// returns false.
func DeepSliceCmp(s0, s1 any, cmpFn func(e0, e1 any) bool) bool {
	return recursiveDeepSliceCmp(reflect.ValueOf(s0), reflect.ValueOf(s1), cmpFn)
}

func recursiveDeepSliceCmp(s0, s1 reflect.Value, cmpFn func(e0, e1 any) bool) bool {
	if !s0.IsValid() || !s1.IsValid() {
		return false
	}
	if s0.Type().Kind() != s1.Type().Kind() {
		klog.V(2).Infof("xslices.DeepSliceCmp: kinds are different: %s, %s", s0.Type().Kind(), s1.Type().Kind())
		return false
	}
	if s0.Type().Kind() != reflect.Slice {
		return cmpFn(s0.Interface(), s1.Interface())
	}
	if s0.Len() != s1.Len() {
		return false
	}
	for ii := 0; ii < s0.Len(); ii++ {
		if !recursiveDeepSliceCmp(s0.Index(ii), s1.Index(ii), cmpFn) {
			return false
		}
	}
	return true
}
