// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"reflect"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/webnnpart/pkg/core/shapes"
	"github.com/pkg/errors"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// Tensor holds the contents of a constant (an initializer) of the graph, stored as a flat Go
// slice in row-major order.
type Tensor struct {
	DType      dtypes.DType
	Dimensions []int
	flat       any
}

// FromFlat creates a Tensor from a flat slice with the given dimensions. A scalar has no dimensions.
//
// It panics if the number of elements doesn't match the dimensions.
func FromFlat[T dtypes.Supported](flat []T, dimensions ...int) *Tensor {
	t := &Tensor{
		DType:      dtypes.FromGenericsType[T](),
		Dimensions: slices.Clone(dimensions),
		flat:       slices.Clone(flat),
	}
	if t.Size() != len(flat) {
		exceptions.Panicf("graph.FromFlat(): %d elements given for dimensions %v (size %d)",
			len(flat), dimensions, t.Size())
	}
	return t
}

// FromValues creates a Tensor of the given dtype converting values (e.g. decoded from JSON).
func FromValues(dtype dtypes.DType, dimensions []int, values []float64) (*Tensor, error) {
	size := shapes.Make(dimensions...).Size()
	if size < 0 {
		return nil, errors.Errorf("tensor dimensions %v must be static", dimensions)
	}
	if size != len(values) {
		return nil, errors.Errorf("%d values given for tensor of dimensions %v (size %d)", len(values), dimensions, size)
	}
	switch dtype {
	case dtypes.Float32:
		return FromFlat(convertValues(values, func(v float64) float32 { return float32(v) }), dimensions...), nil
	case dtypes.Float64:
		return FromFlat(values, dimensions...), nil
	case dtypes.Float16:
		return FromFlat(convertValues(values, func(v float64) float16.Float16 { return float16.Fromfloat32(float32(v)) }), dimensions...), nil
	case dtypes.Int64:
		return FromFlat(convertValues(values, func(v float64) int64 { return int64(v) }), dimensions...), nil
	case dtypes.Int32:
		return FromFlat(convertValues(values, func(v float64) int32 { return int32(v) }), dimensions...), nil
	case dtypes.Int8:
		return FromFlat(convertValues(values, func(v float64) int8 { return int8(v) }), dimensions...), nil
	case dtypes.Uint8:
		return FromFlat(convertValues(values, func(v float64) uint8 { return uint8(v) }), dimensions...), nil
	case dtypes.Uint32:
		return FromFlat(convertValues(values, func(v float64) uint32 { return uint32(v) }), dimensions...), nil
	case dtypes.Uint64:
		return FromFlat(convertValues(values, func(v float64) uint64 { return uint64(v) }), dimensions...), nil
	case dtypes.Bool:
		return FromFlat(convertValues(values, func(v float64) bool { return v != 0 }), dimensions...), nil
	}
	return nil, errors.Errorf("tensor values of dtype %s are not supported", dtype)
}

func convertValues[T any](values []float64, convert func(float64) T) []T {
	out := make([]T, len(values))
	for ii, v := range values {
		out[ii] = convert(v)
	}
	return out
}

// Shape returns the (static) shape of the tensor.
func (t *Tensor) Shape() shapes.Shape {
	return shapes.Make(t.Dimensions...)
}

// Size returns the number of elements.
func (t *Tensor) Size() int {
	return t.Shape().Size()
}

// Memory returns the number of bytes used by the tensor contents.
func (t *Tensor) Memory() uintptr {
	return uintptr(t.Size()) * t.DType.Memory()
}

// Flat returns the underlying flat slice, e.g. []float32. It should not be modified.
func (t *Tensor) Flat() any {
	return t.flat
}

// Int64s returns the contents of an integer tensor converted to int64. Shape-like operands
// (e.g. of Reshape or Expand) are read with it.
func (t *Tensor) Int64s() ([]int64, error) {
	switch flat := t.flat.(type) {
	case []int64:
		return slices.Clone(flat), nil
	case []int32:
		return convertInts(flat), nil
	case []int8:
		return convertInts(flat), nil
	case []uint8:
		return convertInts(flat), nil
	case []uint32:
		return convertInts(flat), nil
	}
	return nil, errors.Errorf("cannot read tensor of dtype %s (Go type %s) as integers", t.DType, reflect.TypeOf(t.flat))
}

func convertInts[T constraints.Integer](flat []T) []int64 {
	out := make([]int64, len(flat))
	for ii, v := range flat {
		out[ii] = int64(v)
	}
	return out
}
