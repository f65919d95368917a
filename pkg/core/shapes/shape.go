// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines the Shape of a tensor value flowing through a model graph, and the
// broadcasting rules used to combine two shapes.
//
// Unlike the shapes used for execution, a Shape here may be only partially known: any axis
// can be dynamic (DimDynamic), optionally carrying a symbolic name (e.g. "batch"). A shape
// whose axes are all known is "static", and only static shapes can be delegated to
// accelerators that compile graphs ahead of time.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a tensor.
//   - Axis: the index of a dimension.
//   - Dimension: the size of a tensor in one of its axes.
//   - Dynamic axis: an axis whose dimension is unknown until execution.
package shapes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
)

// DimDynamic marks an axis whose dimension is not known.
const DimDynamic = -1

// Shape of a tensor value. The zero value is a scalar (rank 0) static shape.
type Shape struct {
	// Dimensions of each axis, DimDynamic for unknown ones.
	Dimensions []int

	// AxisNames optionally holds the symbolic name of dynamic axes. If not nil, it has the
	// same length as Dimensions, and static axes have an empty name.
	AxisNames []string
}

// Make returns a static or dynamic Shape with the given dimensions.
// Use DimDynamic for unknown axes.
func Make(dimensions ...int) Shape {
	return Shape{Dimensions: slices.Clone(dimensions)}
}

// MakeDynamic returns a shape where each axis is given either as an int (its dimension) or as a
// string (the name of a dynamic axis).
//
// Example: MakeDynamic("batch", 3, 224, 224).
func MakeDynamic(axes ...any) Shape {
	s := Shape{Dimensions: make([]int, len(axes))}
	for axis, value := range axes {
		switch v := value.(type) {
		case int:
			s.Dimensions[axis] = v
		case string:
			if s.AxisNames == nil {
				s.AxisNames = make([]string, len(axes))
			}
			s.Dimensions[axis] = DimDynamic
			s.AxisNames[axis] = v
		default:
			exceptions.Panicf("shapes.MakeDynamic(): axis #%d must be an int or a string, got %T", axis, value)
		}
	}
	return s
}

// Rank of the shape, that is, the number of axes.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape has no axes.
func (s Shape) IsScalar() bool { return s.Rank() == 0 }

// IsStatic returns whether every axis has a known dimension.
func (s Shape) IsStatic() bool {
	for _, dim := range s.Dimensions {
		if dim < 0 {
			return false
		}
	}
	return true
}

// IsDynamicAxis returns whether the given axis is dynamic.
func (s Shape) IsDynamicAxis(axis int) bool {
	return s.Dimensions[axis] < 0
}

// AxisName returns the symbolic name of the axis, or "" if it has none.
func (s Shape) AxisName(axis int) string {
	if s.AxisNames == nil {
		return ""
	}
	return s.AxisNames[axis]
}

// HasNamedAxes returns whether any axis carries a symbolic name.
func (s Shape) HasNamedAxes() bool {
	for _, name := range s.AxisNames {
		if name != "" {
			return true
		}
	}
	return false
}

// Size returns the number of elements of a static shape, or -1 if the shape is dynamic.
func (s Shape) Size() int {
	size := 1
	for _, dim := range s.Dimensions {
		if dim < 0 {
			return -1
		}
		size *= dim
	}
	return size
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	return Shape{
		Dimensions: slices.Clone(s.Dimensions),
		AxisNames:  slices.Clone(s.AxisNames),
	}
}

// Equal compares dimensions and axis names.
func (s Shape) Equal(s2 Shape) bool {
	if !slices.Equal(s.Dimensions, s2.Dimensions) {
		return false
	}
	for axis := range s.Dimensions {
		if s.AxisName(axis) != s2.AxisName(axis) {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer. Dynamic axes are printed by name, or as "?".
func (s Shape) String() string {
	parts := make([]string, s.Rank())
	for axis, dim := range s.Dimensions {
		switch {
		case dim >= 0:
			parts[axis] = fmt.Sprintf("%d", dim)
		case s.AxisName(axis) != "":
			parts[axis] = s.AxisName(axis)
		default:
			parts[axis] = "?"
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}
