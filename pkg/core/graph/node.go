// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/webnnpart/pkg/core/shapes"
)

// NodeArg is a named tensor value flowing between nodes: a graph input, an initializer, or the
// output of a node.
//
// An empty Name denotes an absent optional operand.
type NodeArg struct {
	Name string

	// DType of the value, or dtypes.InvalidDType if unknown.
	DType dtypes.DType

	// Shape of the value, or nil if not even the rank is known.
	Shape *shapes.Shape
}

// NewArg returns a NodeArg with the given dtype and shape. Use shapes.DimDynamic for unknown axes.
func NewArg(name string, dtype dtypes.DType, dimensions ...int) *NodeArg {
	shape := shapes.Make(dimensions...)
	return &NodeArg{Name: name, DType: dtype, Shape: &shape}
}

// NewArgWithShape returns a NodeArg with the given shape, which may have named dynamic axes.
func NewArgWithShape(name string, dtype dtypes.DType, shape shapes.Shape) *NodeArg {
	shape = shape.Clone()
	return &NodeArg{Name: name, DType: dtype, Shape: &shape}
}

// NewArgNoShape returns a NodeArg without shape information.
func NewArgNoShape(name string, dtype dtypes.DType) *NodeArg {
	return &NodeArg{Name: name, DType: dtype}
}

// Exists returns whether the arg refers to an actual value, as opposed to an absent optional operand.
func (a *NodeArg) Exists() bool {
	return a != nil && a.Name != ""
}

// HasShape returns whether the shape (at least the rank) is known.
func (a *NodeArg) HasShape() bool {
	return a != nil && a.Shape != nil
}

// String implements fmt.Stringer.
func (a *NodeArg) String() string {
	if !a.Exists() {
		return "<absent>"
	}
	shape := "<no shape>"
	if a.Shape != nil {
		shape = a.Shape.String()
	}
	return fmt.Sprintf("%q(%s)%s", a.Name, a.DType, shape)
}

// Node is one operation of the graph.
type Node struct {
	Index NodeIndex
	Name  string

	// OpType identifies the operation, e.g. "Add", "Conv", "Reshape".
	OpType string

	// Inputs and Outputs are ordered, and may contain absent optional operands (empty names).
	Inputs, Outputs []*NodeArg

	Attributes Attributes
}

// InputDType returns the dtype of the input at position ii, or dtypes.InvalidDType if the input
// is absent.
func (n *Node) InputDType(ii int) dtypes.DType {
	if ii >= len(n.Inputs) || !n.Inputs[ii].Exists() {
		return dtypes.InvalidDType
	}
	return n.Inputs[ii].DType
}

// HasInput returns whether the optional input at position ii is present.
func (n *Node) HasInput(ii int) bool {
	return ii < len(n.Inputs) && n.Inputs[ii].Exists()
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	inputs := make([]string, len(n.Inputs))
	for ii, input := range n.Inputs {
		if input.Exists() {
			inputs[ii] = input.Name
		}
	}
	return fmt.Sprintf("#%d %s[%q](%s)", n.Index, n.OpType, n.Name, strings.Join(inputs, ", "))
}

// Attributes of a node, by name. Values are int64, float64, string or slices of those; other
// integer and float types are accepted by the getters, as are values decoded from JSON.
type Attributes map[string]any

// GetInt returns the integer attribute, or defaultValue if it is not set or not an integer.
func (n *Node) GetInt(name string, defaultValue int64) int64 {
	if v, ok := toInt64(n.Attributes[name]); ok {
		return v
	}
	return defaultValue
}

// GetFloat returns the float attribute, or defaultValue if it is not set or not a number.
func (n *Node) GetFloat(name string, defaultValue float64) float64 {
	switch v := n.Attributes[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	}
	if v, ok := toInt64(n.Attributes[name]); ok {
		return float64(v)
	}
	return defaultValue
}

// GetString returns the string attribute, or defaultValue if it is not set.
func (n *Node) GetString(name string, defaultValue string) string {
	if v, ok := n.Attributes[name].(string); ok {
		return v
	}
	return defaultValue
}

// GetInts returns the list of integers attribute, or nil and false if it is not set.
func (n *Node) GetInts(name string) ([]int64, bool) {
	switch v := n.Attributes[name].(type) {
	case []int64:
		return v, true
	case []int:
		out := make([]int64, len(v))
		for ii, x := range v {
			out[ii] = int64(x)
		}
		return out, true
	case []any:
		out := make([]int64, len(v))
		for ii, x := range v {
			var ok bool
			if out[ii], ok = toInt64(x); !ok {
				return nil, false
			}
		}
		return out, true
	}
	return nil, false
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		// Numbers decoded from JSON.
		if v == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}
