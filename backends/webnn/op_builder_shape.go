// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"slices"

	"github.com/gomlx/webnnpart/pkg/core/shapes"
	"github.com/gomlx/webnnpart/pkg/support/sets"
)

func init() {
	registerOpBuilder(opBuilder{inputOperands: []string{"inputs"}, variadic: true, outputOperand: "output", check: checkConcat},
		"Concat")
	registerOpBuilder(opBuilder{inputOperands: []string{"input"}, outputOperand: "output", check: checkReshape},
		"Reshape")
	registerOpBuilder(opBuilder{inputOperands: []string{"input"}, outputOperand: "output", check: checkFlatten},
		"Flatten")
	registerOpBuilder(opBuilder{inputOperands: []string{"input"}, outputOperand: "output", check: checkSqueeze},
		"Squeeze", "Unsqueeze")
	registerOpBuilder(opBuilder{inputOperands: []string{"input"}, outputOperand: "output", check: checkExpand},
		"Expand")
	registerOpBuilder(opBuilder{inputOperands: []string{"input"}, outputOperand: "output", check: checkTranspose},
		"Transpose")
	registerOpBuilder(opBuilder{inputOperands: []string{"input"}, outputOperand: "output", check: checkSoftmax},
		"Softmax")
	registerOpBuilder(opBuilder{inputOperands: []string{"input", "indices"}, outputOperand: "output", check: checkGather},
		"Gather")
	registerOpBuilder(opBuilder{inputOperands: []string{"input"}, outputOperand: "output", check: checkPad},
		"Pad")
	registerOpBuilder(opBuilder{inputOperands: []string{"input"}, outputOperand: "output", check: checkReduction},
		"ReduceMax", "ReduceMean", "ReduceMin", "ReduceProd", "ReduceSum")
}

// checkConcat requires inputs of the same rank, and a valid axis.
func checkConcat(c *checkContext) bool {
	rank := c.rank(0)
	if rank < 1 {
		return c.reject("missing or scalar input")
	}
	for ii := 1; ii < len(c.node.Inputs); ii++ {
		if r := c.rank(ii); r != rank {
			return c.reject("inputs must have the same rank", "input", ii, "rank", r, "expected", rank)
		}
	}
	if _, ok := normalizeAxis(c.node.GetInt("axis", 0), rank); !ok {
		return c.reject("axis out of range", "axis", c.node.GetInt("axis", 0), "rank", rank)
	}
	return true
}

// checkReshape requires a constant target shape. Zero-sized dimensions (allowzero=1) are not
// supported, and at most one dimension can be inferred (-1).
func checkReshape(c *checkContext) bool {
	newShape, ok := c.constantInts(1)
	if !ok {
		return c.reject("the new shape must be a constant integer tensor")
	}
	allowZero := c.node.GetInt("allowzero", 0) != 0
	numInferred := 0
	for _, dim := range newShape {
		switch {
		case dim == 0 && allowZero:
			return c.reject("zero-sized dimensions are not supported", "shape", newShape)
		case dim == -1:
			numInferred++
		case dim < -1:
			return c.reject("invalid dimension in new shape", "shape", newShape)
		}
	}
	if numInferred > 1 {
		return c.reject("at most one dimension can be inferred", "shape", newShape)
	}
	return true
}

func checkFlatten(c *checkContext) bool {
	rank := c.rank(0)
	if rank < 0 {
		return c.reject("missing input")
	}
	axis := c.node.GetInt("axis", 1)
	// The axis can be equal to the rank.
	if axis < -int64(rank) || axis > int64(rank) {
		return c.reject("axis out of range", "axis", axis, "rank", rank)
	}
	return true
}

// checkSqueeze handles Squeeze and Unsqueeze: axes, given as attribute or constant input, must be
// valid and unique. Squeezed axes must have dimension 1.
func checkSqueeze(c *checkContext) bool {
	input, ok := c.shape(0)
	if !ok {
		return c.reject("missing input")
	}
	axes, present, ok := c.axesFromAttributeOrInput(1)
	if !ok {
		return false
	}
	squeeze := c.node.OpType == "Squeeze"
	if !present {
		if squeeze {
			// Squeezes all axes of dimension 1.
			return true
		}
		return c.reject("Unsqueeze requires axes")
	}
	rank := len(input)
	if !squeeze {
		rank += len(axes)
	}
	seen := sets.Make[int]()
	for _, axis := range axes {
		normalized, ok := normalizeAxis(axis, rank)
		if !ok {
			return c.reject("axis out of range", "axis", axis, "rank", rank)
		}
		if seen.Has(normalized) {
			return c.reject("repeated axis", "axis", axis)
		}
		seen.Insert(normalized)
		if squeeze && input[normalized] != 1 {
			return c.reject("can't squeeze an axis with dimension other than 1", "axis", axis, "shape", input)
		}
	}
	return true
}

// checkExpand requires a constant target shape that broadcasts with the input.
func checkExpand(c *checkContext) bool {
	input, ok := c.shape(0)
	if !ok {
		return c.reject("missing input")
	}
	newShape, ok := c.constantInts(1)
	if !ok {
		return c.reject("the new shape must be a constant integer tensor")
	}
	dims := make([]int, len(newShape))
	for ii, dim := range newShape {
		if dim < 0 {
			return c.reject("invalid dimension in new shape", "shape", newShape)
		}
		dims[ii] = int(dim)
	}
	output, ok := shapes.BroadcastShape(input, dims)
	if !ok {
		return c.reject("input is not broadcastable to the new shape", "input", input, "shape", newShape)
	}
	if shapes.Make(output...).Size() == 0 {
		return c.reject("zero-sized outputs are not supported", "output", output)
	}
	return true
}

// checkTranspose requires perm, if given, to be a permutation of the axes.
func checkTranspose(c *checkContext) bool {
	rank := c.rank(0)
	if rank < 0 {
		return c.reject("missing input")
	}
	perm, found := c.node.GetInts("perm")
	if !found {
		// Default reverses the axes.
		return true
	}
	if len(perm) != rank {
		return c.reject("perm must have one entry per axis", "perm", perm, "rank", rank)
	}
	sorted := slices.Clone(perm)
	slices.Sort(sorted)
	for ii, axis := range sorted {
		if axis != int64(ii) {
			return c.reject("perm is not a permutation", "perm", perm)
		}
	}
	return true
}

func checkSoftmax(c *checkContext) bool {
	rank := c.rank(0)
	if rank < 1 {
		return c.reject("missing or scalar input")
	}
	if _, ok := normalizeAxis(c.node.GetInt("axis", -1), rank); !ok {
		return c.reject("axis out of range", "axis", c.node.GetInt("axis", -1), "rank", rank)
	}
	return true
}

func checkGather(c *checkContext) bool {
	rank := c.rank(0)
	if rank < 1 {
		return c.reject("missing or scalar input")
	}
	if _, ok := normalizeAxis(c.node.GetInt("axis", 0), rank); !ok {
		return c.reject("axis out of range", "axis", c.node.GetInt("axis", 0), "rank", rank)
	}
	return true
}

// checkPad requires constant pads (and constant value, if given), for one of the supported modes.
func checkPad(c *checkContext) bool {
	rank := c.rank(0)
	if rank < 0 {
		return c.reject("missing input")
	}
	switch mode := c.node.GetString("mode", "constant"); mode {
	case "constant", "reflect", "edge":
	default:
		return c.reject("unsupported pad mode", "mode", mode)
	}
	pads, ok := c.constantInts(1)
	if !ok {
		return c.reject("pads must be a constant integer tensor")
	}
	if c.node.HasInput(3) {
		return c.reject("axes input is not supported")
	}
	if len(pads) != 2*rank {
		return c.reject("pads must have two entries per axis", "pads", pads, "rank", rank)
	}
	for _, pad := range pads {
		if pad < 0 {
			return c.reject("negative pads (cropping) are not supported", "pads", pads)
		}
	}
	if c.node.HasInput(2) && !c.isConstant(2) {
		return c.reject("constant value must be a constant", "input", c.node.Inputs[2].Name)
	}
	return true
}

// checkReduction requires axes, given as attribute or constant input, to be valid and unique.
func checkReduction(c *checkContext) bool {
	rank := c.rank(0)
	if rank < 0 {
		return c.reject("missing input")
	}
	axes, _, ok := c.axesFromAttributeOrInput(1)
	if !ok {
		return false
	}
	seen := sets.Make[int]()
	for _, axis := range axes {
		normalized, ok := normalizeAxis(axis, rank)
		if !ok {
			return c.reject("axis out of range", "axis", axis, "rank", rank)
		}
		if seen.Has(normalized) {
			return c.reject("repeated axis", "axis", axis)
		}
		seen.Insert(normalized)
	}
	return true
}
