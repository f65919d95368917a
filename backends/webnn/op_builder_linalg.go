// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"github.com/gomlx/webnnpart/pkg/core/shapes"
)

func init() {
	registerOpBuilder(opBuilder{inputOperands: []string{"a", "b", "c"}, outputOperand: "output", check: checkGemm},
		"Gemm")
	registerOpBuilder(opBuilder{inputOperands: []string{"a", "b"}, outputOperand: "output", check: checkMatMul},
		"MatMul")
	registerOpBuilder(opBuilder{
		inputOperands: []string{"input", "filter", "bias"},
		outputOperand: "output",
		check:         checkConv,
	}, "Conv", "ConvTranspose")
}

// checkGemm requires rank-2 operands with matching contracting dimensions, and the optional c
// broadcastable to the [M, N] result.
func checkGemm(c *checkContext) bool {
	a, okA := c.shape(0)
	b, okB := c.shape(1)
	if !okA || !okB {
		return c.reject("missing operand")
	}
	if len(a) != 2 || len(b) != 2 {
		return c.reject("operands must have rank 2", "a", a, "b", b)
	}
	m, k := a[0], a[1]
	if c.node.GetInt("transA", 0) != 0 {
		m, k = k, m
	}
	kB, n := b[0], b[1]
	if c.node.GetInt("transB", 0) != 0 {
		kB, n = n, kB
	}
	if k != kB {
		return c.reject("contracting dimensions don't match", "a", a, "b", b)
	}
	if cShape, ok := c.shape(2); ok {
		if !shapes.UnidirectionalBroadcastable(cShape, []int{m, n}) {
			return c.reject("c is not broadcastable to the result", "c", cShape, "result", []int{m, n})
		}
	}
	return true
}

// checkMatMul follows numpy.matmul: rank-1 operands are promoted to matrices and the batch
// dimensions are broadcast.
func checkMatMul(c *checkContext) bool {
	a, okA := c.shape(0)
	b, okB := c.shape(1)
	if !okA || !okB {
		return c.reject("missing operand")
	}
	if len(a) == 0 || len(b) == 0 {
		return c.reject("operands can't be scalars", "a", a, "b", b)
	}
	if len(a) == 1 {
		a = []int{1, a[0]}
	}
	if len(b) == 1 {
		b = []int{b[0], 1}
	}
	if a[len(a)-1] != b[len(b)-2] {
		return c.reject("contracting dimensions don't match", "a", a, "b", b)
	}
	if _, ok := shapes.BroadcastShape(a[:len(a)-2], b[:len(b)-2]); !ok {
		return c.reject("batch dimensions are not broadcastable", "a", a, "b", b)
	}
	return true
}

// checkConv handles 1D (rank-3) and 2D (rank-4) convolutions, in NCHW layout.
func checkConv(c *checkContext) bool {
	input, okInput := c.shape(0)
	weight, okWeight := c.shape(1)
	if !okInput || !okWeight {
		return c.reject("missing input or weight")
	}
	if len(input) != 3 && len(input) != 4 {
		return c.reject("only 1D and 2D convolutions are supported", "input", input)
	}
	if len(weight) != len(input) {
		return c.reject("input and weight ranks differ", "input", input, "weight", weight)
	}
	if c.device == DeviceCPU && !c.isConstant(1) {
		return c.reject("the weight must be a constant on CPU", "weight", c.node.Inputs[1].Name)
	}
	group := int(c.node.GetInt("group", 1))
	if group < 1 {
		return c.reject("invalid group", "group", group)
	}
	if c.node.OpType == "Conv" {
		if input[1] != weight[1]*group {
			return c.reject("input channels don't match the weight", "input", input, "weight", weight, "group", group)
		}
	} else if input[1] != weight[0] {
		return c.reject("input channels don't match the weight", "input", input, "weight", weight)
	}
	if bias, ok := c.shape(2); ok && len(bias) != 1 {
		return c.reject("bias must have rank 1", "bias", bias)
	}
	switch autoPad := c.node.GetString("auto_pad", "NOTSET"); autoPad {
	case "NOTSET", "VALID", "SAME_UPPER", "SAME_LOWER":
	default:
		return c.reject("unknown auto_pad", "auto_pad", autoPad)
	}
	return true
}
