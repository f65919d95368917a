// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"github.com/gomlx/webnnpart/pkg/core/shapes"
)

func init() {
	registerOpBuilder(opBuilder{inputOperands: []string{"input"}, outputOperand: "output"},
		"Abs", "Ceil", "Cos", "Erf", "Exp", "Floor", "Identity", "Log", "Neg", "Reciprocal", "Sin",
		"Sqrt", "Tan")
	registerOpBuilder(opBuilder{inputOperands: []string{"a"}, outputOperand: "output"}, "Not")

	registerOpBuilder(opBuilder{inputOperands: []string{"input"}, outputOperand: "output"},
		"Elu", "HardSigmoid", "HardSwish", "LeakyRelu", "Relu", "Sigmoid", "Softplus", "Softsign", "Tanh")
	registerOpBuilder(opBuilder{inputOperands: []string{"input"}, outputOperand: "output", check: checkGelu},
		"Gelu")

	registerOpBuilder(opBuilder{inputOperands: []string{"a", "b"}, outputOperand: "output", check: checkBroadcastInputs},
		"Add", "Sub", "Mul", "Div", "Pow", "Max", "Min",
		"Equal", "Greater", "GreaterOrEqual", "Less", "LessOrEqual",
		"And", "Or", "Xor")
	registerOpBuilder(opBuilder{inputOperands: []string{"input", "slope"}, outputOperand: "output", check: checkPRelu},
		"PRelu")
	registerOpBuilder(opBuilder{
		inputOperands: []string{"condition", "trueValue", "falseValue"},
		outputOperand: "output",
		check:         checkBroadcastInputs,
	}, "Where")

	registerOpBuilder(opBuilder{inputOperands: []string{"input"}, outputOperand: "output"}, "Cast")
	registerOpBuilder(opBuilder{inputOperands: []string{"input"}, outputOperand: "output", check: checkClip}, "Clip")
}

func checkGelu(c *checkContext) bool {
	approximate := c.node.GetString("approximate", "none")
	if approximate != "none" && approximate != "tanh" {
		return c.reject("unknown Gelu approximation", "approximate", approximate)
	}
	return true
}

// checkBroadcastInputs requires all the node inputs to be multidirectionally broadcastable.
func checkBroadcastInputs(c *checkContext) bool {
	if numOperands := len(c.builder.inputOperands); len(c.node.Inputs) < numOperands {
		return c.reject("missing inputs", "expected", numOperands, "got", len(c.node.Inputs))
	}
	var broadcast []int
	for ii := range c.node.Inputs {
		shape, ok := c.shape(ii)
		if !ok {
			return c.reject("missing input", "input", ii)
		}
		if ii == 0 {
			broadcast = shape
			continue
		}
		if broadcast, ok = shapes.BroadcastShape(broadcast, shape); !ok {
			return c.reject("input shapes are not broadcastable", "input", ii, "shape", shape)
		}
	}
	return true
}

// checkPRelu requires the slope to be broadcastable to the input, without changing the input shape.
func checkPRelu(c *checkContext) bool {
	input, ok := c.shape(0)
	if !ok {
		return c.reject("missing input")
	}
	slope, ok := c.shape(1)
	if !ok {
		return c.reject("missing slope")
	}
	if !shapes.UnidirectionalBroadcastable(slope, input) {
		return c.reject("slope shape is not broadcastable to the input shape", "slope", slope, "input", input)
	}
	return true
}

// checkClip requires min and max, if given as inputs, to be constants.
func checkClip(c *checkContext) bool {
	for ii, name := range []string{"min", "max"} {
		if c.node.HasInput(ii+1) && !c.isConstant(ii+1) {
			return c.reject("Clip bound must be a constant", "bound", name, "input", c.node.Inputs[ii+1].Name)
		}
	}
	return true
}
