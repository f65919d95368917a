// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/webnnpart/pkg/core/graph"
	"k8s.io/klog/v2"
)

// opBuilder describes how nodes of one op type are checked against the WebNN capabilities.
//
// Every node goes through the same pipeline (see isOpSupported): static inputs, input dtypes,
// same input dtypes (if the op type is in sameInputTypesPolicy), output dtype and finally
// the op specific check.
type opBuilder struct {
	opType string

	// inputOperands are the WebNN operand names of the node inputs, by position. Inputs beyond
	// the list (e.g. the "shape" of Reshape, read as a constant) don't have their dtype checked.
	inputOperands []string

	// variadic means every input is checked against inputOperands[0] (e.g. Concat).
	variadic bool

	// outputOperand is the WebNN operand name of output #0.
	outputOperand string

	// check is the op specific rule. It can be nil.
	check func(c *checkContext) bool
}

// checkContext holds everything an op specific check may need.
type checkContext struct {
	builder      *opBuilder
	node         *graph.Node
	initializers InitializedTensorSet
	device       DeviceType
	caps         Capabilities
	logger       klog.Logger
}

// opBuilders is the registry of supported op types. It is populated at initialization and
// read-only afterwards.
var opBuilders = make(map[string]*opBuilder)

// sameInputTypesPolicy lists the op types whose inputs must all share one dtype, and at which
// positions. A nil list means all inputs.
var sameInputTypesPolicy = map[string][]int{
	// Binary ops.
	"Add": nil, "Sub": nil, "Mul": nil, "Div": nil, "Pow": nil, "Max": nil, "Min": nil, "PRelu": nil,

	// Comparison and logical ops (Not has a single input).
	"Equal": nil, "Greater": nil, "GreaterOrEqual": nil, "Less": nil, "LessOrEqual": nil,
	"And": nil, "Or": nil, "Xor": nil,

	// Where: only the two values, the condition is boolean.
	"Where": {1, 2},

	"Gemm": nil, "MatMul": nil,
	"Conv": nil, "ConvTranspose": nil,
	"Concat": nil,
}

// registerOpBuilder adds builder to the registry, for each of the op types.
func registerOpBuilder(builder opBuilder, opTypes ...string) {
	for _, opType := range opTypes {
		if _, found := opBuilders[opType]; found {
			exceptions.Panicf("webnn: op builder for %q registered twice", opType)
		}
		if _, found := WebNNOpType(opType); !found {
			exceptions.Panicf("webnn: op builder for %q has no WebNN op type", opType)
		}
		b := builder
		b.opType = opType
		opBuilders[opType] = &b
	}
}

// SupportedOpTypes returns the op types for which a checker is registered, sorted.
func SupportedOpTypes() []string {
	opTypes := make([]string, 0, len(opBuilders))
	for opType := range opBuilders {
		opTypes = append(opTypes, opType)
	}
	slices.Sort(opTypes)
	return opTypes
}

// isOpSupported runs the checking pipeline for node.
func (b *opBuilder) isOpSupported(initializers InitializedTensorSet, node *graph.Node, device DeviceType,
	caps Capabilities, logger klog.Logger) bool {
	for _, input := range node.Inputs {
		if !IsInputSupported(input, node.Name, logger) {
			return false
		}
	}
	c := &checkContext{builder: b, node: node, initializers: initializers, device: device, caps: caps, logger: logger}
	if !b.hasSupportedInputs(c) || !b.hasSupportedOutputs(c) {
		return false
	}
	if b.check != nil && !b.check(c) {
		return false
	}
	return true
}

func (b *opBuilder) hasSupportedInputs(c *checkContext) bool {
	node := c.node
	for ii, input := range node.Inputs {
		if !input.Exists() {
			continue
		}
		operand := ""
		switch {
		case b.variadic && len(b.inputOperands) > 0:
			operand = b.inputOperands[0]
		case ii < len(b.inputOperands):
			operand = b.inputOperands[ii]
		default:
			continue
		}
		if !IsDataTypeSupportedByOp(node.OpType, input.DType, c.caps, operand, fmt.Sprintf("input #%d", ii), c.logger) {
			return false
		}
	}
	positions, found := sameInputTypesPolicy[node.OpType]
	if !found {
		return true
	}
	var inputTypes []dtypes.DType
	for ii, input := range node.Inputs {
		if input.Exists() && (positions == nil || slices.Contains(positions, ii)) {
			inputTypes = append(inputTypes, input.DType)
		}
	}
	return AreInputDataTypesSame(node.OpType, inputTypes, c.logger)
}

func (b *opBuilder) hasSupportedOutputs(c *checkContext) bool {
	node := c.node
	if len(node.Outputs) == 0 || !node.Outputs[0].Exists() {
		return true
	}
	return IsDataTypeSupportedByOp(node.OpType, node.Outputs[0].DType, c.caps, b.outputOperand, "output", c.logger)
}

// reject logs why the node is not supported, and returns false.
func (c *checkContext) reject(msg string, keysAndValues ...any) bool {
	kv := append([]any{"op", c.node.OpType, "node", c.node.Name}, keysAndValues...)
	c.logger.V(1).Info(msg, kv...)
	return false
}

// shape returns the shape of input #ii. It returns false if the input is absent.
func (c *checkContext) shape(ii int) ([]int, bool) {
	if !c.node.HasInput(ii) {
		return nil, false
	}
	return GetShape(c.node.Inputs[ii], c.logger)
}

// rank of input #ii, or -1 if it's absent.
func (c *checkContext) rank(ii int) int {
	shape, ok := c.shape(ii)
	if !ok {
		return -1
	}
	return len(shape)
}

// isConstant returns whether input #ii is an initializer.
func (c *checkContext) isConstant(ii int) bool {
	return c.node.HasInput(ii) && c.initializers.isConstant(c.node.Inputs[ii])
}

// constantInts returns the contents of input #ii, if it is an integer initializer.
func (c *checkContext) constantInts(ii int) ([]int64, bool) {
	if !c.node.HasInput(ii) {
		return nil, false
	}
	return c.initializers.intValues(c.node.Inputs[ii])
}

// axesFromAttributeOrInput returns the "axes" attribute or, if not set, the constant input #ii.
// It returns present=false if neither is given, and ok=false if the input is given but isn't
// a constant.
func (c *checkContext) axesFromAttributeOrInput(ii int) (axes []int64, present, ok bool) {
	if axes, found := c.node.GetInts("axes"); found {
		return axes, true, true
	}
	if !c.node.HasInput(ii) {
		return nil, false, true
	}
	axes, ok = c.constantInts(ii)
	if !ok {
		c.reject("axes must be a constant", "input", c.node.Inputs[ii].Name)
		return nil, true, false
	}
	return axes, true, true
}

// normalizeAxis converts a possibly negative axis to the range [0, rank). It returns false if
// out of range.
func normalizeAxis(axis int64, rank int) (int, bool) {
	if axis < 0 {
		axis += int64(rank)
	}
	if axis < 0 || axis >= int64(rank) {
		return 0, false
	}
	return int(axis), true
}
