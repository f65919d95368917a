// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"maps"
	"slices"

	"github.com/gomlx/webnnpart/pkg/support/sets"
)

// Capabilities describes what a WebNN context supports. Implementations must be read-only, since
// they are shared by concurrent partitioning calls.
type Capabilities interface {
	// IsOpImplemented returns whether the WebNN operation (e.g. "conv2d") is implemented at all
	// on the device.
	IsOpImplemented(webnnOp string, device DeviceType) bool

	// DataTypes returns the data types accepted for the named operand (e.g. "input", "a",
	// "output") of the WebNN operation. It returns false if the operation or the operand is unknown.
	DataTypes(webnnOp, operand string) ([]DataType, bool)
}

// Limits is a table-based implementation of Capabilities, the equivalent of what a WebNN
// context reports in MLContext.opSupportLimits().
type Limits struct {
	// Name describing the limits, for reporting.
	Name string

	// Devices holds the WebNN operations implemented for each device.
	// If an operation is not listed, it is not supported.
	Devices map[DeviceType]sets.Set[string]

	// Operands holds the data types accepted per operation and operand name.
	// If not listed, no data type is accepted.
	Operands map[string]map[string][]DataType
}

var _ Capabilities = (*Limits)(nil)

// NewLimits returns empty limits: nothing is supported.
func NewLimits(name string) *Limits {
	return &Limits{
		Name:     name,
		Devices:  make(map[DeviceType]sets.Set[string]),
		Operands: make(map[string]map[string][]DataType),
	}
}

// IsOpImplemented implements Capabilities.
func (l *Limits) IsOpImplemented(webnnOp string, device DeviceType) bool {
	return l.Devices[device].Has(webnnOp)
}

// DataTypes implements Capabilities.
func (l *Limits) DataTypes(webnnOp, operand string) ([]DataType, bool) {
	dataTypes, found := l.Operands[webnnOp][operand]
	return dataTypes, found
}

// SetOp declares the webnnOp as implemented on the given devices.
func (l *Limits) SetOp(webnnOp string, devices ...DeviceType) *Limits {
	for _, device := range devices {
		ops, found := l.Devices[device]
		if !found {
			ops = sets.Make[string]()
			l.Devices[device] = ops
		}
		ops.Insert(webnnOp)
	}
	return l
}

// SetOperand sets the data types accepted by one operand of webnnOp.
func (l *Limits) SetOperand(webnnOp, operand string, dataTypes ...DataType) *Limits {
	operands, found := l.Operands[webnnOp]
	if !found {
		operands = make(map[string][]DataType)
		l.Operands[webnnOp] = operands
	}
	operands[operand] = slices.Clone(dataTypes)
	return l
}

// Clone makes a deep copy of the Limits.
func (l *Limits) Clone() *Limits {
	l2 := NewLimits(l.Name)
	for device, ops := range l.Devices {
		l2.Devices[device] = ops.Clone()
	}
	for op, operands := range l.Operands {
		l2.Operands[op] = maps.Clone(operands)
		for operand, dataTypes := range operands {
			l2.Operands[op][operand] = slices.Clone(dataTypes)
		}
	}
	return l2
}

var (
	floatTypes  = []DataType{Float32, Float16}
	signedTypes = []DataType{Float32, Float16, Int32, Int64, Int8}
	numberTypes = []DataType{Float32, Float16, Int32, Int64, Int8, Uint8, Uint32, Uint64}
	indexTypes  = []DataType{Int32, Int64, Uint32}
	boolTypes   = []DataType{Uint8}
)

// npuUnsupportedOps are left out of the NPU device in DefaultLimits.
var npuUnsupportedOps = sets.MakeWith("convTranspose2d", "erf", "gather", "logicalXor", "tan", "pad")

// DefaultLimits returns the limits of a typical WebNN implementation: every operation this
// package knows about is implemented on CPU and GPU, and most of them on NPU.
func DefaultLimits() *Limits {
	l := NewLimits("default")
	unary := func(op string, dataTypes []DataType) {
		l.SetOperand(op, "input", dataTypes...).SetOperand(op, "output", dataTypes...)
	}
	binary := func(op string, dataTypes, outputTypes []DataType) {
		l.SetOperand(op, "a", dataTypes...).SetOperand(op, "b", dataTypes...).
			SetOperand(op, "output", outputTypes...)
	}
	for _, op := range []string{"abs", "neg"} {
		unary(op, signedTypes)
	}
	for _, op := range []string{"ceil", "cos", "erf", "exp", "floor", "log", "reciprocal", "sin", "sqrt", "tan",
		"elu", "gelu", "hardSigmoid", "hardSwish", "leakyRelu", "relu", "sigmoid", "softplus", "softsign",
		"tanh", "softmax"} {
		unary(op, floatTypes)
	}
	for _, op := range []string{"identity", "expand", "reshape", "transpose", "pad", "clamp",
		"reduceMax", "reduceMin", "reduceSum", "reduceProduct"} {
		unary(op, numberTypes)
	}
	unary("reduceMean", floatTypes)
	unary("cast", numberTypes)
	for _, op := range []string{"add", "sub", "mul", "div", "max", "min", "pow"} {
		binary(op, numberTypes, numberTypes)
	}
	for _, op := range []string{"equal", "greater", "greaterOrEqual", "lesser", "lesserOrEqual"} {
		binary(op, numberTypes, boolTypes)
	}
	for _, op := range []string{"logicalAnd", "logicalOr", "logicalXor"} {
		binary(op, boolTypes, boolTypes)
	}
	l.SetOperand("logicalNot", "a", boolTypes...).SetOperand("logicalNot", "output", boolTypes...)
	l.SetOperand("prelu", "input", signedTypes...).SetOperand("prelu", "slope", signedTypes...).
		SetOperand("prelu", "output", signedTypes...)
	l.SetOperand("where", "condition", boolTypes...).
		SetOperand("where", "trueValue", numberTypes...).
		SetOperand("where", "falseValue", numberTypes...).
		SetOperand("where", "output", numberTypes...)
	binary("matmul", floatTypes, floatTypes)
	binary("gemm", floatTypes, floatTypes)
	l.SetOperand("gemm", "c", floatTypes...)
	for _, op := range []string{"conv2d", "convTranspose2d"} {
		l.SetOperand(op, "input", floatTypes...).SetOperand(op, "filter", floatTypes...).
			SetOperand(op, "bias", floatTypes...).SetOperand(op, "output", floatTypes...)
	}
	l.SetOperand("concat", "inputs", numberTypes...).SetOperand("concat", "output", numberTypes...)
	l.SetOperand("gather", "input", numberTypes...).SetOperand("gather", "indices", indexTypes...).
		SetOperand("gather", "output", numberTypes...)

	for op := range l.Operands {
		l.SetOp(op, DeviceCPU, DeviceGPU)
		if !npuUnsupportedOps.Has(op) {
			l.SetOp(op, DeviceNPU)
		}
	}
	return l
}
