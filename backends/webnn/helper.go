// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/webnnpart/pkg/core/graph"
	"k8s.io/klog/v2"
)

// GetShape returns a copy of the dimensions of arg. It returns false if arg has no shape.
//
// It doesn't check that the shape is static: callers only use it on values already accepted by
// IsInputSupported.
func GetShape(arg *graph.NodeArg, logger klog.Logger) ([]int, bool) {
	if !arg.HasShape() {
		logger.Info("value has no shape info", "value", arg.Name)
		return nil, false
	}
	return slices.Clone(arg.Shape.Dimensions), true
}

// IsInputSupported returns whether a value can be fed to a WebNN graph: it must have a fully
// static shape. Absent optional values (empty name) are always supported.
//
// parentName identifies the consumer, for logging (e.g. "graph", or a node name).
func IsInputSupported(input *graph.NodeArg, parentName string, logger klog.Logger) bool {
	if !input.Exists() {
		return true
	}
	if !input.HasShape() {
		logger.V(1).Info("input has no shape", "input", input.Name, "parent", parentName)
		return false
	}
	if !input.Shape.IsStatic() {
		logger.V(1).Info("dynamic shape is not supported, use free dimension overrides to set a fixed shape",
			"input", input.Name, "parent", parentName, "shape", input.Shape)
		return false
	}
	return true
}

// AreInputDataTypesSame returns whether all the given dtypes are equal. It is trivially true for
// zero or one dtypes.
func AreInputDataTypesSame(opType string, inputTypes []dtypes.DType, logger klog.Logger) bool {
	for ii := 1; ii < len(inputTypes); ii++ {
		if inputTypes[ii] != inputTypes[0] {
			logger.V(1).Info("input data types should be the same", "op", opType,
				"first", inputTypes[0], "input", ii, "dtype", inputTypes[ii])
			return false
		}
	}
	return true
}

// CheckSingleOp returns whether the WebNN context implements opType at all on the device,
// regardless of the shapes and dtypes of a particular node. It is a cheap filter applied before
// IsNodeSupported.
//
// The op type must also be known to this package: have a WebNN equivalent and a registered checker.
func CheckSingleOp(opType string, caps Capabilities, device DeviceType) bool {
	webnnOp, found := WebNNOpType(opType)
	if !found {
		return false
	}
	if _, found := opBuilders[opType]; !found {
		return false
	}
	return caps.IsOpImplemented(webnnOp, device)
}

// IsNodeSupported returns whether the specific node (with its shapes, dtypes and attributes) can
// be executed by the WebNN context on the device. Op types without a registered checker are
// not supported.
//
// The checker sees the initializers of g and, if g is a subgraph, those of its ancestors.
func IsNodeSupported(node *graph.Node, g graph.Viewer, device DeviceType, caps Capabilities, logger klog.Logger) bool {
	builder, found := opBuilders[node.OpType]
	if !found {
		return false
	}
	return builder.isOpSupported(visibleInitializers(g), node, device, caps, logger)
}
