// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"github.com/gomlx/webnnpart/pkg/core/graph"
	"k8s.io/klog/v2"
)

// GetSupportedNodes returns the maximal groups of consecutive (in topological order) nodes of g
// supported by the WebNN context on the device.
//
// Each group is a run of supported nodes, terminated by an unsupported node or the end of the
// graph. Groups are never empty, and both the nodes within a group and the groups themselves
// follow the topological order.
//
// If any of the graph inputs doesn't have a static shape, no group is returned: nothing is
// delegated to WebNN.
func GetSupportedNodes(g graph.Viewer, device DeviceType, caps Capabilities, logger klog.Logger) [][]graph.NodeIndex {
	return getSupportedNodes(g, device, caps, logger, nil)
}

// getSupportedNodes implements GetSupportedNodes. If observe is not nil, it is called with the
// decision for each node.
func getSupportedNodes(g graph.Viewer, device DeviceType, caps Capabilities, logger klog.Logger,
	observe func(node *graph.Node, supported bool)) [][]graph.NodeIndex {
	var groups [][]graph.NodeIndex
	for _, input := range g.Inputs() {
		if !IsInputSupported(input, "graph", logger) {
			return groups
		}
	}

	var group []graph.NodeIndex
	for _, nodeIdx := range g.NodesInTopologicalOrder() {
		node := g.Node(nodeIdx)
		supported := false
		// Cheap check first: is the op implemented at all?
		if CheckSingleOp(node.OpType, caps, device) {
			logger.V(1).Info("op type is implemented", "op", node.OpType, "device", device)
			supported = IsNodeSupported(node, g, device, caps, logger)
		}
		logger.V(1).Info("node support", "op", node.OpType, "index", nodeIdx, "name", node.Name,
			"supported", supported)
		if observe != nil {
			observe(node, supported)
		}
		if supported {
			group = append(group, nodeIdx)
		} else if len(group) > 0 {
			groups = append(groups, group)
			group = nil
		}
	}
	if len(group) > 0 {
		groups = append(groups, group)
	}
	return groups
}
