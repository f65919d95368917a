// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"fmt"
	"slices"

	"github.com/gomlx/webnnpart/pkg/core/graph"
	"github.com/gomlx/webnnpart/pkg/support/sets"
	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

// ComputeCapability describes one group of supported nodes, as a fused subgraph to be compiled
// by WebNN.
type ComputeCapability struct {
	// Name is unique per group, and deterministic for a given graph name.
	Name string

	// Nodes of the group, in topological order.
	Nodes []graph.NodeIndex

	// Inputs are the values consumed by the group but not produced in it (excluding constants),
	// in order of first use.
	Inputs []string

	// Outputs are the values produced by the group and used outside of it: by other nodes, by
	// nested graphs or as graph outputs. In order of production.
	Outputs []string

	// Constants are the initializers used by the group, in order of first use.
	Constants []string
}

// String implements fmt.Stringer.
func (cc *ComputeCapability) String() string {
	return fmt.Sprintf("%s: %d nodes, inputs=%q, outputs=%q, constants=%q",
		cc.Name, len(cc.Nodes), cc.Inputs, cc.Outputs, cc.Constants)
}

// GetCapability partitions g (see GetSupportedNodes) and describes each group as a
// ComputeCapability.
func GetCapability(g graph.Viewer, device DeviceType, caps Capabilities, logger klog.Logger) []*ComputeCapability {
	return computeCapabilities(g, GetSupportedNodes(g, device, caps, logger))
}

// subgraphNamespace scopes the names generated for groups.
var subgraphNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/gomlx/webnnpart"))

func computeCapabilities(g graph.Viewer, groups [][]graph.NodeIndex) []*ComputeCapability {
	if len(groups) == 0 {
		return nil
	}
	initializers := visibleInitializers(g)
	graphHash := uuid.NewSHA1(subgraphNamespace, []byte(g.Name()))

	// groupOf maps nodes to their group.
	groupOf := make(map[graph.NodeIndex]int)
	for groupIdx, group := range groups {
		for _, nodeIdx := range group {
			groupOf[nodeIdx] = groupIdx
		}
	}

	// consumers maps values to the groups consuming them, with -1 standing for nodes not in any group.
	consumers := make(map[string]sets.Set[int])
	for _, nodeIdx := range g.NodesInTopologicalOrder() {
		consumerGroup, inGroup := groupOf[nodeIdx]
		if !inGroup {
			consumerGroup = -1
		}
		for _, input := range g.Node(nodeIdx).Inputs {
			if !input.Exists() {
				continue
			}
			if consumers[input.Name] == nil {
				consumers[input.Name] = sets.Make[int]()
			}
			consumers[input.Name].Insert(consumerGroup)
		}
	}
	// Graph outputs and values read by nested graphs are used outside of any group.
	usedByGraph := outerScopeReads(g.NestedGraphs())
	for _, output := range g.Outputs() {
		if output.Exists() {
			usedByGraph.Insert(output.Name)
		}
	}
	for name := range usedByGraph {
		if consumers[name] == nil {
			consumers[name] = sets.Make[int]()
		}
		consumers[name].Insert(-1)
	}
	usedOutside := func(name string, groupIdx int) bool {
		for consumerGroup := range consumers[name] {
			if consumerGroup != groupIdx {
				return true
			}
		}
		return false
	}

	capabilities := make([]*ComputeCapability, 0, len(groups))
	for groupIdx, group := range groups {
		cc := &ComputeCapability{
			Name:  fmt.Sprintf("WEBNN_%s_%d", graphHash, groupIdx),
			Nodes: slices.Clone(group),
		}
		produced := sets.Make[string]()
		seen := sets.Make[string]()
		for _, nodeIdx := range group {
			node := g.Node(nodeIdx)
			for _, input := range node.Inputs {
				if !input.Exists() || produced.Has(input.Name) || seen.Has(input.Name) {
					continue
				}
				seen.Insert(input.Name)
				if initializers.isConstant(input) {
					cc.Constants = append(cc.Constants, input.Name)
				} else {
					cc.Inputs = append(cc.Inputs, input.Name)
				}
			}
			for _, output := range node.Outputs {
				if !output.Exists() {
					continue
				}
				produced.Insert(output.Name)
				if usedOutside(output.Name, groupIdx) {
					cc.Outputs = append(cc.Outputs, output.Name)
				}
			}
		}
		capabilities = append(capabilities, cc)
	}
	return capabilities
}

// outerScopeReads returns the names of the values the nested graphs (and their own nested graphs)
// read from enclosing scopes: those not defined in the nested graph itself.
func outerScopeReads(nested []graph.Viewer) sets.Set[string] {
	reads := sets.Make[string]()
	for _, sub := range nested {
		defined := sets.Make[string]()
		for name := range sub.Initializers() {
			defined.Insert(name)
		}
		for _, input := range sub.Inputs() {
			if input.Exists() {
				defined.Insert(input.Name)
			}
		}
		read := outerScopeReads(sub.NestedGraphs())
		for _, nodeIdx := range sub.NodesInTopologicalOrder() {
			node := sub.Node(nodeIdx)
			for _, input := range node.Inputs {
				if input.Exists() {
					read.Insert(input.Name)
				}
			}
			for _, output := range node.Outputs {
				if output.Exists() {
					defined.Insert(output.Name)
				}
			}
		}
		for _, output := range sub.Outputs() {
			if output.Exists() {
				read.Insert(output.Name)
			}
		}
		for name := range read {
			if !defined.Has(name) {
				reads.Insert(name)
			}
		}
	}
	return reads
}
