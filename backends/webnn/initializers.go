// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import "github.com/gomlx/webnnpart/pkg/core/graph"

// InitializedTensorSet maps initializer names to their constant values.
type InitializedTensorSet map[string]*graph.Tensor

// CollectAllInitializedTensors returns the initializers visible in the subgraph g: its own and
// those of all its ancestors. An inner initializer shadows an outer one with the same name.
//
// It returns an empty set if g is not a subgraph.
func CollectAllInitializedTensors(g graph.Viewer) InitializedTensorSet {
	all := make(InitializedTensorSet)
	if !g.IsSubgraph() {
		return all
	}
	for current := g; current != nil; current = current.ParentGraph() {
		for name, tensor := range current.Initializers() {
			if _, found := all[name]; !found {
				all[name] = tensor
			}
		}
		if !current.IsSubgraph() {
			break
		}
	}
	return all
}

// visibleInitializers returns the initializers node checkers can rely on: the graph's own ones
// for a top-level graph, and the ones collected from all enclosing scopes for a subgraph.
func visibleInitializers(g graph.Viewer) InitializedTensorSet {
	if g.IsSubgraph() {
		return CollectAllInitializedTensors(g)
	}
	return InitializedTensorSet(g.Initializers())
}

// isConstant returns whether arg refers to an initializer.
func (s InitializedTensorSet) isConstant(arg *graph.NodeArg) bool {
	if !arg.Exists() {
		return false
	}
	_, found := s[arg.Name]
	return found
}

// intValues returns the integer contents of the initializer arg refers to, or false if it
// isn't a constant of an integer type.
func (s InitializedTensorSet) intValues(arg *graph.NodeArg) ([]int64, bool) {
	if !arg.Exists() {
		return nil, false
	}
	tensor, found := s[arg.Name]
	if !found {
		return nil, false
	}
	values, err := tensor.Int64s()
	if err != nil {
		return nil, false
	}
	return values, true
}
