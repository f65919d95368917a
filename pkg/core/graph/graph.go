// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package graph holds an in-memory, read-only view of a model graph: a directed acyclic graph of
// operation nodes (Node) connected by named tensor values (NodeArg).
//
// It is the model representation consumed by graph partitioners (see package backends/webnn),
// which only read graphs through the Viewer interface.
//
// Graphs are built in two phases:
//
//   - Graph building time: create a Graph with New (or NewSubgraph for nested graphs), and add
//     inputs, outputs, initializers and nodes. Building errors (bugs in the calling code) panic
//     with a stack trace, see package github.com/gomlx/exceptions.
//   - Finalize: validates the graph and computes its topological order. After that the graph
//     is frozen and safe for concurrent reads.
//
// Graphs can also be loaded from a JSON model description, see LoadJSON.
package graph

import (
	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/webnnpart/pkg/core/shapes"
	"github.com/pkg/errors"
)

// NodeIndex identifies a Node within its Graph. It is stable for the lifetime of the graph.
type NodeIndex int

// Viewer is the read-only view of a graph used by partitioners.
type Viewer interface {
	// Name of the graph.
	Name() string

	// Inputs declared for the graph. Optional inputs may have an empty name.
	Inputs() []*NodeArg

	// Outputs declared for the graph.
	Outputs() []*NodeArg

	// Node returns the node with the given index.
	Node(index NodeIndex) *Node

	// NodesInTopologicalOrder returns the indices of all nodes, ordered such that every node comes
	// after the nodes producing its inputs.
	NodesInTopologicalOrder() []NodeIndex

	// IsSubgraph returns whether this graph is nested in a parent graph.
	IsSubgraph() bool

	// ParentGraph returns the graph this one is nested in, or nil for a top-level graph.
	ParentGraph() Viewer

	// Initializers returns the constant tensors declared in this graph only (not its ancestors),
	// by name.
	Initializers() map[string]*Tensor

	// NestedGraphs returns the graphs nested directly in this one. Their nodes may read values of
	// the enclosing graphs.
	NestedGraphs() []Viewer
}

// Graph is the in-memory implementation of Viewer.
type Graph struct {
	name string

	// parent is a non-owning back-reference to the enclosing graph.
	parent    *Graph
	subgraphs []*Graph

	inputs, outputs []*NodeArg
	nodes           []*Node
	initializers    map[string]*Tensor

	finalized bool
	topoOrder []NodeIndex
}

// Compile-time check that Graph implements Viewer.
var _ Viewer = (*Graph)(nil)

// New creates a new top-level graph.
func New(name string) *Graph {
	return &Graph{
		name:         name,
		initializers: make(map[string]*Tensor),
	}
}

// NewSubgraph creates a graph nested in g, e.g. the body of a control-flow node.
// The subgraph is finalized together with g.
func (g *Graph) NewSubgraph(name string) *Graph {
	g.assertNotFinalized()
	sub := New(name)
	sub.parent = g
	g.subgraphs = append(g.subgraphs, sub)
	return sub
}

// Name implements Viewer.
func (g *Graph) Name() string { return g.name }

// Inputs implements Viewer.
func (g *Graph) Inputs() []*NodeArg { return g.inputs }

// Outputs implements Viewer.
func (g *Graph) Outputs() []*NodeArg { return g.outputs }

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// Nodes returns all nodes, in insertion order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Subgraphs returns the graphs nested directly in g.
func (g *Graph) Subgraphs() []*Graph { return g.subgraphs }

// NestedGraphs implements Viewer.
func (g *Graph) NestedGraphs() []Viewer {
	viewers := make([]Viewer, len(g.subgraphs))
	for ii, sub := range g.subgraphs {
		viewers[ii] = sub
	}
	return viewers
}

// Node implements Viewer.
func (g *Graph) Node(index NodeIndex) *Node {
	if int(index) < 0 || int(index) >= len(g.nodes) {
		exceptions.Panicf("graph %q: node index %d out of range (%d nodes)", g.name, index, len(g.nodes))
	}
	return g.nodes[index]
}

// IsSubgraph implements Viewer.
func (g *Graph) IsSubgraph() bool { return g.parent != nil }

// ParentGraph implements Viewer.
func (g *Graph) ParentGraph() Viewer {
	if g.parent == nil {
		// Avoid returning a non-nil interface holding a nil pointer.
		return nil
	}
	return g.parent
}

// Initializers implements Viewer.
func (g *Graph) Initializers() map[string]*Tensor { return g.initializers }

// NodesInTopologicalOrder implements Viewer. It panics if the graph has not been finalized.
func (g *Graph) NodesInTopologicalOrder() []NodeIndex {
	if !g.finalized {
		exceptions.Panicf("graph %q: NodesInTopologicalOrder() called before Finalize()", g.name)
	}
	return g.topoOrder
}

// IsFinalized returns whether Finalize was successfully called.
func (g *Graph) IsFinalized() bool { return g.finalized }

func (g *Graph) assertNotFinalized() {
	if g.finalized {
		exceptions.Panicf("graph %q is already finalized and can no longer be changed", g.name)
	}
}

// AddInput declares graph inputs. Optional (absent) inputs are represented by an empty name.
func (g *Graph) AddInput(inputs ...*NodeArg) {
	g.assertNotFinalized()
	g.inputs = append(g.inputs, inputs...)
}

// AddOutput declares graph outputs.
func (g *Graph) AddOutput(outputs ...*NodeArg) {
	g.assertNotFinalized()
	g.outputs = append(g.outputs, outputs...)
}

// AddInitializer adds a named constant tensor and returns a NodeArg referring to it.
func (g *Graph) AddInitializer(name string, tensor *Tensor) *NodeArg {
	g.assertNotFinalized()
	if name == "" {
		exceptions.Panicf("graph %q: initializers must have a name", g.name)
	}
	if _, found := g.initializers[name]; found {
		exceptions.Panicf("graph %q: initializer %q defined more than once", g.name, name)
	}
	g.initializers[name] = tensor
	shape := tensor.Shape()
	return &NodeArg{Name: name, DType: tensor.DType, Shape: &shape}
}

// AddNode appends a node to the graph and returns it. Attributes can be nil.
//
// Nodes may be added in any order: the topological order is computed by Finalize.
func (g *Graph) AddNode(opType, name string, inputs, outputs []*NodeArg, attributes Attributes) *Node {
	g.assertNotFinalized()
	if opType == "" {
		exceptions.Panicf("graph %q: node %q has no op type", g.name, name)
	}
	node := &Node{
		Index:      NodeIndex(len(g.nodes)),
		Name:       name,
		OpType:     opType,
		Inputs:     inputs,
		Outputs:    outputs,
		Attributes: attributes,
	}
	g.nodes = append(g.nodes, node)
	return node
}

// ResolveFreeDimensions replaces named dynamic axes of every value in the graph (and its subgraphs)
// by the given bindings. It is used to make shapes static before partitioning, for models
// exported with symbolic axes like "batch".
func (g *Graph) ResolveFreeDimensions(bindings shapes.AxisBindings) {
	g.assertNotFinalized()
	if len(bindings) == 0 {
		return
	}
	visited := make(map[*NodeArg]bool)
	resolve := func(args []*NodeArg) {
		for _, arg := range args {
			if arg == nil || arg.Shape == nil || visited[arg] {
				continue
			}
			visited[arg] = true
			resolved := arg.Shape.Resolve(bindings)
			arg.Shape = &resolved
		}
	}
	resolve(g.inputs)
	resolve(g.outputs)
	for _, node := range g.nodes {
		resolve(node.Inputs)
		resolve(node.Outputs)
	}
	for _, sub := range g.subgraphs {
		sub.ResolveFreeDimensions(bindings)
	}
}

// Finalize validates the graph, computes its topological order and freezes it (along with its
// subgraphs). It returns an error if a value is produced by more than one node, or if the graph
// has a cycle.
//
// The topological order is stable: among nodes whose inputs are ready, the one added first comes
// first. So a graph whose nodes were added in a valid order keeps that order.
func (g *Graph) Finalize() error {
	if g.finalized {
		return nil
	}
	order, err := g.topologicalOrder()
	if err != nil {
		return err
	}
	for _, sub := range g.subgraphs {
		if err := sub.Finalize(); err != nil {
			return errors.WithMessagef(err, "in subgraph of %q", g.name)
		}
	}
	g.topoOrder = order
	g.finalized = true
	return nil
}

// topologicalOrder implements Kahn's algorithm, using a min-heap on the node index to keep the
// order stable.
func (g *Graph) topologicalOrder() ([]NodeIndex, error) {
	producers := make(map[string]NodeIndex, len(g.nodes))
	for _, node := range g.nodes {
		for _, output := range node.Outputs {
			if !output.Exists() {
				continue
			}
			if other, found := producers[output.Name]; found {
				return nil, errors.Errorf("graph %q: value %q is produced by both node #%d (%q) and node #%d (%q)",
					g.name, output.Name, other, g.nodes[other].Name, node.Index, node.Name)
			}
			producers[output.Name] = node.Index
		}
	}

	// Values not produced in this graph (graph inputs, initializers, outer scope values) impose no
	// ordering constraint.
	numPending := make([]int, len(g.nodes))
	consumers := make([][]NodeIndex, len(g.nodes))
	for _, node := range g.nodes {
		seen := make(map[NodeIndex]bool)
		for _, input := range node.Inputs {
			if !input.Exists() {
				continue
			}
			producer, found := producers[input.Name]
			if !found || seen[producer] {
				continue
			}
			seen[producer] = true
			numPending[node.Index]++
			consumers[producer] = append(consumers[producer], node.Index)
		}
	}

	ready := binaryheap.NewWithIntComparator()
	for ii, count := range numPending {
		if count == 0 {
			ready.Push(ii)
		}
	}
	order := make([]NodeIndex, 0, len(g.nodes))
	for !ready.Empty() {
		value, _ := ready.Pop()
		idx := NodeIndex(value.(int))
		order = append(order, idx)
		for _, consumer := range consumers[idx] {
			numPending[consumer]--
			if numPending[consumer] == 0 {
				ready.Push(int(consumer))
			}
		}
	}
	if len(order) != len(g.nodes) {
		for ii, count := range numPending {
			if count > 0 {
				return nil, errors.Errorf("graph %q has a cycle involving node #%d (%q, %s)",
					g.name, ii, g.nodes[ii].Name, g.nodes[ii].OpType)
			}
		}
	}
	return order, nil
}
