// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/gomlx/webnnpart/pkg/core/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamondGraph builds:
//
//	a = Relu(x)
//	b = Add(a, w)   // w is a constant
//	c = Foo(b)      // Not supported.
//	d = Add(c, a)
func diamondGraph(t *testing.T, name string) *graph.Graph {
	g := graph.New(name)
	x, a, b, c, d := f32("x", 4), f32("a", 4), f32("b", 4), f32("c", 4), f32("d", 4)
	g.AddInput(x)
	w := g.AddInitializer("w", graph.FromFlat([]float32{1, 2, 3, 4}, 4))
	g.AddNode("Relu", "A", []*graph.NodeArg{x}, []*graph.NodeArg{a}, nil)
	g.AddNode("Add", "B", []*graph.NodeArg{a, w}, []*graph.NodeArg{b}, nil)
	g.AddNode("Foo", "C", []*graph.NodeArg{b}, []*graph.NodeArg{c}, nil)
	g.AddNode("Add", "D", []*graph.NodeArg{c, a}, []*graph.NodeArg{d}, nil)
	g.AddOutput(d)
	return finalized(t, g)
}

func TestGetCapability(t *testing.T) {
	g := diamondGraph(t, "diamond")
	ccs := GetCapability(g, DeviceCPU, DefaultLimits(), logr.Discard())
	require.Len(t, ccs, 2)

	assert.Equal(t, []graph.NodeIndex{0, 1}, ccs[0].Nodes)
	assert.Equal(t, []string{"x"}, ccs[0].Inputs)
	assert.Equal(t, []string{"w"}, ccs[0].Constants)
	assert.Equal(t, []string{"a", "b"}, ccs[0].Outputs)

	assert.Equal(t, []graph.NodeIndex{3}, ccs[1].Nodes)
	assert.Equal(t, []string{"c", "a"}, ccs[1].Inputs)
	assert.Empty(t, ccs[1].Constants)
	assert.Equal(t, []string{"d"}, ccs[1].Outputs)

	assert.True(t, strings.HasPrefix(ccs[0].Name, "WEBNN_"))
	assert.True(t, strings.HasSuffix(ccs[0].Name, "_0"))
	assert.True(t, strings.HasSuffix(ccs[1].Name, "_1"))
	assert.Contains(t, ccs[0].String(), "2 nodes")

	// Names are deterministic, and depend on the graph name.
	again := GetCapability(diamondGraph(t, "diamond"), DeviceCPU, DefaultLimits(), logr.Discard())
	assert.Equal(t, ccs[0].Name, again[0].Name)
	other := GetCapability(diamondGraph(t, "other"), DeviceCPU, DefaultLimits(), logr.Discard())
	assert.NotEqual(t, ccs[0].Name, other[0].Name)
}

func TestGetCapabilityNestedGraphReads(t *testing.T) {
	g := graph.New("main")
	x, a, b := f32("x", 4), f32("a", 4), f32("b", 4)
	g.AddInput(x)
	g.AddNode("Relu", "A", []*graph.NodeArg{x}, []*graph.NodeArg{a}, nil)
	g.AddNode("Relu", "B", []*graph.NodeArg{a}, []*graph.NodeArg{b}, nil)
	g.AddOutput(b)

	// "a" is only read by the body, two levels down.
	body := g.NewSubgraph("body")
	inner := body.NewSubgraph("inner")
	c := f32("c", 4)
	inner.AddNode("Relu", "S", []*graph.NodeArg{a}, []*graph.NodeArg{c}, nil)
	inner.AddOutput(c)
	body.AddOutput(c)
	finalized(t, g)

	ccs := GetCapability(g, DeviceCPU, DefaultLimits(), logr.Discard())
	require.Len(t, ccs, 1)
	assert.Equal(t, []graph.NodeIndex{0, 1}, ccs[0].Nodes)
	assert.Equal(t, []string{"a", "b"}, ccs[0].Outputs)

	// A value the nested graph defines itself shadows the outer one.
	g2 := graph.New("shadowed")
	g2.AddInput(x)
	g2.AddNode("Relu", "A", []*graph.NodeArg{x}, []*graph.NodeArg{a}, nil)
	g2.AddNode("Relu", "B", []*graph.NodeArg{a}, []*graph.NodeArg{b}, nil)
	g2.AddOutput(b)
	body2 := g2.NewSubgraph("body")
	body2.AddInput(a)
	body2.AddNode("Relu", "S", []*graph.NodeArg{a}, []*graph.NodeArg{c}, nil)
	body2.AddOutput(c)
	finalized(t, g2)
	ccs = GetCapability(g2, DeviceCPU, DefaultLimits(), logr.Discard())
	require.Len(t, ccs, 1)
	assert.Equal(t, []string{"b"}, ccs[0].Outputs)
}

func TestGetCapabilityNothingSupported(t *testing.T) {
	g := chainGraph(t, "Foo")
	assert.Empty(t, GetCapability(g, DeviceCPU, DefaultLimits(), logr.Discard()))
}
