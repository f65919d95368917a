// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/webnnpart/pkg/core/shapes"
	"github.com/stretchr/testify/require"
)

const testModelJSON = `{
  "name": "main",
  "inputs": [{"name": "x", "dtype": "float32", "shape": ["batch", 3]}],
  "outputs": [{"name": "y", "dtype": "Float32", "shape": ["batch", 3]}],
  "initializers": [{"name": "w", "dtype": "float32", "shape": [3], "values": [1, 2, 3]}],
  "value_info": [{"name": "t", "dtype": "float32", "shape": ["?", 3]}],
  "nodes": [
    {"name": "relu", "op_type": "Relu", "inputs": ["t"], "outputs": ["y"]},
    {"name": "add", "op_type": "Add", "inputs": ["x", "w"], "outputs": ["t"], "attributes": {"axis": 1}}
  ],
  "subgraphs": [{
    "name": "body",
    "initializers": [{"name": "k", "dtype": "int64", "shape": [], "values": [2]}],
    "nodes": [{"name": "mul", "op_type": "Mul", "inputs": ["w", "k", ""], "outputs": ["z"]}]
  }]
}`

func TestParseJSON(t *testing.T) {
	g, err := ParseJSON([]byte(testModelJSON), shapes.AxisBindings{"batch": 1})
	require.NoError(t, err)
	require.True(t, g.IsFinalized())
	require.Equal(t, "main", g.Name())

	require.Len(t, g.Inputs(), 1)
	x := g.Inputs()[0]
	require.Equal(t, dtypes.Float32, x.DType)
	require.Equal(t, []int{1, 3}, x.Shape.Dimensions)

	// "add" must come before "relu".
	require.Equal(t, []NodeIndex{1, 0}, g.NodesInTopologicalOrder())
	add := g.Node(1)
	require.Equal(t, "Add", add.OpType)
	require.Same(t, x, add.Inputs[0])
	require.Equal(t, int64(1), add.GetInt("axis", 0))
	// Unnamed dynamic axis can't be resolved.
	require.False(t, add.Outputs[0].Shape.IsStatic())

	require.Contains(t, g.Initializers(), "w")
	ints, err := g.Initializers()["w"].Int64s()
	require.Error(t, err)
	require.Nil(t, ints)

	require.Len(t, g.Subgraphs(), 1)
	body := g.Subgraphs()[0]
	require.True(t, body.IsSubgraph())
	mul := body.Node(0)
	// Outer scope values are shared, and absent optional inputs have empty names.
	require.Equal(t, "w", mul.Inputs[0].Name)
	require.Equal(t, dtypes.Float32, mul.Inputs[0].DType)
	require.False(t, mul.Inputs[2].Exists())
	// Intermediate values with no value_info have no shape.
	require.False(t, mul.Outputs[0].HasShape())
}

func TestParseJSONErrors(t *testing.T) {
	for name, model := range map[string]string{
		"bad_json":        `{`,
		"bad_dtype":       `{"inputs": [{"name": "x", "dtype": "float128", "shape": [1]}]}`,
		"bad_dim":         `{"inputs": [{"name": "x", "dtype": "float32", "shape": [1.5]}]}`,
		"bad_values":      `{"initializers": [{"name": "w", "dtype": "int64", "shape": [2], "values": [1]}]}`,
		"no_op_type":      `{"nodes": [{"name": "n"}]}`,
		"cycle":           `{"nodes": [{"op_type": "Relu", "inputs": ["a"], "outputs": ["a"]}]}`,
		"dup_initializer": `{"initializers": [{"name": "w", "dtype": "int64", "shape": [], "values": [1]}, {"name": "w", "dtype": "int64", "shape": [], "values": [1]}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJSON([]byte(model), nil)
			require.Error(t, err)
		})
	}
}

func TestLoadJSON(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(filePath, []byte(testModelJSON), 0o644))
	g, err := LoadJSON(filePath, nil)
	require.NoError(t, err)
	require.Equal(t, "batch", g.Inputs()[0].Shape.AxisName(0))

	_, err = LoadJSON(filepath.Join(t.TempDir(), "missing.json"), nil)
	require.Error(t, err)
}
