// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/webnnpart/pkg/core/graph"
	"github.com/gomlx/webnnpart/pkg/core/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addNode adds a node with a single output to g.
func addNode(g *graph.Graph, opType string, attrs graph.Attributes, output *graph.NodeArg, inputs ...*graph.NodeArg) *graph.Node {
	return g.AddNode(opType, "node_"+opType, inputs, []*graph.NodeArg{output}, attrs)
}

func arg(name string, dtype dtypes.DType, dims ...int) *graph.NodeArg {
	return graph.NewArg(name, dtype, dims...)
}

func TestOpBuilders(t *testing.T) {
	int64s := func(g *graph.Graph, name string, values ...int64) *graph.NodeArg {
		return g.AddInitializer(name, graph.FromFlat(values, len(values)))
	}
	boolArg := func(name string, dims ...int) *graph.NodeArg { return arg(name, dtypes.Bool, dims...) }

	tests := []struct {
		name   string
		device DeviceType
		build  func(g *graph.Graph)
		want   bool
	}{
		{"add_broadcast", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Add", nil, f32("y", 2, 3), f32("a", 2, 3), f32("b", 3))
		}, true},
		{"add_not_broadcastable", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Add", nil, f32("y", 2, 3), f32("a", 2, 3), f32("b", 4, 3))
		}, false},
		{"add_single_input", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Add", nil, f32("y", 3), f32("a", 3))
		}, false},
		{"add_no_inputs", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Add", nil, f32("y", 3))
		}, false},
		{"where_missing_false_value", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Where", nil, f32("y", 3), boolArg("cond", 3), f32("a", 3))
		}, false},
		{"add_mixed_dtypes", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Add", nil, f32("y", 3), f32("a", 3), arg("b", dtypes.Int32, 3))
		}, false},
		{"add_float64", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Add", nil, arg("y", dtypes.Float64, 3), arg("a", dtypes.Float64, 3), arg("b", dtypes.Float64, 3))
		}, false},
		{"add_int64", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Add", nil, arg("y", dtypes.Int64, 3), arg("a", dtypes.Int64, 3), arg("b", dtypes.Int64, 3))
		}, true},
		{"relu_int32", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Relu", nil, arg("y", dtypes.Int32, 3), arg("x", dtypes.Int32, 3))
		}, false},
		{"relu_float16", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Relu", nil, arg("y", dtypes.Float16, 3), arg("x", dtypes.Float16, 3))
		}, true},
		{"relu_dynamic_input", DeviceCPU, func(g *graph.Graph) {
			x := graph.NewArgWithShape("x", dtypes.Float32, shapes.Make(shapes.DimDynamic, 3))
			addNode(g, "Relu", nil, f32("y", 2, 3), x)
		}, false},
		{"relu_unknown_dtype", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Relu", nil, f32("y", 3), arg("x", dtypes.InvalidDType, 3))
		}, false},
		{"gelu_bad_approximation", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Gelu", graph.Attributes{"approximate": "cubic"}, f32("y", 3), f32("x", 3))
		}, false},
		{"equal_outputs_bool", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Equal", nil, boolArg("y", 2, 3), f32("a", 2, 3), f32("b", 1, 3))
		}, true},
		{"and", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "And", nil, boolArg("y", 3), boolArg("a", 3), boolArg("b", 3))
		}, true},
		{"and_float", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "And", nil, boolArg("y", 3), f32("a", 3), f32("b", 3))
		}, false},
		{"not", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Not", nil, boolArg("y", 3), boolArg("x", 3))
		}, true},
		{"where", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Where", nil, f32("y", 2, 3), boolArg("c", 2, 1), f32("t", 3), f32("f", 2, 3))
		}, true},
		{"where_mixed_values", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Where", nil, f32("y", 3), boolArg("c", 3), f32("t", 3), arg("f", dtypes.Float16, 3))
		}, false},
		{"where_not_broadcastable", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Where", nil, f32("y", 3), boolArg("c", 2), f32("t", 3), f32("f", 3))
		}, false},
		{"prelu", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "PRelu", nil, f32("y", 2, 3), f32("x", 2, 3), f32("slope", 3))
		}, true},
		{"prelu_slope_too_large", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "PRelu", nil, f32("y", 2, 3), f32("x", 3), f32("slope", 2, 3))
		}, false},
		{"gemm", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Gemm", nil, f32("y", 2, 4), f32("a", 2, 3), f32("b", 3, 4), f32("c", 4))
		}, true},
		{"gemm_trans_b", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Gemm", graph.Attributes{"transB": int64(1)}, f32("y", 2, 4), f32("a", 2, 3), f32("b", 4, 3))
		}, true},
		{"gemm_mismatch", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Gemm", nil, f32("y", 2, 4), f32("a", 2, 3), f32("b", 4, 3))
		}, false},
		{"gemm_bad_c", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Gemm", nil, f32("y", 2, 4), f32("a", 2, 3), f32("b", 3, 4), f32("c", 3))
		}, false},
		{"matmul_batch", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "MatMul", nil, f32("y", 5, 2, 4), f32("a", 5, 2, 3), f32("b", 3, 4))
		}, true},
		{"matmul_mismatch", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "MatMul", nil, f32("y", 2, 3), f32("a", 2, 3), f32("b", 2, 3))
		}, false},
		{"matmul_int32", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "MatMul", nil, arg("y", dtypes.Int32, 2, 4), arg("a", dtypes.Int32, 2, 3), arg("b", dtypes.Int32, 3, 4))
		}, false},
		{"conv_constant_weight", DeviceCPU, func(g *graph.Graph) {
			w := g.AddInitializer("w", graph.FromFlat(make([]float32, 8*3*3*3), 8, 3, 3, 3))
			addNode(g, "Conv", nil, f32("y", 1, 8, 30, 30), f32("x", 1, 3, 32, 32), w)
		}, true},
		{"conv_variable_weight_cpu", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Conv", nil, f32("y", 1, 8, 30, 30), f32("x", 1, 3, 32, 32), f32("w", 8, 3, 3, 3))
		}, false},
		{"conv_variable_weight_gpu", DeviceGPU, func(g *graph.Graph) {
			addNode(g, "Conv", nil, f32("y", 1, 8, 30, 30), f32("x", 1, 3, 32, 32), f32("w", 8, 3, 3, 3))
		}, true},
		{"conv_channels_mismatch", DeviceGPU, func(g *graph.Graph) {
			addNode(g, "Conv", nil, f32("y", 1, 8, 30, 30), f32("x", 1, 4, 32, 32), f32("w", 8, 3, 3, 3))
		}, false},
		{"conv_3d", DeviceGPU, func(g *graph.Graph) {
			addNode(g, "Conv", nil, f32("y", 1, 8, 6, 6, 6), f32("x", 1, 3, 8, 8, 8), f32("w", 8, 3, 3, 3, 3))
		}, false},
		{"concat", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Concat", graph.Attributes{"axis": int64(-1)}, f32("y", 2, 7), f32("a", 2, 3), f32("b", 2, 4))
		}, true},
		{"concat_rank_mismatch", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Concat", nil, f32("y", 5, 3), f32("a", 2, 3), f32("b", 3))
		}, false},
		{"concat_mixed_dtypes", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Concat", nil, f32("y", 5, 3), f32("a", 2, 3), arg("b", dtypes.Int32, 3, 3))
		}, false},
		{"reshape", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Reshape", nil, f32("y", 3, 2), f32("x", 2, 3), int64s(g, "shape", -1, 2))
		}, true},
		{"reshape_variable_shape", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Reshape", nil, f32("y", 3, 2), f32("x", 2, 3), arg("shape", dtypes.Int64, 2))
		}, false},
		{"reshape_two_inferred", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Reshape", nil, f32("y", 3, 2), f32("x", 2, 3), int64s(g, "shape", -1, -1))
		}, false},
		{"reshape_allowzero", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Reshape", graph.Attributes{"allowzero": int64(1)}, f32("y", 6, 0), f32("x", 2, 3), int64s(g, "shape", 6, 0))
		}, false},
		{"flatten", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Flatten", graph.Attributes{"axis": int64(2)}, f32("y", 6, 4), f32("x", 2, 3, 4))
		}, true},
		{"squeeze_attribute", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Squeeze", graph.Attributes{"axes": []int64{0}}, f32("y", 3), f32("x", 1, 3))
		}, true},
		{"squeeze_constant_input", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Squeeze", nil, f32("y", 3), f32("x", 1, 3), int64s(g, "axes", -2))
		}, true},
		{"squeeze_non_unit_axis", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Squeeze", graph.Attributes{"axes": []int64{1}}, f32("y", 1), f32("x", 1, 3))
		}, false},
		{"squeeze_variable_axes", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Squeeze", nil, f32("y", 3), f32("x", 1, 3), arg("axes", dtypes.Int64, 1))
		}, false},
		{"unsqueeze", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Unsqueeze", nil, f32("y", 3, 1), f32("x", 3), int64s(g, "axes", 1))
		}, true},
		{"unsqueeze_without_axes", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Unsqueeze", nil, f32("y", 3, 1), f32("x", 3))
		}, false},
		{"expand", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Expand", nil, f32("y", 2, 3, 4), f32("x", 3, 1), int64s(g, "shape", 2, 1, 4))
		}, true},
		{"expand_not_broadcastable", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Expand", nil, f32("y", 2, 4), f32("x", 3, 1), int64s(g, "shape", 2, 4))
		}, false},
		{"cast", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Cast", graph.Attributes{"to": "Int32"}, arg("y", dtypes.Int32, 3), f32("x", 3))
		}, true},
		{"cast_to_float64", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Cast", graph.Attributes{"to": "Float64"}, arg("y", dtypes.Float64, 3), f32("x", 3))
		}, false},
		{"clip_constant_bounds", DeviceCPU, func(g *graph.Graph) {
			low := g.AddInitializer("min", graph.FromFlat([]float32{0}))
			addNode(g, "Clip", nil, f32("y", 3), f32("x", 3), low)
		}, true},
		{"clip_variable_bounds", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Clip", nil, f32("y", 3), f32("x", 3), &graph.NodeArg{}, f32("max"))
		}, false},
		{"transpose", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Transpose", graph.Attributes{"perm": []int64{1, 0, 2}}, f32("y", 3, 2, 4), f32("x", 2, 3, 4))
		}, true},
		{"transpose_bad_perm", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Transpose", graph.Attributes{"perm": []int64{1, 1, 2}}, f32("y", 3, 2, 4), f32("x", 2, 3, 4))
		}, false},
		{"softmax_axis_out_of_range", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Softmax", graph.Attributes{"axis": int64(2)}, f32("y", 2, 3), f32("x", 2, 3))
		}, false},
		{"gather", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Gather", nil, f32("y", 4, 3), f32("x", 10, 3), arg("indices", dtypes.Int64, 4))
		}, true},
		{"gather_float_indices", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Gather", nil, f32("y", 4, 3), f32("x", 10, 3), f32("indices", 4))
		}, false},
		{"gather_npu", DeviceNPU, func(g *graph.Graph) {
			addNode(g, "Gather", nil, f32("y", 4, 3), f32("x", 10, 3), arg("indices", dtypes.Int64, 4))
		}, false},
		{"pad", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Pad", nil, f32("y", 4, 5), f32("x", 2, 3), int64s(g, "pads", 1, 1, 1, 1))
		}, true},
		{"pad_variable_pads", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Pad", nil, f32("y", 4, 5), f32("x", 2, 3), arg("pads", dtypes.Int64, 4))
		}, false},
		{"pad_wrap_mode", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "Pad", graph.Attributes{"mode": "wrap"}, f32("y", 4, 5), f32("x", 2, 3), int64s(g, "pads", 1, 1, 1, 1))
		}, false},
		{"reduce_sum_constant_axes", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "ReduceSum", nil, f32("y", 2), f32("x", 2, 3), int64s(g, "axes", 1))
		}, true},
		{"reduce_sum_variable_axes", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "ReduceSum", nil, f32("y", 2), f32("x", 2, 3), arg("axes", dtypes.Int64, 1))
		}, false},
		{"reduce_mean_repeated_axes", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "ReduceMean", graph.Attributes{"axes": []int64{1, -1}}, f32("y", 2), f32("x", 2, 3))
		}, false},
		{"unknown_op_type", DeviceCPU, func(g *graph.Graph) {
			addNode(g, "LSTM", nil, f32("y", 3), f32("x", 3))
		}, false},
	}
	caps := DefaultLimits()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New(tt.name)
			tt.build(g)
			require.NoError(t, g.Finalize())
			require.Equal(t, 1, g.NumNodes())
			node := g.Node(0)
			got := CheckSingleOp(node.OpType, caps, tt.device) &&
				IsNodeSupported(node, g, tt.device, caps, logr.Discard())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpBuildersRegistry(t *testing.T) {
	opTypes := SupportedOpTypes()
	require.NotEmpty(t, opTypes)
	limits := DefaultLimits()
	for _, opType := range opTypes {
		webnnOp, found := WebNNOpType(opType)
		require.Truef(t, found, "op type %q", opType)
		assert.Truef(t, limits.IsOpImplemented(webnnOp, DeviceCPU), "default limits don't implement %q (for %q) on CPU", webnnOp, opType)
	}
	for opType := range sameInputTypesPolicy {
		assert.Containsf(t, opTypes, opType, "same input types policy for unregistered op type %q", opType)
	}
}

func TestCheckSingleOp(t *testing.T) {
	caps := DefaultLimits()
	assert.True(t, CheckSingleOp("Relu", caps, DeviceCPU))
	assert.False(t, CheckSingleOp("LSTM", caps, DeviceCPU))
	assert.False(t, CheckSingleOp("Erf", caps, DeviceNPU))

	empty := NewLimits("empty")
	assert.False(t, CheckSingleOp("Relu", empty, DeviceCPU))
}
