// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

// opTypeMap maps graph (ONNX) op types to the WebNN operation that implements them.
// Several graph ops may share one WebNN operation (e.g. Flatten, Squeeze and Unsqueeze are all
// reshapes).
var opTypeMap = map[string]string{
	"Abs":            "abs",
	"Add":            "add",
	"And":            "logicalAnd",
	"Cast":           "cast",
	"Ceil":           "ceil",
	"Clip":           "clamp",
	"Concat":         "concat",
	"Conv":           "conv2d",
	"ConvTranspose":  "convTranspose2d",
	"Cos":            "cos",
	"Div":            "div",
	"Elu":            "elu",
	"Equal":          "equal",
	"Erf":            "erf",
	"Exp":            "exp",
	"Expand":         "expand",
	"Flatten":        "reshape",
	"Floor":          "floor",
	"Gather":         "gather",
	"Gelu":           "gelu",
	"Gemm":           "gemm",
	"Greater":        "greater",
	"GreaterOrEqual": "greaterOrEqual",
	"HardSigmoid":    "hardSigmoid",
	"HardSwish":      "hardSwish",
	"Identity":       "identity",
	"LeakyRelu":      "leakyRelu",
	"Less":           "lesser",
	"LessOrEqual":    "lesserOrEqual",
	"Log":            "log",
	"MatMul":         "matmul",
	"Max":            "max",
	"Min":            "min",
	"Mul":            "mul",
	"Neg":            "neg",
	"Not":            "logicalNot",
	"Or":             "logicalOr",
	"PRelu":          "prelu",
	"Pad":            "pad",
	"Pow":            "pow",
	"Reciprocal":     "reciprocal",
	"ReduceMax":      "reduceMax",
	"ReduceMean":     "reduceMean",
	"ReduceMin":      "reduceMin",
	"ReduceProd":     "reduceProduct",
	"ReduceSum":      "reduceSum",
	"Relu":           "relu",
	"Reshape":        "reshape",
	"Sigmoid":        "sigmoid",
	"Sin":            "sin",
	"Softmax":        "softmax",
	"Softplus":       "softplus",
	"Softsign":       "softsign",
	"Sqrt":           "sqrt",
	"Squeeze":        "reshape",
	"Sub":            "sub",
	"Tan":            "tan",
	"Tanh":           "tanh",
	"Transpose":      "transpose",
	"Unsqueeze":      "reshape",
	"Where":          "where",
	"Xor":            "logicalXor",
}

// WebNNOpType returns the WebNN operation implementing the graph op type.
func WebNNOpType(opType string) (string, bool) {
	webnnOp, found := opTypeMap[opType]
	return webnnOp, found
}
