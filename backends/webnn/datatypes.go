// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"k8s.io/klog/v2"
)

// DataType is a WebNN operand data type, as used in its support limits: "float32", "int64", etc.
type DataType string

// WebNN data types.
const (
	Uint8   DataType = "uint8"
	Int8    DataType = "int8"
	Float16 DataType = "float16"
	Float32 DataType = "float32"
	Int32   DataType = "int32"
	Int64   DataType = "int64"
	Uint32  DataType = "uint32"
	Uint64  DataType = "uint64"
)

// AllDataTypes lists every WebNN data type.
var AllDataTypes = []DataType{Uint8, Int8, Float16, Float32, Int32, Int64, Uint32, Uint64}

// IsValid returns whether d is a known WebNN data type.
func (d DataType) IsValid() bool {
	return slices.Contains(AllDataTypes, d)
}

// dataTypeMap maps graph dtypes to WebNN. WebNN has no boolean type: booleans are stored as uint8.
var dataTypeMap = map[dtypes.DType]DataType{
	dtypes.Bool:    Uint8,
	dtypes.Int8:    Int8,
	dtypes.Uint8:   Uint8,
	dtypes.Float16: Float16,
	dtypes.Float32: Float32,
	dtypes.Int32:   Int32,
	dtypes.Int64:   Int64,
	dtypes.Uint32:  Uint32,
	dtypes.Uint64:  Uint64,
}

// MapDataType returns the WebNN data type for the graph dtype, or false if WebNN can't represent it.
func MapDataType(dtype dtypes.DType) (DataType, bool) {
	dataType, found := dataTypeMap[dtype]
	return dataType, found
}

// IsSupportedDataType returns whether dtype maps to a WebNN data type included in allowed.
func IsSupportedDataType(dtype dtypes.DType, allowed []DataType) bool {
	dataType, found := MapDataType(dtype)
	if !found {
		return false
	}
	return slices.Contains(allowed, dataType)
}

// IsDataTypeSupportedByOp checks whether dtype is accepted for one operand of the WebNN operation
// that opType (a graph op type) maps to.
//
// webnnOperand is the operand name in the capability object (e.g. "a", "input", "output"),
// and graphOperand is only used for logging.
func IsDataTypeSupportedByOp(opType string, dtype dtypes.DType, caps Capabilities,
	webnnOperand, graphOperand string, logger klog.Logger) bool {
	webnnOp, found := WebNNOpType(opType)
	if !found {
		return false
	}
	allowed, _ := caps.DataTypes(webnnOp, webnnOperand)
	if !IsSupportedDataType(dtype, allowed) {
		logger.V(1).Info("data type is not supported for now", "op", opType, "operand", graphOperand,
			"dtype", dtype, "allowed", allowed)
		return false
	}
	return true
}
