// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

// BroadcastShape returns the shape resulting from bidirectionally broadcasting two static shapes,
// following the NumPy/ONNX multidirectional rule: shapes are right-aligned, and on each aligned
// axis the dimensions must either match or one of them must be 1. Axes present only in the
// longer shape are copied over.
//
// The output dimension of an aligned axis is the larger of the two. It returns ok=false if
// the shapes are not broadcast-compatible, in which case output is meaningless.
func BroadcastShape(shapeA, shapeB []int) (output []int, ok bool) {
	sizeA, sizeB := len(shapeA), len(shapeB)
	smallerSize, largerSize := min(sizeA, sizeB), max(sizeA, sizeB)
	output = make([]int, largerSize)
	for ii := range largerSize {
		// Right alignment: ii counts axes from the end.
		axisA := sizeA - ii - 1
		axisB := sizeB - ii - 1
		outAxis := largerSize - ii - 1
		if ii < smallerSize {
			dimA, dimB := shapeA[axisA], shapeB[axisB]
			if dimA != dimB && dimA != 1 && dimB != 1 {
				return nil, false
			}
			output[outAxis] = max(dimA, dimB)
			continue
		}
		if sizeA > sizeB {
			output[outAxis] = shapeA[axisA]
		} else {
			output[outAxis] = shapeB[axisB]
		}
	}
	return output, true
}

// UnidirectionalBroadcastable returns whether shape `from` can be broadcast to shape `to`
// without changing `to`: `from` can't have a larger rank, and each of its right-aligned
// dimensions must either be 1 or match `to`.
func UnidirectionalBroadcastable(from, to []int) bool {
	if len(from) > len(to) {
		return false
	}
	offset := len(to) - len(from)
	for axis, dim := range from {
		if dim != 1 && dim != to[offset+axis] {
			return false
		}
	}
	return true
}
