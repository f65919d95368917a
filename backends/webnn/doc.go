// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package webnn decides which parts of a model graph can be delegated to a WebNN backend, and
// partitions the graph accordingly.
//
// A WebNN context only implements a subset of the operations, accepts a subset of data types for
// each operand of each operation, and requires fully static shapes. Its support matrix is
// described by a Capabilities object (see Limits for a concrete implementation, and LoadLimits
// to read one from a file).
//
// The entry point is GetSupportedNodes: it walks a graph.Viewer in topological order and returns
// the maximal groups of consecutive supported nodes. Each group can be compiled into one WebNN
// graph, while the remaining nodes fall back to the default execution. GetCapability further
// describes each group (name, inputs and outputs) for the caller, and Partitioner adds metrics
// and concurrent partitioning of many graphs.
//
// Nothing in this package fails: every check returns a boolean, and the reasons a node is not
// supported are reported to the klog.Logger (a logr.Logger) given, at verbosity 1.
package webnn
