// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"github.com/go-logr/logr"
	"github.com/gomlx/webnnpart/internal/workerspool"
	"github.com/gomlx/webnnpart/pkg/core/graph"
	"k8s.io/klog/v2"
)

// Partitioner partitions graphs for one WebNN context. It is safe for concurrent use, as long as
// the graphs are not modified.
type Partitioner struct {
	// Capabilities of the WebNN context. Shared, read-only.
	Capabilities Capabilities

	// Device to partition for.
	Device DeviceType

	// Logger receives the diagnostics of why nodes are not supported. If left zero, diagnostics
	// are discarded.
	Logger klog.Logger

	// Metrics, if not nil, counts the decisions.
	Metrics *Metrics
}

// NewPartitioner creates a Partitioner for the device, with no logging nor metrics.
func NewPartitioner(caps Capabilities, device DeviceType) *Partitioner {
	return &Partitioner{Capabilities: caps, Device: device, Logger: logr.Discard()}
}

// Result of partitioning one graph.
type Result struct {
	// Groups of supported nodes, see GetSupportedNodes.
	Groups [][]graph.NodeIndex

	// Capabilities describe each group, see GetCapability.
	Capabilities []*ComputeCapability

	// NumNodes checked, and NumSupported of them.
	NumNodes, NumSupported int
}

// Partition returns the groups of g supported by the WebNN context, with their descriptions.
func (p *Partitioner) Partition(g graph.Viewer) *Result {
	logger := p.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	logger = logger.WithValues("graph", g.Name(), "device", p.Device)
	r := &Result{}
	r.Groups = getSupportedNodes(g, p.Device, p.Capabilities, logger, func(node *graph.Node, supported bool) {
		if p.Metrics != nil {
			p.Metrics.observeNode(node.OpType, p.Device, supported)
		}
	})
	r.NumNodes = len(g.NodesInTopologicalOrder())
	for _, group := range r.Groups {
		r.NumSupported += len(group)
	}
	r.Capabilities = computeCapabilities(g, r.Groups)
	if p.Metrics != nil {
		p.Metrics.observeGraph(p.Device, r.Outcome())
	}
	return r
}

// Outcome classifies the result: ResultRejected if no node is supported, ResultPartial if only
// some are, and ResultFull otherwise. A graph without nodes is ResultFull: nothing was refused.
func (r *Result) Outcome() string {
	switch {
	case r.NumNodes == 0:
		return ResultFull
	case r.NumSupported == 0:
		return ResultRejected
	case r.NumSupported < r.NumNodes:
		return ResultPartial
	default:
		return ResultFull
	}
}

// PartitionAll partitions the graphs concurrently, using the pool, and returns the results in the
// same order. If pool is nil, a default one is used.
func (p *Partitioner) PartitionAll(graphs []graph.Viewer, pool *workerspool.Pool) []*Result {
	if pool == nil {
		pool = workerspool.New()
	}
	results := make([]*Result, len(graphs))
	pool.Run(len(graphs), func(ii int) {
		results[ii] = p.Partition(graphs[ii])
	})
	return results
}
