// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts partitioning decisions. Create it with NewMetrics.
type Metrics struct {
	// Nodes counts the nodes checked, by op type, device and whether they were supported.
	Nodes *prometheus.CounterVec

	// Graphs counts the graphs partitioned, by device and result: "rejected" if no node was
	// supported, "partial" if some were, and "full" if all of them were.
	Graphs *prometheus.CounterVec
}

// NewMetrics creates the partitioning counters and registers them with registerer, if not nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		Nodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webnn_partition_nodes_total",
				Help: "Number of graph nodes checked for WebNN support.",
			},
			[]string{"op_type", "device", "supported"},
		),
		Graphs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webnn_partition_graphs_total",
				Help: "Number of graphs partitioned for WebNN, by how much of the graph is supported.",
			},
			[]string{"device", "result"},
		),
	}
	if registerer != nil {
		registerer.MustRegister(m.Nodes, m.Graphs)
	}
	return m
}

func (m *Metrics) observeNode(opType string, device DeviceType, supported bool) {
	m.Nodes.WithLabelValues(opType, device.String(), strconv.FormatBool(supported)).Inc()
}

// Graph partitioning results, used as metric labels.
const (
	ResultRejected = "rejected"
	ResultPartial  = "partial"
	ResultFull     = "full"
)

func (m *Metrics) observeGraph(device DeviceType, result string) {
	m.Graphs.WithLabelValues(device.String(), result).Inc()
}
