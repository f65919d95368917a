// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/webnnpart/backends/webnn"
	"github.com/gomlx/webnnpart/internal/workerspool"
	"github.com/gomlx/webnnpart/pkg/core/graph"
	"github.com/gomlx/webnnpart/pkg/core/shapes"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// model is one graph to partition: a loaded model, or one of its subgraphs.
type model struct {
	// path of the file the graph was loaded from.
	path string

	// name of the graph, including the names of the enclosing graphs.
	name string

	graph *graph.Graph
}

// loadModels loads the model files, and their subgraphs if -subgraphs is set.
// Files that fail to load are reported and skipped.
func loadModels(paths []string, bindings shapes.AxisBindings) []*model {
	var bar *progressbar.ProgressBar
	if *flagProgress {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription("Loading models"),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish())
	}
	var models []*model
	for _, path := range paths {
		g, err := graph.LoadJSON(path, bindings)
		if bar != nil {
			_ = bar.Add(1)
		}
		if err != nil {
			klog.Errorf("Skipping model: %+v", err)
			continue
		}
		models = appendGraph(models, path, g.Name(), g)
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return models
}

func appendGraph(models []*model, path, name string, g *graph.Graph) []*model {
	models = append(models, &model{path: path, name: name, graph: g})
	if *flagSubgraphs {
		for _, sub := range g.Subgraphs() {
			models = appendGraph(models, path, name+"/"+sub.Name(), sub)
		}
	}
	return models
}

// partitionModels partitions all models concurrently. A failure in one model (a bug) is
// logged and yields a nil result.
func partitionModels(p *webnn.Partitioner, models []*model, pool *workerspool.Pool) []*webnn.Result {
	results := make([]*webnn.Result, len(models))
	pool.Run(len(models), func(ii int) {
		err := exceptions.TryCatch[error](func() {
			results[ii] = p.Partition(models[ii].graph)
		})
		if err != nil {
			klog.Errorf("Failed to partition %q from %q: %+v", models[ii].name, models[ii].path, err)
		}
	})
	return results
}
