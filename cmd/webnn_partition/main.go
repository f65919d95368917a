// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// webnn_partition reports which parts of model graphs can be delegated to a WebNN context.
//
// Usage:
//
//	webnn_partition [flags] <model.json|directory> ...
//
// Models are JSON graph descriptions (see graph.LoadJSON). Directories are searched
// recursively for ".json" files. The WebNN context is described by
// a limits file (see webnn.LoadLimits), or the default limits if -limits is not given.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/webnnpart/backends/webnn"
	"github.com/gomlx/webnnpart/internal/workerspool"
	"github.com/gomlx/webnnpart/pkg/core/shapes"
	"github.com/gomlx/webnnpart/pkg/support/fsutil"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/klog/v2"
)

var (
	flagDevice = flag.String("device", "", fmt.Sprintf(
		"WebNN device type to partition for: cpu, gpu or npu. Defaults to $%s, or %q if not set.",
		webnn.WEBNN_DEVICE, webnn.DefaultDevice))
	flagLimits = flag.String("limits", "", "HCL (or HCL JSON, if ending in .json) file with the support "+
		"limits of the WebNN context. If empty, default limits are used.")
	flagFreeDims = flag.String("free_dims", "", "Comma-separated list of values for named free dimensions "+
		"of the models, e.g. \"batch=1,seq=128\". WebNN requires static shapes.")
	flagSubgraphs   = flag.Bool("subgraphs", false, "Also partition the nested subgraphs of the models.")
	flagGroups      = flag.Bool("groups", false, "List the groups of supported nodes of each graph.")
	flagOps         = flag.Bool("ops", false, "List the supported op types and the devices implementing them.")
	flagMetricsFile = flag.String("metrics_file", "", "If set, partitioning metrics are written to this file, "+
		"in Prometheus text format.")
	flagParallelism = flag.Int("parallelism", 0, "Number of graphs partitioned in parallel. "+
		"0 uses the number of CPUs, and -1 is unlimited.")
	flagNoColor  = flag.Bool("no_color", false, "Disable colors in the output.")
	flagProgress = flag.Bool("progress", false, "Display a progress bar while loading models.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagNoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	args := flag.Args()
	if len(args) == 0 && !*flagOps {
		klog.Errorf("Missing model files to partition. See 'webnn_partition -help'")
		os.Exit(1)
	}

	device := must.M1(webnn.DefaultDeviceType())
	if *flagDevice != "" {
		device = must.M1(webnn.ParseDeviceType(*flagDevice))
	}
	limits := webnn.DefaultLimits()
	if *flagLimits != "" {
		limits = must.M1(webnn.LoadLimits(must.M1(fsutil.ReplaceTilde(*flagLimits))))
	}
	if *flagOps {
		reportOps(limits)
	}
	if len(args) == 0 {
		return
	}

	bindings := must.M1(shapes.ParseAxisBindings(*flagFreeDims))
	var paths []string
	for _, arg := range args {
		files, err := fsutil.FindFiles(arg, ".json")
		if err != nil {
			klog.Errorf("Skipping %q: %+v", arg, err)
			continue
		}
		paths = append(paths, files...)
	}
	models := loadModels(paths, bindings)
	if len(models) == 0 {
		klog.Exitf("No model could be loaded.")
	}

	registry := prometheus.NewRegistry()
	partitioner := webnn.NewPartitioner(limits, device)
	partitioner.Logger = klog.Background()
	partitioner.Metrics = webnn.NewMetrics(registry)
	pool := workerspool.New()
	if *flagParallelism != 0 {
		pool.SetMaxParallelism(*flagParallelism)
	}
	results := partitionModels(partitioner, models, pool)
	report(limits, device, models, results)

	if *flagMetricsFile != "" {
		must.M(prometheus.WriteToTextfile(*flagMetricsFile, registry))
		klog.Infof("Metrics written to %q", *flagMetricsFile)
	}
}
