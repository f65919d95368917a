// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/webnnpart/pkg/core/graph"
	"github.com/stretchr/testify/require"
)

// f32 returns a float32 value with the given static shape.
func f32(name string, dims ...int) *graph.NodeArg {
	return graph.NewArg(name, dtypes.Float32, dims...)
}

// logCapture collects the log lines written to its logger.
type logCapture struct {
	mu    sync.Mutex
	lines []string
}

func newLogCapture() (*logCapture, logr.Logger) {
	lc := &logCapture{}
	logger := funcr.New(func(prefix, args string) {
		lc.mu.Lock()
		defer lc.mu.Unlock()
		lc.lines = append(lc.lines, prefix+" "+args)
	}, funcr.Options{Verbosity: 1})
	return lc, logger
}

func (lc *logCapture) String() string {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return strings.Join(lc.lines, "\n")
}

// finalized finalizes g or fails the test.
func finalized(t *testing.T, g *graph.Graph) *graph.Graph {
	t.Helper()
	require.NoError(t, g.Finalize())
	return g
}

// chainGraph builds a graph applying the op types in sequence to a [2, 3] float32 input. Unary
// ops get one input, others get the previous value twice.
func chainGraph(t *testing.T, opTypes ...string) *graph.Graph {
	t.Helper()
	g := graph.New("chain")
	x := f32("x", 2, 3)
	g.AddInput(x)
	prev := x
	for ii, opType := range opTypes {
		out := f32(opType+"_out_"+string(rune('a'+ii)), 2, 3)
		inputs := []*graph.NodeArg{prev}
		if _, binary := sameInputTypesPolicy[opType]; binary {
			inputs = append(inputs, prev)
		}
		g.AddNode(opType, string(rune('A'+ii)), inputs, []*graph.NodeArg{out}, nil)
		prev = out
	}
	g.AddOutput(prev)
	return finalized(t, g)
}
