// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/webnnpart/pkg/core/shapes"
	"github.com/pkg/errors"
)

// jsonGraph is the JSON model description. Example:
//
//	{
//	  "name": "main",
//	  "inputs": [{"name": "x", "dtype": "float32", "shape": ["batch", 3]}],
//	  "outputs": [{"name": "y", "dtype": "float32", "shape": ["batch", 3]}],
//	  "initializers": [{"name": "w", "dtype": "float32", "shape": [3], "values": [1, 2, 3]}],
//	  "nodes": [{"name": "add", "op_type": "Add", "inputs": ["x", "w"], "outputs": ["y"]}],
//	  "value_info": [],
//	  "subgraphs": []
//	}
//
// Dimensions are either numbers or strings: "?" is an unnamed dynamic axis, any other string a
// named one. A missing "shape" means the shape is unknown, an empty one a scalar.
type jsonGraph struct {
	Name         string       `json:"name"`
	Inputs       []jsonValue  `json:"inputs"`
	Outputs      []jsonValue  `json:"outputs"`
	Initializers []jsonTensor `json:"initializers"`
	ValueInfo    []jsonValue  `json:"value_info"`
	Nodes        []jsonNode   `json:"nodes"`
	Subgraphs    []*jsonGraph `json:"subgraphs"`
}

type jsonValue struct {
	Name  string `json:"name"`
	DType string `json:"dtype"`
	Shape []any  `json:"shape"`
}

type jsonTensor struct {
	Name   string    `json:"name"`
	DType  string    `json:"dtype"`
	Shape  []int     `json:"shape"`
	Values []float64 `json:"values"`
}

type jsonNode struct {
	Name       string         `json:"name"`
	OpType     string         `json:"op_type"`
	Inputs     []string       `json:"inputs"`
	Outputs    []string       `json:"outputs"`
	Attributes map[string]any `json:"attributes"`
}

// LoadJSON reads a model description from a JSON file and returns the finalized graph.
// Free dimensions (named dynamic axes) are resolved with bindings, which can be nil.
func LoadJSON(filePath string, bindings shapes.AxisBindings) (*Graph, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read model file %q", filePath)
	}
	g, err := ParseJSON(data, bindings)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to load model file %q", filePath)
	}
	return g, nil
}

// ParseJSON parses a JSON model description, see LoadJSON.
func ParseJSON(data []byte, bindings shapes.AxisBindings) (g *Graph, err error) {
	var desc jsonGraph
	if err = json.Unmarshal(data, &desc); err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON model")
	}
	// Building errors panic: convert them back to errors for malformed files.
	err = exceptions.TryCatch[error](func() {
		g = New(desc.Name)
		if err := buildFromJSON(g, &desc, nil); err != nil {
			panic(err)
		}
	})
	if err != nil {
		return nil, err
	}
	g.ResolveFreeDimensions(bindings)
	if err = g.Finalize(); err != nil {
		return nil, err
	}
	return g, nil
}

// buildFromJSON populates g. outerScope holds the values visible from enclosing graphs.
func buildFromJSON(g *Graph, desc *jsonGraph, outerScope map[string]*NodeArg) error {
	scope := make(map[string]*NodeArg, len(outerScope))
	for name, arg := range outerScope {
		scope[name] = arg
	}
	define := func(v jsonValue) (*NodeArg, error) {
		arg, err := v.toNodeArg()
		if err != nil {
			return nil, errors.WithMessagef(err, "graph %q", g.Name())
		}
		if arg.Exists() {
			scope[arg.Name] = arg
		}
		return arg, nil
	}
	for _, v := range desc.ValueInfo {
		if _, err := define(v); err != nil {
			return err
		}
	}
	for _, v := range desc.Inputs {
		arg, err := define(v)
		if err != nil {
			return err
		}
		g.AddInput(arg)
	}
	for _, t := range desc.Initializers {
		dtype, err := parseDType(t.DType)
		if err != nil {
			return errors.WithMessagef(err, "graph %q, initializer %q", g.Name(), t.Name)
		}
		tensor, err := FromValues(dtype, t.Shape, t.Values)
		if err != nil {
			return errors.WithMessagef(err, "graph %q, initializer %q", g.Name(), t.Name)
		}
		scope[t.Name] = g.AddInitializer(t.Name, tensor)
	}
	lookup := func(name string) *NodeArg {
		if name == "" {
			return &NodeArg{}
		}
		arg, found := scope[name]
		if !found {
			// Intermediate value without value_info: nothing is known about it.
			arg = NewArgNoShape(name, dtypes.InvalidDType)
			scope[name] = arg
		}
		return arg
	}
	for _, v := range desc.Outputs {
		arg, err := define(v)
		if err != nil {
			return err
		}
		g.AddOutput(arg)
	}
	for _, n := range desc.Nodes {
		inputs := make([]*NodeArg, len(n.Inputs))
		for ii, name := range n.Inputs {
			inputs[ii] = lookup(name)
		}
		outputs := make([]*NodeArg, len(n.Outputs))
		for ii, name := range n.Outputs {
			outputs[ii] = lookup(name)
		}
		g.AddNode(n.OpType, n.Name, inputs, outputs, n.Attributes)
	}
	for _, subDesc := range desc.Subgraphs {
		if err := buildFromJSON(g.NewSubgraph(subDesc.Name), subDesc, scope); err != nil {
			return err
		}
	}
	return nil
}

func (v jsonValue) toNodeArg() (*NodeArg, error) {
	dtype := dtypes.InvalidDType
	if v.DType != "" {
		var err error
		if dtype, err = parseDType(v.DType); err != nil {
			return nil, errors.WithMessagef(err, "value %q", v.Name)
		}
	}
	if v.Shape == nil {
		return NewArgNoShape(v.Name, dtype), nil
	}
	axes := make([]any, len(v.Shape))
	for ii, dim := range v.Shape {
		switch d := dim.(type) {
		case float64:
			if d < 0 || d != float64(int(d)) {
				return nil, errors.Errorf("value %q: invalid dimension %v for axis #%d", v.Name, d, ii)
			}
			axes[ii] = int(d)
		case string:
			if d == "?" {
				axes[ii] = shapes.DimDynamic
			} else {
				axes[ii] = d
			}
		default:
			return nil, errors.Errorf("value %q: invalid dimension %v (%T) for axis #%d", v.Name, dim, dim, ii)
		}
	}
	return NewArgWithShape(v.Name, dtype, shapes.MakeDynamic(axes...)), nil
}

// parseDType accepts dtype names in any case, e.g. "float32", "Float32" or "F32".
func parseDType(name string) (dtypes.DType, error) {
	if dtype, found := dtypes.MapOfNames[name]; found {
		return dtype, nil
	}
	for key, dtype := range dtypes.MapOfNames {
		if strings.EqualFold(key, name) {
			return dtype, nil
		}
	}
	return dtypes.InvalidDType, errors.Errorf("unknown dtype %q", name)
}
