// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gomlx/webnnpart/pkg/support/sets"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pkg/errors"
)

// hclLimitsFile is the structure of a limits file. Example:
//
//	name = "my-accelerator"
//
//	device "cpu" {
//	  ops = ["add", "relu"]
//	}
//
//	op "add" {
//	  operand "a" { data_types = ["float32", "float16"] }
//	  operand "b" { data_types = ["float32", "float16"] }
//	  operand "output" { data_types = ["float32", "float16"] }
//	}
//
// The same structure can be written in HCL's JSON syntax, for files ending in ".json".
type hclLimitsFile struct {
	Name    string       `hcl:"name,optional"`
	Devices []*hclDevice `hcl:"device,block"`
	Ops     []*hclOp     `hcl:"op,block"`
}

type hclDevice struct {
	Type string   `hcl:"type,label"`
	Ops  []string `hcl:"ops"`
}

type hclOp struct {
	Name     string        `hcl:"name,label"`
	Operands []*hclOperand `hcl:"operand,block"`
}

type hclOperand struct {
	Name      string   `hcl:"name,label"`
	DataTypes []string `hcl:"data_types"`
}

// LoadLimits reads Limits from an HCL file, or an HCL JSON file if its extension is ".json".
func LoadLimits(filePath string) (*Limits, error) {
	src, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read limits file %q", filePath)
	}
	return ParseLimits(src, filePath)
}

// ParseLimits parses the contents of a limits file. The filename is used for error messages and
// to select the syntax: HCL JSON if it ends in ".json", HCL native syntax otherwise.
func ParseLimits(src []byte, filename string) (*Limits, error) {
	parser := hclparse.NewParser()
	var (
		hclFile *hcl.File
		diags   hcl.Diagnostics
	)
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		hclFile, diags = parser.ParseJSON(src, filename)
	} else {
		hclFile, diags = parser.ParseHCL(src, filename)
	}
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "failed to parse limits file %q", filename)
	}

	var parsedFile hclLimitsFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsedFile)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "failed to decode limits file %q", filename)
	}

	name := parsedFile.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	l := NewLimits(name)
	for _, device := range parsedFile.Devices {
		deviceType, err := ParseDeviceType(device.Type)
		if err != nil {
			return nil, errors.WithMessagef(err, "limits file %q", filename)
		}
		if _, found := l.Devices[deviceType]; found {
			return nil, errors.Errorf("limits file %q: device %q defined more than once", filename, device.Type)
		}
		l.Devices[deviceType] = sets.MakeWith(device.Ops...)
	}
	for _, op := range parsedFile.Ops {
		if _, found := l.Operands[op.Name]; found {
			return nil, errors.Errorf("limits file %q: op %q defined more than once", filename, op.Name)
		}
		l.Operands[op.Name] = make(map[string][]DataType, len(op.Operands))
		for _, operand := range op.Operands {
			dataTypes := make([]DataType, 0, len(operand.DataTypes))
			for _, name := range operand.DataTypes {
				dataType := DataType(name)
				if !dataType.IsValid() {
					return nil, errors.Errorf("limits file %q: op %q, operand %q: unknown data type %q, valid values are %q",
						filename, op.Name, operand.Name, name, AllDataTypes)
				}
				dataTypes = append(dataTypes, dataType)
			}
			l.SetOperand(op.Name, operand.Name, dataTypes...)
		}
	}
	return l, nil
}
