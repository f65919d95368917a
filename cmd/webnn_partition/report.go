// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/webnnpart/backends/webnn"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)

	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)

	resultStyles = map[string]lipgloss.Style{
		webnn.ResultFull:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		webnn.ResultPartial:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		webnn.ResultRejected: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

func newPlainTable(withHeader bool) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if withHeader && row == lgtable.HeaderRow {
				return headerRowStyle
			}
			if row%2 == 0 {
				s = evenRowStyle
			} else {
				s = oddRowStyle
			}
			if col == 0 {
				s = s.Align(lipgloss.Right)
			} else {
				s = s.Align(lipgloss.Left)
			}
			return
		})
}

// report prints the summary of the partitioning of all models and, if -groups is set, the
// groups of each one.
func report(limits *webnn.Limits, device webnn.DeviceType, models []*model, results []*webnn.Result) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("WebNN partitioning for %s (limits %q)", device, limits.Name)))
	table := newPlainTable(true)
	table.Headers("Graph", "File", "Nodes", "Supported", "Groups", "Result")
	for ii, m := range models {
		r := results[ii]
		if r == nil {
			table.Row(m.name, m.path, humanize.Comma(int64(m.graph.NumNodes())), "-", "-", "failed")
			continue
		}
		result := r.Outcome()
		table.Row(m.name, m.path,
			humanize.Comma(int64(r.NumNodes)),
			fmt.Sprintf("%s (%s)", humanize.Comma(int64(r.NumSupported)), percent(r.NumSupported, r.NumNodes)),
			humanize.Comma(int64(len(r.Groups))),
			resultStyles[result].Render(result))
	}
	fmt.Println(table.Render())

	if !*flagGroups {
		return
	}
	for ii, m := range models {
		r := results[ii]
		if r == nil || len(r.Capabilities) == 0 {
			continue
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("Groups of %q", m.name)))
		table := newPlainTable(true)
		table.Headers("Name", "Nodes", "Inputs", "Outputs", "Constants")
		initializers := m.graph.Initializers()
		for _, cc := range r.Capabilities {
			var constantBytes uint64
			for _, name := range cc.Constants {
				if tensor, found := initializers[name]; found {
					constantBytes += uint64(tensor.Memory())
				}
			}
			table.Row(cc.Name,
				humanize.Comma(int64(len(cc.Nodes))),
				strings.Join(cc.Inputs, ", "),
				strings.Join(cc.Outputs, ", "),
				fmt.Sprintf("%d (%s)", len(cc.Constants), humanize.Bytes(constantBytes)))
		}
		fmt.Println(table.Render())
	}
}

// reportOps lists the op types with a checker, and on which devices their WebNN op is implemented.
func reportOps(limits *webnn.Limits) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Supported op types (limits %q)", limits.Name)))
	devices := []webnn.DeviceType{webnn.DeviceCPU, webnn.DeviceGPU, webnn.DeviceNPU}
	table := newPlainTable(true)
	headers := []string{"Op type", "WebNN op"}
	for _, device := range devices {
		headers = append(headers, device.String())
	}
	table.Headers(headers...)
	for _, opType := range webnn.SupportedOpTypes() {
		webnnOp, _ := webnn.WebNNOpType(opType)
		row := []string{opType, webnnOp}
		for _, device := range devices {
			if webnn.CheckSingleOp(opType, limits, device) {
				row = append(row, "yes")
			} else {
				row = append(row, "-")
			}
		}
		table.Row(row...)
	}
	fmt.Println(table.Render())
}

func percent(n, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total))
}
