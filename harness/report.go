// Copyright 2026 The Boilx Authors. SPDX-License-Identifier: Apache-2.0

package harness

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Table renders the history as a terminal table: the first column is the
// step, followed by one column per metric (all of them if names is empty).
func Table(h *History, names ...string) string {
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	headerStyle := lipgloss.NewStyle().Padding(0, 1).Bold(true).Reverse(true)
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return headerStyle
			}
			return cellStyle
		})

	if len(names) == 0 {
		names = h.MetricNames()
	}
	headers := []string{"Step"}
	headers = append(headers, names...)
	table.Headers(headers...)

	perStep := make(map[float64][]Point)
	for _, point := range h.Points() {
		perStep[point.Step] = append(perStep[point.Step], point)
	}
	steps := maps.Keys(perStep)
	slices.Sort(steps)
	for _, step := range steps {
		row := make([]string, 1+len(names))
		row[0] = fmt.Sprintf("%.0f", step)
		for _, point := range perStep[step] {
			idx := slices.Index(names, point.MetricName)
			if idx != -1 {
				row[idx+1] = fmt.Sprintf("%f", point.Value)
			}
		}
		table.Row(row...)
	}
	return table.String()
}
