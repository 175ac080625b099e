// Copyright 2026 The Boilx Authors. SPDX-License-Identifier: Apache-2.0

package harness

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPoints() []Point {
	return []Point{
		{MetricName: "Train: Moving Average Loss", Short: "T/~loss", MetricType: "loss", Step: 100, Value: 2.5},
		{MetricName: "Mean Loss on validation", Short: "#loss(valid)", MetricType: "loss", Step: 100, Value: 2.7},
		{MetricName: "Train: Moving Average Loss", Short: "T/~loss", MetricType: "loss", Step: 200, Value: 1.9},
		{MetricName: "Mean Loss on validation", Short: "#loss(valid)", MetricType: "loss", Step: 200, Value: 2.1},
	}
}

func TestHistorySaveAndLoad(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), HistoryFileName)
	h := NewHistory(filePath)
	h.Add(testPoints()...)
	require.NoError(t, h.Save())

	loaded, err := LoadHistory(filePath)
	require.NoError(t, err)
	assert.Equal(t, h.Points(), loaded.Points())

	// Saving again after more points must rewrite, not duplicate.
	h.Add(Point{MetricName: "Train: Moving Average Loss", MetricType: "loss", Step: 300, Value: 1.5})
	require.NoError(t, h.Save())
	loaded, err = LoadHistory(filePath)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Len())
}

func TestHistoryMemoryOnly(t *testing.T) {
	h := NewHistory("")
	h.Add(testPoints()...)
	require.NoError(t, h.Save())
	assert.Equal(t, 4, h.Len())
}

func TestHistoryMetricNames(t *testing.T) {
	h := NewHistory("")
	h.Add(testPoints()...)
	assert.Equal(t,
		[]string{"Train: Moving Average Loss", "Mean Loss on validation"},
		h.MetricNames())
}

func TestHistoryWriteCSV(t *testing.T) {
	h := NewHistory("")
	h.Add(testPoints()...)
	var buf bytes.Buffer
	require.NoError(t, h.WriteCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5) // header + 4 points
	assert.Contains(t, lines[0], "MetricName")
	assert.Contains(t, lines[0], "Value")
}

func TestTable(t *testing.T) {
	h := NewHistory("")
	h.Add(testPoints()...)
	table := Table(h)
	assert.Contains(t, table, "Step")
	assert.Contains(t, table, "Train: Moving Average Loss")
	assert.Contains(t, table, "100")
	assert.Contains(t, table, "200")
}

func TestWritePlots(t *testing.T) {
	dir := t.TempDir()
	h := NewHistory("")
	h.Add(testPoints()...)
	require.NoError(t, WritePlots(h, dir, 1024, 400))

	contents, err := os.ReadFile(filepath.Join(dir, "metrics_loss.svg"))
	require.NoError(t, err)
	assert.NotEmpty(t, contents)
	assert.Contains(t, string(contents), "<svg")
}

func TestWritePlotsSkipsSinglePoints(t *testing.T) {
	dir := t.TempDir()
	h := NewHistory("")
	h.Add(Point{MetricName: "Train: Moving Average Loss", MetricType: "loss", Step: 100, Value: 1.0})
	require.NoError(t, WritePlots(h, dir, 1024, 400))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
