// Copyright 2026 The Boilx Authors. SPDX-License-Identifier: Apache-2.0

// Package harness runs the conventional training loop for an Experiment:
// forward pass, loss, optimizer step, periodic evaluation, checkpointing and
// metric history, all written to the experiment's run directory.
package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/pkg/errors"
)

// HistoryFileName is the file inside a run directory holding the metric
// history, one JSON point per line.
const HistoryFileName = "history.json"

// Point is one metric value measured at a training step.
type Point struct {
	MetricName string  `json:"metric_name"`
	Short      string  `json:"short"`
	MetricType string  `json:"metric_type"`
	Step       float64 `json:"step"`
	Value      float64 `json:"value"`
}

// History accumulates metric points over a training run. If created with a
// file path, Save persists them; otherwise it is memory only (dry runs).
type History struct {
	points   []Point
	filePath string
}

// NewHistory creates an empty history saved to filePath. An empty filePath
// makes the history memory only.
func NewHistory(filePath string) *History {
	return &History{filePath: filePath}
}

// LoadHistory reads a history previously written by Save.
func LoadHistory(filePath string) (*History, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening history file %q", filePath)
	}
	defer func() { _ = f.Close() }()

	h := NewHistory(filePath)
	dec := json.NewDecoder(f)
	for {
		var point Point
		err := dec.Decode(&point)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "parsing history file %q", filePath)
		}
		h.points = append(h.points, point)
	}
	return h, nil
}

// Add appends points to the history.
func (h *History) Add(points ...Point) {
	h.points = append(h.points, points...)
}

// Len returns the number of points recorded so far.
func (h *History) Len() int { return len(h.points) }

// Points returns the recorded points, in insertion order. The returned slice
// is owned by the history, don't modify it.
func (h *History) Points() []Point { return h.points }

// MetricNames returns the distinct metric names in order of first appearance.
func (h *History) MetricNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, point := range h.points {
		if !seen[point.MetricName] {
			seen[point.MetricName] = true
			names = append(names, point.MetricName)
		}
	}
	return names
}

// Save writes all points to the history file, one JSON object per line. It is
// a no-op for memory-only histories.
func (h *History) Save() error {
	if h.filePath == "" {
		return nil
	}
	f, err := os.Create(h.filePath)
	if err != nil {
		return errors.Wrapf(err, "creating history file %q", h.filePath)
	}
	enc := json.NewEncoder(f)
	for _, point := range h.points {
		if err := enc.Encode(point); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "writing history file %q", h.filePath)
		}
	}
	return errors.Wrapf(f.Close(), "closing history file %q", h.filePath)
}

// DataFrame returns the history as a gota dataframe, one row per point.
func (h *History) DataFrame() dataframe.DataFrame {
	return dataframe.LoadStructs(h.points)
}

// WriteCSV writes the history as CSV, one row per point.
func (h *History) WriteCSV(w io.Writer) error {
	df := h.DataFrame()
	if df.Err != nil {
		return errors.WithMessage(df.Err, "converting history to dataframe")
	}
	return errors.WithMessage(df.WriteCSV(w), "writing history CSV")
}

// AddTrainAndEvalMetrics records the training metrics reported by the loop at
// the current global step, and evaluates the trainer on each of evalDatasets,
// recording those as well. NaN or infinite values are skipped.
func (h *History) AddTrainAndEvalMetrics(loop *train.Loop, trainMetrics []*tensors.Tensor, evalDatasets []train.Dataset) error {
	step := float64(loop.Trainer.GlobalStep())
	for ii, metric := range loop.Trainer.TrainMetrics() {
		if metric.Name() == "Batch Loss" {
			// The batch loss fluctuates too much to be worth recording; the
			// trainer always includes its moving average too.
			continue
		}
		value := shapes.ConvertTo[float64](trainMetrics[ii].Value())
		if math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		h.Add(Point{
			MetricName: "Train: " + metric.Name(),
			Short:      fmt.Sprintf("T/%s", metric.ShortName()),
			MetricType: metric.MetricType(),
			Step:       step,
			Value:      value,
		})
	}

	for _, ds := range evalDatasets {
		evalMetrics, err := loop.Trainer.Eval(ds)
		if err != nil {
			return errors.WithMessagef(err, "evaluating on dataset %q", ds.Name())
		}
		ds.Reset()
		dsShort := ds.Name()
		if withShort, ok := ds.(train.HasShortName); ok {
			dsShort = withShort.ShortName()
		}
		for ii, metric := range loop.Trainer.EvalMetrics() {
			value := shapes.ConvertTo[float64](evalMetrics[ii].Value())
			if math.IsNaN(value) || math.IsInf(value, 0) {
				continue
			}
			h.Add(Point{
				MetricName: fmt.Sprintf("%s on %s", metric.Name(), ds.Name()),
				Short:      fmt.Sprintf("%s(%s)", metric.ShortName(), dsShort),
				MetricType: metric.MetricType(),
				Step:       step,
				Value:      value,
			})
		}
	}
	return nil
}
