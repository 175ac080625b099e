// Copyright 2026 The Boilx Authors. SPDX-License-Identifier: Apache-2.0

package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mg "github.com/erkkah/margaid"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// metricTypePlot holds the series of all metrics sharing a metric type (hence
// an Y axis), plus the union of their points for axis auto-ranging.
type metricTypePlot struct {
	perName   map[string]*mg.Series
	allPoints *mg.Series
	numPoints int
}

// WritePlots renders the history as SVG training curves in dir, one file per
// metric type ("metrics_<type>.svg"), so that series sharing a unit share an
// Y axis. Metric types with fewer than two points are skipped -- there is
// nothing to draw.
func WritePlots(h *History, dir string, width, height int) error {
	for metricType, plot := range plotsPerMetricType(h) {
		if plot.numPoints < 2 {
			continue
		}
		fileName := "metrics.svg"
		if metricType != "" {
			fileName = fmt.Sprintf("metrics_%s.svg", sanitizeMetricType(metricType))
		}
		filePath := filepath.Join(dir, fileName)
		if err := writePlotFile(filePath, metricType, plot, width, height); err != nil {
			return err
		}
	}
	return nil
}

func plotsPerMetricType(h *History) map[string]*metricTypePlot {
	perType := make(map[string]*metricTypePlot)
	for _, point := range h.Points() {
		plot, found := perType[point.MetricType]
		if !found {
			plot = &metricTypePlot{
				perName:   make(map[string]*mg.Series),
				allPoints: mg.NewSeries(),
			}
			perType[point.MetricType] = plot
		}
		series, found := plot.perName[point.MetricName]
		if !found {
			series = mg.NewSeries(mg.Titled(point.MetricName))
			plot.perName[point.MetricName] = series
		}
		value := mg.MakeValue(point.Step, point.Value)
		series.Add(value)
		plot.allPoints.Add(value)
		plot.numPoints++
	}
	return perType
}

func writePlotFile(filePath, metricType string, plot *metricTypePlot, width, height int) error {
	names := maps.Keys(plot.perName)
	slices.Sort(names)
	allSeries := make([]*mg.Series, 0, len(names))
	for _, name := range names {
		allSeries = append(allSeries, plot.perName[name])
	}

	diagram := mg.New(width, height,
		mg.WithAutorange(mg.XAxis, allSeries...),
		mg.WithAutorange(mg.YAxis, allSeries...),
		mg.WithInset(70),
		mg.WithPadding(2),
		mg.WithColorScheme(90),
		mg.WithBackgroundColor("#f8f8f8"),
	)
	for _, series := range allSeries {
		diagram.Line(series, mg.UsingAxes(mg.XAxis, mg.YAxis), mg.UsingMarker("square"), mg.UsingStrokeWidth(2))
	}
	diagram.Axis(plot.allPoints, mg.XAxis, diagram.ValueTicker('f', 0, 10), false, "Steps")
	diagram.Axis(plot.allPoints, mg.YAxis, diagram.ValueTicker('f', 3, 10), true, metricType)
	diagram.Frame()
	if metricType != "" {
		diagram.Title(fmt.Sprintf("%s metrics", metricType))
	}
	diagram.Legend(mg.BottomLeft)

	f, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "creating plot file %q", filePath)
	}
	if err := diagram.Render(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "rendering plot %q", filePath)
	}
	return errors.Wrapf(f.Close(), "closing plot file %q", filePath)
}

func sanitizeMetricType(metricType string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':', '#':
			return '_'
		}
		return r
	}, metricType)
}
