package panel

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"floodwatch/internal/types"
)

const (
	exportWidth  = 1024
	exportHeight = 480
)

// SnapshotPNG renders a chart model to a PNG image. Labels are mapped to
// sequential X positions; nil values break a line into separate visible
// segments by being skipped. Models with fewer than two plottable points in
// the primary series cannot be rendered.
func SnapshotPNG(model types.ChartModel, title string) ([]byte, error) {
	if len(model.Series) == 0 {
		return nil, types.NewAppError(types.ErrCodeInternalRender, "chart model has no series", nil)
	}

	var series []chart.Series
	for _, rs := range model.Series {
		xs, ys := plottablePoints(rs.Values)
		if len(xs) < 2 {
			if rs.Order == 0 {
				return nil, types.NewAppError(types.ErrCodeInternalRender, "primary series has fewer than two plottable points", nil)
			}
			continue
		}

		style := chart.Style{
			StrokeColor: drawing.ColorFromHex(trimHash(rs.Color)),
			StrokeWidth: 2.0,
		}
		if rs.Dashed {
			style.StrokeDashArray = []float64{5.0, 5.0}
		}

		series = append(series, chart.ContinuousSeries{
			Name:    rs.Label,
			Style:   style,
			XValues: xs,
			YValues: ys,
		})
	}

	yAxis := chart.YAxis{Name: model.Series[0].Label}
	if model.Axis.Min != nil || model.Axis.Max != nil {
		min, max := dataRange(model)
		if model.Axis.Min != nil {
			min = *model.Axis.Min
		}
		if model.Axis.Max != nil {
			max = *model.Axis.Max
		}
		yAxis.Range = &chart.ContinuousRange{Min: min, Max: max}
	}

	graph := chart.Chart{
		Title:  title,
		Width:  exportWidth,
		Height: exportHeight,
		YAxis:  yAxis,
		XAxis: chart.XAxis{
			ValueFormatter: labelFormatter(model.Labels),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalRender, "chart rendering failed", err)
	}
	return buf.Bytes(), nil
}

// SnapshotFilename builds the download filename for an exported chart.
func SnapshotFilename(mode types.Mode, now time.Time) string {
	return fmt.Sprintf("flood-prediction-%s-%s.png", mode, now.UTC().Format("2006-01-02"))
}

// plottablePoints converts a nullable value slice to go-chart X/Y slices,
// using the slice index as the X coordinate and skipping nil entries.
func plottablePoints(values []*float64) (xs, ys []float64) {
	for i, v := range values {
		if v == nil {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, *v)
	}
	return xs, ys
}

// dataRange computes the min and max over every present value in every
// series, as the starting point for axis overrides.
func dataRange(model types.ChartModel) (min, max float64) {
	var ok bool
	for _, rs := range model.Series {
		lo, hi, present := presentRange(rs.Values)
		if !present {
			continue
		}
		if !ok {
			min, max, ok = lo, hi, true
			continue
		}
		if lo < min {
			min = lo
		}
		if hi > max {
			max = hi
		}
	}
	return min, max
}

// labelFormatter maps go-chart's float X values back to the model's labels.
func labelFormatter(labels []string) chart.ValueFormatter {
	return func(v any) string {
		f, isFloat := v.(float64)
		if !isFloat {
			return ""
		}
		i := int(f)
		if float64(i) != f || i < 0 || i >= len(labels) {
			return ""
		}
		return labels[i]
	}
}

// trimHash strips a leading # so the hex color parses.
func trimHash(color string) string {
	if len(color) > 0 && color[0] == '#' {
		return color[1:]
	}
	return color
}
