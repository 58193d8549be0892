package panel

import (
	"fmt"
	"strings"
	"time"

	"floodwatch/internal/types"
)

// Primary series display labels per mode.
const (
	primaryLabelRainfall   = "Rainfall (mm)"
	primaryLabelWaterLevel = "Water Level (m)"

	primaryColorRainfall   = "#0d6efd"
	primaryColorWaterLevel = "#0dcaf0"

	historicalLabel = "Historical Average"
	historicalColor = "#6c757d"
)

// PrimaryLabel returns the display label of the current-data series for a mode.
func PrimaryLabel(mode types.Mode) string {
	if mode == types.ModeWaterLevel {
		return primaryLabelWaterLevel
	}
	return primaryLabelRainfall
}

// primaryColor returns the line color of the current-data series for a mode.
func primaryColor(mode types.Mode) string {
	if mode == types.ModeWaterLevel {
		return primaryColorWaterLevel
	}
	return primaryColorRainfall
}

// Assembler owns the ChartModel and is the only component allowed to mutate
// it. Series[0] is always the primary series; overlays (historical average,
// threshold lines) occupy positions >= 1 and are keyed by label.
type Assembler struct {
	model types.ChartModel
}

// NewAssembler creates an Assembler with an empty model.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// RebuildPrimary replaces the label domain and the primary series, and drops
// every overlay series and any axis overrides. Overlays are invalidated
// whenever the primary data changes: stale historical or threshold lines from
// a previous mode or period must never persist.
func (a *Assembler) RebuildPrimary(labels []string, values []*float64, label, color string) {
	a.model.Labels = labels
	a.model.Series = []types.RenderSeries{{
		Label:  label,
		Values: values,
		Color:  color,
		Order:  0,
	}}
	a.model.Axis = types.AxisBounds{}
}

// UpsertOverlay adds or replaces an overlay series by label. If a series with
// the same label exists its data is replaced in place (preserving position);
// otherwise the series is appended. At most one series per label ever exists.
func (a *Assembler) UpsertOverlay(rs types.RenderSeries) {
	for i := range a.model.Series {
		if a.model.Series[i].Label == rs.Label {
			a.model.Series[i] = rs
			return
		}
	}
	a.model.Series = append(a.model.Series, rs)
}

// ApplyAxisAdjustment merges a threshold-driven bound override into the
// model's axis configuration. A nil adjustment leaves the bounds untouched.
func (a *Assembler) ApplyAxisAdjustment(adj *AxisAdjustment) {
	if adj == nil {
		return
	}
	if adj.Min != nil {
		a.model.Axis.Min = adj.Min
	}
	if adj.Max != nil {
		a.model.Axis.Max = adj.Max
	}
}

// Model returns a deep copy of the current chart model. The rendering
// collaborator receives the model wholesale on every rebuild; handing out a
// copy keeps the assembler the model's exclusive owner.
func (a *Assembler) Model() types.ChartModel {
	out := types.ChartModel{
		Labels: append([]string(nil), a.model.Labels...),
		Series: make([]types.RenderSeries, len(a.model.Series)),
	}
	for i, s := range a.model.Series {
		copied := s
		copied.Values = append([]*float64(nil), s.Values...)
		out.Series[i] = copied
	}
	if a.model.Axis.Min != nil {
		v := *a.model.Axis.Min
		out.Axis.Min = &v
	}
	if a.model.Axis.Max != nil {
		v := *a.model.Axis.Max
		out.Axis.Max = &v
	}
	return out
}

// labelTimeFormats are the timestamp layouts the upstream service has been
// observed to emit for chart labels, tried in order.
var labelTimeFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatAxisLabel formats one axis label as a function of the selected
// period: periods of a week or longer show month/day only, shorter periods
// include the zero-padded time of day.
//
// Unparsable labels fall back to the raw string's leading token before a
// separating space (or the whole string when there is none).
func FormatAxisLabel(periodDays int, label string) string {
	var parsed time.Time
	var err error
	for _, layout := range labelTimeFormats {
		parsed, err = time.Parse(layout, label)
		if err == nil {
			break
		}
	}
	if err != nil {
		token, _, _ := strings.Cut(label, " ")
		return token
	}

	if periodDays >= 7 {
		return fmt.Sprintf("%d/%d", int(parsed.Month()), parsed.Day())
	}
	return fmt.Sprintf("%d/%d %02d:%02d", int(parsed.Month()), parsed.Day(), parsed.Hour(), parsed.Minute())
}
