package panel

import (
	"math"

	"floodwatch/internal/types"
)

// Fixed, mode-dependent threshold defaults. The water-level default may be
// overridden by a backend-supplied value; the rainfall constant is never
// overridden (the upstream service has no rainfall threshold field, so a
// supplied value is ignored in rainfall mode).
const (
	DefaultWaterLevelThreshold = 1.5
	DefaultRainfallThreshold   = 25.0

	LabelFloodStage            = "Flood Stage"
	LabelHeavyRainfallAdvisory = "Heavy Rainfall Advisory"

	thresholdColor = "#dc3545"
)

// edgeTolerance is the fraction of the primary series' value range within
// which a threshold counts as sitting "at the edge" and still forces an axis
// adjustment even though it is technically inside the range.
const edgeTolerance = 0.1

// Axis padding factors applied when a threshold falls outside (or at the
// edge of) the primary range.
const (
	lowerBoundPad = 0.9
	upperBoundPad = 1.1
)

// AxisAdjustment carries at most one axis bound override produced by
// ComputeOverlay. Exactly one of Min/Max is non-nil when an adjustment was
// made; both are nil when the threshold is comfortably inside the range.
type AxisAdjustment struct {
	Min *float64
	Max *float64
}

// ThresholdForMode resolves the active threshold spec for a mode. The
// backend-supplied value, when present, overrides the water-level default
// only.
func ThresholdForMode(mode types.Mode, backendValue *float64) types.ThresholdSpec {
	if mode == types.ModeWaterLevel {
		value := DefaultWaterLevelThreshold
		if backendValue != nil {
			value = *backendValue
		}
		return types.ThresholdSpec{Value: value, Label: LabelFloodStage, Color: thresholdColor}
	}
	return types.ThresholdSpec{Value: DefaultRainfallThreshold, Label: LabelHeavyRainfallAdvisory, Color: thresholdColor}
}

// ComputeOverlay builds the flat reference line for a threshold spec over a
// label domain of the given size, and decides whether the visible axis range
// must be extended so the line stays legible.
//
// The adjustment rules, evaluated against the present (non-nil) values of the
// primary series:
//   - no present values: no adjustment (the comparison is ill-defined)
//   - threshold below min, or within 10% of the range above min: lower bound
//     becomes threshold * 0.9
//   - threshold above max, or within 10% of the range below max: upper bound
//     becomes threshold * 1.1
//
// Only one bound is ever touched per call. A zero range (all present values
// identical) degenerates the proportional test to zero tolerance: the
// threshold must be strictly outside min/max to trigger an adjustment.
func ComputeOverlay(labelCount int, primaryValues []*float64, spec types.ThresholdSpec, order int) (types.RenderSeries, *AxisAdjustment) {
	values := make([]*float64, labelCount)
	for i := range values {
		v := spec.Value
		values[i] = &v
	}

	line := types.RenderSeries{
		Label:  spec.Label,
		Values: values,
		Color:  spec.Color,
		Dashed: true,
		Order:  order,
	}

	min, max, ok := presentRange(primaryValues)
	if !ok {
		return line, nil
	}

	valueRange := max - min

	switch {
	case spec.Value < min:
		bound := spec.Value * lowerBoundPad
		return line, &AxisAdjustment{Min: &bound}
	case spec.Value > max:
		bound := spec.Value * upperBoundPad
		return line, &AxisAdjustment{Max: &bound}
	case valueRange > 0 && math.Abs(spec.Value-min) < edgeTolerance*valueRange:
		bound := spec.Value * lowerBoundPad
		return line, &AxisAdjustment{Min: &bound}
	case valueRange > 0 && math.Abs(spec.Value-max) < edgeTolerance*valueRange:
		bound := spec.Value * upperBoundPad
		return line, &AxisAdjustment{Max: &bound}
	default:
		return line, nil
	}
}

// presentRange computes min and max over the non-nil entries of values.
// ok is false when there are no present values.
func presentRange(values []*float64) (min, max float64, ok bool) {
	for _, v := range values {
		if v == nil {
			continue
		}
		if !ok {
			min, max, ok = *v, *v, true
			continue
		}
		if *v < min {
			min = *v
		}
		if *v > max {
			max = *v
		}
	}
	return min, max, ok
}
