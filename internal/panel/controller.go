package panel

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"floodwatch/internal/types"
)

// SeriesFetcher retrieves measurement series for a filter scope.
type SeriesFetcher interface {
	Fetch(ctx context.Context, filter types.FilterState, historical bool) (*types.SeriesFetchResult, error)
}

// PredictionFetcher retrieves the current flood prediction.
type PredictionFetcher interface {
	Fetch(ctx context.Context, filter types.FilterState) (*types.PredictionResult, error)
}

// DecisionFetcher retrieves decision-support suggestions.
type DecisionFetcher interface {
	Fetch(ctx context.Context, filter types.FilterState) (*types.SuggestionResult, error)
}

// GaugeView is the rendered probability gauge.
type GaugeView struct {
	ProbabilityPercent float64        `json:"probability_percent"`
	Band               types.RiskBand `json:"band"`
	Color              string         `json:"color"`
	ImpactText         string         `json:"impact_text,omitempty"`
	LastUpdated        string         `json:"last_updated,omitempty"`
	Available          bool           `json:"available"`
}

// Snapshot is a point-in-time copy of the full panel state, safe for the
// caller to serialize without further locking.
type Snapshot struct {
	Filter        types.FilterState `json:"filter"`
	Chart         types.ChartModel  `json:"chart"`
	Gauge         GaugeView         `json:"gauge"`
	AffectedAreas []AreaRow         `json:"affected_areas"`
	Decision      DecisionView      `json:"decision"`
}

// Controller coordinates the panel's filter state, the chart model, the
// gauge, and the affected-area and decision views. All exported methods are
// safe for concurrent use.
//
// Each series refresh is stamped with a generation number; a refresh whose
// generation no longer matches the controller's current one when its data
// arrives is discarded, so a slow response can never overwrite the result of
// a newer filter change.
type Controller struct {
	series     SeriesFetcher
	prediction PredictionFetcher
	decision   DecisionFetcher
	logger     *slog.Logger

	mu         sync.Mutex
	filter     types.FilterState
	generation uint64
	assembler  *Assembler
	gauge      GaugeView
	areas      []AreaRow
	suggestion DecisionView
}

// NewController creates a Controller with the default filter scope and an
// empty chart.
func NewController(series SeriesFetcher, prediction PredictionFetcher, decision DecisionFetcher, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		series:     series,
		prediction: prediction,
		decision:   decision,
		logger:     logger,
		filter:     types.DefaultFilterState(),
		assembler:  NewAssembler(),
		areas:      RenderAffectedAreas(nil),
		suggestion: RenderDecision(nil),
	}
}

// Init performs the initial population: series, prediction, and decision
// support are fetched concurrently. Individual failures are logged and leave
// that view in its fallback state; Init itself never fails.
func (c *Controller) Init(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := c.RefreshSeries(gctx); err != nil {
			c.logger.Warn("initial series fetch failed", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := c.RefreshPrediction(gctx); err != nil {
			c.logger.Warn("initial prediction fetch failed", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := c.RefreshDecision(gctx); err != nil {
			c.logger.Warn("initial decision-support fetch failed", "error", err)
		}
		return nil
	})
	_ = g.Wait()
}

// Filter returns the current filter scope.
func (c *Controller) Filter() types.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// SetMode switches the measurement mode. Setting the mode already active is
// a no-op and triggers no fetch. An effective change refreshes the series
// and the decision-support view; the prediction is mode-independent and is
// left alone.
func (c *Controller) SetMode(ctx context.Context, mode types.Mode) error {
	if !mode.Valid() {
		return types.NewAppError(types.ErrCodeValidationInvalidMode, "unknown chart mode: "+string(mode), nil)
	}

	c.mu.Lock()
	if c.filter.Mode == mode {
		c.mu.Unlock()
		return nil
	}
	c.filter.Mode = mode
	c.generation++
	c.mu.Unlock()

	return c.refreshScope(ctx)
}

// SetPeriod switches the look-back period in days. Setting the period
// already active is a no-op and triggers no fetch.
func (c *Controller) SetPeriod(ctx context.Context, days int) error {
	if days <= 0 {
		return types.NewAppError(types.ErrCodeValidationInvalidPeriod, "period must be a positive number of days", nil)
	}

	c.mu.Lock()
	if c.filter.PeriodDays == days {
		c.mu.Unlock()
		return nil
	}
	c.filter.PeriodDays = days
	c.generation++
	c.mu.Unlock()

	return c.refreshScope(ctx)
}

// SetLocation switches the administrative scope. Empty identifiers clear the
// corresponding restriction. Setting the location already active is a no-op.
func (c *Controller) SetLocation(ctx context.Context, municipalityID, barangayID string) error {
	c.mu.Lock()
	if c.filter.MunicipalityID == municipalityID && c.filter.BarangayID == barangayID {
		c.mu.Unlock()
		return nil
	}
	c.filter.MunicipalityID = municipalityID
	c.filter.BarangayID = barangayID
	c.generation++
	c.mu.Unlock()

	return c.refreshScope(ctx)
}

// refreshScope re-fetches the scope-dependent views after a filter change.
// The series refresh completes before decision support is requested.
func (c *Controller) refreshScope(ctx context.Context) error {
	err := c.RefreshSeries(ctx)

	// A decision-support failure keeps the prior view and is already logged.
	_ = c.RefreshDecision(ctx)

	return err
}

// RefreshSeries fetches the primary series for the current filter, then the
// historical overlay, and rebuilds the chart model. The primary fetch must
// succeed before the overlay fetch is attempted: overlays are meaningless
// against a chart the primary fetch failed to update, and on primary failure
// the existing chart state is kept untouched.
func (c *Controller) RefreshSeries(ctx context.Context) error {
	c.mu.Lock()
	filter := c.filter
	generation := c.generation
	c.mu.Unlock()

	primary, err := c.series.Fetch(ctx, filter, false)
	if err != nil {
		c.logger.Error("series fetch failed",
			"mode", filter.Mode,
			"period_days", filter.PeriodDays,
			"error", err,
		)
		return err
	}

	overlay, overlayErr := c.series.Fetch(ctx, filter, true)
	if overlayErr != nil {
		c.logger.Warn("historical overlay fetch failed", "mode", filter.Mode, "error", overlayErr)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		c.logger.Debug("discarding stale series result",
			"fetched_generation", generation,
			"current_generation", c.generation,
		)
		return nil
	}

	labels := make([]string, len(primary.Series.Labels))
	for i, raw := range primary.Series.Labels {
		labels[i] = FormatAxisLabel(filter.PeriodDays, raw)
	}
	c.assembler.RebuildPrimary(labels, primary.Series.Values, PrimaryLabel(filter.Mode), primaryColor(filter.Mode))

	var thresholdValue *float64
	if overlayErr == nil {
		if overlay.HistoricalValues != nil {
			c.assembler.UpsertOverlay(types.RenderSeries{
				Label:  historicalLabel,
				Values: overlay.HistoricalValues,
				Color:  historicalColor,
				Dashed: true,
				Order:  1,
			})
		}
		thresholdValue = overlay.ThresholdValue
	}

	spec := ThresholdForMode(filter.Mode, thresholdValue)
	line, adjustment := ComputeOverlay(len(labels), primary.Series.Values, spec, 2)
	c.assembler.UpsertOverlay(line)
	c.assembler.ApplyAxisAdjustment(adjustment)

	return nil
}

// RefreshPrediction fetches the current prediction and rebuilds the gauge
// and affected-areas views. On failure the gauge switches to its unavailable
// state; the affected-areas listing keeps its previous content.
func (c *Controller) RefreshPrediction(ctx context.Context) error {
	c.mu.Lock()
	filter := c.filter
	c.mu.Unlock()

	result, err := c.prediction.Fetch(ctx, filter)
	if err != nil {
		c.logger.Error("prediction fetch failed", "error", err)
		c.mu.Lock()
		c.gauge = GaugeView{Available: false}
		c.mu.Unlock()
		return err
	}

	band := Classify(result.ProbabilityPercent)
	c.mu.Lock()
	c.gauge = GaugeView{
		ProbabilityPercent: result.ProbabilityPercent,
		Band:               band,
		Color:              BandColor(band),
		ImpactText:         result.ImpactText,
		LastUpdated:        result.LastUpdatedISO,
		Available:          true,
	}
	c.areas = RenderAffectedAreas(result.AffectedAreas)
	c.mu.Unlock()

	return nil
}

// RefreshDecision fetches decision support for the current filter. On
// failure the error is logged and the previous view is left in place.
func (c *Controller) RefreshDecision(ctx context.Context) error {
	c.mu.Lock()
	filter := c.filter
	c.mu.Unlock()

	result, err := c.decision.Fetch(ctx, filter)
	if err != nil {
		c.logger.Warn("decision-support fetch failed", "mode", filter.Mode, "error", err)
		return err
	}

	c.mu.Lock()
	c.suggestion = RenderDecision(result)
	c.mu.Unlock()

	return nil
}

// Snapshot returns a deep copy of the full panel state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	areas := append([]AreaRow(nil), c.areas...)
	decision := c.suggestion
	decision.Reasons = append([]string(nil), c.suggestion.Reasons...)

	return Snapshot{
		Filter:        c.filter,
		Chart:         c.assembler.Model(),
		Gauge:         c.gauge,
		AffectedAreas: areas,
		Decision:      decision,
	}
}
