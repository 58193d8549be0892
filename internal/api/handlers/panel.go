// Package handlers contains the HTTP handler implementations for the flood
// panel API.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"floodwatch/internal/core"
	"floodwatch/internal/panel"
	"floodwatch/internal/types"
)

// PanelService is the controller contract used by the panel handler. The
// interface is defined locally following the handler injection pattern so the
// handler stays decoupled from the concrete controller.
type PanelService interface {
	Snapshot() panel.Snapshot
	Filter() types.FilterState
	SetMode(ctx context.Context, mode types.Mode) error
	SetPeriod(ctx context.Context, days int) error
	SetLocation(ctx context.Context, municipalityID, barangayID string) error
	RefreshPrediction(ctx context.Context) error
}

// UpdateFiltersRequest is the request body for PUT /v1/panel/filters. All
// fields are optional; absent fields leave that part of the scope unchanged.
type UpdateFiltersRequest struct {
	Mode           *string `json:"mode,omitempty" validate:"omitempty,oneof=rainfall water_level"`
	PeriodDays     *int    `json:"period_days,omitempty" validate:"omitempty,gt=0,lte=365"`
	MunicipalityID *string `json:"municipality_id,omitempty"`
	BarangayID     *string `json:"barangay_id,omitempty"`
}

// PanelHandler serves the dashboard panel state and filter operations.
type PanelHandler struct {
	service   PanelService
	validator *core.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewPanelHandler creates a new PanelHandler with the provided dependencies.
func NewPanelHandler(service PanelService, v *core.Validator, l *slog.Logger) *PanelHandler {
	if l == nil {
		l = slog.Default()
	}
	return &PanelHandler{
		service:   service,
		validator: v,
		logger:    l,
		now:       time.Now,
	}
}

// RegisterRoutes mounts panel routes on the provided chi.Router.
func (h *PanelHandler) RegisterRoutes(r chi.Router) {
	r.Route("/panel", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/filters", h.UpdateFilters)
		r.Get("/chart", h.GetChart)
		r.Get("/export", h.Export)
		r.Post("/prediction/refresh", h.RefreshPrediction)
	})
}

// Get handles GET /v1/panel. Returns the full panel snapshot: filter scope,
// chart model, gauge, affected areas, and decision support.
func (h *PanelHandler) Get(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, h.service.Snapshot())
}

// UpdateFilters handles PUT /v1/panel/filters. Changes are applied in a
// fixed order (mode, period, location); each effective change triggers its
// refresh before the next is applied. The response is the resulting
// snapshot.
func (h *PanelHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var req UpdateFiltersRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	ctx := r.Context()

	if req.Mode != nil {
		if err := h.service.SetMode(ctx, types.Mode(*req.Mode)); err != nil {
			core.Error(w, r, err)
			return
		}
	}
	if req.PeriodDays != nil {
		if err := h.service.SetPeriod(ctx, *req.PeriodDays); err != nil {
			core.Error(w, r, err)
			return
		}
	}
	if req.MunicipalityID != nil || req.BarangayID != nil {
		current := h.service.Filter()
		municipalityID := current.MunicipalityID
		barangayID := current.BarangayID
		if req.MunicipalityID != nil {
			municipalityID = *req.MunicipalityID
		}
		if req.BarangayID != nil {
			barangayID = *req.BarangayID
		}
		if err := h.service.SetLocation(ctx, municipalityID, barangayID); err != nil {
			core.Error(w, r, err)
			return
		}
	}

	core.JSON(w, r, http.StatusOK, h.service.Snapshot())
}

// GetChart handles GET /v1/panel/chart. Returns the chart model alone, for
// clients that only need to redraw the graph.
func (h *PanelHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, h.service.Snapshot().Chart)
}

// RefreshPrediction handles POST /v1/panel/prediction/refresh. Forces a
// prediction re-fetch and returns the resulting gauge and affected-area
// views. Upstream failure still returns the snapshot (with the gauge in its
// unavailable state) rather than an error, so clients can render the
// degraded view.
func (h *PanelHandler) RefreshPrediction(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RefreshPrediction(r.Context()); err != nil {
		h.logger.Warn("manual prediction refresh failed", "error", err)
	}

	snap := h.service.Snapshot()
	core.JSON(w, r, http.StatusOK, map[string]any{
		"gauge":          snap.Gauge,
		"affected_areas": snap.AffectedAreas,
	})
}

// Export handles GET /v1/panel/export. Renders the current chart model to a
// PNG download.
func (h *PanelHandler) Export(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Snapshot()

	title := panel.PrimaryLabel(snap.Filter.Mode)
	png, err := panel.SnapshotPNG(snap.Chart, title)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	filename := panel.SnapshotFilename(snap.Filter.Mode, h.now())
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.logger.Warn("failed to write chart export", "error", err)
	}
}
