package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"floodwatch/internal/core"
	"floodwatch/internal/types"
)

// LocationRepo defines the data access contract for location lookups.
// Mirrors the concrete db.LocationRepository methods used by this handler.
type LocationRepo interface {
	ListMunicipalities(ctx context.Context) ([]types.Municipality, error)
	ListBarangays(ctx context.Context, municipalityID string) ([]types.Barangay, error)
}

// LocationHandler serves the administrative area listings that back the
// panel's location filter dropdowns.
type LocationHandler struct {
	repo   LocationRepo
	logger *slog.Logger
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(repo LocationRepo, l *slog.Logger) *LocationHandler {
	if l == nil {
		l = slog.Default()
	}
	return &LocationHandler{repo: repo, logger: l}
}

// RegisterRoutes mounts location routes on the provided chi.Router.
func (h *LocationHandler) RegisterRoutes(r chi.Router) {
	r.Route("/locations", func(r chi.Router) {
		r.Get("/municipalities", h.ListMunicipalities)
		r.Get("/municipalities/{id}/barangays", h.ListBarangays)
	})
}

// ListMunicipalities handles GET /v1/locations/municipalities.
func (h *LocationHandler) ListMunicipalities(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.ListMunicipalities(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if out == nil {
		out = []types.Municipality{}
	}
	core.JSON(w, r, http.StatusOK, out)
}

// ListBarangays handles GET /v1/locations/municipalities/{id}/barangays.
func (h *LocationHandler) ListBarangays(w http.ResponseWriter, r *http.Request) {
	municipalityID := chi.URLParam(r, "id")

	out, err := h.repo.ListBarangays(r.Context(), municipalityID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if out == nil {
		out = []types.Barangay{}
	}
	core.JSON(w, r, http.StatusOK, out)
}
