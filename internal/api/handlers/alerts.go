package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"floodwatch/internal/core"
	"floodwatch/internal/types"
)

// AlertRepo defines the data access contract for alert operations.
// Mirrors the concrete db.AlertRepository methods used by this handler.
type AlertRepo interface {
	Create(ctx context.Context, alert *types.FloodAlert) error
	GetByID(ctx context.Context, id string) (*types.FloodAlert, error)
	ListActive(ctx context.Context) ([]types.FloodAlert, error)
	Deactivate(ctx context.Context, id string) error
}

// BarangayResolver verifies that submitted barangay IDs exist.
type BarangayResolver interface {
	GetBarangays(ctx context.Context, ids []string) ([]types.Barangay, error)
}

// AlertDispatcher fans a published alert out to its recipients.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, alert *types.FloodAlert) error
}

// CreateAlertRequest is the request body for POST /v1/alerts.
type CreateAlertRequest struct {
	Title               string   `json:"title" validate:"required,max=200"`
	Description         string   `json:"description" validate:"required,max=2000"`
	SeverityLevel       string   `json:"severity_level" validate:"required,oneof=advisory watch warning"`
	AffectedBarangayIDs []string `json:"affected_barangay_ids" validate:"required,min=1,dive,required"`
}

// AlertHandler manages operator-submitted flood alerts. Mutating routes
// require the admin key.
type AlertHandler struct {
	repo       AlertRepo
	barangays  BarangayResolver
	dispatcher AlertDispatcher
	validator  *core.Validator
	logger     *slog.Logger
	adminOnly  func(http.Handler) http.Handler
	now        func() time.Time
}

// NewAlertHandler creates a new AlertHandler with the provided dependencies.
func NewAlertHandler(
	repo AlertRepo,
	barangays BarangayResolver,
	dispatcher AlertDispatcher,
	v *core.Validator,
	l *slog.Logger,
	adminOnly func(http.Handler) http.Handler,
) *AlertHandler {
	if l == nil {
		l = slog.Default()
	}
	return &AlertHandler{
		repo:       repo,
		barangays:  barangays,
		dispatcher: dispatcher,
		validator:  v,
		logger:     l,
		adminOnly:  adminOnly,
		now:        time.Now,
	}
}

// RegisterRoutes mounts alert routes on the provided chi.Router.
func (h *AlertHandler) RegisterRoutes(r chi.Router) {
	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", h.ListActive)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			if h.adminOnly != nil {
				r.Use(h.adminOnly)
			}
			r.Post("/", h.Create)
			r.Post("/{id}/deactivate", h.Deactivate)
		})
	})
}

// Create handles POST /v1/alerts. The alert is persisted active and its
// notifications are dispatched before the response is written; a dispatch
// failure is logged but does not fail the creation.
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAlertRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	found, err := h.barangays.GetBarangays(r.Context(), req.AffectedBarangayIDs)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if len(found) != len(uniqueStrings(req.AffectedBarangayIDs)) {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeNotFoundBarangay,
			"one or more affected barangays do not exist",
			nil,
		))
		return
	}

	alert := &types.FloodAlert{
		ID:                  "alert_" + uuid.NewString(),
		Title:               req.Title,
		Description:         req.Description,
		SeverityLevel:       types.AlertSeverity(req.SeverityLevel),
		Active:              true,
		AffectedBarangayIDs: uniqueStrings(req.AffectedBarangayIDs),
		CreatedAt:           h.now().UTC(),
	}

	if err := h.repo.Create(r.Context(), alert); err != nil {
		core.Error(w, r, err)
		return
	}

	if h.dispatcher != nil {
		if err := h.dispatcher.Dispatch(r.Context(), alert); err != nil {
			h.logger.Error("alert notification dispatch failed",
				"alert_id", alert.ID,
				"error", err,
			)
		}
	}

	core.JSON(w, r, http.StatusCreated, alert)
}

// Get handles GET /v1/alerts/{id}.
func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	alert, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, alert)
}

// ListActive handles GET /v1/alerts. Returns active alerts, newest first.
func (h *AlertHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.ListActive(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if out == nil {
		out = []types.FloodAlert{}
	}
	core.JSON(w, r, http.StatusOK, out)
}

// Deactivate handles POST /v1/alerts/{id}/deactivate.
func (h *AlertHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Deactivate(r.Context(), id); err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, map[string]string{"id": id, "status": "deactivated"})
}

// uniqueStrings returns the input with duplicates removed, order preserved.
func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
