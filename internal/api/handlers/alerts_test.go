package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floodwatch/internal/core"
	"floodwatch/internal/types"
)

type stubAlertRepo struct {
	created    []*types.FloodAlert
	active     []types.FloodAlert
	getResult  *types.FloodAlert
	getErr     error
	deactivate map[string]error
}

func (s *stubAlertRepo) Create(_ context.Context, alert *types.FloodAlert) error {
	s.created = append(s.created, alert)
	return nil
}

func (s *stubAlertRepo) GetByID(context.Context, string) (*types.FloodAlert, error) {
	return s.getResult, s.getErr
}

func (s *stubAlertRepo) ListActive(context.Context) ([]types.FloodAlert, error) {
	return s.active, nil
}

func (s *stubAlertRepo) Deactivate(_ context.Context, id string) error {
	if s.deactivate == nil {
		return nil
	}
	return s.deactivate[id]
}

type stubBarangayResolver struct {
	known map[string]bool
}

func (s *stubBarangayResolver) GetBarangays(_ context.Context, ids []string) ([]types.Barangay, error) {
	var out []types.Barangay
	for _, id := range ids {
		if s.known[id] {
			out = append(out, types.Barangay{ID: id})
		}
	}
	return out, nil
}

type stubAlertDispatcher struct {
	dispatched []*types.FloodAlert
}

func (s *stubAlertDispatcher) Dispatch(_ context.Context, alert *types.FloodAlert) error {
	s.dispatched = append(s.dispatched, alert)
	return nil
}

func newAlertRouter(repo *stubAlertRepo, resolver *stubBarangayResolver, dispatcher *stubAlertDispatcher, adminOnly func(http.Handler) http.Handler) http.Handler {
	h := NewAlertHandler(repo, resolver, dispatcher, core.NewValidator(nil), nil, adminOnly)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestAlertCreateDispatchesNotifications(t *testing.T) {
	repo := &stubAlertRepo{}
	resolver := &stubBarangayResolver{known: map[string]bool{"brgy_1": true, "brgy_2": true}}
	dispatcher := &stubAlertDispatcher{}
	router := newAlertRouter(repo, resolver, dispatcher, nil)

	body := `{
		"title": "River rising",
		"description": "Water level approaching flood stage",
		"severity_level": "warning",
		"affected_barangay_ids": ["brgy_1", "brgy_2", "brgy_1"]
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/alerts/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.created, 1)
	alert := repo.created[0]
	assert.True(t, alert.Active)
	assert.Equal(t, types.SeverityWarning, alert.SeverityLevel)
	// Duplicate barangay IDs are collapsed.
	assert.Equal(t, []string{"brgy_1", "brgy_2"}, alert.AffectedBarangayIDs)
	require.Len(t, dispatcher.dispatched, 1)
	assert.Equal(t, alert.ID, dispatcher.dispatched[0].ID)
}

func TestAlertCreateRejectsUnknownBarangay(t *testing.T) {
	repo := &stubAlertRepo{}
	resolver := &stubBarangayResolver{known: map[string]bool{"brgy_1": true}}
	router := newAlertRouter(repo, resolver, &stubAlertDispatcher{}, nil)

	body := `{
		"title": "River rising",
		"description": "x",
		"severity_level": "watch",
		"affected_barangay_ids": ["brgy_1", "brgy_missing"]
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/alerts/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, repo.created)
}

func TestAlertCreateRejectsUnknownSeverity(t *testing.T) {
	router := newAlertRouter(&stubAlertRepo{}, &stubBarangayResolver{}, &stubAlertDispatcher{}, nil)

	body := `{
		"title": "t",
		"description": "d",
		"severity_level": "catastrophic",
		"affected_barangay_ids": ["brgy_1"]
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/alerts/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAlertMutationsRequireAdminKey(t *testing.T) {
	denyAll := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	repo := &stubAlertRepo{active: []types.FloodAlert{{ID: "alert_1"}}}
	router := newAlertRouter(repo, &stubBarangayResolver{}, &stubAlertDispatcher{}, denyAll)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/alerts/", strings.NewReader(`{}`))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Read routes stay open.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/alerts/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAlertListActive(t *testing.T) {
	repo := &stubAlertRepo{active: []types.FloodAlert{
		{ID: "alert_2", Title: "Newest"},
		{ID: "alert_1", Title: "Older"},
	}}
	router := newAlertRouter(repo, &stubBarangayResolver{}, &stubAlertDispatcher{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/alerts/", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []types.FloodAlert `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "alert_2", resp.Data[0].ID)
}
