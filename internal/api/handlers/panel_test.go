package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floodwatch/internal/core"
	"floodwatch/internal/panel"
	"floodwatch/internal/types"
)

type stubPanelService struct {
	snapshot panel.Snapshot
	filter   types.FilterState

	setModeCalls     []types.Mode
	setPeriodCalls   []int
	setLocationCalls [][2]string
	refreshCalls     int

	setModeErr error
	refreshErr error
}

func (s *stubPanelService) Snapshot() panel.Snapshot { return s.snapshot }

func (s *stubPanelService) Filter() types.FilterState { return s.filter }

func (s *stubPanelService) RefreshPrediction(context.Context) error {
	s.refreshCalls++
	return s.refreshErr
}

func (s *stubPanelService) SetMode(_ context.Context, mode types.Mode) error {
	s.setModeCalls = append(s.setModeCalls, mode)
	return s.setModeErr
}

func (s *stubPanelService) SetPeriod(_ context.Context, days int) error {
	s.setPeriodCalls = append(s.setPeriodCalls, days)
	return nil
}

func (s *stubPanelService) SetLocation(_ context.Context, municipalityID, barangayID string) error {
	s.setLocationCalls = append(s.setLocationCalls, [2]string{municipalityID, barangayID})
	return nil
}

func panelSnapshotFixture() panel.Snapshot {
	v1, v2 := 10.0, 20.0
	return panel.Snapshot{
		Filter: types.FilterState{Mode: types.ModeRainfall, PeriodDays: 7},
		Chart: types.ChartModel{
			Labels: []string{"1/1", "1/2"},
			Series: []types.RenderSeries{
				{Label: "Rainfall (mm)", Values: []*float64{&v1, &v2}, Color: "#0d6efd"},
			},
		},
		Gauge:         panel.GaugeView{ProbabilityPercent: 30, Band: types.RiskNormal, Available: true},
		AffectedAreas: []panel.AreaRow{{Name: "No affected areas reported", Placeholder: true}},
		Decision:      panel.DecisionView{Recommendation: "no recommendation available"},
	}
}

func newPanelRouter(service *stubPanelService) http.Handler {
	h := NewPanelHandler(service, core.NewValidator(nil), nil)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestPanelGet(t *testing.T) {
	service := &stubPanelService{snapshot: panelSnapshotFixture()}
	router := newPanelRouter(service)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panel/", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data panel.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, types.ModeRainfall, resp.Data.Filter.Mode)
	require.Len(t, resp.Data.Chart.Series, 1)
}

func TestPanelUpdateFilters(t *testing.T) {
	service := &stubPanelService{snapshot: panelSnapshotFixture()}
	router := newPanelRouter(service)

	body := `{"mode":"water_level","period_days":30,"barangay_id":"brgy_9"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/panel/filters", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []types.Mode{types.ModeWaterLevel}, service.setModeCalls)
	assert.Equal(t, []int{30}, service.setPeriodCalls)
	require.Len(t, service.setLocationCalls, 1)
	assert.Equal(t, "brgy_9", service.setLocationCalls[0][1])
}

func TestPanelUpdateFiltersRejectsUnknownMode(t *testing.T) {
	service := &stubPanelService{snapshot: panelSnapshotFixture()}
	router := newPanelRouter(service)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/panel/filters", strings.NewReader(`{"mode":"humidity"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, service.setModeCalls)
}

func TestPanelUpdateFiltersRejectsUnknownField(t *testing.T) {
	service := &stubPanelService{snapshot: panelSnapshotFixture()}
	router := newPanelRouter(service)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/panel/filters", strings.NewReader(`{"granularity":"hourly"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPanelRefreshPredictionReturnsDegradedView(t *testing.T) {
	snap := panelSnapshotFixture()
	snap.Gauge = panel.GaugeView{Available: false}
	service := &stubPanelService{snapshot: snap, refreshErr: errors.New("upstream down")}
	router := newPanelRouter(service)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/panel/prediction/refresh", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, service.refreshCalls)

	var resp struct {
		Data struct {
			Gauge panel.GaugeView `json:"gauge"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Gauge.Available)
}

func TestPanelExport(t *testing.T) {
	service := &stubPanelService{snapshot: panelSnapshotFixture()}
	router := newPanelRouter(service)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panel/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "flood-prediction-rainfall-")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestPanelExportFailsWithoutPlottablePoints(t *testing.T) {
	snap := panelSnapshotFixture()
	snap.Chart.Series[0].Values = []*float64{nil, nil}
	service := &stubPanelService{snapshot: snap}
	router := newPanelRouter(service)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panel/export", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
