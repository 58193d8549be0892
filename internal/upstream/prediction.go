package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"floodwatch/internal/types"
)

// predictionPayload mirrors the upstream prediction wire format.
//
// rainfall_24h is decoded leniently: older deployments of the flood service
// send a bare number, newer ones an object {"total": n}.
type predictionPayload struct {
	Probability         float64           `json:"probability"`
	Impact              string            `json:"impact"`
	HoursToFlood        *float64          `json:"hours_to_flood"`
	FloodTime           string            `json:"flood_time"`
	ContributingFactors []string          `json:"contributing_factors"`
	AffectedBarangays   []affectedPayload `json:"affected_barangays"`
	LastUpdated         string            `json:"last_updated"`
	Rainfall24h         json.RawMessage   `json:"rainfall_24h"`
	WaterLevel          *float64          `json:"water_level"`
}

type affectedPayload struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Population        *int   `json:"population"`
	RiskLevel         string `json:"risk_level"`
	EvacuationCenters int    `json:"evacuation_centers"`
}

// PredictionClient fetches the current flood prediction for a location scope.
type PredictionClient struct {
	base    *BaseClient
	baseURL string
	logger  *slog.Logger
}

// NewPredictionClient creates a PredictionClient.
func NewPredictionClient(base *BaseClient, baseURL string, logger *slog.Logger) *PredictionClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionClient{base: base, baseURL: baseURL, logger: logger}
}

// Fetch retrieves the prediction for the filter's location scope. Mode and
// period do not apply to predictions; only the optional municipality and
// barangay identifiers are sent.
func (c *PredictionClient) Fetch(ctx context.Context, filter types.FilterState) (*types.PredictionResult, error) {
	q := url.Values{}
	if filter.MunicipalityID != "" {
		q.Set("municipality_id", filter.MunicipalityID)
	}
	if filter.BarangayID != "" {
		q.Set("barangay_id", filter.BarangayID)
	}

	endpoint := c.baseURL + "/prediction/"
	if encoded := q.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build upstream request", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("prediction endpoint returned %d", resp.StatusCode),
			nil,
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, seriesResponseLimit))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamUnavailable, "failed to read prediction response", err)
	}

	var payload predictionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamMalformed, "prediction payload is not valid JSON", err)
	}

	result := &types.PredictionResult{
		ProbabilityPercent:  payload.Probability,
		ImpactText:          payload.Impact,
		HoursToFlood:        payload.HoursToFlood,
		FloodTimeISO:        payload.FloodTime,
		ContributingFactors: payload.ContributingFactors,
		WaterLevel:          payload.WaterLevel,
		LastUpdatedISO:      payload.LastUpdated,
		Rainfall24h:         parseRainfall24h(payload.Rainfall24h),
	}

	for _, a := range payload.AffectedBarangays {
		result.AffectedAreas = append(result.AffectedAreas, types.AffectedArea{
			ID:                a.ID,
			Name:              a.Name,
			Population:        a.Population,
			RiskLevel:         parseAreaRisk(a.RiskLevel),
			EvacuationCenters: a.EvacuationCenters,
		})
	}

	return result, nil
}

// parseRainfall24h accepts either a bare JSON number or {"total": n}.
// Anything else (including absence) yields nil.
func parseRainfall24h(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}

	var wrapped struct {
		Total float64 `json:"total"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return &wrapped.Total
	}

	return nil
}

// parseAreaRisk normalizes the upstream risk_level string. Unknown values
// fall back to low rather than failing the whole prediction.
func parseAreaRisk(s string) types.AreaRiskLevel {
	switch types.AreaRiskLevel(s) {
	case types.AreaRiskHigh:
		return types.AreaRiskHigh
	case types.AreaRiskModerate:
		return types.AreaRiskModerate
	default:
		return types.AreaRiskLow
	}
}
