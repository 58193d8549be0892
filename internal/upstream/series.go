package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"floodwatch/internal/types"
)

// seriesResponseLimit caps the size of a series payload read into memory.
const seriesResponseLimit = 4 << 20 // 4 MB

// seriesPayload mirrors the upstream chart-data wire format.
type seriesPayload struct {
	Labels           []string   `json:"labels"`
	Values           []*float64 `json:"values"`
	HistoricalValues []*float64 `json:"historical_values"`
	ThresholdValue   *float64   `json:"threshold_value"`
}

// SeriesClient fetches measurement series from the upstream chart-data
// endpoint. Successful payloads are cached keyed by the request query.
type SeriesClient struct {
	base    *BaseClient
	baseURL string
	cache   *Cache
	logger  *slog.Logger
}

// NewSeriesClient creates a SeriesClient. The cache may be nil to disable
// response caching.
func NewSeriesClient(base *BaseClient, baseURL string, cache *Cache, logger *slog.Logger) *SeriesClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeriesClient{
		base:    base,
		baseURL: baseURL,
		cache:   cache,
		logger:  logger,
	}
}

// Fetch retrieves the series for the given filter scope. When historical is
// true the request carries historical=true and the result additionally holds
// the historical-average values and, when the backend supplies one, a
// threshold value.
//
// Transport failures, non-2xx statuses, and malformed payloads are returned
// as AppErrors; the caller is expected to log and keep its previous chart
// state. An empty-but-successful response (zero labels) is valid and renders
// as an empty chart.
func (c *SeriesClient) Fetch(ctx context.Context, filter types.FilterState, historical bool) (*types.SeriesFetchResult, error) {
	query := seriesQuery(filter, historical)
	endpoint := c.baseURL + "/chart-data/?" + query

	if c.cache != nil {
		if body, ok := c.cache.Get(query); ok {
			result, err := parseSeriesPayload(body)
			if err == nil {
				return result, nil
			}
			// A cached payload that no longer parses is dropped silently;
			// fall through to a fresh fetch.
		}
	}

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	result, err := parseSeriesPayload(body)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(query, body)
	}
	return result, nil
}

// get issues the GET through the resilient BaseClient and returns the body
// for 200 responses, mapping everything else to an AppError.
func (c *SeriesClient) get(ctx context.Context, endpoint string) ([]byte, error) {
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
			fmt.Sprintf("chart-data endpoint returned %d", resp.StatusCode),
			nil,
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, seriesResponseLimit))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamUnavailable, "failed to read chart-data response", err)
	}
	return body, nil
}

// parseSeriesPayload decodes and validates a chart-data payload.
func parseSeriesPayload(body []byte) (*types.SeriesFetchResult, error) {
	var payload seriesPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamMalformed, "chart-data payload is not valid JSON", err)
	}

	if len(payload.Labels) != len(payload.Values) {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamMalformed,
			"chart-data labels and values lengths differ",
			nil,
			map[string]any{"labels": len(payload.Labels), "values": len(payload.Values)},
		)
	}
	if payload.HistoricalValues != nil && len(payload.HistoricalValues) != len(payload.Labels) {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamMalformed,
			"chart-data historical series length differs from label domain",
			nil,
			map[string]any{"labels": len(payload.Labels), "historical_values": len(payload.HistoricalValues)},
		)
	}

	return &types.SeriesFetchResult{
		Series: types.NumericSeries{
			Labels: payload.Labels,
			Values: payload.Values,
		},
		HistoricalValues: payload.HistoricalValues,
		ThresholdValue:   payload.ThresholdValue,
	}, nil
}

// seriesQuery builds the query string for a chart-data request. The key set
// doubles as the cache key, so parameter order is fixed.
func seriesQuery(filter types.FilterState, historical bool) string {
	q := url.Values{}
	q.Set("type", string(filter.Mode))
	q.Set("days", strconv.Itoa(filter.PeriodDays))
	if filter.MunicipalityID != "" {
		q.Set("municipality_id", filter.MunicipalityID)
	}
	if filter.BarangayID != "" {
		q.Set("barangay_id", filter.BarangayID)
	}
	if historical {
		q.Set("historical", "true")
	}
	return q.Encode()
}
