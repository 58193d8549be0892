package upstream

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floodwatch/internal/types"
)

func seriesTestClient(rt roundTripFunc, cache *Cache) *SeriesClient {
	base := newTestClient(rt, RetryPolicy{MaxRetries: 0, MinWait: time.Millisecond, MaxWait: time.Millisecond})
	return NewSeriesClient(base, "http://flood.test", cache, nil)
}

func TestSeriesFetchParsesPayload(t *testing.T) {
	var gotQuery string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		gotQuery = req.URL.RawQuery
		return textResponse(http.StatusOK, `{
			"labels": ["2026-01-01 06:00:00", "2026-01-01 12:00:00", "2026-01-01 18:00:00"],
			"values": [4.2, null, 7.8]
		}`), nil
	})
	client := seriesTestClient(rt, nil)

	filter := types.FilterState{Mode: types.ModeRainfall, PeriodDays: 7, BarangayID: "brgy_3"}
	result, err := client.Fetch(context.Background(), filter, false)
	require.NoError(t, err)

	require.Len(t, result.Series.Labels, 3)
	require.Len(t, result.Series.Values, 3)
	assert.Nil(t, result.Series.Values[1])
	require.NotNil(t, result.Series.Values[2])
	assert.Equal(t, 7.8, *result.Series.Values[2])
	assert.Nil(t, result.HistoricalValues)

	assert.Contains(t, gotQuery, "type=rainfall")
	assert.Contains(t, gotQuery, "days=7")
	assert.Contains(t, gotQuery, "barangay_id=brgy_3")
	assert.NotContains(t, gotQuery, "historical")
}

func TestSeriesFetchHistorical(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		assert.Contains(t, req.URL.RawQuery, "historical=true")
		return textResponse(http.StatusOK, `{
			"labels": ["a", "b"],
			"values": [1, 2],
			"historical_values": [1.5, 1.8],
			"threshold_value": 2.4
		}`), nil
	})
	client := seriesTestClient(rt, nil)

	result, err := client.Fetch(context.Background(), types.FilterState{Mode: types.ModeWaterLevel, PeriodDays: 30}, true)
	require.NoError(t, err)

	require.Len(t, result.HistoricalValues, 2)
	require.NotNil(t, result.ThresholdValue)
	assert.Equal(t, 2.4, *result.ThresholdValue)
}

func TestSeriesFetchRejectsLengthMismatch(t *testing.T) {
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return textResponse(http.StatusOK, `{"labels": ["a", "b"], "values": [1]}`), nil
	})
	client := seriesTestClient(rt, nil)

	_, err := client.Fetch(context.Background(), types.DefaultFilterState(), false)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeUpstreamMalformed, appErr.Code)
}

func TestSeriesFetchRejectsHistoricalLengthMismatch(t *testing.T) {
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return textResponse(http.StatusOK, `{
			"labels": ["a", "b"],
			"values": [1, 2],
			"historical_values": [1]
		}`), nil
	})
	client := seriesTestClient(rt, nil)

	_, err := client.Fetch(context.Background(), types.DefaultFilterState(), true)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeUpstreamMalformed, appErr.Code)
}

func TestSeriesFetchEmptySeriesIsValid(t *testing.T) {
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return textResponse(http.StatusOK, `{"labels": [], "values": []}`), nil
	})
	client := seriesTestClient(rt, nil)

	result, err := client.Fetch(context.Background(), types.DefaultFilterState(), false)
	require.NoError(t, err)
	assert.Empty(t, result.Series.Labels)
}

func TestSeriesFetchUsesCache(t *testing.T) {
	cache, err := NewCache(time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	var hits atomic.Int32
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		hits.Add(1)
		return textResponse(http.StatusOK, `{"labels": ["a"], "values": [1]}`), nil
	})
	client := seriesTestClient(rt, cache)

	filter := types.DefaultFilterState()
	_, err = client.Fetch(context.Background(), filter, false)
	require.NoError(t, err)
	_, err = client.Fetch(context.Background(), filter, false)
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())

	// A different scope misses the cache.
	filter.PeriodDays = 30
	_, err = client.Fetch(context.Background(), filter, false)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}
