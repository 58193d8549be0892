package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"floodwatch/internal/types"
)

// DecisionClient fetches decision-support suggestions. The request parameters
// mirror the chart-data endpoint (mode, period, optional location).
type DecisionClient struct {
	base    *BaseClient
	baseURL string
	logger  *slog.Logger
}

// NewDecisionClient creates a DecisionClient.
func NewDecisionClient(base *BaseClient, baseURL string, logger *slog.Logger) *DecisionClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &DecisionClient{base: base, baseURL: baseURL, logger: logger}
}

// Fetch retrieves the decision-support suggestion for the filter scope.
func (c *DecisionClient) Fetch(ctx context.Context, filter types.FilterState) (*types.SuggestionResult, error) {
	endpoint := c.baseURL + "/decision-support/?" + seriesQuery(filter, false)

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
			fmt.Sprintf("decision-support endpoint returned %d", resp.StatusCode),
			nil,
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, seriesResponseLimit))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamUnavailable, "failed to read decision-support response", err)
	}

	var payload struct {
		Subject         string   `json:"subject"`
		Level           string   `json:"level"`
		LevelNumeric    float64  `json:"level_numeric"`
		Reasons         []string `json:"reasons"`
		SuggestedAction string   `json:"suggested_action"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamMalformed, "decision-support payload is not valid JSON", err)
	}

	return &types.SuggestionResult{
		Subject:         payload.Subject,
		Level:           payload.Level,
		LevelNumeric:    payload.LevelNumeric,
		Reasons:         payload.Reasons,
		SuggestedAction: payload.SuggestedAction,
	}, nil
}
