package upstream

import (
	"context"
	"fmt"
	"net/http"
)

// HealthProbe reports reachability of the remote flood service. Any HTTP
// response counts as reachable; only transport failures and 5xx statuses
// mark the upstream unhealthy.
type HealthProbe struct {
	client  *http.Client
	baseURL string
}

// NewHealthProbe creates an upstream health probe. The probe uses its own
// plain client so a tripped circuit breaker does not mask recovery.
func NewHealthProbe(client *http.Client, baseURL string) *HealthProbe {
	if client == nil {
		client = http.DefaultClient
	}
	return &HealthProbe{client: client, baseURL: baseURL}
}

func (p *HealthProbe) Name() string { return "upstream" }

func (p *HealthProbe) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("upstream returned %d", resp.StatusCode)
	}
	return nil
}
