package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Client talks to the model-serving sidecar over HTTP. The sidecar loads
// the trained Isolation Forest and KMeans artifacts once at startup; this
// client only forwards feature records and parses verdicts.
type Client struct {
	baseURL    string
	httpClient *http.Client

	requestsTotal  atomic.Int64
	requestsFailed atomic.Int64
}

// NewClient creates an oracle client for the sidecar at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type detectRequest struct {
	Records []FeatureRecord `json:"records"`
}

type detectResponse struct {
	Results []Verdict `json:"results"`
	Error   string    `json:"error,omitempty"`
}

type clusterResponse struct {
	Cluster int    `json:"cluster"`
	Error   string `json:"error,omitempty"`
}

// DetectAnomalies scores a batch of records and returns one verdict per
// record, in input order.
func (c *Client) DetectAnomalies(ctx context.Context, records []FeatureRecord) ([]Verdict, error) {
	var resp detectResponse
	if err := c.post(ctx, "/detect", detectRequest{Records: records}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		c.requestsFailed.Add(1)
		return nil, fmt.Errorf("detect anomalies: %s", resp.Error)
	}
	if len(resp.Results) != len(records) {
		c.requestsFailed.Add(1)
		return nil, fmt.Errorf("detect anomalies: got %d verdicts for %d records", len(resp.Results), len(records))
	}
	return resp.Results, nil
}

// AssignCluster returns the cluster id for one record.
func (c *Client) AssignCluster(ctx context.Context, record FeatureRecord) (int, error) {
	var resp clusterResponse
	if err := c.post(ctx, "/cluster", record, &resp); err != nil {
		return 0, err
	}
	if resp.Error != "" {
		c.requestsFailed.Add(1)
		return 0, fmt.Errorf("assign cluster: %s", resp.Error)
	}
	return resp.Cluster, nil
}

// Ready probes the sidecar's health endpoint. Called once at startup so a
// missing or still-loading model surfaces before traffic is accepted.
func (c *Client) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("build readiness request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("oracle readiness: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("oracle readiness: status %d", resp.StatusCode)
	}
	return nil
}

// Stats returns request counters for health reporting.
func (c *Client) Stats() map[string]int64 {
	return map[string]int64{
		"requests_total":  c.requestsTotal.Load(),
		"requests_failed": c.requestsFailed.Load(),
	}
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	c.requestsTotal.Add(1)

	payload, err := json.Marshal(body)
	if err != nil {
		c.requestsFailed.Add(1)
		return fmt.Errorf("marshal oracle request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.requestsFailed.Add(1)
		return fmt.Errorf("build oracle request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.requestsFailed.Add(1)
		return fmt.Errorf("oracle %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.requestsFailed.Add(1)
		return fmt.Errorf("oracle %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.requestsFailed.Add(1)
		return fmt.Errorf("decode oracle response: %w", err)
	}
	return nil
}
