// Package modelhttp is an HTTP client for the external text-classification
// model service. The service owns the trained model; this client only speaks
// its JSON wire format.
package modelhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/resolve/internal/triage"
)

// Client implements triage.Classifier against the model service.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a client for the model service at the given base endpoint.
func New(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Category map[string]float64 `json:"category"`
	Priority map[string]float64 `json:"priority"`
}

// Classify sends the text to the model service and returns its category and
// priority distributions.
func (c *Client) Classify(ctx context.Context, text string) (*triage.Classification, error) {
	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/api/v1/classify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model service request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var out classifyResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(out.Category) == 0 || len(out.Priority) == 0 {
		return nil, fmt.Errorf("model service returned empty distribution")
	}

	return &triage.Classification{
		Category: out.Category,
		Priority: out.Priority,
	}, nil
}
