package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-logr/logr"

	"audit-portal-go/pkg/model"
)

// Client talks to a region's scanning API
type Client struct {
	httpClient *http.Client
	log        logr.Logger
}

// StartRequest is the body of POST {endpoint}/v1/audits
type StartRequest struct {
	TargetURL string `json:"target_url"`
}

// StartResponse is returned by the scanning API once an audit is queued
type StartResponse struct {
	AuditID string           `json:"audit_id"`
	Stage   model.AuditStage `json:"stage"`
}

// StatusResponse is returned by GET {endpoint}/v1/audits/{id}
type StatusResponse struct {
	AuditID string           `json:"audit_id"`
	Stage   model.AuditStage `json:"stage"`
	Message string           `json:"message"`
}

// NewClient creates a scanning API client
func NewClient(timeout time.Duration, log logr.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// StartAudit asks the region's backend to start scanning targetURL
func (c *Client) StartAudit(ctx context.Context, region model.Region, targetURL string) (*StartResponse, error) {
	jsonData, err := json.Marshal(StartRequest{TargetURL: targetURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/v1/audits", region.EndpointBaseURL)
	c.log.Info("[AUDIT] requesting audit", "region", region.ID, "url", apiURL, "target", targetURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var startResp StartResponse
	if err := c.do(req, &startResp); err != nil {
		return nil, err
	}
	if startResp.AuditID == "" {
		return nil, fmt.Errorf("API response missing audit_id")
	}
	if !startResp.Stage.Valid() {
		startResp.Stage = model.StageQueued
	}

	c.log.Info("[AUDIT] audit created", "region", region.ID, "audit_id", startResp.AuditID)
	return &startResp, nil
}

// GetStatus fetches the pipeline stage of an audit from the region that runs it
func (c *Client) GetStatus(ctx context.Context, region model.Region, auditID string) (*StatusResponse, error) {
	apiURL := fmt.Sprintf("%s/v1/audits/%s", region.EndpointBaseURL, url.PathEscape(auditID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var status StatusResponse
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error(err, "[AUDIT] failed to send request", "url", req.URL.String())
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Info("[AUDIT] API returned error status", "status", resp.StatusCode, "body", string(body))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// APIError is a non-2xx answer from a scanning API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}
