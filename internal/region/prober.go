package region

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"audit-portal-go/pkg/model"
)

// DefaultProbeTimeout bounds a single health probe
const DefaultProbeTimeout = 3 * time.Second

// HealthPath is appended to a region's endpoint base URL
const HealthPath = "/health"

// Prober reports whether a region's endpoint is reachable
type Prober interface {
	Probe(ctx context.Context, region model.Region) bool
}

// HTTPProber probes GET {endpoint}/health. Any 2xx within the timeout is healthy.
type HTTPProber struct {
	httpClient *http.Client
	timeout    time.Duration
	log        logr.Logger
	metrics    *Metrics
}

// NewHTTPProber creates a prober. A non-positive timeout uses DefaultProbeTimeout.
func NewHTTPProber(timeout time.Duration, log logr.Logger, metrics *Metrics) *HTTPProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &HTTPProber{
		// The per-request context carries the deadline; the client timeout is a backstop.
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		log:        log,
		metrics:    metrics,
	}
}

// Probe never returns an error: every failure is reported as unhealthy
func (p *HTTPProber) Probe(ctx context.Context, region model.Region) (healthy bool) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.log.Error(nil, "[REGION] recovered from panic while probing", "region", region.ID, "panic", r)
			healthy = false
		}
		p.metrics.observeProbe(region.ID, healthy, time.Since(start).Seconds())
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, region.EndpointBaseURL+HealthPath, nil)
	if err != nil {
		p.log.V(1).Info("[REGION] invalid probe request", "region", region.ID, "error", err.Error())
		return false
	}
	req.Header.Set("User-Agent", "AuditPortal/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.V(1).Info("[REGION] probe failed", "region", region.ID, "error", err.Error())
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	healthy = resp.StatusCode >= 200 && resp.StatusCode < 300
	if !healthy {
		p.log.V(1).Info("[REGION] probe returned non-success status", "region", region.ID, "status", resp.StatusCode)
	}
	return healthy
}
