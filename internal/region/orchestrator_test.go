package region

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"audit-portal-go/pkg/model"
)

// fakeProber answers from a fixed health table and records the probe order
type fakeProber struct {
	mu      sync.Mutex
	healthy map[model.RegionID]bool
	calls   []model.RegionID
}

func (f *fakeProber) Probe(_ context.Context, region model.Region) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, region.ID)
	return f.healthy[region.ID]
}

func newTestOrchestrator(prober Prober, metrics *Metrics) *Orchestrator {
	return NewOrchestrator(NewRegistry(Endpoints{}), prober, logr.Discard(), metrics)
}

func TestResolvePrimaryHealthy(t *testing.T) {
	prober := &fakeProber{healthy: map[model.RegionID]bool{model.RegionUS: true, model.RegionIN: true}}
	o := newTestOrchestrator(prober, nil)

	sel := o.Resolve(context.Background(), SelectionInput{TargetURL: "https://example.in"})

	assert.Equal(t, model.RegionSelection{ChosenRegion: model.RegionIN, WasFallback: false}, sel)
	assert.Equal(t, []model.RegionID{model.RegionIN}, prober.calls, "secondary must not be probed")
}

func TestResolveFallsBackToSecondary(t *testing.T) {
	prober := &fakeProber{healthy: map[model.RegionID]bool{model.RegionUS: false, model.RegionIN: true}}
	o := newTestOrchestrator(prober, nil)

	sel := o.Resolve(context.Background(), SelectionInput{TargetURL: "https://example.com"})

	assert.Equal(t, model.RegionSelection{ChosenRegion: model.RegionIN, WasFallback: true}, sel)
	assert.Equal(t, []model.RegionID{model.RegionUS, model.RegionIN}, prober.calls)
}

func TestResolveBothUnhealthyKeepsPrimary(t *testing.T) {
	prober := &fakeProber{healthy: map[model.RegionID]bool{}}
	o := newTestOrchestrator(prober, nil)

	var sel model.RegionSelection
	assert.NotPanics(t, func() {
		sel = o.Resolve(context.Background(), SelectionInput{Override: model.RegionIN, TargetURL: "::bad::"})
	})

	assert.Equal(t, model.RegionSelection{ChosenRegion: model.RegionIN, WasFallback: false}, sel)
	assert.Equal(t, []model.RegionID{model.RegionIN, model.RegionUS}, prober.calls)
}

func TestResolveOverrideIsProbedButHonoured(t *testing.T) {
	prober := &fakeProber{healthy: map[model.RegionID]bool{model.RegionUS: true}}
	o := newTestOrchestrator(prober, nil)

	sel := o.Resolve(context.Background(), SelectionInput{Override: model.RegionUS, TargetURL: "https://example.in"})

	assert.Equal(t, model.RegionUS, sel.ChosenRegion)
	assert.False(t, sel.WasFallback)
}

func TestResolveRecordsSelectionMetrics(t *testing.T) {
	prober := &fakeProber{healthy: map[model.RegionID]bool{model.RegionIN: true}}
	metrics := NewMetrics(prometheus.NewRegistry())
	o := newTestOrchestrator(prober, metrics)

	o.Resolve(context.Background(), SelectionInput{TargetURL: "https://example.com"})
	o.Resolve(context.Background(), SelectionInput{TargetURL: "https://example.in"})

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Selections.WithLabelValues("in", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Selections.WithLabelValues("in", "false")))
}

func TestResolveBoundedWhenBothRegionsHang(t *testing.T) {
	const timeout = 150 * time.Millisecond
	srv := hangingServer(t)

	registry := NewRegistry(Endpoints{US: srv.URL, IN: srv.URL})
	o := NewOrchestrator(registry, NewHTTPProber(timeout, logr.Discard(), nil), logr.Discard(), nil)

	start := time.Now()
	sel := o.Resolve(context.Background(), SelectionInput{TargetURL: "https://example.com"})
	elapsed := time.Since(start)

	assert.Equal(t, model.RegionSelection{ChosenRegion: model.RegionUS}, sel)
	assert.GreaterOrEqual(t, elapsed, 2*timeout)
	assert.Less(t, elapsed, 2*timeout+500*time.Millisecond)
}

func TestResolveAgainstLiveEndpoints(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()

	registry := NewRegistry(Endpoints{US: up.URL, IN: down.URL})
	o := NewOrchestrator(registry, NewHTTPProber(time.Second, logr.Discard(), nil), logr.Discard(), nil)

	sel := o.Resolve(context.Background(), SelectionInput{TargetURL: "https://example.in"})
	assert.Equal(t, model.RegionSelection{ChosenRegion: model.RegionUS, WasFallback: true}, sel)
}
