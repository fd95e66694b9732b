package region

import (
	"context"

	"github.com/go-logr/logr"

	"audit-portal-go/pkg/model"
)

// Orchestrator picks a region and substitutes the other one when the
// preferred region fails its health probe. It always returns a selection.
type Orchestrator struct {
	registry *Registry
	prober   Prober
	log      logr.Logger
	metrics  *Metrics
}

// NewOrchestrator creates a new fallback orchestrator
func NewOrchestrator(registry *Registry, prober Prober, log logr.Logger, metrics *Metrics) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		prober:   prober,
		log:      log,
		metrics:  metrics,
	}
}

// Registry returns the region registry the orchestrator selects from
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Resolve selects a region for one audit request. Probes run sequentially:
// the secondary is only probed after the primary is found unhealthy. When
// both are down the primary is returned and the audit call reports the error.
func (o *Orchestrator) Resolve(ctx context.Context, in SelectionInput) model.RegionSelection {
	primary := Select(in)
	sel := o.resolve(ctx, primary)
	o.metrics.observeSelection(sel)
	return sel
}

func (o *Orchestrator) resolve(ctx context.Context, primary model.RegionID) model.RegionSelection {
	if o.prober.Probe(ctx, o.registry.MustGet(primary)) {
		return model.RegionSelection{ChosenRegion: primary}
	}

	secondary := Other(primary)
	if o.prober.Probe(ctx, o.registry.MustGet(secondary)) {
		o.log.Info("[REGION] primary region unhealthy, falling back", "primary", primary, "secondary", secondary)
		return model.RegionSelection{ChosenRegion: secondary, WasFallback: true}
	}

	o.log.Info("[REGION] both regions unhealthy, keeping primary", "primary", primary)
	return model.RegionSelection{ChosenRegion: primary}
}
