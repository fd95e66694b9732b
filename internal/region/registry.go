package region

import (
	"strings"

	"audit-portal-go/pkg/model"
)

// Default endpoints and the fixed addresses scanning traffic leaves from.
// Paid users allowlist these on their firewalls, so they only change with a release.
const (
	DefaultUSEndpoint = "https://scan-us.auditportal.io"
	DefaultINEndpoint = "https://scan-in.auditportal.io"

	usEgressAddress = "52.44.118.23"
	inEgressAddress = "13.232.41.97"
)

// Endpoints overrides the API base URL per region. Empty values keep the defaults.
type Endpoints struct {
	US string
	IN string
}

// Registry is the fixed mapping of region IDs to region metadata.
// It is read-only after NewRegistry returns and safe for concurrent use.
type Registry struct {
	regions map[model.RegionID]model.Region
}

// NewRegistry builds the registry once at process start
func NewRegistry(endpoints Endpoints) *Registry {
	us := endpoints.US
	if us == "" {
		us = DefaultUSEndpoint
	}
	in := endpoints.IN
	if in == "" {
		in = DefaultINEndpoint
	}

	return &Registry{
		regions: map[model.RegionID]model.Region{
			model.RegionUS: {
				ID:                 model.RegionUS,
				DisplayName:        "United States",
				FixedEgressAddress: usEgressAddress,
				EndpointBaseURL:    strings.TrimRight(us, "/"),
			},
			model.RegionIN: {
				ID:                 model.RegionIN,
				DisplayName:        "India",
				FixedEgressAddress: inEgressAddress,
				EndpointBaseURL:    strings.TrimRight(in, "/"),
			},
		},
	}
}

// Get returns the region for id
func (r *Registry) Get(id model.RegionID) (model.Region, bool) {
	region, ok := r.regions[id]
	return region, ok
}

// MustGet returns the region for id, or the default region when id is unknown
func (r *Registry) MustGet(id model.RegionID) model.Region {
	if region, ok := r.regions[id]; ok {
		return region
	}
	return r.regions[model.DefaultRegion]
}

// All returns every region, default first
func (r *Registry) All() []model.Region {
	return []model.Region{r.regions[model.RegionUS], r.regions[model.RegionIN]}
}

// Other returns the complement of id. The registry holds exactly two regions.
func Other(id model.RegionID) model.RegionID {
	if id == model.RegionIN {
		return model.RegionUS
	}
	return model.RegionIN
}

// ParseRegionID validates a region identifier received from a client
func ParseRegionID(s string) (model.RegionID, bool) {
	switch id := model.RegionID(strings.ToLower(strings.TrimSpace(s))); id {
	case model.RegionUS, model.RegionIN:
		return id, true
	default:
		return "", false
	}
}
