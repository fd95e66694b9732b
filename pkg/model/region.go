package model

// RegionID identifies one of the scanning backends
type RegionID string

const (
	// RegionUS is the default region
	RegionUS RegionID = "us"
	// RegionIN serves targets and users located in India
	RegionIN RegionID = "in"
)

// DefaultRegion is used whenever no signal points elsewhere
const DefaultRegion = RegionUS

// Region represents a geographically distinct scanning backend
type Region struct {
	ID                 RegionID `json:"id"`
	DisplayName        string   `json:"display_name"`
	FixedEgressAddress string   `json:"egress_address"`
	EndpointBaseURL    string   `json:"-"`
}

// RegionSelection is the outcome of resolving a region for one audit request.
// It is never persisted.
type RegionSelection struct {
	ChosenRegion RegionID `json:"chosen_region"`
	WasFallback  bool     `json:"was_fallback"`
}

// RegionResolveRequest is the payload for POST /api/regions/resolve
type RegionResolveRequest struct {
	URL      string `json:"url" binding:"required"`
	Region   string `json:"region"`   // Optional explicit override
	Timezone string `json:"timezone"` // IANA timezone reported by the browser
}

// RegionResolveResponse tells the client which region will scan the target
type RegionResolveResponse struct {
	Region        RegionID `json:"region"`
	DisplayName   string   `json:"display_name"`
	EgressAddress string   `json:"egress_address"`
}
