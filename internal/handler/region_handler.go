package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"audit-portal-go/internal/audit"
	"audit-portal-go/internal/region"
	"audit-portal-go/pkg/model"
)

// RegionHandler exposes the scanning regions and region resolution
type RegionHandler struct {
	orchestrator *region.Orchestrator
}

// NewRegionHandler creates a new region handler
func NewRegionHandler(orchestrator *region.Orchestrator) *RegionHandler {
	return &RegionHandler{
		orchestrator: orchestrator,
	}
}

// GetRegions handles GET /api/regions
func (h *RegionHandler) GetRegions(c *gin.Context) {
	c.JSON(http.StatusOK, h.orchestrator.Registry().All())
}

// ResolveRegion handles POST /api/regions/resolve.
// The response names the region that will scan the target so the dashboard
// can show which address to allowlist. Fallbacks are not reported.
func (h *RegionHandler) ResolveRegion(c *gin.Context) {
	var req model.RegionResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in, err := audit.ResolveInput(req.URL, req.Region, req.Timezone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid region selected"})
		return
	}

	sel := h.orchestrator.Resolve(c.Request.Context(), in)
	chosen := h.orchestrator.Registry().MustGet(sel.ChosenRegion)

	c.JSON(http.StatusOK, model.RegionResolveResponse{
		Region:        chosen.ID,
		DisplayName:   chosen.DisplayName,
		EgressAddress: chosen.FixedEgressAddress,
	})
}
