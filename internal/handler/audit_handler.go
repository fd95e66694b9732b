package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"audit-portal-go/internal/audit"
	"audit-portal-go/pkg/model"
)

// AuditService is the audit workflow used by the handlers
type AuditService interface {
	Submit(ctx context.Context, userID int, req model.AuditSubmitRequest) (*model.AuditSubmitResponse, error)
	Get(ctx context.Context, userID int, auditID string) (*model.AuditStatusResponse, error)
	List(ctx context.Context, userID int) ([]model.AuditStatusResponse, error)
	HandleCallback(ctx context.Context, cb model.AuditCallback) error
}

// AuditHandler handles audit submission and progress requests
type AuditHandler struct {
	auditService AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// SubmitAudit handles POST /api/audits
func (h *AuditHandler) SubmitAudit(c *gin.Context) {
	userID := c.GetInt("user_id") // Set by auth middleware
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req model.AuditSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.auditService.Submit(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, audit.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, gin.H{"error": "URL must be an absolute http or https address"})
		case errors.Is(err, audit.ErrInvalidRegion):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid region selected"})
		default:
			var apiErr *audit.APIError
			if errors.As(err, &apiErr) {
				c.JSON(http.StatusBadGateway, gin.H{"error": "Scanning service rejected the audit", "status": apiErr.StatusCode})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to start audit: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

// GetAudit handles GET /api/audits/:id
func (h *AuditHandler) GetAudit(c *gin.Context) {
	userID := c.GetInt("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	status, err := h.auditService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, audit.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Audit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// ListAudits handles GET /api/audits
func (h *AuditHandler) ListAudits(c *gin.Context) {
	userID := c.GetInt("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	audits, err := h.auditService.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": audits, "total": len(audits)})
}
