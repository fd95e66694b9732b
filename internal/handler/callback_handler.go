package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"audit-portal-go/internal/audit"
	"audit-portal-go/pkg/model"
)

// CallbackHandler receives stage updates from the scan pipeline
type CallbackHandler struct {
	auditService AuditService
	log          logr.Logger
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(auditService AuditService, log logr.Logger) *CallbackHandler {
	return &CallbackHandler{
		auditService: auditService,
		log:          log,
	}
}

// HandleCallback handles POST /api/audits/callback
func (h *CallbackHandler) HandleCallback(c *gin.Context) {
	requestID := uuid.NewString()
	log := h.log.WithValues("request_id", requestID, "remote_ip", c.ClientIP())

	var cb model.AuditCallback
	if err := c.ShouldBindJSON(&cb); err != nil {
		log.Info("[CALLBACK] invalid payload", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid callback payload",
		})
		return
	}
	if !cb.Stage.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Unknown stage",
		})
		return
	}

	log.Info("[CALLBACK] received", "audit_id", cb.AuditID, "stage", cb.Stage)

	if err := h.auditService.HandleCallback(c.Request.Context(), cb); err != nil {
		switch {
		case errors.Is(err, audit.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Audit not found"})
		case errors.Is(err, audit.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"status": "error", "message": err.Error()})
		default:
			log.Error(err, "[CALLBACK] failed to apply callback", "audit_id", cb.AuditID)
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to process callback"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"message":   "Callback received",
		"timestamp": time.Now(),
	})
}
