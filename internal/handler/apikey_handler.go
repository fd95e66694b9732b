package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"audit-portal-go/internal/apikey"
	"audit-portal-go/pkg/model"
)

// APIKeyService manages a user's API keys
type APIKeyService interface {
	Create(ctx context.Context, userID int, name string) (*model.APIKeyCreateResponse, error)
	List(ctx context.Context, userID int) ([]model.APIKey, error)
	Revoke(ctx context.Context, userID int, id string) error
}

// APIKeyHandler handles API key management for the dashboard
type APIKeyHandler struct {
	keyService APIKeyService
}

// NewAPIKeyHandler creates a new API key handler
func NewAPIKeyHandler(keyService APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{
		keyService: keyService,
	}
}

// ListKeys handles GET /api/keys
func (h *APIKeyHandler) ListKeys(c *gin.Context) {
	userID := c.GetInt("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	keys, err := h.keyService.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch API keys"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// CreateKey handles POST /api/keys
func (h *APIKeyHandler) CreateKey(c *gin.Context) {
	userID := c.GetInt("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req model.APIKeyCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.keyService.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		if errors.Is(err, apikey.ErrKeyLimit) {
			c.JSON(http.StatusForbidden, gin.H{"error": "API key limit reached"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create API key"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// RevokeKey handles DELETE /api/keys/:id
func (h *APIKeyHandler) RevokeKey(c *gin.Context) {
	userID := c.GetInt("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.keyService.Revoke(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, apikey.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "API key not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke API key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "API key revoked"})
}
