package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kukufarm/kukutrack/internal/domain/models"
	"github.com/kukufarm/kukutrack/internal/service/inventory"
)

// InventoryHandler adapts the livestock projection to HTTP.
type InventoryHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc *inventory.Service, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, logger: logger}
}

// Counts returns the cached coop counts, refreshing from the backend when
// the caller asks for it.
func (h *InventoryHandler) Counts(c *gin.Context) {
	if c.Query("refresh") == "true" {
		if err := h.svc.Refresh(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, h.svc.Counts())
}

type adjustRequest struct {
	Quantity *int   `json:"quantity" binding:"required"`
	Reason   string `json:"reason"`
	Notes    string `json:"notes"`
}

// Adjust sets one count to an absolute value chosen on the adjustment form.
// An unchanged value answers with the current count rather than an error.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	typ, err := models.ParseLivestockType(c.Param("type"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "quantity is required"})
		return
	}

	reason, err := models.ParseChangeReason(req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	count, err := h.svc.ManualAdjust(c.Request.Context(), typ, *req.Quantity, reason, req.Notes)
	if err != nil {
		if errors.Is(err, models.ErrNoChange) {
			c.JSON(http.StatusOK, count)
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, count)
}

// History lists the audit trail, optionally filtered by type and reason.
func (h *InventoryHandler) History(c *gin.Context) {
	var typ models.LivestockType
	if raw := c.Query("type"); raw != "" {
		parsed, err := models.ParseLivestockType(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		typ = parsed
	}

	var reason models.ChangeReason
	if raw := c.Query("reason"); raw != "" {
		parsed, err := models.ParseChangeReason(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		reason = parsed
	}

	entries, err := h.svc.History(c.Request.Context(), typ, reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
