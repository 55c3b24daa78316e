package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kukufarm/kukutrack/internal/service/reporting"
	"github.com/kukufarm/kukutrack/internal/service/summary"
)

// SummaryHandler serves the financial summary and on-demand reports.
type SummaryHandler struct {
	svc       *summary.Service
	reporting *reporting.Service
	logger    *zap.Logger
}

// NewSummaryHandler constructs the HTTP handler adapter.
func NewSummaryHandler(svc *summary.Service, reportingSvc *reporting.Service, logger *zap.Logger) *SummaryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryHandler{svc: svc, reporting: reportingSvc, logger: logger}
}

// Summary returns the current totals. The source field distinguishes the
// authoritative backend figure from the best-effort local fold.
func (h *SummaryHandler) Summary(c *gin.Context) {
	fin, err := h.svc.Refresh(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fin)
}

// GenerateReport builds a weekly report right now instead of waiting for
// the cron job.
func (h *SummaryHandler) GenerateReport(c *gin.Context) {
	report, err := h.reporting.Generate(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListReports returns recently archived weekly reports.
func (h *SummaryHandler) ListReports(c *gin.Context) {
	limit := int64(12)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	reports, err := h.reporting.LatestReports(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}
