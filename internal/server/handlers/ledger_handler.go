package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kukufarm/kukutrack/internal/domain/models"
	"github.com/kukufarm/kukutrack/internal/service/ledger"
)

const dateLayout = "2006-01-02"

// LedgerHandler adapts the ledger store to HTTP.
type LedgerHandler struct {
	svc    *ledger.Service
	logger *zap.Logger
}

// NewLedgerHandler constructs the HTTP handler adapter.
func NewLedgerHandler(svc *ledger.Service, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{svc: svc, logger: logger}
}

type transactionRequest struct {
	Kind        string  `json:"transaction_type" binding:"required"`
	Category    string  `json:"category_name" binding:"required"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"transaction_date" binding:"required"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	ChickenType string  `json:"chicken_type"`
}

// toRecord canonicalizes the raw form input; alias category and chicken
// type spellings stop here.
func (r transactionRequest) toRecord() (models.TransactionRecord, error) {
	kind, err := models.ParseTransactionKind(r.Kind)
	if err != nil {
		return models.TransactionRecord{}, err
	}

	category, err := models.ParseCategory(r.Category, kind)
	if err != nil {
		return models.TransactionRecord{}, err
	}

	occurred, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return models.TransactionRecord{}, models.NewValidationError("transaction_date", "must be YYYY-MM-DD")
	}

	rec := models.TransactionRecord{
		Kind:        kind,
		Category:    category,
		Amount:      r.Amount,
		OccurredOn:  occurred,
		Description: r.Description,
	}

	if r.ChickenType != "" {
		typ, err := models.ParseLivestockType(r.ChickenType)
		if err != nil {
			return models.TransactionRecord{}, err
		}
		rec.LivestockType = typ
		rec.LivestockQuantity = r.Quantity
	}

	return rec, nil
}

// Create records a new transaction, cascading into the coop counts for
// livestock categories.
func (h *LedgerHandler) Create(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid transaction payload"})
		return
	}

	rec, err := req.toRecord()
	if err != nil {
		respondError(c, err)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), rec)
	if err != nil {
		if created.ID != "" {
			// The transaction itself was persisted; only the count cascade failed.
			h.logger.Warn("count cascade failed after create", zap.String("id", created.ID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"message": err.Error(), "transaction": created})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Update edits an existing transaction. Kind and category are immutable.
func (h *LedgerHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid transaction payload"})
		return
	}

	rec, err := req.toRecord()
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), id, rec)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete removes a transaction; deleting one already gone succeeds.
func (h *LedgerHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List returns the filtered records plus the server-computed sum.
func (h *LedgerHandler) List(c *gin.Context) {
	kind, err := models.ParseTransactionKind(c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return
	}

	category := c.Query("category_name")
	if category != "" && category != "all" {
		parsed, err := models.ParseCategory(category, kind)
		if err != nil {
			respondError(c, err)
			return
		}
		category = string(parsed)
	}

	page, err := h.svc.ListByKind(c.Request.Context(), kind, category)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
