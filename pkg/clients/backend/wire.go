package backend

import (
	"fmt"
	"time"

	"github.com/kukufarm/kukutrack/internal/domain/models"
)

const dateLayout = "2006-01-02"

// credentialsPayload mirrors the login response.
type credentialsPayload struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"`
	Name   string `json:"name"`
}

// transactionPayload is the wire form of a ledger record. Dates travel as
// plain calendar days.
type transactionPayload struct {
	ID              string  `json:"id,omitempty"`
	TransactionType string  `json:"transaction_type"`
	CategoryName    string  `json:"category_name"`
	Amount          float64 `json:"amount"`
	Description     string  `json:"description"`
	TransactionDate string  `json:"transaction_date"`
	Quantity        int     `json:"quantity,omitempty"`
	ChickenType     string  `json:"chicken_type,omitempty"`
}

type transactionListPayload struct {
	Transactions []transactionPayload `json:"transactions"`
	TotalSum     float64              `json:"total_sum"`
}

type chickenPayload struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	UpdatedAt string `json:"updated_at"`
}

type historyPayload struct {
	Type             string `json:"type"`
	PreviousQuantity int    `json:"previous_quantity"`
	NewQuantity      int    `json:"new_quantity"`
	QuantityChange   int    `json:"quantity_change"`
	Reason           string `json:"reason"`
	Notes            string `json:"notes"`
	CreatedAt        string `json:"created_at"`
}

func encodeTransaction(rec models.TransactionRecord) transactionPayload {
	p := transactionPayload{
		TransactionType: string(rec.Kind),
		CategoryName:    string(rec.Category),
		Amount:          rec.Amount,
		Description:     rec.Description,
		TransactionDate: rec.OccurredOn.Format(dateLayout),
	}
	if rec.HasLivestock() {
		p.Quantity = rec.LivestockQuantity
		p.ChickenType = string(rec.LivestockType)
	}
	return p
}

func decodeTransaction(p transactionPayload) (models.TransactionRecord, error) {
	kind, err := models.ParseTransactionKind(p.TransactionType)
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("decode transaction %s: %w", p.ID, err)
	}

	category, err := models.ParseCategory(p.CategoryName, kind)
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("decode transaction %s: %w", p.ID, err)
	}

	occurred, err := parseDay(p.TransactionDate)
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("decode transaction %s: %w", p.ID, err)
	}

	rec := models.TransactionRecord{
		ID:          p.ID,
		Kind:        kind,
		Category:    category,
		Amount:      p.Amount,
		OccurredOn:  occurred,
		Description: p.Description,
	}

	if p.ChickenType != "" {
		typ, err := models.ParseLivestockType(p.ChickenType)
		if err != nil {
			return models.TransactionRecord{}, fmt.Errorf("decode transaction %s: %w", p.ID, err)
		}
		rec.LivestockType = typ
		rec.LivestockQuantity = p.Quantity
	}

	return rec, nil
}

func decodeChicken(p chickenPayload) (models.LivestockCount, error) {
	typ, err := models.ParseLivestockType(p.Type)
	if err != nil {
		return models.LivestockCount{}, fmt.Errorf("decode chicken %s: %w", p.ID, err)
	}

	updated, _ := parseTimestamp(p.UpdatedAt)
	return models.LivestockCount{
		ID:        p.ID,
		Type:      typ,
		Quantity:  p.Quantity,
		UpdatedAt: updated,
	}, nil
}

func decodeHistory(p historyPayload) (models.InventoryChangeEntry, error) {
	typ, err := models.ParseLivestockType(p.Type)
	if err != nil {
		return models.InventoryChangeEntry{}, fmt.Errorf("decode history entry: %w", err)
	}

	reason, err := models.ParseChangeReason(p.Reason)
	if err != nil {
		return models.InventoryChangeEntry{}, fmt.Errorf("decode history entry: %w", err)
	}

	occurred, _ := parseTimestamp(p.CreatedAt)
	return models.InventoryChangeEntry{
		OccurredAt:    occurred,
		Type:          typ,
		PreviousValue: p.PreviousQuantity,
		NewValue:      p.NewQuantity,
		Delta:         p.QuantityChange,
		Reason:        reason,
		Notes:         p.Notes,
	}, nil
}

func parseDay(value string) (time.Time, error) {
	if len(value) > len(dateLayout) {
		value = value[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return parseDay(value)
}
