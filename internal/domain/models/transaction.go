package models

import (
	"strings"
	"time"
)

// TransactionRecord is one ledger entry. The ID is assigned by the backend
// on create; a record without an ID has not been confirmed yet.
type TransactionRecord struct {
	ID          string          `json:"id"`
	Kind        TransactionKind `json:"transaction_type"`
	Category    Category        `json:"category_name"`
	Amount      float64         `json:"amount"`
	OccurredOn  time.Time       `json:"transaction_date"`
	Description string          `json:"description"`

	// Present only for livestock purchase/sale categories.
	LivestockType     LivestockType `json:"chicken_type,omitempty"`
	LivestockQuantity int           `json:"quantity,omitempty"`
}

// HasLivestock reports whether the record carries a count adjustment.
func (t TransactionRecord) HasLivestock() bool {
	return t.LivestockType != ""
}

// Validate enforces the ledger invariants before any network call. It
// accumulates every failing field so the form can highlight them all at once.
func (t TransactionRecord) Validate() error {
	fields := map[string]string{}

	if t.Kind != KindExpense && t.Kind != KindIncome {
		fields["kind"] = "must be expense or income"
	}

	if strings.TrimSpace(t.Description) == "" {
		fields["description"] = "must not be blank"
	}

	if t.Amount <= 0 {
		fields["amount"] = "must be positive"
	}

	if t.OccurredOn.IsZero() {
		fields["transaction_date"] = "must be provided"
	}

	validCategory := false
	for _, c := range ValidCategoriesFor(t.Kind) {
		if c == t.Category {
			validCategory = true
			break
		}
	}
	if !validCategory {
		fields["category"] = "not valid for transaction kind"
	}

	if t.HasLivestock() {
		if !IsLivestockCategory(t.Category) {
			fields["chicken_type"] = "only livestock categories may carry a chicken type"
		}
		if t.LivestockQuantity <= 0 {
			fields["quantity"] = "must be a positive integer"
		}
		switch t.LivestockType {
		case LivestockHen, LivestockCock, LivestockChicks:
		default:
			fields["chicken_type"] = "unknown chicken type"
		}
	} else if IsLivestockCategory(t.Category) {
		fields["chicken_type"] = "livestock categories require a chicken type and quantity"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// TransactionPage is one filtered listing plus the server-computed sum over
// the filtered set.
type TransactionPage struct {
	Records  []TransactionRecord `json:"transactions"`
	TotalSum float64             `json:"total_sum"`
}
