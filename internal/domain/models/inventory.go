package models

import (
	"fmt"
	"strings"
	"time"
)

// LivestockType identifies one tracked bird population.
type LivestockType string

const (
	LivestockHen    LivestockType = "hen"
	LivestockCock   LivestockType = "cock"
	LivestockChicks LivestockType = "chicks"
)

// LivestockTypes lists the tracked populations in display order.
func LivestockTypes() []LivestockType {
	return []LivestockType{LivestockHen, LivestockCock, LivestockChicks}
}

// ParseLivestockType canonicalizes a raw type token. The legacy "baby"
// spelling maps to chicks.
func ParseLivestockType(raw string) (LivestockType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(LivestockHen):
		return LivestockHen, nil
	case string(LivestockCock):
		return LivestockCock, nil
	case string(LivestockChicks), "baby":
		return LivestockChicks, nil
	default:
		return "", NewValidationError("chicken_type", fmt.Sprintf("unknown chicken type %q", raw))
	}
}

// LivestockCount is the server-confirmed population of one type.
type LivestockCount struct {
	ID        string        `json:"id"`
	Type      LivestockType `json:"type"`
	Quantity  int           `json:"quantity"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ChangeReason classifies why a count moved.
type ChangeReason string

const (
	ReasonPurchase ChangeReason = "purchase"
	ReasonSale     ChangeReason = "sale"
	ReasonBirth    ChangeReason = "birth"
	ReasonDeath    ChangeReason = "death"
	ReasonGift     ChangeReason = "gift"
	ReasonOther    ChangeReason = "other"
)

// ParseChangeReason canonicalizes a raw reason token, defaulting blanks to
// "other" the way the original adjustment form did.
func ParseChangeReason(raw string) (ChangeReason, error) {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return ReasonOther, nil
	}
	switch ChangeReason(token) {
	case ReasonPurchase, ReasonSale, ReasonBirth, ReasonDeath, ReasonGift, ReasonOther:
		return ChangeReason(token), nil
	default:
		return "", NewValidationError("reason", fmt.Sprintf("unknown change reason %q", raw))
	}
}

// InventoryChangeEntry is one append-only audit line for a count mutation.
// Delta records the clamped change actually applied, not the requested
// quantity.
type InventoryChangeEntry struct {
	OccurredAt    time.Time     `json:"created_at"`
	Type          LivestockType `json:"type"`
	PreviousValue int           `json:"previous_quantity"`
	NewValue      int           `json:"new_quantity"`
	Delta         int           `json:"quantity_change"`
	Reason        ChangeReason  `json:"reason"`
	Notes         string        `json:"notes,omitempty"`
}
