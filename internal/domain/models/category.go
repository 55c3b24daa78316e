package models

import (
	"fmt"
	"strings"
)

// TransactionKind separates money going out from money coming in.
type TransactionKind string

const (
	KindExpense TransactionKind = "expense"
	KindIncome  TransactionKind = "income"
)

// ParseTransactionKind canonicalizes a raw kind token.
func ParseTransactionKind(raw string) (TransactionKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(KindExpense):
		return KindExpense, nil
	case string(KindIncome):
		return KindIncome, nil
	default:
		return "", NewValidationError("kind", fmt.Sprintf("unknown transaction kind %q", raw))
	}
}

// Category is the closed taxonomy a transaction must belong to.
type Category string

const (
	CategoryFood            Category = "food"
	CategoryMedicine        Category = "medicine"
	CategoryTools           Category = "tools"
	CategoryFence           Category = "fence"
	CategoryChickenPurchase Category = "chicken_purchase"
	CategoryChickenSale     Category = "chicken_sale"
	CategoryEggSale         Category = "egg_sale"
	CategorySalary          Category = "salary"
	CategoryOther           Category = "other"
)

// CategoryDirection tells how a livestock category moves the coop count.
type CategoryDirection int

const (
	DirectionIncrease CategoryDirection = iota + 1
	DirectionDecrease
)

var expenseCategories = []Category{
	CategoryFood,
	CategoryMedicine,
	CategoryTools,
	CategoryFence,
	CategoryChickenPurchase,
	CategorySalary,
	CategoryOther,
}

var incomeCategories = []Category{
	CategoryChickenSale,
	CategoryEggSale,
	CategoryOther,
}

// ValidCategoriesFor lists the categories a kind accepts.
func ValidCategoriesFor(kind TransactionKind) []Category {
	if kind == KindIncome {
		return incomeCategories
	}
	return expenseCategories
}

// ParseCategory canonicalizes a raw category token for the given kind.
// Historical alias spellings ("chicken", "chicken_sales") collapse to the
// canonical livestock categories here so no alias survives past the input
// boundary.
func ParseCategory(raw string, kind TransactionKind) (Category, error) {
	token := strings.ToLower(strings.TrimSpace(raw))

	// Alias normalization. The legacy UI used a single "chicken" category
	// for both directions and relied on the transaction kind.
	switch token {
	case "chicken":
		if kind == KindIncome {
			token = string(CategoryChickenSale)
		} else {
			token = string(CategoryChickenPurchase)
		}
	case "chicken_sales":
		token = string(CategoryChickenSale)
	case "chicken_purchases":
		token = string(CategoryChickenPurchase)
	case "egg_sales":
		token = string(CategoryEggSale)
	}

	candidate := Category(token)
	for _, c := range ValidCategoriesFor(kind) {
		if c == candidate {
			return candidate, nil
		}
	}

	return "", NewValidationError("category", fmt.Sprintf("unknown %s category %q", kind, raw))
}

// IsLivestockCategory reports whether the category couples the transaction
// to a chicken count adjustment.
func IsLivestockCategory(c Category) bool {
	return c == CategoryChickenPurchase || c == CategoryChickenSale
}

// LivestockDirection maps a livestock category to its count movement:
// a purchase is an acquisition, a sale a disposal.
func LivestockDirection(c Category) (CategoryDirection, error) {
	switch c {
	case CategoryChickenPurchase:
		return DirectionIncrease, nil
	case CategoryChickenSale:
		return DirectionDecrease, nil
	default:
		return 0, NewValidationError("category", fmt.Sprintf("category %q has no livestock direction", c))
	}
}
