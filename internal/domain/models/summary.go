package models

// SummarySource distinguishes the authoritative backend figure from the
// best-effort local fold over currently loaded records.
type SummarySource string

const (
	SummaryRemote SummarySource = "remote"
	SummaryLocal  SummarySource = "local"
)

// FinancialSummary aggregates the ledger. Profit is always income minus
// expenses, whichever source produced the values.
type FinancialSummary struct {
	TotalIncome   float64       `json:"total_income"`
	TotalExpenses float64       `json:"total_expenses"`
	TotalProfit   float64       `json:"total_profit"`
	Source        SummarySource `json:"source,omitempty"`
}

// ComputeSummary folds the given records into a local summary. Incomplete
// by construction when not every record has been loaded.
func ComputeSummary(records []TransactionRecord) FinancialSummary {
	s := FinancialSummary{Source: SummaryLocal}
	for _, r := range records {
		switch r.Kind {
		case KindIncome:
			s.TotalIncome += r.Amount
		case KindExpense:
			s.TotalExpenses += r.Amount
		}
	}
	s.TotalProfit = s.TotalIncome - s.TotalExpenses
	return s
}
