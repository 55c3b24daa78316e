package models

import "time"

// WeeklyReport is the periodic snapshot archived by the reporting job: the
// financial summary at generation time plus the confirmed coop counts.
type WeeklyReport struct {
	GeneratedAt   time.Time     `bson:"generated_at" json:"generated_at"`
	WeekStart     time.Time     `bson:"week_start" json:"week_start"`
	TotalIncome   float64       `bson:"total_income" json:"total_income"`
	TotalExpenses float64       `bson:"total_expenses" json:"total_expenses"`
	TotalProfit   float64       `bson:"total_profit" json:"total_profit"`
	Hens          int           `bson:"hens" json:"hens"`
	Cocks         int           `bson:"cocks" json:"cocks"`
	Chicks        int           `bson:"chicks" json:"chicks"`
	SummarySource SummarySource `bson:"summary_source" json:"summary_source"`
}
