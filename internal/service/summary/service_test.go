package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kukufarm/kukutrack/internal/domain/models"
)

type fakeSummaryAPI struct {
	summary models.FinancialSummary
	err     error
}

func (f *fakeSummaryAPI) FinancialSummary(ctx context.Context) (models.FinancialSummary, error) {
	return f.summary, f.err
}

type fakeSnapshot []models.TransactionRecord

func (f fakeSnapshot) Snapshot() []models.TransactionRecord { return f }

func records() fakeSnapshot {
	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	return fakeSnapshot{
		{ID: "tx-1", Kind: models.KindIncome, Category: models.CategoryEggSale, Amount: 50000, OccurredOn: day, Description: "eggs"},
		{ID: "tx-2", Kind: models.KindIncome, Category: models.CategoryChickenSale, Amount: 120000, OccurredOn: day, Description: "hens"},
		{ID: "tx-3", Kind: models.KindExpense, Category: models.CategoryFood, Amount: 30000, OccurredOn: day, Description: "feed"},
	}
}

func TestRefreshPrefersRemoteSummary(t *testing.T) {
	api := &fakeSummaryAPI{summary: models.FinancialSummary{
		TotalIncome:   1000,
		TotalExpenses: 400,
		TotalProfit:   600,
		Source:        models.SummaryRemote,
	}}
	svc := NewService(api, records(), nil)

	got, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got.Source != models.SummaryRemote || got.TotalProfit != 600 {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestRefreshFallsBackOnRemoteError(t *testing.T) {
	cases := []error{
		&models.RemoteError{StatusCode: 500, Message: "boom"},
		&models.NetworkError{Op: "financial summary", Err: errors.New("connection refused")},
	}

	for i, apiErr := range cases {
		svc := NewService(&fakeSummaryAPI{err: apiErr}, records(), nil)

		got, err := svc.Refresh(context.Background())
		if err != nil {
			t.Fatalf("case %d: refresh: %v", i, err)
		}
		if got.Source != models.SummaryLocal {
			t.Fatalf("case %d: expected local fold, got %+v", i, got)
		}
		if got.TotalIncome != 170000 || got.TotalExpenses != 30000 {
			t.Fatalf("case %d: unexpected totals: %+v", i, got)
		}
		if got.TotalProfit != got.TotalIncome-got.TotalExpenses {
			t.Fatalf("case %d: profit identity broken: %+v", i, got)
		}
	}
}

func TestRefreshPropagatesAuthFailure(t *testing.T) {
	svc := NewService(&fakeSummaryAPI{err: models.ErrAuthenticationRequired}, records(), nil)

	_, err := svc.Refresh(context.Background())
	if !errors.Is(err, models.ErrAuthenticationRequired) {
		t.Fatalf("expected auth error to propagate, got %v", err)
	}
}
