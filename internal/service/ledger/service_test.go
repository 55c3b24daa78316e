package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kukufarm/kukutrack/internal/domain/models"
	"github.com/kukufarm/kukutrack/internal/service/inventory"
)

type fakeTransactionAPI struct {
	nextID    int
	created   []models.TransactionRecord
	deleted   []string
	missing   map[string]bool
	page      models.TransactionPage
	listCalls int
}

func (f *fakeTransactionAPI) CreateTransaction(ctx context.Context, rec models.TransactionRecord) (models.TransactionRecord, error) {
	f.nextID++
	rec.ID = fmt.Sprintf("tx-%d", f.nextID)
	f.created = append(f.created, rec)
	return rec, nil
}

func (f *fakeTransactionAPI) UpdateTransaction(ctx context.Context, id string, rec models.TransactionRecord) (models.TransactionRecord, error) {
	if f.missing[id] {
		return models.TransactionRecord{}, models.ErrNotFound
	}
	rec.ID = id
	return rec, nil
}

func (f *fakeTransactionAPI) DeleteTransaction(ctx context.Context, id string) error {
	if f.missing[id] {
		return models.ErrNotFound
	}
	f.deleted = append(f.deleted, id)
	f.missing[id] = true // gone after the first delete
	return nil
}

func (f *fakeTransactionAPI) ListTransactions(ctx context.Context, kind models.TransactionKind, category string) (models.TransactionPage, error) {
	f.listCalls++
	return f.page, nil
}

type fakeInventoryAPI struct {
	counts []models.LivestockCount
}

func (f *fakeInventoryAPI) ListChickens(ctx context.Context) ([]models.LivestockCount, error) {
	out := make([]models.LivestockCount, len(f.counts))
	copy(out, f.counts)
	return out, nil
}

func (f *fakeInventoryAPI) AdjustChicken(ctx context.Context, id string, change int, reason models.ChangeReason) error {
	for i := range f.counts {
		if f.counts[i].ID == id {
			f.counts[i].Quantity += change
		}
	}
	return nil
}

func (f *fakeInventoryAPI) ChickenHistory(ctx context.Context, typ models.LivestockType, reason models.ChangeReason) ([]models.InventoryChangeEntry, error) {
	return nil, nil
}

func newFixture(t *testing.T, henCount int) (*Service, *fakeTransactionAPI, *inventory.Service) {
	t.Helper()

	invAPI := &fakeInventoryAPI{counts: []models.LivestockCount{
		{ID: "c-1", Type: models.LivestockHen, Quantity: henCount},
	}}
	invSvc := inventory.NewService(invAPI, nil)
	if err := invSvc.Refresh(context.Background()); err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	txAPI := &fakeTransactionAPI{missing: map[string]bool{}}
	return NewService(txAPI, invSvc, nil), txAPI, invSvc
}

func henQuantity(t *testing.T, svc *inventory.Service) int {
	t.Helper()
	for _, c := range svc.Counts() {
		if c.Type == models.LivestockHen {
			return c.Quantity
		}
	}
	t.Fatalf("hen count missing")
	return 0
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateRejectsInvalidInputBeforeNetwork(t *testing.T) {
	svc, api, _ := newFixture(t, 10)

	before := len(svc.Snapshot())
	_, err := svc.Create(context.Background(), models.TransactionRecord{
		Kind:       models.KindExpense,
		Category:   models.CategoryFood,
		Amount:     10,
		OccurredOn: day(2025, 4, 1),
		// blank description
	})

	var vErr *models.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(api.created) != 0 {
		t.Fatalf("invalid record reached the backend")
	}
	if got := len(svc.Snapshot()); got != before {
		t.Fatalf("collection changed on rejected create: %d -> %d", before, got)
	}
}

func TestCreatePurchaseIncrementsHenCount(t *testing.T) {
	svc, _, invSvc := newFixture(t, 10)

	created, err := svc.Create(context.Background(), models.TransactionRecord{
		Kind:              models.KindExpense,
		Category:          models.CategoryChickenPurchase,
		Amount:            30000,
		OccurredOn:        day(2025, 4, 2),
		Description:       "bought 3 hens",
		LivestockType:     models.LivestockHen,
		LivestockQuantity: 3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("created record has no id")
	}

	if got := henQuantity(t, invSvc); got != 13 {
		t.Fatalf("hen count: got %d, want 13", got)
	}

	audit := invSvc.LocalAudit()
	if len(audit) != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(audit))
	}
	entry := audit[0]
	if entry.PreviousValue != 10 || entry.NewValue != 13 || entry.Delta != 3 || entry.Reason != models.ReasonPurchase {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
}

func TestCreateSaleClampsHenCount(t *testing.T) {
	svc, _, invSvc := newFixture(t, 5)

	_, err := svc.Create(context.Background(), models.TransactionRecord{
		Kind:              models.KindIncome,
		Category:          models.CategoryChickenSale,
		Amount:            80000,
		OccurredOn:        day(2025, 4, 3),
		Description:       "sold hens",
		LivestockType:     models.LivestockHen,
		LivestockQuantity: 8,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if got := henQuantity(t, invSvc); got != 0 {
		t.Fatalf("hen count: got %d, want 0", got)
	}

	audit := invSvc.LocalAudit()
	if len(audit) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(audit))
	}
	// Delta magnitude reflects the clamped change, not the 8 requested.
	if audit[0].PreviousValue != 5 || audit[0].NewValue != 0 || audit[0].Delta != -5 {
		t.Fatalf("unexpected audit entry: %+v", audit[0])
	}
}

func TestCreatePlainCategoryLeavesCountsAlone(t *testing.T) {
	svc, _, invSvc := newFixture(t, 10)

	_, err := svc.Create(context.Background(), models.TransactionRecord{
		Kind:        models.KindExpense,
		Category:    models.CategoryMedicine,
		Amount:      4500,
		OccurredOn:  day(2025, 4, 4),
		Description: "vaccines",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if got := henQuantity(t, invSvc); got != 10 {
		t.Fatalf("hen count moved for a plain category: %d", got)
	}
	if len(invSvc.LocalAudit()) != 0 {
		t.Fatalf("audit written for a plain category")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc, api, _ := newFixture(t, 0)

	created, err := svc.Create(context.Background(), models.TransactionRecord{
		Kind:        models.KindExpense,
		Category:    models.CategoryFood,
		Amount:      100,
		OccurredOn:  day(2025, 4, 5),
		Description: "feed",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if len(api.deleted) != 1 {
		t.Fatalf("expected one remote delete, got %d", len(api.deleted))
	}

	// The backend now answers 404; the second delete is still a success.
	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	if got := len(svc.Snapshot()); got != 0 {
		t.Fatalf("record still visible after delete: %d", got)
	}
}

func TestUpdateKeepsKindAndCategoryFixed(t *testing.T) {
	svc, _, _ := newFixture(t, 0)

	created, err := svc.Create(context.Background(), models.TransactionRecord{
		Kind:        models.KindExpense,
		Category:    models.CategoryFood,
		Amount:      100,
		OccurredOn:  day(2025, 4, 6),
		Description: "feed",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Update(context.Background(), created.ID, models.TransactionRecord{
		Kind:        models.KindExpense,
		Category:    models.CategoryTools,
		Amount:      100,
		OccurredOn:  day(2025, 4, 6),
		Description: "feed",
	})

	var vErr *models.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for category change, got %v", err)
	}
	if _, ok := vErr.Fields["category"]; !ok {
		t.Fatalf("expected category flagged, got %v", vErr.Fields)
	}
}

func TestUpdateMissingRecord(t *testing.T) {
	svc, api, _ := newFixture(t, 0)
	api.missing["tx-404"] = true

	_, err := svc.Update(context.Background(), "tx-404", models.TransactionRecord{
		Kind:        models.KindExpense,
		Category:    models.CategoryFood,
		Amount:      100,
		OccurredOn:  day(2025, 4, 7),
		Description: "feed",
	})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByKindCachesUnfilteredListing(t *testing.T) {
	svc, api, _ := newFixture(t, 0)
	api.page = models.TransactionPage{
		Records: []models.TransactionRecord{
			{ID: "tx-1", Kind: models.KindExpense, Category: models.CategoryFood, Amount: 200, OccurredOn: day(2025, 4, 8), Description: "feed"},
			{ID: "tx-2", Kind: models.KindExpense, Category: models.CategoryTools, Amount: 50, OccurredOn: day(2025, 4, 9), Description: "wire cutters"},
		},
		TotalSum: 250,
	}

	page, err := svc.ListByKind(context.Background(), models.KindExpense, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalSum != 250 || len(page.Records) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}

	// The unfiltered listing becomes the local snapshot for that kind.
	if got := len(svc.Snapshot()); got != 2 {
		t.Fatalf("snapshot: got %d records, want 2", got)
	}

	// A filtered listing must not clobber the snapshot.
	api.page = models.TransactionPage{
		Records:  page.Records[:1],
		TotalSum: 200,
	}
	if _, err := svc.ListByKind(context.Background(), models.KindExpense, "food"); err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if got := len(svc.Snapshot()); got != 2 {
		t.Fatalf("filtered list clobbered snapshot: %d", got)
	}
}

func TestFilteredTotalMatchesLocalSum(t *testing.T) {
	svc, api, _ := newFixture(t, 0)
	records := []models.TransactionRecord{
		{ID: "tx-1", Kind: models.KindExpense, Category: models.CategoryFood, Amount: 1200, OccurredOn: day(2025, 4, 10), Description: "maize"},
		{ID: "tx-2", Kind: models.KindExpense, Category: models.CategoryFood, Amount: 800, OccurredOn: day(2025, 4, 11), Description: "soy"},
	}
	api.page = models.TransactionPage{Records: records, TotalSum: 2000}

	page, err := svc.ListByKind(context.Background(), models.KindExpense, "food")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var local float64
	for _, r := range page.Records {
		if r.Category != models.CategoryFood {
			t.Fatalf("non-food record in filtered listing: %+v", r)
		}
		local += r.Amount
	}
	if local != page.TotalSum {
		t.Fatalf("server total %v disagrees with local sum %v", page.TotalSum, local)
	}
}
