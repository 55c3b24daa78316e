package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/kukufarm/kukutrack/internal/domain/models"
)

type recordedAdjust struct {
	id     string
	change int
	reason models.ChangeReason
}

type fakeInventoryAPI struct {
	counts    []models.LivestockCount
	adjusts   []recordedAdjust
	adjustErr error
	listErr   error
	history   []models.InventoryChangeEntry
}

func (f *fakeInventoryAPI) ListChickens(ctx context.Context) ([]models.LivestockCount, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.LivestockCount, len(f.counts))
	copy(out, f.counts)
	return out, nil
}

func (f *fakeInventoryAPI) AdjustChicken(ctx context.Context, id string, change int, reason models.ChangeReason) error {
	if f.adjustErr != nil {
		return f.adjustErr
	}
	f.adjusts = append(f.adjusts, recordedAdjust{id: id, change: change, reason: reason})
	for i := range f.counts {
		if f.counts[i].ID == id {
			f.counts[i].Quantity += change
		}
	}
	return nil
}

func (f *fakeInventoryAPI) ChickenHistory(ctx context.Context, typ models.LivestockType, reason models.ChangeReason) ([]models.InventoryChangeEntry, error) {
	return f.history, nil
}

func newSeededService(t *testing.T, hen, cock, chicks int) (*Service, *fakeInventoryAPI) {
	t.Helper()
	api := &fakeInventoryAPI{counts: []models.LivestockCount{
		{ID: "c-1", Type: models.LivestockHen, Quantity: hen},
		{ID: "c-2", Type: models.LivestockCock, Quantity: cock},
		{ID: "c-3", Type: models.LivestockChicks, Quantity: chicks},
	}}
	svc := NewService(api, nil)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return svc, api
}

func henCount(t *testing.T, svc *Service) int {
	t.Helper()
	for _, c := range svc.Counts() {
		if c.Type == models.LivestockHen {
			return c.Quantity
		}
	}
	t.Fatalf("hen count missing")
	return 0
}

func TestApplyDeltaIncrease(t *testing.T) {
	svc, api := newSeededService(t, 10, 2, 0)

	count, err := svc.ApplyDelta(context.Background(), models.LivestockHen, 3, models.DirectionIncrease, models.ReasonPurchase, "bought 3 hens")
	if err != nil {
		t.Fatalf("apply delta: %v", err)
	}
	if count.Quantity != 13 {
		t.Fatalf("got %d, want 13", count.Quantity)
	}

	if len(api.adjusts) != 1 || api.adjusts[0].change != 3 || api.adjusts[0].reason != models.ReasonPurchase {
		t.Fatalf("unexpected remote adjustments: %+v", api.adjusts)
	}

	audit := svc.LocalAudit()
	if len(audit) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(audit))
	}
	entry := audit[0]
	if entry.PreviousValue != 10 || entry.NewValue != 13 || entry.Delta != 3 || entry.Reason != models.ReasonPurchase {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
}

func TestApplyDeltaClampsAtZero(t *testing.T) {
	svc, api := newSeededService(t, 5, 0, 0)

	count, err := svc.ApplyDelta(context.Background(), models.LivestockHen, 8, models.DirectionDecrease, models.ReasonSale, "sold hens")
	if err != nil {
		t.Fatalf("apply delta: %v", err)
	}
	if count.Quantity != 0 {
		t.Fatalf("got %d, want 0", count.Quantity)
	}

	// The remote write and the audit delta carry the clamped change, not
	// the requested quantity.
	if len(api.adjusts) != 1 || api.adjusts[0].change != -5 {
		t.Fatalf("unexpected remote adjustments: %+v", api.adjusts)
	}

	audit := svc.LocalAudit()
	if len(audit) != 1 || audit[0].Delta != -5 || audit[0].PreviousValue != 5 || audit[0].NewValue != 0 {
		t.Fatalf("unexpected audit: %+v", audit)
	}
}

func TestApplyDeltaFullyClampedIsNoOp(t *testing.T) {
	svc, api := newSeededService(t, 0, 0, 0)

	count, err := svc.ApplyDelta(context.Background(), models.LivestockHen, 4, models.DirectionDecrease, models.ReasonDeath, "")
	if err != nil {
		t.Fatalf("apply delta: %v", err)
	}
	if count.Quantity != 0 {
		t.Fatalf("got %d, want 0", count.Quantity)
	}
	if len(api.adjusts) != 0 {
		t.Fatalf("expected no remote write, got %+v", api.adjusts)
	}
	if len(svc.LocalAudit()) != 0 {
		t.Fatalf("expected no audit entry for a zero-change adjustment")
	}
}

func TestDeltaCommutativityWithoutClamping(t *testing.T) {
	run := func(first, second func(svc *Service) error) int {
		svc, _ := newSeededService(t, 10, 0, 0)
		if err := first(svc); err != nil {
			t.Fatalf("first delta: %v", err)
		}
		if err := second(svc); err != nil {
			t.Fatalf("second delta: %v", err)
		}
		return henCount(t, svc)
	}

	plus3 := func(svc *Service) error {
		_, err := svc.ApplyDelta(context.Background(), models.LivestockHen, 3, models.DirectionIncrease, models.ReasonPurchase, "")
		return err
	}
	minus4 := func(svc *Service) error {
		_, err := svc.ApplyDelta(context.Background(), models.LivestockHen, 4, models.DirectionDecrease, models.ReasonSale, "")
		return err
	}

	if a, b := run(plus3, minus4), run(minus4, plus3); a != b || a != 9 {
		t.Fatalf("delta application not commutative: %d vs %d", a, b)
	}
}

func TestApplyDeltaRemoteFailureLeavesCacheUntouched(t *testing.T) {
	svc, api := newSeededService(t, 7, 0, 0)
	api.adjustErr = &models.RemoteError{StatusCode: 500, Message: "boom"}

	_, err := svc.ApplyDelta(context.Background(), models.LivestockHen, 2, models.DirectionIncrease, models.ReasonPurchase, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	var remoteErr *models.RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}

	if got := henCount(t, svc); got != 7 {
		t.Fatalf("cache mutated on failed write: %d", got)
	}
	if len(svc.LocalAudit()) != 0 {
		t.Fatalf("audit written on failed write")
	}
}

func TestManualAdjust(t *testing.T) {
	svc, api := newSeededService(t, 10, 0, 0)

	count, err := svc.ManualAdjust(context.Background(), models.LivestockHen, 6, models.ReasonDeath, "fox got in")
	if err != nil {
		t.Fatalf("manual adjust: %v", err)
	}
	if count.Quantity != 6 {
		t.Fatalf("got %d, want 6", count.Quantity)
	}
	if len(api.adjusts) != 1 || api.adjusts[0].change != -4 {
		t.Fatalf("expected relative write of -4, got %+v", api.adjusts)
	}
}

func TestManualAdjustNoChange(t *testing.T) {
	svc, api := newSeededService(t, 10, 0, 0)

	_, err := svc.ManualAdjust(context.Background(), models.LivestockHen, 10, models.ReasonOther, "")
	if !errors.Is(err, models.ErrNoChange) {
		t.Fatalf("expected ErrNoChange, got %v", err)
	}
	if len(api.adjusts) != 0 {
		t.Fatalf("no-op adjustment reached the backend")
	}
}

func TestApplyDeltaValidation(t *testing.T) {
	svc, _ := newSeededService(t, 10, 0, 0)

	var vErr *models.ValidationError
	if _, err := svc.ApplyDelta(context.Background(), models.LivestockHen, 0, models.DirectionIncrease, models.ReasonPurchase, ""); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for zero quantity, got %v", err)
	}
	if _, err := svc.ManualAdjust(context.Background(), models.LivestockHen, -1, models.ReasonOther, ""); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for negative value, got %v", err)
	}
}
