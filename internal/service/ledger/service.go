package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kukufarm/kukutrack/internal/domain/models"
	"github.com/kukufarm/kukutrack/pkg/clients/backend"
)

// CountAdjuster is the slice of the inventory projection the ledger needs
// for livestock-coupled transactions.
type CountAdjuster interface {
	ApplyDelta(ctx context.Context, typ models.LivestockType, quantity int, direction models.CategoryDirection, reason models.ChangeReason, notes string) (models.LivestockCount, error)
}

// Service owns the ordered collection of transaction records. Writes go to
// the backend first; the local collection changes only after confirmation,
// so there is never anything to roll back.
type Service struct {
	api       backend.TransactionAPI
	inventory CountAdjuster
	logger    *zap.Logger

	mu      sync.RWMutex
	records []models.TransactionRecord

	// listFlights collapses identical filtered list queries issued while an
	// equivalent one is still in flight.
	listFlights singleflight.Group
}

// NewService wires a ledger store.
func NewService(api backend.TransactionAPI, inventory CountAdjuster, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:       api,
		inventory: inventory,
		logger:    logger,
	}
}

// Create validates and persists a new record, then appends it locally. A
// livestock-category record additionally applies exactly one count delta:
// an expense purchase acquires birds, an income sale disposes of them.
// When the count update fails the transaction itself remains recorded; the
// returned record is valid alongside the error.
func (s *Service) Create(ctx context.Context, rec models.TransactionRecord) (models.TransactionRecord, error) {
	if err := rec.Validate(); err != nil {
		return models.TransactionRecord{}, err
	}

	created, err := s.api.CreateTransaction(ctx, rec)
	if err != nil {
		return models.TransactionRecord{}, err
	}

	s.mu.Lock()
	s.records = append(s.records, created)
	s.mu.Unlock()

	s.logger.Info("transaction recorded",
		zap.String("id", created.ID),
		zap.String("kind", string(created.Kind)),
		zap.String("category", string(created.Category)),
		zap.Float64("amount", created.Amount))

	if !models.IsLivestockCategory(created.Category) {
		return created, nil
	}

	direction, err := models.LivestockDirection(created.Category)
	if err != nil {
		return created, err
	}

	reason := models.ReasonPurchase
	if direction == models.DirectionDecrease {
		reason = models.ReasonSale
	}

	if _, err := s.inventory.ApplyDelta(ctx, created.LivestockType, created.LivestockQuantity, direction, reason, created.Description); err != nil {
		return created, fmt.Errorf("transaction %s saved but count update failed: %w", created.ID, err)
	}

	return created, nil
}

// Update validates and persists changes to an existing record. Kind and
// category are fixed at creation; changing them is modeled as delete plus
// recreate, so a mismatch here is rejected before any network call.
func (s *Service) Update(ctx context.Context, id string, rec models.TransactionRecord) (models.TransactionRecord, error) {
	if id == "" {
		return models.TransactionRecord{}, models.NewValidationError("id", "must be provided")
	}
	if err := rec.Validate(); err != nil {
		return models.TransactionRecord{}, err
	}

	if existing, ok := s.find(id); ok {
		fields := map[string]string{}
		if existing.Kind != rec.Kind {
			fields["kind"] = "cannot change after creation; delete and recreate instead"
		}
		if existing.Category != rec.Category {
			fields["category"] = "cannot change after creation; delete and recreate instead"
		}
		if len(fields) > 0 {
			return models.TransactionRecord{}, &models.ValidationError{Fields: fields}
		}
	}

	updated, err := s.api.UpdateTransaction(ctx, id, rec)
	if err != nil {
		return models.TransactionRecord{}, err
	}

	s.mu.Lock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i] = updated
			break
		}
	}
	s.mu.Unlock()

	s.logger.Info("transaction updated", zap.String("id", id))
	return updated, nil
}

// Delete removes a record. A record already gone remotely counts as
// success: the backend answers 404 either way and the local projection is
// already consistent, so deleting twice is a no-op, not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return models.NewValidationError("id", "must be provided")
	}

	if err := s.api.DeleteTransaction(ctx, id); err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}

	s.mu.Lock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.logger.Info("transaction deleted", zap.String("id", id))
	return nil
}

// ListByKind fetches the filtered listing plus the server-computed sum.
// An empty or "all" category is the identity filter. Identical queries
// issued while one is in flight share its result instead of re-hitting the
// backend.
func (s *Service) ListByKind(ctx context.Context, kind models.TransactionKind, category string) (models.TransactionPage, error) {
	if kind != models.KindExpense && kind != models.KindIncome {
		return models.TransactionPage{}, models.NewValidationError("kind", "must be expense or income")
	}

	key := string(kind) + "|" + category
	result, err, shared := s.listFlights.Do(key, func() (any, error) {
		page, err := s.api.ListTransactions(ctx, kind, category)
		if err != nil {
			return nil, err
		}

		if category == "" || category == "all" {
			s.replaceKind(kind, page.Records)
		}
		return page, nil
	})
	if err != nil {
		return models.TransactionPage{}, err
	}
	if shared {
		s.logger.Debug("list query coalesced", zap.String("filter", key))
	}

	return result.(models.TransactionPage), nil
}

// Snapshot returns a copy of every currently loaded record. The summary
// fallback folds over this and is best-effort by construction.
func (s *Service) Snapshot() []models.TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TransactionRecord, len(s.records))
	copy(out, s.records)
	return out
}

// replaceKind swaps in the authoritative unfiltered listing for one kind,
// preserving locally loaded records of the other kind.
func (s *Service) replaceKind(kind models.TransactionKind, records []models.TransactionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0:0]
	for _, r := range s.records {
		if r.Kind != kind {
			kept = append(kept, r)
		}
	}
	s.records = append(kept, records...)
}

func (s *Service) find(id string) (models.TransactionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return models.TransactionRecord{}, false
}
