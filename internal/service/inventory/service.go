package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kukufarm/kukutrack/internal/domain/models"
	"github.com/kukufarm/kukutrack/pkg/clients/backend"
)

// Service projects livestock counts from the remote system of record plus
// locally applied deltas. The cache only ever holds values the backend has
// confirmed; a failed write leaves it untouched.
type Service struct {
	api    backend.InventoryAPI
	logger *zap.Logger
	now    func() time.Time

	mu     sync.RWMutex
	counts map[models.LivestockType]models.LivestockCount
	audit  []models.InventoryChangeEntry
}

// NewService wires a new inventory projection.
func NewService(api backend.InventoryAPI, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:    api,
		logger: logger,
		now:    time.Now,
		counts: make(map[models.LivestockType]models.LivestockCount),
	}
}

// Refresh replaces the cached counts with the backend's current values.
func (s *Service) Refresh(ctx context.Context) error {
	counts, err := s.api.ListChickens(ctx)
	if err != nil {
		return fmt.Errorf("refresh livestock counts: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts = make(map[models.LivestockType]models.LivestockCount, len(counts))
	for _, c := range counts {
		s.counts[c.Type] = c
	}
	return nil
}

// Counts returns the cached counts in display order. Types the backend has
// never reported are listed with quantity zero.
func (s *Service) Counts() []models.LivestockCount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.LivestockCount, 0, len(models.LivestockTypes()))
	for _, typ := range models.LivestockTypes() {
		if c, ok := s.counts[typ]; ok {
			out = append(out, c)
		} else {
			out = append(out, models.LivestockCount{Type: typ})
		}
	}
	return out
}

// ApplyDelta moves one count by quantity in the given direction. Decrements
// clamp at zero, and the audit delta records the clamped change actually
// applied. The remote write is relative, so concurrent writers compose
// instead of overwriting each other.
func (s *Service) ApplyDelta(ctx context.Context, typ models.LivestockType, quantity int, direction models.CategoryDirection, reason models.ChangeReason, notes string) (models.LivestockCount, error) {
	if quantity <= 0 {
		return models.LivestockCount{}, models.NewValidationError("quantity", "must be a positive integer")
	}

	current, err := s.lookup(ctx, typ)
	if err != nil {
		return models.LivestockCount{}, err
	}

	newValue := current.Quantity + quantity
	if direction == models.DirectionDecrease {
		newValue = current.Quantity - quantity
		if newValue < 0 {
			newValue = 0
		}
	}

	return s.commit(ctx, current, newValue, reason, notes)
}

// ManualAdjust sets one count to an absolute value chosen by the user. The
// write still travels as a relative change. Adjusting to the current value
// is reported as models.ErrNoChange, which callers treat as benign.
func (s *Service) ManualAdjust(ctx context.Context, typ models.LivestockType, newValue int, reason models.ChangeReason, notes string) (models.LivestockCount, error) {
	if newValue < 0 {
		return models.LivestockCount{}, models.NewValidationError("quantity", "must not be negative")
	}

	current, err := s.lookup(ctx, typ)
	if err != nil {
		return models.LivestockCount{}, err
	}

	if newValue == current.Quantity {
		return current, models.ErrNoChange
	}

	return s.commit(ctx, current, newValue, reason, notes)
}

// commit persists newValue as a relative adjustment and, only after the
// backend confirms, updates the cache and appends one audit entry.
func (s *Service) commit(ctx context.Context, current models.LivestockCount, newValue int, reason models.ChangeReason, notes string) (models.LivestockCount, error) {
	change := newValue - current.Quantity
	if change == 0 {
		// A fully clamped decrement on an empty coop moves nothing.
		s.logger.Debug("skipping no-op count adjustment", zap.String("type", string(current.Type)))
		return current, nil
	}

	if err := s.api.AdjustChicken(ctx, current.ID, change, reason); err != nil {
		return models.LivestockCount{}, fmt.Errorf("adjust %s count: %w", current.Type, err)
	}

	updated := current
	updated.Quantity = newValue
	updated.UpdatedAt = s.now()

	entry := models.InventoryChangeEntry{
		OccurredAt:    updated.UpdatedAt,
		Type:          current.Type,
		PreviousValue: current.Quantity,
		NewValue:      newValue,
		Delta:         change,
		Reason:        reason,
		Notes:         notes,
	}

	s.mu.Lock()
	s.counts[current.Type] = updated
	s.audit = append(s.audit, entry)
	s.mu.Unlock()

	s.logger.Info("livestock count adjusted",
		zap.String("type", string(current.Type)),
		zap.Int("previous", current.Quantity),
		zap.Int("new", newValue),
		zap.Int("delta", change),
		zap.String("reason", string(reason)))

	return updated, nil
}

// lookup returns the confirmed count for a type, fetching from the backend
// when the cache is cold.
func (s *Service) lookup(ctx context.Context, typ models.LivestockType) (models.LivestockCount, error) {
	s.mu.RLock()
	current, ok := s.counts[typ]
	s.mu.RUnlock()
	if ok {
		return current, nil
	}

	if err := s.Refresh(ctx); err != nil {
		return models.LivestockCount{}, err
	}

	s.mu.RLock()
	current, ok = s.counts[typ]
	s.mu.RUnlock()
	if !ok {
		return models.LivestockCount{}, fmt.Errorf("%w: livestock type %s", models.ErrNotFound, typ)
	}
	return current, nil
}

// History fetches the backend's audit trail, optionally filtered.
func (s *Service) History(ctx context.Context, typ models.LivestockType, reason models.ChangeReason) ([]models.InventoryChangeEntry, error) {
	entries, err := s.api.ChickenHistory(ctx, typ, reason)
	if err != nil {
		return nil, fmt.Errorf("fetch chicken history: %w", err)
	}
	return entries, nil
}

// LocalAudit returns a copy of the mutations this client has applied since
// startup, in application order.
func (s *Service) LocalAudit() []models.InventoryChangeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.InventoryChangeEntry, len(s.audit))
	copy(out, s.audit)
	return out
}
