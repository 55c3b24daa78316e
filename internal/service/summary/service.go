package summary

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kukufarm/kukutrack/internal/domain/models"
	"github.com/kukufarm/kukutrack/pkg/clients/backend"
)

// SnapshotProvider supplies the currently loaded ledger records for the
// local fallback fold.
type SnapshotProvider interface {
	Snapshot() []models.TransactionRecord
}

// Service computes the financial summary, preferring the backend's figure
// and falling back to a local fold when it cannot be reached.
type Service struct {
	api    backend.SummaryAPI
	ledger SnapshotProvider
	logger *zap.Logger
}

// NewService wires a summary aggregator.
func NewService(api backend.SummaryAPI, ledger SnapshotProvider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, ledger: ledger, logger: logger}
}

// Refresh returns the authoritative backend summary when available. On a
// remote or transport failure it degrades to folding the loaded records,
// marked with the local source so callers know it is best-effort. Auth
// failures propagate: there is no meaningful summary for an anonymous user.
func (s *Service) Refresh(ctx context.Context) (models.FinancialSummary, error) {
	remote, err := s.api.FinancialSummary(ctx)
	if err == nil {
		return remote, nil
	}

	var remoteErr *models.RemoteError
	var netErr *models.NetworkError
	if !errors.As(err, &remoteErr) && !errors.As(err, &netErr) {
		return models.FinancialSummary{}, err
	}

	s.logger.Warn("summary endpoint unavailable, folding loaded records", zap.Error(err))
	return models.ComputeSummary(s.ledger.Snapshot()), nil
}
