package reporting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kukufarm/kukutrack/internal/domain/models"
	"github.com/kukufarm/kukutrack/internal/repository/mongodb"
	sheetsrepo "github.com/kukufarm/kukutrack/internal/repository/sheets"
)

const (
	dateLayout       = "2006-01-02"
	reportSheetRange = "Reports!A:I"
)

// SummaryProvider yields the current financial summary.
type SummaryProvider interface {
	Refresh(ctx context.Context) (models.FinancialSummary, error)
}

// CountProvider yields the confirmed livestock counts.
type CountProvider interface {
	Refresh(ctx context.Context) error
	Counts() []models.LivestockCount
}

// Service composes the weekly snapshot of the farm's books: the financial
// summary plus the coop counts. Archiving to MongoDB and spreadsheet export
// are both optional; a nil repository disables that sink.
type Service struct {
	summary SummaryProvider
	counts  CountProvider
	archive mongodb.Repository
	sheet   sheetsrepo.Repository
	logger  *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(summary SummaryProvider, counts CountProvider, archive mongodb.Repository, sheet sheetsrepo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		summary: summary,
		counts:  counts,
		archive: archive,
		sheet:   sheet,
		logger:  logger,
	}
}

// Generate builds the report for the week containing now and pushes it to
// every configured sink. Sink failures are logged but do not discard the
// generated report.
func (s *Service) Generate(ctx context.Context, now time.Time) (models.WeeklyReport, error) {
	fin, err := s.summary.Refresh(ctx)
	if err != nil {
		return models.WeeklyReport{}, fmt.Errorf("collect financial summary: %w", err)
	}

	if err := s.counts.Refresh(ctx); err != nil {
		return models.WeeklyReport{}, fmt.Errorf("collect livestock counts: %w", err)
	}

	report := models.WeeklyReport{
		GeneratedAt:   now,
		WeekStart:     weekStart(now),
		TotalIncome:   fin.TotalIncome,
		TotalExpenses: fin.TotalExpenses,
		TotalProfit:   fin.TotalProfit,
		SummarySource: fin.Source,
	}

	for _, c := range s.counts.Counts() {
		switch c.Type {
		case models.LivestockHen:
			report.Hens = c.Quantity
		case models.LivestockCock:
			report.Cocks = c.Quantity
		case models.LivestockChicks:
			report.Chicks = c.Quantity
		}
	}

	if s.archive != nil {
		if err := s.archive.SaveWeeklyReport(ctx, report); err != nil {
			s.logger.Error("failed to archive weekly report", zap.Error(err))
		}
	}

	if s.sheet != nil {
		if err := s.sheet.AppendRow(ctx, reportSheetRange, reportRow(report)); err != nil {
			s.logger.Error("failed to export weekly report to sheet", zap.Error(err))
		}
	}

	return report, nil
}

// LatestReports returns recently archived reports, newest first. Returns an
// empty slice when archiving is disabled.
func (s *Service) LatestReports(ctx context.Context, limit int64) ([]models.WeeklyReport, error) {
	if s.archive == nil {
		return nil, nil
	}
	return s.archive.LatestWeeklyReports(ctx, limit)
}

func reportRow(r models.WeeklyReport) []interface{} {
	return []interface{}{
		r.GeneratedAt.Format(dateLayout),
		r.WeekStart.Format(dateLayout),
		r.TotalIncome,
		r.TotalExpenses,
		r.TotalProfit,
		r.Hens,
		r.Cocks,
		r.Chicks,
		string(r.SummarySource),
	}
}

// weekStart truncates to the Monday of the week containing t.
func weekStart(t time.Time) time.Time {
	day := t.Truncate(24 * time.Hour)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
