package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cartage-systems/cartage/internal/shared"
)

// FinalizeTx is the statement surface available inside a finalize
// transaction.
type FinalizeTx interface {
	InsertReport(ctx context.Context, input ReportInput) (int64, error)
	InsertLine(ctx context.Context, reportID int64, line LineInput) error
	StagedSourceNames(ctx context.Context, session string) ([]string, error)
	Allocate(ctx context.Context, sourceNames []string, manifestNumber string) (int64, error)
	ClearStaging(ctx context.Context, session string) (int64, error)
}

// Store is the persistence surface the service depends on.
type Store interface {
	WithTx(ctx context.Context, fn func(context.Context, FinalizeTx) error) error
	InsertEvent(ctx context.Context, manifestNumber, eventType, actor string) (*ManifestEvent, error)
	GetReport(ctx context.Context, manifestNumber string) (*DispatchReport, error)
	ListReports(ctx context.Context, dateFrom, dateTo string) ([]DispatchReport, error)
	ListLines(ctx context.Context, reportID int64) ([]ReportLine, error)
	ListEvents(ctx context.Context, manifestNumber string) ([]ManifestEvent, error)
	ListDispatched(ctx context.Context, filter DispatchedFilter) ([]DispatchedRow, int, error)
	Outstanding(ctx context.Context) ([]OutstandingRow, error)
}

// Service finalizes manifests and serves dispatch history.
type Service struct {
	store  Store
	locks  *shared.SessionLock
	logger *slog.Logger
}

// NewService constructs a dispatch service.
func NewService(store Store, locks *shared.SessionLock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, locks: locks, logger: logger}
}

// Finalize turns the session's staged cart into an immutable report. The
// report row, its line snapshots, the allocation of every staged invoice and
// the cart drain commit in a single transaction; the CREATED audit event is
// appended after the commit succeeds. Concurrent finalizations of the same
// session are rejected with shared.ErrConflict.
func (s *Service) Finalize(ctx context.Context, session string, input ReportInput, lines []LineInput) (*FinalizeResult, error) {
	if strings.TrimSpace(session) == "" {
		return nil, fmt.Errorf("dispatch: session required")
	}
	if input.ManifestNumber == "" {
		input.ManifestNumber = generateManifestNumber()
	}

	if err := s.locks.Acquire(ctx, session); err != nil {
		return nil, err
	}
	defer s.locks.Release(ctx, session)

	result := FinalizeResult{ManifestNumber: input.ManifestNumber}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx FinalizeTx) error {
		reportID, err := tx.InsertReport(ctx, input)
		if err != nil {
			return err
		}
		result.ReportID = reportID

		for _, line := range lines {
			if err := tx.InsertLine(ctx, reportID, line); err != nil {
				return err
			}
		}

		staged, err := tx.StagedSourceNames(ctx, session)
		if err != nil {
			return err
		}
		allocated, err := tx.Allocate(ctx, staged, input.ManifestNumber)
		if err != nil {
			return err
		}
		result.Allocated = allocated

		drained, err := tx.ClearStaging(ctx, session)
		if err != nil {
			return err
		}
		result.Drained = drained
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev, err := s.store.InsertEvent(ctx, input.ManifestNumber, EventCreated, session)
	if err != nil {
		// The report committed; a failed audit write is logged, not unwound.
		s.logger.Error("audit event write failed",
			"manifest_number", input.ManifestNumber, "error", err)
	} else {
		result.Event = *ev
	}

	s.logger.Info("manifest finalized",
		"manifest_number", input.ManifestNumber,
		"report_id", result.ReportID,
		"lines", len(lines),
		"allocated", result.Allocated,
		"session", session)
	return &result, nil
}

// Manifest fetches a report together with its lines and audit trail.
func (s *Service) Manifest(ctx context.Context, manifestNumber string) (*ManifestDetail, error) {
	report, err := s.store.GetReport(ctx, manifestNumber)
	if err != nil {
		return nil, err
	}

	detail := ManifestDetail{Report: *report}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lines, err := s.store.ListLines(gctx, report.ID)
		if err != nil {
			return err
		}
		detail.Lines = lines
		return nil
	})
	g.Go(func() error {
		events, err := s.store.ListEvents(gctx, manifestNumber)
		if err != nil {
			return err
		}
		detail.Events = events
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Reports lists finalized reports, optionally bounded by dispatch date.
func (s *Service) Reports(ctx context.Context, dateFrom, dateTo string) ([]DispatchReport, error) {
	return s.store.ListReports(ctx, dateFrom, dateTo)
}

// Dispatched lists invoice-level dispatched rows with the unpaginated total.
func (s *Service) Dispatched(ctx context.Context, filter DispatchedFilter) ([]DispatchedRow, int, error) {
	return s.store.ListDispatched(ctx, filter)
}

// Outstanding lists invoices that have never appeared on a report.
func (s *Service) Outstanding(ctx context.Context) ([]OutstandingRow, error) {
	return s.store.Outstanding(ctx)
}

func generateManifestNumber() string {
	stamp := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("MAN-%s-%s", stamp, suffix)
}
