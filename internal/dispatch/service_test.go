package dispatch

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/cartage-systems/cartage/internal/shared"
)

// memoryDispatchStore backs the service with maps. The transaction callback
// runs against the store itself; scenarios that must roll back fail before
// writing.
type memoryDispatchStore struct {
	reports      map[string]*DispatchReport
	lines        map[int64][]ReportLine
	events       map[string][]ManifestEvent
	staged       map[string][]string // session -> source names
	allocations  map[string]string   // source name -> manifest
	nextReportID int64
	nextEventID  int64
}

func newMemoryDispatchStore() *memoryDispatchStore {
	return &memoryDispatchStore{
		reports:     make(map[string]*DispatchReport),
		lines:       make(map[int64][]ReportLine),
		events:      make(map[string][]ManifestEvent),
		staged:      make(map[string][]string),
		allocations: make(map[string]string),
	}
}

func (s *memoryDispatchStore) WithTx(ctx context.Context, fn func(context.Context, FinalizeTx) error) error {
	return fn(ctx, s)
}

func (s *memoryDispatchStore) InsertReport(ctx context.Context, input ReportInput) (int64, error) {
	if _, exists := s.reports[input.ManifestNumber]; exists {
		return 0, shared.ErrDuplicate
	}
	s.nextReportID++
	s.reports[input.ManifestNumber] = &DispatchReport{
		ID:             s.nextReportID,
		ManifestNumber: input.ManifestNumber,
		DispatchDate:   input.DispatchDate,
		Driver:         input.Driver,
		VehicleReg:     input.VehicleReg,
		TotalValue:     input.TotalValue,
		CreatedAt:      time.Now(),
	}
	return s.nextReportID, nil
}

func (s *memoryDispatchStore) InsertLine(ctx context.Context, reportID int64, line LineInput) error {
	s.lines[reportID] = append(s.lines[reportID], ReportLine{
		ID:            int64(len(s.lines[reportID]) + 1),
		ReportID:      reportID,
		InvoiceNumber: line.InvoiceNumber,
		CustomerName:  line.CustomerName,
		Value:         line.Value,
	})
	return nil
}

func (s *memoryDispatchStore) StagedSourceNames(ctx context.Context, session string) ([]string, error) {
	return s.staged[session], nil
}

func (s *memoryDispatchStore) Allocate(ctx context.Context, sourceNames []string, manifestNumber string) (int64, error) {
	for _, name := range sourceNames {
		s.allocations[name] = manifestNumber
	}
	return int64(len(sourceNames)), nil
}

func (s *memoryDispatchStore) ClearStaging(ctx context.Context, session string) (int64, error) {
	n := int64(len(s.staged[session]))
	delete(s.staged, session)
	return n, nil
}

func (s *memoryDispatchStore) InsertEvent(ctx context.Context, manifestNumber, eventType, actor string) (*ManifestEvent, error) {
	s.nextEventID++
	ev := ManifestEvent{
		ID:             s.nextEventID,
		ManifestNumber: manifestNumber,
		EventType:      eventType,
		Actor:          actor,
		OccurredAt:     time.Now(),
	}
	s.events[manifestNumber] = append(s.events[manifestNumber], ev)
	return &ev, nil
}

func (s *memoryDispatchStore) GetReport(ctx context.Context, manifestNumber string) (*DispatchReport, error) {
	rep, ok := s.reports[manifestNumber]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return rep, nil
}

func (s *memoryDispatchStore) ListReports(ctx context.Context, dateFrom, dateTo string) ([]DispatchReport, error) {
	var out []DispatchReport
	for _, rep := range s.reports {
		out = append(out, *rep)
	}
	return out, nil
}

func (s *memoryDispatchStore) ListLines(ctx context.Context, reportID int64) ([]ReportLine, error) {
	return s.lines[reportID], nil
}

func (s *memoryDispatchStore) ListEvents(ctx context.Context, manifestNumber string) ([]ManifestEvent, error) {
	return s.events[manifestNumber], nil
}

func (s *memoryDispatchStore) ListDispatched(ctx context.Context, filter DispatchedFilter) ([]DispatchedRow, int, error) {
	return nil, 0, nil
}

func (s *memoryDispatchStore) Outstanding(ctx context.Context) ([]OutstandingRow, error) {
	return nil, nil
}

func newDispatchService(t *testing.T, store Store) (*Service, *shared.SessionLock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	locks := shared.NewSessionLock(client, time.Minute)
	return NewService(store, locks, slog.Default()), locks
}

func TestFinalizeDrainsCartAndAllocates(t *testing.T) {
	store := newMemoryDispatchStore()
	store.staged["alice"] = []string{"BINV01.pdf", "BINV02.pdf"}
	svc, _ := newDispatchService(t, store)

	result, err := svc.Finalize(context.Background(), "alice",
		ReportInput{ManifestNumber: "M100", DispatchDate: "2026-08-29", Driver: "T. Moyo"},
		[]LineInput{
			{InvoiceNumber: "BINV01", Value: 200},
			{InvoiceNumber: "BINV02", Value: 150},
		})
	require.NoError(t, err)

	require.Equal(t, "M100", result.ManifestNumber)
	require.EqualValues(t, 2, result.Allocated)
	require.EqualValues(t, 2, result.Drained)
	require.Equal(t, EventCreated, result.Event.EventType)
	require.Equal(t, "alice", result.Event.Actor)

	require.Empty(t, store.staged["alice"])
	require.Equal(t, "M100", store.allocations["BINV01.pdf"])
	require.Len(t, store.lines[result.ReportID], 2)
	require.Len(t, store.events["M100"], 1)
}

func TestFinalizeGeneratesManifestNumber(t *testing.T) {
	store := newMemoryDispatchStore()
	svc, _ := newDispatchService(t, store)

	result, err := svc.Finalize(context.Background(), "alice",
		ReportInput{DispatchDate: "2026-08-29"}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.ManifestNumber)
	require.Contains(t, result.ManifestNumber, "MAN-")
}

func TestFinalizeDuplicateManifestNumber(t *testing.T) {
	store := newMemoryDispatchStore()
	svc, _ := newDispatchService(t, store)
	ctx := context.Background()

	_, err := svc.Finalize(ctx, "alice", ReportInput{ManifestNumber: "M100", DispatchDate: "2026-08-29"}, nil)
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, "alice", ReportInput{ManifestNumber: "M100", DispatchDate: "2026-08-30"}, nil)
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestFinalizeRejectsConcurrentSession(t *testing.T) {
	store := newMemoryDispatchStore()
	svc, locks := newDispatchService(t, store)
	ctx := context.Background()

	// Simulate another finalization in flight for the same session.
	require.NoError(t, locks.Acquire(ctx, "alice"))

	_, err := svc.Finalize(ctx, "alice", ReportInput{ManifestNumber: "M100", DispatchDate: "2026-08-29"}, nil)
	require.ErrorIs(t, err, shared.ErrConflict)

	// A different session proceeds.
	_, err = svc.Finalize(ctx, "bob", ReportInput{ManifestNumber: "M101", DispatchDate: "2026-08-29"}, nil)
	require.NoError(t, err)
}

func TestFinalizeReleasesLock(t *testing.T) {
	store := newMemoryDispatchStore()
	svc, _ := newDispatchService(t, store)
	ctx := context.Background()

	_, err := svc.Finalize(ctx, "alice", ReportInput{ManifestNumber: "M100", DispatchDate: "2026-08-29"}, nil)
	require.NoError(t, err)

	// The lock is gone after a successful run.
	_, err = svc.Finalize(ctx, "alice", ReportInput{ManifestNumber: "M101", DispatchDate: "2026-08-29"}, nil)
	require.NoError(t, err)
}

func TestFinalizeRequiresSession(t *testing.T) {
	store := newMemoryDispatchStore()
	svc, _ := newDispatchService(t, store)

	_, err := svc.Finalize(context.Background(), " ", ReportInput{DispatchDate: "2026-08-29"}, nil)
	require.Error(t, err)
}

func TestManifestDetail(t *testing.T) {
	store := newMemoryDispatchStore()
	svc, _ := newDispatchService(t, store)
	ctx := context.Background()

	result, err := svc.Finalize(ctx, "alice",
		ReportInput{ManifestNumber: "M100", DispatchDate: "2026-08-29"},
		[]LineInput{{InvoiceNumber: "BINV01", Value: 200}})
	require.NoError(t, err)

	detail, err := svc.Manifest(ctx, "M100")
	require.NoError(t, err)
	require.Equal(t, result.ReportID, detail.Report.ID)
	require.Len(t, detail.Lines, 1)
	require.Len(t, detail.Events, 1)
	require.Equal(t, EventCreated, detail.Events[0].EventType)
}

func TestManifestDetailNotFound(t *testing.T) {
	store := newMemoryDispatchStore()
	svc, _ := newDispatchService(t, store)

	_, err := svc.Manifest(context.Background(), "NOPE")
	require.ErrorIs(t, err, shared.ErrNotFound)
}
