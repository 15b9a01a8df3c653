package staging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cartage-systems/cartage/internal/orders"
)

// memoryStagingRepo stages orders in maps, mirroring the one-entry-per-order
// exclusivity the orders table enforces with a unique constraint.
type memoryStagingRepo struct {
	orders    map[string]*orders.Order
	staged    map[string]string // source name -> session
	finalized map[string]bool   // manifest numbers with a report
}

func newMemoryStagingRepo() *memoryStagingRepo {
	return &memoryStagingRepo{
		orders:    make(map[string]*orders.Order),
		staged:    make(map[string]string),
		finalized: make(map[string]bool),
	}
}

func (r *memoryStagingRepo) addOrder(sourceName string, kind orders.Kind) *orders.Order {
	o := &orders.Order{
		ID:         int64(len(r.orders) + 1),
		SourceName: sourceName,
		Kind:       kind,
		Status:     orders.StatusPending,
	}
	r.orders[sourceName] = o
	return o
}

func (r *memoryStagingRepo) Add(ctx context.Context, session string, sourceNames []string) (int64, error) {
	var added int64
	for _, name := range sourceNames {
		o, ok := r.orders[name]
		if !ok || o.Kind != orders.KindInvoice {
			continue
		}
		if _, taken := r.staged[name]; taken {
			continue
		}
		r.staged[name] = session
		added++
	}
	return added, nil
}

func (r *memoryStagingRepo) Remove(ctx context.Context, session string, sourceNames []string) (int64, error) {
	var removed int64
	for _, name := range sourceNames {
		if _, ok := r.staged[name]; !ok {
			continue
		}
		delete(r.staged, name)
		removed++
		o := r.orders[name]
		if o.ManifestNumber == nil || !r.finalized[*o.ManifestNumber] {
			o.IsAllocated = false
			o.AllocatedAt = nil
			o.ManifestNumber = nil
		}
	}
	return removed, nil
}

func (r *memoryStagingRepo) List(ctx context.Context, session string) ([]orders.Order, error) {
	var out []orders.Order
	for name, sess := range r.staged {
		o := r.orders[name]
		if sess == session && !o.IsAllocated {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memoryStagingRepo) ListForManifest(ctx context.Context, session, manifestNumber string) ([]orders.Order, error) {
	var out []orders.Order
	for _, o := range r.orders {
		if o.IsAllocated && o.ManifestNumber != nil && *o.ManifestNumber == manifestNumber {
			out = append(out, *o)
		}
	}
	open, err := r.List(ctx, session)
	if err != nil {
		return nil, err
	}
	return append(out, open...), nil
}

func newStagingService(repo RepositoryPort) *Service {
	return NewService(repo, slog.Default())
}

func TestAddStagesInvoicesOnce(t *testing.T) {
	repo := newMemoryStagingRepo()
	repo.addOrder("BINV01.pdf", orders.KindInvoice)
	repo.addOrder("BINV02.pdf", orders.KindInvoice)
	svc := newStagingService(repo)
	ctx := context.Background()

	added, err := svc.Add(ctx, "alice", []string{"BINV01.pdf", "BINV02.pdf"})
	require.NoError(t, err)
	require.EqualValues(t, 2, added)

	// Re-adding is silently skipped, not an error.
	added, err = svc.Add(ctx, "alice", []string{"BINV01.pdf"})
	require.NoError(t, err)
	require.EqualValues(t, 0, added)
}

func TestAddIsExclusiveAcrossSessions(t *testing.T) {
	repo := newMemoryStagingRepo()
	repo.addOrder("BINV01.pdf", orders.KindInvoice)
	svc := newStagingService(repo)
	ctx := context.Background()

	added, err := svc.Add(ctx, "alice", []string{"BINV01.pdf"})
	require.NoError(t, err)
	require.EqualValues(t, 1, added)

	added, err = svc.Add(ctx, "bob", []string{"BINV01.pdf"})
	require.NoError(t, err)
	require.EqualValues(t, 0, added)

	list, err := svc.List(ctx, "bob", "")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAddSkipsCreditNotes(t *testing.T) {
	repo := newMemoryStagingRepo()
	repo.addOrder("BCRN01.pdf", orders.KindCreditNote)
	svc := newStagingService(repo)

	added, err := svc.Add(context.Background(), "alice", []string{"BCRN01.pdf"})
	require.NoError(t, err)
	require.EqualValues(t, 0, added)
}

func TestRemoveClearsAllocationUnlessFinalized(t *testing.T) {
	repo := newMemoryStagingRepo()
	free := repo.addOrder("BINV01.pdf", orders.KindInvoice)
	kept := repo.addOrder("BINV02.pdf", orders.KindInvoice)
	svc := newStagingService(repo)
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", []string{"BINV01.pdf", "BINV02.pdf"})
	require.NoError(t, err)

	m1, m2 := "M100", "M200"
	free.IsAllocated, free.ManifestNumber = true, &m1
	kept.IsAllocated, kept.ManifestNumber = true, &m2
	repo.finalized[m2] = true

	removed, err := svc.Remove(ctx, "alice", []string{"BINV01.pdf", "BINV02.pdf"})
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	// BINV01's manifest has no report, so its allocation unwinds.
	require.False(t, free.IsAllocated)
	require.Nil(t, free.ManifestNumber)

	// BINV02 was finalized under M200: history is immutable.
	require.True(t, kept.IsAllocated)
	require.NotNil(t, kept.ManifestNumber)
}

func TestListRequiresSession(t *testing.T) {
	svc := newStagingService(newMemoryStagingRepo())

	_, err := svc.List(context.Background(), "  ", "")
	require.Error(t, err)

	_, err = svc.Add(context.Background(), "", []string{"x"})
	require.Error(t, err)

	_, err = svc.Remove(context.Background(), "", []string{"x"})
	require.Error(t, err)
}

func TestListForManifestMergesAllocatedAndOpen(t *testing.T) {
	repo := newMemoryStagingRepo()
	done := repo.addOrder("BINV01.pdf", orders.KindInvoice)
	repo.addOrder("BINV02.pdf", orders.KindInvoice)
	svc := newStagingService(repo)
	ctx := context.Background()

	m := "M100"
	done.IsAllocated, done.ManifestNumber = true, &m

	_, err := svc.Add(ctx, "alice", []string{"BINV02.pdf"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "alice", "M100")
	require.NoError(t, err)
	require.Len(t, list, 2)
}
