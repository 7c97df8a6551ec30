package reports

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/spaceworks-id/spaceworks/internal/invoice"
)

type mockRepo struct {
	invoices []invoice.Invoice
	calls    int
}

func (m *mockRepo) ListAll(ctx context.Context) ([]invoice.Invoice, error) {
	m.calls++
	return m.invoices, nil
}

func newTestService(t *testing.T, repo Repository) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(repo, cache)
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestGetSnapshotCaches(t *testing.T) {
	repo := &mockRepo{invoices: []invoice.Invoice{
		paidInvoice("600", time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)),
	}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	ctx := context.Background()
	filter := Filter{AsOf: asOf}

	snapshot, err := svc.GetSnapshot(ctx, filter)
	require.NoError(t, err)
	require.True(t, snapshot.Revenue.Current.Equal(d("600")))
	require.Equal(t, 1, repo.calls)

	// Second call should hit cache.
	snapshot, err = svc.GetSnapshot(ctx, filter)
	require.NoError(t, err)
	require.True(t, snapshot.Revenue.Current.Equal(d("600")))
	require.Equal(t, 1, repo.calls)

	// Bumping the cache should trigger reload.
	require.NoError(t, svc.Invalidate(ctx))
	repo.invoices = append(repo.invoices, paidInvoice("400", time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)))
	snapshot, err = svc.GetSnapshot(ctx, filter)
	require.NoError(t, err)
	require.True(t, snapshot.Revenue.Current.Equal(d("1000")))
	require.Equal(t, 2, repo.calls)
}

func TestGetSnapshotRoundTripsThroughJSON(t *testing.T) {
	paidAt := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	inv := paidInvoice("249750", paidAt)
	inv.Totals.TaxAmount = d("24750")
	inv.ServiceName = "Private Office"
	repo := &mockRepo{invoices: []invoice.Invoice{inv}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	ctx := context.Background()
	first, err := svc.GetSnapshot(ctx, Filter{AsOf: asOf})
	require.NoError(t, err)
	second, err := svc.GetSnapshot(ctx, Filter{AsOf: asOf})
	require.NoError(t, err)

	require.True(t, second.Revenue.Current.Equal(first.Revenue.Current))
	require.True(t, second.Tax.TotalTax.Equal(first.Tax.TotalTax))
	require.Equal(t, first.TopServices[0].Name, second.TopServices[0].Name)
	require.Equal(t, 1, repo.calls, "second read served from cache")
}

func TestGetSnapshotTruncatesAsOfToDay(t *testing.T) {
	due := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	repo := &mockRepo{invoices: []invoice.Invoice{outstandingInvoice("500", due)}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	ctx := context.Background()
	morning, err := svc.GetSnapshot(ctx, Filter{AsOf: time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	evening, err := svc.GetSnapshot(ctx, Filter{AsOf: time.Date(2026, 8, 30, 23, 30, 0, 0, time.UTC)})
	require.NoError(t, err)

	// Same reporting day means the same cache entry and identical aging.
	require.Equal(t, 1, repo.calls)
	require.True(t, evening.Aging.Days30.Equal(morning.Aging.Days30))
	require.True(t, evening.Aging.TotalOutstanding.Equal(d("500")))
}

func TestGetSnapshotWithoutCache(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, nil)

	_, err := svc.GetSnapshot(context.Background(), Filter{AsOf: asOf})
	require.NoError(t, err)
	_, err = svc.GetSnapshot(context.Background(), Filter{AsOf: asOf})
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestGetSnapshotRequiresRepo(t *testing.T) {
	svc := NewService(nil, nil)
	_, err := svc.GetSnapshot(context.Background(), Filter{AsOf: asOf})
	require.Error(t, err)
}
