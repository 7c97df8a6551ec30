package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/spaceworks-id/spaceworks/internal/invoice"
)

// Repository loads the invoice collection used as the aggregation snapshot.
// The service never queries the store beyond this single read.
type Repository interface {
	ListAll(ctx context.Context) ([]invoice.Invoice, error)
}

// Filter scopes one report request. A zero AsOf defaults to the current
// day, truncated so cache keys stay stable within a day.
type Filter struct {
	AsOf time.Time
}

// Service coordinates report computation over the persisted invoices,
// caching full snapshots per as-of date.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService constructs a Service instance.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// GetSnapshot returns the financial report snapshot as of the filter date.
func (s *Service) GetSnapshot(ctx context.Context, filter Filter) (Snapshot, error) {
	if s.repo == nil {
		return Snapshot{}, fmt.Errorf("reports: repository not configured")
	}
	asOf := filter.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	// Snapshots are keyed per day, so the aggregation date must carry the
	// same granularity or aging day counts would depend on which request
	// populated the cache first.
	asOf = asOf.UTC()
	asOf = time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	loader := func(ctx context.Context) (interface{}, error) {
		invoices, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return BuildSnapshot(invoices, Params{AsOf: asOf})
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return Snapshot{}, err
		}
		return value.(Snapshot), nil
	}

	key, err := s.cache.BuildKey(ctx, keySnapshot(asOf))
	if err != nil {
		return Snapshot{}, err
	}
	var snapshot Snapshot
	if err := s.cache.FetchJSON(ctx, key, &snapshot, loader); err != nil {
		return Snapshot{}, err
	}
	return snapshot, nil
}

// Invalidate bumps the snapshot cache version.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Bump(ctx)
}
