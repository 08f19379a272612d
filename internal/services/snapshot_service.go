package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/forecast"
	"ledger/internal/sheets"
)

// SnapshotService builds forecast snapshots from a ledger backend and keeps
// the results by reference date.
type SnapshotService struct {
	source sheets.TransactionLister
	params forecast.Params
	cache  cache.Cache[forecast.Snapshot]

	group singleflight.Group
	// generation is bumped by Invalidate so builds started earlier do not
	// repopulate the cache.
	generation atomic.Uint64
}

func NewSnapshotService(source sheets.TransactionLister, params forecast.Params, c cache.Cache[forecast.Snapshot]) (*SnapshotService, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &SnapshotService{
		source: source,
		params: params,
		cache:  c,
	}, nil
}

// Params returns the parameters every snapshot is built with.
func (s *SnapshotService) Params() forecast.Params {
	return s.params
}

// Lookback is the number of days of history a snapshot reads, ending today.
func (s *SnapshotService) Lookback() int {
	return max(s.params.WindowDays, s.params.RecentDays+s.params.BaselineDays)
}

// Snapshot returns the snapshot for today, building it at most once per
// reference date until Invalidate is called.
func (s *SnapshotService) Snapshot(ctx context.Context, today core.Date) (forecast.Snapshot, error) {
	key := today.String()
	if s.cache != nil {
		if snap, ok := s.cache.Get(key); ok {
			slog.DebugContext(ctx, "Snapshot cache hit", "date", key)
			return snap, nil
		}
	}

	gen := s.generation.Load()
	v, err, shared := s.group.Do(fmt.Sprintf("%s#%d", key, gen), func() (interface{}, error) {
		snap, err := s.build(ctx, today)
		if err != nil {
			return forecast.Snapshot{}, err
		}
		if s.cache != nil && s.generation.Load() == gen {
			s.cache.Set(key, snap)
		}
		return snap, nil
	})
	if err != nil {
		return forecast.Snapshot{}, err
	}
	if shared {
		slog.DebugContext(ctx, "Joined in-flight snapshot build", "date", key)
	}
	return v.(forecast.Snapshot), nil
}

func (s *SnapshotService) build(ctx context.Context, today core.Date) (forecast.Snapshot, error) {
	from := today.AddDays(-(s.Lookback() - 1))
	txs, err := s.source.ListTransactions(ctx, from, today)
	if err != nil {
		return forecast.Snapshot{}, fmt.Errorf("list transactions: %w", err)
	}

	snap, err := forecast.Build(txs, s.params, today)
	if err != nil {
		return forecast.Snapshot{}, fmt.Errorf("build snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Built snapshot",
		"date", today.String(),
		"transactions", len(txs),
		"current_balance", snap.CurrentBalance().String(),
		"projected_balance", snap.ProjectedBalance().StringFixed(2))

	return snap, nil
}

// Invalidate drops every cached snapshot.
func (s *SnapshotService) Invalidate() {
	s.generation.Add(1)
	if s.cache != nil {
		s.cache.Clear()
	}
}
