package localstore

import (
	"context"
	"log/slog"
	"math"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"hrmsync/internal/platform/kv"
)

// DefaultQuotaBytes is the capacity browsers commonly grant an origin.
const DefaultQuotaBytes int64 = 5 * 1024 * 1024

const quotaCacheKey = "quota"

type Usage struct {
	UsedMB      float64 `json:"usedMB"`
	TotalMB     float64 `json:"totalMB"`
	AvailableMB float64 `json:"availableMB"`
	PercentUsed float64 `json:"percentUsed"`
}

// Usage reports how much of the storage quota the current keys occupy. The
// figures are advisory: the backend enforces the real limit.
func (s *Store) Usage(ctx context.Context) (Usage, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return Usage{}, err
	}
	var used int64
	for _, key := range keys {
		value, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return Usage{}, err
		}
		if !ok {
			continue
		}
		used += kv.EntryBytes(key, value)
	}
	return computeUsage(used, s.quota()), nil
}

func computeUsage(used, total int64) Usage {
	const mb = 1024 * 1024
	u := Usage{
		UsedMB:  round2(float64(used) / mb),
		TotalMB: round2(float64(total) / mb),
	}
	u.AvailableMB = round2(math.Max(float64(total-used)/mb, 0))
	if total > 0 {
		u.PercentUsed = round2(float64(used) / float64(total) * 100)
	}
	return u
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *Store) quota() int64 {
	if v, ok := s.quotas.Get(quotaCacheKey); ok {
		if q, ok := v.(int64); ok && q > 0 {
			return q
		}
	}
	return s.opts.DefaultQuotaBytes
}

// RefreshQuota asks the backend for its capacity and caches the answer.
// Backends that cannot estimate leave the default in place.
func (s *Store) RefreshQuota(ctx context.Context) error {
	estimator, ok := s.kv.(kv.QuotaEstimator)
	if !ok {
		return nil
	}
	q, err := estimator.EstimateQuota(ctx)
	if err != nil {
		return err
	}
	if q > 0 {
		s.quotas.Set(quotaCacheKey, q, gocache.DefaultExpiration)
	}
	return nil
}

// StartQuotaRefresher refreshes the quota estimate now and then every
// interval until ctx is done.
func (s *Store) StartQuotaRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.opts.QuotaTTL
	}
	if err := s.RefreshQuota(ctx); err != nil {
		slog.Warn("quota estimate failed", "err", err)
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.RefreshQuota(ctx); err != nil {
					slog.Warn("quota estimate failed", "err", err)
				}
			}
		}
	}()
}
