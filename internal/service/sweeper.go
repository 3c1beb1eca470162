package service

import (
	"context"
	"log"
	"time"

	"sharebite/internal/metrics"
	"sharebite/internal/repository"
)

// Sweeper periodically removes available listings whose freshness deadline
// has passed. Reserved and completed listings are left for their donors and
// collectors to see.
type Sweeper struct {
	listingRepo repository.ListingRepository
	interval    time.Duration
	metrics     *metrics.Metrics
}

// NewSweeper creates a new expiry sweeper.
func NewSweeper(listingRepo repository.ListingRepository, interval time.Duration, m *metrics.Metrics) *Sweeper {
	return &Sweeper{
		listingRepo: listingRepo,
		interval:    interval,
		metrics:     m,
	}
}

// Run sweeps on a ticker until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				log.Printf("expiry sweep: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// SweepOnce removes expired available listings and returns how many went.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	swept, err := s.listingRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		log.Printf("expiry sweep removed %d listing(s)", swept)
		s.metrics.ObserveSwept(swept)
	}
	return swept, nil
}
