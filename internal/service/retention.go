package service

import (
	"context"
	"time"

	"pondwatch/internal/logger"
	"pondwatch/internal/metrics"
	"pondwatch/internal/repository"
)

// RetentionService enforces the two retention rules over the alert log:
// records past their 24h expiry are deleted, and the collection is kept
// at or under the count cap by evicting oldest-first. Both sweeps are
// read-then-delete without a transaction; creations racing a sweep can
// briefly overshoot the cap, which is acceptable for advisory records.
type RetentionService struct {
	repo     repository.NotificationRepo
	notifier *NotificationService
	limit    int
	log      *logger.Logger
}

func NewRetentionService(repo repository.NotificationRepo, notifier *NotificationService, limit int, log *logger.Logger) *RetentionService {
	return &RetentionService{repo: repo, notifier: notifier, limit: limit, log: log}
}

// SweepExpired deletes every record whose expiry is before now. Calling
// it again with no writes in between deletes nothing.
func (s *RetentionService) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	deleted, err := s.repo.DeleteExpired(ctx, now.UnixMilli())
	if err != nil {
		metrics.StoreErrors.WithLabelValues("sweep_expired").Inc()
		return 0, err
	}
	if deleted > 0 {
		metrics.SweepDeletions.WithLabelValues("expired").Add(float64(deleted))
		if err := s.notifier.Broadcast(ctx); err != nil {
			s.log.Infow("post-sweep broadcast failed", "err", err)
		}
	}
	return deleted, nil
}

// SweepOverCount trims the collection to the cap, oldest first by
// created_at. The count is a snapshot taken at sweep start.
func (s *RetentionService) SweepOverCount(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("sweep_count").Inc()
		return 0, err
	}
	if count <= s.limit {
		return 0, nil
	}
	deleted, err := s.repo.DeleteOldest(ctx, count-s.limit)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("sweep_over_count").Inc()
		return 0, err
	}
	if deleted > 0 {
		metrics.SweepDeletions.WithLabelValues("over_cap").Add(float64(deleted))
		if err := s.notifier.Broadcast(ctx); err != nil {
			s.log.Infow("post-sweep broadcast failed", "err", err)
		}
	}
	return deleted, nil
}

// Run sweeps once immediately and then on every tick until ctx is
// canceled. Errors are logged, never fatal.
func (s *RetentionService) Run(ctx context.Context, tick time.Duration) {
	s.sweep(ctx, time.Now().UTC())

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.sweep(ctx, now.UTC())
		}
	}
}

func (s *RetentionService) sweep(ctx context.Context, now time.Time) {
	if expired, err := s.SweepExpired(ctx, now); err != nil {
		s.log.Infow("expiry sweep failed", "err", err)
	} else if expired > 0 {
		s.log.Infow("expiry sweep", "deleted", expired)
	}
	if evicted, err := s.SweepOverCount(ctx); err != nil {
		s.log.Infow("over-cap sweep failed", "err", err)
	} else if evicted > 0 {
		s.log.Infow("over-cap sweep", "deleted", evicted)
	}
}
