package service

import (
	"context"
	"fmt"
	"time"

	"pondwatch"
	"pondwatch/internal/realtime"
	"pondwatch/internal/repository"
)

// SensorService ingests device samples: update the single latest-reading
// document, append to the history log, and push the sample to live views.
type SensorService struct {
	repo repository.SensorRepo
	hub  *realtime.Hub
}

func NewSensorService(repo repository.SensorRepo, hub *realtime.Hub) *SensorService {
	return &SensorService{repo: repo, hub: hub}
}

func (s *SensorService) Ingest(ctx context.Context, reading pondwatch.SensorReading) error {
	if reading.ObservedAt.IsZero() {
		reading.ObservedAt = time.Now().UTC()
	} else {
		reading.ObservedAt = reading.ObservedAt.UTC()
	}

	if err := s.repo.SaveLatest(ctx, reading); err != nil {
		return fmt.Errorf("ingest reading: %w", err)
	}
	// History append is best-effort relative to the latest-value doc; a
	// missing log row only thins the hourly averages.
	if err := s.repo.AppendReading(ctx, reading); err != nil {
		return fmt.Errorf("log reading: %w", err)
	}

	s.hub.Publish(realtime.TopicSensor, reading)
	return nil
}
