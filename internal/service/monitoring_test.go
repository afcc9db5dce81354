package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pondwatch"
)

func TestMonitoringLatest_EvaluatesReading(t *testing.T) {
	t.Parallel()

	repo := &fakeSensorRepo{latest: pondwatch.SensorReading{
		Temperature: 33, PH: 7, WaterLevel: 4,
		ObservedAt: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
	}}
	svc := NewMonitoringService(repo, DefaultBands())

	snap, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if snap.Temperature != pondwatch.StatusHigh {
		t.Errorf("temperature status: want high, got %q", snap.Temperature)
	}
	if snap.PH != pondwatch.StatusNormal {
		t.Errorf("ph status: want normal, got %q", snap.PH)
	}
	if snap.WaterLevel != pondwatch.StatusLow {
		t.Errorf("water status: want low, got %q", snap.WaterLevel)
	}
	// water level 4 cm is below the safety minimum
	if snap.Condition != pondwatch.ConditionDanger {
		t.Errorf("condition: want danger, got %q", snap.Condition)
	}
}

func TestMonitoringLatest_PropagatesRepoError(t *testing.T) {
	t.Parallel()

	repo := &fakeSensorRepo{latestErr: errors.New("db down")}
	svc := NewMonitoringService(repo, DefaultBands())

	if _, err := svc.Latest(context.Background()); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestHourlyAverages_GroupsByHourNewestFirst(t *testing.T) {
	t.Parallel()

	hour1 := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	hour2 := time.Date(2025, 8, 1, 11, 0, 0, 0, time.UTC)
	repo := &fakeSensorRepo{readings: []pondwatch.SensorReading{
		{Temperature: 24, PH: 6.8, WaterLevel: 14, ObservedAt: hour1.Add(5 * time.Minute)},
		{Temperature: 26, PH: 7.2, WaterLevel: 16, ObservedAt: hour1.Add(35 * time.Minute)},
		{Temperature: 30, PH: 7.0, WaterLevel: 20, ObservedAt: hour2.Add(10 * time.Minute)},
	}}
	svc := NewMonitoringService(repo, DefaultBands())

	got, err := svc.HourlyAverages(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("HourlyAverages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("buckets: want 2, got %d", len(got))
	}
	if !got[0].Hour.Equal(hour2) {
		t.Errorf("newest bucket first: want %v, got %v", hour2, got[0].Hour)
	}
	if got[0].Samples != 1 || got[1].Samples != 2 {
		t.Errorf("sample counts: %+v", got)
	}
	if got[1].Temperature != 25 {
		t.Errorf("hour1 temperature average: want 25, got %v", got[1].Temperature)
	}
	if got[1].WaterLevel != 15 {
		t.Errorf("hour1 water average: want 15, got %v", got[1].WaterLevel)
	}
}

func TestHourlyAverages_EmptyLog(t *testing.T) {
	t.Parallel()

	svc := NewMonitoringService(&fakeSensorRepo{}, DefaultBands())
	got, err := svc.HourlyAverages(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("HourlyAverages: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want no buckets, got %d", len(got))
	}
}
