package service

import (
	"context"
	"sort"
	"time"

	"pondwatch"
	"pondwatch/internal/repository"
)

// StatusSnapshot is the dashboard's headline view: the latest reading,
// each metric labeled against its display band, and the aggregate
// condition.
type StatusSnapshot struct {
	Reading     pondwatch.SensorReading `json:"reading"`
	Temperature pondwatch.MetricStatus  `json:"temperature_status"`
	PH          pondwatch.MetricStatus  `json:"ph_status"`
	WaterLevel  pondwatch.MetricStatus  `json:"water_level_status"`
	Condition   pondwatch.Condition     `json:"condition"`
}

type MonitoringService struct {
	sensorRepo repository.SensorRepo
	bands      Bands
}

func NewMonitoringService(sensorRepo repository.SensorRepo, bands Bands) *MonitoringService {
	return &MonitoringService{sensorRepo: sensorRepo, bands: bands}
}

// Latest returns the evaluated current reading. Before the first sample
// arrives, the snapshot carries a zero reading labeled low/normal per the
// bands, with ObservedAt zero signalling "no data yet" to clients.
func (s *MonitoringService) Latest(ctx context.Context) (StatusSnapshot, error) {
	reading, err := s.sensorRepo.LoadLatest(ctx)
	if err != nil {
		return StatusSnapshot{}, err
	}
	return s.Evaluate(reading), nil
}

// Evaluate labels a reading without touching the store.
func (s *MonitoringService) Evaluate(reading pondwatch.SensorReading) StatusSnapshot {
	return StatusSnapshot{
		Reading:     reading,
		Temperature: s.bands.StatusOf(pondwatch.MetricTemperature, reading.Temperature),
		PH:          s.bands.StatusOf(pondwatch.MetricPH, reading.PH),
		WaterLevel:  s.bands.StatusOf(pondwatch.MetricWaterLevel, reading.WaterLevel),
		Condition:   s.bands.ConditionFor(reading),
	}
}

// HourlyAverages groups the reading log into hour buckets and averages
// each metric, newest hour first.
func (s *MonitoringService) HourlyAverages(ctx context.Context, from, to time.Time) ([]pondwatch.HourlyAverage, error) {
	readings, err := s.sensorRepo.ListReadings(ctx, from, to)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		temp, ph, water float64
		n               int
	}
	buckets := make(map[time.Time]*bucket)
	for _, r := range readings {
		hour := r.ObservedAt.UTC().Truncate(time.Hour)
		b := buckets[hour]
		if b == nil {
			b = &bucket{}
			buckets[hour] = b
		}
		b.temp += r.Temperature
		b.ph += r.PH
		b.water += r.WaterLevel
		b.n++
	}

	out := make([]pondwatch.HourlyAverage, 0, len(buckets))
	for hour, b := range buckets {
		n := float64(b.n)
		out = append(out, pondwatch.HourlyAverage{
			Hour:        hour,
			Temperature: b.temp / n,
			PH:          b.ph / n,
			WaterLevel:  b.water / n,
			Samples:     b.n,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour.After(out[j].Hour) })
	return out, nil
}
