package service

import (
	"context"
	"math/rand"
	"time"

	"pondwatch"
	"pondwatch/internal/logger"
	"pondwatch/internal/repository"
)

// ----------- Simulation constants -----------
const (
	simBaseTempC     = 26.0 // comfortable pond temperature °C
	simBasePH        = 7.0
	simBaseWaterCm   = 15.0 // water level cm
	simTempJitterC   = 0.6  // max per-tick drift °C
	simPHJitter      = 0.12
	simWaterJitterCm = 0.8
	simSpikeChance   = 0.02 // per-tick odds of an out-of-band excursion
	simSpikeTempC    = 12.0
	simPullToBase    = 0.05 // fraction pulled back toward base per tick
)

// SimulatorService stands in for the pond device in development: it
// drifts each metric with a small random walk around a healthy baseline
// and occasionally spikes the temperature out of band so alerting paths
// get exercised.
type SimulatorService struct {
	sensors    Sensors
	sensorRepo repository.SensorRepo
	log        *logger.Logger
	rng        *rand.Rand
}

// NewSimulatorService returns a simulator with defaults.
func NewSimulatorService(sensors Sensors, sensorRepo repository.SensorRepo, log *logger.Logger) *SimulatorService {
	return &SimulatorService{
		sensors:    sensors,
		sensorRepo: sensorRepo,
		log:        log,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run ticks at the given interval until ctx is canceled. Every tick
// produces one ingested reading.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			prev, err := s.sensorRepo.LoadLatest(ctx)
			if err != nil {
				s.log.Infow("simulator: load failed", "err", err)
				continue
			}
			next := s.next(prev, now.UTC())
			if err := s.sensors.Ingest(ctx, next); err != nil {
				s.log.Infow("simulator: ingest failed", "err", err)
			}
		}
	}
}

// next derives the following sample from the previous one.
func (s *SimulatorService) next(prev pondwatch.SensorReading, now time.Time) pondwatch.SensorReading {
	if prev.ObservedAt.IsZero() {
		return pondwatch.SensorReading{
			Temperature: simBaseTempC,
			PH:          simBasePH,
			WaterLevel:  simBaseWaterCm,
			ObservedAt:  now,
		}
	}

	next := pondwatch.SensorReading{
		Temperature: s.walk(prev.Temperature, simBaseTempC, simTempJitterC),
		PH:          s.walk(prev.PH, simBasePH, simPHJitter),
		WaterLevel:  s.walk(prev.WaterLevel, simBaseWaterCm, simWaterJitterCm),
		ObservedAt:  now,
	}
	if s.rng.Float64() < simSpikeChance {
		next.Temperature += simSpikeTempC
	}
	return next
}

// walk nudges v randomly within ±jitter while pulling it slightly back
// toward base so values don't wander away permanently.
func (s *SimulatorService) walk(v, base, jitter float64) float64 {
	v += (s.rng.Float64()*2 - 1) * jitter
	v += (base - v) * simPullToBase
	return v
}
