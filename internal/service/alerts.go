package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pondwatch"
	"pondwatch/internal/logger"
	"pondwatch/internal/metrics"
	"pondwatch/internal/repository"

	"github.com/google/uuid"
)

// Emission policies for pondStatus alerts. Periodic re-emits the current
// condition on every evaluation that clears the rate limit, matching the
// observed dashboard behavior; on-change only emits when the condition
// differs from the previously emitted one.
const (
	EmitModePeriodic = "periodic"
	EmitModeOnChange = "on-change"
)

const (
	alertTitlePond   = "Peringatan Kolam"
	recordTimeLayout = "02/01/2006 15:04:05"
)

func pondStatusMessage(cond pondwatch.Condition) string {
	switch cond {
	case pondwatch.ConditionDanger:
		return "Status Kolam: KRITIS"
	case pondwatch.ConditionWarning:
		return "Status Kolam: Perlu Perhatian"
	default:
		return "Status Kolam: Normal"
	}
}

func metricStatusLabel(st pondwatch.MetricStatus) string {
	switch st {
	case pondwatch.StatusLow:
		return "Rendah"
	case pondwatch.StatusHigh:
		return "Tinggi"
	default:
		return "Normal"
	}
}

func conditionLevel(cond pondwatch.Condition) float64 {
	switch cond {
	case pondwatch.ConditionDanger:
		return 2
	case pondwatch.ConditionWarning:
		return 1
	default:
		return 0
	}
}

// AlertService decides when a reading becomes a persisted alert. Its only
// durable-adjacent state is the last pondStatus emission time plus the
// last seen condition/statuses used by the on-change policies.
type AlertService struct {
	sensorRepo repository.SensorRepo
	notifier   *NotificationService
	sink       DesktopSink
	cfg        Config
	log        *logger.Logger

	mu             sync.Mutex
	lastEmittedAt  time.Time
	lastCondition  pondwatch.Condition
	lastMetricStat map[pondwatch.Metric]pondwatch.MetricStatus
}

func NewAlertService(sensorRepo repository.SensorRepo, notifier *NotificationService, sink DesktopSink, cfg Config, log *logger.Logger) *AlertService {
	return &AlertService{
		sensorRepo:     sensorRepo,
		notifier:       notifier,
		sink:           sink,
		cfg:            cfg,
		log:            log,
		lastMetricStat: make(map[pondwatch.Metric]pondwatch.MetricStatus),
	}
}

// newRecord builds an alert with a unique id and the fixed TTL.
func (s *AlertService) newRecord(msg, typ string, cond pondwatch.Condition, now time.Time) pondwatch.AlertRecord {
	createdAt := now.UnixMilli()
	return pondwatch.AlertRecord{
		ID:        uuid.NewString(),
		Message:   msg,
		Type:      typ,
		Timestamp: now.Format(recordTimeLayout),
		CreatedAt: createdAt,
		Expiry:    createdAt + s.cfg.TTL.Milliseconds(),
		IsRead:    false,
		Condition: cond,
	}
}

// MaybeEmit evaluates the aggregate condition and persists a pondStatus
// alert unless the rate limit (or the on-change policy) suppresses it.
// Returns nil without error when suppressed.
func (s *AlertService) MaybeEmit(ctx context.Context, reading pondwatch.SensorReading, now time.Time) (*pondwatch.AlertRecord, error) {
	cond := s.cfg.Bands.ConditionFor(reading)
	metrics.PondCondition.Set(conditionLevel(cond))

	s.mu.Lock()
	if !s.lastEmittedAt.IsZero() && now.Sub(s.lastEmittedAt) < s.cfg.RateLimit {
		s.mu.Unlock()
		metrics.AlertsSuppressed.WithLabelValues("rate_limited").Inc()
		return nil, nil
	}
	if s.cfg.EmitMode == EmitModeOnChange && cond == s.lastCondition && !s.lastEmittedAt.IsZero() {
		s.mu.Unlock()
		metrics.AlertsSuppressed.WithLabelValues("unchanged").Inc()
		return nil, nil
	}
	// Claim the slot before the write so concurrent evaluations do not
	// double-emit; a failed write rolls the claim back.
	prevAt, prevCond := s.lastEmittedAt, s.lastCondition
	s.lastEmittedAt = now
	s.lastCondition = cond
	s.mu.Unlock()

	rec := s.newRecord(pondStatusMessage(cond), pondwatch.AlertTypePondStatus, cond, now)
	if err := s.notifier.Create(ctx, rec); err != nil {
		s.mu.Lock()
		s.lastEmittedAt, s.lastCondition = prevAt, prevCond
		s.mu.Unlock()
		metrics.StoreErrors.WithLabelValues("create").Inc()
		return nil, fmt.Errorf("persist pond status alert: %w", err)
	}

	metrics.AlertsEmitted.WithLabelValues(rec.Type, string(cond)).Inc()
	s.notifyDesktop(alertTitlePond, rec.Message)
	return &rec, nil
}

// EmitMetricAlerts is the secondary, per-metric channel: edge-triggered
// on display-band transitions, independent of the pondStatus rate limit.
func (s *AlertService) EmitMetricAlerts(ctx context.Context, reading pondwatch.SensorReading, now time.Time) ([]pondwatch.AlertRecord, error) {
	type metricValue struct {
		metric pondwatch.Metric
		typ    string
		label  string
		value  float64
		unit   string
		safety Band
	}
	checks := []metricValue{
		{pondwatch.MetricTemperature, pondwatch.AlertTypeTemperature, "Suhu", reading.Temperature, "°C", s.cfg.Bands.Temperature.Safety},
		{pondwatch.MetricPH, pondwatch.AlertTypePH, "pH", reading.PH, "", s.cfg.Bands.PH.Safety},
		{pondwatch.MetricWaterLevel, pondwatch.AlertTypeWaterLevel, "Tinggi Air", reading.WaterLevel, " cm", s.cfg.Bands.WaterLevel.Safety},
	}

	var emitted []pondwatch.AlertRecord
	var errs error
	for _, chk := range checks {
		status := s.cfg.Bands.StatusOf(chk.metric, chk.value)
		metrics.SensorValue.WithLabelValues(string(chk.metric)).Set(chk.value)

		s.mu.Lock()
		prev := s.lastMetricStat[chk.metric]
		if prev == "" {
			prev = pondwatch.StatusNormal
		}
		unchanged := status == prev
		s.lastMetricStat[chk.metric] = status
		s.mu.Unlock()

		if status == pondwatch.StatusNormal || unchanged {
			continue
		}

		cond := pondwatch.ConditionWarning
		if !chk.safety.Contains(chk.value) {
			cond = pondwatch.ConditionDanger
		}
		msg := fmt.Sprintf("%s: %s (%.1f%s)", chk.label, metricStatusLabel(status), chk.value, chk.unit)
		rec := s.newRecord(msg, chk.typ, cond, now)
		if err := s.notifier.Create(ctx, rec); err != nil {
			metrics.StoreErrors.WithLabelValues("create").Inc()
			errs = errors.Join(errs, fmt.Errorf("persist %s alert: %w", chk.typ, err))
			continue
		}
		metrics.AlertsEmitted.WithLabelValues(rec.Type, string(cond)).Inc()
		s.notifyDesktop("Peringatan "+chk.typ, msg)
		emitted = append(emitted, rec)
	}
	return emitted, errs
}

// notifyDesktop fires the best-effort native notification. Permission
// denial only suppresses the native alert; the in-app list already has
// the record.
func (s *AlertService) notifyDesktop(title, body string) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Notify(title, body); err != nil {
		if errors.Is(err, pondwatch.ErrPermissionDenied) {
			s.log.Debugw("desktop notification suppressed", "title", title)
			return
		}
		s.log.Infow("desktop notification failed", "err", err)
	}
}

// Run polls the latest reading on every tick and feeds both alert
// channels. Store failures are logged and the loop continues; a stale
// list beats a crashed one.
func (s *AlertService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			reading, err := s.sensorRepo.LoadLatest(ctx)
			if err != nil {
				metrics.StoreErrors.WithLabelValues("load_latest").Inc()
				s.log.Infow("alert poll: sensor read failed", "err", err)
				continue
			}
			if reading.ObservedAt.IsZero() {
				continue // no sample yet
			}
			if _, err := s.MaybeEmit(ctx, reading, now.UTC()); err != nil {
				s.log.Infow("alert poll: pond status emit failed", "err", err)
			}
			if _, err := s.EmitMetricAlerts(ctx, reading, now.UTC()); err != nil {
				s.log.Infow("alert poll: metric emit failed", "err", err)
			}
		}
	}
}
