package service

import (
	"context"
	"time"

	"pondwatch"
	"pondwatch/internal/logger"
	"pondwatch/internal/realtime"
	"pondwatch/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Alerting evaluates readings against the threshold table and decides
// whether to persist a new alert. Run is the periodic evaluation loop.
type Alerting interface {
	MaybeEmit(ctx context.Context, reading pondwatch.SensorReading, now time.Time) (*pondwatch.AlertRecord, error)
	EmitMetricAlerts(ctx context.Context, reading pondwatch.SensorReading, now time.Time) ([]pondwatch.AlertRecord, error)
	Run(ctx context.Context, tick time.Duration)
}

// Notifications projects and mutates the persisted alert log.
type Notifications interface {
	List(ctx context.Context) (NotificationView, error)
	Summary(ctx context.Context) (NotificationSummary, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	ClearAll(ctx context.Context) error
}

// Retention enforces the TTL and count-cap policy over the alert log.
// Run sweeps once at start and then on every tick.
type Retention interface {
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	SweepOverCount(ctx context.Context) (int64, error)
	Run(ctx context.Context, tick time.Duration)
}

// Monitoring exposes read-only pond state: the latest reading with its
// per-metric statuses and the aggregated reading history.
type Monitoring interface {
	Latest(ctx context.Context) (StatusSnapshot, error)
	HourlyAverages(ctx context.Context, from, to time.Time) ([]pondwatch.HourlyAverage, error)
}

// Control reads and writes the actuator/mode document.
type Control interface {
	Get(ctx context.Context) (pondwatch.ControlState, error)
	Apply(ctx context.Context, upd ControlUpdate) (pondwatch.ControlState, error)
}

// Sensors ingests device samples.
type Sensors interface {
	Ingest(ctx context.Context, reading pondwatch.SensorReading) error
}

// Simulator runs the background loop that generates drifting readings
// when no real device feed is attached. Stop via context cancellation.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// DesktopSink delivers best-effort native notifications. Implementations
// return pondwatch.ErrPermissionDenied when delivery is not permitted;
// callers treat that as non-fatal.
type DesktopSink interface {
	Notify(title, body string) error
}

// Config carries the alerting policy knobs loaded from viper in main.
type Config struct {
	Bands             Bands
	RateLimit         time.Duration // min spacing between pondStatus alerts
	EmitMode          string        // EmitModePeriodic | EmitModeOnChange
	TTL               time.Duration // alert record time-to-live
	NotificationLimit int           // retention count cap
}

// DefaultConfig mirrors the observed dashboard policy: 10s cadence,
// repeat-every-tick emission, 24h TTL, 99-record cap.
func DefaultConfig() Config {
	return Config{
		Bands:             DefaultBands(),
		RateLimit:         10 * time.Second,
		EmitMode:          EmitModePeriodic,
		TTL:               24 * time.Hour,
		NotificationLimit: 99,
	}
}

type Service struct {
	Alerting
	Notifications
	Retention
	Monitoring
	Control
	Sensors
	Simulator
	Authorization
}

// NewService wires the repository layer, the fan-out hub and the desktop
// sink into concrete services.
func NewService(repos *repository.Repository, hub *realtime.Hub, sink DesktopSink, cfg Config, log *logger.Logger) *Service {
	notifications := NewNotificationService(repos.Notifications, hub, cfg.NotificationLimit)
	retention := NewRetentionService(repos.Notifications, notifications, cfg.NotificationLimit, log)
	alerts := NewAlertService(repos.Sensor, notifications, sink, cfg, log)
	sensors := NewSensorService(repos.Sensor, hub)
	return &Service{
		Alerting:      alerts,
		Notifications: notifications,
		Retention:     retention,
		Monitoring:    NewMonitoringService(repos.Sensor, cfg.Bands),
		Control:       NewControlService(repos.Control, hub, log),
		Sensors:       sensors,
		Simulator:     NewSimulatorService(sensors, repos.Sensor, log),
		Authorization: NewAuthService(repos.Auth),
	}
}
