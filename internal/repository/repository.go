package repository

import (
	"context"
	"database/sql"
	"time"

	"pondwatch"
	"pondwatch/internal/repository/db"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*pondwatch.User, error)
}

// NotificationRepo is the durable owner of alert records. Create is
// idempotent on ID; reads filter out malformed rows instead of failing.
type NotificationRepo interface {
	Create(ctx context.Context, rec pondwatch.AlertRecord) error
	List(ctx context.Context, limit int) ([]pondwatch.AlertRecord, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	DeleteByID(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	DeleteExpired(ctx context.Context, nowMilli int64) (int64, error)
	DeleteOldest(ctx context.Context, n int) (int64, error)
}

// SensorRepo holds the single latest reading plus the append-only
// reading log used for hourly aggregation.
type SensorRepo interface {
	SaveLatest(ctx context.Context, r pondwatch.SensorReading) error
	LoadLatest(ctx context.Context) (pondwatch.SensorReading, error)
	AppendReading(ctx context.Context, r pondwatch.SensorReading) error
	ListReadings(ctx context.Context, from, to time.Time) ([]pondwatch.SensorReading, error)
}

// ControlRepo holds the single actuator/mode document.
type ControlRepo interface {
	Save(ctx context.Context, s pondwatch.ControlState) error
	Load(ctx context.Context) (pondwatch.ControlState, error)
}

type Repository struct {
	Notifications NotificationRepo
	Sensor        SensorRepo
	Control       ControlRepo
	Auth          Authorization
}

func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		Notifications: NewNotificationSQLite(sqlDB),
		Sensor:        NewSensorSQLite(sqlDB),
		Control:       NewControlSQLite(sqlDB),
		Auth:          NewUserRepository(sqlDB),
	}
}

// InitDB opens the SQLite database and ensures the schema exists.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
