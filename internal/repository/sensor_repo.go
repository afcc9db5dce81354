package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pondwatch"
)

type SensorSQLite struct {
	db *sql.DB
}

func NewSensorSQLite(db *sql.DB) *SensorSQLite { return &SensorSQLite{db: db} }

var _ SensorRepo = (*SensorSQLite)(nil)

const (
	sensorStateRowID = 1

	upsertSensorStateSQL = `
		INSERT INTO sensor_state (id, temp_c, ph, water_level_cm, observed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			temp_c=excluded.temp_c,
			ph=excluded.ph,
			water_level_cm=excluded.water_level_cm,
			observed_at=excluded.observed_at
	`

	selectSensorStateSQL = `
		SELECT temp_c, ph, water_level_cm, observed_at
		FROM sensor_state WHERE id=?
	`

	insertReadingSQL = `
		INSERT INTO sensor_readings (temp_c, ph, water_level_cm, observed_at)
		VALUES (?, ?, ?, ?)
	`
)

// normalizeObservedAt persists UTC and fills a missing timestamp.
func normalizeObservedAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// SaveLatest updates or inserts the single current-reading row (id always 1).
func (r *SensorSQLite) SaveLatest(ctx context.Context, reading pondwatch.SensorReading) error {
	_, err := r.db.ExecContext(ctx, upsertSensorStateSQL,
		sensorStateRowID,
		reading.Temperature,
		reading.PH,
		reading.WaterLevel,
		normalizeObservedAt(reading.ObservedAt),
	)
	if err != nil {
		return fmt.Errorf("save latest reading: %w", err)
	}
	return nil
}

// LoadLatest fetches the current reading. A zero reading (ObservedAt zero)
// means no sample has arrived yet.
func (r *SensorSQLite) LoadLatest(ctx context.Context) (pondwatch.SensorReading, error) {
	row := r.db.QueryRowContext(ctx, selectSensorStateSQL, sensorStateRowID)

	var reading pondwatch.SensorReading
	if err := row.Scan(
		&reading.Temperature,
		&reading.PH,
		&reading.WaterLevel,
		&reading.ObservedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pondwatch.SensorReading{}, nil // no reading yet
		}
		return pondwatch.SensorReading{}, fmt.Errorf("load latest reading: %w", err)
	}
	reading.ObservedAt = reading.ObservedAt.UTC()
	return reading, nil
}

// AppendReading adds a sample to the append-only history log.
func (r *SensorSQLite) AppendReading(ctx context.Context, reading pondwatch.SensorReading) error {
	_, err := r.db.ExecContext(ctx, insertReadingSQL,
		reading.Temperature,
		reading.PH,
		reading.WaterLevel,
		normalizeObservedAt(reading.ObservedAt),
	)
	if err != nil {
		return fmt.Errorf("append reading: %w", err)
	}
	return nil
}

// ListReadings returns logged samples filtered by [from, to] (inclusive),
// ordered ascending by observation time.
func (r *SensorSQLite) ListReadings(ctx context.Context, from, to time.Time) ([]pondwatch.SensorReading, error) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "observed_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "observed_at <= ?")
		args = append(args, to.UTC())
	}

	q := `SELECT temp_c, ph, water_level_cm, observed_at FROM sensor_readings`
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY observed_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	out := make([]pondwatch.SensorReading, 0, 64)
	for rows.Next() {
		var reading pondwatch.SensorReading
		if err := rows.Scan(
			&reading.Temperature,
			&reading.PH,
			&reading.WaterLevel,
			&reading.ObservedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		reading.ObservedAt = reading.ObservedAt.UTC()
		out = append(out, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
