package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pondwatch"
)

type ControlSQLite struct {
	db *sql.DB
}

func NewControlSQLite(db *sql.DB) *ControlSQLite { return &ControlSQLite{db: db} }

var _ ControlRepo = (*ControlSQLite)(nil)

const (
	controlStateRowID = 1

	upsertControlStateSQL = `
		INSERT INTO control_state (id, mode, cutoff, heater, peltier, pump, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode=excluded.mode,
			cutoff=excluded.cutoff,
			heater=excluded.heater,
			peltier=excluded.peltier,
			pump=excluded.pump,
			updated_at=excluded.updated_at
	`

	selectControlStateSQL = `
		SELECT mode, cutoff, heater, peltier, pump, updated_at
		FROM control_state WHERE id=?
	`
)

// Save updates or inserts the control_state row (id always 1).
// Last writer wins; there is no conflict detection.
func (r *ControlSQLite) Save(ctx context.Context, s pondwatch.ControlState) error {
	ts := s.UpdatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	_, err := r.db.ExecContext(ctx, upsertControlStateSQL,
		controlStateRowID,
		s.Mode,
		s.Cutoff,
		s.Heater,
		s.Peltier,
		s.Pump,
		ts,
	)
	if err != nil {
		return fmt.Errorf("save control state: %w", err)
	}
	return nil
}

// Load fetches the control document. A zero UpdatedAt means the document
// has never been written; all actuators default to off.
func (r *ControlSQLite) Load(ctx context.Context) (pondwatch.ControlState, error) {
	row := r.db.QueryRowContext(ctx, selectControlStateSQL, controlStateRowID)

	var s pondwatch.ControlState
	if err := row.Scan(
		&s.Mode,
		&s.Cutoff,
		&s.Heater,
		&s.Peltier,
		&s.Pump,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pondwatch.ControlState{}, nil // no document yet
		}
		return pondwatch.ControlState{}, fmt.Errorf("load control state: %w", err)
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
