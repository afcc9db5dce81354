package service

import (
	"context"
	"fmt"
	"time"

	"pondwatch"
	"pondwatch/internal/logger"
	"pondwatch/internal/realtime"
	"pondwatch/internal/repository"
)

// ControlUpdate carries partial toggles; nil fields are left untouched.
type ControlUpdate struct {
	Mode    *bool `json:"mode,omitempty"`
	Cutoff  *bool `json:"cutoff,omitempty"`
	Heater  *bool `json:"heater,omitempty"`
	Peltier *bool `json:"peltier,omitempty"`
	Pump    *bool `json:"pump,omitempty"`
}

func (u ControlUpdate) empty() bool {
	return u.Mode == nil && u.Cutoff == nil && u.Heater == nil && u.Peltier == nil && u.Pump == nil
}

// ControlService reads and writes the actuator/mode document. Writes are
// optimistic: the new state is broadcast immediately, and if the persist
// fails the prior state is re-broadcast so no surface stays diverged.
type ControlService struct {
	repo repository.ControlRepo
	hub  *realtime.Hub
	log  *logger.Logger
}

func NewControlService(repo repository.ControlRepo, hub *realtime.Hub, log *logger.Logger) *ControlService {
	return &ControlService{repo: repo, hub: hub, log: log}
}

func (s *ControlService) Get(ctx context.Context) (pondwatch.ControlState, error) {
	return s.repo.Load(ctx)
}

// Apply merges the update into the current document and persists it.
// Pending -> Confirmed on success; Pending -> Failed(revert) on a write
// error, where the revert is a re-broadcast of the prior state.
func (s *ControlService) Apply(ctx context.Context, upd ControlUpdate) (pondwatch.ControlState, error) {
	if upd.empty() {
		return pondwatch.ControlState{}, fmt.Errorf("control update: no fields set")
	}

	prev, err := s.repo.Load(ctx)
	if err != nil {
		return pondwatch.ControlState{}, fmt.Errorf("load control state: %w", err)
	}

	next := prev
	if upd.Mode != nil {
		next.Mode = *upd.Mode
	}
	if upd.Cutoff != nil {
		next.Cutoff = *upd.Cutoff
	}
	if upd.Heater != nil {
		next.Heater = *upd.Heater
	}
	if upd.Peltier != nil {
		next.Peltier = *upd.Peltier
	}
	if upd.Pump != nil {
		next.Pump = *upd.Pump
	}
	next.UpdatedAt = time.Now().UTC()

	// Optimistic: surfaces see the toggle before the write confirms.
	s.hub.Publish(realtime.TopicControl, next)

	if err := s.repo.Save(ctx, next); err != nil {
		s.log.Infow("control write failed, reverting", "err", err)
		s.hub.Publish(realtime.TopicControl, prev)
		return prev, fmt.Errorf("save control state: %w", err)
	}
	return next, nil
}
