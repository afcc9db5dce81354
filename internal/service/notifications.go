package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"pondwatch"
	"pondwatch/internal/realtime"
	"pondwatch/internal/repository"
)

// NotificationView is the projection every mounted surface renders:
// the capped list newest-first plus the derived summary.
type NotificationView struct {
	Notifications []pondwatch.AlertRecord `json:"notifications"`
	Summary       NotificationSummary     `json:"summary"`
}

type NotificationSummary struct {
	Count           int                 `json:"count"`
	Limit           int                 `json:"limit"`
	Unread          int                 `json:"unread"`
	UnreadBadge     string              `json:"unread_badge"` // capped display, e.g. "99+"
	LatestCondition pondwatch.Condition `json:"latest_condition"`
}

const unreadBadgeCap = 99

type NotificationService struct {
	repo  repository.NotificationRepo
	hub   *realtime.Hub
	limit int
}

func NewNotificationService(repo repository.NotificationRepo, hub *realtime.Hub, limit int) *NotificationService {
	return &NotificationService{repo: repo, hub: hub, limit: limit}
}

// List loads the current projection. The store query already orders and
// caps, but the final presentation order is re-derived here because store
// limiting truncates without guaranteeing display order.
func (s *NotificationService) List(ctx context.Context) (NotificationView, error) {
	records, err := s.repo.List(ctx, s.limit)
	if err != nil {
		return NotificationView{}, fmt.Errorf("load notifications: %w", err)
	}

	// Skip records with an unusable sort key instead of failing the view.
	kept := records[:0]
	for _, rec := range records {
		if rec.CreatedAt <= 0 {
			continue
		}
		kept = append(kept, rec)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].CreatedAt > kept[j].CreatedAt
	})

	return NotificationView{
		Notifications: kept,
		Summary:       s.summarize(kept),
	}, nil
}

func (s *NotificationService) Summary(ctx context.Context) (NotificationSummary, error) {
	view, err := s.List(ctx)
	if err != nil {
		return NotificationSummary{}, err
	}
	return view.Summary, nil
}

func (s *NotificationService) summarize(list []pondwatch.AlertRecord) NotificationSummary {
	unread := 0
	for _, rec := range list {
		if !rec.IsRead {
			unread++
		}
	}
	badge := strconv.Itoa(unread)
	if unread > unreadBadgeCap {
		badge = "99+"
	}
	latest := pondwatch.ConditionNormal
	if len(list) > 0 && list[0].Condition != "" {
		latest = list[0].Condition
	}
	return NotificationSummary{
		Count:           len(list),
		Limit:           s.limit,
		Unread:          unread,
		UnreadBadge:     badge,
		LatestCondition: latest,
	}
}

// Create persists a new alert record, evicts over-cap records oldest
// first, and pushes the fresh projection to every subscribed surface.
func (s *NotificationService) Create(ctx context.Context, rec pondwatch.AlertRecord) error {
	if err := s.repo.Create(ctx, rec); err != nil {
		return err
	}
	if err := s.enforceLimit(ctx); err != nil {
		// Advisory records: an over-cap overshoot is tolerated.
		return s.broadcastAfter(ctx, err)
	}
	return s.broadcastAfter(ctx, nil)
}

func (s *NotificationService) enforceLimit(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if count <= s.limit {
		return nil
	}
	_, err = s.repo.DeleteOldest(ctx, count-s.limit)
	return err
}

// MarkRead flips one record to read. Read state never goes back.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return err
	}
	return s.broadcastAfter(ctx, nil)
}

// MarkAllRead is the open-popover read receipt: every currently-unread
// record becomes read in one bulk update.
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	if err := s.repo.MarkAllRead(ctx); err != nil {
		return err
	}
	return s.broadcastAfter(ctx, nil)
}

func (s *NotificationService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	return s.broadcastAfter(ctx, nil)
}

func (s *NotificationService) ClearAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	return s.broadcastAfter(ctx, nil)
}

// Broadcast publishes the current projection to the notifications topic.
// Surfaces converge on full snapshots, never deltas.
func (s *NotificationService) Broadcast(ctx context.Context) error {
	return s.broadcastAfter(ctx, nil)
}

// broadcastAfter publishes the fresh projection and returns prior, the
// error from the mutation that triggered the refresh.
func (s *NotificationService) broadcastAfter(ctx context.Context, prior error) error {
	view, err := s.List(ctx)
	if err != nil {
		if prior != nil {
			return prior
		}
		return err
	}
	s.hub.Publish(realtime.TopicNotifications, view)
	return prior
}
