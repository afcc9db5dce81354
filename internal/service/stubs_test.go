package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"pondwatch"
)

// fakeNotificationRepo is an in-memory NotificationRepo shared by the
// alerting, retention and notification projection tests.
type fakeNotificationRepo struct {
	mu        sync.Mutex
	recs      map[string]pondwatch.AlertRecord
	createErr error
	listErr   error
	countErr  error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{recs: make(map[string]pondwatch.AlertRecord)}
}

func (f *fakeNotificationRepo) sortedAsc() []pondwatch.AlertRecord {
	out := make([]pondwatch.AlertRecord, 0, len(f.recs))
	for _, r := range f.recs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out
}

func (f *fakeNotificationRepo) Create(_ context.Context, rec pondwatch.AlertRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.recs[rec.ID]; exists {
		return nil // idempotent on id
	}
	f.recs[rec.ID] = rec
	return nil
}

func (f *fakeNotificationRepo) List(_ context.Context, limit int) ([]pondwatch.AlertRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	asc := f.sortedAsc()
	out := make([]pondwatch.AlertRecord, 0, len(asc))
	for i := len(asc) - 1; i >= 0; i-- {
		if asc[i].CreatedAt <= 0 {
			continue
		}
		out = append(out, asc[i])
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.recs[id]; ok {
		rec.IsRead = true
		f.recs[id] = rec
	}
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, rec := range f.recs {
		rec.IsRead = true
		f.recs[id] = rec
	}
	return nil
}

func (f *fakeNotificationRepo) DeleteByID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.recs, id)
	return nil
}

func (f *fakeNotificationRepo) DeleteAll(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = make(map[string]pondwatch.AlertRecord)
	return nil
}

func (f *fakeNotificationRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.recs), nil
}

func (f *fakeNotificationRepo) DeleteExpired(_ context.Context, nowMilli int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, rec := range f.recs {
		if rec.Expiry < nowMilli {
			delete(f.recs, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationRepo) DeleteOldest(_ context.Context, n int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	asc := f.sortedAsc()
	if n > len(asc) {
		n = len(asc)
	}
	for i := 0; i < n; i++ {
		delete(f.recs, asc[i].ID)
	}
	return int64(n), nil
}

// all returns records newest first, for assertions.
func (f *fakeNotificationRepo) all() []pondwatch.AlertRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	asc := f.sortedAsc()
	for i, j := 0, len(asc)-1; i < j; i, j = i+1, j-1 {
		asc[i], asc[j] = asc[j], asc[i]
	}
	return asc
}

// fakeSensorRepo satisfies repository.SensorRepo for services that only
// need the latest reading or a canned history.
type fakeSensorRepo struct {
	latest    pondwatch.SensorReading
	latestErr error
	readings  []pondwatch.SensorReading
	listErr   error
	appended  []pondwatch.SensorReading
	saved     []pondwatch.SensorReading
}

func (f *fakeSensorRepo) SaveLatest(_ context.Context, r pondwatch.SensorReading) error {
	f.saved = append(f.saved, r)
	f.latest = r
	return nil
}

func (f *fakeSensorRepo) LoadLatest(_ context.Context) (pondwatch.SensorReading, error) {
	return f.latest, f.latestErr
}

func (f *fakeSensorRepo) AppendReading(_ context.Context, r pondwatch.SensorReading) error {
	f.appended = append(f.appended, r)
	return nil
}

func (f *fakeSensorRepo) ListReadings(_ context.Context, from, to time.Time) ([]pondwatch.SensorReading, error) {
	return f.readings, f.listErr
}

// fakeControlRepo satisfies repository.ControlRepo with togglable errors.
type fakeControlRepo struct {
	state   pondwatch.ControlState
	loadErr error
	saveErr error
	saves   []pondwatch.ControlState
}

func (f *fakeControlRepo) Save(_ context.Context, s pondwatch.ControlState) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves = append(f.saves, s)
	f.state = s
	return nil
}

func (f *fakeControlRepo) Load(_ context.Context) (pondwatch.ControlState, error) {
	return f.state, f.loadErr
}

// recordingSink captures desktop notifications.
type recordingSink struct {
	mu      sync.Mutex
	err     error
	notices []DesktopNotice
}

func (s *recordingSink) Notify(title, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.notices = append(s.notices, DesktopNotice{Title: title, Body: body})
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notices)
}
