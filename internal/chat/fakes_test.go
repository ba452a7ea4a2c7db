package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"futureself/internal/models"
)

type memStore struct {
	mu sync.Mutex

	profiles     map[string]models.UserProfile
	calibrations map[string]models.CalibrationRecord
	plans        map[string]models.Plan
	turns        map[models.Thread][]models.Turn

	// skipOwnerFilter makes GetPlan ignore ownership, to exercise the
	// service-side check.
	skipOwnerFilter bool
	readErr         error
	appendFailures  map[models.Role]int
	appendCalls     int
	clock           time.Time
}

func newMemStore() *memStore {
	return &memStore{
		profiles:       map[string]models.UserProfile{},
		calibrations:   map[string]models.CalibrationRecord{},
		plans:          map[string]models.Plan{},
		turns:          map[models.Thread][]models.Turn{},
		appendFailures: map[models.Role]int{},
		clock:          time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) GetProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) GetCalibration(_ context.Context, userID string) (*models.CalibrationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	c, ok := m.calibrations[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) GetPlan(_ context.Context, userID, planID string) (*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	p, ok := m.plans[planID]
	if !ok || (!m.skipOwnerFilter && p.UserID != userID) {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) RecentTurns(_ context.Context, thread models.Thread, limit int) ([]models.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	all := append([]models.Turn(nil), m.turns[thread]...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (m *memStore) AppendTurn(_ context.Context, thread models.Thread, turn *models.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendCalls++
	if m.appendFailures[turn.Role] != 0 {
		if m.appendFailures[turn.Role] > 0 {
			m.appendFailures[turn.Role]--
		}
		return errors.New("connection reset by peer")
	}
	m.clock = m.clock.Add(time.Second)
	turn.ID = int64(len(m.turns[thread]) + 1)
	turn.CreatedAt = m.clock
	m.turns[thread] = append(m.turns[thread], *turn)
	return nil
}

func (m *memStore) thread(t models.Thread) []models.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Turn(nil), m.turns[t]...)
}

type providerCall struct {
	system  string
	history []models.Message
	message string
}

type fakeProvider struct {
	mu     sync.Mutex
	calls  []providerCall
	reply  string
	err    error
	before func(ctx context.Context)
}

func (f *fakeProvider) Reply(ctx context.Context, system string, history []models.Message, message string) (string, error) {
	if f.before != nil {
		f.before(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, providerCall{system: system, history: history, message: message})
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeProvider) lastCall() providerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
