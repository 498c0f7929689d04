package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"temp-monitor/internal/model"
)

// Memory is an in-process Store for tests and non-durable deployments.
// All access is serialized by one mutex; ids are assigned from a
// monotonically increasing counter and never reused.
type Memory struct {
	mu        sync.Mutex
	retention Retention

	nextReadingID uint
	readings      []model.Reading

	nextUserID uint
	users      []model.User
}

// NewMemory creates an empty memory store with the given retention caps.
func NewMemory(ret Retention) *Memory {
	return &Memory{retention: ret}
}

func (m *Memory) CreateUser(_ context.Context, nu NewUser) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == nu.Username {
			return model.User{}, ErrDuplicateKey
		}
	}
	m.nextUserID++
	u := model.User{ID: m.nextUserID, Username: nu.Username, Password: nu.Password}
	m.users = append(m.users, u)
	return u, nil
}

func (m *Memory) UserByID(_ context.Context, id uint) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (m *Memory) UserByUsername(_ context.Context, username string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (m *Memory) CreateSensorReading(_ context.Context, nr NewReading) (model.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextReadingID++
	r := model.Reading{
		ID:              m.nextReadingID,
		DhtTemperature:  nr.DhtTemperature,
		Lm35Temperature: nr.Lm35Temperature,
		LedLevel:        nr.LedLevel,
		Timestamp:       time.Now().UTC(),
	}
	m.readings = append(m.readings, r)
	m.pruneLocked(time.Now())
	return r, nil
}

func (m *Memory) RecentSensorReadings(_ context.Context, limit int) ([]model.Reading, error) {
	limit = NormalizeLimit(limit)

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Reading, len(m.readings))
	copy(out, m.readings)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) LatestSensorReading(_ context.Context) (model.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.readings) == 0 {
		return model.Reading{}, ErrNotFound
	}
	latest := m.readings[0]
	for _, r := range m.readings[1:] {
		if r.Timestamp.After(latest.Timestamp) ||
			(r.Timestamp.Equal(latest.Timestamp) && r.ID > latest.ID) {
			latest = r
		}
	}
	return latest, nil
}

func (m *Memory) PruneSensorReadings(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pruneLocked(time.Now()), nil
}

func (m *Memory) pruneLocked(now time.Time) int64 {
	before := len(m.readings)

	if age := m.retention.MaxAge; age > 0 {
		cutoff := now.Add(-age)
		kept := m.readings[:0]
		for _, r := range m.readings {
			if !r.Timestamp.Before(cutoff) {
				kept = append(kept, r)
			}
		}
		m.readings = kept
	}
	if max := m.retention.MaxCount; max > 0 && len(m.readings) > max {
		// readings are held in insertion order, so the oldest sit in front
		m.readings = append(m.readings[:0], m.readings[len(m.readings)-max:]...)
	}
	return int64(before - len(m.readings))
}

func (m *Memory) Close() error { return nil }
