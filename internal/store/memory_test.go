package store

import (
	"context"
	"testing"
	"time"

	"temp-monitor/internal/model"
)

func TestMemoryReadingIDsStrictlyIncrease(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory(Retention{})

	var last uint
	for i := 0; i < 10; i++ {
		r, err := m.CreateSensorReading(ctx, NewReading{LedLevel: i})
		if err != nil {
			t.Fatalf("CreateSensorReading failed: %v", err)
		}
		if r.ID <= last {
			t.Fatalf("expected id > %d, got %d", last, r.ID)
		}
		last = r.ID
	}
}

func TestMemoryLatestSensorReading(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory(Retention{})

	if _, err := m.LatestSensorReading(ctx); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	var want uint
	for i := 0; i < 5; i++ {
		r, err := m.CreateSensorReading(ctx, NewReading{LedLevel: i})
		if err != nil {
			t.Fatalf("CreateSensorReading failed: %v", err)
		}
		want = r.ID
	}

	got, err := m.LatestSensorReading(ctx)
	if err != nil {
		t.Fatalf("LatestSensorReading failed: %v", err)
	}
	if got.ID != want {
		t.Fatalf("expected latest id %d, got %d", want, got.ID)
	}
	if got.LedLevel != 4 {
		t.Fatalf("expected led level 4, got %d", got.LedLevel)
	}
}

func TestMemoryRecentSensorReadings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory(Retention{})

	for i := 0; i < 25; i++ {
		if _, err := m.CreateSensorReading(ctx, NewReading{}); err != nil {
			t.Fatalf("CreateSensorReading failed: %v", err)
		}
	}

	rows, err := m.RecentSensorReadings(ctx, 5)
	if err != nil {
		t.Fatalf("RecentSensorReadings failed: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		if cur.Timestamp.After(prev.Timestamp) {
			t.Fatalf("rows not sorted newest-first at index %d", i)
		}
	}
	if rows[0].ID != 25 {
		t.Fatalf("expected newest row id 25, got %d", rows[0].ID)
	}

	// non-positive limit falls back to the default of 20
	rows, err = m.RecentSensorReadings(ctx, 0)
	if err != nil {
		t.Fatalf("RecentSensorReadings failed: %v", err)
	}
	if len(rows) != DefaultRecentLimit {
		t.Fatalf("expected %d rows for limit 0, got %d", DefaultRecentLimit, len(rows))
	}

	// limit larger than the stored count returns everything
	rows, err = m.RecentSensorReadings(ctx, 100)
	if err != nil {
		t.Fatalf("RecentSensorReadings failed: %v", err)
	}
	if len(rows) != 25 {
		t.Fatalf("expected 25 rows, got %d", len(rows))
	}
}

func TestMemoryRetentionByCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory(Retention{MaxCount: 10})

	for i := 0; i < 30; i++ {
		if _, err := m.CreateSensorReading(ctx, NewReading{}); err != nil {
			t.Fatalf("CreateSensorReading failed: %v", err)
		}
	}

	rows, err := m.RecentSensorReadings(ctx, 100)
	if err != nil {
		t.Fatalf("RecentSensorReadings failed: %v", err)
	}
	if len(rows) != 10 {
		t.Fatalf("expected retention cap of 10, got %d rows", len(rows))
	}
	// the newest readings survive
	if rows[0].ID != 30 {
		t.Fatalf("expected newest id 30, got %d", rows[0].ID)
	}

	// ids keep increasing past pruned history
	r, err := m.CreateSensorReading(ctx, NewReading{})
	if err != nil {
		t.Fatalf("CreateSensorReading failed: %v", err)
	}
	if r.ID != 31 {
		t.Fatalf("expected id 31 after pruning, got %d", r.ID)
	}
}

func TestMemoryRetentionByAge(t *testing.T) {
	t.Parallel()
	m := NewMemory(Retention{MaxAge: time.Hour})

	old := time.Now().UTC().Add(-2 * time.Hour)
	m.readings = append(m.readings,
		readingAt(1, old),
		readingAt(2, time.Now().UTC()),
	)
	m.nextReadingID = 2

	removed, err := m.PruneSensorReadings(context.Background())
	if err != nil {
		t.Fatalf("PruneSensorReadings failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	rows, _ := m.RecentSensorReadings(context.Background(), 10)
	if len(rows) != 1 || rows[0].ID != 2 {
		t.Fatalf("expected only the fresh reading to survive, got %v", rows)
	}
}

func readingAt(id uint, ts time.Time) model.Reading {
	return model.Reading{ID: id, Timestamp: ts}
}

func TestMemoryUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory(Retention{})

	u, err := m.CreateUser(ctx, NewUser{Username: "alice", Password: "secret"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("expected assigned user id")
	}

	if _, err := m.CreateUser(ctx, NewUser{Username: "alice", Password: "other"}); err != ErrDuplicateKey {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	got, err := m.UserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("UserByID failed: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("expected username alice, got %q", got.Username)
	}

	got, err = m.UserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("UserByUsername failed: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected user id %d, got %d", u.ID, got.ID)
	}

	if _, err := m.UserByUsername(ctx, "bob"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := m.UserByID(ctx, 999); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
