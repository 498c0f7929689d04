package store

import (
	"context"
	"errors"
	"time"

	"temp-monitor/internal/model"
)

// DefaultRecentLimit is applied when a caller asks for recent readings
// with a missing or non-positive limit.
const DefaultRecentLimit = 20

var (
	// ErrNotFound means the query matched no record.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey means a uniqueness constraint was violated.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrUnavailable means the backing medium could not be reached.
	ErrUnavailable = errors.New("storage unavailable")
)

// NewReading is the caller-supplied part of a reading. The store assigns
// id and timestamp.
type NewReading struct {
	DhtTemperature  *float64
	Lm35Temperature *float64
	LedLevel        int
}

// NewUser is the caller-supplied part of a user record.
type NewUser struct {
	Username string
	Password string
}

// Retention bounds how much reading history a store keeps. Zero values
// disable the respective cap.
type Retention struct {
	MaxCount int
	MaxAge   time.Duration
}

// Store persists readings and users. Implementations exist for sqlite
// (durable deployments) and memory (tests and non-durable deployments).
type Store interface {
	CreateUser(ctx context.Context, nu NewUser) (model.User, error)
	UserByID(ctx context.Context, id uint) (model.User, error)
	UserByUsername(ctx context.Context, username string) (model.User, error)

	CreateSensorReading(ctx context.Context, nr NewReading) (model.Reading, error)
	// RecentSensorReadings returns up to limit readings, newest first.
	RecentSensorReadings(ctx context.Context, limit int) ([]model.Reading, error)
	LatestSensorReading(ctx context.Context) (model.Reading, error)
	// PruneSensorReadings applies the retention caps and reports how many
	// rows were removed.
	PruneSensorReadings(ctx context.Context) (int64, error)

	Close() error
}

// NormalizeLimit maps non-positive limits to DefaultRecentLimit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	return limit
}
