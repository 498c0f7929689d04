package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"temp-monitor/internal/model"
)

// SQLite is the durable Store backed by a GORM SQLite connection.
type SQLite struct {
	orm       *gorm.DB
	retention Retention
}

// OpenSQLite opens the database at path, runs migrations, and returns
// the store.
func OpenSQLite(path string, ret Retention) (*SQLite, error) {
	g, err := openORM(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := migrateORM(g); err != nil {
		_ = closeORM(g)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLite{orm: g, retention: ret}, nil
}

func (s *SQLite) CreateUser(ctx context.Context, nu NewUser) (model.User, error) {
	u := model.User{Username: nu.Username, Password: nu.Password}
	if err := s.orm.WithContext(ctx).Create(&u).Error; err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrDuplicateKey
		}
		return model.User{}, unavailable("create user", err)
	}
	return u, nil
}

func (s *SQLite) UserByID(ctx context.Context, id uint) (model.User, error) {
	var u model.User
	err := s.orm.WithContext(ctx).First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, unavailable("get user", err)
	}
	return u, nil
}

func (s *SQLite) UserByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := s.orm.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, unavailable("get user by username", err)
	}
	return u, nil
}

func (s *SQLite) CreateSensorReading(ctx context.Context, nr NewReading) (model.Reading, error) {
	r := model.Reading{
		DhtTemperature:  nr.DhtTemperature,
		Lm35Temperature: nr.Lm35Temperature,
		LedLevel:        nr.LedLevel,
		Timestamp:       time.Now().UTC(),
	}
	if err := s.orm.WithContext(ctx).Create(&r).Error; err != nil {
		return model.Reading{}, unavailable("create reading", err)
	}
	return r, nil
}

func (s *SQLite) RecentSensorReadings(ctx context.Context, limit int) ([]model.Reading, error) {
	limit = NormalizeLimit(limit)
	var rows []model.Reading
	err := s.orm.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, unavailable("recent readings", err)
	}
	return rows, nil
}

func (s *SQLite) LatestSensorReading(ctx context.Context) (model.Reading, error) {
	var r model.Reading
	err := s.orm.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Reading{}, ErrNotFound
		}
		return model.Reading{}, unavailable("latest reading", err)
	}
	return r, nil
}

// PruneSensorReadings removes rows past the age cap, then rows beyond
// the count cap (oldest first). Both caps are optional.
func (s *SQLite) PruneSensorReadings(ctx context.Context) (int64, error) {
	var removed int64

	if age := s.retention.MaxAge; age > 0 {
		cutoff := time.Now().UTC().Add(-age)
		res := s.orm.WithContext(ctx).
			Where("timestamp < ?", cutoff).
			Delete(&model.Reading{})
		if res.Error != nil {
			return removed, unavailable("prune by age", res.Error)
		}
		removed += res.RowsAffected
	}

	if max := s.retention.MaxCount; max > 0 {
		keep := s.orm.Model(&model.Reading{}).
			Select("id").
			Order("timestamp DESC, id DESC").
			Limit(max)
		res := s.orm.WithContext(ctx).
			Where("id NOT IN (?)", keep).
			Delete(&model.Reading{})
		if res.Error != nil {
			return removed, unavailable("prune by count", res.Error)
		}
		removed += res.RowsAffected
	}

	return removed, nil
}

func (s *SQLite) Close() error { return closeORM(s.orm) }

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

// isDuplicate recognizes uniqueness violations from both the GORM
// translation layer and the raw sqlite driver message.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
