package model

import "time"

// Reading is one stored sensor/indicator observation. The store assigns
// ID and Timestamp at creation; callers never supply them.
// Temperatures are pointers because either sensor may fail to report —
// a nil value serializes as JSON null.
type Reading struct {
	ID              uint      `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	DhtTemperature  *float64  `json:"dhtTemperature" gorm:"column:dht_temperature"`
	Lm35Temperature *float64  `json:"lm35Temperature" gorm:"column:lm35_temperature"`
	LedLevel        int       `json:"ledLevel" gorm:"column:led_level;default:0"`
	Timestamp       time.Time `json:"timestamp" gorm:"column:timestamp;index"`
}

func (Reading) TableName() string { return "sensor_readings" }

// User is a basic principal with a unique username.
type User struct {
	ID       uint   `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"column:username;uniqueIndex"`
	Password string `json:"-" gorm:"column:password"`
}

func (User) TableName() string { return "users" }
