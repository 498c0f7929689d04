package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Root configuration for the monitor daemon.
// This mirrors config/config.yaml.

type Config struct {
	MQTT    MQTTConfig    `yaml:"mqtt"`
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
}

type MQTTConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	ClientID          string        `yaml:"client_id"`
	Topic             string        `yaml:"topic"`
	KeepAlive         time.Duration `yaml:"keep_alive"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
}

type HTTPConfig struct {
	ListenAddress string `yaml:"listen_address"`
}

type StorageConfig struct {
	Driver        string        `yaml:"driver"` // sqlite | memory
	Path          string        `yaml:"path"`
	Retention     Retention     `yaml:"retention"`
	PruneInterval time.Duration `yaml:"prune_interval"`
}

type Retention struct {
	MaxCount int           `yaml:"max_count"`
	MaxAge   time.Duration `yaml:"max_age"`
}

func LoadYAML(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	// Defaults
	if cfg.MQTT.Port <= 0 {
		cfg.MQTT.Port = 1883
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "temp-monitor"
	}
	if cfg.MQTT.KeepAlive <= 0 {
		cfg.MQTT.KeepAlive = 30 * time.Second
	}
	if cfg.MQTT.ReconnectInterval <= 0 {
		cfg.MQTT.ReconnectInterval = 5 * time.Second
	}
	if cfg.HTTP.ListenAddress == "" {
		cfg.HTTP.ListenAddress = ":8080"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.PruneInterval <= 0 {
		cfg.Storage.PruneInterval = 10 * time.Minute
	}
	// Basic validation
	if cfg.MQTT.Host == "" {
		return Config{}, fmt.Errorf("mqtt.host must be set")
	}
	if cfg.MQTT.Topic == "" {
		return Config{}, fmt.Errorf("mqtt.topic must be set")
	}
	switch cfg.Storage.Driver {
	case "sqlite":
		if cfg.Storage.Path == "" {
			return Config{}, fmt.Errorf("storage.path must be set for the sqlite driver")
		}
	case "memory":
	default:
		return Config{}, fmt.Errorf("unsupported storage.driver %q", cfg.Storage.Driver)
	}
	return cfg, nil
}
