package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAMLDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
mqtt:
  host: broker.local
  topic: sensor/temperature
storage:
  driver: memory
`)

	cfg, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if cfg.MQTT.Port != 1883 {
		t.Fatalf("expected default port 1883, got %d", cfg.MQTT.Port)
	}
	if cfg.MQTT.ClientID != "temp-monitor" {
		t.Fatalf("expected default client id, got %q", cfg.MQTT.ClientID)
	}
	if cfg.MQTT.KeepAlive != 30*time.Second {
		t.Fatalf("expected default keep alive, got %s", cfg.MQTT.KeepAlive)
	}
	if cfg.MQTT.ReconnectInterval != 5*time.Second {
		t.Fatalf("expected default reconnect interval, got %s", cfg.MQTT.ReconnectInterval)
	}
	if cfg.HTTP.ListenAddress != ":8080" {
		t.Fatalf("expected default listen address, got %q", cfg.HTTP.ListenAddress)
	}
	if cfg.Storage.PruneInterval != 10*time.Minute {
		t.Fatalf("expected default prune interval, got %s", cfg.Storage.PruneInterval)
	}
}

func TestLoadYAMLFull(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
mqtt:
  host: broker.local
  port: 8883
  username: device
  password: hunter2
  client_id: monitor-1
  topic: home/temperature
  keep_alive: 1m
  reconnect_interval: 10s
http:
  listen_address: ":9090"
storage:
  driver: sqlite
  path: /var/lib/monitor/readings.sqlite
  retention:
    max_count: 10000
    max_age: 720h
  prune_interval: 15m
`)

	cfg, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if cfg.MQTT.Username != "device" || cfg.MQTT.Password != "hunter2" {
		t.Fatalf("credentials not loaded: %+v", cfg.MQTT)
	}
	if cfg.MQTT.KeepAlive != time.Minute {
		t.Fatalf("expected keep alive 1m, got %s", cfg.MQTT.KeepAlive)
	}
	if cfg.Storage.Retention.MaxCount != 10000 {
		t.Fatalf("expected max_count 10000, got %d", cfg.Storage.Retention.MaxCount)
	}
	if cfg.Storage.Retention.MaxAge != 720*time.Hour {
		t.Fatalf("expected max_age 720h, got %s", cfg.Storage.Retention.MaxAge)
	}
}

func TestLoadYAMLReadAndParseErrors(t *testing.T) {
	t.Parallel()

	if _, err := LoadYAML(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	} else if !strings.Contains(err.Error(), "read config") {
		t.Fatalf("expected wrapped read error, got %v", err)
	}

	if _, err := LoadYAML(writeConfig(t, "mqtt: [not a mapping")); err == nil {
		t.Fatalf("expected error for malformed yaml")
	} else if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected wrapped parse error, got %v", err)
	}
}

func TestLoadYAMLValidation(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing host": `
mqtt:
  topic: sensor/temperature
storage:
  driver: memory
`,
		"missing topic": `
mqtt:
  host: broker.local
storage:
  driver: memory
`,
		"sqlite without path": `
mqtt:
  host: broker.local
  topic: sensor/temperature
storage:
  driver: sqlite
`,
		"unknown driver": `
mqtt:
  host: broker.local
  topic: sensor/temperature
storage:
  driver: redis
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadYAML(writeConfig(t, body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
