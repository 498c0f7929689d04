package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"temp-monitor/internal/config"
)

// The simulator stands in for the embedded device: it replays rows from
// a CSV file to the configured MQTT topic at a fixed interval, cycling
// back to the first row at the end.

type sampleRow struct {
	Dht  *float64
	Lm35 *float64
	Led  int
}

type payload struct {
	SuhuDHT  *float64 `json:"suhuDHT,omitempty"`
	SuhuLM35 *float64 `json:"suhuLM35,omitempty"`
	LED      int      `json:"LED"`
}

type simulator struct {
	client   mqtt.Client
	topic    string
	rows     []sampleRow
	interval time.Duration
	rowIndex int
}

func main() {
	var cfgPath string
	var csvPath string
	var interval time.Duration
	flag.StringVar(&cfgPath, "config", "config/config.yaml", "path to YAML config")
	flag.StringVar(&csvPath, "csv", "data/samples.csv", "CSV file with dht,lm35,led columns")
	flag.DurationVar(&interval, "interval", 5*time.Second, "publish interval")
	flag.Parse()

	if err := run(cfgPath, csvPath, interval); err != nil {
		log.Fatal(err)
	}
}

func run(cfgPath, csvPath string, interval time.Duration) error {
	cfg, err := config.LoadYAML(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	rows, err := loadCSV(csvPath)
	if err != nil {
		return fmt.Errorf("load csv: %w", err)
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port)).
		SetClientID(cfg.MQTT.ClientID + "-simulator").
		SetUsername(cfg.MQTT.Username).
		SetPassword(cfg.MQTT.Password).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect broker: %w", token.Error())
	}
	defer client.Disconnect(250)

	sim := &simulator{
		client:   client,
		topic:    cfg.MQTT.Topic,
		rows:     rows,
		interval: interval,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("simulator publishing %d rows to %s every %s", len(rows), sim.topic, interval)
	return sim.Start(ctx)
}

func (s *simulator) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.publishRow()

	for {
		select {
		case <-ticker.C:
			s.rowIndex = (s.rowIndex + 1) % len(s.rows)
			s.publishRow()
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *simulator) publishRow() {
	row := s.rows[s.rowIndex]
	b, err := json.Marshal(payload{SuhuDHT: row.Dht, SuhuLM35: row.Lm35, LED: row.Led})
	if err != nil {
		log.Printf("marshal row %d: %v", s.rowIndex, err)
		return
	}
	token := s.client.Publish(s.topic, 0, false, b)
	if token.Wait() && token.Error() != nil {
		log.Printf("publish row %d: %v", s.rowIndex, token.Error())
	}
}

// loadCSV reads rows with dht,lm35,led columns. Empty temperature cells
// stand for a sensor that failed to report and publish as null.
func loadCSV(path string) ([]sampleRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("csv must contain header and at least one data row")
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, key := range header {
		col[strings.ToLower(strings.TrimSpace(key))] = i
	}
	for _, name := range []string{"dht", "lm35", "led"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("csv missing column %s", name)
		}
	}

	rows := make([]sampleRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(header) {
			return nil, errors.New("csv record length mismatch")
		}
		var row sampleRow
		row.Dht, err = parseOptionalFloat(record[col["dht"]])
		if err != nil {
			return nil, fmt.Errorf("invalid dht value: %w", err)
		}
		row.Lm35, err = parseOptionalFloat(record[col["lm35"]])
		if err != nil {
			return nil, fmt.Errorf("invalid lm35 value: %w", err)
		}
		ledStr := strings.TrimSpace(record[col["led"]])
		if ledStr != "" {
			led, err := strconv.Atoi(ledStr)
			if err != nil || led < 0 {
				return nil, fmt.Errorf("invalid led value %q", ledStr)
			}
			row.Led = led
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseOptionalFloat(cell string) (*float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
