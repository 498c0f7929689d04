package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"temp-monitor/internal/model"
)

// WriteJSON writes readings to a JSON file with pretty formatting.
func WriteJSON(path string, readings []model.Reading) error {
	b, err := json.MarshalIndent(readings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteCSV flattens readings and writes to a CSV file.
// Columns: id,dht_temperature,lm35_temperature,led_level,timestamp
// Absent temperatures are written as empty cells.
func WriteCSV(path string, readings []model.Reading) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	headers := []string{"id", "dht_temperature", "lm35_temperature", "led_level", "timestamp"}
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range readings {
		rec := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			formatTemp(r.DhtTemperature),
			formatTemp(r.Lm35Temperature),
			strconv.Itoa(r.LedLevel),
			timeToRFC3339(r.Timestamp),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatTemp(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func timeToRFC3339(t time.Time) string { return t.Format(time.RFC3339Nano) }
