package main

import (
	"context"
	"flag"
	"log"
	"time"

	"temp-monitor/internal/output"
	"temp-monitor/internal/store"
)

func main() {
	var dbPath string
	var outJSON string
	var outCSV string
	var limit int
	flag.StringVar(&dbPath, "db", "data/readings.sqlite", "path to sqlite database file")
	flag.StringVar(&outJSON, "json", "", "path to write JSON export (optional)")
	flag.StringVar(&outCSV, "csv", "", "path to write CSV export (optional)")
	flag.IntVar(&limit, "limit", 0, "number of readings to export (default 20)")
	flag.Parse()

	if outJSON == "" && outCSV == "" {
		log.Fatalf("no output specified: set --json and/or --csv")
	}

	st, err := store.OpenSQLite(dbPath, store.Retention{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	readings, err := st.RecentSensorReadings(ctx, limit)
	if err != nil {
		log.Fatalf("recent readings: %v", err)
	}

	if outJSON != "" {
		if err := output.WriteJSON(outJSON, readings); err != nil {
			log.Printf("write json error: %v", err)
		}
	}
	if outCSV != "" {
		if err := output.WriteCSV(outCSV, readings); err != nil {
			log.Printf("write csv error: %v", err)
		}
	}
}
