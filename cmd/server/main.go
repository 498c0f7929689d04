package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/handlers"

	"temp-monitor/internal/api"
	"temp-monitor/internal/config"
	"temp-monitor/internal/hub"
	"temp-monitor/internal/intake"
	"temp-monitor/internal/store"
	"temp-monitor/internal/tasks"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config/config.yaml", "path to YAML config")
	flag.Parse()

	if err := run(cfgPath); err != nil {
		log.Fatal(err)
	}
}

func run(cfgPath string) error {
	cfg, err := config.LoadYAML(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := openStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	h := hub.New(st)

	in := intake.New(intake.Options{
		BrokerHost:        cfg.MQTT.Host,
		BrokerPort:        cfg.MQTT.Port,
		Username:          cfg.MQTT.Username,
		Password:          cfg.MQTT.Password,
		ClientID:          cfg.MQTT.ClientID,
		Topic:             cfg.MQTT.Topic,
		KeepAlive:         cfg.MQTT.KeepAlive,
		ReconnectInterval: cfg.MQTT.ReconnectInterval,
	}, st, h)
	in.Start()
	defer in.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pruner := &tasks.Pruner{Store: st, Interval: cfg.Storage.PruneInterval}
	go pruner.Run(ctx)

	logged := handlers.LoggingHandler(os.Stdout, api.NewServer(st, h).Router())
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.ListenAddress,
		Handler: logged,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("monitor API listening on %s", cfg.HTTP.ListenAddress)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Println("shutting down monitor")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("http shutdown: %v", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func openStore(cfg config.StorageConfig) (store.Store, error) {
	ret := store.Retention{MaxCount: cfg.Retention.MaxCount, MaxAge: cfg.Retention.MaxAge}
	switch cfg.Driver {
	case "memory":
		return store.NewMemory(ret), nil
	default:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		return store.OpenSQLite(cfg.Path, ret)
	}
}
