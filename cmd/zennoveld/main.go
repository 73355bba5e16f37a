package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"zennovel/internal/config"
	"zennovel/internal/daemon"
	"zennovel/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ~/.config/zennovel/config.toml)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	d, err := daemon.New(cfg, logger)
	if err != nil {
		logger.Error("create daemon", "error", err)
		return
	}

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", "error", err)
		return
	}
	defer d.Stop()

	<-ctx.Done()
	logger.Info("zennoveld shutting down")
}
