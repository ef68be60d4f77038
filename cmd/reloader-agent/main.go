package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reloadpanel/pkg/agent"
	"reloadpanel/pkg/config"
)

func main() {
	cfgPath := config.ResolveAgentConfigPath()
	cfg, err := config.LoadAgentConfig(cfgPath)
	if err != nil {
		log.Fatalf("failed to load agent config %q: %v", cfgPath, err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))

	registry := agent.NewRegistry(cfg.DefaultInterval, cfg.CheckTimeout)
	probe := agent.HTTPProber(time.Duration(cfg.CheckTimeout) * time.Second)
	srv := agent.NewServer(registry, cfg.EndpointPath, probe)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.ListenAddr()
	slog.Info("page-reloader agent listening", "addr", addr, "endpoint", cfg.EndpointURL(), "config", cfgPath)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		slog.Error("agent server failed", "error", err)
		os.Exit(1)
	}
}
