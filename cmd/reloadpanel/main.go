package main

import (
	"log"
	"log/slog"
	"os"

	"reloadpanel/pkg/config"
	"reloadpanel/pkg/ui"
)

func main() {
	cfgPath := config.ResolvePanelConfigPath()
	cfg, err := config.LoadPanelConfig(cfgPath)
	if err != nil {
		log.Fatalf("failed to load panel config %q: %v", cfgPath, err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))
	slog.Info("starting panel", "endpoint", cfg.Endpoint, "config", cfgPath)

	ui.NewPanelApp(cfg).Run()
}
