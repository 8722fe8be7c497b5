package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"startupmap/internal/config"
	"startupmap/internal/logging"
	"startupmap/internal/pipeline"
	"startupmap/internal/render"
	"startupmap/internal/server"
	"startupmap/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	must(err)
	defer func() { _ = logger.Sync() }()

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	normalizer, err := pipeline.NewNormalizerFromConfig(cfg, logger)
	must(err)
	res, err := pipeline.NewProcessingService(db, normalizer, logger).LoadStored()
	must(err)

	money, err := render.NewCurrencyFormatter(cfg.DisplayLocale, cfg.DisplayCurrency)
	must(err)

	srv, err := server.New(pipeline.NewSession(res.NormalizeResult), money, server.Options{
		TileURL:   cfg.TileURL,
		CenterLat: cfg.MapCenterLat,
		CenterLng: cfg.MapCenterLng,
		Zoom:      cfg.MapZoom,
	}, logger)
	must(err)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(srv.ListenAndServe(ctx, cfg.HTTPAddr))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
