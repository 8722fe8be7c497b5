package listener

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"startupmap/internal"
	"startupmap/internal/config"
	"startupmap/internal/connectors"
	"startupmap/internal/geo"
	"startupmap/internal/pipeline"
	"startupmap/internal/storage"
)

type fixedSource []internal.RawRecord

func (s fixedSource) Name() string { return "fixed" }

func (s fixedSource) Fetch(context.Context) ([]internal.RawRecord, error) { return s, nil }

func TestRunCycleImportsAndExports(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	cfg := config.Config{OutputDir: tmp, WatchAutoExport: true}
	src := fixedSource{
		{"Project": map[string]any{"name": "A"}},
		{"Project": map[string]any{}},
		{"Project": map[string]any{"name": "B"}},
	}
	factory := func(context.Context) (connectors.DatasetSource, error) { return src, nil }
	normalizer := pipeline.NewNormalizer(geo.Default(), geo.NewJitter(0.015), "Assiut", nil)

	svc := NewService(db, cfg, factory, normalizer, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }

	res, err := svc.runCycle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 3 || res.Kept != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	want := filepath.Join(tmp, "watch", "startups_20260301T093000Z.xlsx")
	if res.Snapshot != want {
		t.Fatalf("snapshot=%s", res.Snapshot)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatal(err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	factory := func(context.Context) (connectors.DatasetSource, error) {
		calls++
		cancel()
		return nil, errors.New("offline")
	}
	svc := NewService(nil, config.Config{WatchIntervalSec: 3600}, factory, nil, nil)

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if calls != 1 {
		t.Fatalf("calls=%d", calls)
	}
}
