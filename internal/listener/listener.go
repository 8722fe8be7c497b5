package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"startupmap/internal"
	"startupmap/internal/config"
	"startupmap/internal/connectors"
	"startupmap/internal/logging"
	"startupmap/internal/pipeline"
	"startupmap/internal/storage"
)

// SourceFactory builds a fresh dataset source for each cycle so credentials
// and settings are re-read.
type SourceFactory func(ctx context.Context) (connectors.DatasetSource, error)

// Service re-imports the dataset on a fixed interval and, when enabled,
// writes an xlsx snapshot of the normalized records after each cycle.
type Service struct {
	db         *storage.DB
	cfg        config.Config
	newSource  SourceFactory
	normalizer *pipeline.Normalizer
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(db *storage.DB, cfg config.Config, newSource SourceFactory, normalizer *pipeline.Normalizer, logger *zap.Logger) *Service {
	return &Service{
		db:         db,
		cfg:        cfg,
		newSource:  newSource,
		normalizer: normalizer,
		logger:     logging.OrNop(logger),
		now:        time.Now,
	}
}

func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.WatchIntervalSec) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	for {
		if err := s.RunCycle(ctx); err != nil {
			s.logger.Error("watch cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

type CycleResult struct {
	Imported int
	Kept     int
	Snapshot string
}

func (s *Service) RunCycle(ctx context.Context) error {
	_, err := s.runCycle(ctx)
	return err
}

func (s *Service) runCycle(ctx context.Context) (CycleResult, error) {
	source, err := s.newSource(ctx)
	if err != nil {
		return CycleResult{}, err
	}

	imported, err := connectors.NewImportService(s.db, s.logger).Import(ctx, source)
	if err != nil {
		return CycleResult{}, err
	}

	processed, err := pipeline.NewProcessingService(s.db, s.normalizer, s.logger).LoadStored()
	if err != nil {
		return CycleResult{}, err
	}

	result := CycleResult{Imported: imported.Imported, Kept: len(processed.Records)}
	if s.cfg.WatchAutoExport {
		filename := fmt.Sprintf("startups_%s.xlsx", s.now().UTC().Format("20060102T150405Z"))
		result.Snapshot = filepath.Join(s.cfg.OutputDir, "watch", filename)
		if err := pipeline.ExportStartupsToXLSX(processed.Records, internal.DefaultCriteria(), result.Snapshot); err != nil {
			return result, err
		}
	}

	s.logger.Info("watch cycle done",
		zap.String("source", imported.Source),
		zap.Int("imported", result.Imported),
		zap.Int("kept", result.Kept),
		zap.String("snapshot", result.Snapshot),
	)
	return result, nil
}
