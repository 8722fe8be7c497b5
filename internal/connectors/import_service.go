package connectors

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"startupmap/internal/logging"
	"startupmap/internal/storage"
)

type ImportService struct {
	db     *storage.DB
	logger *zap.Logger
}

type ImportResult struct {
	Source   string
	Imported int
}

func NewImportService(db *storage.DB, logger *zap.Logger) *ImportService {
	return &ImportService{db: db, logger: logging.OrNop(logger)}
}

// Import replaces the stored dataset with whatever source returns. A failed
// fetch leaves the previous dataset in place.
func (s *ImportService) Import(ctx context.Context, source DatasetSource) (ImportResult, error) {
	records, err := source.Fetch(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("fetch %s: %w", source.Name(), err)
	}

	if err := s.db.ReplaceRawRecords(source.Name(), records); err != nil {
		return ImportResult{}, err
	}
	if err := s.db.SetMetadata(storage.MetaLastImport, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return ImportResult{}, err
	}
	if err := s.db.SetMetadata(storage.MetaSource, source.Name()); err != nil {
		return ImportResult{}, err
	}

	s.logger.Info("dataset imported", zap.String("source", source.Name()), zap.Int("records", len(records)))
	return ImportResult{Source: source.Name(), Imported: len(records)}, nil
}
