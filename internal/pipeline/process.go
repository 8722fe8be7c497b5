package pipeline

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"startupmap/internal"
	"startupmap/internal/config"
	"startupmap/internal/geo"
	"startupmap/internal/logging"
	"startupmap/internal/storage"
)

type ProcessingService struct {
	db         *storage.DB
	normalizer *Normalizer
	logger     *zap.Logger
}

func NewProcessingService(db *storage.DB, normalizer *Normalizer, logger *zap.Logger) *ProcessingService {
	return &ProcessingService{db: db, normalizer: normalizer, logger: logging.OrNop(logger)}
}

// NewNormalizerFromConfig wires the gazetteer, jitter and default region
// settings into a Normalizer.
func NewNormalizerFromConfig(cfg config.Config, logger *zap.Logger) (*Normalizer, error) {
	g, err := geo.LoadGazetteer(cfg.GazetteerPath)
	if err != nil {
		return nil, err
	}
	return NewNormalizer(g, geo.NewJitter(cfg.GeoJitter), cfg.DefaultRegion, logger), nil
}

type ProcessResult struct {
	TraceID string
	NormalizeResult
}

// LoadStored normalizes the dataset currently held in the database and
// records the run.
func (s *ProcessingService) LoadStored() (ProcessResult, error) {
	raw, err := s.db.ListRawRecords()
	if err != nil {
		return ProcessResult{}, err
	}
	source := "db"
	if v, err := s.db.GetMetadata(storage.MetaSource); err == nil && v != nil {
		source = *v
	}
	return s.Process(source, raw), nil
}

// Process normalizes raw records and stores run counts. A failure to store the
// run is logged and otherwise ignored.
func (s *ProcessingService) Process(source string, raw []internal.RawRecord) ProcessResult {
	start := time.Now()
	traceID := uuid.NewString()
	res := s.normalizer.Normalize(raw)

	timings := map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}
	counts := map[string]int{
		"total":   res.Total,
		"kept":    len(res.Records),
		"dropped": res.Dropped,
		"failed":  res.Failed,
	}
	if s.db != nil {
		if err := s.db.InsertRun(traceID, source, timings, counts); err != nil {
			s.logger.Warn("store run", zap.String("traceId", traceID), zap.Error(err))
		}
	}

	return ProcessResult{TraceID: traceID, NormalizeResult: res}
}
