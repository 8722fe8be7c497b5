package connectors

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"startupmap/internal/config"
	"startupmap/internal/connectors/remote"
	"startupmap/internal/connectors/sheets"
)

// SourceFor builds the dataset source for kind. input is a file path for
// json, xlsx and html, a URL for url, and ignored for sheets. Empty input
// falls back to DATASET_PATH or DATASET_URL.
func SourceFor(ctx context.Context, cfg config.Config, kind, input string, logger *zap.Logger) (DatasetSource, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "json", "xlsx", "html":
		if input == "" {
			input = cfg.DatasetPath
		}
		if err := cfg.Require("DATASET_PATH", input); err != nil {
			return nil, err
		}
		return FileSource{Type: kind, Path: input}, nil
	case "url":
		if input == "" {
			input = cfg.DatasetURL
		}
		if err := cfg.Require("DATASET_URL", input); err != nil {
			return nil, err
		}
		return remote.NewSource(cfg, input, "", logger), nil
	case "sheets":
		return sheets.NewConnector(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported source: %s", kind)
	}
}
