package connectors

import (
	"context"

	"startupmap/internal"
	"startupmap/internal/pipeline"
)

// DatasetSource yields the raw dataset in source order.
type DatasetSource interface {
	Name() string
	Fetch(ctx context.Context) ([]internal.RawRecord, error)
}

// FileSource reads a local json, xlsx or html dataset.
type FileSource struct {
	Type string
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Fetch(ctx context.Context) ([]internal.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pipeline.ReadDataset(s.Type, s.Path)
}
