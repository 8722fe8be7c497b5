package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"startupmap/internal"
	"startupmap/internal/config"
	"startupmap/internal/logging"
	"startupmap/internal/pipeline"
)

const maxAttempts = 5

// Source downloads the dataset from a URL. The payload type is taken from
// Type, or guessed from the URL path when Type is empty.
type Source struct {
	URL  string
	Type string

	httpClient *http.Client
	limiter    *RateLimiter
	logger     *zap.Logger
	backoff    func(attempt int) time.Duration
}

func NewSource(cfg config.Config, url, inputType string, logger *zap.Logger) *Source {
	return &Source{
		URL:        url,
		Type:       inputType,
		httpClient: &http.Client{Timeout: time.Duration(cfg.RemoteTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.RemoteRateLimitRPS),
		logger:     logging.OrNop(logger),
		backoff:    defaultBackoff,
	}
}

func (s *Source) Name() string { return "url:" + s.URL }

func (s *Source) Fetch(ctx context.Context) ([]internal.RawRecord, error) {
	if strings.TrimSpace(s.URL) == "" {
		return nil, errors.New("missing DATASET_URL")
	}
	body, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.ParseDataset(s.payloadType(), body)
}

func (s *Source) payloadType() string {
	if s.Type != "" && s.Type != "url" {
		return s.Type
	}
	switch strings.ToLower(path.Ext(strings.SplitN(s.URL, "?", 2)[0])) {
	case ".xlsx":
		return "xlsx"
	case ".html", ".htm":
		return "html"
	default:
		return "json"
	}
}

func (s *Source) fetch(ctx context.Context) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := s.limiter.WaitTurn(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json, */*")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < maxAttempts {
				lastErr = fmt.Errorf("dataset status %d", resp.StatusCode)
				s.logger.Warn("retrying dataset download", zap.Int("attempt", attempt), zap.Int("status", resp.StatusCode))
				if err := sleepCtx(ctx, s.backoff(attempt)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("dataset download failed: status=%d body=%s", resp.StatusCode, truncate(string(body), 200))
		}
		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("dataset request failed")
	}
	return nil, lastErr
}

func defaultBackoff(attempt int) time.Duration {
	return time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
