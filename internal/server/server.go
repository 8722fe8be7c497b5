package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"startupmap/internal/logging"
	"startupmap/internal/pipeline"
	"startupmap/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

type Options struct {
	TileURL   string
	CenterLat float64
	CenterLng float64
	Zoom      int
}

// Server exposes one analyst session over HTTP: the dashboard page, JSON
// views of the filtered records and facets, and a static map image.
type Server struct {
	session *pipeline.Session
	money   *render.CurrencyFormatter
	opts    Options
	logger  *zap.Logger
	page    *template.Template
}

func New(session *pipeline.Session, money *render.CurrencyFormatter, opts Options, logger *zap.Logger) (*Server, error) {
	page, err := template.New("index.html").Funcs(template.FuncMap{
		"selected": func(current, option string) bool { return current == option },
		"checked":  contains,
	}).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	if opts.Zoom <= 0 {
		opts.Zoom = 8
	}
	return &Server{
		session: session,
		money:   money,
		opts:    opts,
		logger:  logging.OrNop(logger),
		page:    page,
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", s.handleIndex)
	r.Get("/map.png", s.handleMapPNG)
	r.Route("/api", func(r chi.Router) {
		r.Get("/startups", s.handleStartups)
		r.Get("/facets", s.handleFacets)
		r.Get("/criteria", s.handleGetCriteria)
		r.Patch("/criteria", s.handlePatchCriteria)
		r.Delete("/criteria", s.handleResetCriteria)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then drains for up to five
// seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("dashboard shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
