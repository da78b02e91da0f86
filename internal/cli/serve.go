package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topdeps/pkg/dependents"
	errs "github.com/matzehuels/topdeps/pkg/errors"
	"github.com/matzehuels/topdeps/pkg/observability"
	"github.com/matzehuels/topdeps/pkg/pipeline"
)

const (
	shutdownTimeout = 10 * time.Second
	requestTimeout  = 5 * time.Minute
)

// serveCommand creates the command that exposes the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		noCache  bool
		cacheDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dependents rankings as JSON over HTTP",
		Long: `Serve dependents rankings as JSON over HTTP.

Endpoints:
  GET /v1/dependents/{owner}/{repo}?rows=10&max_pages=100&min_stars=0&type=repository&description=false
  GET /healthz
  GET /metrics   (Prometheus)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Serve.Addr
			}
			if !cmd.Flags().Changed("cache-dir") {
				cacheDir = c.Config.CacheDir
			}
			runner, err := c.newRunner(noCache, cacheDir, c.Config.Markup)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			observability.NewPrometheusHooks(reg).Install()

			srv := &http.Server{
				Addr:              addr,
				Handler:           newServer(runner, reg, !noCache, c.Logger).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return serveUntilDone(cmd.Context(), srv, c.Logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultConfig().Serve.Addr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page cache")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "cache directory (default $XDG_CACHE_HOME/topdeps)")

	return cmd
}

// serveUntilDone runs srv until ctx is cancelled, then shuts it down.
func serveUntilDone(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// =============================================================================
// Server - chi router over the pipeline
// =============================================================================

type server struct {
	router   chi.Router
	runner   *pipeline.Runner
	useCache bool
	logger   *log.Logger
}

func newServer(runner *pipeline.Runner, gatherer prometheus.Gatherer, useCache bool, logger *log.Logger) *server {
	s := &server{runner: runner, useCache: useCache, logger: logger}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.recoverer)

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Route("/v1", func(r chi.Router) {
		r.Get("/dependents/{owner}/{repo}", s.listDependents)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *server) Handler() http.Handler {
	return s.router
}

func (s *server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) listDependents(w http.ResponseWriter, r *http.Request) {
	opts, err := s.parseOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := s.runner.Run(ctx, opts)
	switch {
	case errs.Is(err, errs.ErrCodeInvalidInput):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, err)
		return
	case result.Failed():
		writeError(w, http.StatusBadGateway, result.Stopped)
		return
	}
	writeJSONResponse(w, http.StatusOK, newReport(result))
}

// parseOptions builds run options from the path and query string.
func (s *server) parseOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Owner:    chi.URLParam(r, "owner"),
		Repo:     chi.URLParam(r, "repo"),
		MinStars: pipeline.DefaultMinStars,
		UseCache: s.useCache,
		Logger:   loggerFromContext(r.Context()),
	}

	var err error
	if opts.TopN, err = queryInt(q, "rows"); err != nil {
		return opts, err
	}
	if opts.MaxPages, err = queryInt(q, "max_pages"); err != nil {
		return opts, err
	}
	if v := q.Get("min_stars"); v != "" {
		if opts.MinStars, err = strconv.ParseFloat(v, 64); err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "invalid min_stars %q", v)
		}
	}
	if v := q.Get("description"); v != "" {
		if opts.Descriptions, err = strconv.ParseBool(v); err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "invalid description %q", v)
		}
	}
	if opts.Type, err = dependents.ParseType(q.Get("type")); err != nil {
		return opts, err
	}
	if q.Has("max_pages") && opts.MaxPages == 0 {
		return opts, errs.New(errs.ErrCodeInvalidInput, "max_pages must be at least 1")
	}
	return opts, validateExplicit(&opts, q.Has("rows") && opts.TopN == 0)
}

// queryInt reads an optional integer parameter; absent means zero.
func queryInt(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "invalid %s %q", key, v)
	}
	return n, nil
}

// =============================================================================
// Middleware
// =============================================================================

// requestID tags each request with a uuid, exposes it in X-Request-ID and
// attaches a request-scoped logger to the context.
func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)
		logger := s.logger.With("request", reqID[:8])
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(withLogger(r.Context(), logger)))
		logger.Debug("request completed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// recoverer logs handler panics and answers 500 unless the response has
// already started.
func (s *server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				loggerFromContext(r.Context()).Error("panic", "path", r.URL.Path, "panic", rec)
				if ww.Status() == 0 {
					writeJSONResponse(ww, http.StatusInternalServerError, map[string]string{"error": "internal error"})
				}
			}
		}()
		next.ServeHTTP(ww, r)
	})
}

// =============================================================================
// Responses
// =============================================================================

func writeJSONResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Default().Error("write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := map[string]string{"error": errs.UserMessage(err)}
	if code := errs.GetCode(err); code != "" {
		body["code"] = string(code)
	}
	writeJSONResponse(w, status, body)
}
