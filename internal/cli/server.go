package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/flowtower/pkg/buildinfo"
	"github.com/matzehuels/flowtower/pkg/cache"
	errs "github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/graph"
	"github.com/matzehuels/flowtower/pkg/identity"
	"github.com/matzehuels/flowtower/pkg/ledger"
	"github.com/matzehuels/flowtower/pkg/observability"
	"github.com/matzehuels/flowtower/pkg/pipeline"
)

// defaultMaxUpload caps POST /v1/graph bodies.
const defaultMaxUpload = 32 << 20

// requestIDHeader carries the request ID in both directions.
const requestIDHeader = "X-Request-Id"

// server serves the flow graph API.
type server struct {
	runner    *pipeline.Runner
	defaults  pipeline.Options // base options; query parameters override them
	records   []ledger.Record  // default dataset, nil when none was given
	logger    *log.Logger
	metrics   http.Handler
	maxUpload int64
}

// Router builds the chi router with middleware and all routes.
func (s *server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/graph", s.getGraph)
		r.Post("/graph", s.postGraph)
		r.Get("/entities", s.listEntities)
		r.Get("/entities/{id}/counterparties", s.listCounterparties)
	})
	return r
}

// =============================================================================
// Middleware
// =============================================================================

// requestID reuses an incoming X-Request-Id or assigns a new UUID, and
// attaches a request-scoped logger to the context.
func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := withLogger(r.Context(), s.logger.With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog logs each request and reports it to the HTTP hooks under its
// route pattern.
func (s *server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			d := time.Since(start)
			observability.HTTP().OnResponse(r.Context(), r.Method, route, status, d)

			logger := loggerFromContext(r.Context())
			kv := []any{"method", r.Method, "path", r.URL.Path, "status", status, "latency", d}
			switch {
			case status >= 500:
				logger.Error("http request", kv...)
			case status >= 400:
				logger.Warn("http request", kv...)
			default:
				logger.Debug("http request", kv...)
			}
		}()

		next.ServeHTTP(ww, r)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"dataset": s.records != nil,
		"build":   buildinfo.Get(),
	})
}

// graphResponse is the body of GET and POST /v1/graph.
type graphResponse struct {
	RunID       string          `json:"run_id,omitempty"`
	Dataset     string          `json:"dataset,omitempty"`
	Status      pipeline.Status `json:"status"`
	Message     string          `json:"message,omitempty"`
	Graph       *graph.Graph    `json:"graph,omitempty"`
	Suggestions []identity.ID   `json:"suggestions,omitempty"`
	Stats       responseStats   `json:"stats"`
}

type responseStats struct {
	Rows     int  `json:"rows"`
	Excluded int  `json:"excluded"`
	Skipped  int  `json:"skipped"`
	Nodes    int  `json:"nodes"`
	Edges    int  `json:"edges"`
	Cached   bool `json:"cached"`
}

func (s *server) getGraph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, dataset, err := s.dataset(ctx, r.URL.Query().Get("dataset"))
	if err != nil {
		writeErr(w, err)
		return
	}
	s.serveGraph(w, r, records, dataset, http.StatusOK)
}

// postGraph accepts a multipart upload in the "file" field, stores it
// under a new dataset ID and responds with the graph built from it.
func (s *server) postGraph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "expected a CSV file in form field \"file\""))
		return
	}
	defer file.Close()
	if err := errs.ValidateUploadFilename(header.Filename); err != nil {
		writeErr(w, err)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeErr(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "read upload"))
		return
	}
	records, err := ledger.ReadCSV(bytes.NewReader(data))
	if err != nil {
		writeErr(w, err)
		return
	}

	id := uuid.NewString()
	if err := s.runner.Cache.Set(ctx, s.runner.Keyer.UploadKey(id), data, cache.TTLUpload); err != nil {
		loggerFromContext(ctx).Warn("store upload", "dataset", id, "err", err)
		id = ""
	}
	loggerFromContext(ctx).Info("dataset uploaded", "dataset", id, "file", header.Filename, "rows", len(records))
	s.serveGraph(w, r, records, id, http.StatusCreated)
}

func (s *server) serveGraph(w http.ResponseWriter, r *http.Request, records []ledger.Record, dataset string, status int) {
	ctx := r.Context()
	opts, err := s.options(r.URL.Query())
	if err != nil {
		writeErr(w, err)
		return
	}

	result, err := s.runner.Run(ctx, records, opts)
	if err != nil {
		writeErr(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != pipeline.FormatJSON && result.Status == pipeline.StatusOK {
		opts.Formats = []string{format}
		artifacts, _, err := s.runner.RenderWithCacheInfo(ctx, result, opts)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", contentTypes[format])
		w.WriteHeader(status)
		w.Write(artifacts[format])
		return
	}

	resp := graphResponse{
		RunID:       result.RunID,
		Dataset:     dataset,
		Status:      result.Status,
		Message:     result.Status.Message(),
		Suggestions: result.Suggestions,
		Stats: responseStats{
			Rows:     result.Report.Rows,
			Excluded: result.Report.Excluded,
			Skipped:  result.Stats.Skipped,
			Nodes:    len(result.Export.Nodes),
			Edges:    len(result.Export.Edges),
			Cached:   result.CacheInfo.GraphHit,
		},
	}
	if result.Status == pipeline.StatusOK {
		resp.Graph = &result.Export
	}
	writeJSONResponse(w, status, resp)
}

var contentTypes = map[string]string{
	pipeline.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
}

func (s *server) listEntities(w http.ResponseWriter, r *http.Request) {
	dir, ok := s.directory(w, r)
	if !ok {
		return
	}
	search := r.URL.Query().Get("search")
	if err := errs.ValidateSearchTerm(search); err != nil {
		writeErr(w, err)
		return
	}
	matches := dir.Search(search)
	resp := map[string]any{"entities": nonNil(matches)}
	if search != "" && len(matches) == 0 {
		resp["suggestions"] = nonNil(dir.Suggest(search, pipeline.DefaultSuggestions))
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

func (s *server) listCounterparties(w http.ResponseWriter, r *http.Request) {
	dir, ok := s.directory(w, r)
	if !ok {
		return
	}
	raw, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid entity id"))
		return
	}
	id := dir.Resolve(raw)
	if id.IsZero() {
		writeErr(w, errs.New(errs.ErrCodeInvalidInput, "entity id is required"))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"entity":         id,
		"counterparties": nonNil(dir.Counterparties(raw)),
	})
}

// =============================================================================
// Helpers
// =============================================================================

// dataset returns the uploaded dataset with the given ID, or the default
// dataset when id is empty.
func (s *server) dataset(ctx context.Context, id string) ([]ledger.Record, string, error) {
	if id == "" {
		return s.records, "", nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, "", errs.New(errs.ErrCodeInvalidInput, "invalid dataset id %q", id)
	}
	data, ok, err := s.runner.Cache.Get(ctx, s.runner.Keyer.UploadKey(id))
	if err != nil {
		return nil, "", errs.Wrap(errs.ErrCodeInternal, err, "load dataset")
	}
	if !ok {
		return nil, "", errs.New(errs.ErrCodeNotFound, "dataset %s not found or expired", id)
	}
	records, err := ledger.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return records, id, nil
}

func (s *server) directory(w http.ResponseWriter, r *http.Request) (*pipeline.Directory, bool) {
	q := r.URL.Query()
	records, _, err := s.dataset(r.Context(), q.Get("dataset"))
	if err != nil {
		writeErr(w, err)
		return nil, false
	}
	opts := s.defaults
	if v := q.Get("mode"); v != "" {
		opts.Mode = v
	}
	dir, err := pipeline.NewDirectory(records, opts)
	if err != nil {
		writeErr(w, err)
		return nil, false
	}
	return dir, true
}

// options overrides the server defaults with query parameters.
func (s *server) options(q url.Values) (pipeline.Options, error) {
	opts := s.defaults
	opts.Formats = nil

	str := func(key string, dst *string) {
		if v := q.Get(key); v != "" {
			*dst = v
		}
	}
	str("mode", &opts.Mode)
	str("search", &opts.Search)
	str("focus", &opts.Focus)
	str("counterparty", &opts.Counterparty)
	str("layout", &opts.Layout)
	str("direction", &opts.Direction)
	if v := q.Get("kinds"); v != "" {
		opts.Kinds = strings.Split(v, ",")
	}

	var err error
	boolean := func(key string, dst *bool) {
		if v := q.Get(key); v != "" && err == nil {
			b, perr := strconv.ParseBool(v)
			if perr != nil {
				err = errs.New(errs.ErrCodeInvalidInput, "invalid %s %q", key, v)
				return
			}
			*dst = b
		}
	}
	boolean("all_kinds", &opts.AllKinds)
	boolean("pair_minimum", &opts.PairMinimum)
	boolean("itemized", &opts.Itemized)
	boolean("demote_hubs", &opts.DemoteHubs)
	boolean("detailed", &opts.Detailed)
	boolean("refresh", &opts.Refresh)

	integer := func(key string, dst *int) {
		if v := q.Get(key); v != "" && err == nil {
			n, perr := strconv.Atoi(v)
			if perr != nil {
				err = errs.New(errs.ErrCodeInvalidInput, "invalid %s %q", key, v)
				return
			}
			*dst = n
		}
	}
	integer("max_level", &opts.MaxLevel)
	integer("hub_threshold", &opts.HubThreshold)

	if v := q.Get("min_value"); v != "" && err == nil {
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			err = errs.New(errs.ErrCodeInvalidThreshold, "invalid min_value %q", v)
		}
		opts.MinValue = f
	}
	if err != nil {
		return pipeline.Options{}, err
	}
	if v := q.Get("format"); v != "" {
		if err := pipeline.ValidateFormat(v); err != nil {
			return pipeline.Options{}, err
		}
	}
	return opts, nil
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeErr maps an error class to an HTTP status.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := errs.GetCode(err)
	switch {
	case isTooLarge(err):
		status = http.StatusRequestEntityTooLarge
	case code.Class() == errs.ClassValidation:
		status = http.StatusBadRequest
	case code.Class() == errs.ClassNotFound:
		status = http.StatusNotFound
	}
	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError && code == "" {
		msg = "internal error"
	}
	writeJSONResponse(w, status, errorResponse{Error: msg, Code: string(code)})
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func nonNil(ids []identity.ID) []identity.ID {
	if ids == nil {
		return []identity.ID{}
	}
	return ids
}

// describe is used in startup logs.
func (s *server) describe() string {
	if s.records == nil {
		return "no default dataset"
	}
	return fmt.Sprintf("%d rows", len(s.records))
}
