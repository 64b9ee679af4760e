package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/example/go-dotprod/internal/config"
	"github.com/example/go-dotprod/internal/history"
	"github.com/example/go-dotprod/internal/vector"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxDimension int
	kernel       vector.Kernel
	history      *history.Store
	logger       *slog.Logger
}

func defaultOptions() options {
	return options{
		maxDimension: config.DefaultConfig().Server.MaxDimension,
		kernel:       vector.KernelScalar,
		logger:       slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxDimension sets the maximum vector length accepted by POST /dot.
func WithMaxDimension(n int) Option {
	return func(o *options) { o.maxDimension = n }
}

// WithKernel sets the float64 kernel used for real vectors.
func WithKernel(k vector.Kernel) Option {
	return func(o *options) { o.kernel = k }
}

// WithHistory records every successful calculation in s.
func WithHistory(s *history.Store) Option {
	return func(o *options) { o.history = s }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

type handler struct {
	opts    options
	history *history.Store
	log     *slog.Logger
}

// NewHandler returns an http.Handler that serves /health, POST /dot and the
// /history endpoints.
func NewHandler(optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		opts:    opts,
		history: opts.history,
		log:     opts.logger,
	}
	if h.history == nil {
		h.history = history.New(history.DefaultLimit)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/dot", h.handleDot)
	mux.HandleFunc("/history", h.handleHistory)
	mux.HandleFunc("/history.csv", h.handleHistoryCSV)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

type dotRequest struct {
	A     []json.Number `json:"a"`
	B     []json.Number `json:"b"`
	Steps bool          `json:"steps"`
}

type dotResponse struct {
	Result    json.Number `json:"result"`
	Kind      string      `json:"kind"`
	Dimension int         `json:"dimension"`
	Steps     []string    `json:"steps,omitempty"`
}

func (h *handler) handleDot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dotRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if h.opts.maxDimension > 0 && (len(req.A) > h.opts.maxDimension || len(req.B) > h.opts.maxDimension) {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("vector exceeds maximum dimension of %d", h.opts.maxDimension))
		return
	}

	start := time.Now()
	entry, steps, err := h.compute(req)
	durationUS := time.Since(start).Microseconds()

	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, vector.ErrInvalidArgument):
			status = http.StatusBadRequest
		case errors.Is(err, errNotFinite):
			status = http.StatusUnprocessableEntity
		}
		h.log.WarnContext(r.Context(), "dot product rejected",
			slog.Int("len_a", len(req.A)),
			slog.Int("len_b", len(req.B)),
			slog.String("error", err.Error()),
		)
		writeError(w, status, err.Error())
		return
	}

	h.history.Add(entry)

	h.log.InfoContext(r.Context(), "dot product computed",
		slog.String("kind", entry.Kind),
		slog.Int("dimension", entry.Dimension),
		slog.String("kernel", string(h.opts.kernel)),
		slog.Int64("duration_us", durationUS),
	)

	resp := dotResponse{
		Result:    entry.Result,
		Kind:      entry.Kind,
		Dimension: entry.Dimension,
	}
	if req.Steps {
		resp.Steps = steps
	}
	writeJSON(w, http.StatusOK, resp)
}

var errNotFinite = errors.New("result is not finite")

// compute picks the integer path when every element of both vectors is an
// integer literal and the real path otherwise.
func (h *handler) compute(req dotRequest) (history.Entry, []string, error) {
	if a, okA := integers(req.A); okA {
		if b, okB := integers(req.B); okB {
			bd, err := vector.Explain(a, b)
			if err != nil {
				return history.Entry{}, nil, err
			}
			return history.FromBreakdown(history.KindInteger, bd), bd.Steps(), nil
		}
	}

	a, err := reals(req.A)
	if err != nil {
		return history.Entry{}, nil, err
	}
	b, err := reals(req.B)
	if err != nil {
		return history.Entry{}, nil, err
	}

	bd, err := h.opts.kernel.Explain(a, b)
	if err != nil {
		return history.Entry{}, nil, err
	}
	if math.IsNaN(bd.Result) || math.IsInf(bd.Result, 0) {
		return history.Entry{}, nil, errNotFinite
	}
	return history.FromBreakdown(history.KindReal, bd), bd.Steps(), nil
}

// integers keeps nil as nil so an absent vector still fails validation.
func integers(ns []json.Number) ([]int64, bool) {
	if ns == nil {
		return nil, true
	}
	out := make([]int64, len(ns))
	for i, n := range ns {
		v, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func reals(ns []json.Number) ([]float64, error) {
	if ns == nil {
		return nil, nil
	}
	out := make([]float64, len(ns))
	for i, n := range ns {
		v, err := n.Float64()
		if err != nil {
			return nil, &vector.ArgumentError{
				Op:     "decode",
				Reason: fmt.Sprintf("invalid number %q at index %d", n.String(), i),
			}
		}
		out[i] = v
	}
	return out, nil
}

func (h *handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.history.List())
	case http.MethodDelete:
		h.history.Clear()
		h.log.InfoContext(r.Context(), "history cleared")
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *handler) handleHistoryCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := "dotprod_history_" + time.Now().UTC().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if err := h.history.WriteCSV(w); err != nil {
		h.log.ErrorContext(r.Context(), "history export failed", slog.String("error", err.Error()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	history         *history.Store
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

func New(cfg config.Config, store *history.Store) *Server {
	return &Server{
		cfg:             cfg,
		history:         store,
		logger:          slog.Default(),
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

// Handler builds the request handler from the server's config.
func (s *Server) Handler() (http.Handler, error) {
	kernel, err := vector.ParseKernel(s.cfg.Compute.Kernel)
	if err != nil {
		return nil, err
	}

	store := s.history
	if store == nil {
		store = history.New(s.cfg.History.Limit)
	}

	h := NewHandler(
		WithKernel(kernel),
		WithHistory(store),
		WithMaxDimension(s.cfg.Server.MaxDimension),
		WithLogger(s.logger),
	)

	if s.cfg.Server.RequestTimeout > 0 {
		h = jsonTimeout(h, time.Duration(s.cfg.Server.RequestTimeout)*time.Second)
	}
	return h, nil
}

// jsonTimeout wraps h in http.TimeoutHandler and labels the 503 body as JSON.
// Handlers that finish in time overwrite the preset Content-Type with their own.
func jsonTimeout(h http.Handler, d time.Duration) http.Handler {
	th := http.TimeoutHandler(h, d, `{"error":"request timed out"}`)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		th.ServeHTTP(w, r)
	})
}

func (s *Server) Start(ctx context.Context) error {
	h, err := s.Handler()
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.InfoContext(ctx, "server listening",
		slog.String("addr", s.cfg.Server.ListenAddr),
		slog.String("kernel", s.cfg.Compute.Kernel),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

func ProbeHTTP(addr string) error {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
