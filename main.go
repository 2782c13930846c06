package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"findex/internal/config"
	"findex/internal/index"
	"findex/internal/index/storage"
	"findex/internal/tokenizer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	prometheusotel "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "build":
		err = runBuild(os.Args[2:], logger)
	case "search":
		err = runSearch(os.Args[2:], logger)
	case "check":
		err = runCheck(os.Args[2:], logger)
	case "serve":
		err = runServe(os.Args[2:], logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: findex <command> [flags]

commands:
  build   index a directory tree and save the snapshot
  search  rank indexed files against a query
  check   report whether the snapshot is older than the corpus
  serve   expose search over HTTP with metrics

run 'findex <command> -h' for command flags`)
}

// commonFlags wires the flags shared by every subcommand onto fs and returns
// the destinations.
func commonFlags(fs *flag.FlagSet) (configPath, indexPath *string) {
	configPath = fs.String("config", "", "path to a TOML or YAML config file")
	indexPath = fs.String("index", "", "override the index snapshot path")
	return configPath, indexPath
}

func loadConfig(configPath, indexPath string) (config.AppConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.AppConfig{}, err
	}
	if envPath := os.Getenv("FINDEX_INDEX_FILE"); envPath != "" {
		cfg.Paths.IndexFile = envPath
	}
	if indexPath != "" {
		cfg.Paths.IndexFile = indexPath
	}
	return cfg, nil
}

func runBuild(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath, indexPath := commonFlags(fs)
	root := fs.String("root", "", "directory to index (defaults to the configured corpus root)")
	force := fs.Bool("force", false, "rebuild even when a snapshot already exists")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath, *indexPath)
	if err != nil {
		return err
	}
	if *root == "" {
		*root = cfg.Paths.CorpusRoot
	}

	if !*force {
		if _, err := os.Stat(cfg.Paths.IndexFile); err == nil {
			logger.Warn("snapshot already exists, use -force to rebuild", "path", cfg.Paths.IndexFile)
			return nil
		}
	}

	dispatch, err := tokenizer.FromNames(cfg.Tokenizers.Extensions)
	if err != nil {
		return err
	}

	logger.Info("building index", "root", *root)
	start := time.Now()
	ix, err := index.Build(*root, index.BuildOptions{Dispatch: dispatch, Logger: logger})
	if err != nil {
		return err
	}

	if err := storage.Save(cfg.Paths.IndexFile, ix); err != nil {
		return err
	}

	logger.Info("snapshot saved",
		"path", cfg.Paths.IndexFile,
		"documents", ix.Len(),
		"terms", ix.DocFrequencies().Len(),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func runSearch(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath, indexPath := commonFlags(fs)
	count := fs.Int("count", 0, "maximum number of results to display")
	fs.Parse(args)

	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("search requires a query")
	}

	cfg, err := loadConfig(*configPath, *indexPath)
	if err != nil {
		return err
	}

	ix, err := storage.Load(cfg.Paths.IndexFile)
	if err != nil {
		return err
	}

	results := ix.Search(query)
	if len(results) == 0 {
		fmt.Printf("no match for query %q\n", query)
		return nil
	}

	limit := resultLimit(*count, cfg.Search.DefaultCount, len(results))
	for _, r := range results[:limit] {
		fmt.Println(formatResult(r))
	}
	return nil
}

func runCheck(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath, indexPath := commonFlags(fs)
	fs.Parse(args)

	cfg, err := loadConfig(*configPath, *indexPath)
	if err != nil {
		return err
	}

	info, err := os.Stat(cfg.Paths.IndexFile)
	if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}

	ix, err := storage.Load(cfg.Paths.IndexFile)
	if err != nil {
		return err
	}

	newest, mtime, err := ix.LastModified()
	if err != nil {
		return err
	}

	if !mtime.After(info.ModTime()) {
		fmt.Printf("snapshot %s is up to date\n", cfg.Paths.IndexFile)
		return nil
	}
	fmt.Printf("%s is newer than snapshot %s\n", newest, cfg.Paths.IndexFile)
	return nil
}

func runServe(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath, indexPath := commonFlags(fs)
	listen := fs.String("listen", "", "override the listen address (e.g. :8080)")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath, *indexPath)
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	ix, err := storage.Load(cfg.Paths.IndexFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	telemetry := newTelemetry(ctx, logger, cfg.Metrics.Enabled != nil && *cfg.Metrics.Enabled)
	telemetry.observeCorpus(ix.Len())

	server := &apiServer{
		ix:           ix,
		defaultCount: cfg.Search.DefaultCount,
		telemetry:    telemetry,
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", server.handleSearch)
	mux.HandleFunc("/v1/health", server.handleHealth)
	if telemetry.enabled {
		mux.HandleFunc("/v1/metrics", telemetry.handleMetrics)
	}

	handler := withTelemetry(mux, telemetry, cfg.Logging.RequestLogs == nil || *cfg.Logging.RequestLogs)

	logger.Info("findex API listening", "listen", cfg.Server.Listen, "snapshot", cfg.Paths.IndexFile, "documents", ix.Len())
	if err := http.ListenAndServe(cfg.Server.Listen, handler); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// resultLimit clamps the displayed result count: the explicit request wins,
// then the configured default, never exceeding the available results.
func resultLimit(requested, fallback, total int) int {
	limit := requested
	if limit <= 0 {
		limit = fallback
	}
	if limit <= 0 || limit > total {
		limit = total
	}
	return limit
}

func formatResult(r index.Result) string {
	return fmt.Sprintf("%s: %g", r.Path, r.Score)
}

type apiServer struct {
	ix           *index.Index
	defaultCount int
	telemetry    *telemetry
	logger       *slog.Logger
}

func (s *apiServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		respond(w, http.StatusBadRequest, map[string]any{"error": "missing query parameter q"})
		return
	}

	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respond(w, http.StatusBadRequest, map[string]any{"error": "count must be a non-negative integer"})
			return
		}
		count = parsed
	}

	start := time.Now()
	results := s.ix.Search(query)
	limit := resultLimit(count, s.defaultCount, len(results))
	s.telemetry.recordSearch(r.Context(), len(results), time.Since(start))

	respond(w, http.StatusOK, map[string]any{
		"query":     query,
		"totalHits": len(results),
		"hits":      results[:limit],
		"timingMs":  time.Since(start).Milliseconds(),
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, map[string]any{"status": "ok", "documents": s.ix.Len()})
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type telemetry struct {
	enabled bool
	logger  *slog.Logger

	registry       *prometheus.Registry
	metricsHandler http.Handler

	httpRequests  metric.Int64Counter
	httpErrors    metric.Int64Counter
	httpLatency   metric.Float64Histogram
	searchOps     metric.Int64Counter
	searchLatency metric.Float64Histogram

	corpusGauge prometheus.Gauge
}

func newTelemetry(ctx context.Context, logger *slog.Logger, enabled bool) *telemetry {
	telemetry := &telemetry{enabled: enabled, logger: logger}
	if !enabled {
		return telemetry
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	exporter, err := prometheusotel.New(prometheusotel.WithRegisterer(registry))
	if err != nil {
		logger.Error("failed to initialize prometheus exporter", "error", err)
		telemetry.enabled = false
		return telemetry
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter("findex")

	httpReq, _ := meter.Int64Counter("http_requests_total", metric.WithDescription("Total HTTP requests"))
	httpErr, _ := meter.Int64Counter("http_errors_total", metric.WithDescription("HTTP requests that returned an error status"))
	httpLatency, _ := meter.Float64Histogram("http_request_duration_ms", metric.WithDescription("Latency of HTTP requests in milliseconds"), metric.WithUnit("ms"))
	searchOps, _ := meter.Int64Counter("search_requests_total", metric.WithDescription("Search operations executed"))
	searchLatency, _ := meter.Float64Histogram("search_latency_ms", metric.WithDescription("Latency of search operations"), metric.WithUnit("ms"))

	corpusGauge := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "findex", Name: "indexed_documents", Help: "Documents in the loaded snapshot"})
	registry.MustRegister(corpusGauge)

	telemetry.registry = registry
	telemetry.metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	telemetry.httpRequests = httpReq
	telemetry.httpErrors = httpErr
	telemetry.httpLatency = httpLatency
	telemetry.searchOps = searchOps
	telemetry.searchLatency = searchLatency
	telemetry.corpusGauge = corpusGauge

	telemetry.logger.Info("telemetry initialized", "prometheus", true)
	telemetry.httpRequests.Add(ctx, 0) // ensure metric is created eagerly
	return telemetry
}

func (t *telemetry) recordRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	if !t.enabled {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)
	t.httpRequests.Add(ctx, 1, attrs)
	t.httpLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if status >= http.StatusBadRequest {
		t.httpErrors.Add(ctx, 1, attrs)
	}
}

func (t *telemetry) recordSearch(ctx context.Context, hits int, duration time.Duration) {
	if !t.enabled {
		return
	}

	attrs := metric.WithAttributes(attribute.Int("hits", hits))
	t.searchOps.Add(ctx, 1, attrs)
	t.searchLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}

func (t *telemetry) observeCorpus(documents int) {
	if !t.enabled {
		return
	}
	t.corpusGauge.Set(float64(documents))
}

func (t *telemetry) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !t.enabled || t.registry == nil {
		respond(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	t.metricsHandler.ServeHTTP(w, r)
}

func withTelemetry(next http.Handler, telemetry *telemetry, logRequests bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r)
		duration := time.Since(start)

		telemetry.recordRequest(r.Context(), r.Method, r.URL.Path, recorder.status, duration)
		if logRequests && telemetry.logger != nil {
			telemetry.logger.Info("request completed", "method", r.Method, "path", r.URL.Path, "status", recorder.status, "duration_ms", duration.Milliseconds())
		}
	})
}
