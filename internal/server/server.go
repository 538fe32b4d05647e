package server

import (
	"bytes"
	"embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/rebalance-simulator/internal/chart"
	"github.com/iwvelando/rebalance-simulator/internal/config"
	"github.com/iwvelando/rebalance-simulator/internal/forecast"
	"github.com/iwvelando/rebalance-simulator/internal/optimizer"
	"github.com/iwvelando/rebalance-simulator/internal/report"
	"github.com/iwvelando/rebalance-simulator/pkg/constants"
	"github.com/iwvelando/rebalance-simulator/pkg/output"
	"github.com/iwvelando/rebalance-simulator/pkg/probe"
	"github.com/iwvelando/rebalance-simulator/pkg/simulation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed static/*
var staticFiles embed.FS

const (
	errorKindInvalidWeights = "invalid_weights"
	errorKindInvalidReturn  = "invalid_return"
	errorKindInvalidInput   = "invalid_input"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	sessions      *sessionStore
}

type forecastOptions struct {
	Optimize bool
}

// NewHandler constructs the HTTP handler that serves the web UI and simulation API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, maxChartSessions int, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	if maxChartSessions <= 0 {
		maxChartSessions = constants.DefaultMaxChartSessions
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		sessions:      newSessionStore(logger, maxChartSessions),
	}

	mux := http.NewServeMux()

	// Simulation from an uploaded YAML configuration
	mux.HandleFunc("/api/forecast", h.handleForecast)

	// Simulation from the web form
	mux.HandleFunc("/api/simulate", h.handleSimulate)
	mux.HandleFunc("/api/optimize", h.handleOptimize)

	// Chart sessions and pointer probing
	mux.HandleFunc("/api/chart", h.handleChart)
	mux.HandleFunc("/api/chart/", h.handleChartImage)
	mux.HandleFunc("/api/probe", h.handleProbe)

	mux.HandleFunc("/api/allocation", h.handleAllocation)
	mux.HandleFunc("/api/report", h.handleReport)

	// Config serialization endpoint for form downloads
	mux.HandleFunc("/api/export", h.handleConfigExport)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	fileServer := http.FileServer(http.FS(sub))
	mux.Handle("/", fileServer)

	return mux
}

type seriesPayload struct {
	X           []float64 `json:"x"`
	Total       []float64 `json:"total"`
	Contributed []float64 `json:"contributed"`
	Dates       []string  `json:"dates,omitempty"`
}

type forecastResponse struct {
	Name       string             `json:"name"`
	Series     seriesPayload      `json:"series"`
	Metrics    forecast.Metrics   `json:"metrics"`
	Assets     []simulation.Asset `json:"assets"`
	CSV        string             `json:"csv"`
	Warnings   []string           `json:"warnings,omitempty"`
	Duration   string             `json:"duration"`
	ConfigYAML string             `json:"configYaml,omitempty"`
}

type chartResponse struct {
	ID          string        `json:"id"`
	ContentType string        `json:"contentType"`
	Image       string        `json:"image"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Plot        probe.Rect    `json:"plot"`
	Series      seriesPayload `json:"series"`
}

type probeRequest struct {
	ID    string  `json:"id"`
	PX    float64 `json:"px"`
	PY    float64 `json:"py"`
	Leave bool    `json:"leave"`
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize))
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing configuration file")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleForecast"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err))
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.runForecast(w, cfg, start, "server.handleForecast", forecastOptions{Optimize: cfg.Optimizer != nil})
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSimulate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	cfg, ok := h.decodeConfiguration(w, r, op)
	if !ok {
		return
	}
	h.runForecast(w, cfg, start, op, forecastOptions{})
}

func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleOptimize"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	cfg, ok := h.decodeConfiguration(w, r, op)
	if !ok {
		return
	}
	if cfg.Optimizer == nil {
		h.respondKind(w, http.StatusBadRequest, "missing optimizer settings", errorKindInvalidInput, op)
		return
	}
	h.runForecast(w, cfg, start, op, forecastOptions{Optimize: true})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleChart(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleChart"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	cfg, ok := h.decodeConfiguration(w, r, op)
	if !ok {
		return
	}
	fc, ok := h.forecast(w, cfg, op)
	if !ok {
		return
	}

	opts := chart.Options{Width: cfg.Chart.Width, Height: cfg.Chart.Height, Format: cfg.Chart.Format}
	var buf bytes.Buffer
	geometry, err := chart.Render(&buf, fc.Series, opts)
	if err != nil {
		h.respondKind(w, http.StatusBadRequest, err.Error(), errorKindInvalidInput, op)
		return
	}
	plot, _ := geometry.PlotRect()
	session := h.sessions.create(fc.Series, geometry, opts)

	h.logger.Info("chart rendered",
		zap.String("op", op),
		zap.String("id", session.id),
		zap.Int("samples", fc.Series.Len()),
		zap.Int("sessions", h.sessions.len()),
	)

	h.writeJSON(w, http.StatusOK, chartResponse{
		ID:          session.id,
		ContentType: opts.ContentType(),
		Image:       base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:       cfg.Chart.Width,
		Height:      cfg.Chart.Height,
		Plot:        plot,
		Series:      buildSeries(fc),
	})
}

func (h *handler) handleChartImage(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleChartImage"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/chart/")
	id = strings.TrimSuffix(strings.TrimSuffix(id, ".png"), ".svg")
	session, ok := h.sessions.get(id)
	if !ok {
		h.respondKind(w, http.StatusNotFound, "unknown chart session", errorKindInvalidInput, op)
		return
	}

	image, err := session.render()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err), op)
		return
	}
	w.Header().Set("Content-Type", session.opts.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(image); err != nil {
		h.logger.Error("failed to write chart", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleProbe(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProbe"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var req probeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondKind(w, http.StatusBadRequest, fmt.Sprintf("failed to decode probe event: %v", err), errorKindInvalidInput, op)
		return
	}

	session, ok := h.sessions.get(req.ID)
	if !ok {
		h.respondKind(w, http.StatusNotFound, "unknown chart session", errorKindInvalidInput, op)
		return
	}

	var state probe.OverlayState
	if req.Leave {
		state = session.leave()
	} else {
		state = session.move(req.PX, req.PY)
	}
	h.writeJSON(w, http.StatusOK, state)
}

func (h *handler) handleAllocation(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAllocation"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	cfg, ok := h.decodeConfiguration(w, r, op)
	if !ok {
		return
	}
	if err := simulation.Validate(cfg.Simulation.Assets); err != nil {
		h.respondSimulationError(w, err, op)
		return
	}

	image, err := chart.RenderAllocation(cfg.Simulation.Assets, cfg.Chart.Width*2/3, cfg.Chart.Height*2/3)
	if err != nil {
		h.respondKind(w, http.StatusBadRequest, err.Error(), errorKindInvalidInput, op)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(image); err != nil {
		h.logger.Error("failed to write allocation chart", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	cfg, ok := h.decodeConfiguration(w, r, op)
	if !ok {
		return
	}
	var optimized *optimizer.Result
	if cfg.Optimizer != nil {
		if optimized, ok = h.optimize(w, cfg, op); !ok {
			return
		}
	}
	fc, ok := h.forecast(w, cfg, op)
	if !ok {
		return
	}
	if optimized != nil {
		optimized.Apply(&fc)
	}

	pdf, err := report.Generate(h.logger, fc, report.Options{})
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to generate report: %v", err), op)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="rebalance-report.pdf"`)
	if _, err := w.Write(pdf); err != nil {
		h.logger.Error("failed to write report", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	cfg, ok := h.decodeConfiguration(w, r, op)
	if !ok {
		return
	}
	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) runForecast(w http.ResponseWriter, cfg *config.Configuration, start time.Time, op string, opts forecastOptions) {
	warnings := cfg.ValidateConfiguration()

	var optimized *optimizer.Result
	if opts.Optimize {
		var ok bool
		if optimized, ok = h.optimize(w, cfg, op); !ok {
			return
		}
	}

	fc, ok := h.forecast(w, cfg, op)
	if !ok {
		return
	}
	if optimized != nil {
		optimized.Apply(&fc)
	}

	configYAML, err := yaml.Marshal(cfg)
	if err != nil {
		h.logger.Warn("failed to marshal configuration",
			zap.String("op", op),
			zap.Error(err),
		)
	}

	elapsed := time.Since(start)
	response := forecastResponse{
		Name:       fc.Name,
		Series:     buildSeries(fc),
		Metrics:    fc.Metrics,
		Assets:     fc.Input.Assets,
		CSV:        output.CsvString(fc, constants.MonthsPerYear),
		Warnings:   warnings,
		Duration:   elapsed.String(),
		ConfigYAML: string(configYAML),
	}

	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.String("name", response.Name),
		zap.Int("samples", len(response.Series.X)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) optimize(w http.ResponseWriter, cfg *config.Configuration, op string) (*optimizer.Result, bool) {
	runner, err := optimizer.NewRunner(h.logger, cfg)
	if err != nil {
		h.respondKind(w, http.StatusBadRequest, fmt.Sprintf("failed to initialize optimizer: %v", err), errorKindInvalidInput, op)
		return nil, false
	}
	result, err := runner.Run()
	if err != nil {
		if errors.Is(err, simulation.ErrInvalidWeights) || errors.Is(err, simulation.ErrInvalidReturn) {
			h.respondSimulationError(w, err, op)
			return nil, false
		}
		h.respondKind(w, http.StatusBadRequest, fmt.Sprintf("optimizer execution failed: %v", err), errorKindInvalidInput, op)
		return nil, false
	}
	return result, true
}

func (h *handler) forecast(w http.ResponseWriter, cfg *config.Configuration, op string) (forecast.Forecast, bool) {
	fc, err := forecast.GetForecast(h.logger, *cfg)
	if err != nil {
		h.respondSimulationError(w, err, op)
		return forecast.Forecast{}, false
	}
	return fc, true
}

// decodeConfiguration reads a JSON configuration body. An empty body yields the
// default form; keys absent from the body keep their form defaults.
func (h *handler) decodeConfiguration(w http.ResponseWriter, r *http.Request, op string) (*config.Configuration, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	cfg := config.FormDefaults()
	if err := json.NewDecoder(r.Body).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondKind(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), errorKindInvalidInput, op)
			return nil, false
		}
		h.respondKind(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), errorKindInvalidInput, op)
		return nil, false
	}
	cfg.ApplyDefaults()
	return cfg, true
}

func buildSeries(fc forecast.Forecast) seriesPayload {
	if fc.Series == nil {
		return seriesPayload{}
	}
	return seriesPayload{
		X:           fc.Series.X,
		Total:       fc.Series.Total,
		Contributed: fc.Series.Contributed,
		Dates:       fc.Dates,
	}
}

// respondSimulationError maps simulator failures to the messages shown next to
// the form.
func (h *handler) respondSimulationError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, simulation.ErrInvalidWeights):
		h.respondKind(w, http.StatusBadRequest, "Target weights must sum to 100%.", errorKindInvalidWeights, op)
	case errors.Is(err, simulation.ErrInvalidReturn):
		h.respondKind(w, http.StatusBadRequest, "Annual returns must be at least -100%.", errorKindInvalidReturn, op)
	default:
		h.respondKind(w, http.StatusBadRequest, err.Error(), errorKindInvalidInput, op)
	}
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondErrorWithOp(w, status, msg, "server.handleForecast")
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.respondKind(w, status, msg, "", op)
}

func (h *handler) respondKind(w http.ResponseWriter, status int, msg, kind, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("kind", kind),
		zap.String("error", msg),
	)

	payload := map[string]string{"error": msg}
	if kind != "" {
		payload["kind"] = kind
	}
	h.writeJSON(w, status, payload)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
