package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cxd309/contagion-engine/internal/agent"
	"github.com/cxd309/contagion-engine/internal/engine"
	"github.com/cxd309/contagion-engine/internal/summary"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error      string                  `json:"error"`
	Code       string                  `json:"code"`
	Violations []engine.FieldViolation `json:"violations,omitempty"`
}

// SummaryResponse is the body of POST /v1/simulations/summary.
type SummaryResponse struct {
	Summary        summary.Summary                       `json:"summary"`
	InfectedSeries []int                                 `json:"infected_series"`
	StateSeries    []summary.StateCounts                 `json:"state_series"`
	FinalState     map[agent.HealthState][]summary.Point `json:"final_state"`
	Warnings       []engine.DegenerateRunWarning         `json:"warnings,omitempty"`
}

// BatchRequest is the body of POST /v1/simulations/batch.
type BatchRequest struct {
	Configs []engine.SimulationConfig `json:"configs" binding:"required,min=1,max=64"`
	// Concurrency caps parallel runs; it is further capped by the server setting.
	Concurrency int `json:"concurrency" binding:"gte=0"`
}

// BatchResponse is the body of a successful batch request.
type BatchResponse struct {
	Results []summary.Summary `json:"results"`
}

// Handlers serves the simulation API.
//
// Thread Safety: safe for concurrent use; every request runs its own simulation.
type Handlers struct {
	logger           *slog.Logger
	limits           engine.Limits
	batchConcurrency int
}

// NewHandlers creates Handlers. A nil logger means slog.Default().
func NewHandlers(logger *slog.Logger, limits engine.Limits, batchConcurrency int) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{logger: logger, limits: limits, batchConcurrency: batchConcurrency}
}

func (h *Handlers) engineOptions(logger *slog.Logger) []engine.Option {
	return []engine.Option{engine.WithLogger(logger), engine.WithLimits(h.limits)}
}

// HandleRun runs one simulation and returns the full History.
//
// Endpoint: POST /v1/simulations
//
// Response:
//
//	200 OK: engine.History
//	400 Bad Request: malformed body or invalid configuration
//	503 Service Unavailable: client went away before the run finished
func (h *Handlers) HandleRun(c *gin.Context) {
	logger := h.logger.With("request_id", requestID(c), "handler", "HandleRun")

	cfg := engine.DefaultSimulationConfig()
	if err := c.ShouldBindJSON(&cfg); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	history, err := h.run(c.Request.Context(), cfg, logger)
	if err != nil {
		writeRunError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// HandleSummary runs one simulation and returns only the derived views.
//
// Endpoint: POST /v1/simulations/summary
func (h *Handlers) HandleSummary(c *gin.Context) {
	logger := h.logger.With("request_id", requestID(c), "handler", "HandleSummary")

	cfg := engine.DefaultSimulationConfig()
	if err := c.ShouldBindJSON(&cfg); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	history, err := h.run(c.Request.Context(), cfg, logger)
	if err != nil {
		writeRunError(c, logger, err)
		return
	}

	resp := SummaryResponse{
		Summary:        summary.Summarize(history),
		InfectedSeries: summary.InfectedSeries(history),
		StateSeries:    summary.StateSeries(history),
		Warnings:       history.Warnings,
	}
	if n := history.Len(); n > 0 {
		resp.FinalState = summary.Partition(history.Snapshots[n-1])
	}
	c.JSON(http.StatusOK, resp)
}

// HandleBatch runs several independent simulations and returns their summaries
// in request order.
//
// Endpoint: POST /v1/simulations/batch
func (h *Handlers) HandleBatch(c *gin.Context) {
	logger := h.logger.With("request_id", requestID(c), "handler", "HandleBatch")

	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	concurrency := req.Concurrency
	if h.batchConcurrency > 0 && (concurrency == 0 || concurrency > h.batchConcurrency) {
		concurrency = h.batchConcurrency
	}
	logger.Info("Starting batch", "runs", len(req.Configs), "concurrency", concurrency)

	histories, err := engine.RunBatch(c.Request.Context(), req.Configs, concurrency, h.engineOptions(logger)...)
	if err != nil {
		writeRunError(c, logger, err)
		return
	}
	resp := BatchResponse{Results: make([]summary.Summary, len(histories))}
	for i, hist := range histories {
		resp.Results[i] = summary.Summarize(hist)
	}
	c.JSON(http.StatusOK, resp)
}

// HandleHealth reports liveness.
//
// Endpoint: GET /healthz
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) run(ctx context.Context, cfg engine.SimulationConfig, logger *slog.Logger) (engine.History, error) {
	sim, err := engine.New(cfg, h.engineOptions(logger)...)
	if err != nil {
		return engine.History{}, err
	}
	return sim.Run(ctx)
}

// writeRunError maps engine errors onto HTTP responses.
func writeRunError(c *gin.Context, logger *slog.Logger, err error) {
	var ce *engine.ConfigurationError
	switch {
	case errors.As(err, &ce):
		logger.Warn("Invalid simulation config", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:      err.Error(),
			Code:       "INVALID_CONFIG",
			Violations: ce.Violations,
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Warn("Simulation cancelled", "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Simulation cancelled", Code: "CANCELLED"})
	default:
		logger.Error("Simulation failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Simulation failed", Code: "INTERNAL"})
	}
}
