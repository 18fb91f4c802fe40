package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ovasconcelos/viveiro/internal/domain/models"
	"github.com/ovasconcelos/viveiro/internal/engine"
	"github.com/ovasconcelos/viveiro/internal/service/cycles"
)

// MetricsEngine is the read-side computation the handler exposes.
type MetricsEngine interface {
	ComputeCycleMetrics(ctx context.Context, cycleID string) (models.CycleMetrics, error)
	ComputeFarmMetrics(ctx context.Context) (models.FarmReport, error)
}

// CycleHandler adapts the cycle write service and the metrics engine to HTTP.
type CycleHandler struct {
	svc    *cycles.Service
	engine MetricsEngine
	logger *zap.Logger
}

// NewCycleHandler constructs the HTTP handler adapter.
func NewCycleHandler(svc *cycles.Service, eng MetricsEngine, logger *zap.Logger) *CycleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CycleHandler{svc: svc, engine: eng, logger: logger}
}

// StockPond creates a new production cycle.
func (h *CycleHandler) StockPond(c *gin.Context) {
	var req cycles.StockPondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cycle, err := h.svc.StockPond(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "failed to stock pond")
		return
	}

	c.JSON(http.StatusCreated, cycle)
}

// GetCycle returns one production cycle by ID.
func (h *CycleHandler) GetCycle(c *gin.Context) {
	cycle, err := h.svc.Cycle(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cycle not found"})
		return
	}

	c.JSON(http.StatusOK, cycle)
}

// Metrics computes and returns the consolidated metrics for one cycle.
func (h *CycleHandler) Metrics(c *gin.Context) {
	metrics, err := h.engine.ComputeCycleMetrics(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("failed computing cycle metrics", zap.String("cycle_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to compute metrics"})
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// RecordBiometry appends a growth sampling.
func (h *CycleHandler) RecordBiometry(c *gin.Context) {
	var req cycles.BiometryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sample, err := h.svc.RecordBiometry(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err, "failed to record biometry")
		return
	}

	c.JSON(http.StatusCreated, sample)
}

// RecordFeeding appends a feeding event.
func (h *CycleHandler) RecordFeeding(c *gin.Context) {
	var req cycles.FeedingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	event, err := h.svc.RecordFeeding(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err, "failed to record feeding")
		return
	}

	c.JSON(http.StatusCreated, event)
}

// RecordMortality appends a mortality event and decrements the population.
func (h *CycleHandler) RecordMortality(c *gin.Context) {
	var req cycles.MortalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	event, err := h.svc.RecordMortality(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err, "failed to record mortality")
		return
	}

	c.JSON(http.StatusCreated, event)
}

// RecordInput appends a fertilizer/probiotic application.
func (h *CycleHandler) RecordInput(c *gin.Context) {
	var req cycles.InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	event, err := h.svc.RecordInput(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err, "failed to record input application")
		return
	}

	c.JSON(http.StatusCreated, event)
}

// RecordHarvest validates and records a harvest, returning the
// reconciliation report.
func (h *CycleHandler) RecordHarvest(c *gin.Context) {
	var req cycles.HarvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	report, err := h.svc.RecordHarvest(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err, "failed to record harvest")
		return
	}

	c.JSON(http.StatusCreated, report)
}

// RecordOperationalCost appends a farm- or cycle-scoped cost entry.
func (h *CycleHandler) RecordOperationalCost(c *gin.Context) {
	var req cycles.OperationalCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.svc.RecordOperationalCost(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "failed to record operational cost")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// FarmReport computes the farm-wide report across active cycles.
func (h *CycleHandler) FarmReport(c *gin.Context) {
	report, err := h.engine.ComputeFarmMetrics(c.Request.Context())
	if err != nil {
		h.logger.Error("failed computing farm report", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to compute farm report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// respondError maps validation sentinels to 422 and everything else to 502,
// keeping the specific reason visible to the caller for rejected writes.
func (h *CycleHandler) respondError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, cycles.ErrInvalidArguments),
		errors.Is(err, cycles.ErrMortalityExceedsPop),
		errors.Is(err, cycles.ErrCycleNotActive),
		errors.Is(err, engine.ErrCycleCompleted),
		errors.Is(err, engine.ErrHarvestExceedsPop),
		errors.Is(err, engine.ErrPartialIsTotal),
		errors.Is(err, engine.ErrInvalidHarvest):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": logMsg})
	}
}
