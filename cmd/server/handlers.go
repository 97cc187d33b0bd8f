package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"trustgate/internal/monitoring"
	"trustgate/internal/runner"
	"trustgate/internal/store"
	"trustgate/internal/types"
)

type apiServer struct {
	runner  *runner.Runner
	store   *store.Store
	metrics *monitoring.Metrics
	logger  *monitoring.Logger
}

type evaluateRequest struct {
	Name       string `json:"name"`
	ModelURL   string `json:"model_url" binding:"required"`
	DatasetURL string `json:"dataset_url"`
	CodeURL    string `json:"code_url"`
	Revision   string `json:"revision"`
	Mode       string `json:"mode"`
}

type evaluateResponse struct {
	ID      string         `json:"id"`
	Status  runner.Status  `json:"status"`
	Report  *runner.Report `json:"report,omitempty"`
	Error   string         `json:"error,omitempty"`
	Elapsed string         `json:"elapsed"`
}

func (s *apiServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *apiServer) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.metrics.GetStats())
}

func (s *apiServer) evaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := runner.ModeConcurrent
	if req.Mode != "" {
		switch runner.Mode(req.Mode) {
		case runner.ModeSequential, runner.ModeConcurrent:
			mode = runner.Mode(req.Mode)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be sequential or concurrent"})
			return
		}
	}

	ref := types.ArtifactReference{
		Name:       req.Name,
		ModelURL:   req.ModelURL,
		DatasetURL: req.DatasetURL,
		CodeURL:    req.CodeURL,
		Revision:   req.Revision,
	}

	start := time.Now()
	outcomes := s.runner.RunBatch(c.Request.Context(), []types.ArtifactReference{ref}, mode)
	outcome := outcomes[0]
	elapsed := time.Since(start)
	s.metrics.RecordEvaluation(string(outcome.Status), elapsed)
	if outcome.Report != nil {
		s.logger.EvaluationLogger(req.ModelURL, outcome.Report.NetScore, outcome.Report.Admitted(), string(mode), elapsed)
	}

	id, err := s.store.SaveOutcome(c.Request.Context(), outcome)
	if err != nil {
		s.logger.Error("failed to persist outcome", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist evaluation"})
		return
	}

	status := http.StatusOK
	if outcome.Status == runner.StatusFailed {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, evaluateResponse{
		ID:      id,
		Status:  outcome.Status,
		Report:  outcome.Report,
		Error:   outcome.Error,
		Elapsed: elapsed.Round(time.Millisecond).String(),
	})
}

func (s *apiServer) listEvaluations(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 500"})
			return
		}
		limit = n
	}

	records, err := s.store.List(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list evaluations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list evaluations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluations": records, "count": len(records)})
}

func (s *apiServer) getEvaluation(c *gin.Context) {
	rec, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.logger.Error("failed to load evaluation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load evaluation"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "evaluation not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}
