// internal/workers/project/estimate-risk/handler.go
package estimaterisk

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "chronocost/internal/common/errors"
	"chronocost/internal/common/logger"
	"chronocost/internal/common/metrics"
	"chronocost/internal/historical"
	"chronocost/internal/risk"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "estimate-risk"
)

type Handler struct {
	config       *Config
	estimator    *risk.Estimator
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		estimator:    risk.NewEstimator(config.Weights),
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewInvalidJobVariablesError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, apperrors.NewInvalidJobVariablesError(err))
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	// the historical branch ignores the project type
	if input.Form.ProjectType == "" && len(input.HistoricalRows) == 0 {
		return nil, fmt.Errorf("form.projectType is required without historical rows")
	}

	estimate := h.estimator.Estimate(risk.Input{
		ProjectType: input.Form.ProjectType,
		Terrain:     input.Form.Terrain,
	}, input.HistoricalRows)

	output := &Output{
		RiskScore:  estimate.Score,
		RiskMethod: string(estimate.Method),
	}

	if len(input.HistoricalRows) > 0 {
		summary, err := historical.Summarize(input.HistoricalRows)
		if err != nil {
			return nil, err
		}
		count := summary.ProjectCount
		output.HistoricalProjectCount = &count
		output.HistoricalAvgDuration = historical.Nullable(summary.AverageDuration)
		output.HistoricalAvgCost = historical.Nullable(summary.AverageCost)
		output.HistoricalDelayFrequency = historical.Nullable(summary.DelayFrequency)
	}

	metrics.RiskScores.WithLabelValues(output.RiskMethod).Observe(output.RiskScore)
	h.logger.Info("risk estimated", map[string]interface{}{
		"projectType": input.Form.ProjectType,
		"terrain":     input.Form.Terrain,
		"riskScore":   output.RiskScore,
		"riskMethod":  output.RiskMethod,
		"rows":        len(input.HistoricalRows),
	})

	return output, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *apperrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
