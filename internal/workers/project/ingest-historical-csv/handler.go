// internal/workers/project/ingest-historical-csv/handler.go
package ingesthistoricalcsv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "chronocost/internal/common/errors"
	"chronocost/internal/common/logger"
	"chronocost/internal/common/metrics"
	"chronocost/internal/common/validation"
	"chronocost/internal/historical"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "ingest-historical-csv"
)

var (
	ErrCSVTooLarge = errors.New("CSV_TOO_LARGE")
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
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
	if result := validation.ValidateInput(input, GetInputSchema()); !result.Valid {
		h.failJob(client, job, apperrors.NewInvalidJobVariablesError(
			fmt.Errorf("%s", strings.Join(result.GetErrorMessages(), "; "))))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, toStandardError(input, err))
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if h.config.MaxBytes > 0 && len(input.CSVContent) > h.config.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrCSVTooLarge, len(input.CSVContent), h.config.MaxBytes)
	}

	rows, err := historical.IngestReader(input.ContentType, strings.NewReader(input.CSVContent))
	if err != nil {
		return nil, err
	}

	h.logger.Info("historical data ingested", map[string]interface{}{
		"rows":        len(rows),
		"contentType": input.ContentType,
	})

	return &Output{HistoricalRows: rows, RowCount: len(rows)}, nil
}

func toStandardError(input Input, err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, historical.ErrInvalidFileType):
		return apperrors.NewInvalidFileTypeError(input.ContentType)
	default:
		return apperrors.NewCSVReadFailedError(err)
	}
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
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":   job.Key,
		"rowCount": output.RowCount,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *apperrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
