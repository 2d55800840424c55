// internal/workers/project/create-project-record/handler.go
package createprojectrecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "chronocost/internal/common/errors"
	"chronocost/internal/common/logger"
	"chronocost/internal/common/metrics"
	"chronocost/internal/docstore"
	"chronocost/internal/models"
	"chronocost/internal/submission"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "create-project-record"
)

var (
	ErrMissingUser = errors.New("MISSING_USER_ID")
)

type Handler struct {
	config       *Config
	store        docstore.Store
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, store docstore.Store, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
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
		h.failJob(client, job, toStandardError(input, err))
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, ErrMissingUser
	}

	record := models.NewProjectRecord(input.UserID, input.Form, input.RiskScore, input.RiskMethod, nil)
	record.HistoricalProjectCount = input.HistoricalProjectCount
	record.HistoricalAvgDuration = input.HistoricalAvgDuration
	record.HistoricalAvgCost = input.HistoricalAvgCost
	record.HistoricalDelayFrequency = input.HistoricalDelayFrequency

	projectID := input.ProjectID
	if projectID == "" {
		projectID = uuid.New().String()
	}

	doc, err := h.store.CreateDocument(ctx, h.config.DatabaseID, h.config.ProjectsCollection, projectID, record)
	if err != nil {
		return nil, err
	}

	h.logger.Info("project record created", map[string]interface{}{
		"projectId":  doc.ID,
		"userId":     input.UserID,
		"riskScore":  input.RiskScore,
		"riskMethod": input.RiskMethod,
	})

	return &Output{
		ProjectID: doc.ID,
		Location:  submission.ProjectLocation(doc.ID),
		CreatedAt: doc.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func toStandardError(input Input, err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrMissingUser):
		return apperrors.NewInvalidJobVariablesError(err)
	case errors.Is(err, docstore.ErrDuplicateDocument):
		return apperrors.NewDuplicateDocumentError(input.ProjectID)
	default:
		return apperrors.NewDocumentCreateFailedError(err)
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
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":    job.Key,
		"projectId": output.ProjectID,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *apperrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
