// internal/workers/project/notify-project-submitted/handler.go
package notifyprojectsubmitted

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "chronocost/internal/common/errors"
	"chronocost/internal/common/logger"
	"chronocost/internal/common/metrics"
	"chronocost/internal/common/validation"
	"chronocost/internal/models"
	"chronocost/internal/notify"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "notify-project-submitted"
)

// Notifier sends the project submitted announcements.
type Notifier interface {
	ProjectSubmitted(ctx context.Context, event models.ProjectSubmittedEvent) ([]models.Notification, error)
}

type Handler struct {
	config       *Config
	notifier     Notifier
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, notifier Notifier, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		notifier:     notifier,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err != nil {
		h.failJob(client, job, apperrors.NewInvalidJobVariablesError(err))
		return
	}
	if result := validation.ValidateInput(raw, GetInputSchema()); !result.Valid {
		h.failJob(client, job, apperrors.NewInvalidJobVariablesError(
			fmt.Errorf("%s", strings.Join(result.GetErrorMessages(), "; "))))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewInvalidJobVariablesError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, apperrors.NewNotificationSendFailedError("project.submitted", err))
		return
	}

	h.completeJob(client, job, output)
}

// execute reports "sent" when any channel delivered, "disabled" when no
// channel is configured. A failing channel fails the job so the engine
// retries it.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	notes, err := h.notifier.ProjectSubmitted(ctx, models.ProjectSubmittedEvent{
		ProjectID:   input.ProjectID,
		UserID:      input.UserID,
		ProjectName: input.ProjectName,
		ProjectType: input.ProjectType,
		RiskScore:   input.RiskScore,
	})
	if err != nil {
		return nil, err
	}

	output := &Output{Status: notify.StatusDisabled}
	for _, n := range notes {
		if n.Status == notify.StatusSent {
			output.NotificationID = n.ID
			output.Status = notify.StatusSent
			output.SentAt = n.SentAt
			break
		}
	}
	if output.NotificationID == "" {
		if len(notes) > 0 {
			output.NotificationID = notes[0].ID
		} else {
			output.NotificationID = uuid.New().String()
		}
	}

	h.logger.Info("project notification processed", map[string]interface{}{
		"projectId":      input.ProjectID,
		"notificationId": output.NotificationID,
		"status":         output.Status,
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
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *apperrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
