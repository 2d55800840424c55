// internal/notify/notifier.go

// Package notify announces newly stored projects over SNS and SES.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"

	awsclients "chronocost/internal/common/aws"
	"chronocost/internal/common/logger"
	"chronocost/internal/models"
)

const (
	EventProjectSubmitted = "project.submitted"

	ChannelEvent = "event"
	ChannelEmail = "email"

	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

var ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")

type Config struct {
	EventsEnabled bool
	TopicARN      string
	EmailEnabled  bool
	FromEmail     string
	ToEmail       string
}

const (
	emailSubject = "Project submitted: {{projectName}}"
	emailBody    = "Project {{projectName}} ({{projectType}}) was submitted with a risk score of {{riskScore}}.\nReference: {{projectId}}"
)

type Notifier struct {
	cfg Config
	ses awsclients.SESService
	sns awsclients.SNSService
	log logger.Logger
	now func() time.Time
}

// New builds a notifier. Either client may be nil when its channel is
// disabled.
func New(cfg Config, sesClient awsclients.SESService, snsClient awsclients.SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		cfg: cfg,
		ses: sesClient,
		sns: snsClient,
		log: log.WithFields(map[string]interface{}{"component": "notifier"}),
		now: time.Now,
	}
}

// ProjectSubmitted publishes the event and sends the confirmation email.
// It returns one Notification per channel; the error is non-nil when any
// enabled channel failed.
func (n *Notifier) ProjectSubmitted(ctx context.Context, event models.ProjectSubmittedEvent) ([]models.Notification, error) {
	event.Type = EventProjectSubmitted
	if event.SubmittedAt == "" {
		event.SubmittedAt = n.now().UTC().Format(time.RFC3339)
	}

	results := []models.Notification{
		n.deliver(ctx, ChannelEvent, n.cfg.EventsEnabled, event, n.publishEvent),
		n.deliver(ctx, ChannelEmail, n.cfg.EmailEnabled, event, n.sendEmail),
	}

	var failed []string
	for _, r := range results {
		if r.Status == StatusFailed {
			failed = append(failed, r.Channel)
		}
	}
	if len(failed) > 0 {
		return results, fmt.Errorf("%w: %s", ErrNotificationSendFailed, strings.Join(failed, ","))
	}
	return results, nil
}

func (n *Notifier) deliver(
	ctx context.Context,
	channel string,
	enabled bool,
	event models.ProjectSubmittedEvent,
	send func(context.Context, models.ProjectSubmittedEvent) error,
) models.Notification {
	note := models.Notification{
		ID:        uuid.New().String(),
		ProjectID: event.ProjectID,
		UserID:    event.UserID,
		Type:      EventProjectSubmitted,
		Channel:   channel,
		Status:    StatusDisabled,
		Payload:   eventPayload(event),
		CreatedAt: n.now().UTC().Format(time.RFC3339),
	}
	if !enabled {
		return note
	}

	if err := send(ctx, event); err != nil {
		n.log.Error("Notification failed", map[string]interface{}{
			"channel":   channel,
			"projectId": event.ProjectID,
			"error":     err.Error(),
		})
		note.Status = StatusFailed
		return note
	}

	note.Status = StatusSent
	note.SentAt = n.now().UTC().Format(time.RFC3339)
	return note
}

func (n *Notifier) publishEvent(ctx context.Context, event models.ProjectSubmittedEvent) error {
	if n.sns == nil {
		return errors.New("sns client not configured")
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.cfg.TopicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(EventProjectSubmitted)},
		},
	})
	return err
}

func (n *Notifier) sendEmail(ctx context.Context, event models.ProjectSubmittedEvent) error {
	if n.ses == nil {
		return errors.New("ses client not configured")
	}
	data := eventPayload(event)
	body := renderTemplate(emailBody, data)
	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{n.cfg.ToEmail}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(renderTemplate(emailSubject, data))},
			Body:    &types.Body{Text: &types.Content{Data: aws.String(body)}},
		},
		Source: aws.String(n.cfg.FromEmail),
	})
	return err
}

func eventPayload(event models.ProjectSubmittedEvent) map[string]interface{} {
	return map[string]interface{}{
		"projectId":   event.ProjectID,
		"projectName": event.ProjectName,
		"projectType": event.ProjectType,
		"riskScore":   fmt.Sprintf("%.2f", event.RiskScore),
	}
}

// renderTemplate fills {{key}} placeholders and drops unknown ones.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		value := ""
		if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}
