// internal/notify/notifier_test.go
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronocost/internal/common/logger"
	"chronocost/internal/models"
)

type fakeSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{}, nil
}

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{}, nil
}

func testEvent() models.ProjectSubmittedEvent {
	return models.ProjectSubmittedEvent{
		ProjectID:   "p-1",
		UserID:      "u-1",
		ProjectName: "Ring Road",
		ProjectType: "Construction",
		RiskScore:   0.62,
	}
}

func TestNotifier_DisabledByDefault(t *testing.T) {
	sesClient, snsClient := &fakeSES{}, &fakeSNS{}
	n := New(Config{}, sesClient, snsClient, logger.NewTestLogger(t))

	results, err := n.ProjectSubmitted(context.Background(), testEvent())

	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, StatusDisabled, r.Status)
	}
	assert.Empty(t, sesClient.inputs)
	assert.Empty(t, snsClient.inputs)
}

func TestNotifier_PublishesEventAndEmail(t *testing.T) {
	sesClient, snsClient := &fakeSES{}, &fakeSNS{}
	n := New(Config{
		EventsEnabled: true,
		TopicARN:      "arn:aws:sns:ap-south-1:123456789012:projects",
		EmailEnabled:  true,
		FromEmail:     "noreply@chronocost.example",
		ToEmail:       "pmo@chronocost.example",
	}, sesClient, snsClient, logger.NewTestLogger(t))

	results, err := n.ProjectSubmitted(context.Background(), testEvent())
	require.NoError(t, err)

	for _, r := range results {
		assert.Equal(t, StatusSent, r.Status, r.Channel)
		assert.NotEmpty(t, r.ID)
	}

	require.Len(t, snsClient.inputs, 1)
	var published models.ProjectSubmittedEvent
	require.NoError(t, json.Unmarshal([]byte(*snsClient.inputs[0].Message), &published))
	assert.Equal(t, EventProjectSubmitted, published.Type)
	assert.Equal(t, "p-1", published.ProjectID)
	assert.NotEmpty(t, published.SubmittedAt)

	require.Len(t, sesClient.inputs, 1)
	assert.Equal(t, "Project submitted: Ring Road", *sesClient.inputs[0].Message.Subject.Data)
	assert.Contains(t, *sesClient.inputs[0].Message.Body.Text.Data, "risk score of 0.62")
}

func TestNotifier_ChannelFailure(t *testing.T) {
	snsClient := &fakeSNS{err: errors.New("throttled")}
	n := New(Config{EventsEnabled: true, TopicARN: "arn"}, nil, snsClient, logger.NewTestLogger(t))

	results, err := n.ProjectSubmitted(context.Background(), testEvent())

	assert.ErrorIs(t, err, ErrNotificationSendFailed)
	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Equal(t, StatusDisabled, results[1].Status)
}

func TestRenderTemplate(t *testing.T) {
	out := renderTemplate("{{a}} and {{missing}}!", map[string]interface{}{"a": 1})
	assert.Equal(t, "1 and !", out)
}
