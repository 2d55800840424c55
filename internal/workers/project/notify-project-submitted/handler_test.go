// internal/workers/project/notify-project-submitted/handler_test.go
package notifyprojectsubmitted

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronocost/internal/common/logger"
	"chronocost/internal/common/validation"
	"chronocost/internal/notify"
)

// ==========================
// Test Helper Functions
// ==========================

type stubSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (s *stubSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	s.inputs = append(s.inputs, params)
	if s.err != nil {
		return nil, s.err
	}
	return &sns.PublishOutput{}, nil
}

func createTestInput() *Input {
	return &Input{
		ProjectID:   "p-1",
		UserID:      "user-1",
		ProjectName: "Ring Road",
		ProjectType: "Construction",
		RiskScore:   0.72,
	}
}

func newHandler(t *testing.T, cfg notify.Config, snsClient *stubSNS) *Handler {
	log := logger.NewTestLogger(t)
	return NewHandler(LoadConfig(), notify.New(cfg, nil, snsClient, log), log)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Sent(t *testing.T) {
	snsClient := &stubSNS{}
	h := newHandler(t, notify.Config{EventsEnabled: true, TopicARN: "arn:aws:sns:ap-south-1:1:projects"}, snsClient)

	output, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, notify.StatusSent, output.Status)
	assert.NotEmpty(t, output.NotificationID)
	assert.NotEmpty(t, output.SentAt)
	assert.Len(t, snsClient.inputs, 1)
}

func TestHandler_Execute_AllChannelsDisabled(t *testing.T) {
	h := newHandler(t, notify.Config{}, &stubSNS{})

	output, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, notify.StatusDisabled, output.Status)
	assert.NotEmpty(t, output.NotificationID)
	assert.Empty(t, output.SentAt)
}

func TestHandler_Execute_ChannelFailure(t *testing.T) {
	h := newHandler(t, notify.Config{EventsEnabled: true, TopicARN: "arn"}, &stubSNS{err: errors.New("throttled")})

	output, err := h.Execute(context.Background(), createTestInput())

	assert.Nil(t, output)
	assert.ErrorIs(t, err, notify.ErrNotificationSendFailed)
}

// ==========================
// Input Validation Tests
// ==========================

func TestGetInputSchema(t *testing.T) {
	schema := GetInputSchema()

	valid := map[string]interface{}{"projectId": "p-1", "userId": "u", "projectName": "x", "riskScore": 0.3}
	assert.True(t, validation.ValidateInput(valid, schema).Valid)

	outOfRange := map[string]interface{}{"projectId": "p-1", "userId": "u", "projectName": "x", "riskScore": 1.3}
	result := validation.ValidateInput(outOfRange, schema)
	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("riskScore"), result.GetErrorMessages())

	missing := map[string]interface{}{"userId": "u", "projectName": "x", "riskScore": 0.3}
	assert.True(t, validation.ValidateInput(missing, schema).HasErrors("projectId"))
}
