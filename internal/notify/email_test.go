package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediplus/clinic-platform/pkg/logging"
)

func TestNewSendGridSenderRequiresAPIKey(t *testing.T) {
	logger := logging.New("error")

	assert.Nil(t, NewSendGridSender(SendGridConfig{}, logger))

	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "SG.test",
		FromEmail: "noreply@mediplus.example",
	}, logger)
	require.NotNil(t, sender)
	assert.Equal(t, "MediPlus", sender.fromName)
}

func TestNewSESSenderRequiresClient(t *testing.T) {
	logger := logging.New("error")
	assert.Nil(t, NewSESSender(nil, SESConfig{FromEmail: "noreply@mediplus.example"}, logger))
}

func TestStubEmailSenderNeverFails(t *testing.T) {
	sender := NewStubEmailSender(logging.New("error"))
	err := sender.Send(context.Background(), EmailMessage{
		To:      "patient@example.com",
		Subject: "Appointment confirmed",
		Body:    "See you Monday.",
	})
	require.NoError(t, err)
}
