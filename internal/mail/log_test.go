package mail

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeHo89/backend-template/pkg/logger"
)

func TestLogNotifier_SendEmailConfirmation(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(logger.NewWithWriter("account-service", "info", &buf))

	err := n.SendEmailConfirmation(context.Background(), "alice@example.com", "tok-123")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "alice@example.com")
	assert.Contains(t, buf.String(), "tok-123")
}

func TestLogNotifier_SendPasswordReset(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(logger.NewWithWriter("account-service", "info", &buf))

	err := n.SendPasswordReset(context.Background(), "alice@example.com", "tok-456")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "password reset requested")
	assert.Contains(t, buf.String(), "tok-456")
}
