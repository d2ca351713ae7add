package mail

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
)

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("noreply@sahaya.org", "a@x.com", "Reset Password", "Click on this link")
	require.NoError(t, err)

	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, rcpts)
	assert.Equal(t, []string{"Reset Password"}, msg.GetGenHeader(gomail.HeaderSubject))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Click on this link")
}

func TestBuildMessage_InvalidRecipient(t *testing.T) {
	_, err := buildMessage("noreply@sahaya.org", "not an address", "s", "b")
	assert.Error(t, err)
}

func TestNewSMTPDispatcher(t *testing.T) {
	d, err := NewSMTPDispatcher(SMTPConfig{Host: "smtp.example.org", Port: 465, Username: "u", Password: "p", From: "u@example.org"})
	require.NoError(t, err)
	assert.Equal(t, "u@example.org", d.from)

	_, err = NewSMTPDispatcher(SMTPConfig{Host: "", Port: 465})
	assert.Error(t, err)
}

func TestLogDispatcher_DoesNotLogBody(t *testing.T) {
	var buf bytes.Buffer
	d := LogDispatcher{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	require.NoError(t, d.Send(context.Background(), "a@x.com", "Reset Password", "secret-token-link"))
	assert.Contains(t, buf.String(), "a@x.com")
	assert.NotContains(t, buf.String(), "secret-token-link")
}
