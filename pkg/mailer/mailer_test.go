package mailer

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresSettings(t *testing.T) {
	_, err := New(Config{Host: "smtp.example.com", Port: "587"})
	assert.Error(t, err)

	_, err = New(Config{Host: "smtp.example.com", Port: "587", User: "u", Pass: "p"})
	assert.Error(t, err)

	m, err := New(Config{Host: "smtp.example.com", Port: "587", User: "u", Pass: "p", Sender: "noreply@example.com"})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestSendEmail_BuildsMessage(t *testing.T) {
	m, err := New(Config{Host: "smtp.example.com", Port: "587", User: "u", Pass: "p", Sender: "noreply@example.com"})
	require.NoError(t, err)

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		assert.Equal(t, "noreply@example.com", from)
		return nil
	}

	require.NoError(t, m.SendEmail("owner@example.com", "Subscription paused", "<p>Your plan is paused.</p>"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"owner@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Content-Type: text/html")
	assert.Contains(t, string(gotMsg), "Subject: Subscription paused")
}

func TestSendEmail_Errors(t *testing.T) {
	m, err := New(Config{Host: "h", Port: "25", User: "u", Pass: "p", Sender: "s@example.com"})
	require.NoError(t, err)
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }

	assert.Error(t, m.SendEmail("", "subject", "body"))
	assert.Error(t, m.SendEmail("a@example.com", "", "body"))

	err = m.SendEmail("a@example.com", "subject", "plain body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestBuildMessage_PlainText(t *testing.T) {
	msg := string(buildMessage("s@example.com", "r@example.com", "Hi", "plain"))
	assert.Contains(t, msg, "Content-Type: text/plain")
}
