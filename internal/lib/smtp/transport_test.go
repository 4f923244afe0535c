package smtp

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/magabrotheeeer/astraweather/internal/config"
)

type dialerSpy struct {
	sent []*gomail.Message
	err  error
}

func (d *dialerSpy) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestMailer_Send(t *testing.T) {
	spy := &dialerSpy{}
	mailer := NewMailerWithDialer("noreply@astraweather.app", spy)

	err := mailer.Send("user@example.com", "Subscription expired", "<p>Hello</p>")
	require.NoError(t, err)
	require.Len(t, spy.sent, 1)

	msg := spy.sent[0]
	assert.Equal(t, []string{"noreply@astraweather.app"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"user@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Subscription expired"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/html")
	assert.Contains(t, buf.String(), "<p>Hello</p>")
}

func TestMailer_SendErrors(t *testing.T) {
	tests := []struct {
		name    string
		to      string
		dialErr error
		wantErr error
	}{
		{
			name:    "empty recipient",
			to:      "",
			wantErr: ErrNoRecipient,
		},
		{
			name:    "dial failure",
			to:      "user@example.com",
			dialErr: errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &dialerSpy{err: tt.dialErr}
			mailer := NewMailerWithDialer("noreply@astraweather.app", spy)

			err := mailer.Send(tt.to, "subject", "body")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "smtp.Send")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, spy.sent)
		})
	}
}

func TestNewMailer(t *testing.T) {
	mailer := NewMailer(config.SMTP{Host: "smtp.example.com", Port: 587, From: "noreply@astraweather.app"})

	dialer, ok := mailer.dialer.(*gomail.Dialer)
	require.True(t, ok)
	assert.Equal(t, "smtp.example.com", dialer.Host)
	assert.Equal(t, 587, dialer.Port)
	assert.Equal(t, "noreply@astraweather.app", mailer.from)
}
