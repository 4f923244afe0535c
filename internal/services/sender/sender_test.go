package services

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/astraweather/internal/lib/smtp"
	"github.com/magabrotheeeer/astraweather/internal/models"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestSenderService_SendUrgentSupport(t *testing.T) {
	msg := models.UrgentSupportNotification{
		UserID:    "u-1",
		Email:     "jane@example.com",
		Name:      "Jane <script>",
		Message:   "Radar is broken",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("success", func(t *testing.T) {
		mailer := new(MockMailer)
		mailer.On("Send", "support@astraweather.app", "[URGENT] Support request from Jane <script>",
			mock.MatchedBy(func(body string) bool {
				return assert.Contains(t, body, "Radar is broken") &&
					assert.Contains(t, body, "Jane &lt;script&gt;") &&
					assert.NotContains(t, body, "<script>")
			})).Return(nil).Once()

		svc := NewSenderService(newNoopLogger(), mailer, "support@astraweather.app")
		require.NoError(t, svc.SendUrgentSupport(mustJSON(t, msg)))
		mailer.AssertExpectations(t)
	})

	t.Run("mailer error is returned for requeue", func(t *testing.T) {
		mailer := new(MockMailer)
		mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

		svc := NewSenderService(newNoopLogger(), mailer, "support@astraweather.app")
		assert.Error(t, svc.SendUrgentSupport(mustJSON(t, msg)))
	})

	t.Run("malformed body is dropped", func(t *testing.T) {
		mailer := new(MockMailer)
		svc := NewSenderService(newNoopLogger(), mailer, "support@astraweather.app")
		assert.NoError(t, svc.SendUrgentSupport([]byte("{not json")))
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSenderService_SendSubscriptionExpired(t *testing.T) {
	end := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
	msg := models.SubscriptionExpiredNotification{
		UID:             "u-1",
		Email:           "jane@example.com",
		Name:            "Jane",
		SubscriptionEnd: &end,
	}

	t.Run("success", func(t *testing.T) {
		mailer := new(MockMailer)
		mailer.On("Send", "jane@example.com", "Your AstraWeather Premium subscription has ended",
			mock.MatchedBy(func(body string) bool {
				return assert.Contains(t, body, "February 27, 2026")
			})).Return(nil).Once()

		svc := NewSenderService(newNoopLogger(), mailer, "support@astraweather.app")
		require.NoError(t, svc.SendSubscriptionExpired(mustJSON(t, msg)))
		mailer.AssertExpectations(t)
	})

	t.Run("real mailer rejects empty recipient", func(t *testing.T) {
		noEmail := msg
		noEmail.Email = ""
		mailer := smtp.NewMailerWithDialer("noreply@astraweather.app", nil)

		svc := NewSenderService(newNoopLogger(), mailer, "support@astraweather.app")
		err := svc.SendSubscriptionExpired(mustJSON(t, noEmail))
		assert.ErrorIs(t, err, smtp.ErrNoRecipient)
	})
}
