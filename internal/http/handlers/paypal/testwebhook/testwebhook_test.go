package testwebhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	services "github.com/magabrotheeeer/astraweather/internal/services/subscription"
	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) SimulateActivation(ctx context.Context, userUID string) error {
	return m.Called(ctx, userUID).Error(0)
}

func TestTestWebhookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		uid            string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{name: "activated", body: `{"userId":"u-1"}`, uid: "u-1", expectedStatus: http.StatusOK, expectedBody: `"received":true`},
		{name: "missing user id", body: `{}`, uid: "", err: services.ErrMissingFields, expectedStatus: http.StatusBadRequest, expectedBody: "userId is required"},
		{name: "unknown user", body: `{"userId":"ghost"}`, uid: "ghost", err: repository.ErrUserNotFound, expectedStatus: http.StatusNotFound, expectedBody: "user not found"},
		{name: "store error", body: `{"userId":"u-1"}`, uid: "u-1", err: errors.New("db"), expectedStatus: http.StatusInternalServerError, expectedBody: "failed to activate subscription"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("SimulateActivation", mock.Anything, tt.uid).Return(tt.err).Once()

			req := httptest.NewRequest(http.MethodPost, "/paypal/test-webhook", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
