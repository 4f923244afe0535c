package respond

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/astraweather/internal/http/middlewarectx"
	"github.com/magabrotheeeer/astraweather/internal/models"
	services "github.com/magabrotheeeer/astraweather/internal/services/support"
	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Respond(ctx context.Context, adminUID, messageID, userUID, response string) (*models.SupportMessage, error) {
	args := m.Called(ctx, adminUID, messageID, userUID, response)
	msg, _ := args.Get(0).(*models.SupportMessage)
	return msg, args.Error(1)
}

func TestRespondHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	body := `{"messageId":"m-1","userId":"u-1","response":"fixed"}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "stores reply",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Respond", mock.Anything, "admin-1", "m-1", "u-1", "fixed").
					Return(&models.SupportMessage{ID: "m-2", Sender: models.SenderSupport, AdminEmail: "admin@example.com"}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"adminEmail":"admin@example.com"`,
		},
		{
			name: "missing fields",
			body: `{"messageId":"m-1"}`,
			setupMock: func(m *MockService) {
				m.On("Respond", mock.Anything, "admin-1", "m-1", "", "").
					Return(nil, fmt.Errorf("services.support.Respond: %w", services.ErrMissingFields)).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `missing messageId`,
		},
		{
			name: "unknown message",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Respond", mock.Anything, "admin-1", "m-1", "u-1", "fixed").Return(nil, repository.ErrMessageNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `message not found`,
		},
		{
			name: "store error",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Respond", mock.Anything, "admin-1", "m-1", "u-1", "fixed").Return(nil, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `failed to send response`,
		},
		{
			name:           "invalid json",
			body:           `[]`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/admin/support/respond", strings.NewReader(tt.body))
			req = req.WithContext(middlewarectx.WithUser(req.Context(), "admin-1", models.RoleAdmin))
			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
