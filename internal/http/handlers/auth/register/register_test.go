package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, email, name, password string) (string, error) {
	args := m.Called(ctx, email, name, password)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	valid := Request{Email: "jane@example.com", Name: "Jane", Password: "password123"}

	tests := []struct {
		name           string
		requestBody    any
		mockUID        string
		mockErr        error
		callService    bool
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:           "valid registration",
			requestBody:    valid,
			mockUID:        "6a1d7c1e-6f07-4a8e-9d88-3b1f3c1f0a11",
			callService:    true,
			wantStatusCode: http.StatusCreated,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name:           "invalid email",
			requestBody:    Request{Email: "nope", Name: "Jane", Password: "password123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field Email must be a valid email",
		},
		{
			name:           "duplicate email",
			requestBody:    valid,
			mockErr:        repository.ErrUserExists,
			callService:    true,
			wantStatusCode: http.StatusConflict,
			wantStatus:     "Error",
			wantError:      "user already exists",
		},
		{
			name:           "store failure",
			requestBody:    valid,
			mockErr:        errors.New("db down"),
			callService:    true,
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "failed to register user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callService {
				svc.On("Register", mock.Anything, valid.Email, valid.Name, valid.Password).
					Return(tt.mockUID, tt.mockErr).Once()
			}
			handler := New(newNoopLogger(), svc)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(v)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data, ok := got["data"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, tt.mockUID, data["uid"])
			}
			svc.AssertExpectations(t)
		})
	}
}
