package status

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/astraweather/internal/http/middlewarectx"
	"github.com/magabrotheeeer/astraweather/internal/models"
	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Status(ctx context.Context, userUID string) (*models.SubscriptionInfo, error) {
	args := m.Called(ctx, userUID)
	info, _ := args.Get(0).(*models.SubscriptionInfo)
	return info, args.Error(1)
}

func TestStatusHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	end := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		info           *models.SubscriptionInfo
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "entitled subscriber",
			info:           &models.SubscriptionInfo{IsPremium: true, Entitled: true, SubscriptionStatus: "ACTIVE", SubscriptionEnd: &end},
			expectedStatus: http.StatusOK,
			expectedBody:   `"entitled":true`,
		},
		{name: "user missing", err: repository.ErrUserNotFound, expectedStatus: http.StatusNotFound, expectedBody: "user not found"},
		{name: "store error", err: errors.New("db"), expectedStatus: http.StatusInternalServerError, expectedBody: "failed to get subscription status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Status", mock.Anything, "u-1").Return(tt.info, tt.err).Once()

			req := httptest.NewRequest(http.MethodGet, "/subscription", nil)
			req = req.WithContext(middlewarectx.WithUser(req.Context(), "u-1", models.RoleUser))
			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
