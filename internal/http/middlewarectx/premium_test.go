package middlewarectx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/astraweather/internal/models"
	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
)

type UserGetterMock struct {
	mock.Mock
}

func (m *UserGetterMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func TestPremiumMiddleware(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name           string
		userUID        string
		setupMocks     func(*UserGetterMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "active subscription",
			userUID: "user-1",
			setupMocks: func(m *UserGetterMock) {
				m.On("GetUser", mock.Anything, "user-1").Return(&models.User{
					SubscriptionStatus: models.StatusActive, SubscriptionEnd: &future,
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "provider-cased status",
			userUID: "user-1",
			setupMocks: func(m *UserGetterMock) {
				m.On("GetUser", mock.Anything, "user-1").Return(&models.User{
					SubscriptionStatus: models.StatusActiveAPI, SubscriptionEnd: &future,
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "stale premium flag after end",
			userUID: "user-1",
			setupMocks: func(m *UserGetterMock) {
				m.On("GetUser", mock.Anything, "user-1").Return(&models.User{
					IsPremium: true, SubscriptionStatus: models.StatusActive, SubscriptionEnd: &past,
				}, nil).Once()
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   "premium subscription required",
		},
		{
			name:    "cancelled subscription",
			userUID: "user-1",
			setupMocks: func(m *UserGetterMock) {
				m.On("GetUser", mock.Anything, "user-1").Return(&models.User{
					SubscriptionStatus: models.StatusCancelled, SubscriptionEnd: &future,
				}, nil).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "no user in context",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:    "user not found",
			userUID: "ghost",
			setupMocks: func(m *UserGetterMock) {
				m.On("GetUser", mock.Anything, "ghost").
					Return(nil, repository.ErrUserNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:    "storage error",
			userUID: "user-1",
			setupMocks: func(m *UserGetterMock) {
				m.On("GetUser", mock.Anything, "user-1").Return(nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UserGetterMock)
			if tt.setupMocks != nil {
				tt.setupMocks(users)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/insights", nil)
			if tt.userUID != "" {
				req = req.WithContext(WithUser(req.Context(), tt.userUID, models.RoleUser))
			}
			rec := httptest.NewRecorder()

			PremiumMiddleware(newNoopLogger(), users)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedBody)
			}
			users.AssertExpectations(t)
		})
	}
}
