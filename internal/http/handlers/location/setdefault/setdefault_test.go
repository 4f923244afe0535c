package setdefault

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/astraweather/internal/http/middlewarectx"
	"github.com/magabrotheeeer/astraweather/internal/models"
	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) SetDefault(ctx context.Context, userUID, locationID string) error {
	args := m.Called(ctx, userUID, locationID)
	return args.Error(0)
}

func TestSetDefaultHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{name: "success", expectedStatus: http.StatusOK, expectedBody: `"defaultLocationId":"l-1"`},
		{name: "user missing", err: repository.ErrUserNotFound, expectedStatus: http.StatusNotFound, expectedBody: "user not found"},
		{name: "location missing", err: repository.ErrLocationNotFound, expectedStatus: http.StatusNotFound, expectedBody: "location not found"},
		{name: "store error", err: errors.New("db error"), expectedStatus: http.StatusInternalServerError, expectedBody: "failed to set default location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("SetDefault", mock.Anything, "u-1", "l-1").Return(tt.err).Once()

			req := httptest.NewRequest(http.MethodPut, "/locations/l-1/default", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "l-1")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithUser(ctx, "u-1", models.RoleUser))
			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
