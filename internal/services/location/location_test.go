package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/astraweather/internal/models"
	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) AddLocation(ctx context.Context, userUID string, loc models.Location) error {
	args := m.Called(ctx, userUID, loc)
	return args.Error(0)
}

func (m *RepoMock) ListLocations(ctx context.Context, userUID string) ([]models.Location, error) {
	args := m.Called(ctx, userUID)
	locations, _ := args.Get(0).([]models.Location)
	return locations, args.Error(1)
}

func (m *RepoMock) RemoveLocation(ctx context.Context, userUID, locationID string, now time.Time) (*string, error) {
	args := m.Called(ctx, userUID, locationID, now)
	id, _ := args.Get(0).(*string)
	return id, args.Error(1)
}

func (m *RepoMock) SetDefaultLocation(ctx context.Context, userUID, locationID string, now time.Time) error {
	args := m.Called(ctx, userUID, locationID, now)
	return args.Error(0)
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *RepoMock) *LocationService {
	svc := NewLocationService(repo)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestLocationService_Add(t *testing.T) {
	tests := []struct {
		name       string
		locName    string
		lat, lon   float64
		setupMocks func(*RepoMock)
		wantErr    error
	}{
		{
			name:    "success",
			locName: " London ",
			lat:     51.5074, lon: -0.1278,
			setupMocks: func(r *RepoMock) {
				r.On("AddLocation", mock.Anything, "user-1", mock.MatchedBy(func(loc models.Location) bool {
					_, err := uuid.Parse(loc.ID)
					return err == nil && loc.Name == "London" && loc.CreatedAt.Equal(fixedNow) && !loc.IsDefault
				})).Return(nil).Once()
			},
		},
		{
			name:    "empty name",
			locName: "   ",
			lat:     10, lon: 10,
			wantErr: ErrValidation,
		},
		{
			name:    "latitude out of range",
			locName: "Nowhere",
			lat:     91, lon: 0,
			wantErr: ErrValidation,
		},
		{
			name:    "longitude out of range",
			locName: "Nowhere",
			lat:     0, lon: -181,
			wantErr: ErrValidation,
		},
		{
			name:    "user absent",
			locName: "Paris",
			lat:     48.85, lon: 2.35,
			setupMocks: func(r *RepoMock) {
				r.On("AddLocation", mock.Anything, "user-1", mock.Anything).Return(repository.ErrUserNotFound).Once()
			},
			wantErr: repository.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			if tt.setupMocks != nil {
				tt.setupMocks(repo)
			}

			loc, err := newTestService(repo).Add(context.Background(), "user-1", tt.locName, tt.lat, tt.lon)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, loc)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "London", loc.Name)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestLocationService_Remove(t *testing.T) {
	next := "loc-2"
	repo := new(RepoMock)
	repo.On("RemoveLocation", mock.Anything, "user-1", "loc-1", fixedNow).Return(&next, nil).Once()
	repo.On("RemoveLocation", mock.Anything, "ghost", "loc-1", fixedNow).Return(nil, repository.ErrUserNotFound).Once()

	svc := newTestService(repo)

	got, err := svc.Remove(context.Background(), "user-1", "loc-1")
	require.NoError(t, err)
	assert.Equal(t, &next, got)

	_, err = svc.Remove(context.Background(), "ghost", "loc-1")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	repo.AssertExpectations(t)
}

func TestLocationService_SetDefault(t *testing.T) {
	repo := new(RepoMock)
	repo.On("SetDefaultLocation", mock.Anything, "user-1", "loc-1", fixedNow).Return(nil).Once()
	repo.On("SetDefaultLocation", mock.Anything, "user-1", "missing", fixedNow).Return(repository.ErrLocationNotFound).Once()

	svc := newTestService(repo)

	require.NoError(t, svc.SetDefault(context.Background(), "user-1", "loc-1"))
	assert.ErrorIs(t, svc.SetDefault(context.Background(), "user-1", "missing"), repository.ErrLocationNotFound)
	repo.AssertExpectations(t)
}

func TestLocationService_List(t *testing.T) {
	locations := []models.Location{{ID: "a"}, {ID: "b"}}
	repo := new(RepoMock)
	repo.On("ListLocations", mock.Anything, "user-1").Return(locations, nil).Once()

	got, err := newTestService(repo).List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, locations, got)
}
