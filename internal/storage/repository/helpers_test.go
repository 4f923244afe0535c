package repository

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/astraweather/internal/migrations"
	"github.com/magabrotheeeer/astraweather/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))
	require.NoError(t, CheckDatabaseReady(storage))

	cleanup := func() {
		_ = storage.DB.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его UID
func (f *TestDataFactory) CreateUser(t *testing.T, email string) string {
	t.Helper()
	prefs, err := json.Marshal(models.DefaultPreferences())
	require.NoError(t, err)

	uid := uuid.NewString()
	_, err = f.storage.DB.Exec(`INSERT INTO users (uid, email, name, role, password_hash, preferences)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uid, email, "Test User", models.RoleUser, "hashedpassword", string(prefs))
	require.NoError(t, err)
	return uid
}

// CreateSubscriber создает пользователя с заданным состоянием подписки
func (f *TestDataFactory) CreateSubscriber(t *testing.T, email, status string, isPremium bool, end time.Time) string {
	t.Helper()
	uid := f.CreateUser(t, email)
	_, err := f.storage.DB.Exec(`UPDATE users
		SET subscription_status = $2, is_premium = $3, subscription_end = $4
		WHERE uid = $1`, uid, status, isPremium, end)
	require.NoError(t, err)
	return uid
}

// CreateLocation добавляет локацию пользователю
func (f *TestDataFactory) CreateLocation(t *testing.T, userUID, name string, createdAt time.Time) string {
	t.Helper()
	id := uuid.NewString()
	_, err := f.storage.DB.Exec(`INSERT INTO saved_locations (id, user_uid, name, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`, id, userUID, name, 51.5, -0.12, createdAt)
	require.NoError(t, err)
	return id
}

// SetDefault выставляет локацию по умолчанию в обход репозитория
func (f *TestDataFactory) SetDefault(t *testing.T, userUID, locationID string) {
	t.Helper()
	_, err := f.storage.DB.Exec(`UPDATE users SET default_location_id = $2 WHERE uid = $1`, userUID, locationID)
	require.NoError(t, err)
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// LocationCount возвращает число локаций пользователя
func (v *TestVerification) LocationCount(t *testing.T, userUID string) int {
	t.Helper()
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM saved_locations WHERE user_uid = $1", userUID).Scan(&count)
	require.NoError(t, err)
	return count
}

// DefaultLocation возвращает default_location_id пользователя
func (v *TestVerification) DefaultLocation(t *testing.T, userUID string) *string {
	t.Helper()
	var id *string
	err := v.storage.DB.QueryRow("SELECT default_location_id FROM users WHERE uid = $1", userUID).Scan(&id)
	require.NoError(t, err)
	return id
}
