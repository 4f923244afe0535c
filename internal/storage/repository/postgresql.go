// Package repository реализует хранилище данных на основе PostgreSQL:
// записи пользователей с состоянием подписки, сохранённые локации
// и сообщения чата поддержки.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	// ErrUserNotFound запись пользователя отсутствует.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists пользователь с таким email уже зарегистрирован.
	ErrUserExists = errors.New("user already exists")
	// ErrLocationNotFound локация отсутствует в списке пользователя.
	ErrLocationNotFound = errors.New("location not found")
	// ErrMessageNotFound сообщение поддержки отсутствует.
	ErrMessageNotFound = errors.New("support message not found")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет, что миграции применены.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("required table users query error: %w", err)
	}
	if !exists {
		return errors.New("required table users missing")
	}
	return nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
