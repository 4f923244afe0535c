// Package jwt выпускает и проверяет токены доступа.
// В токене хранятся UID пользователя и его роль.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims данные пользователя внутри токена.
type CustomClaims struct {
	UserUID string `json:"uid"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// Maker выпускает и разбирает токены.
type Maker interface {
	GenerateToken(userUID, role string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl подписывает токены HS256 секретным ключом.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт MakerImpl с ключом подписи и временем жизни токена.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
