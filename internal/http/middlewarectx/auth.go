// Package middlewarectx содержит HTTP middleware: проверку JWT, ролей и
// премиум-доступа, а также ограничение частоты запросов.
//
// JWTMiddleware кладёт UID и роль пользователя в контекст запроса,
// обработчики читают их через UserUIDFrom и RoleFrom.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/astraweather/internal/http/response"
	"github.com/magabrotheeeer/astraweather/internal/lib/jwt"
	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserUID ключ UID пользователя в контексте.
	UserUID Key = "user_uid"
	// Role ключ роли пользователя в контексте.
	Role Key = "role"
)

// TokenParser проверяет токен доступа.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// WithUser возвращает контекст с UID и ролью пользователя.
func WithUser(ctx context.Context, userUID, role string) context.Context {
	ctx = context.WithValue(ctx, UserUID, userUID)
	return context.WithValue(ctx, Role, role)
}

// UserUIDFrom достаёт UID пользователя из контекста.
func UserUIDFrom(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(UserUID).(string)
	return uid, ok && uid != ""
}

// RoleFrom достаёт роль пользователя из контекста.
func RoleFrom(ctx context.Context) string {
	role, _ := ctx.Value(Role).(string)
	return role
}

// JWTMiddleware проверяет заголовок Authorization: Bearer <token>.
// При ошибке отвечает 401.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			ctx := WithUser(r.Context(), claims.UserUID, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole пропускает только пользователей с ролью role, остальным отвечает 403.
func RequireRole(log *slog.Logger, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFrom(r.Context()) != role {
				log.Warn("access denied",
					slog.String("required_role", role),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
