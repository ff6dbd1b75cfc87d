package middleware

import (
	"context"
	"net/http"
	"time"

	"cotemplate/internal/auth"

	"github.com/golang-jwt/jwt/v5"
)

// AuthCookieName — cookie с подписанным токеном сессии.
const AuthCookieName = "cotemplate_auth"

const tokenTTL = 24 * time.Hour

type identityContextKey struct{}

// authClaims — полезная нагрузка токена: ровно то, что нужно для Identity.
type authClaims struct {
	UserID   int64  `json:"uid"`
	UserName string `json:"name"`
	Role     string `json:"role"`
	Template string `json:"tpl"`
	jwt.RegisteredClaims
}

// WithAuth разбирает auth-cookie и кладёт Identity в контекст запроса.
// Отсутствующий или невалидный токен не ошибка: вызывающий остаётся гостем.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AuthCookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			claims := &authClaims{}
			token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				next.ServeHTTP(w, r)
				return
			}

			var ident auth.Identity
			if auth.Role(claims.Role) == auth.RoleAdmin {
				ident = auth.Admin(claims.Template)
			} else {
				ident = auth.NewIdentity(claims.UserID, claims.UserName, auth.Role(claims.Role), claims.Template)
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext возвращает идентичность запроса; без токена — гость.
func IdentityFromContext(ctx context.Context) auth.Identity {
	if ident, ok := ctx.Value(identityContextKey{}).(auth.Identity); ok {
		return ident
	}
	return auth.Guest()
}

// SetLoginCookie подписывает токен для ident и ставит cookie.
func SetLoginCookie(w http.ResponseWriter, ident auth.Identity, secret string) error {
	claims := &authClaims{
		UserID:   ident.UserID(),
		UserName: ident.UserName(),
		Role:     string(ident.Role()),
		Template: ident.Template(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearLoginCookie стирает auth-cookie (logout).
func ClearLoginCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
